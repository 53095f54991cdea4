package ops

import "github.com/born-ml/shaped/internal/shaped"

// MulVJP computes a * b with the scoped accumulation semantics of
// ShapedArray.MulInPlace and returns its pullback.
//
// The pullback is the identity for both operands, exactly like add: there are
// no product-rule cross terms. It is only valid for the accumulation pattern
// MulInPlace is meant for, never for a product of two independent
// differentiable arrays. Use HadamardVJP for that.
func MulVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	value := a.Mul(b)
	return value, func(v *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], *shaped.ShapedArray[S]) {
		return v.Clone(), v.Clone()
	}
}

// MulAssignVJP performs lhs *= rhs (scoped accumulation) and returns its
// pullback, which passes dlhs through to rhs unchanged.
func MulAssignVJP[S shaped.Scalar](lhs, rhs *shaped.ShapedArray[S]) InPlacePullback[S] {
	lhs.MulInPlace(rhs)
	return func(dlhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
		return dlhs.Clone()
	}
}

// Mul returns the registration record of "mul".
func Mul[S shaped.Scalar]() BinaryFunc[S] {
	return BinaryFunc[S]{
		Name:   "mul",
		Primal: (*shaped.ShapedArray[S]).Mul,
		VJP:    MulVJP[S],
	}
}

// MulAssign returns the registration record of "mul_assign".
func MulAssign[S shaped.Scalar]() InPlaceFunc[S] {
	return InPlaceFunc[S]{
		Name:  "mul_assign",
		Apply: (*shaped.ShapedArray[S]).MulInPlace,
		VJP:   MulAssignVJP[S],
	}
}
