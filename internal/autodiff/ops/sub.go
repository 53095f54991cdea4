package ops

import "github.com/born-ml/shaped/internal/shaped"

// SubVJP computes a - b and its pullback.
//
// Backward pass:
//   - d(a-b)/da = 1, so grad_a = v
//   - d(a-b)/db = -1, so grad_b = Zero - v
//
// The negation goes through the canonical zero so that it works for a v of
// any shape (and for v itself being the canonical zero).
func SubVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	value := a.Sub(b)
	return value, func(v *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], *shaped.ShapedArray[S]) {
		return v.Clone(), shaped.Zero[S]().Sub(v)
	}
}

// SubAssignVJP performs lhs -= rhs and returns its pullback:
// the lhs gradient slot is left unchanged and rhs receives Zero - dlhs.
func SubAssignVJP[S shaped.Scalar](lhs, rhs *shaped.ShapedArray[S]) InPlacePullback[S] {
	lhs.SubInPlace(rhs)
	return func(dlhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
		return shaped.Zero[S]().Sub(dlhs)
	}
}

// Sub returns the registration record of "sub".
func Sub[S shaped.Scalar]() BinaryFunc[S] {
	return BinaryFunc[S]{
		Name:   "sub",
		Primal: (*shaped.ShapedArray[S]).Sub,
		VJP:    SubVJP[S],
	}
}

// SubAssign returns the registration record of "sub_assign".
func SubAssign[S shaped.Scalar]() InPlaceFunc[S] {
	return InPlaceFunc[S]{
		Name:  "sub_assign",
		Apply: (*shaped.ShapedArray[S]).SubInPlace,
		VJP:   SubAssignVJP[S],
	}
}
