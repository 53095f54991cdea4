package ops

import "github.com/born-ml/shaped/internal/shaped"

// AddVJP computes a + b and its pullback.
//
// Since d(a+b)/da = d(a+b)/db = 1, the output gradient flows unchanged to both
// operands. Each operand gets its own handle (sharing the buffer copy-on-write)
// so that accumulating into one slot never alters the other.
func AddVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	value := a.Add(b)
	return value, func(v *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], *shaped.ShapedArray[S]) {
		return v.Clone(), v.Clone()
	}
}

// AddAssignVJP performs lhs += rhs and returns its pullback:
// the lhs gradient slot is left unchanged and rhs receives the same gradient.
func AddAssignVJP[S shaped.Scalar](lhs, rhs *shaped.ShapedArray[S]) InPlacePullback[S] {
	lhs.AddInPlace(rhs)
	return func(dlhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
		return dlhs.Clone()
	}
}

// Add returns the registration record of "add".
func Add[S shaped.Scalar]() BinaryFunc[S] {
	return BinaryFunc[S]{
		Name:   "add",
		Primal: (*shaped.ShapedArray[S]).Add,
		VJP:    AddVJP[S],
	}
}

// AddAssign returns the registration record of "add_assign".
func AddAssign[S shaped.Scalar]() InPlaceFunc[S] {
	return InPlaceFunc[S]{
		Name:  "add_assign",
		Apply: (*shaped.ShapedArray[S]).AddInPlace,
		VJP:   AddAssignVJP[S],
	}
}
