package ops

import "github.com/born-ml/shaped/internal/shaped"

// HadamardVJP computes the element-wise product a ⊙ b and its pullback.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = v ⊙ b
//   - d(a*b)/db = a, so grad_b = v ⊙ a
//
// The pullback captures clones of a and b, so mutating them after the forward
// pass does not change the gradients.
func HadamardVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	value := a.Hadamard(b)
	lhs, rhs := a.Clone(), b.Clone()
	return value, func(v *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], *shaped.ShapedArray[S]) {
		return v.Hadamard(rhs), v.Hadamard(lhs)
	}
}

// Hadamard returns the registration record of "hadamard".
func Hadamard[S shaped.Scalar]() BinaryFunc[S] {
	return BinaryFunc[S]{
		Name:   "hadamard",
		Primal: (*shaped.ShapedArray[S]).Hadamard,
		VJP:    HadamardVJP[S],
	}
}
