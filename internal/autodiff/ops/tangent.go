package ops

import "github.com/born-ml/shaped/internal/shaped"

// HasTangentSpace is the capability of a differentiable value whose tangent
// vectors have the same type V as the value itself: gradients can be added,
// subtracted and accumulated in place, starting from an additive identity.
type HasTangentSpace[V any] interface {
	Add(other V) V
	Sub(other V) V
	AddInPlace(other V)
	SubInPlace(other V)
	IsCanonicalZero() bool
}

// ShapedArray is differentiable for every Scalar element type.
var (
	_ HasTangentSpace[*shaped.ShapedArray[float32]] = (*shaped.ShapedArray[float32])(nil)
	_ HasTangentSpace[*shaped.ShapedArray[float64]] = (*shaped.ShapedArray[float64])(nil)
)

// Accumulate adds contribution into the gradient slot acc and returns the
// updated slot. A slot that does not exist yet starts at zero(), so with the
// canonical zero the first contribution is taken over without allocating a
// zero-filled buffer.
//
//	acc, ok := grads[x]
//	grads[x] = ops.Accumulate(acc, ok, g, shaped.Zero[float32])
func Accumulate[V HasTangentSpace[V]](acc V, exists bool, contribution V, zero func() V) V {
	if !exists {
		acc = zero()
	}
	acc.AddInPlace(contribution)
	return acc
}
