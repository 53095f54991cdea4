package shaped

import "github.com/gomlx/exceptions"

// Reshaped returns an array with the given shape and the same row-major
// scalar sequence. The buffer is shared with a (copy-on-write).
//
// Panics if newShape is invalid (see Shape.Validate) or describes a different
// number of elements. Reshaping the canonical zero returns the canonical zero,
// since the identity has no intrinsic shape.
func (a *ShapedArray[S]) Reshaped(newShape Shape) *ShapedArray[S] {
	if err := newShape.Validate(); err != nil {
		exceptions.Panicf("ShapedArray.Reshaped(%s): %v", newShape, err)
	}
	if a.canonicalZero {
		return Zero[S]()
	}
	if newShape.NumElements() != len(a.buf.data) {
		exceptions.Panicf("ShapedArray.Reshaped: cannot reshape %s (%d elements) to %s (%d elements)",
			a.shape, len(a.buf.data), newShape, newShape.NumElements())
	}
	result := a.Clone()
	result.shape = newShape.Clone()
	return result
}
