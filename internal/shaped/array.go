package shaped

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
)

// ErrShapeMismatch is returned (wrapped) when the number of scalars does not
// match the number of elements described by a shape.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapedArray is a dense array of scalars tagged with a shape.
//
// The scalar buffer is reference-counted and shared between clones with
// Copy-on-Write semantics: Clone is cheap, and the first mutation through a
// handle whose buffer is shared copies the buffer first. Mutations through one
// handle are therefore never visible through a clone taken before.
//
// A ShapedArray is also its own tangent vector: gradients flowing back through
// the autodiff ops live in the same shape/scalar space as the values.
//
// A ShapedArray is not safe for concurrent mutation.
//
// Example:
//
//	a := shaped.MustFromSlice([]float32{1, 2, 3, 4}, shaped.Shape{2, 2})
//	b := shaped.Full[float32](shaped.Shape{2, 2}, 10)
//	c := a.Add(b) // [11 12 13 14]
type ShapedArray[S Scalar] struct {
	shape Shape
	buf   *buffer[S]

	// canonicalZero marks the additive identity returned by Zero.
	// When set, the buffer content and the shape are ignored by the combinators.
	canonicalZero bool
}

// Zero returns the canonical zero: the additive identity for arrays of any shape.
//
// It has shape [1] and a single zero scalar, and is the only value for which
// IsCanonicalZero reports true. Combining it with an array of any shape
// short-circuits, which lets gradient accumulation start from Zero without
// allocating a zero-filled buffer per intermediate shape.
func Zero[S Scalar]() *ShapedArray[S] {
	return &ShapedArray[S]{
		shape:         Shape{1},
		buf:           newBuffer[S](1),
		canonicalZero: true,
	}
}

// Full creates an array of the given shape with every element set to value.
// Panics if the shape has a negative dimension or too many elements.
func Full[S Scalar](shape Shape, value S) *ShapedArray[S] {
	if err := shape.Validate(); err != nil {
		exceptions.Panicf("Full(%s): %v", shape, err)
	}
	buf := newBuffer[S](shape.NumElements())
	if value != 0 {
		for i := range buf.data {
			buf.data[i] = value
		}
	}
	return &ShapedArray[S]{
		shape: shape.Clone(),
		buf:   buf,
	}
}

// Ones creates an array of the given shape filled with 1.
func Ones[S Scalar](shape Shape) *ShapedArray[S] {
	return Full[S](shape, 1)
}

// FromSlice creates an array from a flat, row-major slice of scalars.
// The slice is copied into the array's memory.
func FromSlice[S Scalar](data []S, shape Shape) (*ShapedArray[S], error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "FromSlice(shape=%s)", shape)
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrShapeMismatch, "shape %s requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}

	buf := newBuffer[S](len(data))
	copy(buf.data, data)
	return &ShapedArray[S]{
		shape: shape.Clone(),
		buf:   buf,
	}, nil
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[S Scalar](data []S, shape Shape) *ShapedArray[S] {
	return must.M1(FromSlice(data, shape))
}

// Shape returns the array's shape. The returned slice must not be modified.
func (a *ShapedArray[S]) Shape() Shape {
	return a.shape
}

// NumElements returns the number of scalars held by the array.
func (a *ShapedArray[S]) NumElements() int {
	return len(a.buf.data)
}

// IsCanonicalZero reports whether a is the additive identity created by Zero.
// An array that merely holds zeros (e.g. the result of a - a) is not.
func (a *ShapedArray[S]) IsCanonicalZero() bool {
	return a.canonicalZero
}

// Scalars returns a copy of the flat, row-major scalar sequence.
func (a *ShapedArray[S]) Scalars() []S {
	out := make([]S, len(a.buf.data))
	copy(out, a.buf.data)
	return out
}

// At returns the element at the given indices.
// Panics if the number of indices or any index is out of bounds.
func (a *ShapedArray[S]) At(indices ...int) S {
	if len(indices) != len(a.shape) {
		exceptions.Panicf("At: expected %d indices, got %d", len(a.shape), len(indices))
	}

	offset := 0
	strides := a.shape.ComputeStrides()
	for i, idx := range indices {
		if idx < 0 || idx >= a.shape[i] {
			exceptions.Panicf("At: index %d out of bounds for dimension %d (size %d)", idx, i, a.shape[i])
		}
		offset += idx * strides[i]
	}
	return a.buf.data[offset]
}

// Clone returns a handle sharing a's buffer (copy-on-write).
// The canonical-zero flag is preserved: a clone of Zero is still the canonical zero.
func (a *ShapedArray[S]) Clone() *ShapedArray[S] {
	a.buf.addRef()
	return &ShapedArray[S]{
		shape:         a.shape.Clone(),
		buf:           a.buf,
		canonicalZero: a.canonicalZero,
	}
}

// Release drops this handle's reference to the shared buffer.
// The handle must not be used afterwards; releasing it again panics.
func (a *ShapedArray[S]) Release() {
	if a.buf == nil {
		exceptions.Panicf("ShapedArray.Release: array %s already released", a.shape)
	}
	a.buf.release()
	a.buf = nil
}

// IsUnique reports whether a is the only handle referencing its buffer,
// in which case in-place operations don't need to copy.
func (a *ShapedArray[S]) IsUnique() bool {
	return a.buf.isUnique()
}

// Equal reports whether a and other have the same shape and scalars.
// The canonical-zero flag is not compared.
func (a *ShapedArray[S]) Equal(other *ShapedArray[S]) bool {
	if !a.shape.Equal(other.shape) {
		return false
	}
	for i, v := range a.buf.data {
		if other.buf.data[i] != v {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the array.
func (a *ShapedArray[S]) String() string {
	if a.canonicalZero {
		return fmt.Sprintf("ShapedArray[%T](zero)", S(0))
	}
	return fmt.Sprintf("ShapedArray[%T]%s%v", S(0), a.shape, a.buf.data)
}

// makeUnique ensures a owns its buffer exclusively before a write.
func (a *ShapedArray[S]) makeUnique() {
	if a.buf.isUnique() {
		return
	}
	dup := a.buf.copyOf()
	a.buf.release()
	a.buf = dup
}

// assign replaces a's contents with other's, sharing other's buffer.
func (a *ShapedArray[S]) assign(other *ShapedArray[S]) {
	if a.buf == other.buf {
		a.shape = other.shape.Clone()
		a.canonicalZero = other.canonicalZero
		return
	}
	other.buf.addRef()
	a.buf.release()
	a.buf = other.buf
	a.shape = other.shape.Clone()
	a.canonicalZero = other.canonicalZero
}
