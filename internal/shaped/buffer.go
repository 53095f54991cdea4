package shaped

import "sync/atomic"

// buffer is a reference-counted scalar slice shared between clones.
// Writers must call ShapedArray.makeUnique first: a buffer is only mutated
// while its reference count is 1.
type buffer[S Scalar] struct {
	data     []S
	refCount atomic.Int32
}

// newBuffer creates a zero-filled buffer with refCount = 1.
func newBuffer[S Scalar](size int) *buffer[S] {
	buf := &buffer[S]{
		data: make([]S, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (b *buffer[S]) addRef() {
	b.refCount.Add(1)
}

// release decrements the reference count and drops the data when it reaches 0.
func (b *buffer[S]) release() {
	if b.refCount.Add(-1) == 0 {
		b.data = nil
	}
}

func (b *buffer[S]) isUnique() bool {
	return b.refCount.Load() == 1
}

// copyOf returns a fresh, unshared buffer holding a copy of b's data.
func (b *buffer[S]) copyOf() *buffer[S] {
	dup := newBuffer[S](len(b.data))
	copy(dup.data, b.data)
	return dup
}
