package shaped

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/shaped/internal/parallel"
)

// kernelConfig splits element-wise loops over large buffers across goroutines.
// Every goroutine writes a disjoint index range of a buffer it exclusively owns.
var kernelConfig = parallel.DefaultConfig()

// AddInPlace performs a += rhs.
//
//   - a is the canonical zero: a takes over rhs's shape and buffer (shared, copy-on-write).
//   - rhs is the canonical zero: no-op.
//   - otherwise: element-wise addition; both arrays must hold the same number of elements.
func (a *ShapedArray[S]) AddInPlace(rhs *ShapedArray[S]) {
	switch {
	case a.canonicalZero:
		if !rhs.canonicalZero {
			a.assign(rhs)
		}
	case rhs.canonicalZero:
		// Adding, subtracting or accumulating the identity is a no-op.
	default:
		a.checkSameSize("AddInPlace", rhs)
		rhsData := rhs.buf.data
		a.makeUnique()
		data := a.buf.data
		parallel.Range(len(data), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				data[i] += rhsData[i]
			}
		}, kernelConfig)
	}
}

// SubInPlace performs a -= rhs.
//
//   - a is the canonical zero: a becomes the negation of rhs.
//   - rhs is the canonical zero: no-op.
//   - otherwise: element-wise subtraction; both arrays must hold the same number of elements.
func (a *ShapedArray[S]) SubInPlace(rhs *ShapedArray[S]) {
	switch {
	case a.canonicalZero:
		if !rhs.canonicalZero {
			neg := rhs.Negate()
			a.assign(neg)
			neg.Release()
		}
	case rhs.canonicalZero:
		// no-op
	default:
		a.checkSameSize("SubInPlace", rhs)
		rhsData := rhs.buf.data
		a.makeUnique()
		data := a.buf.data
		parallel.Range(len(data), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				data[i] -= rhsData[i]
			}
		}, kernelConfig)
	}
}

// MulInPlace performs a *= rhs as a scoped accumulation operator.
//
// It is NOT a Hadamard product: when a is the canonical zero, a takes over rhs
// (instead of staying zero), and when rhs is the canonical zero a is left
// unchanged (instead of becoming zero). This is only correct when used to
// accumulate into a running value that starts at Zero. Its pullback (see the
// autodiff ops) is the identity, with no product-rule cross terms.
// Use Hadamard for a true element-wise product.
func (a *ShapedArray[S]) MulInPlace(rhs *ShapedArray[S]) {
	switch {
	case a.canonicalZero:
		if !rhs.canonicalZero {
			a.assign(rhs)
		}
	case rhs.canonicalZero:
		// no-op
	default:
		a.checkSameSize("MulInPlace", rhs)
		rhsData := rhs.buf.data
		a.makeUnique()
		data := a.buf.data
		parallel.Range(len(data), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				data[i] *= rhsData[i]
			}
		}, kernelConfig)
	}
}

// Add returns a + rhs. See AddInPlace for the canonical-zero rules.
func (a *ShapedArray[S]) Add(rhs *ShapedArray[S]) *ShapedArray[S] {
	result := a.Clone()
	result.AddInPlace(rhs)
	return result
}

// Sub returns a - rhs. See SubInPlace for the canonical-zero rules.
func (a *ShapedArray[S]) Sub(rhs *ShapedArray[S]) *ShapedArray[S] {
	result := a.Clone()
	result.SubInPlace(rhs)
	return result
}

// Mul returns a * rhs using the scoped accumulation semantics of MulInPlace.
func (a *ShapedArray[S]) Mul(rhs *ShapedArray[S]) *ShapedArray[S] {
	result := a.Clone()
	result.MulInPlace(rhs)
	return result
}

// Hadamard returns the element-wise product of a and rhs.
// If either operand is the canonical zero, the result is the canonical zero.
func (a *ShapedArray[S]) Hadamard(rhs *ShapedArray[S]) *ShapedArray[S] {
	if a.canonicalZero || rhs.canonicalZero {
		return Zero[S]()
	}
	a.checkSameSize("Hadamard", rhs)
	out := newBuffer[S](len(a.buf.data))
	lhsData, rhsData := a.buf.data, rhs.buf.data
	parallel.Range(len(out.data), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out.data[i] = lhsData[i] * rhsData[i]
		}
	}, kernelConfig)
	return &ShapedArray[S]{shape: a.shape.Clone(), buf: out}
}

// Negate returns -a. The negation of the canonical zero is the canonical zero.
func (a *ShapedArray[S]) Negate() *ShapedArray[S] {
	if a.canonicalZero {
		return Zero[S]()
	}
	out := newBuffer[S](len(a.buf.data))
	for i, v := range a.buf.data {
		out.data[i] = -v
	}
	return &ShapedArray[S]{shape: a.shape.Clone(), buf: out}
}

// Scale returns a multiplied by factor.
func (a *ShapedArray[S]) Scale(factor S) *ShapedArray[S] {
	result := a.Clone()
	result.ScaleInPlace(factor)
	return result
}

// ScaleInPlace multiplies every element of a by factor.
// The canonical zero is left untouched.
func (a *ShapedArray[S]) ScaleInPlace(factor S) {
	if a.canonicalZero {
		return
	}
	a.makeUnique()
	data := a.buf.data
	parallel.Range(len(data), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			data[i] *= factor
		}
	}, kernelConfig)
}

// checkSameSize panics if a and rhs hold a different number of elements.
func (a *ShapedArray[S]) checkSameSize(op string, rhs *ShapedArray[S]) {
	if len(a.buf.data) != len(rhs.buf.data) {
		exceptions.Panicf("ShapedArray.%s: element count mismatch: lhs shape %s (%d elements) vs rhs shape %s (%d elements)",
			op, a.shape, len(a.buf.data), rhs.shape, len(rhs.buf.data))
	}
}
