package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/shaped/internal/autodiff/ops"
	"github.com/born-ml/shaped/internal/shaped"
)

func vec(data ...float32) *shaped.ShapedArray[float32] {
	return shaped.MustFromSlice(data, shaped.Shape{len(data)})
}

// TestAddVJP tests that the add pullback is the identity for both operands.
func TestAddVJP(t *testing.T) {
	a := vec(1, 2, 3)
	b := vec(4, 5, 6)

	value, pullback := ops.AddVJP(a, b)
	assert.Equal(t, []float32{5, 7, 9}, value.Scalars())

	v := vec(0.5, -1, 2)
	da, db := pullback(v)
	assert.True(t, da.Equal(v))
	assert.True(t, db.Equal(v))

	// The two slots are independent handles.
	da.ScaleInPlace(10)
	assert.Equal(t, []float32{0.5, -1, 2}, db.Scalars())
	assert.Equal(t, []float32{0.5, -1, 2}, v.Scalars())
}

// TestSubVJP tests that the sub pullback negates the right operand's gradient.
func TestSubVJP(t *testing.T) {
	a := vec(5, 6, 7)
	b := vec(1, 2, 3)

	value, pullback := ops.SubVJP(a, b)
	assert.Equal(t, []float32{4, 4, 4}, value.Scalars())

	v := vec(1, 2, 3)
	da, db := pullback(v)
	assert.Equal(t, []float32{1, 2, 3}, da.Scalars())
	assert.Equal(t, []float32{-1, -2, -3}, db.Scalars())
	assert.True(t, db.Equal(shaped.Zero[float32]().Sub(v)))
}

func TestSubVJP_ZeroOperand(t *testing.T) {
	a := vec(3, 4)

	value, pullback := ops.SubVJP(a, shaped.Zero[float32]())
	assert.True(t, value.Equal(a))

	da, db := pullback(vec(1, 1))
	assert.Equal(t, []float32{1, 1}, da.Scalars())
	assert.Equal(t, []float32{-1, -1}, db.Scalars())

	// A canonical-zero upstream gradient stays the canonical zero.
	da, db = pullback(shaped.Zero[float32]())
	assert.True(t, da.IsCanonicalZero())
	assert.True(t, db.IsCanonicalZero())
}

// TestMulVJP tests the scoped accumulation multiply: identity pullback, no product rule.
func TestMulVJP(t *testing.T) {
	a := vec(2, 3, 4)
	b := vec(5, 6, 7)

	value, pullback := ops.MulVJP(a, b)
	assert.Equal(t, []float32{10, 18, 28}, value.Scalars())

	v := vec(1, 1, 1)
	da, db := pullback(v)
	assert.Equal(t, []float32{1, 1, 1}, da.Scalars())
	assert.Equal(t, []float32{1, 1, 1}, db.Scalars())
}

// TestHadamardVJP tests the product rule of the element-wise product.
func TestHadamardVJP(t *testing.T) {
	a := vec(2, 3, 4)
	b := vec(5, 6, 7)

	value, pullback := ops.HadamardVJP(a, b)
	assert.Equal(t, []float32{10, 18, 28}, value.Scalars())

	// Mutating the inputs after the forward pass doesn't affect the pullback.
	a.ScaleInPlace(100)

	da, db := pullback(vec(1, 2, 1))
	assert.Equal(t, []float32{5, 12, 7}, da.Scalars())
	assert.Equal(t, []float32{2, 6, 4}, db.Scalars())
}

func TestAssignVJPs(t *testing.T) {
	t.Run("add_assign", func(t *testing.T) {
		lhs := vec(1, 2)
		pullback := ops.AddAssignVJP(lhs, vec(10, 20))
		assert.Equal(t, []float32{11, 22}, lhs.Scalars())

		dlhs := vec(3, 4)
		drhs := pullback(dlhs)
		assert.Equal(t, []float32{3, 4}, drhs.Scalars())
		assert.Equal(t, []float32{3, 4}, dlhs.Scalars())
	})

	t.Run("sub_assign", func(t *testing.T) {
		lhs := vec(1, 2)
		pullback := ops.SubAssignVJP(lhs, vec(10, 20))
		assert.Equal(t, []float32{-9, -18}, lhs.Scalars())

		dlhs := vec(3, 4)
		drhs := pullback(dlhs)
		assert.Equal(t, []float32{-3, -4}, drhs.Scalars())
		assert.Equal(t, []float32{3, 4}, dlhs.Scalars())
	})

	t.Run("mul_assign", func(t *testing.T) {
		lhs := shaped.Zero[float32]()
		pullback := ops.MulAssignVJP(lhs, vec(2, 3))
		assert.Equal(t, []float32{2, 3}, lhs.Scalars())

		drhs := pullback(vec(1, 5))
		assert.Equal(t, []float32{1, 5}, drhs.Scalars())
	})

	t.Run("sub_assign_into_zero", func(t *testing.T) {
		lhs := shaped.Zero[float32]()
		ops.SubAssignVJP(lhs, vec(2, 3))
		assert.Equal(t, []float32{-2, -3}, lhs.Scalars())
	})
}

// TestReshapeVJP tests that the reshape pullback restores the input shape
// without scaling the gradient.
func TestReshapeVJP(t *testing.T) {
	a := shaped.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, shaped.Shape{2, 3})

	value, pullback := ops.ReshapeVJP(a, shaped.Shape{3, 2})
	assert.Equal(t, shaped.Shape{3, 2}, value.Shape())

	v := shaped.MustFromSlice([]float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, shaped.Shape{3, 2})
	grad := pullback(v)
	assert.Equal(t, shaped.Shape{2, 3}, grad.Shape())
	assert.Equal(t, v.Scalars(), grad.Scalars())

	assert.True(t, pullback(shaped.Zero[float32]()).IsCanonicalZero())
}

func TestReshapeVJP_Mismatch(t *testing.T) {
	a := shaped.Full[float32](shaped.Shape{2, 3}, 1)
	assert.Panics(t, func() { ops.ReshapeVJP(a, shaped.Shape{5}) })
}

func TestBinaryOp_Record(t *testing.T) {
	a := vec(5, 6)
	b := vec(1, 2)

	op := ops.NewBinaryOp(ops.Sub[float32](), a, b)
	assert.Equal(t, "sub", op.Name())
	assert.Equal(t, []float32{4, 4}, op.Output().Scalars())
	require.Len(t, op.Inputs(), 2)
	assert.Same(t, a, op.Inputs()[0])
	assert.Same(t, b, op.Inputs()[1])

	grads := op.Backward(vec(1, 1))
	require.Len(t, grads, 2)
	assert.Equal(t, []float32{1, 1}, grads[0].Scalars())
	assert.Equal(t, []float32{-1, -1}, grads[1].Scalars())
}

func TestReshapeOp_Record(t *testing.T) {
	a := vec(1, 2, 3, 4)

	op := ops.NewReshapeOp(a, shaped.Shape{2, 2})
	assert.Equal(t, "reshape", op.Name())
	assert.Equal(t, shaped.Shape{2, 2}, op.Output().Shape())
	assert.Same(t, a, op.Inputs()[0])

	grads := op.Backward(shaped.Ones[float32](shaped.Shape{2, 2}))
	require.Len(t, grads, 1)
	assert.Equal(t, shaped.Shape{4}, grads[0].Shape())
}

func TestAccumulate(t *testing.T) {
	grads := make(map[string]*shaped.ShapedArray[float32])

	for _, g := range []*shaped.ShapedArray[float32]{vec(1, 2), vec(3, 4)} {
		acc, ok := grads["x"]
		grads["x"] = ops.Accumulate(acc, ok, g, shaped.Zero[float32])
	}
	assert.Equal(t, []float32{4, 6}, grads["x"].Scalars())

	// A single contribution comes back untouched and unshaped by the zero.
	g := vec(7, 8)
	acc := ops.Accumulate(nil, false, g, shaped.Zero[float32])
	assert.True(t, acc.Equal(g))
	assert.False(t, acc.IsCanonicalZero())
}
