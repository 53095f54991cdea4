package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/shaped/internal/autodiff"
	"github.com/born-ml/shaped/internal/autodiff/ops"
	"github.com/born-ml/shaped/internal/shaped"
)

func newTape() *autodiff.GradientTape[float32] {
	return autodiff.NewGradientTape(autodiff.DefaultConfig[float32]())
}

func vec(data ...float32) *shaped.ShapedArray[float32] {
	return shaped.MustFromSlice(data, shaped.Shape{len(data)})
}

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	tape := newTape()
	assert.False(t, tape.IsRecording(), "Tape should not be recording initially")

	tape.StartRecording()
	assert.True(t, tape.IsRecording())

	tape.StopRecording()
	assert.False(t, tape.IsRecording())
}

// TestTape_NotRecording tests that operations run but aren't recorded.
func TestTape_NotRecording(t *testing.T) {
	tape := newTape()

	sum := tape.Add(vec(1, 2), vec(3, 4))
	assert.Equal(t, []float32{4, 6}, sum.Scalars())
	r := tape.Reshape(sum, shaped.Shape{2, 1})
	assert.Equal(t, shaped.Shape{2, 1}, r.Shape())
	assert.Equal(t, 0, tape.NumOps())
}

// TestTape_Clear tests tape clearing.
func TestTape_Clear(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	tape.Add(vec(1, 2), vec(3, 4))
	require.Equal(t, 1, tape.NumOps())

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.True(t, tape.IsRecording(), "Clear() preserves recording state")
}

func TestTape_EmptyBackward(t *testing.T) {
	tape := newTape()
	grads := tape.Backward(vec(1), vec(1))
	assert.Empty(t, grads)

	assert.Panics(t, func() { autodiff.Backward(tape, vec(1)) })
}

// TestBackward_Add tests that both operands of + receive the upstream gradient.
func TestBackward_Add(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	a := vec(1, 2, 3)
	b := vec(4, 5, 6)
	c := tape.Add(a, b)

	upstream := vec(0.5, 1, 2)
	grads := tape.Backward(c, upstream)

	assert.Equal(t, []float32{0.5, 1, 2}, grads[a].Scalars())
	assert.Equal(t, []float32{0.5, 1, 2}, grads[b].Scalars())
	assert.Equal(t, []float32{0.5, 1, 2}, upstream.Scalars())
	assert.True(t, tape.IsRecording(), "recording state restored after Backward")
}

// TestBackward_Sub tests d(a-b): a gets v, b gets -v.
func TestBackward_Sub(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	a := vec(3, 4)
	b := vec(1, 1)
	c := tape.Sub(a, b)
	assert.Equal(t, []float32{2, 3}, c.Scalars())

	grads := autodiff.Backward(tape, c)
	assert.Equal(t, []float32{1, 1}, grads[a].Scalars())
	assert.Equal(t, []float32{-1, -1}, grads[b].Scalars())
}

// TestBackward_ReusedInput tests gradient accumulation: y = (x + x) - x, dy/dx = 1.
func TestBackward_ReusedInput(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	x := vec(1, 2)
	doubled := tape.Add(x, x)
	y := tape.Sub(doubled, x)
	assert.Equal(t, []float32{1, 2}, y.Scalars())

	grads := autodiff.Backward(tape, y)
	assert.Equal(t, []float32{1, 1}, grads[x].Scalars())
	assert.Equal(t, []float32{1, 1}, grads[doubled].Scalars())
}

// TestBackward_Reshape tests that gradients are reshaped back without scaling.
func TestBackward_Reshape(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	x := shaped.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, shaped.Shape{2, 3})
	y := tape.Reshape(x, shaped.Shape{3, 2})

	upstream := shaped.MustFromSlice([]float32{6, 5, 4, 3, 2, 1}, shaped.Shape{3, 2})
	grads := tape.Backward(y, upstream)

	require.Contains(t, grads, x)
	assert.Equal(t, shaped.Shape{2, 3}, grads[x].Shape())
	assert.Equal(t, upstream.Scalars(), grads[x].Scalars())
}

// TestBackward_Chain tests reshape after sub after hadamard:
// y = reshape((a ⊙ b) - c), dy/da = b, dy/db = a, dy/dc = -1.
func TestBackward_Chain(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	a := vec(1, 2, 3, 4)
	b := vec(5, 6, 7, 8)
	c := vec(1, 1, 1, 1)
	y := tape.Reshape(tape.Sub(tape.Hadamard(a, b), c), shaped.Shape{2, 2})

	assert.Equal(t, 3, tape.NumOps())
	assert.Equal(t, []float32{4, 11, 20, 31}, y.Scalars())

	grads := autodiff.Backward(tape, y)
	assert.Equal(t, []float32{5, 6, 7, 8}, grads[a].Scalars())
	assert.Equal(t, []float32{1, 2, 3, 4}, grads[b].Scalars())
	assert.Equal(t, []float32{-1, -1, -1, -1}, grads[c].Scalars())
}

// TestBackward_Mul tests that the scoped accumulation multiply passes gradients through.
func TestBackward_Mul(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	a := vec(2, 3)
	b := vec(4, 5)
	y := tape.Mul(a, b)

	grads := autodiff.Backward(tape, y)
	assert.Equal(t, []float32{1, 1}, grads[a].Scalars())
	assert.Equal(t, []float32{1, 1}, grads[b].Scalars())
}

// TestBackward_ZeroOperand tests that the canonical zero flows through the tape.
func TestBackward_ZeroOperand(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	zero := shaped.Zero[float32]()
	a := vec(3, 4)
	y := tape.Add(zero, a)
	assert.Equal(t, []float32{3, 4}, y.Scalars())

	grads := autodiff.Backward(tape, y)
	assert.Equal(t, []float32{1, 1}, grads[a].Scalars())
	assert.Equal(t, []float32{1, 1}, grads[zero].Scalars())
}

func TestBackward_UnusedBranch(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	a := vec(1)
	b := vec(2)
	_ = tape.Add(a, b) // not part of y
	y := tape.Sub(a, b)

	grads := autodiff.Backward(tape, y)
	assert.Equal(t, []float32{1}, grads[a].Scalars())
	assert.Equal(t, []float32{-1}, grads[b].Scalars())
	assert.Len(t, grads, 3)
}

func TestTryBackward_SeedMismatch(t *testing.T) {
	tape := newTape()
	tape.StartRecording()

	x := vec(1, 2, 3, 4)
	y := tape.Reshape(x, shaped.Shape{2, 2})

	_, err := tape.TryBackward(y, vec(1, 2, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backward pass failed")

	grads, err := tape.TryBackward(y, shaped.Ones[float32](shaped.Shape{2, 2}))
	require.NoError(t, err)
	assert.Equal(t, shaped.Shape{4}, grads[x].Shape())
}

func TestTape_Apply(t *testing.T) {
	registry := ops.NewRegistry[float32]()
	require.NoError(t, registry.RegisterBinary(ops.BinaryFunc[float32]{
		Name: "double_add",
		Primal: func(lhs, rhs *shaped.ShapedArray[float32]) *shaped.ShapedArray[float32] {
			return lhs.Add(rhs).Scale(2)
		},
		VJP: func(lhs, rhs *shaped.ShapedArray[float32]) (*shaped.ShapedArray[float32], ops.BinaryPullback[float32]) {
			return lhs.Add(rhs).Scale(2), func(v *shaped.ShapedArray[float32]) (*shaped.ShapedArray[float32], *shaped.ShapedArray[float32]) {
				return v.Scale(2), v.Scale(2)
			}
		},
	}))

	tape := autodiff.NewGradientTape(autodiff.Config[float32]{Registry: registry})
	tape.StartRecording()

	a := vec(1)
	b := vec(2)
	y := tape.Apply("double_add", a, b)
	assert.Equal(t, []float32{6}, y.Scalars())

	grads := autodiff.Backward(tape, y)
	assert.Equal(t, []float32{2}, grads[a].Scalars())
	assert.Equal(t, []float32{2}, grads[b].Scalars())

	assert.Panics(t, func() { tape.Apply("unknown", a, b) })
}
