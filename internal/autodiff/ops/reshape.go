package ops

import "github.com/born-ml/shaped/internal/shaped"

// ReshapeVJP reshapes a to newShape and returns its pullback, which reshapes
// the output gradient back to a's shape. Reshape is a bijection on element
// order, so no numeric transformation is involved.
func ReshapeVJP[S shaped.Scalar](a *shaped.ShapedArray[S], newShape shaped.Shape) (*shaped.ShapedArray[S], UnaryPullback[S]) {
	value := a.Reshaped(newShape)
	origShape := a.Shape().Clone()
	return value, func(v *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
		return v.Reshaped(origShape)
	}
}

// ReshapeFunc bundles the reshape primal with its VJP.
type ReshapeFunc[S shaped.Scalar] struct {
	Primal func(a *shaped.ShapedArray[S], newShape shaped.Shape) *shaped.ShapedArray[S]
	VJP    func(a *shaped.ShapedArray[S], newShape shaped.Shape) (*shaped.ShapedArray[S], UnaryPullback[S])
}

// Reshape returns the registration record of "reshape".
func Reshape[S shaped.Scalar]() ReshapeFunc[S] {
	return ReshapeFunc[S]{
		Primal: (*shaped.ShapedArray[S]).Reshaped,
		VJP:    ReshapeVJP[S],
	}
}

// ReshapeOp records a reshape operation for autodiff.
//
// Forward: output = Reshape(input, newShape)
//
// Backward:
//   - d_input: Reshape(d_output, input.shape())
type ReshapeOp[S shaped.Scalar] struct {
	input    *shaped.ShapedArray[S]
	output   *shaped.ShapedArray[S]
	pullback UnaryPullback[S]
}

// NewReshapeOp reshapes input and returns the record of the operation.
func NewReshapeOp[S shaped.Scalar](input *shaped.ShapedArray[S], newShape shaped.Shape) *ReshapeOp[S] {
	output, pullback := ReshapeVJP(input, newShape)
	return &ReshapeOp[S]{
		input:    input,
		output:   output,
		pullback: pullback,
	}
}

// Name returns "reshape".
func (op *ReshapeOp[S]) Name() string {
	return "reshape"
}

// Inputs returns the input array.
func (op *ReshapeOp[S]) Inputs() []*shaped.ShapedArray[S] {
	return []*shaped.ShapedArray[S]{op.input}
}

// Output returns the reshaped array.
func (op *ReshapeOp[S]) Output() *shaped.ShapedArray[S] {
	return op.output
}

// Backward reshapes outputGrad back to the input shape.
func (op *ReshapeOp[S]) Backward(outputGrad *shaped.ShapedArray[S]) []*shaped.ShapedArray[S] {
	return []*shaped.ShapedArray[S]{op.pullback(outputGrad)}
}
