// Package ops defines the differentiable operations on shaped arrays.
//
// Every operation comes as a primal/pullback pair: a VJP function runs the
// forward computation and returns, alongside the value, a pullback closure
// mapping the output gradient to input gradients. Pairs are bundled into
// registration records (BinaryFunc, InPlaceFunc, ReshapeFunc) that an autodiff
// engine looks up in a Registry, and into op records implementing Operation
// that a gradient tape replays in reverse.
//
// Supported operations:
//   - add: d(a+b)/da = 1, d(a+b)/db = 1
//   - sub: d(a-b)/da = 1, d(a-b)/db = -1
//   - mul: scoped accumulation multiply, identity pullback (no product rule)
//   - hadamard: element-wise product (d(a*b)/da = b, d(a*b)/db = a)
//   - reshape: gradient is reshaped back to the input shape
//   - add_assign, sub_assign, mul_assign: in-place variants of add, sub and mul
package ops

import "github.com/born-ml/shaped/internal/shaped"

// BinaryPullback maps the gradient of a binary operation's output to the
// gradients of its left and right operands.
type BinaryPullback[S shaped.Scalar] func(v *shaped.ShapedArray[S]) (dlhs, drhs *shaped.ShapedArray[S])

// UnaryPullback maps the gradient of a unary operation's output to the
// gradient of its input.
type UnaryPullback[S shaped.Scalar] func(v *shaped.ShapedArray[S]) *shaped.ShapedArray[S]

// InPlacePullback is the pullback of an in-place operation lhs op= rhs.
// It receives the lhs gradient slot, which it may update, and returns the
// gradient for rhs.
type InPlacePullback[S shaped.Scalar] func(dlhs *shaped.ShapedArray[S]) (drhs *shaped.ShapedArray[S])

// Operation represents a differentiable operation recorded in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation[S shaped.Scalar] interface {
	// Name identifies the operation kind, e.g. "add".
	Name() string

	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input.
	//
	// Example for add:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)]
	Backward(outputGrad *shaped.ShapedArray[S]) []*shaped.ShapedArray[S]

	// Inputs returns the input arrays for this operation.
	Inputs() []*shaped.ShapedArray[S]

	// Output returns the array produced by this operation.
	Output() *shaped.ShapedArray[S]
}

// BinaryOp is the record of an executed binary operation.
type BinaryOp[S shaped.Scalar] struct {
	name     string
	inputs   []*shaped.ShapedArray[S] // [lhs, rhs]
	output   *shaped.ShapedArray[S]
	pullback BinaryPullback[S]
}

// NewBinaryOp executes fn's VJP on (lhs, rhs) and returns the record of the
// operation; the forward value is available through Output.
func NewBinaryOp[S shaped.Scalar](fn BinaryFunc[S], lhs, rhs *shaped.ShapedArray[S]) *BinaryOp[S] {
	output, pullback := fn.VJP(lhs, rhs)
	return &BinaryOp[S]{
		name:     fn.Name,
		inputs:   []*shaped.ShapedArray[S]{lhs, rhs},
		output:   output,
		pullback: pullback,
	}
}

// Name returns the operation name.
func (op *BinaryOp[S]) Name() string {
	return op.name
}

// Backward returns [dlhs, drhs].
func (op *BinaryOp[S]) Backward(outputGrad *shaped.ShapedArray[S]) []*shaped.ShapedArray[S] {
	dlhs, drhs := op.pullback(outputGrad)
	return []*shaped.ShapedArray[S]{dlhs, drhs}
}

// Inputs returns [lhs, rhs].
func (op *BinaryOp[S]) Inputs() []*shaped.ShapedArray[S] {
	return op.inputs
}

// Output returns the forward value.
func (op *BinaryOp[S]) Output() *shaped.ShapedArray[S] {
	return op.output
}
