// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation for shaped arrays.
//
// Every differentiable operation is exposed as a VJP function returning the
// primal value together with a pullback closure. A GradientTape records
// operations and replays the pullbacks in reverse, starting every gradient
// slot at the canonical zero.
//
// Example:
//
//	import (
//	    "github.com/born-ml/shaped/autodiff"
//	    "github.com/born-ml/shaped/shaped"
//	)
//
//	func main() {
//	    a := shaped.MustFromSlice([]float32{1, 2}, shaped.Shape{2})
//	    b := shaped.MustFromSlice([]float32{3, 4}, shaped.Shape{2})
//
//	    tape := autodiff.NewGradientTape(autodiff.DefaultConfig[float32]())
//	    tape.StartRecording()
//	    y := tape.Reshape(tape.Sub(a, b), shaped.Shape{1, 2})
//
//	    grads := autodiff.Backward(tape, y) // grads[a] = [1 1], grads[b] = [-1 -1]
//	}
package autodiff

import (
	"github.com/born-ml/shaped/internal/autodiff"
	"github.com/born-ml/shaped/internal/autodiff/ops"
	"github.com/born-ml/shaped/internal/shaped"
)

// GradientTape records operations for automatic differentiation.
type GradientTape[S shaped.Scalar] = autodiff.GradientTape[S]

// Config controls tape construction.
type Config[S shaped.Scalar] = autodiff.Config[S]

// DefaultConfig returns a config with the built-in operation registry.
func DefaultConfig[S shaped.Scalar]() Config[S] {
	return autodiff.DefaultConfig[S]()
}

// NewGradientTape creates a new gradient tape. Recording is off until StartRecording.
func NewGradientTape[S shaped.Scalar](config Config[S]) *GradientTape[S] {
	return autodiff.NewGradientTape(config)
}

// Backward computes gradients of output with respect to every recorded input,
// seeding the output with ones.
func Backward[S shaped.Scalar](tape *GradientTape[S], output *shaped.ShapedArray[S]) map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S] {
	return autodiff.Backward(tape, output)
}

// BinaryPullback maps an upstream gradient to gradients for both operands.
type BinaryPullback[S shaped.Scalar] = ops.BinaryPullback[S]

// UnaryPullback maps an upstream gradient to a gradient for the single input.
type UnaryPullback[S shaped.Scalar] = ops.UnaryPullback[S]

// InPlacePullback maps the gradient of an updated left operand to the right operand's gradient.
type InPlacePullback[S shaped.Scalar] = ops.InPlacePullback[S]

// Registry holds the differentiable operations a tape can apply by name.
type Registry[S shaped.Scalar] = ops.Registry[S]

// BinaryFunc is a registration record for a value-returning binary operation.
type BinaryFunc[S shaped.Scalar] = ops.BinaryFunc[S]

// InPlaceFunc is a registration record for an in-place binary operation.
type InPlaceFunc[S shaped.Scalar] = ops.InPlaceFunc[S]

// NewRegistry returns a registry preloaded with the built-in operations.
func NewRegistry[S shaped.Scalar]() *Registry[S] {
	return ops.NewRegistry[S]()
}

// AddVJP returns a + b and a pullback v ↦ (v, v).
func AddVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	return ops.AddVJP(a, b)
}

// SubVJP returns a - b and a pullback v ↦ (v, -v).
func SubVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	return ops.SubVJP(a, b)
}

// MulVJP returns the scoped accumulation product of a and b and a pullback v ↦ (v, v).
func MulVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	return ops.MulVJP(a, b)
}

// HadamardVJP returns a ⊙ b and a pullback v ↦ (v ⊙ b, v ⊙ a).
func HadamardVJP[S shaped.Scalar](a, b *shaped.ShapedArray[S]) (*shaped.ShapedArray[S], BinaryPullback[S]) {
	return ops.HadamardVJP(a, b)
}

// ReshapeVJP returns a with newShape and a pullback that restores the original shape.
func ReshapeVJP[S shaped.Scalar](a *shaped.ShapedArray[S], newShape shaped.Shape) (*shaped.ShapedArray[S], UnaryPullback[S]) {
	return ops.ReshapeVJP(a, newShape)
}

// AddAssignVJP performs lhs += rhs and returns the pullback for rhs.
func AddAssignVJP[S shaped.Scalar](lhs, rhs *shaped.ShapedArray[S]) InPlacePullback[S] {
	return ops.AddAssignVJP(lhs, rhs)
}

// SubAssignVJP performs lhs -= rhs and returns the pullback for rhs.
func SubAssignVJP[S shaped.Scalar](lhs, rhs *shaped.ShapedArray[S]) InPlacePullback[S] {
	return ops.SubAssignVJP(lhs, rhs)
}

// MulAssignVJP performs lhs *= rhs and returns the pullback for rhs.
func MulAssignVJP[S shaped.Scalar](lhs, rhs *shaped.ShapedArray[S]) InPlacePullback[S] {
	return ops.MulAssignVJP(lhs, rhs)
}
