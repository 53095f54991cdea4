package autodiff

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/shaped/internal/autodiff/ops"
	"github.com/born-ml/shaped/internal/shaped"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// Operations are identified by the *shaped.ShapedArray handles they consume
// and produce, so a handle must not be mutated in place between being
// recorded and the backward pass.
//
// Usage:
//
//	tape := NewGradientTape[float32](DefaultConfig[float32]())
//	tape.StartRecording()
//	// ... perform operations through the tape ...
//	gradients := tape.Backward(output, outputGrad)
type GradientTape[S shaped.Scalar] struct {
	operations []ops.Operation[S] // Recorded operations (in execution order)
	recording  bool               // Whether tape is currently recording
	registry   *ops.Registry[S]
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape[S shaped.Scalar](config Config[S]) *GradientTape[S] {
	if config.InitialCapacity <= 0 {
		config.InitialCapacity = 64
	}
	if config.Registry == nil {
		config.Registry = ops.NewRegistry[S]()
	}
	return &GradientTape[S]{
		operations: make([]ops.Operation[S], 0, config.InitialCapacity),
		registry:   config.Registry,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape[S]) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape[S]) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape[S]) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape[S]) Record(op ops.Operation[S]) {
	if t.recording {
		klog.V(2).Infof("tape: recorded %s -> %s", op.Name(), op.Output().Shape())
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape[S]) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape[S]) NumOps() int {
	return len(t.operations)
}

// Apply executes the registered binary operation name on (lhs, rhs),
// records it and returns the forward value.
// Panics if no binary operation with that name is registered.
func (t *GradientTape[S]) Apply(name string, lhs, rhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
	fn, ok := t.registry.Binary(name)
	if !ok {
		exceptions.Panicf("GradientTape.Apply: unknown binary operation %q", name)
	}
	if !t.recording {
		return fn.Primal(lhs, rhs)
	}
	op := ops.NewBinaryOp(fn, lhs, rhs)
	t.Record(op)
	return op.Output()
}

// Add records lhs + rhs.
func (t *GradientTape[S]) Add(lhs, rhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
	return t.Apply("add", lhs, rhs)
}

// Sub records lhs - rhs.
func (t *GradientTape[S]) Sub(lhs, rhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
	return t.Apply("sub", lhs, rhs)
}

// Mul records the scoped accumulation multiply lhs * rhs (identity pullback).
func (t *GradientTape[S]) Mul(lhs, rhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
	return t.Apply("mul", lhs, rhs)
}

// Hadamard records the element-wise product of lhs and rhs.
func (t *GradientTape[S]) Hadamard(lhs, rhs *shaped.ShapedArray[S]) *shaped.ShapedArray[S] {
	return t.Apply("hadamard", lhs, rhs)
}

// Reshape records input reshaped to newShape.
func (t *GradientTape[S]) Reshape(input *shaped.ShapedArray[S], newShape shaped.Shape) *shaped.ShapedArray[S] {
	if !t.recording {
		return t.registry.Reshape().Primal(input, newShape)
	}
	op := ops.NewReshapeOp(input, newShape)
	t.Record(op)
	return op.Output()
}

// Backward computes gradients for all inputs by walking the tape in reverse.
//
// Algorithm:
//  1. Seed the gradient of output with outputGrad
//  2. Walk operations in reverse order
//  3. For each operation with a gradient, compute input gradients using its pullback
//  4. Accumulate gradients when the same array is used multiple times; every
//     slot starts at the canonical zero
//
// Returns a map from array handle to its accumulated gradient.
// Panics on shape mismatches raised by the pullbacks; see TryBackward.
func (t *GradientTape[S]) Backward(output, outputGrad *shaped.ShapedArray[S]) map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S] {
	grads := make(map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S])
	if len(t.operations) == 0 {
		return grads
	}

	// Stop recording during backward pass to prevent recording gradient operations
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	grads[output] = outputGrad.Clone()
	applied := 0
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		opOutputGrad, hasGrad := grads[op.Output()]
		if !hasGrad {
			continue
		}
		inputGrads := op.Backward(opOutputGrad)
		applied++
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			acc, exists := grads[input]
			grads[input] = ops.Accumulate(acc, exists, inputGrads[j], shaped.Zero[S])
		}
	}
	klog.V(1).Infof("tape: backward applied %d of %d operations, %d gradients", applied, len(t.operations), len(grads))
	return grads
}

// TryBackward is like Backward but returns shape errors raised by the
// pullbacks (e.g. a seed gradient with the wrong number of elements) as an error.
func (t *GradientTape[S]) TryBackward(output, outputGrad *shaped.ShapedArray[S]) (grads map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S], err error) {
	err = exceptions.TryCatch[error](func() {
		grads = t.Backward(output, outputGrad)
	})
	if err != nil {
		return nil, errors.WithMessage(err, "backward pass failed")
	}
	return grads, nil
}
