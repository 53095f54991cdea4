// Package optim implements optimization algorithms over shaped-array parameters.
//
// Optimizers consume the gradient maps produced by a backward pass and update
// the parameters in place.
//
// Example usage:
//
//	optimizer := optim.NewSGD([]*shaped.ShapedArray[float32]{w}, optim.SGDConfig[float32]{
//	    LR: 0.1,
//	})
//
//	for step := range steps {
//	    tape.Clear()
//	    loss := forward(tape, w)
//	    grads := autodiff.Backward(tape, loss)
//	    optimizer.Step(grads)
//	}
package optim

import "github.com/born-ml/shaped/internal/shaped"

// Optimizer is the base interface for all optimization algorithms.
type Optimizer[S shaped.Scalar] interface {
	// Step applies gradient updates to all parameters in place.
	//
	// Parameters missing from grads (not part of the computation) are skipped.
	Step(grads map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S])

	// GetLR returns the current learning rate.
	GetLR() S
}
