package optim

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/shaped/internal/shaped"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Velocities start as the canonical zero, so the first step takes the
// gradient over without allocating a zero-filled buffer.
type SGD[S shaped.Scalar] struct {
	params     []*shaped.ShapedArray[S]
	lr         S
	momentum   S
	velocities map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S]
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig[S shaped.Scalar] struct {
	LR       S // Learning rate (default: 0.01)
	Momentum S // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer for params.
func NewSGD[S shaped.Scalar](params []*shaped.ShapedArray[S], config SGDConfig[S]) *SGD[S] {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD[S]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S]),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient (not in computational graph) are skipped.
func (s *SGD[S]) Step(grads map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S]) {
	for i, param := range s.params {
		grad, ok := grads[param]
		if !ok || grad == nil {
			klog.V(2).Infof("sgd: parameter %d has no gradient, skipped", i)
			continue
		}

		if s.momentum == 0 {
			// param -= lr * grad
			param.SubInPlace(grad.Scale(s.lr))
			continue
		}

		// velocity = momentum * velocity + grad
		velocity, exists := s.velocities[param]
		if !exists {
			velocity = shaped.Zero[S]()
			s.velocities[param] = velocity
		}
		velocity.ScaleInPlace(s.momentum)
		velocity.AddInPlace(grad)

		// param -= lr * velocity
		param.SubInPlace(velocity.Scale(s.lr))
	}
}

// GetLR returns the current learning rate.
func (s *SGD[S]) GetLR() S {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD[S]) SetLR(lr S) {
	s.lr = lr
}

// StateDict returns the optimizer state for serialization.
//
// For SGD with momentum, this exports velocity buffers for each parameter.
// Without momentum, returns an empty map.
//
// State keys: "velocity.{param_index}" -> velocity array.
func (s *SGD[S]) StateDict() map[string]*shaped.ShapedArray[S] {
	stateDict := make(map[string]*shaped.ShapedArray[S])
	if s.momentum == 0 {
		return stateDict
	}

	for i, param := range s.params {
		velocity, exists := s.velocities[param]
		if !exists {
			continue // No velocity yet (hasn't been used in training)
		}
		stateDict[fmt.Sprintf("velocity.%d", i)] = velocity.Clone()
	}
	return stateDict
}

// LoadStateDict restores velocity buffers saved by StateDict.
//
// If momentum is 0, the provided state is ignored. Returns an error if a
// velocity shape doesn't match its parameter's shape.
func (s *SGD[S]) LoadStateDict(stateDict map[string]*shaped.ShapedArray[S]) error {
	if s.momentum == 0 {
		return nil
	}

	velocities := make(map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S])
	for i, param := range s.params {
		velocity, exists := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !exists {
			// Initialized on first step.
			continue
		}
		if !velocity.IsCanonicalZero() && !velocity.Shape().Equal(param.Shape()) {
			return errors.Wrapf(shaped.ErrShapeMismatch, "velocity shape mismatch for parameter %d: expected %s, got %s",
				i, param.Shape(), velocity.Shape())
		}
		velocities[param] = velocity.Clone()
	}
	s.velocities = velocities
	return nil
}
