// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for shaped-array parameters.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/shaped/autodiff"
//	    "github.com/born-ml/shaped/optim"
//	    "github.com/born-ml/shaped/shaped"
//	)
//
//	func main() {
//	    w := shaped.MustFromSlice([]float64{0, 0}, shaped.Shape{2})
//	    optimizer := optim.NewSGD([]*shaped.ShapedArray[float64]{w}, optim.SGDConfig[float64]{
//	        LR:       0.1,
//	        Momentum: 0.9,
//	    })
//
//	    tape := autodiff.NewGradientTape(autodiff.DefaultConfig[float64]())
//	    for range 100 {
//	        tape.Clear()
//	        tape.StartRecording()
//	        loss := tape.Sub(w, target)
//	        grads := tape.Backward(loss, loss.Scale(2))
//	        tape.StopRecording()
//	        optimizer.Step(grads)
//	    }
//	}
package optim

import (
	"github.com/born-ml/shaped/internal/optim"
	"github.com/born-ml/shaped/internal/shaped"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer[S shaped.Scalar] = optim.Optimizer[S]

// SGD represents the SGD optimizer with optional momentum.
type SGD[S shaped.Scalar] = optim.SGD[S]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig[S shaped.Scalar] = optim.SGDConfig[S]

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig[float32]{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD[S shaped.Scalar](params []*shaped.ShapedArray[S], config SGDConfig[S]) *SGD[S] {
	return optim.NewSGD(params, config)
}

// Stateful is implemented by optimizers whose state can be checkpointed.
type Stateful[S shaped.Scalar] = optim.Stateful[S]

// SaveState writes the optimizer state to a SafeTensors file at path.
// Canonical-zero velocities are preserved as the canonical zero.
func SaveState[S shaped.Scalar](path string, opt Stateful[S], metadata map[string]string) error {
	return optim.SaveState(path, opt, metadata)
}

// LoadState restores optimizer state written by SaveState and returns the file's metadata.
func LoadState[S shaped.Scalar](path string, opt Stateful[S]) (map[string]string, error) {
	return optim.LoadState(path, opt)
}
