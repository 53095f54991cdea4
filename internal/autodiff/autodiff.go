// Package autodiff implements a reference reverse-mode engine for shaped arrays.
//
// The differentiation rules live in package ops; this package replays them:
//   - GradientTape: executes primal/pullback pairs during the forward pass
//     and records them
//   - Backward: walks the records in reverse, accumulating each gradient slot
//     from the canonical zero
//
// Usage:
//
//	tape := autodiff.NewGradientTape[float32](autodiff.DefaultConfig())
//	tape.StartRecording()
//
//	x := shaped.MustFromSlice([]float32{1, 2, 3, 4}, shaped.Shape{4})
//	y := tape.Reshape(tape.Sub(x, c), shaped.Shape{2, 2})
//
//	grads := autodiff.Backward(tape, y) // seeded with ones
//	fmt.Println(grads[x])
package autodiff

import (
	"github.com/born-ml/shaped/internal/autodiff/ops"
	"github.com/born-ml/shaped/internal/shaped"
)

// Config holds configuration for a GradientTape.
type Config[S shaped.Scalar] struct {
	// InitialCapacity pre-allocates room for this many recorded operations (default: 64).
	InitialCapacity int

	// Registry provides the primal/VJP records executed by the tape
	// (default: ops.NewRegistry).
	Registry *ops.Registry[S]
}

// DefaultConfig returns the default tape configuration.
func DefaultConfig[S shaped.Scalar]() Config[S] {
	return Config[S]{
		InitialCapacity: 64,
		Registry:        ops.NewRegistry[S](),
	}
}
