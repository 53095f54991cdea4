package optim

import (
	"github.com/pkg/errors"

	"github.com/born-ml/shaped/internal/serialization"
	"github.com/born-ml/shaped/internal/shaped"
)

// Stateful is implemented by optimizers whose state can be checkpointed.
type Stateful[S shaped.Scalar] interface {
	StateDict() map[string]*shaped.ShapedArray[S]
	LoadStateDict(stateDict map[string]*shaped.ShapedArray[S]) error
}

// SaveState writes the optimizer state to a SafeTensors file at path.
func SaveState[S shaped.Scalar](path string, opt Stateful[S], metadata map[string]string) error {
	if err := serialization.Save(path, opt.StateDict(), metadata); err != nil {
		return errors.WithMessage(err, "failed to save optimizer state")
	}
	return nil
}

// LoadState restores optimizer state written by SaveState and returns the
// file's metadata.
func LoadState[S shaped.Scalar](path string, opt Stateful[S]) (map[string]string, error) {
	state, metadata, err := serialization.Load[S](path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load optimizer state")
	}
	if err := opt.LoadStateDict(state); err != nil {
		return nil, err
	}
	return metadata, nil
}
