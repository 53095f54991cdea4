package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/shaped/autodiff"
	"github.com/born-ml/shaped/optim"
	"github.com/born-ml/shaped/shaped"
)

var (
	demoSteps      int    // Number of SGD steps
	demoCheckpoint string // Optional path for the optimizer state
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the canonical-zero scenario and a short gradient descent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if demoSteps < 0 {
				return errors.Errorf("--steps must be non-negative, got %d", demoSteps)
			}
			return runDemo(cmd.OutOrStdout(), demoSteps, demoCheckpoint)
		},
	}
	cmd.Flags().IntVar(&demoSteps, "steps", 50, "number of SGD steps to run")
	cmd.Flags().StringVar(&demoCheckpoint, "checkpoint", "", "write the SGD state to this SafeTensors file")
	return cmd
}

// runDemo prints the zero-sentinel arithmetic, the gradients of a small
// expression and the result of fitting a vector with SGD. If checkpoint is
// set, the optimizer state is saved there.
func runDemo(w io.Writer, steps int, checkpoint string) error {
	var sgd *optim.SGD[float64]
	err := exceptions.TryCatch[error](func() {
		zero := shaped.Zero[float64]()
		a := shaped.MustFromSlice([]float64{3, 4}, shaped.Shape{2})

		fmt.Fprintf(w, "zero + a = %s\n", zero.Add(a))
		diff := a.Sub(a)
		fmt.Fprintf(w, "a - a    = %s (canonical zero: %t)\n", diff, diff.IsCanonicalZero())

		// y = reshape((a ⊙ b) - a, [2, 1])
		b := shaped.MustFromSlice([]float64{0.5, -2}, shaped.Shape{2})
		tape := autodiff.NewGradientTape(autodiff.DefaultConfig[float64]())
		tape.StartRecording()
		y := tape.Reshape(tape.Sub(tape.Hadamard(a, b), a), shaped.Shape{2, 1})
		grads := autodiff.Backward(tape, y)
		tape.StopRecording()

		fmt.Fprintf(w, "y        = %s\n", y)
		fmt.Fprintf(w, "dy/da    = %s\n", grads[a])
		fmt.Fprintf(w, "dy/db    = %s\n", grads[b])

		// Fit x to target by minimizing sum((x - target)²).
		target := shaped.MustFromSlice([]float64{1, -1}, shaped.Shape{2})
		x := shaped.Full(shaped.Shape{2}, 0.0)
		sgd = optim.NewSGD([]*shaped.ShapedArray[float64]{x}, optim.SGDConfig[float64]{LR: 0.1, Momentum: 0.5})
		for step := range steps {
			tape.Clear()
			tape.StartRecording()
			residual := tape.Sub(x, target)
			g := tape.Backward(residual, residual.Scale(2))
			tape.StopRecording()
			sgd.Step(g)
			klog.V(1).Infof("demo: step %d x=%s", step, x)
		}
		fmt.Fprintf(w, "sgd(%d)  = %s\n", steps, x)
	})
	if err != nil || checkpoint == "" {
		return err
	}
	if err := optim.SaveState[float64](checkpoint, sgd, map[string]string{"steps": strconv.Itoa(steps)}); err != nil {
		return err
	}
	fmt.Fprintf(w, "saved optimizer state to %s\n", checkpoint)
	return nil
}
