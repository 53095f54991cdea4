package autodiff

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/shaped/internal/shaped"
)

// Backward computes gradients of output with respect to every array that
// took part in the recorded operations, seeding output's gradient with ones.
//
// Example:
//
//	tape := autodiff.NewGradientTape[float32](autodiff.DefaultConfig[float32]())
//	tape.StartRecording()
//	y := tape.Sub(x, c)
//	gradients := autodiff.Backward(tape, y)
//	grad := gradients[x] // ones
func Backward[S shaped.Scalar](tape *GradientTape[S], output *shaped.ShapedArray[S]) map[*shaped.ShapedArray[S]]*shaped.ShapedArray[S] {
	if tape.NumOps() == 0 {
		exceptions.Panicf("backward: no operations recorded (did you forget to call StartRecording()?)")
	}
	return tape.Backward(output, shaped.Ones[S](output.Shape()))
}
