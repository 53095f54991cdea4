package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/shaped/internal/autodiff"
	"github.com/born-ml/shaped/internal/shaped"
)

// weightedSum returns sum(w[i] * y[i]), the scalar loss whose gradient with
// respect to y is w.
func weightedSum(w, y *shaped.ShapedArray[float64]) float64 {
	var sum float64
	wData, yData := w.Scalars(), y.Scalars()
	for i := range yData {
		sum += wData[i] * yData[i]
	}
	return sum
}

// numericalGradient computes dL/dx with central finite differences, where
// L = weightedSum(w, f(x)).
func numericalGradient(f func(x *shaped.ShapedArray[float64]) *shaped.ShapedArray[float64],
	x, w *shaped.ShapedArray[float64], epsilon float64) []float64 {
	data := x.Scalars()
	grad := make([]float64, len(data))
	for i := range data {
		orig := data[i]

		data[i] = orig + epsilon
		plus := weightedSum(w, f(shaped.MustFromSlice(data, x.Shape())))

		data[i] = orig - epsilon
		minus := weightedSum(w, f(shaped.MustFromSlice(data, x.Shape())))

		data[i] = orig
		grad[i] = (plus - minus) / (2 * epsilon)
	}
	return grad
}

func checkGradient(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d gradient values, want %d", name, len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("%s[%d]: autodiff grad %f differs from numerical grad %f", name, i, got[i], want[i])
		}
	}
}

// TestNumericalGradient_Composite tests f(x) = reshape(x ⊙ x - c) against finite differences.
func TestNumericalGradient_Composite(t *testing.T) {
	c := shaped.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, shaped.Shape{6})
	w := shaped.MustFromSlice([]float64{0.5, -1, 2, 1, 3, -0.25}, shaped.Shape{2, 3})
	x := shaped.MustFromSlice([]float64{1.5, -2, 0.3, 4, -1.1, 2.2}, shaped.Shape{6})

	f := func(x *shaped.ShapedArray[float64]) *shaped.ShapedArray[float64] {
		return x.Hadamard(x).Sub(c).Reshaped(shaped.Shape{2, 3})
	}

	tape := autodiff.NewGradientTape(autodiff.DefaultConfig[float64]())
	tape.StartRecording()
	y := tape.Reshape(tape.Sub(tape.Hadamard(x, x), c), shaped.Shape{2, 3})
	grads := tape.Backward(y, w)

	// Analytic: dL/dx = 2 * x * w (reshaped).
	xData, wData := x.Scalars(), w.Scalars()
	expected := make([]float64, len(xData))
	for i := range xData {
		expected[i] = 2 * xData[i] * wData[i]
	}

	checkGradient(t, "dx", grads[x].Scalars(), expected)
	checkGradient(t, "dx numerical", grads[x].Scalars(), numericalGradient(f, x, w, 1e-6))
}

// TestNumericalGradient_SumOfProducts tests f(x) = x ⊙ a + x ⊙ b - x.
func TestNumericalGradient_SumOfProducts(t *testing.T) {
	a := shaped.MustFromSlice([]float64{2, 3, -1}, shaped.Shape{3})
	b := shaped.MustFromSlice([]float64{0.5, 0, 4}, shaped.Shape{3})
	w := shaped.MustFromSlice([]float64{1, 2, 3}, shaped.Shape{3})
	x := shaped.MustFromSlice([]float64{1, 2, 3}, shaped.Shape{3})

	f := func(x *shaped.ShapedArray[float64]) *shaped.ShapedArray[float64] {
		return x.Hadamard(a).Add(x.Hadamard(b)).Sub(x)
	}

	tape := autodiff.NewGradientTape(autodiff.DefaultConfig[float64]())
	tape.StartRecording()
	y := tape.Sub(tape.Add(tape.Hadamard(x, a), tape.Hadamard(x, b)), x)
	grads := tape.Backward(y, w)

	// Analytic: dL/dx = w * (a + b - 1) = [1.5, 4, 6]
	checkGradient(t, "dx", grads[x].Scalars(), []float64{1.5, 4, 6})
	checkGradient(t, "dx numerical", grads[x].Scalars(), numericalGradient(f, x, w, 1e-6))
}
