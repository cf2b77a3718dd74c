package optim_test

import (
	"math"
	"testing"

	"github.com/born-ml/stacklstm/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestAdagrad_Defaults tests zero-value config fallbacks.
func TestAdagrad_Defaults(t *testing.T) {
	opt := optim.NewAdagrad(2, 3, optim.AdagradConfig{})

	assert.InDelta(t, 0.08, opt.GetLR(), 1e-12)
	assert.InDelta(t, 1e-5, opt.Eps(), 1e-18)

	r, c := opt.Accumulator().Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.True(t, mat.Equal(opt.Accumulator(), mat.NewDense(2, 3, nil)), "accumulator must start at zero")
}

// TestAdagrad_Apply tests the update against hand-computed values.
func TestAdagrad_Apply(t *testing.T) {
	opt := optim.NewAdagrad(1, 2, optim.AdagradConfig{LR: 0.1, Eps: 1e-8})

	grad := mat.NewDense(1, 2, []float64{2, -1})
	update := opt.Apply(grad)

	// n = [4, 1]; update = -0.1 * g / sqrt(n + eps)
	assert.InDelta(t, -0.1*2/math.Sqrt(4+1e-8), update.At(0, 0), 1e-12)
	assert.InDelta(t, 0.1/math.Sqrt(1+1e-8), update.At(0, 1), 1e-12)
	assert.InDelta(t, 4.0, opt.Accumulator().At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, opt.Accumulator().At(0, 1), 1e-12)

	// Second step with the same gradient: n = [8, 2]
	update = opt.Apply(grad)
	assert.InDelta(t, -0.1*2/math.Sqrt(8+1e-8), update.At(0, 0), 1e-12)
	assert.InDelta(t, 0.1/math.Sqrt(2+1e-8), update.At(0, 1), 1e-12)
}

// TestAdagrad_ZeroGradient tests that a zero gradient never divides by zero.
func TestAdagrad_ZeroGradient(t *testing.T) {
	opt := optim.NewAdagrad(2, 2, optim.AdagradConfig{})

	update := opt.Apply(mat.NewDense(2, 2, nil))
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v := update.At(i, j)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			assert.Zero(t, v)
		}
	}
}

// TestAdagrad_Monotonic tests that the accumulator never decreases and steps shrink.
func TestAdagrad_Monotonic(t *testing.T) {
	opt := optim.NewAdagrad(2, 2, optim.AdagradConfig{})
	grads := []*mat.Dense{
		mat.NewDense(2, 2, []float64{0.3, -0.2, 0, 1}),
		mat.NewDense(2, 2, []float64{-0.5, 0.1, 0.4, -1}),
		mat.NewDense(2, 2, []float64{0.3, -0.2, 0.2, 1}),
		mat.NewDense(2, 2, []float64{0.0, 0.0, 0.0, 1}),
	}

	prev := mat.DenseCopyOf(opt.Accumulator())
	prevStep := math.Inf(1)
	for _, g := range grads {
		update := opt.Apply(g)
		acc := opt.Accumulator()
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.GreaterOrEqual(t, acc.At(i, j), prev.At(i, j))
			}
		}
		prev = mat.DenseCopyOf(acc)

		// Element (1,1) always receives |g| = 1, so its step must not grow.
		step := math.Abs(update.At(1, 1))
		assert.LessOrEqual(t, step, prevStep)
		prevStep = step
	}
}

// TestAdagrad_Step tests in-place parameter updates.
func TestAdagrad_Step(t *testing.T) {
	opt := optim.NewAdagrad(1, 1, optim.AdagradConfig{LR: 0.5, Eps: 1e-8})
	param := mat.NewDense(1, 1, []float64{1})

	opt.Step(param, mat.NewDense(1, 1, []float64{3}))

	// 1 - 0.5 * 3 / sqrt(9) = 0.5
	assert.InDelta(t, 0.5, param.At(0, 0), 1e-8)
}

// TestAdagrad_ShapeMismatch tests that mismatched gradients panic.
func TestAdagrad_ShapeMismatch(t *testing.T) {
	opt := optim.NewAdagrad(2, 3, optim.AdagradConfig{})

	assert.Panics(t, func() { opt.Apply(mat.NewDense(3, 2, nil)) })
	assert.Panics(t, func() { opt.Step(mat.NewDense(1, 1, nil), mat.NewDense(2, 3, nil)) })
}

// TestAdagrad_StateDict tests saving and restoring the accumulator.
func TestAdagrad_StateDict(t *testing.T) {
	opt := optim.NewAdagrad(1, 2, optim.AdagradConfig{})
	opt.Apply(mat.NewDense(1, 2, []float64{1, 2}))

	restored := optim.NewAdagrad(1, 2, optim.AdagradConfig{})
	require.NoError(t, restored.LoadStateDict(opt.StateDict()))
	assert.True(t, mat.Equal(opt.Accumulator(), restored.Accumulator()))

	wrong := optim.NewAdagrad(2, 2, optim.AdagradConfig{})
	err := wrong.LoadStateDict(opt.StateDict())
	var shapeErr *optim.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 1, shapeErr.GotRows)
}

func TestClipElementwise(t *testing.T) {
	tests := []struct {
		name  string
		bound float64
		in    []float64
		want  []float64
	}{
		{"within bound", 0.5, []float64{0.1, -0.4, 0.5, -0.5}, []float64{0.1, -0.4, 0.5, -0.5}},
		{"clamps both sides", 0.5, []float64{2, -3, 0.7, -0.51}, []float64{0.5, -0.5, 0.5, -0.5}},
		{"infinite bound", math.Inf(1), []float64{100, -100, 0, 1}, []float64{100, -100, 0, 1}},
		{"zero bound", 0, []float64{1, -1, 0, 3}, []float64{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mat.NewDense(2, 2, tt.in)
			optim.ClipElementwise(g, tt.bound)
			assert.True(t, mat.Equal(mat.NewDense(2, 2, tt.want), g), "got %v", mat.Formatted(g))
		})
	}

	assert.Panics(t, func() { optim.ClipElementwise(mat.NewDense(1, 1, nil), -1) })
}
