package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

const gradTolerance = 1e-6

var centralSettings = &fd.Settings{Formula: fd.Central, Step: 1e-6}

// numericGrad differentiates loss with respect to every entry of m.
//
// m is restored before returning.
func numericGrad(m *mat.Dense, loss func() float64) []float64 {
	original := flatten(m)
	defer assign(m, original)

	return fd.Gradient(nil, func(x []float64) float64 {
		assign(m, x)
		return loss()
	}, original, centralSettings)
}

// checkParameters compares analytic gradients of params against central differences.
func checkParameters(t *testing.T, params []*nn.Parameter, loss func() float64) {
	t.Helper()
	for _, p := range params {
		require.NotNil(t, p.Grad(), "no gradient for %s", p.Name())
		analytic := flatten(p.Grad())
		numeric := numericGrad(p.Tensor(), loss)
		for k := range analytic {
			assert.InDelta(t, numeric[k], analytic[k], gradTolerance, "%s[%d]", p.Name(), k)
		}
	}
}

// TestOutputCellGradients checks every parameter of an output cell (H=2, I=4, V=3, T=3).
func TestOutputCellGradients(t *testing.T) {
	cell := newOutputCell(t, 2, 2, 3, 11)
	xs := []*mat.VecDense{
		mat.NewVecDense(2, []float64{1, 0}),
		mat.NewVecDense(2, []float64{0, 1}),
		mat.NewVecDense(2, []float64{0.5, -0.5}),
	}
	targets := encode([]int{2, 0, 1}, 3)

	_, _, err := cell.Forward(xs, targets)
	require.NoError(t, err)
	_, err = cell.Backward(nil, math.Inf(1))
	require.NoError(t, err)

	checkParameters(t, cell.Params().Parameters(), func() float64 {
		_, loss, err := cell.Forward(xs, targets)
		require.NoError(t, err)
		return loss
	})
}

// TestHiddenCellGradients checks parameter and input gradients of a hidden-state cell
// against the scalar loss Σ_t w_t·h_t.
func TestHiddenCellGradients(t *testing.T) {
	//nolint:gosec // deterministic fixture
	rng := rand.New(rand.NewSource(3))
	cell := newHiddenCell(t, 3, 2, 13)
	xs := randomVecs(rng, 4, 2)
	weights := randomVecs(rng, 4, 3)

	loss := func() float64 {
		hs, _, err := cell.Forward(xs, nil)
		require.NoError(t, err)
		total := 0.0
		for k, h := range hs {
			total += mat.Dot(h, weights[k])
		}
		cell.Reset()
		return total
	}

	_, _, err := cell.Forward(xs, nil)
	require.NoError(t, err)
	dxs, err := cell.Backward(weights, math.Inf(1))
	require.NoError(t, err)
	require.Len(t, dxs, len(xs))

	checkParameters(t, cell.Params().Parameters(), loss)

	for k, x := range xs {
		column := mat.NewDense(x.Len(), 1, nil)
		column.SetCol(0, x.RawVector().Data)
		original := mat.VecDenseCopyOf(x)

		numeric := numericGrad(column, func() float64 {
			x.CopyVec(column.ColView(0))
			return loss()
		})
		x.CopyVec(original)

		for i := range numeric {
			assert.InDelta(t, numeric[i], dxs[k].AtVec(i), gradTolerance, "dx[%d][%d]", k, i)
		}
	}
}

// TestStackGradients checks a two-layer stack, threading the output cell's
// input gradients into the hidden cell below.
func TestStackGradients(t *testing.T) {
	stack, err := nn.NewStack(nn.StackConfig{
		Layers: 2,
		Hidden: 2,
		Vocab:  3,
		Seed:   17,
		Layer:  nn.LayerConfig{Clip: math.Inf(1)},
	})
	require.NoError(t, err)

	xs := encode([]int{0, 1, 2}, 3)
	targets := encode([]int{1, 2, 0}, 3)

	_, _, err = stack.Forward(xs, targets)
	require.NoError(t, err)
	upstream, err := stack.Layer(1).Cell().Backward(nil, math.Inf(1))
	require.NoError(t, err)
	_, err = stack.Layer(0).Cell().Backward(upstream, math.Inf(1))
	require.NoError(t, err)

	checkParameters(t, stack.Parameters(), func() float64 {
		_, loss, err := stack.Forward(xs, targets)
		require.NoError(t, err)
		stack.Reset()
		return loss
	})
}
