package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/born-ml/stacklstm/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var _ nn.SequenceModule = (*nn.Layer)(nil)

func newOutputLayer(t *testing.T, h, v int, config nn.LayerConfig) *nn.Layer {
	t.Helper()
	//nolint:gosec // deterministic test weights
	params, err := nn.NewParameterSet(h, h+v, v, true, nil, rand.New(rand.NewSource(21)))
	require.NoError(t, err)
	return nn.NewLayer(params, config)
}

func TestNewLayerDefaults(t *testing.T) {
	layer := newOutputLayer(t, 3, 4, nn.LayerConfig{})

	assert.Equal(t, optim.DefaultClip, layer.Clip())
	assert.True(t, layer.IsOutput())
	assert.Zero(t, layer.Steps())
	require.Len(t, layer.Optimizers(), len(layer.Parameters()))

	for k, opt := range layer.Optimizers() {
		param := layer.Parameters()[k]
		rows, cols := param.Dims()
		accum := opt.Accumulator()
		r, c := accum.Dims()
		assert.Equal(t, rows, r, param.Name())
		assert.Equal(t, cols, c, param.Name())
		assert.True(t, mat.Equal(accum, mat.NewDense(rows, cols, nil)), "accumulator of %s", param.Name())
		assert.Equal(t, optim.DefaultAdagradLR, opt.GetLR())
	}
}

// TestLayerBackwardAppliesAdagrad checks the first update against
// p - lr·g/sqrt(g² + eps) for the clipped gradient g.
func TestLayerBackwardAppliesAdagrad(t *testing.T) {
	layer := newOutputLayer(t, 3, 4, nn.LayerConfig{})
	xs := encode([]int{0, 1, 2, 3}, 4)
	targets := encode([]int{1, 2, 3, 0}, 4)

	before := make([]*mat.Dense, 0, len(layer.Parameters()))
	for _, p := range layer.Parameters() {
		before = append(before, mat.DenseCopyOf(p.Tensor()))
	}

	_, err := layer.Forward(xs, targets)
	require.NoError(t, err)
	assert.Greater(t, layer.Loss(), 0.0)

	dxs, err := layer.Backward(nil)
	require.NoError(t, err)
	require.Len(t, dxs, len(xs))

	for k, p := range layer.Parameters() {
		grad := p.Grad()
		rows, cols := p.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				g := grad.At(i, j)
				assert.LessOrEqual(t, math.Abs(g), optim.DefaultClip)
				want := before[k].At(i, j) - optim.DefaultAdagradLR*g/math.Sqrt(g*g+optim.DefaultAdagradEps)
				assert.InDelta(t, want, p.Tensor().At(i, j), 1e-12, "%s[%d,%d]", p.Name(), i, j)
			}
		}
	}
	assert.Equal(t, 1, layer.Steps())
}

func TestLayerBackwardEmptySequenceDoesNotUpdate(t *testing.T) {
	layer := newOutputLayer(t, 3, 4, nn.LayerConfig{})
	before := make([]*mat.Dense, 0)
	for _, p := range layer.Parameters() {
		before = append(before, mat.DenseCopyOf(p.Tensor()))
	}

	_, err := layer.Forward(nil, nil)
	require.NoError(t, err)
	dxs, err := layer.Backward(nil)
	require.NoError(t, err)
	assert.Empty(t, dxs)

	for k, p := range layer.Parameters() {
		assert.True(t, mat.Equal(before[k], p.Tensor()), "parameter %s changed", p.Name())
		rows, cols := p.Dims()
		assert.True(t, mat.Equal(layer.Optimizers()[k].Accumulator(), mat.NewDense(rows, cols, nil)))
	}
}

func TestLayerForwardErrorKeepsLossAndSteps(t *testing.T) {
	layer := newOutputLayer(t, 3, 4, nn.LayerConfig{})

	_, err := layer.Forward(encode([]int{0}, 4), encode([]int{1}, 4))
	require.NoError(t, err)
	loss := layer.Loss()
	require.Equal(t, 1, layer.Steps())

	_, err = layer.Forward(encode([]int{0}, 3), nil)
	assert.ErrorIs(t, err, nn.ErrShapeMismatch)
	assert.Equal(t, loss, layer.Loss())
	assert.Equal(t, 1, layer.Steps(), "a failed forward must not count as a step")

	_, err = layer.Forward(encode([]int{0, 1}, 4), encode([]int{1}, 4))
	assert.ErrorIs(t, err, nn.ErrSequenceLength)
	assert.Equal(t, 1, layer.Steps())
}

func TestLayerStateDict(t *testing.T) {
	a := newOutputLayer(t, 2, 3, nn.LayerConfig{})
	//nolint:gosec // deterministic test weights
	params, err := nn.NewParameterSet(2, 5, 3, true, nn.Zeros(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	b := nn.NewLayer(params, nn.LayerConfig{})

	require.NoError(t, b.LoadStateDict(a.StateDict()))
	for name, tensor := range a.StateDict() {
		assert.True(t, mat.Equal(tensor, b.StateDict()[name]), name)
	}

	incomplete := a.StateDict()
	delete(incomplete, "bv")
	assert.Error(t, b.LoadStateDict(incomplete))

	wrong := a.StateDict()
	wrong["wf"] = mat.NewDense(1, 1, nil)
	assert.ErrorIs(t, b.LoadStateDict(wrong), nn.ErrShapeMismatch)
}

func TestLayerOptimizerStateDict(t *testing.T) {
	a := newOutputLayer(t, 2, 3, nn.LayerConfig{})
	_, err := a.Forward(encode([]int{0, 1, 2}, 3), encode([]int{1, 2, 0}, 3))
	require.NoError(t, err)
	_, err = a.Backward(nil)
	require.NoError(t, err)

	state := a.OptimizerStateDict()
	require.Len(t, state, len(a.Parameters()))
	assert.Contains(t, state, "wf.accum")
	assert.Contains(t, state, "bv.accum")

	b := newOutputLayer(t, 2, 3, nn.LayerConfig{})
	require.NoError(t, b.LoadOptimizerStateDict(state))
	for k, opt := range a.Optimizers() {
		assert.True(t, mat.Equal(opt.Accumulator(), b.Optimizers()[k].Accumulator()), a.Parameters()[k].Name())
	}

	// The returned tensors are copies.
	state["wf.accum"].Zero()
	assert.False(t, mat.Equal(state["wf.accum"], a.Optimizers()[0].Accumulator()))

	wrong := a.OptimizerStateDict()
	wrong["wc.accum"] = mat.NewDense(1, 1, nil)
	assert.Error(t, b.LoadOptimizerStateDict(wrong))
}
