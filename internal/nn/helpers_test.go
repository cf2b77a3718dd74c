package nn_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// encode turns symbol ids into one-hot vectors of the given size.
func encode(ids []int, size int) []*mat.VecDense {
	out := make([]*mat.VecDense, len(ids))
	for k, id := range ids {
		v := mat.NewVecDense(size, nil)
		v.SetVec(id, 1)
		out[k] = v
	}
	return out
}

// randomVecs returns n vectors of the given size with entries in [-1, 1).
func randomVecs(rng *rand.Rand, n, size int) []*mat.VecDense {
	out := make([]*mat.VecDense, n)
	for k := range out {
		data := make([]float64, size)
		for i := range data {
			data[i] = rng.Float64()*2 - 1
		}
		out[k] = mat.NewVecDense(size, data)
	}
	return out
}

// newOutputCell builds an output cell with hidden size h, external input size x and vocabulary v.
func newOutputCell(t *testing.T, h, x, v int, seed int64) *nn.Cell {
	t.Helper()
	//nolint:gosec // deterministic test weights
	params, err := nn.NewParameterSet(h, x+h, v, true, nil, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return nn.NewCell(params)
}

// newHiddenCell builds a hidden-state cell with hidden size h and external input size x.
func newHiddenCell(t *testing.T, h, x int, seed int64) *nn.Cell {
	t.Helper()
	//nolint:gosec // deterministic test weights
	params, err := nn.NewParameterSet(h, x+h, 0, false, nil, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return nn.NewCell(params)
}

// flatten copies a matrix into a row-major slice.
func flatten(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

// assign writes a row-major slice into m.
func assign(m *mat.Dense, data []float64) {
	_, cols := m.Dims()
	for k, v := range data {
		m.Set(k/cols, k%cols, v)
	}
}
