package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Initializer fills a new rows x cols tensor using rng.
type Initializer func(rows, cols int, rng *rand.Rand) *mat.Dense

// DefaultInitScale is the scale used by the default Uniform initializer.
const DefaultInitScale = 0.5

// Uniform returns an initializer drawing values from scale * U[0, 1).
//
// This is the default for every gate weight and bias.
func Uniform(scale float64) Initializer {
	return func(rows, cols int, rng *rand.Rand) *mat.Dense {
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = scale * rng.Float64()
		}
		return mat.NewDense(rows, cols, data)
	}
}

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// fan_in is the column count and fan_out the row count of the tensor.
func Xavier() Initializer {
	return func(rows, cols int, rng *rand.Rand) *mat.Dense {
		bound := math.Sqrt(6.0 / float64(rows+cols))
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = (rng.Float64()*2.0 - 1.0) * bound
		}
		return mat.NewDense(rows, cols, data)
	}
}

// Zeros returns an initializer producing all-zero tensors.
func Zeros() Initializer {
	return func(rows, cols int, _ *rand.Rand) *mat.Dense {
		return mat.NewDense(rows, cols, nil)
	}
}

// InitializerByName resolves "uniform", "xavier" or "zeros".
//
// scale only applies to "uniform". Returns false for unknown names.
func InitializerByName(name string, scale float64) (Initializer, bool) {
	switch name {
	case "", "uniform":
		if scale == 0 {
			scale = DefaultInitScale
		}
		return Uniform(scale), true
	case "xavier":
		return Xavier(), true
	case "zeros":
		return Zeros(), true
	default:
		return nil, false
	}
}
