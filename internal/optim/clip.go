package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultClip is the default element-wise gradient bound.
const DefaultClip = 0.5

// ClipElementwise clamps every element of grad to [-bound, bound] in place.
//
// It is meant to run once on a gradient accumulated over a whole sequence,
// not on per-step contributions. A bound of +Inf leaves grad untouched.
//
// Panics if bound is negative or NaN.
func ClipElementwise(grad *mat.Dense, bound float64) {
	if bound < 0 || math.IsNaN(bound) {
		panic("optim: clip bound must be non-negative")
	}
	if math.IsInf(bound, 1) {
		return
	}
	grad.Apply(func(_, _ int, v float64) float64 {
		return math.Max(-bound, math.Min(bound, v))
	}, grad)
}
