package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sigmoid computes the logistic function 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SigmoidGrad returns the derivative of the sigmoid expressed through its output s.
//
//	d/dx σ(x) = s * (1 - s)
func SigmoidGrad(s float64) float64 {
	return s * (1 - s)
}

// TanhGrad returns the derivative of tanh expressed through its output u.
//
//	d/dx tanh(x) = 1 - u²
func TanhGrad(u float64) float64 {
	return 1 - u*u
}

// Softmax returns exp(v) / Σ exp(v) for a column vector.
//
// The maximum logit is subtracted before exponentiating so large logits
// cannot overflow.
func Softmax(v mat.Vector) *mat.VecDense {
	n := v.Len()
	data := make([]float64, n)
	for k := 0; k < n; k++ {
		data[k] = v.AtVec(k)
	}

	maxV := floats.Max(data)
	for k := range data {
		data[k] = math.Exp(data[k] - maxV)
	}
	floats.Scale(1/floats.Sum(data), data)

	return mat.NewVecDense(n, data)
}

// Argmax returns the index of the largest entry of v.
//
// Ties resolve to the lowest index.
func Argmax(v mat.Vector) int {
	best := 0
	for k := 1; k < v.Len(); k++ {
		if v.AtVec(k) > v.AtVec(best) {
			best = k
		}
	}
	return best
}

// mapVec returns a new vector with fn applied to every element of v.
func mapVec(v mat.Vector, fn func(float64) float64) *mat.VecDense {
	n := v.Len()
	out := mat.NewVecDense(n, nil)
	for k := 0; k < n; k++ {
		out.SetVec(k, fn(v.AtVec(k)))
	}
	return out
}

// concat stacks a on top of b.
func concat(a, b mat.Vector) *mat.VecDense {
	n, m := a.Len(), b.Len()
	z := mat.NewVecDense(n+m, nil)
	for k := 0; k < n; k++ {
		z.SetVec(k, a.AtVec(k))
	}
	for k := 0; k < m; k++ {
		z.SetVec(n+k, b.AtVec(k))
	}
	return z
}

// affine computes w·z + b for a column bias b.
func affine(w, b *mat.Dense, z mat.Vector) *mat.VecDense {
	rows, _ := w.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(w, z)
	out.AddVec(out, b.ColView(0))
	return out
}

// addColumn adds v to the single column of dst in place.
func addColumn(dst *mat.Dense, v mat.Vector) {
	for k := 0; k < v.Len(); k++ {
		dst.Set(k, 0, dst.At(k, 0)+v.AtVec(k))
	}
}

// oneHot returns a size-length vector with a 1 at id.
func oneHot(id, size int) *mat.VecDense {
	v := mat.NewVecDense(size, nil)
	v.SetVec(id, 1)
	return v
}
