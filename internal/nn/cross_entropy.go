package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CrossEntropy computes -log(y)·target for a probability vector y.
//
// Entries where target is zero do not contribute, so a zero probability
// only fails when the target actually puts mass on it.
//
// Returns ErrShapeMismatch if the sizes differ and ErrZeroProbability if the
// target selects a class with probability zero.
func CrossEntropy(y, target mat.Vector) (float64, error) {
	if y.Len() != target.Len() {
		return 0, fmt.Errorf("%w: target has %d entries, distribution has %d", ErrShapeMismatch, target.Len(), y.Len())
	}

	loss := 0.0
	for k := 0; k < y.Len(); k++ {
		t := target.AtVec(k)
		if t == 0 {
			continue
		}
		p := y.AtVec(k)
		if p <= 0 {
			return 0, fmt.Errorf("%w: class %d", ErrZeroProbability, k)
		}
		loss -= t * math.Log(p)
	}
	return loss, nil
}

// CrossEntropyGrad returns ∂L/∂logits = y - target for softmax outputs y.
func CrossEntropyGrad(y, target mat.Vector) *mat.VecDense {
	grad := mat.NewVecDense(y.Len(), nil)
	grad.SubVec(y, target)
	return grad
}
