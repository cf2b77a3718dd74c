package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adagrad implements the Adagrad optimizer for a single parameter tensor.
//
// Adagrad keeps the running sum of every squared gradient ever applied to the
// parameter and scales each element's step by the inverse square root of that sum:
//
//	n     = n + gradient²
//	param = param - lr * gradient / sqrt(n + eps)
//
// Step sizes therefore shrink monotonically for elements that keep receiving
// large gradients. There is no decay: the accumulator is never reset while the
// optimizer lives.
//
// Example:
//
//	opt := optim.NewAdagrad(4, 6, optim.AdagradConfig{
//	    LR:  0.08,
//	    Eps: 1e-5,
//	})
//
//	update := opt.Apply(grad) // -lr * grad / sqrt(n + eps)
//	weight.Add(weight, update)
type Adagrad struct {
	lr    float64
	eps   float64
	accum *mat.Dense // Sum of squared gradients, same shape as the parameter
}

// AdagradConfig holds configuration for Adagrad optimizer.
type AdagradConfig struct {
	LR  float64 // Learning rate (default: 0.08)
	Eps float64 // Term for numerical stability (default: 1e-5)
}

// Default Adagrad hyperparameters.
const (
	DefaultAdagradLR  = 0.08
	DefaultAdagradEps = 1e-5
)

// NewAdagrad creates an Adagrad optimizer for a rows x cols parameter.
//
// The accumulator starts at zero. Zero-valued config fields fall back to the
// defaults.
func NewAdagrad(rows, cols int, config AdagradConfig) *Adagrad {
	if config.LR == 0 {
		config.LR = DefaultAdagradLR
	}
	if config.Eps == 0 {
		config.Eps = DefaultAdagradEps
	}

	return &Adagrad{
		lr:    config.LR,
		eps:   config.Eps,
		accum: mat.NewDense(rows, cols, nil),
	}
}

// Apply folds grad into the accumulator and returns the update to add to the parameter.
//
// The accumulator is updated in place before the update is computed, so the
// very first step divides by sqrt(grad² + eps) and never by zero.
//
// Panics if grad does not match the accumulator shape.
func (a *Adagrad) Apply(grad mat.Matrix) *mat.Dense {
	rows, cols := a.accum.Dims()
	mustMatch("adagrad: grad", grad, rows, cols)

	update := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			g := grad.At(i, j)
			n := a.accum.At(i, j) + g*g
			a.accum.Set(i, j, n)
			update.Set(i, j, -a.lr*g/math.Sqrt(n+a.eps))
		}
	}
	return update
}

// Step applies the Adagrad update for grad to param in place.
func (a *Adagrad) Step(param *mat.Dense, grad mat.Matrix) {
	rows, cols := a.accum.Dims()
	mustMatch("adagrad: param", param, rows, cols)
	param.Add(param, a.Apply(grad))
}

// GetLR returns the learning rate.
func (a *Adagrad) GetLR() float64 {
	return a.lr
}

// Eps returns the numerical-stability term.
func (a *Adagrad) Eps() float64 {
	return a.eps
}

// Accumulator returns a read-only view of the sum of squared gradients.
func (a *Adagrad) Accumulator() mat.Matrix {
	return a.accum
}

// StateDict returns the optimizer state for serialization.
//
// State key: "accum" -> copy of the accumulator.
func (a *Adagrad) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{"accum": mat.DenseCopyOf(a.accum)}
}

// LoadStateDict restores a previously saved accumulator.
//
// A missing "accum" entry leaves the zero accumulator in place.
func (a *Adagrad) LoadStateDict(stateDict map[string]*mat.Dense) error {
	accum, ok := stateDict["accum"]
	if !ok {
		return nil
	}
	rows, cols := a.accum.Dims()
	if r, c := accum.Dims(); r != rows || c != cols {
		return &ShapeError{Op: "adagrad: load accum", Rows: rows, Cols: cols, GotRows: r, GotCols: c}
	}
	a.accum.Copy(accum)
	return nil
}
