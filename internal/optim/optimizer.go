// Package optim implements the parameter update rules used to train recurrent layers.
//
// This package provides:
//   - Optimizer interface: Base interface for per-tensor update rules
//   - Adagrad: Per-element adaptive step sizes from accumulated squared gradients
//   - ClipElementwise: Symmetric element-wise gradient clipping
//
// Unlike a graph-based framework, every optimizer instance here is bound to exactly
// one parameter tensor for its whole lifetime. The owning layer creates one
// instance per tensor at build time and hands it the fully accumulated gradient
// once per backward pass.
//
// Example usage:
//
//	opt := optim.NewAdagrad(hidden, input, optim.AdagradConfig{LR: 0.08})
//
//	// After backward has accumulated and clipped grad:
//	opt.Step(weight, grad)
package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Optimizer is the base interface for all update rules.
//
// All optimizers must implement:
//   - Step: Apply an update computed from grad to param in place
//   - GetLR: Get the learning rate (for monitoring)
type Optimizer interface {
	// Step applies the update computed from grad to param in place.
	//
	// param and grad must have the shape the optimizer was created with.
	Step(param *mat.Dense, grad mat.Matrix)

	// GetLR returns the learning rate.
	GetLR() float64
}

// mustMatch panics when m does not have the expected dimensions.
func mustMatch(op string, m mat.Matrix, rows, cols int) {
	r, c := m.Dims()
	if r != rows || c != cols {
		panic(op + ": shape mismatch")
	}
}

// ShapeError reports a tensor whose dimensions differ from the optimizer's.
type ShapeError struct {
	Op               string
	Rows, Cols       int
	GotRows, GotCols int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %dx%d, got %dx%d", e.Op, e.Rows, e.Cols, e.GotRows, e.GotCols)
}
