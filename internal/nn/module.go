// Package nn implements stacked LSTM building blocks with hand-derived gradients.
//
// This package provides building blocks for character-level sequence models:
//   - Parameter: Trainable tensor with its accumulated gradient
//   - ParameterSet: Gate weights/biases of one LSTM cell (plus output projection)
//   - Cell: Single LSTM cell with step, sequence forward and BPTT backward
//   - Layer: Cell plus its Adagrad optimizers and output/hidden policy
//   - Stack: Pipeline of layers for training steps and greedy sampling
//   - Checkpoint: Persisting a Stack together with its vocabulary
//
// No automatic differentiation is involved: every forward computation has a
// matching backward computation written out by hand. All tensors are gonum
// float64 matrices; vectors are column vectors (*mat.VecDense).
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Module is the base interface for all components that own parameters.
//
// Every module must implement:
//   - Parameters: Return all trainable parameters in a stable order
//   - StateDict: Export parameter tensors by name
//   - LoadStateDict: Copy named tensors into the existing parameters
type Module interface {
	// Parameters returns all trainable parameters of this module.
	Parameters() []*Parameter

	// StateDict returns a map of parameter names to tensors.
	//
	// The returned tensors alias the live parameters.
	StateDict() map[string]*mat.Dense

	// LoadStateDict copies tensors into the module's parameters in place.
	//
	// Shapes must match exactly; parameters are never reallocated.
	LoadStateDict(stateDict map[string]*mat.Dense) error
}

// SequenceModule is a module that processes whole sequences of column vectors.
type SequenceModule interface {
	Module

	// Forward runs the module over xs. targets is only meaningful for
	// modules that produce distributions.
	Forward(xs, targets []*mat.VecDense) ([]*mat.VecDense, error)

	// Backward consumes the state recorded by Forward and returns the
	// gradient with respect to each input vector.
	Backward(upstream []*mat.VecDense) ([]*mat.VecDense, error)
}
