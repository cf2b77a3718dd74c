// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/stacklstm/internal/optim"
	"gonum.org/v1/gonum/mat"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Adagrad (Adaptive Gradient)

// Adagrad represents the Adagrad optimizer for one parameter tensor.
type Adagrad = optim.Adagrad

// AdagradConfig contains configuration for Adagrad optimizer.
type AdagradConfig = optim.AdagradConfig

// Default Adagrad hyperparameters.
const (
	DefaultAdagradLR  = optim.DefaultAdagradLR
	DefaultAdagradEps = optim.DefaultAdagradEps
)

// NewAdagrad creates a new Adagrad optimizer for a rows x cols tensor.
//
// Example:
//
//	optimizer := optim.NewAdagrad(100, 165, optim.AdagradConfig{LR: 0.08})
func NewAdagrad(rows, cols int, config AdagradConfig) *Adagrad {
	return optim.NewAdagrad(rows, cols, config)
}

// Clipping

// DefaultClip is the default element-wise gradient bound.
const DefaultClip = optim.DefaultClip

// ClipElementwise clamps every element of grad to [-bound, bound] in place.
func ClipElementwise(grad *mat.Dense, bound float64) {
	optim.ClipElementwise(grad, bound)
}
