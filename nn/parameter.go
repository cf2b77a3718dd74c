// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/stacklstm/internal/nn"
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable tensor together with its gradient.
//
// Example:
//
//	for _, p := range stack.Parameters() {
//	    rows, cols := p.Dims()
//	    fmt.Println(p.Name(), rows, cols)
//	}
//
// Methods:
//
//	Name() string
//	    Returns the parameter name (e.g., "wf", "bv").
//
//	Tensor() *mat.Dense
//	    Returns the live parameter tensor.
//
//	Grad() *mat.Dense
//	    Returns the gradient of the last backward pass (nil before one).
//
//	ZeroGrad()
//	    Clears the gradient.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *mat.Dense) *Parameter {
	return nn.NewParameter(name, t)
}
