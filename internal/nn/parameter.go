package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable tensor in a recurrent cell.
//
// The gradient buffer is allocated on first use and zeroed (not reallocated)
// at the start of every backward pass.
//
// Example:
//
//	// Create a weight parameter
//	wf := nn.NewParameter("wf", mat.NewDense(hidden, input, nil))
//
//	// Access the tensor
//	w := wf.Tensor()
//
//	// Get gradient after backward pass
//	grad := wf.Grad()
type Parameter struct {
	name   string     // Parameter name (e.g., "wf", "bv")
	tensor *mat.Dense // The parameter tensor
	grad   *mat.Dense // Gradient from the last backward pass
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *mat.Dense) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *mat.Dense {
	return p.tensor
}

// Dims returns the shape of the parameter tensor.
func (p *Parameter) Dims() (rows, cols int) {
	return p.tensor.Dims()
}

// Grad returns the gradient tensor.
//
// Returns nil if no backward pass has touched this parameter yet.
func (p *Parameter) Grad() *mat.Dense {
	return p.grad
}

// ZeroGrad zeroes the gradient buffer, allocating it on first use.
func (p *Parameter) ZeroGrad() {
	if p.grad == nil {
		rows, cols := p.tensor.Dims()
		p.grad = mat.NewDense(rows, cols, nil)
		return
	}
	p.grad.Zero()
}
