package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/stacklstm/internal/optim"
	"gonum.org/v1/gonum/mat"
)

// LayerConfig holds the training settings of one recurrent layer.
type LayerConfig struct {
	Optimizer optim.AdagradConfig // Adagrad settings shared by every tensor of the layer
	Clip      float64             // Element-wise gradient bound (default: 0.5)
}

// Layer wraps one Cell together with one Adagrad optimizer per parameter tensor.
//
// An output layer scores its outputs against targets during Forward and uses
// its own recorded errors during Backward. A hidden layer passes hidden
// states up and takes its error signals from the layer above.
//
// Example:
//
//	params, _ := nn.NewParameterSet(hidden, hidden+vocab, vocab, true, nil, rng)
//	layer := nn.NewLayer(params, nn.LayerConfig{})
//
//	outputs, err := layer.Forward(xs, targets)
//	loss := layer.Loss()
//	dxs, err := layer.Backward(nil) // updates parameters
type Layer struct {
	cell       *Cell
	optimizers []*optim.Adagrad // aligned with cell.Params().Parameters()
	clip       float64
	loss       float64 // loss of the most recent Forward
	steps      int     // number of successful Forward calls
}

// NewLayer creates a layer over params with fresh zero accumulators.
func NewLayer(params *ParameterSet, config LayerConfig) *Layer {
	if config.Clip == 0 {
		config.Clip = optim.DefaultClip
	}

	tensors := params.Parameters()
	optimizers := make([]*optim.Adagrad, len(tensors))
	for k, param := range tensors {
		rows, cols := param.Dims()
		optimizers[k] = optim.NewAdagrad(rows, cols, config.Optimizer)
	}

	return &Layer{
		cell:       NewCell(params),
		optimizers: optimizers,
		clip:       config.Clip,
	}
}

// Forward runs the layer over xs.
//
// For an output layer, targets enables loss accumulation and is required
// before Backward. Hidden layers must get nil targets.
func (l *Layer) Forward(xs, targets []*mat.VecDense) ([]*mat.VecDense, error) {
	outputs, loss, err := l.cell.Forward(xs, targets)
	if err != nil {
		return nil, err
	}
	l.steps++
	l.loss = loss
	return outputs, nil
}

// Backward backpropagates through the recorded sequence and updates every parameter.
//
// upstream must be nil for the output layer. The returned sequence holds
// ∂L/∂x_t for the layer below. A zero-length sequence performs no update.
func (l *Layer) Backward(upstream []*mat.VecDense) ([]*mat.VecDense, error) {
	dxs, err := l.gradients(upstream)
	if err != nil {
		return nil, err
	}
	l.update(len(dxs))
	return dxs, nil
}

// gradients backpropagates and leaves the clipped gradients on the parameters
// without updating them.
func (l *Layer) gradients(upstream []*mat.VecDense) ([]*mat.VecDense, error) {
	return l.cell.Backward(upstream, l.clip)
}

// update applies the gradients of a backward pass over steps steps.
func (l *Layer) update(steps int) {
	if steps == 0 {
		return
	}
	for k, param := range l.cell.Params().Parameters() {
		l.optimizers[k].Step(param.Tensor(), param.Grad())
	}
}

// SampleStep runs one step without recording activations.
func (l *Layer) SampleStep(x, hPrev, cPrev *mat.VecDense) (y, h, c *mat.VecDense, err error) {
	return l.cell.SampleStep(x, hPrev, cPrev)
}

// Loss returns the summed cross-entropy of the most recent Forward.
//
// Always zero for hidden layers.
func (l *Layer) Loss() float64 {
	return l.loss
}

// Steps returns the number of successful Forward calls so far.
func (l *Layer) Steps() int {
	return l.steps
}

// IsOutput reports whether this is an output layer.
func (l *Layer) IsOutput() bool {
	return l.cell.IsOutput()
}

// Clip returns the gradient bound.
func (l *Layer) Clip() float64 {
	return l.clip
}

// Cell returns the underlying cell.
func (l *Layer) Cell() *Cell {
	return l.cell
}

// Optimizers returns the per-parameter optimizers in Parameters() order.
func (l *Layer) Optimizers() []*optim.Adagrad {
	return l.optimizers
}

// Parameters returns the cell's parameters.
func (l *Layer) Parameters() []*Parameter {
	return l.cell.Params().Parameters()
}

// StateDict returns a map of parameter names to tensors.
func (l *Layer) StateDict() map[string]*mat.Dense {
	return l.cell.Params().StateDict()
}

// LoadStateDict copies tensors into the layer's parameters.
//
// Accumulators are left untouched.
func (l *Layer) LoadStateDict(stateDict map[string]*mat.Dense) error {
	return l.cell.Params().LoadStateDict(stateDict)
}

// OptimizerStateDict returns the Adagrad state of every parameter.
//
// Keys are the parameter name followed by the optimizer's own key
// (e.g., "wf.accum"). Tensors are copies.
func (l *Layer) OptimizerStateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense)
	for k, param := range l.Parameters() {
		for key, t := range l.optimizers[k].StateDict() {
			stateDict[param.Name()+"."+key] = t
		}
	}
	return stateDict
}

// LoadOptimizerStateDict restores state written by OptimizerStateDict.
//
// Parameters without saved state keep their current accumulators.
func (l *Layer) LoadOptimizerStateDict(stateDict map[string]*mat.Dense) error {
	for k, param := range l.Parameters() {
		prefix := param.Name() + "."
		state := make(map[string]*mat.Dense)
		for key, t := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				state[name] = t
			}
		}
		if err := l.optimizers[k].LoadStateDict(state); err != nil {
			return fmt.Errorf("parameter %q: %w", param.Name(), err)
		}
	}
	return nil
}
