package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ParameterSet holds the tensors of one LSTM cell.
//
// Shapes, with H the hidden size and I the concatenated input size:
//   - Wf, Wc, Wi, Wo: [H, I] gate weights (forget, candidate, input, output)
//   - Bf, Bc, Bi, Bo: [H, 1] gate biases
//   - Wv: [V, H] and Bv: [V, 1] output projection, only for an output cell
//
// I is fixed at construction: every step concatenates an external input of
// size I-H with the previous hidden state of size H.
type ParameterSet struct {
	hidden int
	input  int
	vocab  int // 0 for a hidden-state cell

	Wf, Bf *Parameter
	Wc, Bc *Parameter
	Wi, Bi *Parameter
	Wo, Bo *Parameter
	Wv, Bv *Parameter // nil unless output-designated
}

// NewParameterSet allocates and initializes the tensors for one cell.
//
// Parameters:
//   - hidden: Hidden size H
//   - input: Concatenated input size I (must exceed H)
//   - vocab: Output vocabulary size V, only used when output is true
//   - output: Whether the cell projects its hidden state onto V symbols
//   - init: Initializer for every tensor (nil means Uniform(0.5))
//   - rng: Random source for init
//
// Returns ErrInvalidTopology if a size is not positive or I <= H.
func NewParameterSet(hidden, input, vocab int, output bool, init Initializer, rng *rand.Rand) (*ParameterSet, error) {
	if hidden <= 0 {
		return nil, fmt.Errorf("%w: hidden size %d", ErrInvalidTopology, hidden)
	}
	if input <= hidden {
		return nil, fmt.Errorf("%w: input size %d must exceed hidden size %d", ErrInvalidTopology, input, hidden)
	}
	if output && vocab <= 0 {
		return nil, fmt.Errorf("%w: vocabulary size %d", ErrInvalidTopology, vocab)
	}
	if init == nil {
		init = Uniform(DefaultInitScale)
	}

	p := &ParameterSet{
		hidden: hidden,
		input:  input,
		Wf:     NewParameter("wf", init(hidden, input, rng)),
		Bf:     NewParameter("bf", init(hidden, 1, rng)),
		Wc:     NewParameter("wc", init(hidden, input, rng)),
		Bc:     NewParameter("bc", init(hidden, 1, rng)),
		Wi:     NewParameter("wi", init(hidden, input, rng)),
		Bi:     NewParameter("bi", init(hidden, 1, rng)),
		Wo:     NewParameter("wo", init(hidden, input, rng)),
		Bo:     NewParameter("bo", init(hidden, 1, rng)),
	}
	if output {
		p.vocab = vocab
		p.Wv = NewParameter("wv", init(vocab, hidden, rng))
		p.Bv = NewParameter("bv", init(vocab, 1, rng))
	}
	return p, nil
}

// HiddenSize returns H.
func (p *ParameterSet) HiddenSize() int {
	return p.hidden
}

// InputSize returns the concatenated input size I.
func (p *ParameterSet) InputSize() int {
	return p.input
}

// ExternalSize returns I-H, the size of the per-step external input.
func (p *ParameterSet) ExternalSize() int {
	return p.input - p.hidden
}

// IsOutput reports whether the set carries the output projection.
func (p *ParameterSet) IsOutput() bool {
	return p.Wv != nil
}

// OutputSize returns V for an output cell and H otherwise.
func (p *ParameterSet) OutputSize() int {
	if p.IsOutput() {
		return p.vocab
	}
	return p.hidden
}

// Parameters returns the gate tensors followed by the projection, if any.
//
// Order: wf, bf, wc, bc, wi, bi, wo, bo[, wv, bv].
func (p *ParameterSet) Parameters() []*Parameter {
	params := []*Parameter{p.Wf, p.Bf, p.Wc, p.Bc, p.Wi, p.Bi, p.Wo, p.Bo}
	if p.IsOutput() {
		params = append(params, p.Wv, p.Bv)
	}
	return params
}

// StateDict returns a map of parameter names to tensors.
func (p *ParameterSet) StateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense)
	for _, param := range p.Parameters() {
		stateDict[param.Name()] = param.Tensor()
	}
	return stateDict
}

// LoadStateDict copies tensors into the existing parameters.
//
// Every parameter must be present with the exact shape.
func (p *ParameterSet) LoadStateDict(stateDict map[string]*mat.Dense) error {
	for _, param := range p.Parameters() {
		src, ok := stateDict[param.Name()]
		if !ok {
			return fmt.Errorf("missing parameter %q", param.Name())
		}
		rows, cols := param.Dims()
		if r, c := src.Dims(); r != rows || c != cols {
			return fmt.Errorf("%w: parameter %q expected %dx%d, got %dx%d",
				ErrShapeMismatch, param.Name(), rows, cols, r, c)
		}
		param.Tensor().Copy(src)
	}
	return nil
}
