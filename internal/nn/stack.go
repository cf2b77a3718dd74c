package nn

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// StackConfig describes a stacked LSTM network.
type StackConfig struct {
	Layers int         // Number of recurrent layers (>= 1)
	Hidden int         // Hidden size H of every layer
	Vocab  int         // Vocabulary size V
	Init   Initializer // Tensor initializer (default: Uniform(0.5))
	Seed   int64       // Seed for Init
	Layer  LayerConfig // Optimizer and clipping settings for every layer
}

// Stack chains recurrent layers: layer i's output sequence is layer i+1's input.
//
// Layer 0 consumes one-hot symbols (input size H+V), the others consume the
// hidden states of the layer below (input size H+H). Exactly one layer, the
// last, is an output layer projecting onto V symbols.
//
// Example:
//
//	stack, err := nn.NewStack(nn.StackConfig{Layers: 2, Hidden: 100, Vocab: vocab.VocabSize()})
//
//	loss, err := stack.TrainStep(xs, targets)
//	ids, err := stack.Sample(start, 20)
type Stack struct {
	layers []*Layer
	hidden int
	vocab  int
}

// NewStack builds and initializes a stack from config.
func NewStack(config StackConfig) (*Stack, error) {
	if config.Layers <= 0 {
		return nil, fmt.Errorf("%w: %d layers", ErrInvalidTopology, config.Layers)
	}

	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	rng := rand.New(rand.NewSource(config.Seed))

	layers := make([]*Layer, config.Layers)
	for k := range layers {
		input := config.Hidden + config.Hidden
		if k == 0 {
			input = config.Hidden + config.Vocab
		}
		output := k == config.Layers-1

		params, err := NewParameterSet(config.Hidden, input, config.Vocab, output, config.Init, rng)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", k, err)
		}
		layers[k] = NewLayer(params, config.Layer)
	}

	return NewStackFromLayers(layers...)
}

// NewStackFromLayers assembles existing layers into a stack.
//
// Returns ErrInvalidTopology unless only the last layer is an output layer
// and each layer's input size matches the output size of the layer below.
func NewStackFromLayers(layers ...*Layer) (*Stack, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidTopology)
	}

	last := layers[len(layers)-1]
	if !last.IsOutput() {
		return nil, fmt.Errorf("%w: last layer is not an output layer", ErrInvalidTopology)
	}
	vocab := last.Cell().Params().OutputSize()
	hidden := layers[0].Cell().Params().HiddenSize()

	below := vocab
	for k, layer := range layers {
		p := layer.Cell().Params()
		if k < len(layers)-1 && layer.IsOutput() {
			return nil, fmt.Errorf("%w: layer %d is an output layer", ErrInvalidTopology, k)
		}
		if p.ExternalSize() != below {
			return nil, fmt.Errorf("%w: layer %d takes %d inputs, layer below emits %d",
				ErrInvalidTopology, k, p.ExternalSize(), below)
		}
		below = p.HiddenSize()
	}

	return &Stack{layers: layers, hidden: hidden, vocab: vocab}, nil
}

// Forward runs every layer in order.
//
// targets are handed to the output layer only. Returns the output layer's
// distributions and its summed loss. On error every layer's trace is dropped.
func (s *Stack) Forward(xs, targets []*mat.VecDense) ([]*mat.VecDense, float64, error) {
	seq := xs
	for k, layer := range s.layers {
		var layerTargets []*mat.VecDense
		if layer.IsOutput() {
			layerTargets = targets
		}
		out, err := layer.Forward(seq, layerTargets)
		if err != nil {
			s.Reset()
			return nil, 0, fmt.Errorf("layer %d forward: %w", k, err)
		}
		seq = out
	}
	return seq, s.Output().Loss(), nil
}

// Backward runs every layer's backward from the top down, threading the
// input gradients of each layer into the layer below, then updates every
// layer.
//
// Updates start only after all layers have backpropagated: if any layer
// fails, no parameter or accumulator changes.
func (s *Stack) Backward() error {
	steps := make([]int, len(s.layers))
	var upstream []*mat.VecDense
	for k := len(s.layers) - 1; k >= 0; k-- {
		dxs, err := s.layers[k].gradients(upstream)
		if err != nil {
			s.Reset()
			return fmt.Errorf("layer %d backward: %w", k, err)
		}
		steps[k] = len(dxs)
		upstream = dxs
	}

	for k, layer := range s.layers {
		layer.update(steps[k])
	}
	return nil
}

// TrainStep runs one forward/backward cycle over xs with next-symbol targets.
//
// The two halves form one unit: nothing else may run on the stack in between.
func (s *Stack) TrainStep(xs, targets []*mat.VecDense) (float64, error) {
	if targets == nil {
		return 0, ErrMissingTargets
	}
	_, loss, err := s.Forward(xs, targets)
	if err != nil {
		return 0, err
	}
	if err := s.Backward(); err != nil {
		return 0, err
	}
	return loss, nil
}

// SampleStep feeds x through every layer once, updating states in place.
//
// states[k] holds layer k's (h, c) pair. Returns the output distribution.
func (s *Stack) SampleStep(x *mat.VecDense, states []State) (*mat.VecDense, error) {
	if len(states) != len(s.layers) {
		return nil, fmt.Errorf("%w: %d states for %d layers", ErrSequenceLength, len(states), len(s.layers))
	}
	for k, layer := range s.layers {
		y, h, c, err := layer.SampleStep(x, states[k].H, states[k].C)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", k, err)
		}
		states[k] = State{H: h, C: c}
		x = y
	}
	return x, nil
}

// Sample greedily generates length symbols starting from symbol start.
//
// Each step feeds the current symbol through all layers, picks the most
// probable symbol and feeds it back in. Nothing is recorded for backward.
func (s *Stack) Sample(start int32, length int) ([]int32, error) {
	if start < 0 || int(start) >= s.vocab {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrSymbolOutOfRange, start, s.vocab)
	}

	states := s.ZeroStates()
	emitted := make([]int32, 0, max(length, 0))
	x := oneHot(int(start), s.vocab)
	for i := 0; i < length; i++ {
		y, err := s.SampleStep(x, states)
		if err != nil {
			return nil, err
		}
		next := Argmax(y)
		emitted = append(emitted, int32(next)) //nolint:gosec // G115: bounded by vocabulary size
		x = oneHot(next, s.vocab)
	}
	return emitted, nil
}

// State is one layer's recurrent state during sampling.
type State struct {
	H *mat.VecDense // hidden state
	C *mat.VecDense // cell state
}

// ZeroStates returns zero (h, c) pairs for every layer.
func (s *Stack) ZeroStates() []State {
	states := make([]State, len(s.layers))
	for k, layer := range s.layers {
		hidden := layer.Cell().Params().HiddenSize()
		states[k] = State{H: mat.NewVecDense(hidden, nil), C: mat.NewVecDense(hidden, nil)}
	}
	return states
}

// Reset drops every layer's recorded trace.
func (s *Stack) Reset() {
	for _, layer := range s.layers {
		layer.Cell().Reset()
	}
}

// OneHot returns the one-hot encoding of id over the stack's vocabulary.
func (s *Stack) OneHot(id int32) (*mat.VecDense, error) {
	if id < 0 || int(id) >= s.vocab {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrSymbolOutOfRange, id, s.vocab)
	}
	return oneHot(int(id), s.vocab), nil
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	return len(s.layers)
}

// Layer returns the layer at the given index.
//
// Panics if index is out of bounds.
func (s *Stack) Layer(index int) *Layer {
	if index < 0 || index >= len(s.layers) {
		panic("Stack.Layer: index out of bounds")
	}
	return s.layers[index]
}

// Output returns the output layer.
func (s *Stack) Output() *Layer {
	return s.layers[len(s.layers)-1]
}

// HiddenSize returns H.
func (s *Stack) HiddenSize() int {
	return s.hidden
}

// VocabSize returns V.
func (s *Stack) VocabSize() int {
	return s.vocab
}

// Parameters returns all parameters, layer by layer.
func (s *Stack) Parameters() []*Parameter {
	var params []*Parameter
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// StateDict returns a map of parameter names to tensors.
//
// Names are prefixed with the layer index (e.g., "layer.0.wf", "layer.1.bv").
func (s *Stack) StateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense)
	for k, layer := range s.layers {
		for name, t := range layer.StateDict() {
			stateDict[fmt.Sprintf("layer.%d.%s", k, name)] = t
		}
	}
	return stateDict
}

// OptimizerStateDict returns the Adagrad state of every layer.
//
// Names are prefixed with "optim.layer.{k}." (e.g., "optim.layer.0.wf.accum").
func (s *Stack) OptimizerStateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense)
	for k, layer := range s.layers {
		for name, t := range layer.OptimizerStateDict() {
			stateDict[fmt.Sprintf("optim.layer.%d.%s", k, name)] = t
		}
	}
	return stateDict
}

// LoadOptimizerStateDict restores state written by OptimizerStateDict.
//
// Keys without the "optim.layer." prefix are ignored, so a full checkpoint
// tensor map can be passed as is.
func (s *Stack) LoadOptimizerStateDict(stateDict map[string]*mat.Dense) error {
	for k, layer := range s.layers {
		prefix := fmt.Sprintf("optim.layer.%d.", k)
		layerStateDict := make(map[string]*mat.Dense)
		for key, t := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				layerStateDict[name] = t
			}
		}
		if err := layer.LoadOptimizerStateDict(layerStateDict); err != nil {
			return fmt.Errorf("failed to load optimizer state of layer %d: %w", k, err)
		}
	}
	return nil
}

// LoadStateDict loads parameters prefixed with their layer index.
func (s *Stack) LoadStateDict(stateDict map[string]*mat.Dense) error {
	for k, layer := range s.layers {
		prefix := fmt.Sprintf("layer.%d.", k)
		layerStateDict := make(map[string]*mat.Dense)
		for key, t := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok {
				layerStateDict[name] = t
			}
		}
		if err := layer.LoadStateDict(layerStateDict); err != nil {
			return fmt.Errorf("failed to load layer %d: %w", k, err)
		}
	}
	return nil
}
