// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/stacklstm/internal/nn"
)

// Initialization

// Initializer creates a rows x cols tensor.
type Initializer = nn.Initializer

// DefaultInitScale is the scale of the default Uniform initializer.
const DefaultInitScale = nn.DefaultInitScale

// Uniform draws values from scale * U[0, 1).
func Uniform(scale float64) Initializer {
	return nn.Uniform(scale)
}

// Xavier draws values from the Glorot uniform distribution.
func Xavier() Initializer {
	return nn.Xavier()
}

// Zeros fills tensors with zeros.
func Zeros() Initializer {
	return nn.Zeros()
}

// InitializerByName resolves "uniform", "xavier" or "zeros".
func InitializerByName(name string, scale float64) (Initializer, bool) {
	return nn.InitializerByName(name, scale)
}

// Cells

// ParameterSet holds the gate weights and biases of one LSTM cell.
type ParameterSet = nn.ParameterSet

// NewParameterSet creates the tensors of one cell.
//
// input is the full width of the concatenated [x; h] vector. An output set
// also owns the vocab x hidden projection.
func NewParameterSet(hidden, input, vocab int, output bool, init Initializer, rng *rand.Rand) (*ParameterSet, error) {
	return nn.NewParameterSet(hidden, input, vocab, output, init, rng)
}

// Cell is one LSTM cell with a recorded forward trace.
type Cell = nn.Cell

// NewCell creates a cell over params.
func NewCell(params *ParameterSet) *Cell {
	return nn.NewCell(params)
}

// Layers

// LayerConfig holds the optimizer and clipping settings of a layer.
type LayerConfig = nn.LayerConfig

// Layer is a Cell with one Adagrad optimizer per parameter tensor.
type Layer = nn.Layer

// NewLayer creates a layer over params.
func NewLayer(params *ParameterSet, config LayerConfig) *Layer {
	return nn.NewLayer(params, config)
}

// Stacks

// StackConfig describes a stack of layers.
type StackConfig = nn.StackConfig

// Stack chains layers, the last one scoring symbols.
type Stack = nn.Stack

// State is the hidden and cell state of one layer during sampling.
type State = nn.State

// NewStack creates a stack from a description.
//
// Example:
//
//	stack, err := nn.NewStack(nn.StackConfig{Layers: 2, Hidden: 100, Vocab: 65})
func NewStack(config StackConfig) (*Stack, error) {
	return nn.NewStack(config)
}

// NewStackFromLayers assembles a stack from existing layers.
//
// Only the last layer may be an output layer and widths must chain.
func NewStackFromLayers(layers ...*Layer) (*Stack, error) {
	return nn.NewStackFromLayers(layers...)
}

// Checkpoints

// Checkpoint is a Stack saved together with its vocabulary and progress.
type Checkpoint = nn.Checkpoint

// LoadCheckpoint reads a checkpoint written by Checkpoint.Save.
func LoadCheckpoint(path string, config LayerConfig) (*Checkpoint, error) {
	return nn.LoadCheckpoint(path, config)
}

// Errors

// Errors returned by cells, layers and stacks.
var (
	ErrShapeMismatch     = nn.ErrShapeMismatch
	ErrSequenceLength    = nn.ErrSequenceLength
	ErrMissingTargets    = nn.ErrMissingTargets
	ErrUnexpectedTargets = nn.ErrUnexpectedTargets
	ErrUnexpectedSignal  = nn.ErrUnexpectedSignal
	ErrZeroProbability   = nn.ErrZeroProbability
	ErrInvalidTopology   = nn.ErrInvalidTopology
	ErrSymbolOutOfRange  = nn.ErrSymbolOutOfRange
)
