// Package generate provides greedy text generation for stacked LSTMs.
//
// This package wraps the internal generate implementations and provides
// a clean public API for text generation tasks.
//
// Components:
//   - Sampler: Picks start symbols, seeded or random
//   - Generator: Turns greedy model continuations into text
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/stacklstm/generate"
//	    "github.com/born-ml/stacklstm/tokenizer"
//	)
//
//	vocab := tokenizer.NewCharVocabulary(text)
//	gen, err := generate.NewGenerator(stack, vocab, generate.SamplingConfig{Seed: 42})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Random start symbol followed by 20 greedy symbols
//	sample, err := gen.Generate(20)
package generate

import (
	"github.com/born-ml/stacklstm/internal/generate"
	"github.com/born-ml/stacklstm/internal/tokenizer"
)

// Sampling Configuration

// SamplingConfig configures how start symbols are chosen.
//
// Parameters:
//   - Seed: Random seed for start symbols (-1 for random)
type SamplingConfig = generate.SamplingConfig

// DefaultSamplingConfig returns a configuration with a random seed.
func DefaultSamplingConfig() SamplingConfig {
	return generate.DefaultSamplingConfig()
}

// Sampler picks start symbols.
type Sampler = generate.Sampler

// NewSampler creates a new sampler with the given configuration.
func NewSampler(config SamplingConfig) *Sampler {
	return generate.NewSampler(config)
}

// Text Generation

// SequenceModel is the interface for models used in generation.
//
// *nn.Stack implements SequenceModel.
type SequenceModel = generate.SequenceModel

// Generator turns model samples into text.
type Generator = generate.Generator

// NewGenerator creates a new text generator.
//
// Returns an error if the model and tokenizer disagree on the vocabulary size.
func NewGenerator(model SequenceModel, tok tokenizer.Tokenizer, config SamplingConfig) (*Generator, error) {
	return generate.NewGenerator(model, tok, config)
}

// ErrInvalidStart is returned when the start text is not exactly one symbol.
var ErrInvalidStart = generate.ErrInvalidStart
