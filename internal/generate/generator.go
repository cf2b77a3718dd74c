package generate

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/born-ml/stacklstm/internal/parallel"
	"github.com/born-ml/stacklstm/internal/tokenizer"
)

// ErrInvalidStart is returned when the start text is not exactly one symbol.
var ErrInvalidStart = errors.New("start must be exactly one symbol")

// SequenceModel is the interface for models used in generation.
//
// Sample must be safe for concurrent use as long as the model is not being
// trained.
type SequenceModel interface {
	// Sample greedily emits length symbols following start.
	Sample(start int32, length int) ([]int32, error)

	// VocabSize returns the vocabulary size.
	VocabSize() int
}

// Generator turns model samples into text.
//
// The generated text always begins with the start symbol, followed by the
// symbols the model emitted.
type Generator struct {
	model     SequenceModel
	tokenizer tokenizer.Tokenizer
	sampler   *Sampler
	parallel  parallel.Config
}

// NewGenerator creates a new text generator.
//
// Returns an error if the model and tokenizer disagree on the vocabulary size.
func NewGenerator(model SequenceModel, tok tokenizer.Tokenizer, samplingConfig SamplingConfig) (*Generator, error) {
	if model.VocabSize() != tok.VocabSize() {
		return nil, fmt.Errorf("model vocabulary size %d does not match tokenizer vocabulary size %d",
			model.VocabSize(), tok.VocabSize())
	}

	return &Generator{
		model:     model,
		tokenizer: tok,
		sampler:   NewSampler(samplingConfig),
		parallel:  parallel.DefaultConfig(),
	}, nil
}

// Generate samples length symbols after a randomly chosen start symbol.
func (g *Generator) Generate(length int) (string, error) {
	start, err := g.sampler.Start(g.model.VocabSize())
	if err != nil {
		return "", err
	}
	return g.decode(start, length)
}

// GenerateFrom samples length symbols after the given start symbol.
func (g *Generator) GenerateFrom(start string, length int) (string, error) {
	if utf8.RuneCountInString(start) != 1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidStart, start)
	}
	ids, err := g.tokenizer.Encode(start)
	if err != nil {
		return "", fmt.Errorf("encode start: %w", err)
	}
	return g.decode(ids[0], length)
}

// GenerateN draws n random start symbols and samples length symbols after
// each of them, running the samples concurrently.
//
// Start symbols are drawn in order before any sampling starts, so a seeded
// generator returns the same texts however the work is scheduled.
func (g *Generator) GenerateN(n, length int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample count must not be negative, got %d", n)
	}

	starts := make([]int32, n)
	for i := range starts {
		start, err := g.sampler.Start(g.model.VocabSize())
		if err != nil {
			return nil, err
		}
		starts[i] = start
	}

	texts := make([]string, n)
	err := parallel.For(n, func(i int) error {
		text, err := g.decode(starts[i], length)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		texts[i] = text
		return nil
	}, g.parallel)
	if err != nil {
		return nil, err
	}
	return texts, nil
}

// GenerateIDs returns start followed by length emitted symbol ids.
func (g *Generator) GenerateIDs(start int32, length int) ([]int32, error) {
	emitted, err := g.model.Sample(start, length)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	return append([]int32{start}, emitted...), nil
}

func (g *Generator) decode(start int32, length int) (string, error) {
	ids, err := g.GenerateIDs(start, length)
	if err != nil {
		return "", err
	}
	text, err := g.tokenizer.Decode(ids)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return text, nil
}
