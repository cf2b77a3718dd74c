// Package generate produces text from a trained character-level model.
//
// Decoding is greedy: the model always emits its most probable next symbol.
// The only random choice is the start symbol, drawn by a Sampler.
package generate

import (
	"fmt"
	"math/rand"
)

// SamplingConfig configures start-symbol selection.
type SamplingConfig struct {
	// Seed for reproducibility. -1 = random.
	Seed int64
}

// DefaultSamplingConfig returns a random-seeded configuration.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Seed: -1,
	}
}

// Sampler draws start symbols uniformly from the vocabulary.
type Sampler struct {
	config SamplingConfig
	rng    *rand.Rand
}

// NewSampler creates a new sampler with the given configuration.
func NewSampler(config SamplingConfig) *Sampler {
	var rng *rand.Rand
	if config.Seed >= 0 {
		rng = rand.New(rand.NewSource(config.Seed)) //nolint:gosec // Intentional deterministic seed for reproducibility
	} else {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // User requested random seed
	}

	return &Sampler{
		config: config,
		rng:    rng,
	}
}

// Start returns a symbol id in [0, vocabSize).
func (s *Sampler) Start(vocabSize int) (int32, error) {
	if vocabSize <= 0 {
		return 0, fmt.Errorf("vocabulary size must be positive, got %d", vocabSize)
	}
	return int32(s.rng.Intn(vocabSize)), nil //nolint:gosec // G115: bounded by vocabulary size
}
