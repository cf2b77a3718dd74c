// Package config loads training and sampling settings from YAML.
//
// Every field has a default (see Default). A YAML file only needs the
// fields it changes:
//
//	model:
//	  layers: 3
//	  hidden: 128
//	training:
//	  corpus: poems.txt
//	  epochs: 200
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/stacklstm/internal/data"
	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/born-ml/stacklstm/internal/optim"
	"github.com/born-ml/stacklstm/internal/train"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every setting of a training or sampling run.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Training  TrainingConfig  `yaml:"training"`
	Sampling  SamplingConfig  `yaml:"sampling"`
}

// ModelConfig describes the network topology and its initialization.
type ModelConfig struct {
	Layers    int     `yaml:"layers"`     // Number of stacked layers
	Hidden    int     `yaml:"hidden"`     // Hidden size of every layer
	Init      string  `yaml:"init"`       // "uniform", "xavier" or "zeros"
	InitScale float64 `yaml:"init_scale"` // Scale of the uniform initializer
	Seed      int64   `yaml:"seed"`       // Initialization seed
}

// OptimizerConfig holds Adagrad and clipping settings.
type OptimizerConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epsilon      float64 `yaml:"epsilon"`
	Clip         float64 `yaml:"clip"` // Element-wise gradient bound
}

// TrainingConfig holds the training loop settings.
type TrainingConfig struct {
	Corpus      string `yaml:"corpus"`       // Path to the UTF-8 training text
	Output      string `yaml:"output"`       // Checkpoint path
	Epochs      int    `yaml:"epochs"`       // 0 = until interrupted
	Window      int    `yaml:"window"`       // Symbols per training window
	LogEvery    int    `yaml:"log_every"`    // Steps between loss reports (0 = never)
	SampleEvery int    `yaml:"sample_every"` // Epochs between samples (0 = never)
}

// SamplingConfig holds greedy sampling settings.
type SamplingConfig struct {
	Length int   `yaml:"length"` // Symbols emitted after the start symbol
	Seed   int64 `yaml:"seed"`   // Start symbol seed (-1 = random)
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Layers:    2,
			Hidden:    100,
			Init:      "uniform",
			InitScale: nn.DefaultInitScale,
			Seed:      1,
		},
		Optimizer: OptimizerConfig{
			LearningRate: optim.DefaultAdagradLR,
			Epsilon:      optim.DefaultAdagradEps,
			Clip:         optim.DefaultClip,
		},
		Training: TrainingConfig{
			Output:      "model.safetensors",
			Epochs:      1000,
			Window:      data.DefaultWindow,
			LogEvery:    100,
			SampleEvery: 1,
		},
		Sampling: SamplingConfig{
			Length: train.DefaultSampleLength,
			Seed:   -1,
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML on top of Default and validates the result.
//
// Unknown keys are rejected.
func Parse(raw []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field for a usable value.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Model.Layers > 0, "model.layers must be positive, got %d", c.Model.Layers)
	check(c.Model.Hidden > 0, "model.hidden must be positive, got %d", c.Model.Hidden)
	_, known := nn.InitializerByName(c.Model.Init, c.Model.InitScale)
	check(known, "model.init %q is not one of uniform, xavier, zeros", c.Model.Init)
	check(c.Model.InitScale > 0, "model.init_scale must be positive, got %g", c.Model.InitScale)

	check(c.Optimizer.LearningRate > 0, "optimizer.learning_rate must be positive, got %g", c.Optimizer.LearningRate)
	check(c.Optimizer.Epsilon > 0, "optimizer.epsilon must be positive, got %g", c.Optimizer.Epsilon)
	check(c.Optimizer.Clip > 0, "optimizer.clip must be positive, got %g", c.Optimizer.Clip)

	check(c.Training.Epochs >= 0, "training.epochs must not be negative, got %d", c.Training.Epochs)
	check(c.Training.Window >= 2, "training.window must be at least 2, got %d", c.Training.Window)
	check(c.Training.LogEvery >= 0, "training.log_every must not be negative, got %d", c.Training.LogEvery)
	check(c.Training.SampleEvery >= 0, "training.sample_every must not be negative, got %d", c.Training.SampleEvery)

	check(c.Sampling.Length >= 0, "sampling.length must not be negative, got %d", c.Sampling.Length)

	return errors.Join(errs...)
}

// LayerConfig returns the per-layer optimizer settings.
func (c *Config) LayerConfig() nn.LayerConfig {
	return nn.LayerConfig{
		Optimizer: optim.AdagradConfig{
			LR:  c.Optimizer.LearningRate,
			Eps: c.Optimizer.Epsilon,
		},
		Clip: c.Optimizer.Clip,
	}
}

// StackConfig returns the network description for a vocabulary of vocab symbols.
func (c *Config) StackConfig(vocab int) (nn.StackConfig, error) {
	init, ok := nn.InitializerByName(c.Model.Init, c.Model.InitScale)
	if !ok {
		return nn.StackConfig{}, fmt.Errorf("%w: unknown initializer %q", ErrInvalidConfig, c.Model.Init)
	}
	return nn.StackConfig{
		Layers: c.Model.Layers,
		Hidden: c.Model.Hidden,
		Vocab:  vocab,
		Init:   init,
		Seed:   c.Model.Seed,
		Layer:  c.LayerConfig(),
	}, nil
}

// TrainConfig returns the training loop settings.
func (c *Config) TrainConfig() train.Config {
	return train.Config{
		Epochs:       c.Training.Epochs,
		Window:       c.Training.Window,
		LogEvery:     c.Training.LogEvery,
		SampleEvery:  c.Training.SampleEvery,
		SampleLength: c.Sampling.Length,
		SampleSeed:   c.Sampling.Seed,
	}
}
