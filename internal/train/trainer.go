// Package train runs the training loop of a stacked LSTM over a corpus.
//
// One epoch is one sweep over the corpus in non-overlapping windows. Every
// window is one training step: a forward pass with next-symbol targets and
// a backward pass that updates every layer. After selected epochs the model
// is sampled greedily to show progress.
package train

import (
	"context"
	"fmt"
	"time"

	"github.com/born-ml/stacklstm/internal/data"
	"github.com/born-ml/stacklstm/internal/generate"
	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Config holds the training loop settings.
type Config struct {
	Epochs       int   // Passes over the corpus (0 = until the context is cancelled)
	Window       int   // Symbols per training window (default: 25)
	LogEvery     int   // Report the loss every N steps (0 = never)
	SampleEvery  int   // Sample after every N-th epoch (0 = never)
	SampleLength int   // Symbols emitted per sample (default: 20)
	SampleSeed   int64 // Seed for start symbols (-1 = random)
}

// DefaultSampleLength is the number of symbols emitted per progress sample.
const DefaultSampleLength = 20

// Result summarizes a training run.
type Result struct {
	RunID    string        // Identifier attached to logs and checkpoints
	Epochs   int           // Completed epochs
	Steps    int64         // Completed training steps
	Loss     float64       // Loss of the last step
	Duration time.Duration // Wall time of Run
}

// Trainer trains a Stack on a Corpus.
//
// A Trainer is not safe for concurrent use. Run may be called again to
// continue training; epoch and step counters carry over.
type Trainer struct {
	stack     *nn.Stack
	corpus    *data.Corpus
	config    Config
	generator *generate.Generator
	logger    *logrus.Logger
	observer  Observer
	runID     string

	epochs int
	steps  int64
	loss   float64
}

// Option configures a Trainer.
type Option func(*trainerOptions)

type trainerOptions struct {
	logger    *logrus.Logger
	observers []Observer
	runID     string
	epochs    int
	steps     int64
}

// WithLogger sets the logger for run-level messages and the default observer.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *trainerOptions) {
		o.logger = logger
	}
}

// WithObserver adds an observer. Without any, progress goes to a LogObserver.
func WithObserver(observer Observer) Option {
	return func(o *trainerOptions) {
		o.observers = append(o.observers, observer)
	}
}

// WithRunID overrides the generated run id.
func WithRunID(runID string) Option {
	return func(o *trainerOptions) {
		o.runID = runID
	}
}

// WithProgress starts the epoch and step counters at the given values,
// typically those of a restored checkpoint.
func WithProgress(epochs int, steps int64) Option {
	return func(o *trainerOptions) {
		o.epochs = epochs
		o.steps = steps
	}
}

// NewTrainer creates a trainer.
//
// Returns an error if the stack and the corpus vocabulary differ in size.
func NewTrainer(stack *nn.Stack, corpus *data.Corpus, config Config, opts ...Option) (*Trainer, error) {
	options := &trainerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = logrus.New()
	}
	if options.runID == "" {
		options.runID = uuid.NewString()
	}

	if config.Window <= 0 {
		config.Window = data.DefaultWindow
	}
	if config.SampleLength <= 0 {
		config.SampleLength = DefaultSampleLength
	}

	generator, err := generate.NewGenerator(stack, corpus.Vocabulary(), generate.SamplingConfig{Seed: config.SampleSeed})
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	var observer Observer
	switch len(options.observers) {
	case 0:
		observer = NewLogObserver(options.logger, options.runID)
	case 1:
		observer = options.observers[0]
	default:
		observer = multiObserver(options.observers)
	}

	return &Trainer{
		stack:     stack,
		corpus:    corpus,
		config:    config,
		generator: generator,
		logger:    options.logger,
		observer:  observer,
		runID:     options.runID,
		epochs:    options.epochs,
		steps:     options.steps,
	}, nil
}

// Run trains until the configured number of epochs is done or ctx is cancelled.
//
// Cancellation is observed between training steps only: a step in progress
// always completes its forward and backward pass. On cancellation Run
// returns the progress so far together with ctx.Err(), leaving the model
// ready to be saved and sampled.
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	entry := t.logger.WithField("run_id", t.runID)
	entry.WithFields(logrus.Fields{
		"layers":      t.stack.Len(),
		"hidden_size": t.stack.HiddenSize(),
		"vocab_size":  t.stack.VocabSize(),
		"corpus_len":  t.corpus.Len(),
		"window":      t.config.Window,
		"epochs":      t.config.Epochs,
	}).Info("Starting training")

	for done := 0; t.config.Epochs <= 0 || done < t.config.Epochs; done++ {
		if err := t.runEpoch(ctx); err != nil {
			result := t.result(start)
			entry.WithFields(logrus.Fields{
				"epochs": result.Epochs,
				"steps":  result.Steps,
				"error":  err,
			}).Warn("Training stopped")
			return result, err
		}

		epoch := t.epochs
		t.epochs++

		if t.config.SampleEvery > 0 && epoch%t.config.SampleEvery == 0 {
			sample, err := t.Sample(t.config.SampleLength)
			if err != nil {
				return t.result(start), err
			}
			t.observer.OnSample(epoch, sample)
		}
	}

	result := t.result(start)
	entry.WithFields(logrus.Fields{
		"epochs":   result.Epochs,
		"steps":    result.Steps,
		"loss":     result.Loss,
		"duration": result.Duration,
	}).Info("Training completed")
	return result, nil
}

// runEpoch performs one sweep over the corpus.
func (t *Trainer) runEpoch(ctx context.Context) error {
	vocab := t.corpus.Vocabulary()
	chunks := t.corpus.Chunks(t.config.Window)
	for chunk, ok := chunks.Next(); ok; chunk, ok = chunks.Next() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		xs, ys, err := data.Pairs(chunk, vocab)
		if err != nil {
			return fmt.Errorf("step %d: %w", t.steps, err)
		}
		loss, err := t.stack.TrainStep(xs, ys)
		if err != nil {
			return fmt.Errorf("step %d: %w", t.steps, err)
		}

		t.steps++
		t.loss = loss
		if t.config.LogEvery > 0 && t.steps%int64(t.config.LogEvery) == 0 {
			t.observer.OnLoss(t.steps, loss)
		}
	}
	return nil
}

// Sample greedily generates length symbols after a random start symbol.
//
// The returned text starts with the start symbol.
func (t *Trainer) Sample(length int) (string, error) {
	return t.generator.Generate(length)
}

// Checkpoint captures the model, vocabulary and progress for saving.
func (t *Trainer) Checkpoint() *nn.Checkpoint {
	return &nn.Checkpoint{
		Model:    t.stack,
		Symbols:  t.corpus.Vocabulary().Symbols(),
		Epoch:    t.epochs,
		Step:     t.steps,
		Loss:     t.loss,
		Metadata: map[string]string{"run_id": t.runID},
	}
}

// RunID returns the run identifier.
func (t *Trainer) RunID() string {
	return t.runID
}

func (t *Trainer) result(start time.Time) Result {
	return Result{
		RunID:    t.runID,
		Epochs:   t.epochs,
		Steps:    t.steps,
		Loss:     t.loss,
		Duration: time.Since(start),
	}
}
