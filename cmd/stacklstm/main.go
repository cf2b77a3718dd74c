// Package main provides the stacklstm CLI.
//
// Usage:
//
//	stacklstm train -config config.yaml -corpus input.txt -out model.safetensors
//	stacklstm sample -model model.safetensors -length 200 -start T
//	stacklstm sample -model model.safetensors -length 200 -n 5
//	stacklstm version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/born-ml/stacklstm/internal/config"
	"github.com/born-ml/stacklstm/internal/data"
	"github.com/born-ml/stacklstm/internal/generate"
	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/born-ml/stacklstm/internal/tokenizer"
	"github.com/born-ml/stacklstm/internal/train"
	"github.com/sirupsen/logrus"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:], logger)
	case "sample":
		err = runSample(os.Args[2:], os.Stdout, logger)
	case "version":
		fmt.Printf("stacklstm %s\n", version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "stacklstm - character-level stacked LSTM")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train a model on a text corpus")
	fmt.Fprintln(w, "  sample     Generate text from a saved model")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'stacklstm <command> -h' for command flags.")
}

// trainFlags are the command line overrides of the train command.
type trainFlags struct {
	configPath string
	corpus     string
	out        string
	resume     string
	epochs     int
	layers     int
	hidden     int
	window     int
	seed       int64
	logLevel   string
}

func runTrain(args []string, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	var f trainFlags
	fs.StringVar(&f.configPath, "config", "", "YAML config file (defaults apply to missing fields)")
	fs.StringVar(&f.corpus, "corpus", "", "training text (overrides training.corpus)")
	fs.StringVar(&f.out, "out", "", "checkpoint path (overrides training.output)")
	fs.StringVar(&f.resume, "resume", "", "continue training from this checkpoint")
	fs.IntVar(&f.epochs, "epochs", 0, "passes over the corpus, 0 = until interrupted")
	fs.IntVar(&f.layers, "layers", 0, "number of stacked layers")
	fs.IntVar(&f.hidden, "hidden", 0, "hidden size of every layer")
	fs.IntVar(&f.window, "window", 0, "symbols per training window")
	fs.Int64Var(&f.seed, "seed", 0, "initialization seed")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(f.logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	applyTrainFlags(fs, &f, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Training.Corpus == "" {
		return errors.New("no corpus: set training.corpus or pass -corpus")
	}

	stack, corpus, progress, err := buildModel(&cfg, f.resume, logger)
	if err != nil {
		return err
	}

	trainer, err := train.NewTrainer(stack, corpus, cfg.TrainConfig(), train.WithLogger(logger), progress)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The model is saved and sampled however Run ends.
	_, runErr := trainer.Run(ctx)
	stop()

	checkpoint := trainer.Checkpoint()
	if err := checkpoint.Save(cfg.Training.Output); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"run_id": trainer.RunID(),
		"path":   cfg.Training.Output,
		"epoch":  checkpoint.Epoch,
		"step":   checkpoint.Step,
	}).Info("Model saved")

	sample, err := trainer.Sample(cfg.Sampling.Length)
	if err != nil {
		return fmt.Errorf("final sample: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"run_id": trainer.RunID(),
		"sample": sample,
	}).Info("Final sample")

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyTrainFlags copies explicitly set flags over the file values.
func applyTrainFlags(fs *flag.FlagSet, f *trainFlags, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "corpus":
			cfg.Training.Corpus = f.corpus
		case "out":
			cfg.Training.Output = f.out
		case "epochs":
			cfg.Training.Epochs = f.epochs
		case "layers":
			cfg.Model.Layers = f.layers
		case "hidden":
			cfg.Model.Hidden = f.hidden
		case "window":
			cfg.Training.Window = f.window
		case "seed":
			cfg.Model.Seed = f.seed
		}
	})
}

// buildModel creates a fresh stack for the corpus, or restores one together
// with its vocabulary and progress when resume names a checkpoint.
func buildModel(cfg *config.Config, resume string, logger *logrus.Logger) (*nn.Stack, *data.Corpus, train.Option, error) {
	if resume == "" {
		corpus, err := data.LoadCorpus(cfg.Training.Corpus, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		stackCfg, err := cfg.StackConfig(corpus.Vocabulary().VocabSize())
		if err != nil {
			return nil, nil, nil, err
		}
		stack, err := nn.NewStack(stackCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return stack, corpus, train.WithProgress(0, 0), nil
	}

	checkpoint, err := nn.LoadCheckpoint(resume, cfg.LayerConfig())
	if err != nil {
		return nil, nil, nil, err
	}
	vocab, err := tokenizer.NewCharVocabularyFromSymbols(checkpoint.Symbols)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("checkpoint vocabulary: %w", err)
	}
	corpus, err := data.LoadCorpus(cfg.Training.Corpus, vocab)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"path":   resume,
		"layers": checkpoint.Model.Len(),
		"hidden": checkpoint.Model.HiddenSize(),
		"step":   checkpoint.Step,
	}).Info("Resuming from checkpoint")
	return checkpoint.Model, corpus, train.WithProgress(checkpoint.Epoch, checkpoint.Step), nil
}

func runSample(args []string, out io.Writer, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	modelPath := fs.String("model", "model.safetensors", "checkpoint to sample from")
	length := fs.Int("length", train.DefaultSampleLength, "symbols generated after the start symbol")
	start := fs.String("start", "", "start symbol (random if empty)")
	count := fs.Int("n", 1, "number of samples from random start symbols")
	seed := fs.Int64("seed", -1, "seed for the random start symbol (-1 = random)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("-n must be at least 1, got %d", *count)
	}
	if *length < 0 {
		return fmt.Errorf("-length must not be negative, got %d", *length)
	}

	checkpoint, err := nn.LoadCheckpoint(*modelPath, nn.LayerConfig{})
	if err != nil {
		return err
	}
	vocab, err := tokenizer.NewCharVocabularyFromSymbols(checkpoint.Symbols)
	if err != nil {
		return fmt.Errorf("checkpoint vocabulary: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"path":       *modelPath,
		"layers":     checkpoint.Model.Len(),
		"vocab_size": vocab.VocabSize(),
		"step":       checkpoint.Step,
	}).Debug("Model loaded")

	gen, err := generate.NewGenerator(checkpoint.Model, vocab, generate.SamplingConfig{Seed: *seed})
	if err != nil {
		return err
	}

	var texts []string
	if *start == "" {
		texts, err = gen.GenerateN(*count, *length)
	} else {
		var text string
		text, err = gen.GenerateFrom(*start, *length)
		texts = []string{text}
	}
	if err != nil {
		return err
	}
	for _, text := range texts {
		if _, err := fmt.Fprintln(out, text); err != nil {
			return err
		}
	}
	return nil
}
