package nn

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/born-ml/stacklstm/internal/serialization"
)

// Metadata keys written by Checkpoint.Save.
const (
	MetaModelType = "model_type"
	MetaLayers    = "layers"
	MetaHidden    = "hidden"
	MetaVocabSize = "vocab_size"
	MetaSymbols   = "symbols"
	MetaEpoch     = "epoch"
	MetaStep      = "step"
	MetaLoss      = "loss"
	MetaCreatedAt = "created_at"

	modelType = "StackedLSTM"
)

// Checkpoint is a Stack together with its vocabulary and training progress.
//
// Parameters and Adagrad accumulators are both stored, so training resumes
// with the same effective step sizes. Files without accumulators load with
// fresh zero accumulators.
//
// Example:
//
//	checkpoint := &nn.Checkpoint{
//	    Model:   stack,
//	    Symbols: vocab.Symbols(),
//	    Epoch:   10,
//	    Step:    5000,
//	    Loss:    42.1,
//	}
//	err := checkpoint.Save("model.safetensors")
//
// To restore:
//
//	checkpoint, err := nn.LoadCheckpoint("model.safetensors", nn.LayerConfig{})
//	stack := checkpoint.Model
type Checkpoint struct {
	Model     *Stack            // The trained network
	Symbols   []string          // Vocabulary, symbol at index id
	Epoch     int               // Training epoch number
	Step      int64             // Training step number
	Loss      float64           // Loss at this checkpoint
	Metadata  map[string]string // Additional metadata (e.g., run id)
	CreatedAt time.Time         // When the checkpoint was created
}

// Save writes all parameters, optimizer state and the vocabulary to a
// SafeTensors file.
func (c *Checkpoint) Save(path string) error {
	if c.Model == nil {
		return fmt.Errorf("checkpoint has no model")
	}
	if len(c.Symbols) != c.Model.VocabSize() {
		return fmt.Errorf("%w: %d symbols for vocabulary size %d",
			ErrInvalidTopology, len(c.Symbols), c.Model.VocabSize())
	}

	symbols, err := json.Marshal(c.Symbols)
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	metadata := make(map[string]string, len(c.Metadata)+9)
	for k, v := range c.Metadata {
		metadata[k] = v
	}
	metadata[MetaModelType] = modelType
	metadata[MetaLayers] = strconv.Itoa(c.Model.Len())
	metadata[MetaHidden] = strconv.Itoa(c.Model.HiddenSize())
	metadata[MetaVocabSize] = strconv.Itoa(c.Model.VocabSize())
	metadata[MetaSymbols] = string(symbols)
	metadata[MetaEpoch] = strconv.Itoa(c.Epoch)
	metadata[MetaStep] = strconv.FormatInt(c.Step, 10)
	metadata[MetaLoss] = strconv.FormatFloat(c.Loss, 'g', -1, 64)
	metadata[MetaCreatedAt] = createdAt.Format(time.RFC3339)

	tensors := c.Model.StateDict()
	for name, t := range c.Model.OptimizerStateDict() {
		tensors[name] = t
	}

	if err := serialization.WriteSafeTensors(path, tensors, metadata); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint rebuilds a Stack from a file written by Checkpoint.Save.
//
// config supplies the optimizer and clipping settings of the rebuilt layers.
func LoadCheckpoint(path string, config LayerConfig) (*Checkpoint, error) {
	tensors, metadata, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if metadata[MetaModelType] != modelType {
		return nil, fmt.Errorf("unexpected model type %q", metadata[MetaModelType])
	}

	layers, err := metaInt(metadata, MetaLayers)
	if err != nil {
		return nil, err
	}
	hidden, err := metaInt(metadata, MetaHidden)
	if err != nil {
		return nil, err
	}

	var symbols []string
	if err := json.Unmarshal([]byte(metadata[MetaSymbols]), &symbols); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary: %w", err)
	}

	stack, err := NewStack(StackConfig{
		Layers: layers,
		Hidden: hidden,
		Vocab:  len(symbols),
		Init:   Zeros(),
		Layer:  config,
	})
	if err != nil {
		return nil, err
	}
	if err := stack.LoadStateDict(tensors); err != nil {
		return nil, err
	}
	if err := stack.LoadOptimizerStateDict(tensors); err != nil {
		return nil, err
	}

	checkpoint := &Checkpoint{
		Model:    stack,
		Symbols:  symbols,
		Metadata: metadata,
	}
	// Progress fields are informational; missing or malformed values stay zero.
	checkpoint.Epoch, _ = strconv.Atoi(metadata[MetaEpoch])
	checkpoint.Step, _ = strconv.ParseInt(metadata[MetaStep], 10, 64)
	checkpoint.Loss, _ = strconv.ParseFloat(metadata[MetaLoss], 64)
	checkpoint.CreatedAt, _ = time.Parse(time.RFC3339, metadata[MetaCreatedAt])

	return checkpoint, nil
}

func metaInt(metadata map[string]string, key string) (int, error) {
	v, err := strconv.Atoi(metadata[key])
	if err != nil {
		return 0, fmt.Errorf("invalid checkpoint metadata %q: %w", key, err)
	}
	return v, nil
}
