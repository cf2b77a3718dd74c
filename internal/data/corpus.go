// Package data turns a text corpus into training sequences.
//
// A Corpus is the encoded text. A training pass walks it in non-overlapping
// windows (Chunker), and each window of n symbols becomes n-1 one-hot
// (input, next-symbol target) pairs (Pairs).
package data

import (
	"errors"
	"fmt"
	"os"

	"github.com/born-ml/stacklstm/internal/tokenizer"
	"gonum.org/v1/gonum/mat"
)

// DefaultWindow is the number of symbols per training window.
const DefaultWindow = 25

// ErrEmptyCorpus is returned for a corpus without symbols.
var ErrEmptyCorpus = errors.New("corpus is empty")

// Corpus holds the training text encoded against a vocabulary.
type Corpus struct {
	ids   []int32
	vocab *tokenizer.CharVocabulary
}

// LoadCorpus reads a UTF-8 text file.
//
// Parameters:
//   - path: Path to the text file
//   - vocab: Vocabulary to encode with (nil = build one from the file)
//
// Returns ErrEmptyCorpus for an empty file and tokenizer.ErrUnknownSymbol if
// vocab misses a character of the file.
func LoadCorpus(path string, vocab *tokenizer.CharVocabulary) (*Corpus, error) {
	//nolint:gosec // G304: corpus path comes from the command line
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return NewCorpus(string(raw), vocab)
}

// NewCorpus encodes text. A nil vocab is built from text itself.
func NewCorpus(text string, vocab *tokenizer.CharVocabulary) (*Corpus, error) {
	if text == "" {
		return nil, ErrEmptyCorpus
	}
	if vocab == nil {
		vocab = tokenizer.NewCharVocabulary(text)
	}

	ids, err := vocab.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode corpus: %w", err)
	}
	return &Corpus{ids: ids, vocab: vocab}, nil
}

// Len returns the number of symbols.
func (c *Corpus) Len() int {
	return len(c.ids)
}

// IDs returns the encoded corpus.
func (c *Corpus) IDs() []int32 {
	return c.ids
}

// Vocabulary returns the vocabulary the corpus was encoded with.
func (c *Corpus) Vocabulary() *tokenizer.CharVocabulary {
	return c.vocab
}

// Chunks returns an iterator over non-overlapping windows of window symbols.
//
// The last window may be shorter. A window <= 0 uses DefaultWindow.
func (c *Corpus) Chunks(window int) *Chunker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Chunker{ids: c.ids, window: window}
}

// Chunker walks a corpus window by window.
//
// Example:
//
//	chunks := corpus.Chunks(25)
//	for chunk, ok := chunks.Next(); ok; chunk, ok = chunks.Next() {
//	    xs, ys, err := data.Pairs(chunk, corpus.Vocabulary())
//	    ...
//	}
type Chunker struct {
	ids    []int32
	window int
	start  int
}

// Next returns the next window, or false once the corpus is exhausted.
func (ch *Chunker) Next() ([]int32, bool) {
	if ch.start >= len(ch.ids) {
		return nil, false
	}
	end := min(ch.start+ch.window, len(ch.ids))
	chunk := ch.ids[ch.start:end]
	ch.start = end
	return chunk, true
}

// Count returns the total number of windows in one pass.
func (ch *Chunker) Count() int {
	return (len(ch.ids) + ch.window - 1) / ch.window
}

// Reset rewinds to the first window.
func (ch *Chunker) Reset() {
	ch.start = 0
}

// Pairs builds one-hot inputs and next-symbol targets from a window.
//
// A window of n symbols yields n-1 pairs: xs[t] encodes chunk[t] and ys[t]
// encodes chunk[t+1]. Windows shorter than two symbols yield empty,
// non-nil sequences.
func Pairs(chunk []int32, vocab *tokenizer.CharVocabulary) (xs, ys []*mat.VecDense, err error) {
	n := max(len(chunk)-1, 0)
	xs = make([]*mat.VecDense, 0, n)
	ys = make([]*mat.VecDense, 0, n)

	for t := 0; t < n; t++ {
		x, err := vocab.OneHot(chunk[t])
		if err != nil {
			return nil, nil, err
		}
		y, err := vocab.OneHot(chunk[t+1])
		if err != nil {
			return nil, nil, err
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys, nil
}
