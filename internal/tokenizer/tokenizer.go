package tokenizer

import "errors"

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns the total vocabulary size.
	VocabSize() int
}

// Common errors.
var (
	ErrUnknownSymbol   = errors.New("symbol not in vocabulary")
	ErrInvalidToken    = errors.New("token id out of vocabulary range")
	ErrInvalidSymbol   = errors.New("symbol must be exactly one character")
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	ErrEmptyVocabulary = errors.New("vocabulary is empty")
)
