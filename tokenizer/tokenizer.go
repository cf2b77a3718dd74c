// Package tokenizer provides character-level tokenization.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for tokenization tasks.
//
// Example usage:
//
//	import "github.com/born-ml/stacklstm/tokenizer"
//
//	// One symbol per distinct character, sorted by code point
//	vocab := tokenizer.NewCharVocabulary(text)
//
//	// Encode text
//	ids, err := vocab.Encode("hello")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// One-hot vector of a symbol
//	x, err := vocab.OneHot(ids[0])
package tokenizer

import (
	"github.com/born-ml/stacklstm/internal/tokenizer"
)

// Tokenizer is the common interface for encoding text into symbol ids.
type Tokenizer = tokenizer.Tokenizer

// CharVocabulary maps every distinct character of a text to a symbol id.
type CharVocabulary = tokenizer.CharVocabulary

// NewCharVocabulary builds the vocabulary of text.
func NewCharVocabulary(text string) *CharVocabulary {
	return tokenizer.NewCharVocabulary(text)
}

// NewCharVocabularyFromSymbols rebuilds a vocabulary from its ordered symbols.
//
// Every symbol must be a single character and appear once.
func NewCharVocabularyFromSymbols(symbols []string) (*CharVocabulary, error) {
	return tokenizer.NewCharVocabularyFromSymbols(symbols)
}

// Errors returned by vocabularies.
var (
	ErrUnknownSymbol   = tokenizer.ErrUnknownSymbol
	ErrInvalidToken    = tokenizer.ErrInvalidToken
	ErrInvalidSymbol   = tokenizer.ErrInvalidSymbol
	ErrDuplicateSymbol = tokenizer.ErrDuplicateSymbol
	ErrEmptyVocabulary = tokenizer.ErrEmptyVocabulary
)
