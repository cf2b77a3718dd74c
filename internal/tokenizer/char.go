package tokenizer

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CharVocabulary is a character-level tokenizer.
//
// Ids are assigned to the distinct runes of a text in ascending rune order,
// so the same text always yields the same vocabulary.
type CharVocabulary struct {
	symbols []rune         // id -> symbol
	ids     map[rune]int32 // symbol -> id
}

var _ Tokenizer = (*CharVocabulary)(nil)

// NewCharVocabulary builds a vocabulary from the distinct runes of text.
func NewCharVocabulary(text string) *CharVocabulary {
	seen := make(map[rune]struct{})
	for _, r := range text {
		seen[r] = struct{}{}
	}

	symbols := make([]rune, 0, len(seen))
	for r := range seen {
		symbols = append(symbols, r)
	}
	slices.Sort(symbols)

	return newCharVocabulary(symbols)
}

// NewCharVocabularyFromSymbols restores a vocabulary from its symbol list,
// keeping the given id order.
//
// Every symbol must be a single rune and appear once.
func NewCharVocabularyFromSymbols(symbols []string) (*CharVocabulary, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptyVocabulary
	}

	runes := make([]rune, len(symbols))
	seen := make(map[rune]bool, len(symbols))
	for k, s := range symbols {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, s)
		}
		seen[r] = true
		runes[k] = r
	}

	return newCharVocabulary(runes), nil
}

func newCharVocabulary(symbols []rune) *CharVocabulary {
	ids := make(map[rune]int32, len(symbols))
	for k, r := range symbols {
		ids[r] = int32(k) //nolint:gosec // G115: vocabulary size is bounded by the rune space
	}
	return &CharVocabulary{symbols: symbols, ids: ids}
}

// Encode converts every rune of text to its id.
//
// Returns ErrUnknownSymbol for runes outside the vocabulary.
func (v *CharVocabulary) Encode(text string) ([]int32, error) {
	tokens := make([]int32, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		id, ok := v.ids[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, r)
		}
		tokens = append(tokens, id)
	}
	return tokens, nil
}

// Decode converts ids back to text.
func (v *CharVocabulary) Decode(tokens []int32) (string, error) {
	var sb strings.Builder
	sb.Grow(len(tokens))
	for _, id := range tokens {
		if err := v.check(id); err != nil {
			return "", err
		}
		sb.WriteRune(v.symbols[id])
	}
	return sb.String(), nil
}

// VocabSize returns the number of symbols.
func (v *CharVocabulary) VocabSize() int {
	return len(v.symbols)
}

// Symbol returns the symbol with the given id.
func (v *CharVocabulary) Symbol(id int32) (string, error) {
	if err := v.check(id); err != nil {
		return "", err
	}
	return string(v.symbols[id]), nil
}

// ID returns the id of a single-rune symbol.
func (v *CharVocabulary) ID(symbol string) (int32, error) {
	r, size := utf8.DecodeRuneInString(symbol)
	if size == 0 || size != len(symbol) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	id, ok := v.ids[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}
	return id, nil
}

// Symbols returns every symbol in id order.
func (v *CharVocabulary) Symbols() []string {
	out := make([]string, len(v.symbols))
	for k, r := range v.symbols {
		out[k] = string(r)
	}
	return out
}

// OneHot returns a vector of size VocabSize with a single 1 at id.
func (v *CharVocabulary) OneHot(id int32) (*mat.VecDense, error) {
	if err := v.check(id); err != nil {
		return nil, err
	}
	x := mat.NewVecDense(len(v.symbols), nil)
	x.SetVec(int(id), 1)
	return x, nil
}

// FromOneHot returns the id of the largest entry of x.
//
// Any distribution over the vocabulary works, not only exact one-hot
// vectors. Ties go to the lowest id.
func (v *CharVocabulary) FromOneHot(x mat.Vector) (int32, error) {
	if x.Len() != len(v.symbols) {
		return 0, fmt.Errorf("%w: vector of size %d for %d symbols", ErrInvalidToken, x.Len(), len(v.symbols))
	}
	data := make([]float64, x.Len())
	for k := range data {
		data[k] = x.AtVec(k)
	}
	return int32(floats.MaxIdx(data)), nil //nolint:gosec // G115: bounded by vocabulary size
}

func (v *CharVocabulary) check(id int32) error {
	if id < 0 || int(id) >= len(v.symbols) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidToken, id, len(v.symbols))
	}
	return nil
}
