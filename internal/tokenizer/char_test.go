package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCharVocabulary_SortedDistinct(t *testing.T) {
	vocab := NewCharVocabulary("hello world")

	assert.Equal(t, []string{" ", "d", "e", "h", "l", "o", "r", "w"}, vocab.Symbols())
	assert.Equal(t, 8, vocab.VocabSize())

	again := NewCharVocabulary("world hello")
	assert.Equal(t, vocab.Symbols(), again.Symbols())
}

func TestCharVocabulary_EncodeDecode(t *testing.T) {
	vocab := NewCharVocabulary("hello héllo\nwörld")

	tests := []struct {
		name string
		text string
	}{
		{name: "ascii", text: "hello"},
		{name: "multibyte", text: "wörld héllo"},
		{name: "newline", text: "lo\nwo"},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := vocab.Encode(tt.text)
			require.NoError(t, err)
			assert.Len(t, ids, len([]rune(tt.text)))

			text, err := vocab.Decode(ids)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestCharVocabulary_Errors(t *testing.T) {
	vocab := NewCharVocabulary("abc")

	_, err := vocab.Encode("abz")
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = vocab.Decode([]int32{0, 3})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = vocab.OneHot(-1)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = vocab.Symbol(7)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = vocab.ID("ab")
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	_, err = vocab.ID("z")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestCharVocabulary_OneHot(t *testing.T) {
	vocab := NewCharVocabulary("abcd")

	x, err := vocab.OneHot(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 0}, x.RawVector().Data)

	id, err := vocab.FromOneHot(x)
	require.NoError(t, err)
	assert.Equal(t, int32(2), id)

	// Distributions resolve to their most probable symbol, ties to the lowest id.
	id, err = vocab.FromOneHot(mat.NewVecDense(4, []float64{0.1, 0.4, 0.4, 0.1}))
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)

	_, err = vocab.FromOneHot(mat.NewVecDense(3, nil))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewCharVocabularyFromSymbols(t *testing.T) {
	original := NewCharVocabulary("the quick brown fox\n")

	restored, err := NewCharVocabularyFromSymbols(original.Symbols())
	require.NoError(t, err)
	assert.Equal(t, original.Symbols(), restored.Symbols())

	ids, err := original.Encode("quick fox")
	require.NoError(t, err)
	restoredIDs, err := restored.Encode("quick fox")
	require.NoError(t, err)
	assert.Equal(t, ids, restoredIDs)

	// Order is preserved as given.
	custom, err := NewCharVocabularyFromSymbols([]string{"z", "a"})
	require.NoError(t, err)
	id, err := custom.ID("z")
	require.NoError(t, err)
	assert.Equal(t, int32(0), id)

	tests := []struct {
		name    string
		symbols []string
		wantErr error
	}{
		{"empty", nil, ErrEmptyVocabulary},
		{"duplicate", []string{"a", "b", "a"}, ErrDuplicateSymbol},
		{"multi-rune", []string{"ab"}, ErrInvalidSymbol},
		{"empty symbol", []string{""}, ErrInvalidSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCharVocabularyFromSymbols(tt.symbols)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
