package generate

import (
	"errors"
	"testing"

	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/born-ml/stacklstm/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cyclicModel emits the symbols following start in id order, wrapping around.
type cyclicModel struct {
	vocab int
	err   error
}

func (m *cyclicModel) Sample(start int32, length int) ([]int32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]int32, length)
	cur := start
	for k := range out {
		cur = (cur + 1) % int32(m.vocab) //nolint:gosec // small test vocabulary
		out[k] = cur
	}
	return out, nil
}

func (m *cyclicModel) VocabSize() int {
	return m.vocab
}

func TestGenerateFromIncludesStart(t *testing.T) {
	vocab := tokenizer.NewCharVocabulary("abcd")
	gen, err := NewGenerator(&cyclicModel{vocab: 4}, vocab, SamplingConfig{Seed: 1})
	require.NoError(t, err)

	text, err := gen.GenerateFrom("c", 5)
	require.NoError(t, err)
	assert.Equal(t, "cdabcd", text)

	text, err = gen.GenerateFrom("a", 0)
	require.NoError(t, err)
	assert.Equal(t, "a", text)
}

func TestGenerateRandomStart(t *testing.T) {
	vocab := tokenizer.NewCharVocabulary("abcd")
	gen, err := NewGenerator(&cyclicModel{vocab: 4}, vocab, SamplingConfig{Seed: 3})
	require.NoError(t, err)

	text, err := gen.Generate(20)
	require.NoError(t, err)
	assert.Len(t, []rune(text), 21)

	again, err := NewGenerator(&cyclicModel{vocab: 4}, vocab, SamplingConfig{Seed: 3})
	require.NoError(t, err)
	same, err := again.Generate(20)
	require.NoError(t, err)
	assert.Equal(t, text, same)
}

func TestGeneratorErrors(t *testing.T) {
	vocab := tokenizer.NewCharVocabulary("abcd")

	_, err := NewGenerator(&cyclicModel{vocab: 5}, vocab, DefaultSamplingConfig())
	assert.Error(t, err)

	gen, err := NewGenerator(&cyclicModel{vocab: 4}, vocab, DefaultSamplingConfig())
	require.NoError(t, err)

	_, err = gen.GenerateFrom("ab", 3)
	assert.ErrorIs(t, err, ErrInvalidStart)
	_, err = gen.GenerateFrom("", 3)
	assert.ErrorIs(t, err, ErrInvalidStart)
	_, err = gen.GenerateFrom("z", 3)
	assert.ErrorIs(t, err, tokenizer.ErrUnknownSymbol)

	boom := errors.New("boom")
	failing, err := NewGenerator(&cyclicModel{vocab: 4, err: boom}, vocab, DefaultSamplingConfig())
	require.NoError(t, err)
	_, err = failing.Generate(3)
	assert.ErrorIs(t, err, boom)
}

func TestGeneratorWithStack(t *testing.T) {
	vocab := tokenizer.NewCharVocabulary("hello world")
	stack, err := nn.NewStack(nn.StackConfig{Layers: 2, Hidden: 6, Vocab: vocab.VocabSize(), Seed: 5})
	require.NoError(t, err)

	gen, err := NewGenerator(stack, vocab, SamplingConfig{Seed: 9})
	require.NoError(t, err)

	text, err := gen.GenerateFrom("h", 20)
	require.NoError(t, err)
	runes := []rune(text)
	require.Len(t, runes, 21)
	assert.Equal(t, 'h', runes[0])

	ids, err := gen.GenerateIDs(0, 4)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
	assert.Equal(t, int32(0), ids[0])
}

func TestGenerateN(t *testing.T) {
	vocab := tokenizer.NewCharVocabulary("hello world")
	stack, err := nn.NewStack(nn.StackConfig{Layers: 2, Hidden: 6, Vocab: vocab.VocabSize(), Seed: 5})
	require.NoError(t, err)

	gen, err := NewGenerator(stack, vocab, SamplingConfig{Seed: 11})
	require.NoError(t, err)
	texts, err := gen.GenerateN(8, 12)
	require.NoError(t, err)
	require.Len(t, texts, 8)

	// Each concurrent sample matches a sequential one from the same start.
	for _, text := range texts {
		runes := []rune(text)
		require.Len(t, runes, 13)
		want, err := gen.GenerateFrom(string(runes[0]), 12)
		require.NoError(t, err)
		assert.Equal(t, want, text)
	}

	// The same seed draws the same starts.
	again, err := NewGenerator(stack, vocab, SamplingConfig{Seed: 11})
	require.NoError(t, err)
	textsAgain, err := again.GenerateN(8, 12)
	require.NoError(t, err)
	assert.Equal(t, texts, textsAgain)

	empty, err := gen.GenerateN(0, 12)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGenerateNError(t *testing.T) {
	boom := errors.New("boom")
	vocab := tokenizer.NewCharVocabulary("abcd")
	gen, err := NewGenerator(&cyclicModel{vocab: 4, err: boom}, vocab, SamplingConfig{Seed: 1})
	require.NoError(t, err)

	_, err = gen.GenerateN(3, 5)
	assert.ErrorIs(t, err, boom)
}

func TestGenerateNNegativeCount(t *testing.T) {
	vocab := tokenizer.NewCharVocabulary("abc")
	stack, err := nn.NewStack(nn.StackConfig{Layers: 1, Hidden: 4, Vocab: vocab.VocabSize(), Seed: 2})
	require.NoError(t, err)
	gen, err := NewGenerator(stack, vocab, SamplingConfig{Seed: 1})
	require.NoError(t, err)

	var texts []string
	assert.NotPanics(t, func() {
		texts, err = gen.GenerateN(-1, 5)
	})
	assert.Error(t, err)
	assert.Nil(t, texts)
}
