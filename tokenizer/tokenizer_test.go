package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabTokenizerGreedyLongestMatch(t *testing.T) {
	vocab := []string{"<eos>", "h", "hi", "i", " there"}
	tok := NewVocabTokenizer(vocab, 0)

	ids, err := tok.Encode("hi there")
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 4}, ids) // "hi" + " there"
}

func TestVocabTokenizerDecodeRoundTrip(t *testing.T) {
	vocab := []string{"<eos>", "hello", " world"}
	tok := NewVocabTokenizer(vocab, 0)

	text, err := tok.Decode([]int32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestVocabTokenizerEOSID(t *testing.T) {
	tok := NewVocabTokenizer([]string{"a"}, 7)
	assert.Equal(t, int32(7), tok.EOSID())
}

func TestVocabTokenizerSkipsUnmatchedRunes(t *testing.T) {
	tok := NewVocabTokenizer([]string{"<eos>"}, 0)
	ids, err := tok.Encode("zz")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
