package modelfile

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wutthichai46/neural-speed/quant"
)

// buildSyntheticModel writes a minimal, spec-conformant model file with one
// Int8Sym tensor of shape [rows, cols] and returns its path.
func buildSyntheticModel(t *testing.T, rows, cols int) (string, *quant.Matrix) {
	t.Helper()

	src := make([]float32, rows*cols)
	for i := range src {
		src[i] = float32(i%7) - 3
	}
	mat, err := quant.QuantizeDense(src, rows, cols, quant.Int8Sym, rows)
	require.NoError(t, err)

	var buf []byte
	putU32 := func(v uint32) { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); buf = append(buf, b...) }
	putU64 := func(v uint64) { b := make([]byte, 8); binary.LittleEndian.PutUint64(b, v); buf = append(buf, b...) }
	putF32 := func(v float32) { putU32(math.Float32bits(v)) }

	buf = append(buf, magic[:]...)
	putU32(supportedVersion)

	// hyperparameters
	putU32(uint32(32000)) // NVocab
	putU32(uint32(cols))  // NEmbd
	putU32(4)             // NHead
	putU32(2)             // NKVHead
	putU32(uint32(cols))  // HeadDim
	putU32(64)            // NFF
	putU32(1)             // NLayer
	putU32(0)             // ArchTag
	putU32(0)             // CtxMax
	putF32(10000)         // RopeTheta

	// tokenizer section: 2 tokens
	putU32(2)
	for _, tok := range []struct {
		text  string
		score float32
	}{{"<eos>", 0}, {"hi", -1.5}} {
		putU32(uint32(len(tok.text)))
		buf = append(buf, tok.text...)
		putF32(tok.score)
	}

	// tensor directory: 1 tensor
	putU32(1)
	name := "layers.0.attn.q_proj"
	putU32(uint32(len(name)))
	buf = append(buf, name...)
	putU32(2) // n_dims
	putU32(uint32(rows))
	putU32(uint32(cols))
	dtypeTag := uint32(quant.Int8Sym) | uint32(mat.PackRow)<<8 | uint32(mat.K)<<16
	putU32(dtypeTag)

	dataOffset := uint64(len(buf)) + 8 // +8 for the offset/size fields below, placeholder fixed after
	// We'll compute the real offset after reserving space for offset+size fields.
	offsetFieldPos := len(buf)
	putU64(0) // placeholder, patched below
	putU64(0) // placeholder, patched below

	dataStart := len(buf)
	buf = append(buf, mat.Codes...)
	for _, s := range mat.Scales {
		putF32(s)
	}
	dataSize := len(buf) - dataStart

	binary.LittleEndian.PutUint64(buf[offsetFieldPos:], uint64(dataStart))
	binary.LittleEndian.PutUint64(buf[offsetFieldPos+8:], uint64(dataSize))
	_ = dataOffset

	path := filepath.Join(t.TempDir(), "model.nspd")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path, mat
}

func TestOpenParsesHyperparametersAndTokens(t *testing.T) {
	path, _ := buildSyntheticModel(t, 4, 8)
	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, uint32(32000), m.Hyper.NVocab)
	assert.Equal(t, uint32(8), m.Hyper.NEmbd)
	assert.Equal(t, float32(10000), m.Hyper.RopeTheta)
	require.Len(t, m.Tokens, 2)
	assert.Equal(t, "<eos>", m.Tokens[0].Text)
	assert.Equal(t, "hi", m.Tokens[1].Text)
}

func TestTensorRoundTripsQuantizedWeights(t *testing.T) {
	const rows, cols = 4, 8
	path, want := buildSyntheticModel(t, rows, cols)
	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	got, err := m.Tensor("layers.0.attn.q_proj")
	require.NoError(t, err)
	assert.Equal(t, want.Codes, got.Codes)
	assert.Equal(t, want.Scales, got.Scales)
	assert.Equal(t, rows, got.Rows)
	assert.Equal(t, cols, got.Cols)
}

func TestTensorUnknownNameFails(t *testing.T) {
	path, _ := buildSyntheticModel(t, 2, 4)
	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Tensor("does.not.exist")
	assert.Error(t, err)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nspd")
	require.NoError(t, os.WriteFile(path, []byte("XXXXXXXX"), 0o644))
	_, err := Open(path)
	assert.Error(t, err)
}
