package modelfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wutthichai46/neural-speed/quant"
)

func TestSaveThenOpenRoundTripsTensors(t *testing.T) {
	const rows, cols = 8, 16
	src := make([]float32, rows*cols)
	for i := range src {
		src[i] = float32(i%11) - 5
	}
	mat, err := quant.QuantizeDense(src, rows, cols, quant.Int4Sym, 4)
	require.NoError(t, err)

	hyper := Hyperparameters{
		NVocab: 3, NEmbd: uint32(cols), NHead: 2, NKVHead: 2,
		HeadDim: uint32(cols), NFF: 32, NLayer: 1, ArchTag: 0, RopeTheta: 10000,
	}
	tokens := []TokenEntry{{Text: "<eos>", Score: 0}, {Text: "a", Score: -1}, {Text: "b", Score: -2}}
	tensors := []TensorSource{{Name: "layers.0.attn.qkv_proj", Matrix: mat}}

	path := filepath.Join(t.TempDir(), "out.nspd")
	require.NoError(t, Save(path, hyper, tokens, tensors))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, hyper.NVocab, m.Hyper.NVocab)
	assert.Equal(t, hyper.RopeTheta, m.Hyper.RopeTheta)
	require.Len(t, m.Tokens, 3)
	assert.Equal(t, "a", m.Tokens[1].Text)

	got, err := m.Tensor("layers.0.attn.qkv_proj")
	require.NoError(t, err)
	assert.Equal(t, mat.Codes, got.Codes)
	assert.Equal(t, mat.Scales, got.Scales)
	assert.Equal(t, rows, got.Rows)
	assert.Equal(t, cols, got.Cols)
	assert.Equal(t, mat.K, got.K)
}

func TestTensorNamesSorted(t *testing.T) {
	mat, err := quant.QuantizeDense(make([]float32, 4*4), 4, 4, quant.Int8Sym, 4)
	require.NoError(t, err)
	hyper := Hyperparameters{NVocab: 1, NEmbd: 4, NHead: 1, NKVHead: 1, HeadDim: 4, NFF: 4, NLayer: 1}
	tensors := []TensorSource{
		{Name: "z_tensor", Matrix: mat},
		{Name: "a_tensor", Matrix: mat},
	}
	path := filepath.Join(t.TempDir(), "out.nspd")
	require.NoError(t, Save(path, hyper, []TokenEntry{{Text: "x"}}, tensors))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, []string{"a_tensor", "z_tensor"}, m.TensorNames())
}
