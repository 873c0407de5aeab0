package convert

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wutthichai46/neural-speed/modelfile"
	"github.com/wutthichai46/neural-speed/quant"
)

func buildInputModel(t *testing.T, rows, cols int) string {
	t.Helper()
	src := make([]float32, rows*cols)
	for i := range src {
		src[i] = float32(i%13) - 6
	}
	mat, err := quant.QuantizeDense(src, rows, cols, quant.Int8Sym, rows)
	require.NoError(t, err)

	hyper := modelfile.Hyperparameters{
		NVocab: 2, NEmbd: uint32(cols), NHead: 2, NKVHead: 2,
		HeadDim: uint32(cols), NFF: 16, NLayer: 1, ArchTag: 0, RopeTheta: 10000,
	}
	tokens := []modelfile.TokenEntry{{Text: "<eos>"}, {Text: "hi"}}
	tensors := []modelfile.TensorSource{{Name: "layers.0.attn.qkv_proj", Matrix: mat}}

	path := filepath.Join(t.TempDir(), "in.nspd")
	require.NoError(t, modelfile.Save(path, hyper, tokens, tensors))
	return path
}

func TestQuantizeRewritesTensorsAtNewFormat(t *testing.T) {
	const rows, cols = 8, 16
	in := buildInputModel(t, rows, cols)
	out := filepath.Join(t.TempDir(), "out.nspd")

	err := Quantize(in, out, Options{
		WeightDtype:  "int4",
		Algo:         "sym",
		GroupSize:    32,
		ScaleDtype:   "float32",
		ComputeDtype: "float32",
	})
	require.NoError(t, err)

	m, err := modelfile.Open(out)
	require.NoError(t, err)
	defer m.Close()

	got, err := m.Tensor("layers.0.attn.qkv_proj")
	require.NoError(t, err)
	assert.Equal(t, quant.Int4Sym, got.Format)
	assert.Equal(t, 32, got.K)
	assert.Equal(t, rows, got.Rows)
	assert.Equal(t, cols, got.Cols)
}

func TestQuantizeRejectsDisallowedTriple(t *testing.T) {
	in := buildInputModel(t, 4, 8)
	out := filepath.Join(t.TempDir(), "out.nspd")

	err := Quantize(in, out, Options{
		WeightDtype:  "int4",
		Algo:         "asym",
		GroupSize:    32,
		ScaleDtype:   "fp8_e4m3", // not a valid scale dtype for int4
		ComputeDtype: "float32",
	})
	assert.Error(t, err)
}

func TestQuantizeRejectsBadGroupSize(t *testing.T) {
	in := buildInputModel(t, 4, 8)
	out := filepath.Join(t.TempDir(), "out.nspd")

	err := Quantize(in, out, Options{
		WeightDtype:  "int8",
		Algo:         "sym",
		GroupSize:    7,
		ScaleDtype:   "float32",
		ComputeDtype: "float32",
	})
	assert.Error(t, err)
}
