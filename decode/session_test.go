package decode

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wutthichai46/neural-speed/graph"
	"github.com/wutthichai46/neural-speed/modelfile"
	"github.com/wutthichai46/neural-speed/nserrors"
	"github.com/wutthichai46/neural-speed/quant"
)

// stubTokenizer is the minimal tokenizer.Tokenizer a session test needs: it
// never calls Encode/Decode, only EOSID, since the test drives the session
// directly with token ids.
type stubTokenizer struct{ eos int32 }

func (s stubTokenizer) Encode(string) ([]int32, error) { return nil, nil }
func (s stubTokenizer) Decode([]int32) (string, error) { return "", nil }
func (s stubTokenizer) EOSID() int32                   { return s.eos }

// buildTinyModel writes a one-layer LLaMA-style model small enough to run
// its full graph op sequence in a test: nEmbd=4, nHead=2, nKVHead=2,
// headDim=2, nFF=8, nVocab=6.
func buildTinyModel(t *testing.T) string {
	t.Helper()
	const nEmbd, nHead, nKVHead, headDim, nFF, nVocab = 4, 2, 2, 2, 8, 6

	mkMatrix := func(rows, cols int) *quant.Matrix {
		src := make([]float32, rows*cols)
		for i := range src {
			src[i] = float32(i%5-2) * 0.1
		}
		m, err := quant.QuantizeDense(src, rows, cols, quant.Int8Sym, rows)
		require.NoError(t, err)
		return m
	}

	qkvOut := (nHead + 2*nKVHead) * headDim
	tensors := []modelfile.TensorSource{
		{Name: "token_embd", Matrix: mkMatrix(nVocab, nEmbd)},
		{Name: "output", Matrix: mkMatrix(nVocab, nEmbd)},
		{Name: "layers.0.attn_norm", Matrix: mkMatrix(1, nEmbd)},
		{Name: "layers.0.attn.qkv_proj", Matrix: mkMatrix(qkvOut, nEmbd)},
		{Name: "layers.0.attn.out_proj", Matrix: mkMatrix(nEmbd, nHead*headDim)},
		{Name: "layers.0.ffn_norm", Matrix: mkMatrix(1, nEmbd)},
		{Name: "layers.0.ffn.gate_proj", Matrix: mkMatrix(nFF, nEmbd)},
		{Name: "layers.0.ffn.up_proj", Matrix: mkMatrix(nFF, nEmbd)},
		{Name: "layers.0.ffn.down_proj", Matrix: mkMatrix(nEmbd, nFF)},
	}

	hyper := modelfile.Hyperparameters{
		NVocab: nVocab, NEmbd: nEmbd, NHead: nHead, NKVHead: nKVHead,
		HeadDim: headDim, NFF: nFF, NLayer: 1, ArchTag: graph.ArchLlama, RopeTheta: 10000,
	}
	tokens := make([]modelfile.TokenEntry, nVocab)
	for i := range tokens {
		tokens[i] = modelfile.TokenEntry{Text: string(rune('a' + i))}
	}

	path := filepath.Join(t.TempDir(), "tiny.nspd")
	require.NoError(t, modelfile.Save(path, hyper, tokens, tensors))
	return path
}

func openTinySession(t *testing.T, cfg Config) (*Session, *modelfile.Model) {
	t.Helper()
	path := buildTinyModel(t)
	model, err := modelfile.Open(path)
	require.NoError(t, err)

	sess, err := NewSession(model, graph.Llama, cfg, stubTokenizer{eos: 5})
	require.NoError(t, err)
	return sess, model
}

func TestPrefillThenStepProducesTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CtxSize = 16
	cfg.Threads = 1
	cfg.NPredict = 3
	cfg.Temperature = 0
	sess, model := openTinySession(t, cfg)
	defer model.Close()
	defer sess.Release()

	require.NoError(t, sess.Prefill([]int32{1, 2, 3}))
	assert.Equal(t, Decode, sess.State())

	var produced int
	for sess.State() == Decode {
		_, stop, err := sess.Step()
		require.NoError(t, err)
		produced++
		if stop {
			break
		}
	}
	assert.Equal(t, 3, produced)
	assert.Equal(t, Finished, sess.State())
}

func TestNPredictZeroProducesNoTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CtxSize = 16
	cfg.Threads = 1
	cfg.NPredict = 0
	sess, model := openTinySession(t, cfg)
	defer model.Close()
	defer sess.Release()

	require.NoError(t, sess.Prefill([]int32{1}))
	_, stop, err := sess.Step()
	require.NoError(t, err)
	assert.True(t, stop)
	assert.Equal(t, Finished, sess.State())
}

func TestZeroTemperatureIsDeterministicAcrossRuns(t *testing.T) {
	run := func() []int32 {
		cfg := DefaultConfig()
		cfg.CtxSize = 16
		cfg.Threads = 1
		cfg.NPredict = 5
		cfg.Temperature = 0
		sess, model := openTinySession(t, cfg)
		defer model.Close()
		defer sess.Release()

		require.NoError(t, sess.Prefill([]int32{1, 2}))
		var out []int32
		for sess.State() == Decode {
			next, stop, err := sess.Step()
			require.NoError(t, err)
			out = append(out, next)
			if stop {
				break
			}
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestInvalidConfigRejected(t *testing.T) {
	path := buildTinyModel(t)
	model, err := modelfile.Open(path)
	require.NoError(t, err)
	defer model.Close()

	_, err = NewSession(model, graph.Llama, Config{CtxSize: 0, Threads: 1}, stubTokenizer{eos: 5})
	assert.Error(t, err)

	_, err = NewSession(model, graph.Llama, Config{CtxSize: 16, Threads: 0}, stubTokenizer{eos: 5})
	assert.Error(t, err)
}

// spec.md §8 scenario 3: ctx_size exhausted without ring eviction fails with
// InvalidConfiguration, not ResourceExhausted — running out of ring-free
// slots is a consequence of the caller's own cfg, not a host resource
// shortage.
func TestCtxSizeExhaustedWithoutRingFailsWithInvalidConfiguration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CtxSize = 3
	cfg.Threads = 1
	cfg.ShiftRopedK = false
	sess, model := openTinySession(t, cfg)
	defer model.Close()
	defer sess.Release()

	err := sess.Prefill([]int32{1, 2, 3, 4})
	require.Error(t, err)
	kind, ok := nserrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, nserrors.InvalidConfiguration, kind)
}

// spec.md §8 scenario 4: the same overflow does not fail when ring eviction
// is enabled — the oldest entries are simply evicted.
func TestCtxSizeExhaustedWithRingEvictionSucceeds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CtxSize = 3
	cfg.Threads = 1
	cfg.ShiftRopedK = true
	sess, model := openTinySession(t, cfg)
	defer model.Close()
	defer sess.Release()

	require.NoError(t, sess.Prefill([]int32{1, 2, 3, 4}))
	assert.Equal(t, Decode, sess.State())
}

// spec.md §3/§6: ctx_size must not exceed the model's declared ctx_max.
func TestCtxSizeExceedingModelCtxMaxRejected(t *testing.T) {
	path := buildTinyModel(t)
	model, err := modelfile.Open(path)
	require.NoError(t, err)
	defer model.Close()

	model.Hyper.CtxMax = 8
	_, err = NewSession(model, graph.Llama, Config{CtxSize: 16, Threads: 1}, stubTokenizer{eos: 5})
	require.Error(t, err)
	kind, ok := nserrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, nserrors.InvalidConfiguration, kind)

	_, err = NewSession(model, graph.Llama, Config{CtxSize: 8, Threads: 1}, stubTokenizer{eos: 5})
	assert.NoError(t, err)
}

// Prefill must route multi-token chunks through tensor.Linear's batched GEMM
// rather than one GEVM at a time: a batch_size_truncate of 1 (unbatched) and
// of 4 (whole prompt in one chunk) must still agree on every logit, since
// batching changes how the work is scheduled, never the numeric result.
func TestPrefillBatchingMatchesUnbatchedPerTokenLogits(t *testing.T) {
	run := func(batch int) [][]float32 {
		cfg := DefaultConfig()
		cfg.CtxSize = 16
		cfg.Threads = 1
		cfg.CollectLogits = true
		cfg.BatchSizeTruncate = batch
		sess, model := openTinySession(t, cfg)
		defer model.Close()
		defer sess.Release()

		require.NoError(t, sess.Prefill([]int32{1, 2, 3, 4}))
		out := make([][]float32, 4)
		for i := range out {
			out[i] = sess.Logits(i)
		}
		return out
	}

	unbatched := run(1)
	batched := run(4)
	require.Len(t, batched, len(unbatched))
	for i := range unbatched {
		require.NotNil(t, batched[i])
		assert.InDeltaSlice(t, unbatched[i], batched[i], 1e-3)
	}
}
