package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLlamaSequenceIsPreNormWithRoPEAndGatedFFN(t *testing.T) {
	ops := Build(Llama)

	require := assert.New(t)
	require.Equal(OpSaveResidual, ops[0].Kind)
	require.Equal(OpNorm, ops[1].Kind)
	require.Equal(NormRMS, ops[1].Norm)

	var sawRoPE, sawGate, sawNorm bool
	for _, op := range ops {
		if op.Kind == OpRoPE {
			sawRoPE = true
		}
		if op.Kind == OpFFNGate {
			sawGate = true
		}
		if op.Kind == OpNorm {
			assert.Equal(t, NormRMS, op.Norm)
			sawNorm = true
		}
	}
	require.True(sawRoPE)
	require.True(sawGate)
	require.True(sawNorm)
	require.Equal(OpResidualAdd, ops[len(ops)-1].Kind)
}

func TestGPTNeoXSequenceIsPostNormNoRoPEPlainFFN(t *testing.T) {
	ops := Build(GPTNeoX)

	var sawRoPE, sawGate bool
	lastKind := ops[len(ops)-1].Kind
	for _, op := range ops {
		if op.Kind == OpRoPE {
			sawRoPE = true
		}
		if op.Kind == OpFFNGate {
			sawGate = true
		}
	}
	assert.False(t, sawRoPE)
	assert.False(t, sawGate)
	assert.Equal(t, OpNorm, lastKind)
}

func TestResolveWeightNameSubstitutesLayerIndex(t *testing.T) {
	got := ResolveWeightName("layers.{layer}.attn.qkv_proj", 5)
	assert.Equal(t, "layers.5.attn.qkv_proj", got)
}

func TestConfigForArchTagMapsKnownTags(t *testing.T) {
	llama, err := ConfigForArchTag(ArchLlama)
	assert.NoError(t, err)
	assert.Equal(t, Llama, llama)

	neox, err := ConfigForArchTag(ArchGPTNeoX)
	assert.NoError(t, err)
	assert.Equal(t, GPTNeoX, neox)
}

func TestConfigForArchTagRejectsUnknownTag(t *testing.T) {
	_, err := ConfigForArchTag(99)
	assert.Error(t, err)
}
