// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph produces the fixed per-layer op sequence a decoder
// architecture executes (spec.md §4.3): every layer of a given model runs
// the identical sequence, built once from a Config rather than discovered
// at runtime. There are no per-architecture Go branches — architecture
// variation is data (Config), and one table-walking function (Build) turns
// that data into an op sequence.
package graph

import (
	"strconv"

	"github.com/wutthichai46/neural-speed/nserrors"
)

// OpKind names one step of a layer-pass. Build returns a layer's []OpSpec
// and the decode controller walks it, dispatching each Kind to the matching
// tensor op.
type OpKind int

const (
	// OpSaveResidual snapshots the current hidden state as the operand the
	// next OpResidualAdd will add back in. It is placed at the start of
	// each sub-layer (attention, FFN), before that sub-layer's norm is
	// applied, so residual placement is correct under both pre-norm (norm
	// mutates hidden before the projection) and post-norm (norm runs after
	// the residual add) styles.
	OpSaveResidual OpKind = iota
	OpNorm
	OpQKVProj
	OpRoPE
	OpAttention
	OpOutProj
	OpResidualAdd
	OpFFNGate
	OpFFNUp
	OpActivation
	OpFFNDown
)

// NormType selects the normalization tensor op a Norm OpSpec dispatches to.
type NormType int

const (
	NormRMS NormType = iota
	NormLayer
)

// ActivationType selects the nonlinearity an Activation OpSpec applies.
type ActivationType int

const (
	ActivationSiLU ActivationType = iota
	ActivationGELU
)

// OpSpec is one entry in a layer's op sequence. WeightPattern names the
// symbolic tensor (modelfile.Model.Tensor key) this op reads, with "{layer}"
// substituted by ResolveWeightName. Ops that need no weight (Attention,
// RoPE, ResidualAdd, Activation) leave WeightPattern empty.
type OpSpec struct {
	Kind          OpKind
	WeightPattern string
	Norm          NormType
	Activation    ActivationType
}

// ResolveWeightName substitutes "{layer}" in pattern with the given 0-based
// layer index, yielding the modelfile tensor name for this layer.
func ResolveWeightName(pattern string, layer int) string {
	out := make([]byte, 0, len(pattern)+2)
	for i := 0; i < len(pattern); {
		if i+7 <= len(pattern) && pattern[i:i+7] == "{layer}" {
			out = append(out, strconv.Itoa(layer)...)
			i += 7
			continue
		}
		out = append(out, pattern[i])
		i++
	}
	return string(out)
}

// Config parameterizes a decoder architecture's layer-pass: residual style
// (PreNorm), norm type, FFN style (GatedFFN, Activation) and whether RoPE is
// applied (UseRoPE). The KV-head count is not part of Config; it comes from
// modelfile.Hyperparameters. Bias vectors are not modelled: no op reads a
// bias tensor. Two concrete presets are provided below; a caller
// constructing one for a new architecture needs no new Go code.
type Config struct {
	// PreNorm selects pre-norm (LLaMA-style) residual placement; false
	// selects post-norm (GPT-NeoX-style).
	PreNorm bool
	// Norm is the normalization kind applied before (pre-norm) or after
	// (post-norm) each sub-layer.
	Norm NormType
	// GatedFFN selects a SwiGLU-style gated FFN (gate ⊙ up, then down);
	// false selects a plain up/activation/down FFN.
	GatedFFN bool
	// Activation is the FFN nonlinearity.
	Activation ActivationType
	// UseRoPE enables the RoPE op between QKV projection and attention.
	UseRoPE bool
}

// Llama is the residual/norm/FFN/RoPE configuration for LLaMA-family
// architectures: pre-norm, RMSNorm, gated SwiGLU FFN, RoPE, GQA (KV-head
// count is a runtime parameter from modelfile.Hyperparameters, not part of
// this table).
var Llama = Config{
	PreNorm:    true,
	Norm:       NormRMS,
	GatedFFN:   true,
	Activation: ActivationSiLU,
	UseRoPE:    true,
}

// GPTNeoX is the residual/norm/FFN/RoPE configuration for GPT-NeoX-family
// architectures: post-norm, LayerNorm, plain FFN, no RoPE, multi-head
// (non-grouped) attention.
var GPTNeoX = Config{
	PreNorm:    false,
	Norm:       NormLayer,
	GatedFFN:   false,
	Activation: ActivationGELU,
	UseRoPE:    false,
}

// ArchTag values match the modelfile header's arch_tag hyperparameter
// (spec.md §6), so modelfile.Model.Hyper.ArchTag can select a Config
// directly without the caller hand-picking one.
const (
	ArchLlama uint32 = iota
	ArchGPTNeoX
)

// ConfigForArchTag maps a model file's arch_tag hyperparameter to the
// matching architecture Config. Unknown tags are MalformedModel: the model
// file names an architecture this engine's data-driven table has no entry
// for (spec.md §7).
func ConfigForArchTag(tag uint32) (Config, error) {
	switch tag {
	case ArchLlama:
		return Llama, nil
	case ArchGPTNeoX:
		return GPTNeoX, nil
	default:
		return Config{}, nserrors.Newf(nserrors.MalformedModel, "graph.ConfigForArchTag", nil, "unknown arch_tag %d", tag)
	}
}

// Build walks cfg and returns the fixed op sequence for one decoder layer.
// Weight-pattern names follow the "layers.{layer}.<submodule>" convention
// modelfile's tensor directory uses.
func Build(cfg Config) []OpSpec {
	var ops []OpSpec

	ops = append(ops, OpSpec{Kind: OpSaveResidual})
	if cfg.PreNorm {
		ops = append(ops, OpSpec{Kind: OpNorm, WeightPattern: "layers.{layer}.attn_norm", Norm: cfg.Norm})
	}
	ops = append(ops, OpSpec{Kind: OpQKVProj, WeightPattern: "layers.{layer}.attn.qkv_proj"})
	if cfg.UseRoPE {
		ops = append(ops, OpSpec{Kind: OpRoPE})
	}
	ops = append(ops, OpSpec{Kind: OpAttention})
	ops = append(ops, OpSpec{Kind: OpOutProj, WeightPattern: "layers.{layer}.attn.out_proj"})
	ops = append(ops, OpSpec{Kind: OpResidualAdd})
	if !cfg.PreNorm {
		ops = append(ops, OpSpec{Kind: OpNorm, WeightPattern: "layers.{layer}.attn_norm", Norm: cfg.Norm})
	}

	ops = append(ops, OpSpec{Kind: OpSaveResidual})
	if cfg.PreNorm {
		ops = append(ops, OpSpec{Kind: OpNorm, WeightPattern: "layers.{layer}.ffn_norm", Norm: cfg.Norm})
	}
	if cfg.GatedFFN {
		ops = append(ops, OpSpec{Kind: OpFFNGate, WeightPattern: "layers.{layer}.ffn.gate_proj"})
		ops = append(ops, OpSpec{Kind: OpFFNUp, WeightPattern: "layers.{layer}.ffn.up_proj"})
		ops = append(ops, OpSpec{Kind: OpActivation, Activation: cfg.Activation})
	} else {
		ops = append(ops, OpSpec{Kind: OpFFNUp, WeightPattern: "layers.{layer}.ffn.up_proj"})
		ops = append(ops, OpSpec{Kind: OpActivation, Activation: cfg.Activation})
	}
	ops = append(ops, OpSpec{Kind: OpFFNDown, WeightPattern: "layers.{layer}.ffn.down_proj"})
	ops = append(ops, OpSpec{Kind: OpResidualAdd})
	if !cfg.PreNorm {
		ops = append(ops, OpSpec{Kind: OpNorm, WeightPattern: "layers.{layer}.ffn_norm", Norm: cfg.Norm})
	}

	return ops
}
