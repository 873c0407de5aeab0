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

// Package sampler implements the token-sampling contract of spec.md §4.5:
// (logits, temperature, top_k, top_p, seed) → token_id. It deliberately does
// not use math/rand or math/rand/v2: the latter's algorithms are documented
// to change across Go releases, which would break spec.md invariant 7 ("with
// fixed seed and fixed thread count, two decode runs on identical inputs
// produce identical token sequences") the moment the toolchain is upgraded.
// A hand-rolled xorshift64* generator has fixed, version-independent
// semantics instead.
package sampler

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"sort"

	"github.com/wutthichai46/neural-speed/hwy/contrib/nn"
	"github.com/wutthichai46/neural-speed/internal/nslog"
)

// Sampler is a seeded xorshift64* pseudo-random generator plus the
// temperature/top-k/top-p sampling policy.
type Sampler struct {
	state uint64
}

// New constructs a Sampler from seed. Per spec.md §6, seed < 0 means
// "random": a fresh uint64 is drawn from crypto/rand so that every session
// run without a pinned seed actually produces a different token stream,
// instead of uint64(seed) folding every negative seed onto the same fixed
// bit pattern. The xorshift64* generator itself stays hand-rolled (see the
// package doc) — crypto/rand only supplies the one-time entropy that seeds
// it, it is never used as the per-token generator. seed == 0 is remapped to
// a fixed nonzero constant since xorshift64* has an absorbing all-zero
// state.
func New(seed int64) *Sampler {
	var s uint64
	switch {
	case seed < 0:
		var b [8]byte
		if _, err := cryptorand.Read(b[:]); err != nil {
			nslog.Log.Error().Err(err).Msg("crypto/rand unavailable, falling back to a fixed seed")
			s = 0x9E3779B97F4A7C15
		} else {
			s = binary.LittleEndian.Uint64(b[:])
		}
	case seed == 0:
		s = 0x9E3779B97F4A7C15
	default:
		s = uint64(seed)
	}
	return &Sampler{state: s}
}

// next advances the xorshift64* generator and returns its raw output.
func (s *Sampler) next() uint64 {
	x := s.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	s.state = x
	return x * 0x2545F4914F6CDD1D
}

// Float64 returns a uniform pseudo-random value in [0, 1).
func (s *Sampler) Float64() float64 {
	return float64(s.next()>>11) / float64(1<<53)
}

type candidate struct {
	id   int32
	prob float32
}

// Sample draws one token id from logits under the spec.md §4.5 policy:
// temperature 0 is argmax; otherwise logits are scaled by 1/temperature,
// optionally restricted to the top_k highest, then to the smallest prefix
// whose cumulative probability reaches top_p, renormalized, and drawn from
// with rng.
func Sample(logits []float32, temperature float32, topK int, topP float32, rng *Sampler) int32 {
	if len(logits) == 0 {
		return -1
	}
	if temperature <= 0 {
		return argmax(logits)
	}

	scaled := make([]float32, len(logits))
	for i, v := range logits {
		scaled[i] = v / temperature
	}
	probs := softmax(scaled)

	cands := make([]candidate, len(probs))
	for i, p := range probs {
		cands[i] = candidate{id: int32(i), prob: p}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].prob > cands[j].prob })

	if topK > 0 && topK < len(cands) {
		cands = cands[:topK]
	}

	if topP > 0 && topP < 1 {
		var cum float32
		cut := len(cands)
		for i, c := range cands {
			cum += c.prob
			if cum >= topP {
				cut = i + 1
				break
			}
		}
		cands = cands[:cut]
	}

	var total float32
	for _, c := range cands {
		total += c.prob
	}
	if total <= 0 {
		return cands[0].id
	}

	draw := float32(rng.Float64()) * total
	var running float32
	for _, c := range cands {
		running += c.prob
		if draw <= running {
			return c.id
		}
	}
	return cands[len(cands)-1].id
}

func argmax(logits []float32) int32 {
	best := 0
	bestVal := logits[0]
	for i, v := range logits[1:] {
		if v > bestVal {
			bestVal = v
			best = i + 1
		}
	}
	return int32(best)
}

// softmax computes a numerically stable softmax over logits (max-subtract
// before exp, per spec.md §4.1 edge-case policy), via the teacher's
// SIMD-accelerated nn.BaseSoftmax kernel.
func softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	nn.BaseSoftmax(logits, out)
	return out
}
