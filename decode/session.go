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

// Package decode implements the prefill/decode controller of spec.md §4.5:
// the Idle→Prefill→Decode→Finished state machine, repeat penalty, and the
// per-step protocol that turns a graph.Config's op sequence plus a
// modelfile.Model's weights into sampled token ids.
package decode

import (
	"math"

	"github.com/wutthichai46/neural-speed/decode/sampler"
	"github.com/wutthichai46/neural-speed/graph"
	"github.com/wutthichai46/neural-speed/hwy/contrib/workerpool"
	"github.com/wutthichai46/neural-speed/internal/nslog"
	"github.com/wutthichai46/neural-speed/kvcache"
	"github.com/wutthichai46/neural-speed/modelfile"
	"github.com/wutthichai46/neural-speed/nserrors"
	"github.com/wutthichai46/neural-speed/quant"
	"github.com/wutthichai46/neural-speed/tensor"
	"github.com/wutthichai46/neural-speed/tokenizer"
)

// State is one of the four decode-controller states (spec.md §4.5).
type State int

const (
	Idle State = iota
	Prefill
	Decode
	Finished
)

// Config is the runtime parameter set spec.md §6 recognizes.
type Config struct {
	CtxSize           int
	BatchSizeTruncate int
	Threads           int
	NPredict          int // -1 = unlimited
	Seed              int64
	Temperature       float32
	TopK              int
	TopP              float32
	RepeatPenalty     float32
	Keep              int // -1 = whole prompt
	ShiftRopedK       bool
	CollectLogits     bool // needed only for perplexity/scoring
	NumericGuard      bool // spec.md §7 NumericFault: check logits for NaN/Inf
}

// Session drives one model's decode loop. It owns the KV cache and is
// released (along with the cache) at session end; there is no cross-session
// sharing (spec.md §5).
type Session struct {
	model *modelfile.Model
	arch  graph.Config
	cfg   Config
	tok   tokenizer.Tokenizer
	pool  workerpool.Executor
	rng   *sampler.Sampler

	cache *kvcache.Cache
	ops   []graph.OpSpec

	state     State
	produced  int
	position  int
	history   []int32
	logitsLog [][]float32

	terminators map[int32]bool

	// ffnGateScratch/ffnScratch hold the FFN's intermediate buffers across
	// the OpFFNGate/OpFFNUp/OpActivation/OpFFNDown steps of one runLayer
	// call. runLayer is never re-entered concurrently for the same Session
	// (the decode controller is single-threaded per spec.md §5).
	ffnGateScratch []float32
	ffnScratch     []float32
}

// NewSession opens a decode session against an already-loaded model. The
// caller retains ownership of model and must not close it before the
// session is released.
func NewSession(model *modelfile.Model, arch graph.Config, cfg Config, tok tokenizer.Tokenizer) (*Session, error) {
	if cfg.CtxSize <= 0 || cfg.Threads <= 0 {
		return nil, nserrors.New(nserrors.InvalidConfiguration, "decode.NewSession", nil)
	}
	// spec.md §6: "ctx_size: positive int ≤ model ctx_max". CtxMax == 0 means
	// the model file predates this field and carries no declared bound.
	if model.Hyper.CtxMax > 0 && uint32(cfg.CtxSize) > model.Hyper.CtxMax {
		return nil, nserrors.Newf(nserrors.InvalidConfiguration, "decode.NewSession", nil,
			"ctx_size %d exceeds model ctx_max %d", cfg.CtxSize, model.Hyper.CtxMax)
	}
	cache, err := kvcache.New(int(model.Hyper.NLayer), cfg.CtxSize, int(model.Hyper.NKVHead), int(model.Hyper.HeadDim), cfg.ShiftRopedK)
	if err != nil {
		// kvcache.New's own errors already carry the right Kind (e.g.
		// InvalidConfiguration for a bad cfg field); preserve it instead of
		// flattening every cache-construction failure onto ResourceExhausted.
		kind, ok := nserrors.KindOf(err)
		if !ok {
			kind = nserrors.ResourceExhausted
		}
		return nil, nserrors.Wrap(kind, "decode.NewSession", err)
	}

	s := &Session{
		model:       model,
		arch:        arch,
		cfg:         cfg,
		tok:         tok,
		pool:        workerpool.New(cfg.Threads),
		rng:         sampler.New(cfg.Seed),
		cache:       cache,
		ops:         graph.Build(arch),
		state:       Idle,
		terminators: map[int32]bool{tok.EOSID(): true},
	}
	nslog.Log.Debug().
		Int("ctx_size", cfg.CtxSize).
		Int("threads", cfg.Threads).
		Bool("shift_roped_k", cfg.ShiftRopedK).
		Msg("decode session opened")
	return s, nil
}

// Release discards the KV cache and worker pool. The session must not be
// used afterward.
func (s *Session) Release() {
	s.cache = nil
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	nslog.Log.Debug().Int("produced", s.produced).Msg("decode session released")
	s.state = Finished
}

// State reports the session's current state.
func (s *Session) State() State { return s.state }

// Prefill processes the entire prompt in one or more batched passes sized by
// cfg.BatchSizeTruncate (spec.md §4.5 step 3): a multi-row chunk runs its
// QKV/FFN projections as a single batched GEMM (tensor.Linear) over the
// chunk's rows rather than one GEMV per token (a one-row chunk uses
// tensor.LinearDecode), and the KV cache is still filled one token at a time
// within the chunk since attention is causal — each row's query must see
// exactly its own and earlier positions, enforced per-row by
// tensor.Attention's position-aware mask. The lm head runs on a multi-row
// chunk only when cfg.CollectLogits is set; then every position's logits
// are retained and retrievable via Logits.
func (s *Session) Prefill(tokens []int32) error {
	if s.state != Idle {
		return nserrors.New(nserrors.InvalidConfiguration, "decode.Session.Prefill", nil)
	}
	s.state = Prefill

	batch := s.cfg.BatchSizeTruncate
	if batch <= 0 {
		batch = 1
	}
	for start := 0; start < len(tokens); start += batch {
		end := min(start+batch, len(tokens))
		chunk := tokens[start:end]
		positions := make([]int, len(chunk))
		for i := range chunk {
			positions[i] = s.position + i
		}

		logitsRows, err := s.runForward(chunk, positions)
		if err != nil {
			return err
		}
		s.history = append(s.history, chunk...)
		s.position += len(chunk)
		if s.cfg.CollectLogits {
			s.logitsLog = append(s.logitsLog, logitsRows...)
		}
	}
	s.state = Decode
	return nil
}

// Step performs one incremental decode pass: embeds the last produced
// token (or the last prompt token on the first call), runs every layer's
// op sequence, applies repeat penalty, samples, and tests stop criteria.
// When cfg.NPredict tokens have already been produced (at once, for
// NPredict == 0), Step samples nothing: it moves to Finished and returns -1
// with stop set.
func (s *Session) Step() (int32, bool, error) {
	if s.state != Decode {
		return 0, false, nserrors.New(nserrors.InvalidConfiguration, "decode.Session.Step", nil)
	}
	if len(s.history) == 0 {
		return 0, false, nserrors.New(nserrors.Internal, "decode.Session.Step", nil)
	}
	if s.cfg.NPredict >= 0 && s.produced >= s.cfg.NPredict {
		s.state = Finished
		return -1, true, nil
	}

	last := s.history[len(s.history)-1]
	logitsRows, err := s.runForward([]int32{last}, []int{s.position})
	if err != nil {
		return 0, false, err
	}
	logits := logitsRows[0]
	s.applyRepeatPenalty(logits)

	next := sampler.Sample(logits, s.cfg.Temperature, s.cfg.TopK, s.cfg.TopP, s.rng)
	s.history = append(s.history, next)
	s.position++
	s.produced++

	stop := s.terminators[next] ||
		(s.cfg.NPredict >= 0 && s.produced >= s.cfg.NPredict)
	if stop {
		s.state = Finished
		nslog.Log.Debug().Int("produced", s.produced).Msg("decode finished")
	}
	return next, stop, nil
}

// Logits returns the vocabulary logits computed for position pos during
// Prefill. It is only populated when cfg.CollectLogits was set.
func (s *Session) Logits(pos int) []float32 {
	if pos < 0 || pos >= len(s.logitsLog) {
		return nil
	}
	return s.logitsLog[pos]
}

// applyRepeatPenalty divides the logit of every token id seen in the last
// cfg.Keep positions of history by cfg.RepeatPenalty (spec.md §4.5 step 4).
func (s *Session) applyRepeatPenalty(logits []float32) {
	if s.cfg.RepeatPenalty <= 1 {
		return
	}
	keep := s.cfg.Keep
	if keep < 0 || keep > len(s.history) {
		keep = len(s.history)
	}
	window := s.history[len(s.history)-keep:]
	seen := map[int32]bool{}
	for _, id := range window {
		if seen[id] || int(id) >= len(logits) {
			continue
		}
		seen[id] = true
		logits[id] /= s.cfg.RepeatPenalty
	}
}

// runForward embeds ids (one row per id), runs every layer's op sequence at
// the given positions, and returns the vocabulary logits for each row —
// unless cfg.CollectLogits is unset and more than one row was requested, in
// which case the (expensive, vocab-wide) lm head projection is skipped
// entirely: a prefill chunk that isn't being scored doesn't need it, only
// the KV cache population it leaves behind. rows == len(ids) == len(positions).
func (s *Session) runForward(ids []int32, positions []int) ([][]float32, error) {
	rows := len(ids)
	nEmbd := int(s.model.Hyper.NEmbd)
	hidden := make([]float32, rows*nEmbd)

	embd, err := s.model.Tensor("token_embd")
	if err != nil {
		return nil, err
	}
	for r, id := range ids {
		embd.DequantizeRowVec(int(id), hidden[r*nEmbd:(r+1)*nEmbd])
	}

	for layer := 0; layer < int(s.model.Hyper.NLayer); layer++ {
		if err := s.runLayer(layer, hidden, rows, positions); err != nil {
			return nil, err
		}
	}

	if rows > 1 && !s.cfg.CollectLogits {
		return nil, nil
	}

	lmHead, err := s.model.Tensor("output")
	if err != nil {
		return nil, err
	}
	nVocab := int(s.model.Hyper.NVocab)
	logits := make([][]float32, rows)
	if rows == 1 {
		out := make([]float32, nVocab)
		if err := tensor.LinearDecode(s.pool, hidden, lmHead, out); err != nil {
			return nil, err
		}
		logits[0] = out
	} else {
		flat := make([]float32, rows*nVocab)
		if err := tensor.Linear(s.pool, hidden, lmHead, flat, rows); err != nil {
			return nil, err
		}
		for r := range logits {
			logits[r] = flat[r*nVocab : (r+1)*nVocab]
		}
	}

	if s.cfg.NumericGuard {
		for _, row := range logits {
			for _, v := range row {
				if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
					err := nserrors.New(nserrors.NumericFault, "decode.Session.runForward", nil)
					nslog.Log.Error().Int("position", s.position).Msg("NaN/Inf detected in logits, aborting session")
					s.state = Finished
					s.cache = nil
					return nil, err
				}
			}
		}
	}
	return logits, nil
}

// runLayer executes one decoder layer's fixed op sequence in place over
// hidden (shape [rows, nEmbd], row r at logical position positions[r]),
// mutating the KV cache for this layer at each row's position. rows == 1 is
// the decode fast path (tensor.LinearDecode, one GEMV per projection);
// rows > 1 is a batched prefill chunk (tensor.Linear, one GEMM per
// projection for the whole chunk).
func (s *Session) runLayer(layer int, hidden []float32, rows int, positions []int) error {
	nEmbd := int(s.model.Hyper.NEmbd)
	nHead := int(s.model.Hyper.NHead)
	nKVHead := int(s.model.Hyper.NKVHead)
	headDim := int(s.model.Hyper.HeadDim)
	kvLayer := s.cache.Layers[layer]

	linear := func(x []float32, w *quant.Matrix, out []float32) error {
		if rows == 1 {
			return tensor.LinearDecode(s.pool, x, w, out)
		}
		return tensor.Linear(s.pool, x, w, out, rows)
	}

	var residual []float32
	var q, k, v []float32

	for _, op := range s.ops {
		weightName := ""
		if op.WeightPattern != "" {
			weightName = graph.ResolveWeightName(op.WeightPattern, layer)
		}

		switch op.Kind {
		case graph.OpSaveResidual:
			residual = append([]float32{}, hidden...)

		case graph.OpNorm:
			w, err := s.model.Tensor(weightName)
			if err != nil {
				return err
			}
			gain := make([]float32, nEmbd)
			w.DequantizeRowVec(0, gain)
			if op.Norm == graph.NormRMS {
				tensor.RMSNorm(hidden, rows, nEmbd, gain, 1e-5)
			} else {
				bias := make([]float32, nEmbd)
				tensor.LayerNorm(hidden, rows, nEmbd, gain, bias, 1e-5)
			}

		case graph.OpQKVProj:
			w, err := s.model.Tensor(weightName)
			if err != nil {
				return err
			}
			qkvLen := (nHead + 2*nKVHead) * headDim
			qkv := make([]float32, rows*qkvLen)
			if err := linear(hidden, w, qkv); err != nil {
				return err
			}
			q = make([]float32, rows*nHead*headDim)
			k = make([]float32, rows*nKVHead*headDim)
			v = make([]float32, rows*nKVHead*headDim)
			for r := 0; r < rows; r++ {
				rowOff := r * qkvLen
				copy(q[r*nHead*headDim:(r+1)*nHead*headDim], qkv[rowOff:rowOff+nHead*headDim])
				copy(k[r*nKVHead*headDim:(r+1)*nKVHead*headDim], qkv[rowOff+nHead*headDim:rowOff+nHead*headDim+nKVHead*headDim])
				copy(v[r*nKVHead*headDim:(r+1)*nKVHead*headDim], qkv[rowOff+nHead*headDim+nKVHead*headDim:rowOff+qkvLen])
			}

		case graph.OpRoPE:
			tensor.RoPE(q, positions, nHead, headDim, float64(s.model.Hyper.RopeTheta))
			tensor.RoPE(k, positions, nKVHead, headDim, float64(s.model.Hyper.RopeTheta))

		case graph.OpAttention:
			for r := 0; r < rows; r++ {
				kRow := k[r*nKVHead*headDim : (r+1)*nKVHead*headDim]
				vRow := v[r*nKVHead*headDim : (r+1)*nKVHead*headDim]
				if _, err := kvLayer.Append(kRow, vRow, positions[r]); err != nil {
					return err
				}
			}
			view, err := kvLayer.GatherAttentionInputs(positions)
			if err != nil {
				return err
			}
			queryPositions := make([]int32, rows)
			for r, p := range positions {
				queryPositions[r] = int32(p)
			}
			attnOut := make([]float32, rows*nHead*headDim)
			scale := float32(1.0 / math.Sqrt(float64(headDim)))
			if err := tensor.Attention(q, queryPositions, view, attnOut, nHead, headDim, scale); err != nil {
				return err
			}
			copy(hidden, attnOut)

		case graph.OpOutProj:
			w, err := s.model.Tensor(weightName)
			if err != nil {
				return err
			}
			out := make([]float32, rows*nEmbd)
			if err := linear(hidden, w, out); err != nil {
				return err
			}
			copy(hidden, out)

		case graph.OpResidualAdd:
			for i := range hidden {
				hidden[i] += residual[i]
			}
			residual = nil

		case graph.OpFFNGate, graph.OpFFNUp:
			w, err := s.model.Tensor(weightName)
			if err != nil {
				return err
			}
			out := make([]float32, rows*w.Rows)
			if err := linear(hidden, w, out); err != nil {
				return err
			}
			if op.Kind == graph.OpFFNGate {
				s.ffnGateScratch = out
			} else if s.ffnGateScratch != nil {
				for i := range out {
					out[i] *= s.ffnGateScratch[i]
				}
				s.ffnGateScratch = nil
			}
			s.ffnScratch = out

		case graph.OpActivation:
			if op.Activation == graph.ActivationSiLU {
				tensor.SiLU(s.ffnScratch)
			} else {
				tensor.GELU(s.ffnScratch)
			}

		case graph.OpFFNDown:
			w, err := s.model.Tensor(weightName)
			if err != nil {
				return err
			}
			out := make([]float32, rows*nEmbd)
			if err := linear(s.ffnScratch, w, out); err != nil {
				return err
			}
			copy(hidden, out)
			s.ffnScratch = nil
		}
	}
	return nil
}

