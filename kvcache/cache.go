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

// Package kvcache implements the per-layer key/value store a decode session
// mutates one token at a time (spec.md §4.4). The teacher has no KV cache of
// its own; this package is new, but it is built in the teacher's idiom:
// fixed-size, allocated-once buffers indexed with bounds-checked arithmetic,
// matching quant.Matrix's block/slot indexing style and the teacher's own
// dequantize-on-demand matmul kernel's allocation-free hot path (see
// DESIGN.md's grounding note on the teacher's GGUF dequantizers).
package kvcache

import "github.com/wutthichai46/neural-speed/nserrors"

// Layer holds one decoder layer's key/value ring and logical-position map.
// Keys and values are stored as [ctxSize, numKVHeads, headDim] float32,
// row-major, allocated once at session-open (spec.md §5: "KV cache via one
// contiguous allocation per layer").
type Layer struct {
	ctxSize    int
	numKVHeads int
	headDim    int

	Keys   []float32
	Values []float32

	// slots[i] is the logical position stored at physical slot i, or -1 if
	// that slot has never been written.
	slots []int32

	// head is the next physical slot append will write to.
	head int

	// ring, once true, means Append wraps head modulo ctxSize instead of
	// failing once the buffer fills (spec.md §4.4 "ring-buffer option").
	ring bool

	// ropePhaseShift accumulates the net shift_rope_k delta applied since
	// the layer was opened or last reset, so ShiftRopeK(d) followed by
	// ShiftRopeK(-d) is an exact identity (spec.md invariant 6).
	ropePhaseShift int64
}

// NewLayer allocates a layer's KV ring. ring selects eviction behavior once
// the ring fills: true wraps (oldest slot is overwritten), false rejects
// further appends past ctxSize.
func NewLayer(ctxSize, numKVHeads, headDim int, ring bool) (*Layer, error) {
	if ctxSize <= 0 || numKVHeads <= 0 || headDim <= 0 {
		return nil, nserrors.New(nserrors.InvalidConfiguration, "kvcache.NewLayer", nil)
	}
	slotStride := numKVHeads * headDim
	l := &Layer{
		ctxSize:    ctxSize,
		numKVHeads: numKVHeads,
		headDim:    headDim,
		Keys:       make([]float32, ctxSize*slotStride),
		Values:     make([]float32, ctxSize*slotStride),
		slots:      make([]int32, ctxSize),
		ring:       ring,
	}
	for i := range l.slots {
		l.slots[i] = -1
	}
	return l, nil
}

func (l *Layer) slotStride() int { return l.numKVHeads * l.headDim }

// Append writes (k, v) — each [numKVHeads, headDim] — into the next physical
// slot, records its logical position, and advances head modulo ctxSize. It
// returns the physical slot written, per spec.md §4.4.
func (l *Layer) Append(k, v []float32, position int) (int, error) {
	stride := l.slotStride()
	if len(k) < stride || len(v) < stride {
		return 0, nserrors.New(nserrors.Internal, "kvcache.Layer.Append", nil)
	}
	if !l.ring && l.live() >= l.ctxSize {
		// Running out of ring-free slots is a consequence of the caller's
		// own ctx_size/shift_roped_k choice, not a host resource shortage
		// (spec.md §8 scenario 3: ctx_size exhausted without ring eviction
		// enabled fails with InvalidConfiguration).
		return 0, nserrors.New(nserrors.InvalidConfiguration, "kvcache.Layer.Append", nil)
	}

	slot := l.head
	copy(l.Keys[slot*stride:(slot+1)*stride], k[:stride])
	copy(l.Values[slot*stride:(slot+1)*stride], v[:stride])
	l.slots[slot] = int32(position)
	l.head = (l.head + 1) % l.ctxSize
	return slot, nil
}

func (l *Layer) live() int {
	n := 0
	for _, s := range l.slots {
		if s >= 0 {
			n++
		}
	}
	return n
}

// AttentionView is the result of GatherAttentionInputs: slices over the
// layer's live key/value storage plus a parallel logical-position array the
// attention op uses to build its causal mask.
type AttentionView struct {
	Keys      []float32 // [numLive, numKVHeads, headDim]
	Values    []float32 // [numLive, numKVHeads, headDim]
	Positions []int32   // [numLive], logical position of row i
	NumKVHeads int
	HeadDim    int
}

// GatherAttentionInputs returns a dense view of every live slot at or before
// the newest query position, ordered by logical position, for the given
// query positions' attention pass. Per-query masking of keys beyond each
// individual query's own position (needed when queryPositions spans more
// than one row, e.g. a batched prefill chunk) is tensor.Attention's job; this
// gather only drops slots that no query in the batch could ever attend to,
// which keeps the view — and the causal mask tensor.Attention builds from
// it — as small as the batch actually requires (spec.md §4.4).
func (l *Layer) GatherAttentionInputs(queryPositions []int) (*AttentionView, error) {
	newest := int32(-1)
	for _, p := range queryPositions {
		if int32(p) > newest {
			newest = int32(p)
		}
	}

	stride := l.slotStride()
	type entry struct {
		slot int
		pos  int32
	}
	var live []entry
	for i, p := range l.slots {
		if p >= 0 && p <= newest {
			live = append(live, entry{i, p})
		}
	}
	for i := 1; i < len(live); i++ {
		for j := i; j > 0 && live[j].pos < live[j-1].pos; j-- {
			live[j], live[j-1] = live[j-1], live[j]
		}
	}

	view := &AttentionView{
		Keys:       make([]float32, len(live)*stride),
		Values:     make([]float32, len(live)*stride),
		Positions:  make([]int32, len(live)),
		NumKVHeads: l.numKVHeads,
		HeadDim:    l.headDim,
	}
	for i, e := range live {
		copy(view.Keys[i*stride:(i+1)*stride], l.Keys[e.slot*stride:(e.slot+1)*stride])
		copy(view.Values[i*stride:(i+1)*stride], l.Values[e.slot*stride:(e.slot+1)*stride])
		view.Positions[i] = e.pos
	}
	return view, nil
}

// ShiftRopeK re-tags every live slot's logical position as position+delta
// (spec.md §4.4). Only the position tags change: the stored key vectors are
// not re-rotated, so their RoPE phase stays the one applied when they were
// written. Applying
// ShiftRopeK(d) then ShiftRopeK(-d) restores every position, satisfying
// spec.md invariant 6.
func (l *Layer) ShiftRopeK(delta int) {
	if delta == 0 {
		return
	}
	for i, p := range l.slots {
		if p >= 0 {
			l.slots[i] = p + int32(delta)
		}
	}
	l.ropePhaseShift += int64(delta)
}

// Head reports the next physical slot Append will write to.
func (l *Layer) Head() int { return l.head }

// CtxSize reports the ring's fixed capacity.
func (l *Layer) CtxSize() int { return l.ctxSize }

// Slots exposes the physical-slot → logical-position map read-only, for
// tests asserting the ring-eviction invariant (spec.md invariant 5).
func (l *Layer) Slots() []int32 {
	out := make([]int32, len(l.slots))
	copy(out, l.slots)
	return out
}

// Cache holds one Layer per decoder layer, constructed once per session.
type Cache struct {
	Layers []*Layer
}

// New allocates a Cache with numLayers independent Layer rings.
func New(numLayers, ctxSize, numKVHeads, headDim int, ring bool) (*Cache, error) {
	if numLayers <= 0 {
		return nil, nserrors.New(nserrors.InvalidConfiguration, "kvcache.New", nil)
	}
	c := &Cache{Layers: make([]*Layer, numLayers)}
	for i := range c.Layers {
		l, err := NewLayer(ctxSize, numKVHeads, headDim, ring)
		if err != nil {
			return nil, err
		}
		c.Layers[i] = l
	}
	return c, nil
}
