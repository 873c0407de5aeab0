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

// Package modelfile memory-maps the binary model container described in
// spec.md §6 and exposes its hyperparameters, tokenizer vocabulary and
// tensor directory. Tensors are handed out as quant.Matrix values whose
// Codes slice aliases the mapping directly — the container owns only the
// metadata, never a copy of the weight bytes (spec.md §4.2).
//
// Mapping is done with github.com/edsrzf/mmap-go, the same mmap wrapper
// used elsewhere in the retrieval corpus for zero-copy file-backed storage
// (see itohio-EasyRobot's x/marshaller/storage package), rather than
// reimplementing the unix/windows syscall plumbing by hand.
package modelfile

import (
	"encoding/binary"
	"math"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"

	"github.com/wutthichai46/neural-speed/internal/nslog"
	"github.com/wutthichai46/neural-speed/nserrors"
	"github.com/wutthichai46/neural-speed/quant"
)

var magic = [4]byte{'N', 'S', 'P', 'D'}

const supportedVersion = 1

const dataAlignment = 32

// Hyperparameters is the fixed ordered list of 32-bit integers from the
// model header (spec.md §6). CtxMax is the model's trained maximum context
// length (spec.md §3); zero means no upper bound is enforced beyond
// ctx_size's own positivity check.
type Hyperparameters struct {
	NVocab    uint32
	NEmbd     uint32
	NHead     uint32
	NKVHead   uint32
	HeadDim   uint32
	NFF       uint32
	NLayer    uint32
	ArchTag   uint32
	CtxMax    uint32
	RopeTheta float32
}

// TokenEntry is one vocabulary entry: its UTF-8 text and learned score.
type TokenEntry struct {
	Text  string
	Score float32
}

// TensorEntry is one tensor-directory record (spec.md §6).
type TensorEntry struct {
	Name       string
	Dims       []uint32
	Format     quant.Format
	K          int
	PackRow    int
	DataOffset uint64
	DataSize   uint64
}

// Model is a memory-mapped model file. It must be closed with Close once no
// quant.Matrix obtained from it is in use.
type Model struct {
	Hyper  Hyperparameters
	Tokens []TokenEntry
	dir    map[string]TensorEntry

	file *os.File
	mm   mmap.MMap
}

// Open memory-maps path and parses its header, tokenizer section and
// tensor directory. The data region itself is read lazily, by Tensor.
func Open(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nserrors.Newf(nserrors.ResourceExhausted, "modelfile.Open", err, "opening %s", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nserrors.Newf(nserrors.ResourceExhausted, "modelfile.Open", err, "mmap %s", path)
	}

	model := &Model{file: f, mm: m, dir: map[string]TensorEntry{}}
	if err := model.parse(); err != nil {
		model.Close()
		nslog.Log.Error().Err(err).Str("path", path).Msg("model load failed")
		return nil, err
	}
	nslog.Log.Info().
		Str("path", path).
		Uint32("n_layer", model.Hyper.NLayer).
		Uint32("n_embd", model.Hyper.NEmbd).
		Uint32("n_vocab", model.Hyper.NVocab).
		Int("tensors", len(model.dir)).
		Msg("model loaded")
	return model, nil
}

// Close unmaps the file. Any quant.Matrix borrowed from this Model must not
// be used afterward.
func (m *Model) Close() error {
	var errs []error
	if m.mm != nil {
		if err := m.mm.Unmap(); err != nil {
			errs = append(errs, err)
		}
		m.mm = nil
	}
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			errs = append(errs, err)
		}
		m.file = nil
	}
	if len(errs) > 0 {
		return errs[0]
	}
	nslog.Log.Debug().Msg("model unmapped")
	return nil
}

func (m *Model) parse() error {
	buf := []byte(m.mm)
	if len(buf) < 8 || [4]byte(buf[:4]) != magic {
		return nserrors.New(nserrors.MalformedModel, "modelfile.parse", nil)
	}
	version := binary.LittleEndian.Uint32(buf[4:8])
	if version != supportedVersion {
		return nserrors.Newf(nserrors.MalformedModel, "modelfile.parse", nil, "unsupported version %d", version)
	}
	off := 8

	r := &reader{buf: buf, off: off}
	h := Hyperparameters{
		NVocab:  r.u32(),
		NEmbd:   r.u32(),
		NHead:   r.u32(),
		NKVHead: r.u32(),
		HeadDim: r.u32(),
		NFF:     r.u32(),
		NLayer:  r.u32(),
		ArchTag: r.u32(),
		CtxMax:  r.u32(),
	}
	h.RopeTheta = math.Float32frombits(r.u32())
	if r.err != nil {
		return nserrors.New(nserrors.MalformedModel, "modelfile.parse", r.err)
	}
	m.Hyper = h

	vocabSize := r.u32()
	m.Tokens = make([]TokenEntry, vocabSize)
	for i := range m.Tokens {
		n := r.u32()
		text := r.bytes(int(n))
		score := math.Float32frombits(r.u32())
		m.Tokens[i] = TokenEntry{Text: string(text), Score: score}
	}
	if r.err != nil {
		return nserrors.New(nserrors.MalformedModel, "modelfile.parse", r.err)
	}

	numTensors := r.u32()
	for i := uint32(0); i < numTensors; i++ {
		nameLen := r.u32()
		name := string(r.bytes(int(nameLen)))
		nDims := r.u32()
		dims := make([]uint32, nDims)
		for d := range dims {
			dims[d] = r.u32()
		}
		dtypeTag := r.u32()
		dataOffset := r.u64()
		dataSize := r.u64()
		if r.err != nil {
			return nserrors.New(nserrors.MalformedModel, "modelfile.parse", r.err)
		}

		format, k, packRow, err := decodeDtypeTag(dtypeTag)
		if err != nil {
			return err
		}
		m.dir[name] = TensorEntry{
			Name:       name,
			Dims:       dims,
			Format:     format,
			K:          k,
			PackRow:    packRow,
			DataOffset: dataOffset,
			DataSize:   dataSize,
		}
	}
	return nil
}

// dtypeTag packs format (byte 0), pack-row (byte 1), K (bytes 2-3).
func decodeDtypeTag(tag uint32) (quant.Format, int, int, error) {
	format := quant.Format(tag & 0xFF)
	packRow := int((tag >> 8) & 0xFF)
	k := int((tag >> 16) & 0xFFFF)
	if format > quant.FP8E5M2 {
		return 0, 0, 0, nserrors.Newf(nserrors.MalformedModel, "modelfile.decodeDtypeTag", nil, "unknown dtype tag %d", tag)
	}
	if packRow == 0 {
		packRow = 1
	}
	if k == 0 {
		k = 1
	}
	return format, k, packRow, nil
}

// TensorNames returns the tensor directory's names sorted lexicographically, for
// callers (e.g. package convert) that must walk every tensor rather than
// look one up by symbolic name.
func (m *Model) TensorNames() []string {
	names := make([]string, 0, len(m.dir))
	for _, e := range m.dir {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Tensor returns a quant.Matrix whose Codes alias the mapping directly (no
// copy); Scales and ZeroPoints are decoded into newly allocated slices.
// rows/cols come from the directory's Dims
// (shape [rows, cols]).
func (m *Model) Tensor(name string) (*quant.Matrix, error) {
	entry, ok := m.dir[name]
	if !ok {
		return nil, nserrors.Newf(nserrors.MalformedModel, "modelfile.Tensor", nil, "unknown tensor %q", name)
	}
	if len(entry.Dims) != 2 {
		return nil, nserrors.Newf(nserrors.MalformedModel, "modelfile.Tensor", nil, "tensor %q is not 2-D", name)
	}
	rows, cols := int(entry.Dims[0]), int(entry.Dims[1])

	region := m.mm[entry.DataOffset : entry.DataOffset+entry.DataSize]
	r := &reader{buf: region, off: 0}

	mat := &quant.Matrix{Rows: rows, Cols: cols, Format: entry.Format, K: entry.K, PackRow: entry.PackRow}

	var codeBytes int
	if entry.Format.IsFourBit() {
		codeBytes = rows * quant.NibbleBytes(cols)
	} else {
		codeBytes = rows * cols
	}
	mat.Codes = r.bytes(codeBytes)

	numBlocks := mat.NumBlocks()
	scaleFloats := r.floats(numBlocks * cols)
	mat.Scales = scaleFloats

	if entry.Format.IsAsymmetric() {
		mat.ZeroPoints = r.int8s(numBlocks * cols)
	}
	if r.err != nil {
		return nil, nserrors.Newf(nserrors.MalformedModel, "modelfile.Tensor", r.err, "tensor %q truncated", name)
	}
	return mat, nil
}

// reader is a small bounds-checked cursor over a mapped byte region,
// matching the allocation-free parsing style of gguf_base.go's header
// readers.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) need(n int) bool {
	if r.err != nil || r.off+n > len(r.buf) {
		if r.err == nil {
			r.err = nserrors.New(nserrors.MalformedModel, "modelfile.reader", nil)
		}
		return false
	}
	return true
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) u64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.buf[r.off : r.off+n]
	r.off += n
	return v
}

func (r *reader) int8s(n int) []int8 {
	raw := r.bytes(n)
	if raw == nil {
		return nil
	}
	out := make([]int8, n)
	for i, b := range raw {
		out[i] = int8(b)
	}
	return out
}

func (r *reader) floats(n int) []float32 {
	raw := r.bytes(n * 4)
	if raw == nil {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

// alignUp rounds off up to the next dataAlignment-byte boundary, used by
// Save (writer.go) when constructing a conformant file.
func alignUp(off int) int {
	rem := off % dataAlignment
	if rem == 0 {
		return off
	}
	return off + (dataAlignment - rem)
}
