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

package modelfile

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/wutthichai46/neural-speed/internal/nslog"
	"github.com/wutthichai46/neural-speed/nserrors"
	"github.com/wutthichai46/neural-speed/quant"
)

// TensorSource is one named tensor to serialize into a model file written by
// Save. The quantize tool (package convert) builds these from re-quantized
// quant.Matrix values; a from-scratch model writer would build them from a
// training checkpoint, which is out of this engine's scope (spec.md §1).
type TensorSource struct {
	Name   string
	Matrix *quant.Matrix
}

// Save writes a conformant model file (spec.md §6): magic, version,
// hyperparameter block, tokenizer section, tensor directory, then the
// per-tensor data regions aligned to dataAlignment. It is the write-side
// counterpart of Open/parse, used by the quantize tool surface to persist a
// re-quantized copy of a model (convert.Quantize) rather than to ingest
// foreign training checkpoints.
func Save(path string, hyper Hyperparameters, tokens []TokenEntry, tensors []TensorSource) (err error) {
	f, ferr := os.Create(path)
	if ferr != nil {
		return nserrors.Newf(nserrors.ResourceExhausted, "modelfile.Save", ferr, "creating %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = nserrors.Wrap(nserrors.ResourceExhausted, "modelfile.Save", cerr)
		}
	}()

	w := &writer{}
	w.bytes(magic[:])
	w.u32(supportedVersion)

	w.u32(hyper.NVocab)
	w.u32(hyper.NEmbd)
	w.u32(hyper.NHead)
	w.u32(hyper.NKVHead)
	w.u32(hyper.HeadDim)
	w.u32(hyper.NFF)
	w.u32(hyper.NLayer)
	w.u32(hyper.ArchTag)
	w.u32(hyper.CtxMax)
	w.u32(math.Float32bits(hyper.RopeTheta))

	w.u32(uint32(len(tokens)))
	for _, t := range tokens {
		w.u32(uint32(len(t.Text)))
		w.bytes([]byte(t.Text))
		w.u32(math.Float32bits(t.Score))
	}

	// The directory's data offsets are absolute from file start and must be
	// known before the directory itself is written, so the data layout is
	// computed first (header + directory length is fixed once tensor count
	// and names are fixed) and then two passes assemble the file: directory,
	// then data regions at the offsets the directory promised.
	type laidOut struct {
		entry  TensorEntry
		matrix *quant.Matrix
	}
	laid := make([]laidOut, len(tensors))

	dirHeaderLen := 0
	for _, t := range tensors {
		dirHeaderLen += 4 + len(t.Name) + 4 + 2*4 /* 2 dims */ + 4 + 8 + 8
	}
	cursor := alignUp(w.off + 4 + dirHeaderLen)

	for i, t := range tensors {
		m := t.Matrix
		dataSize := len(m.Codes) + len(m.Scales)*4 + len(m.ZeroPoints)
		entry := TensorEntry{
			Name:       t.Name,
			Dims:       []uint32{uint32(m.Rows), uint32(m.Cols)},
			Format:     m.Format,
			K:          m.K,
			PackRow:    m.PackRow,
			DataOffset: uint64(cursor),
			DataSize:   uint64(dataSize),
		}
		laid[i] = laidOut{entry: entry, matrix: m}
		cursor = alignUp(cursor + dataSize)
	}

	w.u32(uint32(len(tensors)))
	for _, l := range laid {
		w.u32(uint32(len(l.entry.Name)))
		w.bytes([]byte(l.entry.Name))
		w.u32(uint32(len(l.entry.Dims)))
		for _, d := range l.entry.Dims {
			w.u32(d)
		}
		w.u32(encodeDtypeTag(l.entry.Format, l.entry.K, l.entry.PackRow))
		w.u64(l.entry.DataOffset)
		w.u64(l.entry.DataSize)
	}

	for _, l := range laid {
		w.padTo(int(l.entry.DataOffset))
		w.bytes(l.matrix.Codes)
		for _, s := range l.matrix.Scales {
			w.u32(math.Float32bits(s))
		}
		for _, zp := range l.matrix.ZeroPoints {
			w.bytes([]byte{byte(zp)})
		}
	}

	if _, werr := f.Write(w.buf); werr != nil {
		return nserrors.Newf(nserrors.ResourceExhausted, "modelfile.Save", werr, "writing %s", path)
	}
	nslog.Log.Info().Str("path", path).Int("tensors", len(tensors)).Msg("model saved")
	return nil
}

// encodeDtypeTag is the inverse of decodeDtypeTag: format in byte 0,
// pack-row in byte 1, K in bytes 2-3.
func encodeDtypeTag(format quant.Format, k, packRow int) uint32 {
	return uint32(format) | uint32(packRow)<<8 | uint32(k)<<16
}

// writer is an append-only byte-buffer cursor, the write-side mirror of
// reader.
type writer struct {
	buf []byte
	off int
}

func (w *writer) bytes(b []byte) {
	w.buf = append(w.buf, b...)
	w.off += len(b)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.bytes(b[:])
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.bytes(b[:])
}

func (w *writer) padTo(off int) {
	for w.off < off {
		w.buf = append(w.buf, 0)
		w.off++
	}
}
