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

package quant

import (
	"github.com/wutthichai46/neural-speed/hwy"
	"github.com/wutthichai46/neural-speed/nserrors"
)

// Matrix is a block-quantized [Rows, Cols] weight matrix. It owns its scale
// and zero-point metadata and, when built over a memory-mapped model file,
// borrows Codes from the mapping (see modelfile.Model.Tensor) rather than copying
// it — the container "owns its metadata and borrows the code bytes from the
// mapping" (spec.md §4.2).
//
// Four-bit formats pack two codes per byte column-pair-wise: for row r,
// columns 2k and 2k+1 share byte Codes[r*NibbleBytes(Cols)+k], low nibble
// first. This is a column-pair packing rather than GGUF's intra-row block
// split (see DESIGN.md's grounding note on the teacher's GGUF dequantizers),
// chosen because this matrix is addressed by arbitrary (row, col), not a
// fixed 32-wide 1-D block.
type Matrix struct {
	Rows, Cols int
	Format     Format

	// K is the k-block height: K consecutive rows share one scale slot.
	K int
	// PackRow groups PackRow consecutive K-blocks under a single scale slot,
	// amortizing scale storage (spec.md glossary: "pack-row").
	PackRow int

	// Codes holds the packed weight codes, row-major.
	Codes []byte

	// Scales has shape [NumBlocks, Cols]; NumBlocks = ceil(Rows/(K*PackRow)).
	Scales []float32

	// ZeroPoints has shape [NumBlocks, Cols] and is non-nil only for
	// asymmetric integer formats (Int8Asym, Int4Asym).
	ZeroPoints []int8
}

// NumBlocks returns the number of k-block rows in the scale/zero-point
// buffers.
func (m *Matrix) NumBlocks() int {
	step := m.K * max1(m.PackRow)
	return (m.Rows + step - 1) / step
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// blockIndex returns the scale-row index for absolute row r given a
// k_offset, per spec.md invariant 4: ⌊(k_offset+r)/(K·pack_row)⌋.
func (m *Matrix) blockIndex(kOffset, r int) int {
	return (kOffset + r) / (m.K * max1(m.PackRow))
}

func (m *Matrix) nibbleStride() int {
	return NibbleBytes(m.Cols)
}

func (m *Matrix) rawCode(r, c int) uint8 {
	if m.Format.IsFourBit() {
		byteIdx := r*m.nibbleStride() + c/2
		if c%2 == 0 {
			return m.Codes[byteIdx] & 0x0F
		}
		return (m.Codes[byteIdx] >> 4) & 0x0F
	}
	return m.Codes[r*m.Cols+c]
}

func (m *Matrix) setRawCode(r, c int, v uint8) {
	if m.Format.IsFourBit() {
		byteIdx := r*m.nibbleStride() + c/2
		if c%2 == 0 {
			m.Codes[byteIdx] = (m.Codes[byteIdx] & 0xF0) | (v & 0x0F)
		} else {
			m.Codes[byteIdx] = (m.Codes[byteIdx] & 0x0F) | ((v & 0x0F) << 4)
		}
		return
	}
	m.Codes[r*m.Cols+c] = v
}

// Dequantize writes rowCount rows starting at absolute row kOffset into dst
// (row-major, stride Cols) as float32. kOffset lets a caller dequantize a
// tile that does not start at the matrix's first row without recomputing
// earlier blocks, per spec.md §4.1 ("must tolerate a nonzero k_offset").
func (m *Matrix) Dequantize(kOffset, rowCount int, dst []float32) error {
	if rowCount < 0 || kOffset+rowCount > m.Rows {
		return nserrors.New(nserrors.Internal, "quant.Matrix.Dequantize", nil)
	}
	lut := lutFor(m.Format)
	for r := 0; r < rowCount; r++ {
		absRow := kOffset + r
		b := m.blockIndex(0, absRow)
		scaleRow := m.Scales[b*m.Cols : b*m.Cols+m.Cols]
		var zpRow []int8
		if m.ZeroPoints != nil {
			zpRow = m.ZeroPoints[b*m.Cols : b*m.Cols+m.Cols]
		}
		dstRow := dst[r*m.Cols : r*m.Cols+m.Cols]
		for c := 0; c < m.Cols; c++ {
			code := m.rawCode(absRow, c)
			scale := scaleRow[c]
			switch m.Format {
			case Int8Sym:
				dstRow[c] = float32(int8(code)) * scale
			case Int8Asym:
				zp := int32(0)
				if zpRow != nil {
					zp = int32(zpRow[c])
				}
				dstRow[c] = float32(int32(code)-zp) * scale
			case Int4Sym:
				dstRow[c] = float32(int32(code)-8) * scale
			case Int4Asym:
				zp := int32(8)
				if zpRow != nil {
					zp = int32(zpRow[c])
				}
				dstRow[c] = float32(int32(code)-zp) * scale
			case FP4E2M1, NF4:
				dstRow[c] = lut[code] * scale
			case FP8E4M3, FP8E5M2:
				dstRow[c] = DequantizeMicroFloat(byte(code), m.Format) * scale
			}
		}
	}
	return nil
}

// DequantizeRowVec dequantizes a single row using the hwy dispatch path for
// the scale multiply, for use on the decode-time GEMV hot path (tensor
// package). It is functionally identical to one row of Dequantize;
// asymmetric formats are decoded by Dequantize itself, with their zero-points.
func (m *Matrix) DequantizeRowVec(absRow int, dst []float32) {
	if m.Format.IsAsymmetric() {
		_ = m.Dequantize(absRow, 1, dst)
		return
	}
	b := m.blockIndex(0, absRow)
	scaleRow := m.Scales[b*m.Cols : b*m.Cols+m.Cols]
	lanes := hwy.NumLanes[float32]()
	lut := lutFor(m.Format)

	buf := make([]float32, lanes)
	i := 0
	for ; i+lanes <= m.Cols; i += lanes {
		for j := 0; j < lanes; j++ {
			c := i + j
			code := m.rawCode(absRow, c)
			switch m.Format {
			case Int8Sym:
				buf[j] = float32(int8(code))
			case FP4E2M1, NF4:
				buf[j] = lut[code]
			case FP8E4M3, FP8E5M2:
				buf[j] = DequantizeMicroFloat(byte(code), m.Format)
			default:
				buf[j] = float32(int32(code) - 8)
			}
		}
		v := hwy.Load(buf)
		sv := hwy.Load(scaleRow[i:])
		hwy.Store(hwy.Mul(v, sv), dst[i:])
	}
	for ; i < m.Cols; i++ {
		code := m.rawCode(absRow, i)
		var raw float32
		switch m.Format {
		case Int8Sym:
			raw = float32(int8(code))
		case FP4E2M1, NF4:
			raw = lut[code]
		case FP8E4M3, FP8E5M2:
			raw = DequantizeMicroFloat(byte(code), m.Format)
		default:
			raw = float32(int32(code) - 8)
		}
		dst[i] = raw * scaleRow[i]
	}
}
