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
	"math"

	"github.com/wutthichai46/neural-speed/nserrors"
)

// QuantizeDense builds a Matrix of the given format from a dense, row-major
// float32 source. groupSize is the k-block height K; passing -1 selects
// per-column (K = rows, one block covering the whole matrix).
//
// Quantize rounds to nearest, ties away from zero, and clamps before packing
// (spec.md §4.1 edge case). Symmetric formats compute scale from the block's
// max absolute value; asymmetric integer formats compute scale and
// zero-point from the block's [min,max] range.
func QuantizeDense(src []float32, rows, cols int, format Format, groupSize int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 || len(src) < rows*cols {
		return nil, nserrors.New(nserrors.InvalidConfiguration, "quant.QuantizeDense", nil)
	}
	k := groupSize
	if k <= 0 {
		k = rows
	}

	m := &Matrix{Rows: rows, Cols: cols, Format: format, K: k, PackRow: 1}
	nb := m.NumBlocks()
	m.Scales = make([]float32, nb*cols)
	if format.IsAsymmetric() {
		m.ZeroPoints = make([]int8, nb*cols)
	}
	if format.IsFourBit() {
		m.Codes = make([]byte, rows*NibbleBytes(cols))
	} else {
		m.Codes = make([]byte, rows*cols)
	}

	lut := lutFor(format)

	for b := 0; b < nb; b++ {
		rowStart := b * k
		rowEnd := rowStart + k
		if rowEnd > rows {
			rowEnd = rows
		}
		for c := 0; c < cols; c++ {
			switch {
			case format.IsAsymmetric():
				minV, maxV := blockMinMax(src, rowStart, rowEnd, cols, c)
				maxCode := float32(15)
				if format == Int8Asym {
					maxCode = 255
				}
				scale := (maxV - minV) / maxCode
				if scale == 0 {
					scale = 1
				}
				zp := int8(math.Round(float64(-minV / scale)))
				m.Scales[b*cols+c] = scale
				m.ZeroPoints[b*cols+c] = zp
				for r := rowStart; r < rowEnd; r++ {
					v := src[r*cols+c]
					coded := roundTiesAway(v/scale) + float32(zp)
					coded = clampf(coded, 0, maxCode)
					m.setRawCode(r, c, uint8(coded))
				}
			case format == FP4E2M1 || format == NF4:
				maxAbs := blockMaxAbs(src, rowStart, rowEnd, cols, c)
				scale := maxAbs
				if scale == 0 {
					scale = 1
				}
				m.Scales[b*cols+c] = scale
				for r := rowStart; r < rowEnd; r++ {
					v := src[r*cols+c] / scale
					m.setRawCode(r, c, nearestLUTIndex(lut, v))
				}
			case format == FP8E4M3 || format == FP8E5M2:
				maxAbs := blockMaxAbs(src, rowStart, rowEnd, cols, c)
				scale := maxAbs
				if scale == 0 {
					scale = 1
				}
				m.Scales[b*cols+c] = scale
				for r := rowStart; r < rowEnd; r++ {
					v := src[r*cols+c] / scale
					m.setRawCode(r, c, QuantizeMicroFloat(v, format))
				}
			default: // Int8Sym, Int4Sym
				maxAbs := blockMaxAbs(src, rowStart, rowEnd, cols, c)
				maxCode := float32(7)
				if format == Int8Sym {
					maxCode = 127
				}
				scale := maxAbs / maxCode
				if scale == 0 {
					scale = 1
				}
				m.Scales[b*cols+c] = scale
				for r := rowStart; r < rowEnd; r++ {
					v := src[r*cols+c] / scale
					coded := clampf(roundTiesAway(v), -maxCode-1, maxCode)
					if format == Int8Sym {
						m.setRawCode(r, c, uint8(int8(coded)))
					} else {
						m.setRawCode(r, c, uint8(int32(coded)+8))
					}
				}
			}
		}
	}
	return m, nil
}

func blockMinMax(src []float32, rowStart, rowEnd, cols, c int) (float32, float32) {
	minV := src[rowStart*cols+c]
	maxV := minV
	for r := rowStart + 1; r < rowEnd; r++ {
		v := src[r*cols+c]
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}

func blockMaxAbs(src []float32, rowStart, rowEnd, cols, c int) float32 {
	var maxAbs float32
	for r := rowStart; r < rowEnd; r++ {
		v := absf32(src[r*cols+c])
		if v > maxAbs {
			maxAbs = v
		}
	}
	return maxAbs
}

func roundTiesAway(v float32) float32 {
	return float32(math.Round(float64(v)))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// QuantizationTriple is a (weight, compute, scale) dtype combination. Only
// triples in AllowedTriples may be requested through the Quantize tool
// surface (spec.md §6).
type QuantizationTriple struct {
	WeightDtype string
	ComputeDtype string
	ScaleDtype   string
}

// AllowedTriples enumerates the (weight, compute, scale) combinations this
// engine supports, grounded on the teacher's float32/bfloat16 activation
// path plus the micro-float formats added for this engine.
var AllowedTriples = []QuantizationTriple{
	{"int4", "float32", "float32"},
	{"int4", "bfloat16", "float32"},
	{"int8", "float32", "float32"},
	{"int8", "bfloat16", "float32"},
	{"fp4_e2m1", "float32", "float32"},
	{"nf4", "float32", "float32"},
	{"fp8_e4m3", "float32", "float32"},
	{"fp8_e4m3", "float32", "fp8_e4m3"},
	{"fp8_e5m2", "float32", "float32"},
}

// ValidateTriple returns InvalidConfiguration when (weightDtype, computeDtype,
// scaleDtype) is not in AllowedTriples.
func ValidateTriple(weightDtype, computeDtype, scaleDtype string) error {
	for _, t := range AllowedTriples {
		if t.WeightDtype == weightDtype && t.ComputeDtype == computeDtype && t.ScaleDtype == scaleDtype {
			return nil
		}
	}
	return nserrors.New(nserrors.InvalidConfiguration, "quant.ValidateTriple", nil)
}

// ValidateGroupSize checks group_size ∈ {32, 128, −1} (spec.md §6).
func ValidateGroupSize(groupSize int) error {
	switch groupSize {
	case 32, 128, -1:
		return nil
	default:
		return nserrors.New(nserrors.InvalidConfiguration, "quant.ValidateGroupSize", nil)
	}
}
