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

// Package quant implements block-quantized weight matrices: packing,
// unpacking, and dequantization for the engine's six weight formats, plus
// the quantize-tool surface that produces them from a dense float32 source.
//
// A quantized matrix of shape [R, C] is never densified as a whole; callers
// dequantize one k-block tile at a time into a caller-supplied destination,
// mirroring the dequantize-to-tile-and-multiply pattern the tensor package
// uses for GEMM (generalized away from GGUF's fixed Q4_0/Q8_0/IQ4_NL
// formats — see DESIGN.md's grounding note on the teacher's dequantizers).
package quant

import "github.com/wutthichai46/neural-speed/nserrors"

// Format identifies a weight storage scheme.
type Format int

const (
	Int8Sym Format = iota
	Int8Asym
	Int4Sym
	Int4Asym
	FP4E2M1
	NF4
	FP8E4M3
	FP8E5M2
)

func (f Format) String() string {
	switch f {
	case Int8Sym:
		return "int8_sym"
	case Int8Asym:
		return "int8_asym"
	case Int4Sym:
		return "int4_sym"
	case Int4Asym:
		return "int4_asym"
	case FP4E2M1:
		return "fp4_e2m1"
	case NF4:
		return "nf4"
	case FP8E4M3:
		return "fp8_e4m3"
	case FP8E5M2:
		return "fp8_e5m2"
	default:
		return "unknown"
	}
}

// BitsPerElement reports the packed width of one code in this format.
func (f Format) BitsPerElement() int {
	switch f {
	case Int4Sym, Int4Asym, FP4E2M1, NF4:
		return 4
	default:
		return 8
	}
}

// IsAsymmetric reports whether this format carries a per-block zero-point.
// Only the integer formats may be asymmetric (spec.md §6: "asym valid only
// for integer weights").
func (f Format) IsAsymmetric() bool {
	return f == Int8Asym || f == Int4Asym
}

// IsFourBit reports whether two codes of this format pack into one byte.
func (f Format) IsFourBit() bool {
	return f.BitsPerElement() == 4
}

// ParseFormat maps the quantize-tool's weight_dtype strings (spec.md §6) to
// a Format, pairing with an algo string for the integer formats.
func ParseFormat(weightDtype, algo string) (Format, error) {
	switch weightDtype {
	case "int8":
		if algo == "asym" {
			return Int8Asym, nil
		}
		return Int8Sym, nil
	case "int4":
		if algo == "asym" {
			return Int4Asym, nil
		}
		return Int4Sym, nil
	case "fp4_e2m1":
		if algo == "asym" {
			return 0, nserrors.New(nserrors.InvalidConfiguration, "quant.ParseFormat", nil)
		}
		return FP4E2M1, nil
	case "nf4":
		if algo == "asym" {
			return 0, nserrors.New(nserrors.InvalidConfiguration, "quant.ParseFormat", nil)
		}
		return NF4, nil
	case "fp8_e4m3":
		if algo == "asym" {
			return 0, nserrors.New(nserrors.InvalidConfiguration, "quant.ParseFormat", nil)
		}
		return FP8E4M3, nil
	case "fp8_e5m2":
		if algo == "asym" {
			return 0, nserrors.New(nserrors.InvalidConfiguration, "quant.ParseFormat", nil)
		}
		return FP8E5M2, nil
	default:
		return 0, nserrors.New(nserrors.InvalidConfiguration, "quant.ParseFormat", nil)
	}
}
