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

package hwy

import "os"

// DispatchLevel is one entry in the engine's total tier order:
//
//	NoSIMD < AVX2 < AVX512F < AVX512VNNI < AMXInt8 < AMXBF16
//
// Every call site selects the best registered implementation <= the
// process's detected level. VNNI/AMX are detected and reported for
// diagnostics but this pure-Go engine executes them through the AVX512F
// numeric path (see DESIGN.md: no native Go AMX/VNNI codegen).
type DispatchLevel int

const (
	DispatchNoSIMD DispatchLevel = iota
	DispatchAVX2
	DispatchAVX512
	DispatchAVX512VNNI
	DispatchAMXInt8
	DispatchAMXBF16
)

// DispatchScalar is an alias kept for symmetry with the teacher's naming;
// new code should prefer DispatchNoSIMD.
const DispatchScalar = DispatchNoSIMD

// DispatchSSE2 is folded into DispatchNoSIMD: this engine's spec does not
// define an SSE2 tier, so any CPU below AVX2 runs the scalar reference path.
const DispatchSSE2 = DispatchNoSIMD

func (l DispatchLevel) String() string {
	switch l {
	case DispatchNoSIMD:
		return "nosimd"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512f"
	case DispatchAVX512VNNI:
		return "avx512-vnni"
	case DispatchAMXInt8:
		return "amx-int8"
	case DispatchAMXBF16:
		return "amx-bf16"
	default:
		return "unknown"
	}
}

var (
	currentLevel DispatchLevel
	currentWidth int
	currentName  string
)

// CurrentLevel returns the dispatch tier selected at process start.
func CurrentLevel() DispatchLevel { return currentLevel }

// CurrentWidth returns the SIMD register width in bytes for the current tier.
func CurrentWidth() int { return currentWidth }

// CurrentName returns a short human-readable name for the current tier.
func CurrentName() string { return currentName }

// NoSimdEnv reports whether HWY_NO_SIMD is set, forcing the scalar reference
// path regardless of detected CPU features. Tests use this to cross-check
// tiers against the reference implementation.
func NoSimdEnv() bool {
	v := os.Getenv("HWY_NO_SIMD")
	return v != "" && v != "0"
}

// MaxLanes returns the number of lanes of type T that fit in the current
// tier's register width.
func MaxLanes[T Lanes]() int {
	var zero T
	size := sizeOfLane(zero)
	if currentWidth <= 0 || size <= 0 {
		return 1
	}
	n := currentWidth / size
	if n < 1 {
		n = 1
	}
	return n
}

// NumLanes is an alias for MaxLanes kept for call-site compatibility with
// the teacher's gguf/quantize packages, which spell it NumLanes.
func NumLanes[T Lanes]() int { return MaxLanes[T]() }

func sizeOfLane[T Lanes](v T) int {
	switch any(v).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int64, uint64, float64:
		return 8
	default:
		return 4
	}
}
