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

package math

import (
	stdmath "math"

	"github.com/wutthichai46/neural-speed/hwy"
)

// BaseExpVec computes e^x lane-wise. Scalar reference: target-specific
// specializations (polynomial/range-reduction tricks, see logexp_variants_avx2.go)
// replace this per-lane stdlib call under hwygen, but none are wired into this
// build (see DESIGN.md).
func BaseExpVec[T hwy.Floats](v hwy.Vec[T]) hwy.Vec[T] {
	return mapLanes(v, stdmath.Exp)
}

// BaseLogVec computes ln(x) lane-wise.
func BaseLogVec[T hwy.Floats](v hwy.Vec[T]) hwy.Vec[T] {
	return mapLanes(v, stdmath.Log)
}

// BaseSigmoidVec computes 1/(1+e^-x) lane-wise.
func BaseSigmoidVec[T hwy.Floats](v hwy.Vec[T]) hwy.Vec[T] {
	return mapLanes(v, func(x float64) float64 { return 1.0 / (1.0 + stdmath.Exp(-x)) })
}

// BaseTanhVec computes tanh(x) lane-wise.
func BaseTanhVec[T hwy.Floats](v hwy.Vec[T]) hwy.Vec[T] {
	return mapLanes(v, stdmath.Tanh)
}

// BaseErfVec computes the Gauss error function lane-wise. Used by the exact
// (non-tanh-approximation) GELU activation.
func BaseErfVec[T hwy.Floats](v hwy.Vec[T]) hwy.Vec[T] {
	return mapLanes(v, stdmath.Erf)
}

// BaseSinVec computes sin(x) lane-wise. Needed by rotary position embeddings.
func BaseSinVec[T hwy.Floats](v hwy.Vec[T]) hwy.Vec[T] {
	return mapLanes(v, stdmath.Sin)
}

// BaseCosVec computes cos(x) lane-wise. Needed by rotary position embeddings.
func BaseCosVec[T hwy.Floats](v hwy.Vec[T]) hwy.Vec[T] {
	return mapLanes(v, stdmath.Cos)
}

// mapLanes applies f to every lane of v through float64, narrowing back to T.
func mapLanes[T hwy.Floats](v hwy.Vec[T], f func(float64) float64) hwy.Vec[T] {
	n := v.NumLanes()
	out := make([]T, n)
	src := make([]T, n)
	hwy.Store(v, src)
	for i := 0; i < n; i++ {
		out[i] = T(f(float64(src[i])))
	}
	return hwy.Load(out)
}
