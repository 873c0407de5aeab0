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

package tensor

import (
	"github.com/wutthichai46/neural-speed/hwy"
	hwymath "github.com/wutthichai46/neural-speed/hwy/contrib/math"
)

// geluApproxCoeff is the 1.702 slope in GELUApprox's x*sigmoid(1.702*x).
const geluApproxCoeff = 1.702

// SiLU computes x * sigmoid(x) in place, the gate activation SwiGLU FFNs use
// (spec.md §4.1 elementwise op list).
func SiLU(x []float32) {
	lanes := hwy.NumLanes[float32]()
	i := 0
	for ; i+lanes <= len(x); i += lanes {
		v := hwy.Load(x[i:])
		s := hwymath.BaseSigmoidVec(v)
		hwy.Store(hwy.Mul(v, s), x[i:])
	}
	for ; i < len(x); i++ {
		x[i] = x[i] * hwymath.Sigmoid32Scalar(x[i])
	}
}

// GELU computes the exact (erf-based) Gaussian Error Linear Unit in place:
// 0.5*x*(1+erf(x/sqrt2)).
func GELU(x []float32) {
	lanes := hwy.NumLanes[float32]()
	half := hwy.Const[float32](0.5)
	one := hwy.Const[float32](1.0)
	invSqrt2 := hwy.Const[float32](0.7071067811865476)

	i := 0
	for ; i+lanes <= len(x); i += lanes {
		v := hwy.Load(x[i:])
		erf := hwymath.BaseErfVec(hwy.Mul(v, invSqrt2))
		result := hwy.Mul(hwy.Mul(half, v), hwy.Add(one, erf))
		hwy.Store(result, x[i:])
	}
	for ; i < len(x); i++ {
		xi := x[i]
		x[i] = 0.5 * xi * (1 + hwymath.Erf32Scalar(xi*0.7071067811865476))
	}
}

// GELUApprox computes the tanh-free sigmoid approximation
// x*sigmoid(1.702*x), cheaper than the exact erf form.
func GELUApprox(x []float32) {
	for i, v := range x {
		x[i] = v * hwymath.Sigmoid32Scalar(geluApproxCoeff*v)
	}
}
