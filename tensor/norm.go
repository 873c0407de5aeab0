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

import "github.com/wutthichai46/neural-speed/hwy"

// LayerNorm normalizes each row of x (shape [rows, cols]) to zero mean, unit
// variance, then applies the affine gain/bias (spec.md §4.1 elementwise op
// list: "layernorm (with optional RMS-norm variant that omits the mean)").
func LayerNorm(x []float32, rows, cols int, gain, bias []float32, eps float32) {
	for r := 0; r < rows; r++ {
		row := x[r*cols : (r+1)*cols]

		var mean float32
		for _, v := range row {
			mean += v
		}
		mean /= float32(cols)

		var variance float32
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
		variance /= float32(cols)

		invStd := hwy.Sqrt(hwy.Set(1.0 / (variance + eps)))
		inv := hwy.ReduceSum(invStd) / float32(hwy.NumLanes[float32]())
		for i, v := range row {
			row[i] = (v-mean)*inv*gain[i] + bias[i]
		}
	}
}

// RMSNorm normalizes each row by its root-mean-square (no mean subtraction)
// then applies the gain, the normalization LLaMA-style architectures use.
func RMSNorm(x []float32, rows, cols int, gain []float32, eps float32) {
	for r := 0; r < rows; r++ {
		row := x[r*cols : (r+1)*cols]

		var sumSq float32
		for _, v := range row {
			sumSq += v * v
		}
		meanSq := sumSq/float32(cols) + eps
		inv := float32(1.0) / sqrtf32(meanSq)

		for i, v := range row {
			row[i] = v * inv * gain[i]
		}
	}
}

func sqrtf32(v float32) float32 {
	r := hwy.Sqrt(hwy.Set(v))
	return hwy.ReduceSum(r) / float32(hwy.NumLanes[float32]())
}
