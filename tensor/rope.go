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

import "math"

// RoPE applies rotary position embedding in place to act, shaped
// [numTokens, numHeads, headDim], rotating lane i of each head together with
// lane i+headDim/2 (half-split pairing), using theta as the base frequency
// (spec.md §3: "rope_theta"). positions gives the logical position of each
// token row; the decode session passes each token's absolute position.
func RoPE(act []float32, positions []int, numHeads, headDim int, theta float64) {
	half := headDim / 2
	invFreq := make([]float64, half)
	for i := 0; i < half; i++ {
		invFreq[i] = 1.0 / math.Pow(theta, float64(2*i)/float64(headDim))
	}

	for t, pos := range positions {
		base := t * numHeads * headDim
		for h := 0; h < numHeads; h++ {
			off := base + h*headDim
			for i := 0; i < half; i++ {
				angle := float64(pos) * invFreq[i]
				sinA, cosA := math.Sincos(angle)
				x0 := act[off+i]
				x1 := act[off+half+i]
				act[off+i] = x0*float32(cosA) - x1*float32(sinA)
				act[off+half+i] = x0*float32(sinA) + x1*float32(cosA)
			}
		}
	}
}
