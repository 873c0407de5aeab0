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
	"math"

	"github.com/wutthichai46/neural-speed/hwy/contrib/nn"
	"github.com/wutthichai46/neural-speed/kvcache"
	"github.com/wutthichai46/neural-speed/nserrors"
)

// Attention computes causal multi-head scaled dot-product attention for a
// batch of queries against the layer's live KV cache contents
// (spec.md §4.2 `attention(q, k, v, mask) → act`, fed by
// kvcache.Layer.GatherAttentionInputs). GQA is supported: numHeads must be a
// multiple of view.NumKVHeads.
//
// queryPositions gives the logical position of each query row in q; an
// additive mask is built so query row i never attends to a cached key/value
// at a position greater than queryPositions[i] (spec.md §4.4: "masks out
// any key/value whose position exceeds the newest query position"). This
// holds for both decode's single new query and a batched prefill chunk
// where earlier rows of the same batch must not see later ones.
//
//   - q: [len(queryPositions), numHeads, headDim], row-major
//   - out: [len(queryPositions), numHeads, headDim], pre-allocated
func Attention(q []float32, queryPositions []int32, view *kvcache.AttentionView, out []float32, numHeads, headDim int, scale float32) error {
	numKVHeads := view.NumKVHeads
	if numKVHeads == 0 || numHeads%numKVHeads != 0 {
		return nserrors.New(nserrors.InvalidConfiguration, "tensor.Attention", nil)
	}
	headsPerKV := numHeads / numKVHeads
	numQueryTokens := len(queryPositions)
	kvLen := len(view.Positions)
	if kvLen == 0 || numQueryTokens == 0 {
		return nil
	}

	mask := make([]float32, numQueryTokens*kvLen)
	for i, qpos := range queryPositions {
		row := mask[i*kvLen : (i+1)*kvLen]
		for j, kpos := range view.Positions {
			if kpos > qpos {
				row[j] = float32(math.Inf(-1))
			}
		}
	}

	qHead := make([]float32, numQueryTokens*headDim)
	kHead := make([]float32, kvLen*headDim)
	vHead := make([]float32, kvLen*headDim)
	scores := make([]float32, numQueryTokens*kvLen)
	oHead := make([]float32, numQueryTokens*headDim)

	for h := 0; h < numHeads; h++ {
		kvHead := h / headsPerKV

		for t := 0; t < numQueryTokens; t++ {
			copy(qHead[t*headDim:(t+1)*headDim], q[(t*numHeads+h)*headDim:(t*numHeads+h+1)*headDim])
		}
		for i := 0; i < kvLen; i++ {
			srcOff := (i*numKVHeads + kvHead) * headDim
			copy(kHead[i*headDim:(i+1)*headDim], view.Keys[srcOff:srcOff+headDim])
			copy(vHead[i*headDim:(i+1)*headDim], view.Values[srcOff:srcOff+headDim])
		}

		nn.BaseSDPA(qHead, kHead, vHead, mask, scores, oHead, numQueryTokens, kvLen, headDim, scale)

		for t := 0; t < numQueryTokens; t++ {
			copy(out[(t*numHeads+h)*headDim:(t*numHeads+h+1)*headDim], oHead[t*headDim:(t+1)*headDim])
		}
	}
	return nil
}
