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

// Package tensor implements the numeric primitives a decode step chains
// together: quantized linear layers (prefill GEMM and decode-time GEMV),
// attention, rotary embeddings and the activation functions used by MLP
// blocks. It operates directly on quant.Matrix, never materializing a
// dequantized copy of a whole weight matrix (spec.md §4.1: "dequantize on
// demand, tile by tile").
package tensor

import (
	"github.com/wutthichai46/neural-speed/hwy/contrib/dot"
	"github.com/wutthichai46/neural-speed/hwy/contrib/workerpool"
	"github.com/wutthichai46/neural-speed/nserrors"
	"github.com/wutthichai46/neural-speed/quant"
)

// Linear computes out = x @ W^T where W is a quant.Matrix of shape
// [outFeatures, inFeatures] and x is [rows, inFeatures]. W is dequantized
// one weight row at a time (quant.Matrix.DequantizeRowVec) rather than
// materializing the whole matrix, following the teacher's GGUF matmul's
// "quantize/dequantize on the fly, never whole-matrix" structure (see
// DESIGN.md's grounding note on the teacher's GGUF dequantizers). Prefill
// chunks with rows > 1 are the only caller that exercises the ParallelFor
// path; decode's single-token step uses LinearDecode instead.
func Linear(pool workerpool.Executor, x []float32, w *quant.Matrix, out []float32, rows int) error {
	if w.Cols == 0 {
		return nserrors.New(nserrors.InvalidConfiguration, "tensor.Linear", nil)
	}
	inFeatures := w.Cols
	outFeatures := w.Rows
	if len(x) < rows*inFeatures || len(out) < rows*outFeatures {
		return nserrors.New(nserrors.Internal, "tensor.Linear", nil)
	}

	work := func(rStart, rEnd int) {
		rowBuf := make([]float32, inFeatures)
		for r := rStart; r < rEnd; r++ {
			xRow := x[r*inFeatures : (r+1)*inFeatures]
			oRow := out[r*outFeatures : (r+1)*outFeatures]
			for n := 0; n < outFeatures; n++ {
				w.DequantizeRowVec(n, rowBuf)
				oRow[n] = dot.Dot(xRow, rowBuf)
			}
		}
	}

	if pool == nil || rows == 1 {
		work(0, rows)
		return nil
	}
	pool.ParallelFor(rows, work)
	return nil
}

// LinearDecode is the M=1 fast path used at decode time: a single token's
// hidden state times the projection matrix, parallelized over output
// features rather than rows (spec.md §4.4: "decode issues exactly one GEMV
// per projection per token").
func LinearDecode(pool workerpool.Executor, x []float32, w *quant.Matrix, out []float32) error {
	if len(x) < w.Cols || len(out) < w.Rows {
		return nserrors.New(nserrors.Internal, "tensor.LinearDecode", nil)
	}
	inFeatures := w.Cols

	compute := func(start, end int) {
		rowBuf := make([]float32, inFeatures)
		for n := start; n < end; n++ {
			w.DequantizeRowVec(n, rowBuf)
			out[n] = dot.Dot(x, rowBuf)
		}
	}

	if pool == nil {
		compute(0, w.Rows)
		return nil
	}
	pool.ParallelFor(w.Rows, compute)
	return nil
}
