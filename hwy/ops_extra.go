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

import "math"

// NumLanes reports how many lanes v actually holds. Unlike the package-level
// MaxLanes[T](), this reflects the vector's own length, which matters for a
// tail vector produced by Load from a short slice.
func (v Vec[T]) NumLanes() int { return len(v.data) }

// LoadSlice loads a vector from a slice. It is spelled differently from Load
// at call sites that treat the source purely as a stream to be consumed
// lanes-at-a-time (see hwy/contrib/nn/softmax_base.go); behavior is identical.
func LoadSlice[T Lanes](src []T) Vec[T] { return Load(src) }

// StoreSlice writes a vector to a slice. See LoadSlice.
func StoreSlice[T Lanes](v Vec[T], dst []T) { Store(v, dst) }

// Const broadcasts a float64 literal into every lane of T. Values are always
// written as float64 at the call site to avoid precision loss when T is
// float64; narrowing to float32 happens here.
func Const[T Floats](value float64) Vec[T] {
	return Set(T(value))
}

// Clamp restricts every lane of v to [lo, hi].
func Clamp[T Lanes](v, lo, hi Vec[T]) Vec[T] {
	return Min(Max(v, lo), hi)
}

// Round rounds every lane to the nearest integer, ties away from zero.
func Round[T Floats](v Vec[T]) Vec[T] {
	result := make([]T, len(v.data))
	for i := range v.data {
		result[i] = T(math.Round(float64(v.data[i])))
	}
	return Vec[T]{data: result}
}

// MulAdd is FMA under the name used by the attention and vecdot kernels.
func MulAdd[T Floats](a, b, c Vec[T]) Vec[T] {
	return FMA(a, b, c)
}

// InterleaveLower interleaves the lower half of a and b: result lanes are
// a[0], b[0], a[1], b[1], ... truncated to the vector width.
func InterleaveLower[T Lanes](a, b Vec[T]) Vec[T] {
	n := len(a.data)
	if len(b.data) < n {
		n = len(b.data)
	}
	half := n / 2
	result := make([]T, n)
	for i := 0; i < half; i++ {
		result[2*i] = a.data[i]
		result[2*i+1] = b.data[i]
	}
	return Vec[T]{data: result}
}

// InterleaveUpper interleaves the upper half of a and b: result lanes are
// a[n/2], b[n/2], a[n/2+1], b[n/2+1], ... See InterleaveLower.
func InterleaveUpper[T Lanes](a, b Vec[T]) Vec[T] {
	n := len(a.data)
	if len(b.data) < n {
		n = len(b.data)
	}
	half := n / 2
	result := make([]T, n)
	for i := 0; i < n-half; i++ {
		result[2*i] = a.data[half+i]
		result[2*i+1] = b.data[half+i]
	}
	return Vec[T]{data: result}
}
