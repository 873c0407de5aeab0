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

// Package workerpool provides the fixed-size thread pool every GEMM and
// elementwise primitive in this engine parallelizes across (spec.md §5:
// "internally parallelized across a fixed worker pool sized at
// construction, thread count = user parameter"). It is sized once and
// reused for the lifetime of a decode session.
package workerpool

import (
	"runtime"
	"sync"
)

// Executor runs data-parallel loops across a fixed set of workers. Workers
// within one call are data-parallel over disjoint output tiles — no
// cross-tile communication occurs inside a primitive (spec.md §5).
type Executor interface {
	// ParallelFor splits [0, n) into contiguous strips, one per worker, and
	// calls fn(start, end) for each strip. Used by row-strip GEMM kernels
	// (tensor.Linear/LinearDecode), a reusable pool instead of spinning up
	// goroutines per call.
	ParallelFor(n int, fn func(start, end int))
	// ParallelForAtomic calls fn(i) once for every i in [0, n), distributed
	// across workers with no fixed strip assignment — used where per-item
	// cost varies.
	ParallelForAtomic(n int, fn func(i int))
	// NumWorkers reports the pool's fixed worker count.
	NumWorkers() int
	// Close releases the pool's goroutines. The pool must not be used after
	// Close returns.
	Close()
}

type pool struct {
	n    int
	jobs chan func()
	wg   sync.WaitGroup
}

// New constructs an Executor with n workers. n <= 0 selects
// runtime.GOMAXPROCS(0), matching the teacher's workerpool.New(0) call sites
// in its parallel matmul benchmarks.
func New(n int) Executor {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &pool{n: n, jobs: make(chan func())}
	p.wg.Add(n)
	for range n {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

func (p *pool) NumWorkers() int { return p.n }

func (p *pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := p.n
	if workers > n {
		workers = n
	}
	strip := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * strip
		if start >= n {
			break
		}
		end := start + strip
		if end > n {
			end = n
		}
		wg.Add(1)
		p.jobs <- func() {
			defer wg.Done()
			fn(start, end)
		}
	}
	wg.Wait()
}

func (p *pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		p.jobs <- func() {
			defer wg.Done()
			fn(i)
		}
	}
	wg.Wait()
}

func (p *pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
