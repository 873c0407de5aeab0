package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelForCoversEveryIndexExactlyOnce(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 97
	var hits [n]int32
	p.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})
	for i, h := range hits {
		require.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestParallelForAtomicCoversEveryIndexExactlyOnce(t *testing.T) {
	p := New(3)
	defer p.Close()

	const n = 50
	var hits [n]int32
	p.ParallelForAtomic(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	for i, h := range hits {
		require.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestNewZeroDefaultsToGOMAXPROCS(t *testing.T) {
	p := New(0)
	defer p.Close()
	assert.Greater(t, p.NumWorkers(), 0)
}

func TestParallelForEmptyRangeNoop(t *testing.T) {
	p := New(2)
	defer p.Close()
	called := false
	p.ParallelFor(0, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestReusedAcrossMultipleCalls(t *testing.T) {
	p := New(2)
	defer p.Close()
	sum := int64(0)
	for round := 0; round < 5; round++ {
		p.ParallelForAtomic(10, func(i int) {
			atomic.AddInt64(&sum, int64(i))
		})
	}
	assert.Equal(t, int64(5*45), sum)
}
