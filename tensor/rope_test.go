package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoPEPreservesPerHeadNorm(t *testing.T) {
	const headDim, numHeads = 8, 2
	act := make([]float32, numHeads*headDim)
	for i := range act {
		act[i] = float32(i%5) - 2
	}
	before := make([]float32, len(act))
	copy(before, act)

	RoPE(act, []int{3}, numHeads, headDim, 10000)

	for h := 0; h < numHeads; h++ {
		var normBefore, normAfter float64
		for i := 0; i < headDim; i++ {
			normBefore += float64(before[h*headDim+i]) * float64(before[h*headDim+i])
			normAfter += float64(act[h*headDim+i]) * float64(act[h*headDim+i])
		}
		assert.InDelta(t, math.Sqrt(normBefore), math.Sqrt(normAfter), 1e-3)
	}
}

func TestRoPEAtPositionZeroIsIdentity(t *testing.T) {
	const headDim, numHeads = 4, 1
	act := []float32{1, 2, 3, 4}
	before := append([]float32{}, act...)

	RoPE(act, []int{0}, numHeads, headDim, 10000)

	for i := range act {
		assert.InDelta(t, before[i], act[i], 1e-5)
	}
}
