package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiLUAtZeroIsZero(t *testing.T) {
	x := []float32{0, 1, -1, 2}
	SiLU(x)
	assert.InDelta(t, 0, x[0], 1e-6)
	assert.InDelta(t, 0.7310585, x[1], 1e-3)
	assert.InDelta(t, -0.2689414, x[2], 1e-3)
}

func TestGELUAtZeroIsZero(t *testing.T) {
	x := []float32{0, 1, -1}
	GELU(x)
	assert.InDelta(t, 0, x[0], 1e-6)
	assert.InDelta(t, 0.8413447, x[1], 1e-2)
	assert.InDelta(t, -0.1586553, x[2], 1e-2)
}

func TestGELUApproxMatchesExactWithinTolerance(t *testing.T) {
	exact := []float32{-2, -1, -0.5, 0, 0.5, 1, 2}
	approx := append([]float32{}, exact...)
	GELU(exact)
	GELUApprox(approx)
	for i := range exact {
		assert.InDelta(t, exact[i], approx[i], 0.02)
	}
}
