package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerNormZeroMeanUnitVarianceBeforeAffine(t *testing.T) {
	x := []float32{1, 2, 3, 4}
	gain := []float32{1, 1, 1, 1}
	bias := []float32{0, 0, 0, 0}
	LayerNorm(x, 1, 4, gain, bias, 1e-5)

	var mean float32
	for _, v := range x {
		mean += v
	}
	mean /= 4
	assert.InDelta(t, 0, mean, 1e-3)
}

func TestRMSNormScalesByRootMeanSquare(t *testing.T) {
	x := []float32{3, 4}
	gain := []float32{1, 1}
	RMSNorm(x, 1, 2, gain, 0)
	// rms = sqrt((9+16)/2) = sqrt(12.5) ~= 3.5355
	assert.InDelta(t, 3/3.5355, x[0], 1e-2)
	assert.InDelta(t, 4/3.5355, x[1], 1e-2)
}
