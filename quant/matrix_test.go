package quant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sinMatrix(rows, cols int) []float32 {
	out := make([]float32, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = float32(math.Sin(float64(i*j) / 128))
		}
	}
	return out
}

func TestQuantizeDequantizeInt4SymTolerance(t *testing.T) {
	const n = 128
	src := sinMatrix(n, n)
	m, err := QuantizeDense(src, n, n, Int4Sym, 32)
	require.NoError(t, err)

	dst := make([]float32, n*n)
	require.NoError(t, m.Dequantize(0, n, dst))

	var maxAbs, maxErr float32
	for i, v := range src {
		if a := absf32(v); a > maxAbs {
			maxAbs = a
		}
		if e := absf32(v - dst[i]); e > maxErr {
			maxErr = e
		}
	}
	assert.LessOrEqual(t, float64(maxErr), float64(maxAbs)/7)
}

func TestInt8SymRoundTripExactOnGrid(t *testing.T) {
	// Construct values that already lie exactly on a scale=0.1 grid, with
	// the block's max-magnitude code (127) present so QuantizeDense
	// recovers the same scale and therefore the same codes exactly
	// (spec.md invariant 3: quantize(dequantize(W)) == W on the grid).
	const rows, cols = 4, 4
	const scale = float32(0.1)
	// Every column's 4-row block contains both +127 and -127 so each
	// column's recovered scale is exactly 0.1, keeping every code on grid.
	extra := []int8{32, -64, 50, -10}
	src := make([]float32, rows*cols)
	for c := 0; c < cols; c++ {
		src[0*cols+c] = float32(int8(127)) * scale
		src[1*cols+c] = float32(int8(-127)) * scale
		src[2*cols+c] = float32(extra[c]) * scale
		src[3*cols+c] = float32(-extra[c]) * scale
	}

	m, err := QuantizeDense(src, rows, cols, Int8Sym, rows)
	require.NoError(t, err)

	dst := make([]float32, rows*cols)
	require.NoError(t, m.Dequantize(0, rows, dst))

	m2, err := QuantizeDense(dst, rows, cols, Int8Sym, rows)
	require.NoError(t, err)
	assert.Equal(t, m.Codes, m2.Codes)
}

func TestPackRowSharesScaleSlot(t *testing.T) {
	m := &Matrix{Rows: 8, Cols: 2, Format: Int8Sym, K: 2, PackRow: 2}
	assert.Equal(t, 2, m.NumBlocks()) // 8 rows / (2*2) = 2 blocks
	assert.Equal(t, 0, m.blockIndex(0, 0))
	assert.Equal(t, 0, m.blockIndex(0, 3))
	assert.Equal(t, 1, m.blockIndex(0, 4))
	assert.Equal(t, 1, m.blockIndex(0, 7))
}

func TestDequantizeKOffset(t *testing.T) {
	const rows, cols = 16, 4
	src := sinMatrix(rows, cols)
	m, err := QuantizeDense(src, rows, cols, Int8Sym, 4)
	require.NoError(t, err)

	full := make([]float32, rows*cols)
	require.NoError(t, m.Dequantize(0, rows, full))

	tail := make([]float32, (rows-8)*cols)
	require.NoError(t, m.Dequantize(8, rows-8, tail))
	assert.Equal(t, full[8*cols:], tail)
}

func TestNF4LUTRoundTripMatchesLUT(t *testing.T) {
	for i, v := range nf4LUT {
		got := nearestLUTIndex(nf4LUT, v)
		assert.Equal(t, uint8(i), got)
	}
}

func TestFP8E4M3RoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, 2, 6, 0.015625}
	for _, v := range values {
		b := QuantizeMicroFloat(v, FP8E4M3)
		got := DequantizeMicroFloat(b, FP8E4M3)
		assert.InDelta(t, float64(v), float64(got), 0.25, "value=%v", v)
	}
}

func TestNibblesGetSet(t *testing.T) {
	n := Nibbles(make([]byte, NibbleBytes(6)))
	for i := 0; i < 6; i++ {
		n.Set(i, 6, uint8(i+1))
	}
	for i := 0; i < 6; i++ {
		assert.Equal(t, uint8(i+1), n.Get(i, 6))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("int4", "asym")
	require.NoError(t, err)
	assert.Equal(t, Int4Asym, f)

	_, err = ParseFormat("nf4", "asym")
	assert.Error(t, err)
}

func TestValidateTripleRejectsUnlisted(t *testing.T) {
	assert.NoError(t, ValidateTriple("int8", "float32", "float32"))
	assert.Error(t, ValidateTriple("int8", "float64", "float32"))
}
