package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single observation uses divisor one", []float64{0.1}, 0},
		{"two observations", []float64{1, 3}, math.Sqrt2},
		{"constant", []float64{5, 5, 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleStdDev(tt.data)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestSimpleReturns(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		assert.Empty(t, SimpleReturns([]float64{100}))
	})

	t.Run("plain", func(t *testing.T) {
		got := SimpleReturns([]float64{100, 110, 99})
		require.Len(t, got, 2)
		assert.InDelta(t, 0.10, got[0], 1e-12)
		assert.InDelta(t, -0.10, got[1], 1e-12)
	})

	t.Run("invalid steps are skipped", func(t *testing.T) {
		got := SimpleReturns([]float64{0, 10, math.NaN(), 20, 22})
		// 0->10 skipped (prior not positive), 10->NaN skipped, NaN->20 skipped
		require.Len(t, got, 1)
		assert.InDelta(t, 0.10, got[0], 1e-12)
	})
}

func TestCumulativeReturn(t *testing.T) {
	assert.Equal(t, 0.0, CumulativeReturn(nil))
	assert.Equal(t, 0.0, CumulativeReturn([]float64{5}))
	assert.Equal(t, 0.0, CumulativeReturn([]float64{0, 5}))
	assert.InDelta(t, 0.10, CumulativeReturn([]float64{100, 50, 110}), 1e-12)
}

func TestCalculateMaxDrawdown(t *testing.T) {
	assert.Nil(t, CalculateMaxDrawdown([]float64{1}))

	got := CalculateMaxDrawdown([]float64{100, 120, 90, 130, 117})
	require.NotNil(t, got)
	assert.InDelta(t, 0.25, *got, 1e-12)
}

func TestCalculateRSI(t *testing.T) {
	assert.Nil(t, CalculateRSI([]float64{1, 2, 3}, DefaultRSILength))

	rising := make([]float64, 30)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	got := CalculateRSI(rising, DefaultRSILength)
	require.NotNil(t, got)
	assert.InDelta(t, 100.0, *got, 1e-9)
}
