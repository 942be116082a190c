package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, Percentile(sorted, 0))
	assert.Equal(t, 2.0, Percentile(sorted, 0.25))
	assert.Equal(t, 3.0, Percentile(sorted, 0.5))
	assert.InDelta(t, 4.6, Percentile(sorted, 0.9), 1e-12)
	assert.Equal(t, 5.0, Percentile(sorted, 1))

	assert.InDelta(t, 2.5, Percentile([]float64{1, 2, 3, 4}, 0.5), 1e-12)
	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.9))
	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

func TestDescriptiveHelpers(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, Mean(xs))
	assert.Equal(t, 4.5, Median(xs))
	assert.InDelta(t, 2.138, StdDev(xs), 1e-3)
	assert.Equal(t, 40.0, Sum(xs))

	assert.Equal(t, 0.0, StdDev([]float64{3}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestTwoSidedScore(t *testing.T) {
	assert.Equal(t, 0.0, TwoSidedScore(0))
	assert.InDelta(t, 0.9973, TwoSidedScore(3), 1e-4)
	assert.InDelta(t, 0.9973, TwoSidedScore(-3), 1e-4)
	assert.InDelta(t, 0.9545, TwoSidedScore(2), 1e-4)
}

func TestAutocorrelationDetectsPeriod(t *testing.T) {
	xs := make([]float64, 56)
	for i := range xs {
		xs[i] = math.Sin(2 * math.Pi * float64(i) / 7)
	}
	assert.Greater(t, Autocorrelation(xs, 7), 0.8)
	assert.Less(t, Autocorrelation(xs, 3), 0.0)
	assert.Equal(t, 0.0, Autocorrelation([]float64{1, 1, 1, 1}, 1))
	assert.Equal(t, 0.0, Autocorrelation(xs, 100))
}

func TestNearZeroAndClamp(t *testing.T) {
	assert.True(t, NearZero(0, 100))
	assert.True(t, NearZero(1e-12, 0))
	assert.False(t, NearZero(0.5, 100))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 1))
	assert.Equal(t, 1.0, Clamp(1.2, 0, 1))
	assert.Equal(t, 1.24, Round(1.2449, 2))
}
