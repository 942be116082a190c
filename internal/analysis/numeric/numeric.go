// Package numeric holds the small statistical primitives shared by the
// analysis modules.
package numeric

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sorted returns an ascending copy of xs.
func Sorted(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	return out
}

// Percentile interpolates linearly between order statistics at
// h = (n-1)p. sorted must be ascending; p is in [0,1].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// Median returns the median, 0 for an empty slice.
func Median(xs []float64) float64 {
	m, err := stats.Median(xs)
	if err != nil {
		return 0
	}
	return m
}

// StdDev returns the sample standard deviation, 0 below two observations.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return 0
	}
	return sd
}

// Sum returns the total, 0 for an empty slice.
func Sum(xs []float64) float64 {
	s, err := stats.Sum(xs)
	if err != nil {
		return 0
	}
	return s
}

// NearZero reports whether a spread is negligible relative to the
// magnitude of the data it describes.
func NearZero(spread, center float64) bool {
	return spread <= 1e-9*math.Max(1, math.Abs(center))
}

// Clamp bounds x to [lo, hi]; NaN maps to lo.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// TwoSidedScore maps a standardized deviation to 2Φ(|z|)-1, the probability
// mass closer to the center than z. It is 0 at the center and approaches 1.
func TwoSidedScore(z float64) float64 {
	return Clamp(2*distuv.UnitNormal.CDF(math.Abs(z))-1, 0, 1)
}

// Autocorrelation of xs at lag, using the full-series variance as the
// denominator. Returns 0 when the lag is out of range or the series is flat.
func Autocorrelation(xs []float64, lag int) float64 {
	n := len(xs)
	if lag <= 0 || lag >= n {
		return 0
	}
	mean := Mean(xs)
	var denom float64
	for _, x := range xs {
		d := x - mean
		denom += d * d
	}
	if NearZero(denom, mean*mean*float64(n)) {
		return 0
	}
	var num float64
	for i := lag; i < n; i++ {
		num += (xs[i] - mean) * (xs[i-lag] - mean)
	}
	return num / denom
}

// Round rounds to the given number of decimals. Insight text uses it so
// that float noise never changes rendered output.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
