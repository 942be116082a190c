// Package correlation computes pairwise Pearson correlation between numeric
// columns and phrases each pair in business terms.
package correlation

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"olynk/domain/findings"
	"olynk/domain/profile"
	"olynk/internal/analysis/numeric"
	"olynk/internal/analysis/semantic"
)

// Config holds the sample-size requirements.
type Config struct {
	// MinSamples is the least number of pairwise-complete rows to score a pair.
	MinSamples int
	// RecommendedSamples marks smaller pairs as low confidence.
	RecommendedSamples int
}

// DefaultConfig returns the correlation defaults.
func DefaultConfig() Config {
	return Config{MinSamples: 3, RecommendedSamples: 10}
}

// Strength thresholds on |r|.
const (
	moderateAt = 0.3
	strongAt   = 0.7
)

// Analyze returns one finding per eligible unordered pair of numeric
// columns, sorted by |r| descending with ties kept in column order.
func Analyze(frame *profile.Frame, cfg Config) []findings.CorrelationFinding {
	if frame.IsEmpty() {
		return nil
	}
	cols := frame.NumericColumns()

	var out []findings.CorrelationFinding
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			f, ok := analyzePair(frame, cols[i], cols[j], cfg)
			if ok {
				out = append(out, f)
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Coefficient) > math.Abs(out[b].Coefficient)
	})
	return out
}

func analyzePair(frame *profile.Frame, a, b int, cfg Config) (findings.CorrelationFinding, bool) {
	xs, xok := frame.Floats(a)
	ys, yok := frame.Floats(b)
	x := make([]float64, 0, len(xs))
	y := make([]float64, 0, len(ys))
	for r := range xs {
		if xok[r] && yok[r] {
			x = append(x, xs[r])
			y = append(y, ys[r])
		}
	}
	n := len(x)
	if n < cfg.MinSamples {
		return findings.CorrelationFinding{}, false
	}
	r, ok := Pearson(x, y)
	if !ok {
		return findings.CorrelationFinding{}, false
	}

	nameA, nameB := frame.Profiles[a].Name, frame.Profiles[b].Name
	f := findings.CorrelationFinding{
		ColumnA:       nameA,
		ColumnB:       nameB,
		Coefficient:   r,
		SampleSize:    n,
		PValue:        PValue(r, n),
		Strength:      Classify(r),
		Sign:          findings.Positive,
		LowConfidence: n < cfg.RecommendedSamples,
	}
	if r < 0 {
		f.Sign = findings.Negative
	}
	f.Interpretation = Interpret(nameA, nameB, f.Strength, f.Sign)
	return f, true
}

// Pearson returns the linear correlation of two equal-length samples,
// clamped to [-1,1]. It reports false when either side has no variance.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	if numeric.NearZero(numeric.StdDev(x), numeric.Mean(x)) || numeric.NearZero(numeric.StdDev(y), numeric.Mean(y)) {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, false
	}
	return numeric.Clamp(r, -1, 1), true
}

// PValue is the two-sided p-value of r under the null of no correlation,
// from Student's t with n-2 degrees of freedom.
func PValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	t := math.Abs(r) * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return numeric.Clamp(2*(1-dist.CDF(t)), 0, 1)
}

// Classify maps |r| to weak, moderate or strong.
func Classify(r float64) findings.Strength {
	a := math.Abs(r)
	switch {
	case a > strongAt:
		return findings.Strong
	case a >= moderateAt:
		return findings.Moderate
	default:
		return findings.Weak
	}
}

// Interpret renders the fixed sentence for a (strength, sign) class using
// business column names. Weak pairs only state that they are weak.
func Interpret(colA, colB string, strength findings.Strength, sign findings.Sign) string {
	a, b := semantic.DisplayName(colA), semantic.DisplayName(colB)
	switch {
	case strength == findings.Weak:
		return fmt.Sprintf("%s and %s show only a weak relationship", a, b)
	case strength == findings.Strong && sign == findings.Positive:
		return fmt.Sprintf("%s and %s increase together", a, b)
	case strength == findings.Strong:
		return fmt.Sprintf("%s tends to decrease as %s increases", a, b)
	case sign == findings.Positive:
		return fmt.Sprintf("%s and %s tend to increase together", a, b)
	default:
		return fmt.Sprintf("%s often decreases when %s increases", a, b)
	}
}
