// Package anomaly flags unusual rows with independent univariate and
// multivariate methods and reconciles their votes.
package anomaly

import (
	"sort"
	"strings"

	"olynk/domain/findings"
	"olynk/domain/profile"
	"olynk/internal/analysis/numeric"
)

// Config holds the detector thresholds.
type Config struct {
	ZScoreThreshold float64
	IQRMultiplier   float64
	// MultivariatePercentile is the top share of rows, by Mahalanobis
	// distance, that the multivariate method flags.
	MultivariatePercentile float64
}

// DefaultConfig returns the anomaly defaults.
func DefaultConfig() Config {
	return Config{ZScoreThreshold: 3, IQRMultiplier: 1.5, MultivariatePercentile: 0.05}
}

// minColumnValues is the smallest sample a univariate method will score.
const minColumnValues = 3

// minMultivariateRows is the smallest sample the Mahalanobis ranking scores;
// below it the top percentile would flag a row regardless of spread.
const minMultivariateRows = 20

// vote is one method's opinion about one row and column set.
type vote struct {
	row     int
	columns []int
	method  findings.Method
	score   float64
}

// Detect runs every method and merges their votes: one finding per row and
// implicated column set, scored by the maximum across agreeing methods.
func Detect(frame *profile.Frame, cfg Config) []findings.AnomalyFinding {
	if frame.IsEmpty() {
		return nil
	}
	cols := frame.NumericColumns()
	if len(cols) == 0 {
		return nil
	}

	var votes []vote
	for _, col := range cols {
		votes = append(votes, zScoreVotes(frame, col, cfg.ZScoreThreshold)...)
		votes = append(votes, iqrVotes(frame, col, cfg.IQRMultiplier)...)
	}
	votes = append(votes, multivariateVotes(frame, cols, cfg.MultivariatePercentile)...)

	return merge(frame, votes)
}

func zScoreVotes(frame *profile.Frame, col int, threshold float64) []vote {
	present := frame.Present(col)
	if len(present) < minColumnValues {
		return nil
	}
	mean := numeric.Mean(present)
	sd := numeric.StdDev(present)
	if numeric.NearZero(sd, mean) {
		return nil
	}

	var out []vote
	for r, v := range frame.Cells[col] {
		x, ok := v.Float()
		if !ok {
			continue
		}
		z := (x - mean) / sd
		if z > threshold || z < -threshold {
			out = append(out, vote{row: r, columns: []int{col}, method: findings.MethodZScore, score: numeric.TwoSidedScore(z)})
		}
	}
	return out
}

// iqrVotes flags values outside the Tukey fences. Scores use the robust
// z-score (x - median) / (IQR / 1.349) so they are comparable with the
// z-score method on normal data.
func iqrVotes(frame *profile.Frame, col int, k float64) []vote {
	present := frame.Present(col)
	if len(present) < minColumnValues {
		return nil
	}
	sorted := numeric.Sorted(present)
	q1 := numeric.Percentile(sorted, 0.25)
	q3 := numeric.Percentile(sorted, 0.75)
	median := numeric.Percentile(sorted, 0.5)
	iqr := q3 - q1
	if numeric.NearZero(iqr, median) {
		return nil
	}
	lower, upper := q1-k*iqr, q3+k*iqr
	robustScale := iqr / 1.349

	var out []vote
	for r, v := range frame.Cells[col] {
		x, ok := v.Float()
		if !ok || (x >= lower && x <= upper) {
			continue
		}
		out = append(out, vote{
			row:     r,
			columns: []int{col},
			method:  findings.MethodIQR,
			score:   numeric.TwoSidedScore((x - median) / robustScale),
		})
	}
	return out
}

type mergeKey struct {
	row     int
	columns string
}

func merge(frame *profile.Frame, votes []vote) []findings.AnomalyFinding {
	labelCol, hasLabel := frame.IdentifierColumn()
	medians := make(map[int]float64)

	byKey := make(map[mergeKey]*findings.AnomalyFinding)
	var order []mergeKey
	for _, v := range votes {
		names := make([]string, len(v.columns))
		for i, c := range v.columns {
			names[i] = frame.Profiles[c].Name
		}
		sort.Strings(names)
		key := mergeKey{row: v.row, columns: strings.Join(names, ",")}

		f, ok := byKey[key]
		if !ok {
			f = &findings.AnomalyFinding{
				Row:      v.row,
				Columns:  names,
				Values:   make(map[string]float64, len(v.columns)),
				Expected: make(map[string]float64, len(v.columns)),
			}
			if hasLabel {
				f.RowLabel = frame.Cells[labelCol][v.row].String()
			}
			for _, c := range v.columns {
				x, _ := frame.Cells[c][v.row].Float()
				f.Values[frame.Profiles[c].Name] = x
				m, seen := medians[c]
				if !seen {
					m = numeric.Median(frame.Present(c))
					medians[c] = m
				}
				f.Expected[frame.Profiles[c].Name] = m
			}
			byKey[key] = f
			order = append(order, key)
		}
		if v.score > f.Score {
			f.Score = v.score
		}
		if !f.HasMethod(v.method) {
			f.Methods = append(f.Methods, v.method)
		}
	}

	out := make([]findings.AnomalyFinding, 0, len(order))
	for _, key := range order {
		f := byKey[key]
		sortMethods(f.Methods)
		out = append(out, *f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].ColumnKey() < out[j].ColumnKey()
	})
	return out
}

func sortMethods(methods []findings.Method) {
	rank := make(map[findings.Method]int, len(findings.MethodOrder))
	for i, m := range findings.MethodOrder {
		rank[m] = i
	}
	sort.Slice(methods, func(i, j int) bool { return rank[methods[i]] < rank[methods[j]] })
}
