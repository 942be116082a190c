package anomaly

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"olynk/domain/findings"
	"olynk/domain/profile"
	"olynk/internal/analysis/numeric"
)

// maxCondition bounds the covariance condition number; above it the matrix
// is treated as singular and the method is skipped.
const maxCondition = 1e12

// multivariateVotes scores every row by squared Mahalanobis distance over
// the non-constant numeric columns and flags the top share. Missing cells
// are imputed with the column median; rows missing every feature are left
// out. The finding is attributed to the feature that deviates most.
func multivariateVotes(frame *profile.Frame, cols []int, percentile float64) []vote {
	type feature struct {
		col    int
		median float64
		mean   float64
		sd     float64
	}
	var feats []feature
	for _, col := range cols {
		present := frame.Present(col)
		if len(present) < minColumnValues {
			continue
		}
		mean := numeric.Mean(present)
		sd := numeric.StdDev(present)
		if numeric.NearZero(sd, mean) {
			continue
		}
		feats = append(feats, feature{col: col, median: numeric.Median(present), mean: mean, sd: sd})
	}
	k := len(feats)
	if k == 0 {
		return nil
	}

	var rows []int
	for r := 0; r < frame.Rows; r++ {
		for _, f := range feats {
			if !frame.Cells[f.col][r].IsMissing() {
				rows = append(rows, r)
				break
			}
		}
	}
	m := len(rows)
	if m < minMultivariateRows || m <= k+1 {
		return nil
	}

	x := mat.NewDense(m, k, nil)
	for i, r := range rows {
		for j, f := range feats {
			v, ok := frame.Cells[f.col][r].Float()
			if !ok {
				v = f.median
			}
			x.Set(i, j, v)
		}
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, x, nil)
	var chol mat.Cholesky
	if ok := chol.Factorize(&cov); !ok || chol.Cond() > maxCondition {
		return nil
	}

	centers := make([]float64, k)
	for j := 0; j < k; j++ {
		centers[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}

	type scored struct {
		pos int
		d2  float64
	}
	scores := make([]scored, 0, m)
	diff := mat.NewVecDense(k, nil)
	var sol mat.VecDense
	for i := 0; i < m; i++ {
		for j := 0; j < k; j++ {
			diff.SetVec(j, x.At(i, j)-centers[j])
		}
		if err := chol.SolveVecTo(&sol, diff); err != nil {
			continue
		}
		scores = append(scores, scored{pos: i, d2: mat.Dot(diff, &sol)})
	}
	sort.SliceStable(scores, func(a, b int) bool {
		if scores[a].d2 != scores[b].d2 {
			return scores[a].d2 > scores[b].d2
		}
		return scores[a].pos < scores[b].pos
	})

	flag := int(math.Ceil(percentile*float64(m) - 1e-9))
	if flag > len(scores) {
		flag = len(scores)
	}
	chi := distuv.ChiSquared{K: float64(k)}

	out := make([]vote, 0, flag)
	for _, s := range scores[:flag] {
		best, bestDev := 0, -1.0
		for j, f := range feats {
			dev := math.Abs(x.At(s.pos, j)-f.mean) / f.sd
			if dev > bestDev {
				best, bestDev = j, dev
			}
		}
		out = append(out, vote{
			row:     rows[s.pos],
			columns: []int{feats[best].col},
			method:  findings.MethodMultivariate,
			score:   numeric.Clamp(chi.CDF(s.d2), 0, 1),
		})
	}
	return out
}
