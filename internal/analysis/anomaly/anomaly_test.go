package anomaly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/domain/dataset"
	"olynk/domain/findings"
	"olynk/domain/profile"
	"olynk/internal/analysis/profiler"
	"olynk/internal/testkit"
)

func build(ds *dataset.Dataset) *profile.Frame {
	return profiler.Build(ds, profiler.DefaultConfig())
}

var outlierRows = []int{10, 30, 50, 70, 90}

// clusterWithOutliers returns 95 rows packed in [99,101] on x plus five rows
// far out, and an unrelated evenly spread y column.
func clusterWithOutliers() *dataset.Dataset {
	x := make([]float64, 100)
	y := make([]float64, 100)
	isOutlier := map[int]bool{}
	for _, r := range outlierRows {
		isOutlier[r] = true
	}
	j := 0
	for i := range x {
		if isOutlier[i] {
			x[i] = 110
		} else {
			x[i] = 100 - 1 + 2*float64(j)/94
			j++
		}
		y[i] = 50 + float64((i*37)%100)/50 - 1
	}
	return testkit.NumericColumns([]string{"x", "y"}, x, y)
}

func TestFlagsExactlyTheOutlyingRows(t *testing.T) {
	found := Detect(build(clusterWithOutliers()), DefaultConfig())
	require.Len(t, found, len(outlierRows))

	rows := make([]int, 0, len(found))
	for _, f := range found {
		rows = append(rows, f.Row)
		assert.Equal(t, []string{"x"}, f.Columns)
		assert.True(t, f.HasMethod(findings.MethodZScore), "row %d", f.Row)
		assert.True(t, f.HasMethod(findings.MethodMultivariate), "row %d", f.Row)
		assert.Equal(t, []findings.Method{findings.MethodZScore, findings.MethodIQR, findings.MethodMultivariate}, f.Methods)
		assert.Equal(t, 110.0, f.Values["x"])
		assert.Greater(t, f.Score, 0.99)
		assert.LessOrEqual(t, f.Score, 1.0)
	}
	assert.ElementsMatch(t, outlierRows, rows)
}

func TestConstantColumnNeverFlagged(t *testing.T) {
	n := 60
	constant := make([]float64, n)
	noisy := testkit.Normal(n, 0, 1, 7)
	for i := range constant {
		constant[i] = 12.5
	}
	noisy[3] = 25
	found := Detect(build(testkit.NumericColumns([]string{"flat", "noisy"}, constant, noisy)), DefaultConfig())

	require.NotEmpty(t, found)
	for _, f := range found {
		assert.NotContains(t, f.Columns, "flat")
	}
}

func TestMergeProducesOneFindingPerRowAndColumnSet(t *testing.T) {
	ds := testkit.NewSalesDataGenerator(testkit.SalesGeneratorConfig{
		Rows: 200, StartDate: testkit.DefaultSalesConfig().StartDate, SpanDays: 60,
		Regions: []string{"North", "South"}, DailyGrowth: 0, OutlierEvery: 37, Seed: 3,
	}).Generate()
	found := Detect(build(ds), DefaultConfig())
	require.NotEmpty(t, found)

	seen := map[string]bool{}
	for i, f := range found {
		assert.False(t, seen[f.Key()], "duplicate finding %s", f.Key())
		seen[f.Key()] = true
		assert.NotEmpty(t, f.RowLabel, "identifier column should label rows")
		if i > 0 {
			assert.GreaterOrEqual(t, found[i-1].Score, f.Score)
		}
	}
}

func TestRowsMissingEverywhereAreNotScoredMultivariate(t *testing.T) {
	x := testkit.Normal(40, 10, 1, 11)
	y := testkit.Normal(40, -5, 2, 12)
	x[5], y[5] = math.NaN(), math.NaN()
	x[9] = math.NaN()
	y[9] = 60

	found := Detect(build(testkit.NumericColumns([]string{"x", "y"}, x, y)), DefaultConfig())
	var row9 *findings.AnomalyFinding
	for i := range found {
		assert.NotEqual(t, 5, found[i].Row)
		if found[i].Row == 9 {
			row9 = &found[i]
		}
	}
	require.NotNil(t, row9, "row with one missing cell stays eligible")
	assert.True(t, row9.HasMethod(findings.MethodZScore))
	assert.Equal(t, []string{"y"}, row9.Columns)
}

func TestSingularCovarianceSkipsMultivariate(t *testing.T) {
	a := testkit.Normal(50, 0, 1, 5)
	b := make([]float64, len(a))
	for i := range a {
		b[i] = 2 * a[i]
	}
	a[0], b[0] = 9, 18

	found := Detect(build(testkit.NumericColumns([]string{"a", "b"}, a, b)), DefaultConfig())
	require.NotEmpty(t, found)
	for _, f := range found {
		assert.False(t, f.HasMethod(findings.MethodMultivariate))
	}
}

func TestSmallSampleSkipsMultivariate(t *testing.T) {
	for _, n := range []int{5, 19} {
		x := testkit.Normal(n, 10, 1, 21)
		y := testkit.Normal(n, 40, 3, 22)
		for _, f := range Detect(build(testkit.NumericColumns([]string{"x", "y"}, x, y)), DefaultConfig()) {
			assert.False(t, f.HasMethod(findings.MethodMultivariate), "n=%d row %d", n, f.Row)
		}
	}

	x := testkit.Normal(20, 10, 1, 21)
	y := testkit.Normal(20, 40, 3, 22)
	var multivariate int
	for _, f := range Detect(build(testkit.NumericColumns([]string{"x", "y"}, x, y)), DefaultConfig()) {
		if f.HasMethod(findings.MethodMultivariate) {
			multivariate++
		}
	}
	assert.Equal(t, 1, multivariate)
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, Detect(build(&dataset.Dataset{}), DefaultConfig()))
	assert.Empty(t, Detect(build(testkit.Records([]string{"name"}, []string{"a"}, []string{"b"})), DefaultConfig()))
}
