package correlation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/domain/dataset"
	"olynk/domain/findings"
	"olynk/internal/analysis/profiler"
	"olynk/internal/testkit"
)

func TestPearsonSelfAndSymmetry(t *testing.T) {
	a := testkit.Normal(50, 10, 3, 1)
	b := testkit.Normal(50, 0, 1, 2)
	for i := range b {
		b[i] += 0.5 * a[i]
	}

	self, ok := Pearson(a, a)
	require.True(t, ok)
	assert.InDelta(t, 1.0, self, 1e-12)

	ab, ok := Pearson(a, b)
	require.True(t, ok)
	ba, _ := Pearson(b, a)
	assert.Equal(t, ab, ba)
}

func TestStrongNegativeRelationship(t *testing.T) {
	a := testkit.Normal(80, 100, 20, 4)
	noise := testkit.Normal(80, 0, 2, 5)
	b := make([]float64, len(a))
	for i := range a {
		b[i] = -2*a[i] + noise[i]
	}
	frame := profiler.Build(testkit.NumericColumns([]string{"unit_price", "quantity"}, a, b), profiler.DefaultConfig())

	found := Analyze(frame, DefaultConfig())
	require.Len(t, found, 1)
	f := found[0]
	assert.Equal(t, "unit_price", f.ColumnA)
	assert.Equal(t, "quantity", f.ColumnB)
	assert.Equal(t, findings.Strong, f.Strength)
	assert.Equal(t, findings.Negative, f.Sign)
	assert.Greater(t, -f.Coefficient, 0.8)
	assert.Equal(t, 80, f.SampleSize)
	assert.False(t, f.LowConfidence)
	assert.Less(t, f.PValue, 0.001)
	assert.Equal(t, "Unit Price tends to decrease as Quantity increases", f.Interpretation)
}

func TestSortedByAbsoluteCoefficient(t *testing.T) {
	base := testkit.Normal(60, 0, 1, 8)
	weakNoise := testkit.Normal(60, 0, 1, 9)
	strongNoise := testkit.Normal(60, 0, 0.1, 10)
	weak := make([]float64, 60)
	strong := make([]float64, 60)
	for i := range base {
		weak[i] = 0.2*base[i] + weakNoise[i]
		strong[i] = base[i] + strongNoise[i]
	}
	frame := profiler.Build(testkit.NumericColumns([]string{"base", "weak", "strong"}, base, weak, strong), profiler.DefaultConfig())

	found := Analyze(frame, DefaultConfig())
	require.Len(t, found, 3)
	assert.Equal(t, "base~strong", found[0].Key())
	for i := 1; i < len(found); i++ {
		assert.GreaterOrEqual(t, math.Abs(found[i-1].Coefficient), math.Abs(found[i].Coefficient))
	}
}

func TestSkipsDegeneratePairs(t *testing.T) {
	constant := []float64{5, 5, 5, 5, 5}
	varying := []float64{1, 2, 3, 4, 5}
	frame := profiler.Build(testkit.NumericColumns([]string{"c", "v"}, constant, varying), profiler.DefaultConfig())
	assert.Empty(t, Analyze(frame, DefaultConfig()))

	sparse := testkit.NumericColumns([]string{"x", "y"},
		[]float64{1, 2, math.NaN(), math.NaN(), 5, 6},
		[]float64{math.NaN(), 2, 3, 4, math.NaN(), 7})
	assert.Empty(t, Analyze(profiler.Build(sparse, profiler.DefaultConfig()), Config{MinSamples: 3, RecommendedSamples: 10}))

	assert.Empty(t, Analyze(profiler.Build(&dataset.Dataset{}, profiler.DefaultConfig()), DefaultConfig()))
}

func TestLowConfidenceBelowRecommendedSamples(t *testing.T) {
	frame := profiler.Build(testkit.NumericColumns([]string{"x", "y"},
		[]float64{1, 2, 3, 4, 5}, []float64{2, 4, 7, 8, 10}), profiler.DefaultConfig())
	found := Analyze(frame, DefaultConfig())
	require.Len(t, found, 1)
	assert.True(t, found[0].LowConfidence)
	assert.Equal(t, "X and Y increase together", found[0].Interpretation)
}

func TestClassifyAndInterpret(t *testing.T) {
	assert.Equal(t, findings.Weak, Classify(0.29))
	assert.Equal(t, findings.Moderate, Classify(-0.3))
	assert.Equal(t, findings.Moderate, Classify(0.7))
	assert.Equal(t, findings.Strong, Classify(-0.71))

	assert.Equal(t, "Revenue and Quantity tend to increase together",
		Interpret("revenue", "quantity", findings.Moderate, findings.Positive))
	assert.Equal(t, "Revenue and Discount show only a weak relationship",
		Interpret("revenue", "discount", findings.Weak, findings.Negative))
}
