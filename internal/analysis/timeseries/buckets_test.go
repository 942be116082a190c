package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/domain/dataset"
	"olynk/domain/findings"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestChooseGranularity(t *testing.T) {
	start := day(2024, 1, 1)
	assert.Equal(t, findings.Daily, ChooseGranularity(start, start.AddDate(0, 0, 60)))
	assert.Equal(t, findings.Weekly, ChooseGranularity(start, start.AddDate(1, 0, 0)))
	assert.Equal(t, findings.Monthly, ChooseGranularity(start, start.AddDate(3, 0, 0)))
}

func TestTruncate(t *testing.T) {
	// 2024-03-14 is a Thursday
	at := time.Date(2024, 3, 14, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, day(2024, 3, 14), Truncate(at, findings.Daily))
	assert.Equal(t, day(2024, 3, 11), Truncate(at, findings.Weekly))
	assert.Equal(t, day(2024, 3, 1), Truncate(at, findings.Monthly))
	assert.Equal(t, day(2024, 3, 11), Truncate(day(2024, 3, 17), findings.Weekly))
}

func TestBucketizeMeanAndSum(t *testing.T) {
	dates := []dataset.Value{
		dataset.Date(day(2024, 1, 1)), dataset.Date(day(2024, 1, 1)),
		dataset.Date(day(2024, 1, 2)), dataset.Missing(),
		dataset.Date(day(2024, 1, 4)),
	}
	values := []dataset.Value{
		dataset.Numeric(10), dataset.Numeric(20),
		dataset.Numeric(5), dataset.Numeric(1000),
		dataset.Missing(),
	}

	mean := Bucketize(dates, values, findings.Daily, Mean)
	require.Equal(t, 2, mean.Len())
	assert.Equal(t, []float64{15, 5}, mean.Values())
	assert.Equal(t, []float64{0, 1}, mean.Indices())
	assert.True(t, mean.Dense())

	sum := Bucketize(dates, values, findings.Daily, Sum)
	assert.Equal(t, []float64{30, 5}, sum.Values())
}

func TestBucketizeKeepsGapsInIndex(t *testing.T) {
	dates := []dataset.Value{
		dataset.Date(day(2024, 1, 15)), dataset.Date(day(2024, 2, 3)), dataset.Date(day(2024, 5, 20)),
	}
	values := []dataset.Value{dataset.Numeric(1), dataset.Numeric(2), dataset.Numeric(3)}

	s := Bucketize(dates, values, findings.Monthly, Mean)
	assert.Equal(t, []float64{0, 1, 4}, s.Indices())
	assert.False(t, s.Dense())
	assert.Equal(t, day(2024, 5, 1), s.Points[2].Start)
	assert.Equal(t, day(2024, 7, 1), Advance(s.Points[2].Start, findings.Monthly, 2))
}

func TestBucketizeAutoGranularity(t *testing.T) {
	var dates, values []dataset.Value
	for i := 0; i < 30; i++ {
		dates = append(dates, dataset.Date(day(2024, 1, 1).AddDate(0, 0, 7*i)))
		values = append(values, dataset.Numeric(float64(i)))
	}
	s := Bucketize(dates, values, "", Mean)
	assert.Equal(t, findings.Weekly, s.Granularity)
	assert.Equal(t, 30, s.Len())

	empty := Bucketize(nil, nil, "", Mean)
	assert.Equal(t, 0, empty.Len())
}
