// Package timeseries buckets a numeric column along a date column.
package timeseries

import (
	"sort"
	"time"

	"olynk/domain/dataset"
	"olynk/domain/findings"
)

// Aggregation reduces the values of one bucket.
type Aggregation string

const (
	Mean Aggregation = "mean"
	Sum  Aggregation = "sum"
)

// Span thresholds for automatic granularity.
const (
	dailyMaxSpan  = 90 * 24 * time.Hour
	weeklyMaxSpan = 2 * 365 * 24 * time.Hour
)

// Point is one non-empty bucket.
type Point struct {
	// Index counts periods from the first bucket, so gaps keep their width.
	Index int       `json:"index"`
	Start time.Time `json:"start"`
	Value float64   `json:"value"`
	Count int       `json:"count"`
}

// Series is a time-ordered sequence of non-empty buckets.
type Series struct {
	Granularity findings.Granularity
	Points      []Point
}

// Len returns the number of non-empty buckets.
func (s Series) Len() int { return len(s.Points) }

// Values returns the bucket aggregates in time order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Indices returns the bucket positions as floats for regression.
func (s Series) Indices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = float64(p.Index)
	}
	return out
}

// Dense reports whether no bucket between the first and last is empty.
func (s Series) Dense() bool {
	n := len(s.Points)
	return n == 0 || s.Points[n-1].Index == n-1
}

// ChooseGranularity picks the bucket width from the covered span.
func ChooseGranularity(earliest, latest time.Time) findings.Granularity {
	span := latest.Sub(earliest)
	switch {
	case span <= dailyMaxSpan:
		return findings.Daily
	case span <= weeklyMaxSpan:
		return findings.Weekly
	default:
		return findings.Monthly
	}
}

// Truncate returns the start of the bucket containing t. Weeks start on
// Monday.
func Truncate(t time.Time, g findings.Granularity) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case findings.Weekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case findings.Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// Advance moves a bucket start forward by k periods.
func Advance(start time.Time, g findings.Granularity, k int) time.Time {
	switch g {
	case findings.Weekly:
		return start.AddDate(0, 0, 7*k)
	case findings.Monthly:
		return start.AddDate(0, k, 0)
	default:
		return start.AddDate(0, 0, k)
	}
}

// periodsBetween counts whole periods from bucket a to bucket b.
func periodsBetween(a, b time.Time, g findings.Granularity) int {
	switch g {
	case findings.Monthly:
		return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	case findings.Weekly:
		return int(b.Sub(a).Hours()/24+0.5) / 7
	default:
		return int(b.Sub(a).Hours()/24 + 0.5)
	}
}

// Bucketize aggregates values by the bucket of their paired date. Rows
// where either side is missing are skipped. An empty granularity is chosen
// from the span of the usable dates.
func Bucketize(dates, values []dataset.Value, g findings.Granularity, agg Aggregation) Series {
	type pair struct {
		at time.Time
		v  float64
	}
	pairs := make([]pair, 0, len(values))
	for i := range values {
		if i >= len(dates) {
			break
		}
		d, okDate := dates[i].Time()
		v, okNum := values[i].Float()
		if okDate && okNum {
			pairs = append(pairs, pair{at: d, v: v})
		}
	}
	if len(pairs) == 0 {
		return Series{Granularity: g}
	}

	if g == "" {
		lo, hi := pairs[0].at, pairs[0].at
		for _, p := range pairs[1:] {
			if p.at.Before(lo) {
				lo = p.at
			}
			if p.at.After(hi) {
				hi = p.at
			}
		}
		g = ChooseGranularity(lo, hi)
	}

	type acc struct {
		sum   float64
		count int
	}
	buckets := make(map[time.Time]*acc)
	for _, p := range pairs {
		start := Truncate(p.at, g)
		a, ok := buckets[start]
		if !ok {
			a = &acc{}
			buckets[start] = a
		}
		a.sum += p.v
		a.count++
	}

	starts := make([]time.Time, 0, len(buckets))
	for s := range buckets {
		starts = append(starts, s)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	series := Series{Granularity: g, Points: make([]Point, len(starts))}
	for i, s := range starts {
		a := buckets[s]
		value := a.sum
		if agg != Sum {
			value = a.sum / float64(a.count)
		}
		series.Points[i] = Point{
			Index: periodsBetween(starts[0], s, g),
			Start: s,
			Value: value,
			Count: a.count,
		}
	}
	return series
}
