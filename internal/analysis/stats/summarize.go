// Package stats computes per-column and per-segment descriptive summaries.
package stats

import (
	"fmt"
	"math"
	"sort"

	"olynk/domain/core"
	"olynk/domain/dataset"
	"olynk/domain/findings"
	"olynk/domain/profile"
	"olynk/internal/analysis/numeric"
	"olynk/internal/analysis/timeseries"
)

// Config controls segmentation and growth-rate bucketing.
type Config struct {
	// SegmentBy names a categorical or boolean column; empty disables
	// segmentation.
	SegmentBy      string
	MinSegmentRows int
	DateColumn     string
	// Granularity is empty for automatic selection.
	Granularity findings.Granularity
	Aggregation timeseries.Aggregation
}

// DefaultConfig returns the statistics defaults.
func DefaultConfig() Config {
	return Config{MinSegmentRows: 5, Aggregation: timeseries.Mean}
}

// Summarize computes one overall summary per numeric column and, when
// cfg.SegmentBy is set, one summary per numeric column per segment value.
// An unknown or non-categorical segment column is a contract violation;
// an empty frame yields no summaries and no error.
func Summarize(frame *profile.Frame, cfg Config) (findings.Summaries, error) {
	out := findings.Summaries{SegmentBy: cfg.SegmentBy}
	if frame.IsEmpty() {
		return out, nil
	}
	if err := validateSegment(frame, cfg.SegmentBy); err != nil {
		return out, err
	}

	dateCol, hasDate := frame.DateColumn(cfg.DateColumn)
	all := make([]int, frame.Rows)
	for i := range all {
		all[i] = i
	}

	for _, col := range frame.NumericColumns() {
		if s, ok := summarizeRows(frame, col, all, dateCol, hasDate, cfg); ok {
			out.Overall = append(out.Overall, s)
		}
	}

	if cfg.SegmentBy == "" {
		return out, nil
	}
	segCol := frame.Index(cfg.SegmentBy)
	groups, keys := segmentRows(frame.Cells[segCol])
	for _, key := range keys {
		rows := groups[key]
		for _, col := range frame.NumericColumns() {
			s, ok := summarizeRows(frame, col, rows, dateCol, hasDate, cfg)
			if !ok {
				continue
			}
			s.SegmentBy = cfg.SegmentBy
			s.SegmentValue = key
			s.LowConfidence = len(rows) < cfg.MinSegmentRows
			out.Segments = append(out.Segments, s)
		}
	}
	return out, nil
}

func validateSegment(frame *profile.Frame, segmentBy string) error {
	if segmentBy == "" {
		return nil
	}
	i := frame.Index(segmentBy)
	if i < 0 {
		return core.NewContractError(core.ErrInvalidSegment, fmt.Sprintf("column %q does not exist", segmentBy))
	}
	if p := frame.Profiles[i]; !p.IsSegmentable() {
		return core.NewContractError(core.ErrInvalidSegment,
			fmt.Sprintf("column %q is %s, not categorical", segmentBy, p.Type))
	}
	return nil
}

// segmentRows groups row indices by segment value; missing segment values
// are left out. Keys are returned sorted.
func segmentRows(cells []dataset.Value) (map[string][]int, []string) {
	groups := make(map[string][]int)
	for r, v := range cells {
		if v.IsMissing() {
			continue
		}
		k := v.String()
		groups[k] = append(groups[k], r)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return groups, keys
}

func summarizeRows(frame *profile.Frame, col int, rows []int, dateCol int, hasDate bool, cfg Config) (findings.StatisticalSummary, bool) {
	cells := frame.Cells[col]
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := cells[r].Float(); ok {
			vals = append(vals, f)
		}
	}
	s := findings.StatisticalSummary{
		Column:  frame.Profiles[col].Name,
		Count:   len(vals),
		Missing: len(rows) - len(vals),
	}
	if len(vals) == 0 {
		return s, false
	}

	sorted := numeric.Sorted(vals)
	s.Sum = numeric.Sum(vals)
	s.Mean = numeric.Mean(vals)
	s.Median = numeric.Median(vals)
	s.StdDev = numeric.StdDev(vals)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = numeric.Percentile(sorted, 0.25)
	s.P50 = numeric.Percentile(sorted, 0.50)
	s.P75 = numeric.Percentile(sorted, 0.75)
	s.P90 = numeric.Percentile(sorted, 0.90)

	if hasDate {
		dates := make([]dataset.Value, len(rows))
		values := make([]dataset.Value, len(rows))
		for i, r := range rows {
			dates[i] = frame.Cells[dateCol][r]
			values[i] = cells[r]
		}
		series := timeseries.Bucketize(dates, values, cfg.Granularity, cfg.Aggregation)
		if g, ok := GrowthRate(series); ok {
			s.GrowthRate = &g
			s.GrowthPeriod = string(series.Granularity)
		}
	}
	return s, true
}

// GrowthRate is the relative change from the earliest to the latest bucket
// aggregate. It is undefined below two buckets or when the first aggregate
// is zero.
func GrowthRate(series timeseries.Series) (float64, bool) {
	if series.Len() < 2 {
		return 0, false
	}
	first := series.Points[0].Value
	last := series.Points[series.Len()-1].Value
	if first == 0 {
		return 0, false
	}
	return (last - first) / math.Abs(first), true
}
