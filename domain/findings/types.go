package findings

import (
	"strconv"
	"strings"
	"time"
)

// StatisticalSummary holds the descriptive aggregates of one numeric column,
// overall or within one segment.
type StatisticalSummary struct {
	Column       string `json:"column"`
	SegmentBy    string `json:"segment_by,omitempty"`
	SegmentValue string `json:"segment_value,omitempty"`

	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Sum     float64 `json:"sum"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	P25     float64 `json:"p25"`
	P50     float64 `json:"p50"`
	P75     float64 `json:"p75"`
	P90     float64 `json:"p90"`

	// GrowthRate is nil when fewer than two periods exist or the first
	// period aggregate is zero.
	GrowthRate   *float64 `json:"growth_rate,omitempty"`
	GrowthPeriod string   `json:"growth_period,omitempty"`

	LowConfidence bool `json:"low_confidence,omitempty"`
}

// Summaries is the output of the statistics module.
type Summaries struct {
	Overall   []StatisticalSummary `json:"overall"`
	SegmentBy string               `json:"segment_by,omitempty"`
	Segments  []StatisticalSummary `json:"segments,omitempty"`
}

// Column returns the overall summary for a column.
func (s Summaries) Column(name string) (StatisticalSummary, bool) {
	for _, sum := range s.Overall {
		if sum.Column == name {
			return sum, true
		}
	}
	return StatisticalSummary{}, false
}

// Granularity is the width of a time bucket.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Direction of a fitted trend.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Flat       Direction = "flat"
)

// ForecastPoint is one projected bucket with a 95% band.
type ForecastPoint struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
}

// TrendFinding describes the fitted trend of one numeric column over time.
type TrendFinding struct {
	Column      string      `json:"column"`
	DateColumn  string      `json:"date_column"`
	Granularity Granularity `json:"granularity"`
	Buckets     int         `json:"buckets"`
	Direction   Direction   `json:"direction"`
	Slope       float64     `json:"slope"`
	Intercept   float64     `json:"intercept"`
	// Confidence is the fit's R-squared, clamped to [0,1].
	Confidence float64 `json:"confidence"`
	// SeasonalityPeriod is zero when no lag cleared the threshold.
	SeasonalityPeriod   int             `json:"seasonality_period,omitempty"`
	SeasonalityStrength float64         `json:"seasonality_strength,omitempty"`
	Forecast            []ForecastPoint `json:"forecast,omitempty"`
}

// Key identifies the finding for traceability.
func (t TrendFinding) Key() string { return t.Column }

// Method tags which detector flagged an anomaly.
type Method string

const (
	MethodZScore       Method = "zscore"
	MethodIQR          Method = "iqr"
	MethodMultivariate Method = "multivariate"
)

// MethodOrder fixes the order in which tags are listed.
var MethodOrder = []Method{MethodZScore, MethodIQR, MethodMultivariate}

// AnomalyFinding is one reconciled outlier: a row and the columns implicated.
type AnomalyFinding struct {
	Row      int      `json:"row"`
	RowLabel string   `json:"row_label,omitempty"`
	Columns  []string `json:"columns"`
	// Score is in [0,1], higher is more anomalous.
	Score   float64            `json:"score"`
	Methods []Method           `json:"methods"`
	Values  map[string]float64 `json:"values"`
	// Expected holds the column medians the values were compared against.
	Expected map[string]float64 `json:"expected,omitempty"`
}

// ColumnKey is the canonical key of the implicated column set.
func (a AnomalyFinding) ColumnKey() string { return strings.Join(a.Columns, ",") }

// Key identifies the finding for traceability.
func (a AnomalyFinding) Key() string {
	return "row:" + strconv.Itoa(a.Row) + ":" + a.ColumnKey()
}

// HasMethod reports whether m agreed on this finding.
func (a AnomalyFinding) HasMethod(m Method) bool {
	for _, x := range a.Methods {
		if x == m {
			return true
		}
	}
	return false
}

// Strength classes for correlations.
type Strength string

const (
	Weak     Strength = "weak"
	Moderate Strength = "moderate"
	Strong   Strength = "strong"
)

// Rank orders strengths so gates can compare them.
func (s Strength) Rank() int {
	switch s {
	case Strong:
		return 2
	case Moderate:
		return 1
	default:
		return 0
	}
}

// Sign of a correlation.
type Sign string

const (
	Positive Sign = "positive"
	Negative Sign = "negative"
)

// CorrelationFinding is one unordered pair of numeric columns. ColumnA
// precedes ColumnB in display order.
type CorrelationFinding struct {
	ColumnA        string   `json:"column_a"`
	ColumnB        string   `json:"column_b"`
	Coefficient    float64  `json:"coefficient"`
	SampleSize     int      `json:"sample_size"`
	PValue         float64  `json:"p_value"`
	Strength       Strength `json:"strength"`
	Sign           Sign     `json:"sign"`
	Interpretation string   `json:"interpretation"`
	LowConfidence  bool     `json:"low_confidence,omitempty"`
}

// Key identifies the finding for traceability.
func (c CorrelationFinding) Key() string { return c.ColumnA + "~" + c.ColumnB }
