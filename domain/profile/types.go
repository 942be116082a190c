package profile

import "time"

// ColumnType is the role the profiler assigns to a column.
type ColumnType string

const (
	TypeIdentifier  ColumnType = "identifier"
	TypeNumeric     ColumnType = "numeric"
	TypeDate        ColumnType = "date"
	TypeBoolean     ColumnType = "boolean"
	TypeCategorical ColumnType = "categorical"
	TypeText        ColumnType = "text"
)

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile describes one column: its inferred type and data-quality
// metrics. Profiles are read-only once produced.
type ColumnProfile struct {
	Name  string     `json:"name"`
	Index int        `json:"index"`
	Type  ColumnType `json:"type"`

	RowCount     int     `json:"row_count"`
	MissingCount int     `json:"missing_count"`
	MissingRate  float64 `json:"missing_rate"`
	Cardinality  int     `json:"cardinality"`
	UniqueRatio  float64 `json:"unique_ratio"`
	// ParseRatio is the share of non-missing cells that parse as Type.
	ParseRatio float64 `json:"parse_ratio"`

	TopValues []ValueCount `json:"top_values,omitempty"`
	Min       *float64     `json:"min,omitempty"`
	Max       *float64     `json:"max,omitempty"`
	Earliest  *time.Time   `json:"earliest,omitempty"`
	Latest    *time.Time   `json:"latest,omitempty"`

	// QualityScore is completeness times parse ratio, in [0,1].
	QualityScore float64 `json:"quality_score"`
}

// NonMissing returns the number of present cells.
func (p ColumnProfile) NonMissing() int {
	return p.RowCount - p.MissingCount
}

// IsNumeric reports whether the column takes part in numeric analysis.
// Identifiers never do, even when their values are numbers.
func (p ColumnProfile) IsNumeric() bool {
	return p.Type == TypeNumeric
}

// IsSegmentable reports whether the column can be used to group rows.
func (p ColumnProfile) IsSegmentable() bool {
	return p.Type == TypeCategorical || p.Type == TypeBoolean
}

// DataQuality is the dataset-level roll-up of column quality.
type DataQuality struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}
