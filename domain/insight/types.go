package insight

// Category of the finding an insight was derived from.
type Category string

const (
	CategoryTrend       Category = "trend"
	CategoryAnomaly     Category = "anomaly"
	CategoryCorrelation Category = "correlation"
	CategorySummary     Category = "summary"
)

// Severity drives ranking; higher ranks first.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Raise moves the severity up one level, saturating at high.
func (s Severity) Raise() Severity {
	switch s {
	case SeverityLow:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// SourceRef points back to the finding an insight came from.
type SourceRef struct {
	Category Category `json:"category"`
	Key      string   `json:"key"`
}

// Insight is a ranked, business-phrased statement. Insights are immutable
// once synthesized.
type Insight struct {
	ID         string    `json:"id"`
	Category   Category  `json:"category"`
	Severity   Severity  `json:"severity"`
	Title      string    `json:"title"`
	Statement  string    `json:"statement"`
	Actions    []string  `json:"actions"`
	Confidence float64   `json:"confidence"`
	Source     SourceRef `json:"source"`
	RuleID     string    `json:"rule_id"`
}
