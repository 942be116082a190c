package insight

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"olynk/domain/core"
	"olynk/domain/findings"
	"olynk/domain/insight"
	"olynk/domain/profile"
	"olynk/internal/analysis/numeric"
	"olynk/internal/analysis/semantic"
)

// Config holds the gates and severity thresholds.
type Config struct {
	MinTrendConfidence float64
	MinAnomalyScore    float64
	SeverityHigh       float64
	SeverityMedium     float64
	// GrowthMateriality is the smallest |growth| surfaced as a summary insight.
	GrowthMateriality float64
	HighMissingRate   float64
	// MaxInsights caps the ranked output; zero keeps everything.
	MaxInsights int
}

// DefaultConfig returns the standard gates.
func DefaultConfig() Config {
	return Config{
		MinTrendConfidence: 0.5,
		MinAnomalyScore:    0.95,
		SeverityHigh:       0.9,
		SeverityMedium:     0.7,
		GrowthMateriality:  0.10,
		HighMissingRate:    0.2,
	}
}

// Inputs bundles every finding list the synthesizer reads.
type Inputs struct {
	Profiles     []profile.ColumnProfile
	Summaries    findings.Summaries
	Trends       []findings.TrendFinding
	Anomalies    []findings.AnomalyFinding
	Correlations []findings.CorrelationFinding
}

// concentrationShare is the segment share above which a leader is reported.
const concentrationShare = 0.5

// adequateSample is the count at which a growth figure gets full confidence.
const adequateSample = 30

// Synthesize turns findings into ranked insights. Each finding yields at
// most one insight; findings whose class has no rule are dropped. The output
// depends only on the inputs.
func Synthesize(in Inputs, cfg Config) []insight.Insight {
	var out []insight.Insight
	emit := func(ins insight.Insight, ok bool) {
		if ok {
			out = append(out, ins)
		}
	}

	for _, p := range in.Profiles {
		emit(fromMissingRate(p, cfg))
	}
	for _, s := range in.Summaries.Overall {
		emit(fromGrowth(s, in.Profiles, cfg))
	}
	for _, ins := range fromConcentration(in.Summaries) {
		emit(ins, true)
	}
	for _, t := range in.Trends {
		emit(fromTrend(t, cfg))
	}
	for _, a := range in.Anomalies {
		emit(fromAnomaly(a, cfg))
	}
	for _, c := range in.Correlations {
		emit(fromCorrelation(c))
	}

	out = dedupe(out)
	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Severity.Rank(), out[j].Severity.Rank(); ri != rj {
			return ri > rj
		}
		return out[i].Confidence > out[j].Confidence
	})
	if cfg.MaxInsights > 0 && len(out) > cfg.MaxInsights {
		out = out[:cfg.MaxInsights]
	}
	return out
}

// SeverityFor maps a confidence onto a severity level.
func SeverityFor(confidence float64, cfg Config) insight.Severity {
	switch {
	case confidence >= cfg.SeverityHigh:
		return insight.SeverityHigh
	case confidence >= cfg.SeverityMedium:
		return insight.SeverityMedium
	default:
		return insight.SeverityLow
	}
}

func fromTrend(t findings.TrendFinding, cfg Config) (insight.Insight, bool) {
	if t.Direction == findings.Flat || t.Confidence < cfg.MinTrendConfidence {
		return insight.Insight{}, false
	}
	variant := VariantIncreasing
	if t.Direction == findings.Decreasing {
		variant = VariantDecreasing
	}
	if t.SeasonalityPeriod > 0 {
		variant += "_seasonal"
	}
	params := map[string]string{
		"column":  semantic.DisplayName(t.Column),
		"slope":   formatNumber(math.Abs(t.Slope)),
		"unit":    unitOf(string(t.Granularity)),
		"buckets": strconv.Itoa(t.Buckets),
		"period":  strconv.Itoa(t.SeasonalityPeriod),
	}
	return build(insight.CategoryTrend, SeverityFor(t.Confidence, cfg), variant, t.Confidence, t.Key(), params)
}

// anomalySeverity rescales the score above the gate onto [0,1] before
// applying the confidence thresholds, then raises findings that more than
// one method agreed on.
func anomalySeverity(a findings.AnomalyFinding, cfg Config) insight.Severity {
	margin := 1.0
	if cfg.MinAnomalyScore < 1 {
		margin = numeric.Clamp((a.Score-cfg.MinAnomalyScore)/(1-cfg.MinAnomalyScore), 0, 1)
	}
	sev := SeverityFor(margin, cfg)
	if len(a.Methods) > 1 {
		sev = sev.Raise()
	}
	return sev
}

func fromAnomaly(a findings.AnomalyFinding, cfg Config) (insight.Insight, bool) {
	if a.Score < cfg.MinAnomalyScore || len(a.Columns) == 0 {
		return insight.Insight{}, false
	}
	first := a.Columns[0]
	value, expected := a.Values[first], a.Expected[first]
	variant := VariantHighValue
	if value < expected {
		variant = VariantLowValue
	}
	names := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		names[i] = semantic.DisplayName(c)
	}
	record := "record #" + strconv.Itoa(a.Row+1)
	if a.RowLabel != "" {
		record = "record " + a.RowLabel
	}
	params := map[string]string{
		"column":   strings.Join(names, " and "),
		"record":   record,
		"value":    formatNumber(value),
		"expected": formatNumber(expected),
	}
	return build(insight.CategoryAnomaly, anomalySeverity(a, cfg), variant, a.Score, a.Key(), params)
}

// correlationSeverity follows strength; small samples are held at low.
func correlationSeverity(c findings.CorrelationFinding) insight.Severity {
	switch {
	case c.LowConfidence:
		return insight.SeverityLow
	case c.Strength == findings.Strong:
		return insight.SeverityHigh
	default:
		return insight.SeverityMedium
	}
}

func fromCorrelation(c findings.CorrelationFinding) (insight.Insight, bool) {
	if c.Strength.Rank() < findings.Moderate.Rank() {
		return insight.Insight{}, false
	}
	variant := string(c.Strength) + "_" + string(c.Sign)
	params := map[string]string{
		"a":              semantic.DisplayName(c.ColumnA),
		"b":              semantic.DisplayName(c.ColumnB),
		"interpretation": c.Interpretation,
		"r":              strconv.FormatFloat(c.Coefficient, 'f', 2, 64),
		"n":              strconv.Itoa(c.SampleSize),
	}
	return build(insight.CategoryCorrelation, correlationSeverity(c), variant, math.Abs(c.Coefficient), c.Key(), params)
}

// growthSeverity grades the size of a period-over-period change.
func growthSeverity(g float64) insight.Severity {
	switch g = math.Abs(g); {
	case g >= 0.5:
		return insight.SeverityHigh
	case g >= 0.25:
		return insight.SeverityMedium
	default:
		return insight.SeverityLow
	}
}

func fromGrowth(s findings.StatisticalSummary, profiles []profile.ColumnProfile, cfg Config) (insight.Insight, bool) {
	if s.GrowthRate == nil || math.Abs(*s.GrowthRate) < cfg.GrowthMateriality {
		return insight.Insight{}, false
	}
	g := *s.GrowthRate
	variant := VariantGrowth
	if g < 0 {
		variant = VariantDecline
	}
	completeness := 1.0
	for _, p := range profiles {
		if p.Name == s.Column {
			completeness = 1 - p.MissingRate
		}
	}
	confidence := completeness * math.Min(1, float64(s.Count)/adequateSample)
	params := map[string]string{
		"column": semantic.DisplayName(s.Column),
		"pct":    formatPercent(g),
		"unit":   unitOf(s.GrowthPeriod),
	}
	return build(insight.CategorySummary, growthSeverity(g), variant, confidence, "growth:"+s.Column, params)
}

func fromMissingRate(p profile.ColumnProfile, cfg Config) (insight.Insight, bool) {
	if p.RowCount == 0 || p.MissingRate <= cfg.HighMissingRate {
		return insight.Insight{}, false
	}
	sev := insight.SeverityMedium
	if p.MissingRate > 0.5 {
		sev = insight.SeverityHigh
	}
	params := map[string]string{
		"column": semantic.DisplayName(p.Name),
		"pct":    formatPercent(p.MissingRate),
	}
	return build(insight.CategorySummary, sev, VariantMissingData, 1, "missing:"+p.Name, params)
}

// fromConcentration reports, per additive column, a segment holding more
// than half of the total.
func fromConcentration(s findings.Summaries) []insight.Insight {
	if s.SegmentBy == "" || len(s.Segments) == 0 {
		return nil
	}
	var out []insight.Insight
	for _, overall := range s.Overall {
		switch semantic.ConceptOf(overall.Column) {
		case semantic.ConceptRevenue, semantic.ConceptSpend, semantic.ConceptQuantity, semantic.ConceptOrders:
		default:
			continue
		}
		var (
			total, best float64
			leader      string
			segments    int
			negative    bool
		)
		for _, seg := range s.Segments {
			if seg.Column != overall.Column {
				continue
			}
			segments++
			total += seg.Sum
			negative = negative || seg.Sum < 0
			if seg.Sum > best {
				best, leader = seg.Sum, seg.SegmentValue
			}
		}
		if negative || segments < 2 || total <= 0 {
			continue
		}
		share := best / total
		if share <= concentrationShare {
			continue
		}
		params := map[string]string{
			"column":     semantic.DisplayName(overall.Column),
			"segment":    leader,
			"segment_by": semantic.DisplayName(s.SegmentBy),
			"segments":   strconv.Itoa(segments),
			"pct":        formatPercent(share),
		}
		key := "segment:" + s.SegmentBy + ":" + overall.Column
		if ins, ok := build(insight.CategorySummary, insight.SeverityMedium, VariantConcentration, share, key, params); ok {
			out = append(out, ins)
		}
	}
	return out
}

func build(cat insight.Category, sev insight.Severity, variant string, confidence float64, key string, params map[string]string) (insight.Insight, bool) {
	rule, ok := Lookup(cat, sev, variant)
	if !ok {
		return insight.Insight{}, false
	}
	statement := render(rule.Template, params)
	actions := make([]string, len(rule.Actions))
	for i, a := range rule.Actions {
		actions[i] = render(a, params)
	}
	return insight.Insight{
		ID:         core.HashParts(rule.ID, key, statement).Short(16),
		Category:   cat,
		Severity:   sev,
		Title:      render(rule.Title, params),
		Statement:  statement,
		Actions:    actions,
		Confidence: numeric.Round(numeric.Clamp(confidence, 0, 1), 4),
		Source:     insight.SourceRef{Category: cat, Key: key},
		RuleID:     rule.ID,
	}, true
}

// dedupe merges insights whose statements match after normalization. The
// merged insight keeps the first-seen position and the most confident source.
func dedupe(in []insight.Insight) []insight.Insight {
	seen := make(map[string]int, len(in))
	out := make([]insight.Insight, 0, len(in))
	for _, ins := range in {
		key := normalizeStatement(ins.Statement)
		if i, ok := seen[key]; ok {
			if ins.Confidence > out[i].Confidence {
				out[i] = ins
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, ins)
	}
	return out
}

func normalizeStatement(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func unitOf(granularity string) string {
	switch findings.Granularity(granularity) {
	case findings.Weekly:
		return "week"
	case findings.Monthly:
		return "month"
	default:
		return "day"
	}
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(numeric.Round(x, 2), 'f', -1, 64)
}

func formatPercent(x float64) string {
	return fmt.Sprintf("%.1f%%", 100*math.Abs(x))
}
