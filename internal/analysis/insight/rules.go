package insight

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"olynk/domain/insight"
)

// Variants name the shape of a finding within its category.
const (
	VariantIncreasing         = "increasing"
	VariantDecreasing         = "decreasing"
	VariantIncreasingSeasonal = "increasing_seasonal"
	VariantDecreasingSeasonal = "decreasing_seasonal"

	VariantHighValue = "high_value"
	VariantLowValue  = "low_value"

	VariantStrongPositive   = "strong_positive"
	VariantStrongNegative   = "strong_negative"
	VariantModeratePositive = "moderate_positive"
	VariantModerateNegative = "moderate_negative"

	VariantGrowth        = "growth"
	VariantDecline       = "decline"
	VariantMissingData   = "missing_data"
	VariantConcentration = "segment_concentration"
)

// Rule maps one (category, severity, variant) class to its phrasing.
// Template and Actions use {placeholders} filled from the finding.
type Rule struct {
	ID       string
	Category insight.Category
	Severity insight.Severity
	Variant  string
	Title    string
	Template string
	Actions  []string
}

type ruleKey struct {
	category insight.Category
	severity insight.Severity
	variant  string
}

const (
	high   = insight.SeverityHigh
	medium = insight.SeverityMedium
	low    = insight.SeverityLow

	trendCat = insight.CategoryTrend
	anomCat  = insight.CategoryAnomaly
	corrCat  = insight.CategoryCorrelation
	sumCat   = insight.CategorySummary
)

var rules = []Rule{
	// Trends
	{"trend.up.high", trendCat, high, VariantIncreasing, "{column} is growing steadily",
		"{column} is rising by about {slope} per {unit} across {buckets} {unit}s of data",
		[]string{"Maintain current growth strategies - momentum is strong", "Plan stock and staffing for continued growth in {column}"}},
	{"trend.up.medium", trendCat, medium, VariantIncreasing, "{column} is trending up",
		"{column} is trending up by about {slope} per {unit}, with some variation between {unit}s",
		[]string{"Focus on customer retention and upselling to build on the upward trend in {column}"}},
	{"trend.up.low", trendCat, low, VariantIncreasing, "{column} may be edging up",
		"{column} shows a modest upward drift of about {slope} per {unit}",
		[]string{"Keep monitoring {column} before committing to growth plans"}},
	{"trend.down.high", trendCat, high, VariantDecreasing, "{column} is declining steadily",
		"{column} is falling by about {slope} per {unit} across {buckets} {unit}s of data",
		[]string{"Investigate declining {column} - consider promotional campaigns", "Review pricing and demand drivers behind the drop in {column}"}},
	{"trend.down.medium", trendCat, medium, VariantDecreasing, "{column} is trending down",
		"{column} is trending down by about {slope} per {unit}, with some variation between {unit}s",
		[]string{"Investigate declining {column} - consider promotional campaigns"}},
	{"trend.down.low", trendCat, low, VariantDecreasing, "{column} may be slipping",
		"{column} shows a modest downward drift of about {slope} per {unit}",
		[]string{"Keep monitoring {column} for a sustained decline"}},
	{"trend.up.seasonal.high", trendCat, high, VariantIncreasingSeasonal, "{column} is growing with a repeating cycle",
		"{column} is rising by about {slope} per {unit} and repeats a {period}-{unit} cycle",
		[]string{"Maintain current growth strategies - momentum is strong", "Plan inventory and marketing around the {period}-{unit} cycle"}},
	{"trend.up.seasonal.medium", trendCat, medium, VariantIncreasingSeasonal, "{column} is trending up with a repeating cycle",
		"{column} is trending up by about {slope} per {unit} and repeats a {period}-{unit} cycle",
		[]string{"Plan inventory and marketing around the {period}-{unit} cycle"}},
	{"trend.up.seasonal.low", trendCat, low, VariantIncreasingSeasonal, "{column} follows a repeating cycle",
		"{column} repeats a {period}-{unit} cycle with a slight upward drift",
		[]string{"Plan inventory and marketing around the {period}-{unit} cycle"}},
	{"trend.down.seasonal.high", trendCat, high, VariantDecreasingSeasonal, "{column} is declining with a repeating cycle",
		"{column} is falling by about {slope} per {unit} and repeats a {period}-{unit} cycle",
		[]string{"Investigate declining {column} - consider promotional campaigns", "Time promotions to the low points of the {period}-{unit} cycle"}},
	{"trend.down.seasonal.medium", trendCat, medium, VariantDecreasingSeasonal, "{column} is trending down with a repeating cycle",
		"{column} is trending down by about {slope} per {unit} and repeats a {period}-{unit} cycle",
		[]string{"Time promotions to the low points of the {period}-{unit} cycle"}},
	{"trend.down.seasonal.low", trendCat, low, VariantDecreasingSeasonal, "{column} follows a repeating cycle",
		"{column} repeats a {period}-{unit} cycle with a slight downward drift",
		[]string{"Plan inventory and marketing around the {period}-{unit} cycle"}},

	// Anomalies
	{"anomaly.high_value.high", anomCat, high, VariantHighValue, "Unusually high {column}",
		"{record} has an unusually high {column} of {value} against a typical {expected}",
		[]string{"Verify {record} before it feeds reporting or forecasts", "Review anomalous orders for potential fraud or data quality issues"}},
	{"anomaly.high_value.medium", anomCat, medium, VariantHighValue, "High {column} outlier",
		"{record} has a high {column} of {value} against a typical {expected}",
		[]string{"Review anomalous orders for potential fraud or data quality issues"}},
	{"anomaly.high_value.low", anomCat, low, VariantHighValue, "Possible high {column} outlier",
		"{record} may have an unusually high {column} of {value}",
		[]string{"Spot-check {record} for entry errors"}},
	{"anomaly.low_value.high", anomCat, high, VariantLowValue, "Unusually low {column}",
		"{record} has an unusually low {column} of {value} against a typical {expected}",
		[]string{"Verify {record} before it feeds reporting or forecasts", "Check whether {record} reflects a refund, return or entry error"}},
	{"anomaly.low_value.medium", anomCat, medium, VariantLowValue, "Low {column} outlier",
		"{record} has a low {column} of {value} against a typical {expected}",
		[]string{"Check whether {record} reflects a refund, return or entry error"}},
	{"anomaly.low_value.low", anomCat, low, VariantLowValue, "Possible low {column} outlier",
		"{record} may have an unusually low {column} of {value}",
		[]string{"Spot-check {record} for entry errors"}},

	// Correlations
	{"correlation.strong_positive.high", corrCat, high, VariantStrongPositive, "{a} moves with {b}",
		"{interpretation} (r = {r} across {n} rows)",
		[]string{"Use {a} as a leading indicator when planning {b}"}},
	{"correlation.strong_positive.low", corrCat, low, VariantStrongPositive, "{a} may move with {b}",
		"{interpretation} in this small sample (r = {r} across {n} rows)",
		[]string{"Collect more data before relying on the link between {a} and {b}"}},
	{"correlation.strong_negative.high", corrCat, high, VariantStrongNegative, "{a} moves against {b}",
		"{interpretation} (r = {r} across {n} rows)",
		[]string{"Test whether raising {b} is eroding {a}", "Balance {b} targets against their effect on {a}"}},
	{"correlation.strong_negative.low", corrCat, low, VariantStrongNegative, "{a} may move against {b}",
		"{interpretation} in this small sample (r = {r} across {n} rows)",
		[]string{"Collect more data before relying on the link between {a} and {b}"}},
	{"correlation.moderate_positive.medium", corrCat, medium, VariantModeratePositive, "{a} is linked to {b}",
		"{interpretation} (r = {r} across {n} rows)",
		[]string{"Explore campaigns that lift {a} and {b} together"}},
	{"correlation.moderate_positive.low", corrCat, low, VariantModeratePositive, "{a} may be linked to {b}",
		"{interpretation} in this small sample (r = {r} across {n} rows)",
		[]string{"Collect more data before relying on the link between {a} and {b}"}},
	{"correlation.moderate_negative.medium", corrCat, medium, VariantModerateNegative, "{a} trades off against {b}",
		"{interpretation} (r = {r} across {n} rows)",
		[]string{"Review whether pushing {b} is costing {a}"}},
	{"correlation.moderate_negative.low", corrCat, low, VariantModerateNegative, "{a} may trade off against {b}",
		"{interpretation} in this small sample (r = {r} across {n} rows)",
		[]string{"Collect more data before relying on the link between {a} and {b}"}},

	// Summaries
	{"summary.growth.high", sumCat, high, VariantGrowth, "{column} grew sharply",
		"{column} grew {pct} from the first to the latest {unit}",
		[]string{"Maintain current growth strategies - momentum is strong", "Check capacity and stock can keep up with {column}"}},
	{"summary.growth.medium", sumCat, medium, VariantGrowth, "{column} grew",
		"{column} grew {pct} from the first to the latest {unit}",
		[]string{"Focus on customer retention and upselling to sustain growth in {column}"}},
	{"summary.growth.low", sumCat, low, VariantGrowth, "{column} grew slightly",
		"{column} grew {pct} from the first to the latest {unit}",
		[]string{"Keep monitoring {column} for a sustained change"}},
	{"summary.decline.high", sumCat, high, VariantDecline, "{column} dropped sharply",
		"{column} fell {pct} from the first to the latest {unit}",
		[]string{"Investigate declining {column} - consider promotional campaigns", "Implement customer re-engagement campaigns"}},
	{"summary.decline.medium", sumCat, medium, VariantDecline, "{column} dropped",
		"{column} fell {pct} from the first to the latest {unit}",
		[]string{"Investigate declining {column} - consider promotional campaigns"}},
	{"summary.decline.low", sumCat, low, VariantDecline, "{column} dipped",
		"{column} fell {pct} from the first to the latest {unit}",
		[]string{"Keep monitoring {column} for a sustained change"}},
	{"summary.missing_data.high", sumCat, high, VariantMissingData, "{column} is mostly empty",
		"{column} is missing {pct} of its values",
		[]string{"Fix collection of {column} at the source before relying on it", "Exclude {column} from reports until it is filled in"}},
	{"summary.missing_data.medium", sumCat, medium, VariantMissingData, "{column} has gaps",
		"{column} is missing {pct} of its values",
		[]string{"Fix collection of {column} at the source before relying on it"}},
	{"summary.segment_concentration.medium", sumCat, medium, VariantConcentration, "{segment} dominates {column}",
		"{segment} accounts for {pct} of total {column} across {segments} {segment_by} values",
		[]string{"Diversify across {segment_by} values to reduce concentration risk"}},
}

var ruleIndex = func() map[ruleKey]Rule {
	idx := make(map[ruleKey]Rule, len(rules))
	for _, r := range rules {
		idx[ruleKey{r.Category, r.Severity, r.Variant}] = r
	}
	return idx
}()

// Rules returns a copy of the rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Lookup finds the rule for a class; a miss means the finding is omitted.
func Lookup(category insight.Category, severity insight.Severity, variant string) (Rule, bool) {
	r, ok := ruleIndex[ruleKey{category, severity, variant}]
	return r, ok
}

// render fills {placeholders}; unknown placeholders are left as-is.
func render(template string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", params[k])
	}
	return capitalize(strings.NewReplacer(pairs...).Replace(template))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
