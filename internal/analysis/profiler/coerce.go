package profiler

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"olynk/domain/dataset"
)

var missingTokens = map[string]struct{}{
	"na":   {},
	"n/a":  {},
	"null": {},
	"-":    {},
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006-01",
}

var thousandsGroups = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// rawText returns the trimmed text of a cell and whether the cell is
// missing. Non-text cells are rendered with Value.String.
func rawText(v dataset.Value) (string, bool) {
	if v.IsMissing() {
		return "", true
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return "", true
	}
	if _, ok := missingTokens[strings.ToLower(s)]; ok {
		return "", true
	}
	return s, false
}

// parseNumeric accepts plain numbers plus the business formats seen in
// exports: currency symbols, thousands separators, percent signs and
// accounting negatives such as (1,200.50).
func parseNumeric(v dataset.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	s, ok := v.Str()
	if !ok {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}
	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "INR", "₹"} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))

	switch {
	case thousandsGroups.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		// European decimal comma: 12,5
		s = strings.Replace(s, ",", ".", 1)
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// European grouping: 1.234,56
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	if strings.ContainsAny(s, " \t") {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

func parseDate(v dataset.Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	s, ok := v.Str()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseBoolean only accepts words; 0/1 columns stay numeric.
func parseBoolean(v dataset.Value) (bool, bool) {
	if b, ok := v.Bool(); ok {
		return b, true
	}
	s, ok := v.Str()
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y":
		return true, true
	case "false", "no", "n":
		return false, true
	}
	return false, false
}
