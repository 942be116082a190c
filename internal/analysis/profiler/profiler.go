// Package profiler infers column types and data-quality metrics, and
// resolves raw cells into typed values once for every downstream module.
package profiler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"olynk/domain/dataset"
	"olynk/domain/profile"
)

// Config controls type inference.
type Config struct {
	// TypeThreshold is the share of non-missing cells that must parse
	// for a column to take that type.
	TypeThreshold float64
	// CategoricalRatio is the maximum distinct/non-missing ratio for a
	// categorical column.
	CategoricalRatio      float64
	MaxCategories         int
	IdentifierUniqueRatio float64
}

// DefaultConfig returns the profiler defaults.
func DefaultConfig() Config {
	return Config{
		TypeThreshold:         0.8,
		CategoricalRatio:      0.5,
		MaxCategories:         100,
		IdentifierUniqueRatio: 0.95,
	}
}

const topValuesLimit = 5

var (
	identifierName  = regexp.MustCompile(`(?i)^(id|sku|uuid|guid|index|key)$|[_\s-](id|sku|key|no|number|uuid)$|^(id|sku|uuid)[_\s-]`)
	camelIdentifier = regexp.MustCompile(`[a-z](Id|ID)$`)
)

func looksLikeIdentifier(name string) bool {
	name = strings.TrimSpace(name)
	return identifierName.MatchString(name) || camelIdentifier.MatchString(name)
}

// Profile infers one ColumnProfile per column. It never fails: a column
// that parses as nothing degrades to text.
func Profile(ds *dataset.Dataset, cfg Config) []profile.ColumnProfile {
	return Build(ds, cfg).Profiles
}

// Build profiles the dataset and resolves every cell to its column's type.
// Cells that do not parse as the column type become Missing.
func Build(ds *dataset.Dataset, cfg Config) *profile.Frame {
	frame := &profile.Frame{Rows: len(ds.Rows)}
	if len(ds.Columns) == 0 {
		frame.Rows = 0
		return frame
	}
	frame.Profiles = make([]profile.ColumnProfile, len(ds.Columns))
	frame.Cells = make([][]dataset.Value, len(ds.Columns))
	for i, name := range ds.Columns {
		p, cells := profileColumn(i, name, ds.Column(name), cfg)
		frame.Profiles[i] = p
		frame.Cells[i] = cells
	}
	return frame
}

type tally struct {
	missing  int
	numeric  int
	date     int
	boolean  int
	counts   map[string]int
	nonEmpty int
}

func profileColumn(index int, name string, raw []dataset.Value, cfg Config) (profile.ColumnProfile, []dataset.Value) {
	t := tally{counts: make(map[string]int)}
	for _, v := range raw {
		s, missing := rawText(v)
		if missing {
			t.missing++
			continue
		}
		t.nonEmpty++
		t.counts[s]++
		if _, ok := parseNumeric(v); ok {
			t.numeric++
		}
		if _, ok := parseDate(v); ok {
			t.date++
		}
		if _, ok := parseBoolean(v); ok {
			t.boolean++
		}
	}

	p := profile.ColumnProfile{
		Name:         name,
		Index:        index,
		RowCount:     len(raw),
		MissingCount: t.missing,
		Cardinality:  len(t.counts),
	}
	if p.RowCount > 0 {
		p.MissingRate = float64(t.missing) / float64(p.RowCount)
	}
	if t.nonEmpty > 0 {
		p.UniqueRatio = float64(p.Cardinality) / float64(t.nonEmpty)
	}

	p.Type, p.ParseRatio = inferType(t, cfg)
	if p.Type != profile.TypeDate && p.Type != profile.TypeBoolean &&
		looksLikeIdentifier(name) && t.nonEmpty > 0 &&
		p.UniqueRatio >= cfg.IdentifierUniqueRatio {
		p.Type = profile.TypeIdentifier
		p.ParseRatio = 1
	}

	cells := resolve(raw, p.Type)
	describe(&p, cells)
	p.QualityScore = (1 - p.MissingRate) * p.ParseRatio
	return p, cells
}

func inferType(t tally, cfg Config) (profile.ColumnType, float64) {
	if t.nonEmpty == 0 {
		return profile.TypeText, 0
	}
	n := float64(t.nonEmpty)
	ratios := []struct {
		typ   profile.ColumnType
		ratio float64
	}{
		{profile.TypeNumeric, float64(t.numeric) / n},
		{profile.TypeDate, float64(t.date) / n},
		{profile.TypeBoolean, float64(t.boolean) / n},
	}
	for _, r := range ratios {
		if r.ratio >= cfg.TypeThreshold {
			return r.typ, r.ratio
		}
	}
	if float64(len(t.counts))/n < cfg.CategoricalRatio && len(t.counts) <= cfg.MaxCategories {
		return profile.TypeCategorical, 1
	}
	return profile.TypeText, 1
}

func resolve(raw []dataset.Value, typ profile.ColumnType) []dataset.Value {
	cells := make([]dataset.Value, len(raw))
	for r, v := range raw {
		s, missing := rawText(v)
		if missing {
			cells[r] = dataset.Missing()
			continue
		}
		switch typ {
		case profile.TypeNumeric:
			if f, ok := parseNumeric(v); ok {
				cells[r] = dataset.Numeric(f)
			}
		case profile.TypeDate:
			if d, ok := parseDate(v); ok {
				cells[r] = dataset.Date(d)
			}
		case profile.TypeBoolean:
			if b, ok := parseBoolean(v); ok {
				cells[r] = dataset.Boolean(b)
			}
		default:
			cells[r] = dataset.Text(s)
		}
	}
	return cells
}

func describe(p *profile.ColumnProfile, cells []dataset.Value) {
	switch p.Type {
	case profile.TypeNumeric:
		first := true
		var lo, hi float64
		for _, v := range cells {
			f, ok := v.Float()
			if !ok {
				continue
			}
			if first || f < lo {
				lo = f
			}
			if first || f > hi {
				hi = f
			}
			first = false
		}
		if !first {
			p.Min, p.Max = &lo, &hi
		}
	case profile.TypeDate:
		var lo, hi time.Time
		for _, v := range cells {
			d, ok := v.Time()
			if !ok {
				continue
			}
			if lo.IsZero() || d.Before(lo) {
				lo = d
			}
			if hi.IsZero() || d.After(hi) {
				hi = d
			}
		}
		if !lo.IsZero() {
			p.Earliest, p.Latest = &lo, &hi
		}
	case profile.TypeCategorical, profile.TypeBoolean:
		p.TopValues = topValues(cells)
	}
}

// topValues counts resolved values so that "Yes" and "yes" in a boolean
// column land in the same bucket.
func topValues(cells []dataset.Value) []profile.ValueCount {
	counts := make(map[string]int)
	for _, v := range cells {
		if v.IsMissing() {
			continue
		}
		counts[v.String()]++
	}
	out := make([]profile.ValueCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, profile.ValueCount{Value: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > topValuesLimit {
		out = out[:topValuesLimit]
	}
	return out
}

// Quality rolls column scores up to a dataset score and lists the issues a
// reviewer should look at.
func Quality(profiles []profile.ColumnProfile) profile.DataQuality {
	if len(profiles) == 0 {
		return profile.DataQuality{}
	}
	var q profile.DataQuality
	var total float64
	for _, p := range profiles {
		total += p.QualityScore
		switch {
		case p.RowCount > 0 && p.MissingCount == p.RowCount:
			q.Issues = append(q.Issues, fmt.Sprintf("column %q has no values", p.Name))
		case p.MissingRate > HighMissingRate:
			q.Issues = append(q.Issues, fmt.Sprintf("column %q is %.0f%% empty", p.Name, p.MissingRate*100))
		}
		if p.ParseRatio > 0 && p.ParseRatio < 1 {
			q.Issues = append(q.Issues, fmt.Sprintf("column %q has %.0f%% values that do not match type %s",
				p.Name, (1-p.ParseRatio)*100, p.Type))
		}
	}
	q.Score = total / float64(len(profiles))
	return q
}

// HighMissingRate is the share of empty cells above which a column is
// reported as a data-quality issue.
const HighMissingRate = 0.2
