package profile

import (
	"olynk/domain/dataset"
)

// Frame is the typed, column-major view of a dataset after profiling. Every
// cell has been coerced to its column's type, so consumers switch on
// Value.Kind instead of re-parsing text.
type Frame struct {
	Profiles []ColumnProfile
	// Cells[col][row]
	Cells [][]dataset.Value
	Rows  int
}

// IsEmpty reports whether the frame has no rows or no columns.
func (f *Frame) IsEmpty() bool {
	return f == nil || f.Rows == 0 || len(f.Profiles) == 0
}

// Columns returns column names in display order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.Profiles))
	for i, p := range f.Profiles {
		out[i] = p.Name
	}
	return out
}

// Index returns the position of a column, or -1.
func (f *Frame) Index(name string) int {
	for i, p := range f.Profiles {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// NumericColumns returns the positions of analyzable numeric columns.
func (f *Frame) NumericColumns() []int {
	var out []int
	for i, p := range f.Profiles {
		if p.IsNumeric() {
			out = append(out, i)
		}
	}
	return out
}

// DateColumn picks the time axis: the named column when it is a date,
// otherwise the first date column in display order.
func (f *Frame) DateColumn(preferred string) (int, bool) {
	if preferred != "" {
		if i := f.Index(preferred); i >= 0 && f.Profiles[i].Type == TypeDate {
			return i, true
		}
	}
	for i, p := range f.Profiles {
		if p.Type == TypeDate {
			return i, true
		}
	}
	return -1, false
}

// IdentifierColumn returns the first identifier column, if any.
func (f *Frame) IdentifierColumn() (int, bool) {
	for i, p := range f.Profiles {
		if p.Type == TypeIdentifier {
			return i, true
		}
	}
	return -1, false
}

// Floats returns the column's numeric payloads with a presence mask.
func (f *Frame) Floats(col int) ([]float64, []bool) {
	vals := make([]float64, f.Rows)
	ok := make([]bool, f.Rows)
	for r, v := range f.Cells[col] {
		vals[r], ok[r] = v.Float()
	}
	return vals, ok
}

// Present returns only the non-missing numeric payloads, in row order.
func (f *Frame) Present(col int) []float64 {
	out := make([]float64, 0, f.Rows)
	for _, v := range f.Cells[col] {
		if x, ok := v.Float(); ok {
			out = append(out, x)
		}
	}
	return out
}
