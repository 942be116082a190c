package dataset

import (
	"fmt"
	"strings"

	"olynk/domain/core"
)

// Row maps column name to value.
type Row map[string]Value

// Dataset is one materialized upload: ordered column names plus rows. It is
// treated as immutable once handed to the engine.
type Dataset struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// New builds a dataset and checks the column-set invariant.
func New(name string, columns []string, rows []Row) (*Dataset, error) {
	ds := &Dataset{Name: name, Columns: columns, Rows: rows}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// FromRecords builds a dataset of raw text cells from a header and string
// records, the shape CSV and spreadsheet readers produce.
func FromRecords(name string, header []string, records [][]string) (*Dataset, error) {
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, core.NewContractError(core.ErrInconsistentColumns,
				fmt.Sprintf("record %d has %d cells, header has %d", i, len(rec), len(header)))
		}
		row := make(Row, len(header))
		for j, col := range header {
			row[col] = Text(rec[j])
		}
		rows = append(rows, row)
	}
	return New(name, header, rows)
}

// Validate enforces that column names are unique and every row carries
// exactly the dataset's column set.
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if _, dup := seen[c]; dup {
			return core.NewContractError(core.ErrDuplicateColumn, c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return core.NewContractError(core.ErrInconsistentColumns,
				fmt.Sprintf("row %d has %d columns, dataset has %d", i, len(row), len(d.Columns)))
		}
		for _, c := range d.Columns {
			if _, ok := row[c]; !ok {
				return core.NewContractError(core.ErrInconsistentColumns,
					fmt.Sprintf("row %d is missing column %q", i, c))
			}
		}
	}
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// IsEmpty reports whether there is nothing to analyze.
func (d *Dataset) IsEmpty() bool { return len(d.Rows) == 0 || len(d.Columns) == 0 }

// Column returns the values of one column in row order.
func (d *Dataset) Column(name string) []Value {
	out := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[name]
	}
	return out
}

// Fingerprint hashes the column order and every cell so identical uploads
// map to the same digest.
func (d *Dataset) Fingerprint() core.Hash {
	var b strings.Builder
	b.WriteString(strings.Join(d.Columns, "\x1f"))
	for _, row := range d.Rows {
		b.WriteByte('\n')
		for j, c := range d.Columns {
			if j > 0 {
				b.WriteByte('\x1f')
			}
			v := row[c]
			b.WriteString(v.Kind.String())
			b.WriteByte(':')
			b.WriteString(v.String())
		}
	}
	return core.NewHash([]byte(b.String()))
}
