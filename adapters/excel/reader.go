package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"olynk/domain/core"
	"olynk/domain/dataset"
	"olynk/internal"
	"olynk/internal/errors"
)

// Format is the container format of a tabular upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// DataReader reads Excel and CSV files into datasets of raw text cells.
// Typing is left to the profiler.
type DataReader struct {
	filePath string
	sheet    string
	maxRows  int
	logger   *internal.Logger
}

// NewDataReader creates a reader for a .csv or .xlsx file.
func NewDataReader(filePath string) *DataReader {
	return &DataReader{filePath: filePath, logger: internal.DefaultLogger.With("DataReader")}
}

// WithSheet selects a worksheet; the first sheet is read by default.
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// WithLogger replaces the package default logger.
func (r *DataReader) WithLogger(logger *internal.Logger) *DataReader {
	if logger != nil {
		r.logger = logger.With("DataReader")
	}
	return r
}

// WithMaxRows rejects inputs with more data rows than n; zero means no limit.
func (r *DataReader) WithMaxRows(n int) *DataReader {
	r.maxRows = n
	return r
}

// ReadData opens the file and reads it.
func (r *DataReader) ReadData() (*dataset.Dataset, error) {
	format, err := FormatOf(r.filePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InvalidInput(fmt.Sprintf("%s file not found: %s", strings.ToUpper(string(format)), r.filePath))
		}
		return nil, errors.Wrapf(err, "open %s", r.filePath)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	return r.Read(name, format, f)
}

// Read parses src in the given format. The first row is the header.
func (r *DataReader) Read(name string, format Format, src io.Reader) (*dataset.Dataset, error) {
	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(src)
	case FormatXLSX:
		rows, err = r.readSheet(src)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", strings.ToUpper(string(format)), float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, errors.Wrap(core.ErrEmptyInput, name)
	}
	if r.maxRows > 0 && len(rows)-1 > r.maxRows {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has %d rows, limit is %d", name, len(rows)-1, r.maxRows))
	}

	header := headers(rows[0])
	records := make([][]string, 0, len(rows)-1)
	wide, firstWide := 0, 0
	for i, row := range rows[1:] {
		if len(row) > len(header) && strings.TrimSpace(strings.Join(row[len(header):], "")) != "" {
			if wide == 0 {
				firstWide = i + 1
			}
			wide++
		}
		rec := make([]string, len(header))
		for j := range rec {
			if j < len(row) {
				rec[j] = strings.TrimSpace(row[j])
			}
		}
		records = append(records, rec)
	}
	if wide > 0 {
		r.logger.Warn("%s: %d rows have cells past the %d-column header, extra cells dropped (first at data row %d)", name, wide, len(header), firstWide)
	}

	ds, err := dataset.FromRecords(name, header, records)
	if err != nil {
		return nil, errors.ContractViolation(err)
	}
	r.logger.Info("%s processed (%d columns, %d rows)", name, len(header), len(records))
	return ds, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV: %w", err))
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}

func (r *DataReader) readSheet(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.ErrEmptyInput
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read sheet %q: %w", sheet, err))
	}
	return rows, nil
}

// headers trims names, fills blanks as column_N and suffixes repeats so
// every column name is unique.
func headers(row []string) []string {
	out := make([]string, len(row))
	seen := make(map[string]bool, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		base := h
		for n := 2; seen[h]; n++ {
			h = base + "_" + strconv.Itoa(n)
		}
		seen[h] = true
		out[i] = h
	}
	return out
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			out = append(out, row)
		}
	}
	return out
}
