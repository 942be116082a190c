package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"olynk/adapters/excel"
	"olynk/domain/core"
	"olynk/internal/engine"
)

// Format of an exported report.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

// Formats lists every supported export format.
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatHTML, FormatXLSX}

// ParseFormat accepts a format name or a file path with a known extension.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(name); ext != "" {
		name = ext[1:]
	}
	switch name {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: export format %q", core.ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Write renders report in format to w.
func Write(w io.Writer, format Format, report *engine.Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatCSV:
		return WriteInsightsCSV(w, report)
	case FormatMarkdown:
		_, err := w.Write(Markdown(report))
		return err
	case FormatHTML:
		_, err := w.Write(HTML(report))
		return err
	case FormatXLSX:
		return excel.WriteWorkbook(report, w)
	}
	return fmt.Errorf("%w: export format %q", core.ErrUnsupportedFormat, format)
}
