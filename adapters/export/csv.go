package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"olynk/internal/engine"
)

// WriteInsightsCSV writes one row per insight.
func WriteInsightsCSV(w io.Writer, r *engine.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "severity", "category", "title", "statement", "actions", "confidence", "source"}); err != nil {
		return err
	}
	for i, ins := range r.Insights {
		if err := cw.Write([]string{
			strconv.Itoa(i + 1),
			string(ins.Severity),
			string(ins.Category),
			ins.Title,
			ins.Statement,
			strings.Join(ins.Actions, "; "),
			strconv.FormatFloat(ins.Confidence, 'f', 4, 64),
			ins.Source.Key,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
