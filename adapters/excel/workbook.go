package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"olynk/domain/findings"
	"olynk/internal/engine"
)

// Sheet names of an exported report workbook.
const (
	SheetInsights     = "Insights"
	SheetSummary      = "Summary"
	SheetTrends       = "Trends"
	SheetAnomalies    = "Anomalies"
	SheetCorrelations = "Correlations"
	SheetProfiles     = "Profiles"
)

// WriteWorkbook renders a report as an .xlsx workbook with one sheet per
// finding kind.
func WriteWorkbook(report *engine.Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInsights); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, s := range []string{SheetSummary, SheetTrends, SheetAnomalies, SheetCorrelations, SheetProfiles} {
		if _, err := f.NewSheet(s); err != nil {
			return fmt.Errorf("create sheet %s: %w", s, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{SheetInsights, []interface{}{"Severity", "Category", "Title", "Statement", "Actions", "Confidence", "Source"}, insightRows(report)},
		{SheetSummary, []interface{}{"Column", "Segment", "Count", "Missing", "Sum", "Mean", "Median", "Std Dev", "Min", "Max", "P25", "P75", "P90", "Growth"}, summaryRows(report)},
		{SheetTrends, []interface{}{"Column", "Granularity", "Buckets", "Direction", "Slope", "Confidence", "Seasonality"}, trendRows(report)},
		{SheetAnomalies, []interface{}{"Row", "Label", "Columns", "Score", "Methods"}, anomalyRows(report)},
		{SheetCorrelations, []interface{}{"Column A", "Column B", "r", "n", "p-value", "Strength", "Interpretation"}, correlationRows(report)},
		{SheetProfiles, []interface{}{"Column", "Type", "Missing Rate", "Cardinality", "Quality"}, profileRows(report)},
	}
	for _, s := range sheets {
		if err := writeTable(f, s.name, s.header, s.rows, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func insightRows(r *engine.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Insights))
	for _, ins := range r.Insights {
		rows = append(rows, []interface{}{
			string(ins.Severity), string(ins.Category), ins.Title, ins.Statement,
			strings.Join(ins.Actions, "; "), ins.Confidence, ins.Source.Key,
		})
	}
	return rows
}

func summaryRows(r *engine.Report) [][]interface{} {
	all := append(append([]findings.StatisticalSummary{}, r.Summaries.Overall...), r.Summaries.Segments...)
	rows := make([][]interface{}, 0, len(all))
	for _, s := range all {
		segment := ""
		if s.SegmentBy != "" {
			segment = s.SegmentBy + "=" + s.SegmentValue
		}
		var growth interface{}
		if s.GrowthRate != nil {
			growth = *s.GrowthRate
		}
		rows = append(rows, []interface{}{
			s.Column, segment, s.Count, s.Missing, s.Sum, s.Mean, s.Median, s.StdDev,
			s.Min, s.Max, s.P25, s.P75, s.P90, growth,
		})
	}
	return rows
}

func trendRows(r *engine.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Trends))
	for _, t := range r.Trends {
		rows = append(rows, []interface{}{
			t.Column, string(t.Granularity), t.Buckets, string(t.Direction), t.Slope, t.Confidence, t.SeasonalityPeriod,
		})
	}
	return rows
}

func anomalyRows(r *engine.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Anomalies))
	for _, a := range r.Anomalies {
		methods := make([]string, len(a.Methods))
		for i, m := range a.Methods {
			methods[i] = string(m)
		}
		rows = append(rows, []interface{}{a.Row, a.RowLabel, a.ColumnKey(), a.Score, strings.Join(methods, ",")})
	}
	return rows
}

func correlationRows(r *engine.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Correlations))
	for _, c := range r.Correlations {
		rows = append(rows, []interface{}{
			c.ColumnA, c.ColumnB, c.Coefficient, c.SampleSize, c.PValue, string(c.Strength), c.Interpretation,
		})
	}
	return rows
}

func profileRows(r *engine.Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Profiles))
	for _, p := range r.Profiles {
		rows = append(rows, []interface{}{p.Name, string(p.Type), p.MissingRate, p.Cardinality, p.QualityScore})
	}
	return rows
}
