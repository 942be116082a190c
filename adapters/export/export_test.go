package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olynk/domain/core"
	"olynk/domain/findings"
	"olynk/domain/insight"
	"olynk/domain/profile"
	"olynk/internal/engine"
)

func sampleReport() *engine.Report {
	growth := -0.125
	return &engine.Report{
		Dataset:     "sales",
		RowCount:    120,
		ColumnCount: 4,
		Quality:     profile.DataQuality{Score: 0.95, Issues: []string{"notes: 30% missing"}},
		Summaries: findings.Summaries{Overall: []findings.StatisticalSummary{
			{Column: "total_amount", Count: 120, Mean: 10, Median: 9, Min: 1, Max: 30, GrowthRate: &growth},
		}},
		Trends: []findings.TrendFinding{{Column: "total_amount", Granularity: findings.Weekly, Direction: findings.Increasing, Slope: 1.5, Confidence: 0.9}},
		Correlations: []findings.CorrelationFinding{{
			ColumnA: "quantity", ColumnB: "total_amount", Coefficient: 0.91, Strength: findings.Strong,
			Interpretation: "Quantity and Total Sales increase together",
		}},
		Insights: []insight.Insight{{
			ID: "abc", Severity: insight.SeverityHigh, Category: insight.CategoryTrend,
			Title: "Total Sales is growing steadily", Statement: "Total Sales is rising by about 1.5 per week",
			Actions: []string{"Maintain current growth strategies - momentum is strong"}, Confidence: 0.9,
			Source: insight.SourceRef{Category: insight.CategoryTrend, Key: "total_amount"},
		}},
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"json": FormatJSON, "report.CSV": FormatCSV, "markdown": FormatMarkdown,
		"out/report.md": FormatMarkdown, "HTML": FormatHTML, "book.xlsx": FormatXLSX,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.True(t, stderrors.Is(err, core.ErrUnsupportedFormat))
}

func TestMarkdown(t *testing.T) {
	md := string(Markdown(sampleReport()))
	assert.Contains(t, md, "# Insights for sales")
	assert.Contains(t, md, "1. **Total Sales is growing steadily** (high): Total Sales is rising by about 1.5 per week.")
	assert.Contains(t, md, "   - Maintain current growth strategies - momentum is strong")
	assert.Contains(t, md, "| Total Sales | 120 | 10.00 | 9.00 | 1.00 | 30.00 | -12.5% |")
	assert.Contains(t, md, "- notes: 30% missing")
}

func TestHTML(t *testing.T) {
	page := string(HTML(sampleReport()))
	assert.Contains(t, page, "<title>Insights for sales</title>")
	assert.Contains(t, page, "<strong>Total Sales is growing steadily</strong>")
	assert.Contains(t, page, "<table>")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, []string{"1", "high", "trend"}, records[1][:3])
	assert.Equal(t, "0.9000", records[1][6])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport()))

	var back engine.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "sales", back.Dataset)
	require.Len(t, back.Insights, 1)
	assert.Equal(t, "abc", back.Insights[0].ID)
}

func TestWriteXLSXAndContentTypes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleReport()))
	assert.Equal(t, []byte("PK"), buf.Bytes()[:2])

	for _, f := range Formats {
		assert.NotEmpty(t, f.ContentType())
	}
	assert.Error(t, Write(&buf, Format("pdf"), sampleReport()))
}
