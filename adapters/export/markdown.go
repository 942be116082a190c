package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"olynk/internal/analysis/semantic"
	"olynk/internal/engine"
)

// Markdown renders a human-readable report.
func Markdown(r *engine.Report) []byte {
	var b bytes.Buffer
	title := r.Dataset
	if title == "" {
		title = "dataset"
	}
	fmt.Fprintf(&b, "# Insights for %s\n\n", title)
	fmt.Fprintf(&b, "%d rows, %d columns. Data quality score %.0f%%.\n\n", r.RowCount, r.ColumnCount, 100*r.Quality.Score)

	b.WriteString("## Key insights\n\n")
	if len(r.Insights) == 0 {
		b.WriteString("No material findings.\n\n")
	}
	for i, ins := range r.Insights {
		fmt.Fprintf(&b, "%d. **%s** (%s): %s.\n", i+1, ins.Title, ins.Severity, ins.Statement)
		for _, a := range ins.Actions {
			fmt.Fprintf(&b, "   - %s\n", a)
		}
	}
	b.WriteString("\n")

	if len(r.Summaries.Overall) > 0 {
		b.WriteString("## Summary statistics\n\n")
		b.WriteString("| Metric | Count | Mean | Median | Min | Max | Growth |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
		for _, s := range r.Summaries.Overall {
			growth := "n/a"
			if s.GrowthRate != nil {
				growth = fmt.Sprintf("%+.1f%%", 100*(*s.GrowthRate))
			}
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %s |\n",
				semantic.DisplayName(s.Column), s.Count, s.Mean, s.Median, s.Min, s.Max, growth)
		}
		b.WriteString("\n")
	}

	if len(r.Trends) > 0 {
		b.WriteString("## Trends\n\n")
		for _, t := range r.Trends {
			fmt.Fprintf(&b, "- %s: %s (%s, slope %.3f, R² %.2f)\n",
				semantic.DisplayName(t.Column), t.Direction, t.Granularity, t.Slope, t.Confidence)
		}
		b.WriteString("\n")
	}

	if len(r.Correlations) > 0 {
		b.WriteString("## Relationships\n\n")
		for _, c := range r.Correlations {
			fmt.Fprintf(&b, "- %s (r = %.2f, %s)\n", c.Interpretation, c.Coefficient, c.Strength)
		}
		b.WriteString("\n")
	}

	if len(r.Quality.Issues) > 0 {
		b.WriteString("## Data quality\n\n")
		for _, issue := range r.Quality.Issues {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(issue))
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

// HTML renders the markdown report as a standalone page.
func HTML(r *engine.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Insights for " + r.Dataset,
	})
	return markdown.ToHTML(Markdown(r), p, renderer)
}
