package services

import (
	"fmt"
	stdhtml "html"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"aivaceo/domain/profile"
)

// ReportService renders scan reports as Markdown or HTML documents
type ReportService struct {
	maxTopValues int
}

func NewReportService() *ReportService {
	return &ReportService{maxTopValues: 5}
}

// Markdown renders the report as a Markdown document
func (s *ReportService) Markdown(report *profile.Report) string {
	var b strings.Builder

	title := report.Name
	if title == "" {
		title = "Dataset"
	}
	fmt.Fprintf(&b, "# Data Scan Report: %s\n\n", escape(title))
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", report.GeneratedAt.UTC().Format(time.RFC3339))
	}

	s.writeOverview(&b, report.Overview)
	s.writeInsights(&b, report.Insights)
	s.writeColumns(&b, report.Columns)
	s.writeCorrelations(&b, report.Correlations)
	s.writePatterns(&b, report.Patterns)

	return b.String()
}

// HTML renders the report as a complete HTML page. Raw HTML and links to
// untrusted protocols in dataset text are not emitted.
func (s *ReportService) HTML(report *profile.Report) []byte {
	md := []byte(s.Markdown(report))

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	title := "Data Scan Report"
	if report.Name != "" {
		title += ": " + report.Name
	}
	renderer := html.NewRenderer(html.RendererOptions{
		// smartypants writes the title unescaped
		Title: stdhtml.EscapeString(title),
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank | html.Safelink | html.SkipHTML,
	})
	return markdown.ToHTML(md, p, renderer)
}

func (s *ReportService) writeOverview(b *strings.Builder, o *profile.Overview) {
	if o == nil {
		return
	}
	b.WriteString("## Overview\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Rows | %d |\n", o.Rows)
	fmt.Fprintf(b, "| Columns | %d |\n", o.Columns)
	fmt.Fprintf(b, "| Memory | %s |\n", formatBytes(o.MemoryUsage))
	fmt.Fprintf(b, "| Duplicate rows | %d |\n", o.DuplicateRows)
	fmt.Fprintf(b, "| Data quality score | %.1f%% |\n", o.DataQualityScore)
	fmt.Fprintf(b, "| Numeric columns | %s |\n", joinNames(o.NumericColumns))
	fmt.Fprintf(b, "| Categorical columns | %s |\n", joinNames(o.CategoricalColumns))
	fmt.Fprintf(b, "| Datetime columns | %s |\n", joinNames(o.DatetimeColumns))
	b.WriteString("\n")
}

func (s *ReportService) writeInsights(b *strings.Builder, insights []profile.Insight) {
	if len(insights) == 0 {
		return
	}
	b.WriteString("## Insights\n\n")
	for _, in := range insights {
		fmt.Fprintf(b, "- %s\n", escape(in.Message))
	}
	b.WriteString("\n")
}

func (s *ReportService) writeColumns(b *strings.Builder, columns []*profile.ColumnAnalysis) {
	if len(columns) == 0 {
		return
	}
	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Non-null | Missing | Unique |\n|---|---|---|---|---|\n")
	for _, c := range columns {
		fmt.Fprintf(b, "| %s | %s | %d | %.1f%% | %.1f%% |\n",
			escape(c.Column), c.Kind, c.NonNullCount, c.NullPercentage, c.UniquePercentage)
	}
	b.WriteString("\n")

	for _, c := range columns {
		switch {
		case c.Numeric != nil:
			n := c.Numeric
			fmt.Fprintf(b, "### %s\n\n", escape(c.Column))
			fmt.Fprintf(b, "- Range: %s to %s\n", formatFloat(n.Min), formatFloat(n.Max))
			fmt.Fprintf(b, "- Mean %s, median %s, std %s\n", formatFloat(n.Mean), formatFloat(n.Median), formatMeasure(n.Std))
			fmt.Fprintf(b, "- Quartiles: Q1 %s, Q3 %s\n", formatFloat(n.Q25), formatFloat(n.Q75))
			fmt.Fprintf(b, "- Skewness %s, kurtosis %s\n", formatMeasure(n.Skewness), formatMeasure(n.Kurtosis))
			fmt.Fprintf(b, "- Outliers: %d (%.1f%%) outside [%s, %s]\n\n",
				n.Outliers.Count, n.Outliers.Percentage, formatFloat(n.Outliers.LowerBound), formatFloat(n.Outliers.UpperBound))
		case c.Categorical != nil:
			cs := c.Categorical
			fmt.Fprintf(b, "### %s\n\n", escape(c.Column))
			top := cs.TopValues
			if len(top) > s.maxTopValues {
				top = top[:s.maxTopValues]
			}
			parts := make([]string, 0, len(top))
			for _, v := range top {
				parts = append(parts, fmt.Sprintf("%s (%d)", escape(v.Value), v.Count))
			}
			if len(parts) > 0 {
				fmt.Fprintf(b, "- Top values: %s\n", strings.Join(parts, ", "))
			}
			fmt.Fprintf(b, "- Average length: %s\n", formatMeasure(cs.AvgLength))
			if cs.EmailCount+cs.PhoneCount+cs.URLCount > 0 {
				fmt.Fprintf(b, "- Emails %d, phones %d, URLs %d\n", cs.EmailCount, cs.PhoneCount, cs.URLCount)
			}
			b.WriteString("\n")
		case c.Datetime != nil && c.Datetime.MinDate != nil:
			d := c.Datetime
			fmt.Fprintf(b, "### %s\n\n", escape(c.Column))
			fmt.Fprintf(b, "- Range: %s to %s (%d days)\n",
				d.MinDate.Format("2006-01-02"), d.MaxDate.Format("2006-01-02"), *d.RangeDays)
			fmt.Fprintf(b, "- Most common: %s %d\n\n", time.Month(*d.MostCommonMonth), *d.MostCommonYear)
		}
	}
}

func (s *ReportService) writeCorrelations(b *strings.Builder, result *profile.CorrelationResult) {
	if result == nil {
		return
	}
	b.WriteString("## Correlations\n\n")
	fmt.Fprintf(b, "Average correlation across %d numeric columns: %s\n\n", len(result.Columns), formatMeasure(result.AverageCorrelation))
	if len(result.StrongCorrelations) == 0 {
		b.WriteString("No strong correlations found.\n\n")
		return
	}
	b.WriteString("| Column 1 | Column 2 | r | Strength |\n|---|---|---|---|\n")
	for _, p := range result.StrongCorrelations {
		fmt.Fprintf(b, "| %s | %s | %.3f | %s |\n", escape(p.Column1), escape(p.Column2), p.Correlation, p.Strength)
	}
	b.WriteString("\n")
}

func (s *ReportService) writePatterns(b *strings.Builder, patterns *profile.PatternResult) {
	if patterns == nil {
		return
	}
	b.WriteString("## Patterns\n\n")
	m := patterns.MissingPatterns
	fmt.Fprintf(b, "- Missing cells: %d (%.1f%%) across %d rows\n", m.TotalMissingCells, m.MissingPercentage, m.RowsWithMissing)
	d := patterns.DuplicatePatterns
	fmt.Fprintf(b, "- Duplicate rows: %d (%.1f%%)\n", d.DuplicateRows, d.DuplicatePercentage)
	if len(d.PotentialIDColumns) > 0 {
		ids := append([]string(nil), d.PotentialIDColumns...)
		sort.Strings(ids)
		fmt.Fprintf(b, "- Potential ID columns: %s\n", joinNames(ids))
	}
	b.WriteString("\n")
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = escape(n)
	}
	return strings.Join(escaped, ", ")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "\n", " ", "*", `\*`, "_", `\_`, "#", `\#`,
	"[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`, "`", "\\`", "!", `\!`,
	"<", "&lt;", ">", "&gt;",
)

// escape keeps user text from breaking table cells or starting markup
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

func formatMeasure(m profile.Measure) string {
	if !m.Defined() {
		return "n/a"
	}
	return formatFloat(m.Float())
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
