package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"aivaceo/domain/profile"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	sectionColor = color.New(color.FgYellow)
	doneColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgRed)
)

func marshalJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printDone(w io.Writer, format string, args ...interface{}) {
	doneColor.Fprintf(w, format+"\n", args...)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func measure(m profile.Measure) string {
	if !m.Defined() {
		return "n/a"
	}
	return num(m.Float())
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func printOverview(w io.Writer, name string, o *profile.Overview) {
	headingColor.Fprintf(w, "\n=== %s ===\n", name)

	table := newTable(w, "Metric", "Value")
	table.Append([]string{"Rows", strconv.Itoa(o.Rows)})
	table.Append([]string{"Columns", strconv.Itoa(o.Columns)})
	table.Append([]string{"Memory (bytes)", strconv.FormatInt(o.MemoryUsage, 10)})
	table.Append([]string{"Duplicate rows", strconv.Itoa(o.DuplicateRows)})
	table.Append([]string{"Data quality score", pct(o.DataQualityScore)})
	table.Render()

	sectionColor.Fprintln(w, "\nColumns")
	table = newTable(w, "Column", "Type", "Missing")
	for _, name := range o.ColumnNames {
		table.Append([]string{name, string(o.Dtypes[name]), strconv.Itoa(o.NullCounts[name])})
	}
	table.Render()
}

func printColumn(w io.Writer, a *profile.ColumnAnalysis) {
	headingColor.Fprintf(w, "\n=== %s (%s) ===\n", a.Column, a.Kind)

	table := newTable(w, "Metric", "Value")
	table.Append([]string{"Count", strconv.Itoa(a.Count)})
	table.Append([]string{"Non-null", strconv.Itoa(a.NonNullCount)})
	table.Append([]string{"Missing", fmt.Sprintf("%d (%s)", a.NullCount, pct(a.NullPercentage))})
	table.Append([]string{"Unique", fmt.Sprintf("%d (%s)", a.UniqueCount, pct(a.UniquePercentage))})

	switch {
	case a.Numeric != nil:
		n := a.Numeric
		table.Append([]string{"Min", num(n.Min)})
		table.Append([]string{"Max", num(n.Max)})
		table.Append([]string{"Mean", num(n.Mean)})
		table.Append([]string{"Median", num(n.Median)})
		table.Append([]string{"Std", measure(n.Std)})
		table.Append([]string{"Q25 / Q75", num(n.Q25) + " / " + num(n.Q75)})
		table.Append([]string{"Skewness", measure(n.Skewness)})
		table.Append([]string{"Kurtosis", measure(n.Kurtosis)})
		table.Append([]string{"Outliers", fmt.Sprintf("%d (%s) outside [%s, %s]",
			n.Outliers.Count, pct(n.Outliers.Percentage), num(n.Outliers.LowerBound), num(n.Outliers.UpperBound))})
	case a.Categorical != nil:
		c := a.Categorical
		table.Append([]string{"Average length", measure(c.AvgLength)})
		table.Append([]string{"Emails", strconv.Itoa(c.EmailCount)})
		table.Append([]string{"Phones", strconv.Itoa(c.PhoneCount)})
		table.Append([]string{"URLs", strconv.Itoa(c.URLCount)})
	case a.Datetime != nil && a.Datetime.MinDate != nil:
		d := a.Datetime
		table.Append([]string{"First", d.MinDate.Format("2006-01-02")})
		table.Append([]string{"Last", d.MaxDate.Format("2006-01-02")})
		table.Append([]string{"Range (days)", strconv.Itoa(*d.RangeDays)})
		table.Append([]string{"Most common year", strconv.Itoa(*d.MostCommonYear)})
		table.Append([]string{"Most common month", strconv.Itoa(*d.MostCommonMonth)})
	}
	table.Render()

	if a.Categorical != nil && len(a.Categorical.TopValues) > 0 {
		sectionColor.Fprintln(w, "\nTop values")
		table = newTable(w, "Value", "Count")
		for _, v := range a.Categorical.TopValues {
			table.Append([]string{v.Value, strconv.Itoa(v.Count)})
		}
		table.Render()
	}
}

func printCorrelations(w io.Writer, r *profile.CorrelationResult, threshold float64) {
	headingColor.Fprintf(w, "\n=== Correlations (%d numeric columns) ===\n", len(r.Columns))
	fmt.Fprintf(w, "Average correlation: %s\n", measure(r.AverageCorrelation))

	if len(r.StrongCorrelations) == 0 {
		sectionColor.Fprintf(w, "\nNo pairs with |r| >= %s\n", num(threshold))
		return
	}
	sectionColor.Fprintf(w, "\nPairs with |r| >= %s\n", num(threshold))
	table := newTable(w, "Column 1", "Column 2", "r", "Strength")
	for _, p := range r.StrongCorrelations {
		table.Append([]string{p.Column1, p.Column2, fmt.Sprintf("%.3f", p.Correlation), string(p.Strength)})
	}
	table.Render()
}

func printPatterns(w io.Writer, p *profile.PatternResult) {
	headingColor.Fprintln(w, "\n=== Patterns ===")

	m := p.MissingPatterns
	fmt.Fprintf(w, "Missing cells: %d (%s), rows with missing values: %d\n",
		m.TotalMissingCells, pct(m.MissingPercentage), m.RowsWithMissing)
	if len(m.ColumnsWithMissing) > 0 {
		table := newTable(w, "Column", "Missing")
		for _, c := range m.ColumnsWithMissing {
			table.Append([]string{c.Column, strconv.Itoa(c.Count)})
		}
		table.Render()
	}

	d := p.DuplicatePatterns
	fmt.Fprintf(w, "\nDuplicate rows: %d (%s)\n", d.DuplicateRows, pct(d.DuplicatePercentage))
	if len(d.PotentialIDColumns) > 0 {
		fmt.Fprintf(w, "Potential ID columns: %s\n", strings.Join(d.PotentialIDColumns, ", "))
	}

	if len(p.ValuePatterns) == 0 {
		return
	}
	sectionColor.Fprintln(w, "\nValue patterns")
	table := newTable(w, "Column", "Avg length", "Length std", "Top prefix", "Top suffix")
	for _, v := range p.ValuePatterns {
		table.Append([]string{v.Column, measure(v.AvgLength), measure(v.LengthVariation), topPattern(v.CommonPrefixes), topPattern(v.CommonSuffixes)})
	}
	table.Render()
}

func topPattern(counts []profile.PatternCount) string {
	if len(counts) == 0 {
		return ""
	}
	return fmt.Sprintf("%q x%d", counts[0].Pattern, counts[0].Count)
}

func printInsights(w io.Writer, insights []profile.Insight) {
	headingColor.Fprintf(w, "\n=== Insights (%d) ===\n", len(insights))
	for i, in := range insights {
		label := sectionColor
		switch in.Kind {
		case profile.InsightQuality, profile.InsightMissing, profile.InsightOutliers, profile.InsightDuplicates:
			label = warnColor
		case profile.InsightCorrelation:
			label = doneColor
		}
		width := int(math.Log10(float64(len(insights)))) + 1
		fmt.Fprintf(w, "%*d. ", width, i+1)
		label.Fprintf(w, "[%s] ", in.Kind)
		fmt.Fprintln(w, in.Message)
	}
}
