package visualization

import (
	"fmt"
	"sort"
	"time"

	"aivaceo/domain/chart"
	"aivaceo/domain/dataset"
	"aivaceo/internal/profiling"
)

// ColumnChart builds one figure for a column. Unknown types fall back to a
// histogram; types that do not apply to the column's kind yield nil.
func (e *Engine) ColumnChart(name string, kind ChartType) *chart.Chart {
	col, ok := e.column(name)
	if !ok {
		return nil
	}

	if kind == "" || kind == ChartAuto {
		switch {
		case col.Kind() == dataset.KindNumeric:
			kind = ChartHistogram
		case col.Kind() == dataset.KindDatetime:
			kind = ChartLine
		case col.UniqueCount() <= maxCategories:
			kind = ChartBar
		default:
			kind = ChartHistogram
		}
	}

	switch kind {
	case ChartBar:
		return valueBar(col, fmt.Sprintf("Value Counts for %s", name), chart.Color(1))
	case ChartBox:
		if col.Kind() != dataset.KindNumeric {
			return nil
		}
		return boxChart(name, col.Floats())
	case ChartLine:
		switch col.Kind() {
		case dataset.KindNumeric:
			return &chart.Chart{
				Kind:   chart.KindLine,
				Title:  fmt.Sprintf("Line Chart of %s", name),
				XTitle: "Index",
				YTitle: name,
				Series: []chart.Series{indexSeries(col, chart.Color(3))},
			}
		case dataset.KindDatetime:
			return timeline(col, fmt.Sprintf("Timeline of %s", name))
		}
		return nil
	case ChartScatter:
		if col.Kind() != dataset.KindNumeric {
			return nil
		}
		return &chart.Chart{
			Kind:   chart.KindScatter,
			Title:  fmt.Sprintf("Scatter Plot of %s", name),
			XTitle: "Index",
			YTitle: name,
			Series: []chart.Series{indexSeries(col, chart.Color(4))},
		}
	case ChartPie:
		if col.Kind() == dataset.KindNumeric {
			return nil
		}
		return pie(col, fmt.Sprintf("Distribution of %s", name), 0)
	default:
		if col.Kind() == dataset.KindNumeric {
			return histogram(name, col.Floats())
		}
		return valueBar(col, fmt.Sprintf("Top Values in %s", name), chart.Color(0))
	}
}

// ColumnAnalysisChart builds the headline figure for a column: a box plot
// for numbers, top values for text and a monthly timeline for dates.
func (e *Engine) ColumnAnalysisChart(name string) *chart.Chart {
	col, ok := e.column(name)
	if !ok {
		return nil
	}
	switch col.Kind() {
	case dataset.KindNumeric:
		return boxChart(name, col.Floats())
	case dataset.KindDatetime:
		return timeline(col, fmt.Sprintf("Timeline of %s", name))
	default:
		return valueBar(col, fmt.Sprintf("Top Values in %s", name), chart.Color(0))
	}
}

// ColumnAnalysisCharts builds the detailed figure set for a column, keyed by role
func (e *Engine) ColumnAnalysisCharts(name string) map[string]*chart.Chart {
	col, ok := e.column(name)
	if !ok {
		return nil
	}

	figures := make(map[string]*chart.Chart)
	switch col.Kind() {
	case dataset.KindNumeric:
		figures["distribution"] = histogram(name, col.Floats())
		figures["boxplot"] = boxChart(name, col.Floats())
	case dataset.KindDatetime:
		figures["time_distribution"] = timeline(col, fmt.Sprintf("Time Distribution of %s", name))
		figures["day_of_week"] = dayOfWeek(col)
	default:
		bar := valueBar(col, fmt.Sprintf("Top Values in %s", name), chart.Color(0))
		bar.Horizontal = true
		bar.XTitle, bar.YTitle = "Count", name
		figures["value_counts"] = bar
		if len(bar.Labels) <= maxPieCategories {
			figures["pie_chart"] = pie(col, fmt.Sprintf("Distribution of %s", name), 0.3)
		}
	}
	return figures
}

func pie(col *dataset.Column, title string, hole float64) *chart.Chart {
	counts := profiling.CountValues(col, maxCategories)
	labels, values := splitCounts(counts)
	colors := make([]string, len(labels))
	for i := range colors {
		colors[i] = chart.Color(i)
	}
	return &chart.Chart{
		Kind:   chart.KindPie,
		Title:  title,
		Labels: labels,
		Values: values,
		Colors: colors,
		Hole:   hole,
	}
}

// dayOfWeek counts dates per weekday, most frequent first, calendar order on ties
func dayOfWeek(col *dataset.Column) *chart.Chart {
	var counts [7]int
	for _, t := range col.Times() {
		counts[(int(t.Weekday())+6)%7]++ // Monday first
	}

	type dayCount struct {
		day   time.Weekday
		count int
	}
	var days []dayCount
	for i, n := range counts {
		if n > 0 {
			days = append(days, dayCount{day: time.Weekday((i + 1) % 7), count: n})
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].count > days[j].count })

	c := &chart.Chart{
		Kind:   chart.KindBar,
		Title:  fmt.Sprintf("Day of Week Distribution - %s", col.Name()),
		XTitle: "Day of Week",
		YTitle: "Count",
		Colors: []string{chart.Color(1)},
	}
	for _, d := range days {
		c.Labels = append(c.Labels, d.day.String())
		c.Values = append(c.Values, float64(d.count))
	}
	return c
}
