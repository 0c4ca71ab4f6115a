package visualization

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"aivaceo/domain/chart"
	"aivaceo/domain/dataset"
	"aivaceo/domain/profile"
	"aivaceo/internal/profiling"
)

// CorrelationHeatmap charts the Pearson matrix of the numeric columns, nil below two
func (e *Engine) CorrelationHeatmap() *chart.Chart {
	names := e.ds.ColumnsOfKind(dataset.KindNumeric)
	if len(names) < 2 {
		return nil
	}
	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		cols[i], _ = e.ds.Column(name)
	}

	cells := make([][]profile.Measure, len(cols))
	for i := range cols {
		cells[i] = make([]profile.Measure, len(cols))
		for j := range cols {
			cells[i][j] = profile.Measure(profiling.Pearson(cols[i], cols[j]))
		}
	}

	return &chart.Chart{
		Kind:  chart.KindHeatmap,
		Title: "Correlation Heatmap",
		Heatmap: &chart.Heatmap{
			XLabels: names,
			YLabels: names,
			Cells:   cells,
			Scale:   "RdBu_r",
			Min:     -1,
			Max:     1,
		},
	}
}

// ComparisonChart plots two columns against each other. Numeric pairs give a
// scatter with a least-squares trend (or a line), text against numbers gives
// grouped boxes, text against text a cross-tabulation and dates against
// numbers a time series. nil when a column is absent or no row has both values.
func (e *Engine) ComparisonChart(x, y string, kind ComparisonType) *chart.Chart {
	cx, okX := e.ds.Column(x)
	cy, okY := e.ds.Column(y)
	if !okX || !okY {
		return nil
	}

	kx, ky := cx.Kind(), cy.Kind()
	switch {
	case kx == dataset.KindNumeric && ky == dataset.KindNumeric:
		return numericComparison(cx, cy, kind)
	case kx == dataset.KindText && ky == dataset.KindNumeric:
		return groupedBoxes(cx, cy)
	case kx == dataset.KindNumeric && ky == dataset.KindText:
		return groupedBoxes(cy, cx)
	case kx == dataset.KindText && ky == dataset.KindText:
		return crossTab(cx, cy)
	case kx == dataset.KindDatetime && ky == dataset.KindNumeric:
		return timeSeries(cx, cy)
	case kx == dataset.KindNumeric && ky == dataset.KindDatetime:
		return timeSeries(cy, cx)
	}
	return nil
}

func numericComparison(cx, cy *dataset.Column, kind ComparisonType) *chart.Chart {
	var xs, ys []float64
	for i := 0; i < cx.Len(); i++ {
		vx, okX := cx.Float(i)
		vy, okY := cy.Float(i)
		if okX && okY {
			xs = append(xs, vx)
			ys = append(ys, vy)
		}
	}
	if len(xs) == 0 {
		return nil
	}

	c := &chart.Chart{
		Kind:   chart.KindScatter,
		Title:  fmt.Sprintf("%s vs %s", cx.Name(), cy.Name()),
		XTitle: cx.Name(),
		YTitle: cy.Name(),
		Series: []chart.Series{{Name: cy.Name(), X: xs, Y: ys, Color: chart.Color(0)}},
	}
	if kind == CompareLine {
		c.Kind = chart.KindLine
		c.Series[0].Color = chart.Color(1)
		return c
	}
	c.Trend = fitTrend(xs, ys)
	return c
}

// fitTrend is nil when the fit is undefined (fewer than two points or constant x)
func fitTrend(xs, ys []float64) *chart.Trend {
	if len(xs) < 2 {
		return nil
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return nil
	}
	minX, _ := stats.Min(xs)
	maxX, _ := stats.Max(xs)
	if minX == maxX {
		return nil
	}
	return &chart.Trend{
		Slope:     beta,
		Intercept: alpha,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
		XMin:      minX,
		XMax:      maxX,
	}
}

// groupedBoxes draws one box per category, in first-appearance order
func groupedBoxes(cat, num *dataset.Column) *chart.Chart {
	groups := make(map[string][]float64)
	var order []string
	for i := 0; i < cat.Len(); i++ {
		label, okL := cat.Text(i)
		v, okV := num.Float(i)
		if !okL || !okV {
			continue
		}
		if _, seen := groups[label]; !seen {
			order = append(order, label)
		}
		groups[label] = append(groups[label], v)
	}
	if len(order) == 0 {
		return nil
	}

	c := &chart.Chart{
		Kind:   chart.KindBox,
		Title:  fmt.Sprintf("%s by %s", num.Name(), cat.Name()),
		XTitle: cat.Name(),
		YTitle: num.Name(),
	}
	for i, label := range order {
		c.Boxes = append(c.Boxes, tukeyBox(label, groups[label]))
		c.Colors = append(c.Colors, chart.Color(i))
	}
	return c
}

// crossTab counts co-occurrences; rows follow the first column, labels sorted
func crossTab(a, b *dataset.Column) *chart.Chart {
	counts := make(map[[2]string]int)
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	for i := 0; i < a.Len(); i++ {
		va, okA := a.Text(i)
		vb, okB := b.Text(i)
		if !okA || !okB {
			continue
		}
		counts[[2]string{va, vb}]++
		rowSet[va] = struct{}{}
		colSet[vb] = struct{}{}
	}
	if len(counts) == 0 {
		return nil
	}

	rows := sortedKeys(rowSet)
	cols := sortedKeys(colSet)
	cells := make([][]profile.Measure, len(rows))
	maxCount := 0
	for i, r := range rows {
		cells[i] = make([]profile.Measure, len(cols))
		for j, c := range cols {
			n := counts[[2]string{r, c}]
			cells[i][j] = profile.Measure(n)
			if n > maxCount {
				maxCount = n
			}
		}
	}

	return &chart.Chart{
		Kind:   chart.KindHeatmap,
		Title:  fmt.Sprintf("Cross-tabulation: %s vs %s", a.Name(), b.Name()),
		XTitle: b.Name(),
		YTitle: a.Name(),
		Heatmap: &chart.Heatmap{
			XLabels: cols,
			YLabels: rows,
			Cells:   cells,
			Scale:   "Blues",
			Min:     0,
			Max:     float64(maxCount),
		},
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TimeSeriesChart plots a numeric column over a datetime column in time order
func (e *Engine) TimeSeriesChart(dateColumn, valueColumn string) *chart.Chart {
	dates, okD := e.ds.Column(dateColumn)
	values, okV := e.ds.Column(valueColumn)
	if !okD || !okV || dates.Kind() != dataset.KindDatetime || values.Kind() != dataset.KindNumeric {
		return nil
	}
	return timeSeries(dates, values)
}

func timeSeries(dates, values *dataset.Column) *chart.Chart {
	type point struct {
		t time.Time
		v float64
	}
	var points []point
	for i := 0; i < dates.Len(); i++ {
		t, okT := dates.Time(i)
		v, okV := values.Float(i)
		if okT && okV {
			points = append(points, point{t, v})
		}
	}
	if len(points) == 0 {
		return nil
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })

	s := chart.Series{Name: values.Name(), Color: chart.Color(2)}
	for _, p := range points {
		s.X = append(s.X, float64(p.t.Unix()))
		s.Categories = append(s.Categories, p.t.Format("2006-01-02"))
		s.Y = append(s.Y, p.v)
	}
	return &chart.Chart{
		Kind:   chart.KindLine,
		Title:  fmt.Sprintf("%s over Time", values.Name()),
		XTitle: dates.Name(),
		YTitle: values.Name(),
		Series: []chart.Series{s},
	}
}

// MultiColumnChart overlays the numeric columns among names: one line per
// column over the row index, or a bar of column means. Needs two existing columns.
func (e *Engine) MultiColumnChart(names []string, kind MultiType) *chart.Chart {
	var valid []*dataset.Column
	for _, name := range names {
		if col, ok := e.ds.Column(name); ok {
			valid = append(valid, col)
		}
	}
	if len(valid) < 2 {
		return nil
	}

	var numeric []*dataset.Column
	for _, col := range valid {
		if col.Kind() == dataset.KindNumeric && col.Count() > 0 {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) == 0 {
		return nil
	}

	if kind == MultiBar {
		c := &chart.Chart{
			Kind:   chart.KindBar,
			Title:  "Column Means Comparison",
			XTitle: "Column",
			YTitle: "Mean",
		}
		for i, col := range numeric {
			mean, _ := stats.Mean(col.Floats())
			c.Labels = append(c.Labels, col.Name())
			c.Values = append(c.Values, mean)
			c.Colors = append(c.Colors, chart.Color(i))
		}
		return c
	}

	c := &chart.Chart{
		Kind:   chart.KindLine,
		Title:  "Multi-Column Comparison",
		XTitle: "Index",
		YTitle: "Values",
	}
	for i, col := range numeric {
		c.Series = append(c.Series, indexSeries(col, chart.Color(i)))
	}
	return c
}
