package visualization

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"aivaceo/domain/chart"
	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
)

// OverviewCharts builds the dataset overview figures
func (e *Engine) OverviewCharts() (*chart.Overview, error) {
	if e.ds.IsEmpty() {
		return nil, apperrors.EmptyDataset()
	}

	out := &chart.Overview{
		DataTypes: e.dataTypes(),
		Metrics:   e.metrics(),
	}
	if e.ds.NullCount() > 0 {
		out.MissingData = e.missingData()
	}

	numeric := e.ds.ColumnsOfKind(dataset.KindNumeric)
	if len(numeric) > overviewHistogram {
		numeric = numeric[:overviewHistogram]
	}
	for _, name := range numeric {
		col, ok := e.column(name)
		if !ok {
			continue
		}
		out.NumericDistributions = append(out.NumericDistributions, chart.Named{
			Column: name,
			Chart:  histogram(name, col.Floats()),
		})
	}
	return out, nil
}

// dataTypes counts columns per kind, most common first
func (e *Engine) dataTypes() *chart.Chart {
	var kinds []dataset.Kind
	counts := make(map[dataset.Kind]int)
	for _, col := range e.ds.Columns() {
		if counts[col.Kind()] == 0 {
			kinds = append(kinds, col.Kind())
		}
		counts[col.Kind()]++
	}
	sort.SliceStable(kinds, func(i, j int) bool { return counts[kinds[i]] > counts[kinds[j]] })

	c := &chart.Chart{Kind: chart.KindPie, Title: "Data Types Distribution"}
	for i, k := range kinds {
		c.Labels = append(c.Labels, string(k))
		c.Values = append(c.Values, float64(counts[k]))
		c.Colors = append(c.Colors, chart.Color(i))
	}
	return c
}

// missingData ranks every column by missing count
func (e *Engine) missingData() *chart.Chart {
	cols := e.ds.Columns()
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].NullCount() > cols[j].NullCount() })

	c := &chart.Chart{
		Kind:       chart.KindBar,
		Title:      "Missing Data by Column",
		XTitle:     "Missing Values",
		YTitle:     "Column",
		Horizontal: true,
		Colors:     []string{chart.Color(0)},
	}
	for _, col := range cols {
		c.Labels = append(c.Labels, col.Name())
		c.Values = append(c.Values, float64(col.NullCount()))
	}
	return c
}

func (e *Engine) metrics() *chart.Chart {
	nonNull, unique := 0, 0
	for _, col := range e.ds.Columns() {
		nonNull += col.Count()
		unique += col.UniqueCount()
	}
	return &chart.Chart{
		Kind:   chart.KindBar,
		Title:  "Dataset Metrics",
		XTitle: "Metric",
		YTitle: "Count",
		Labels: []string{"Total Rows", "Total Columns", "Non-null Values", "Unique Values"},
		Values: []float64{float64(e.ds.Rows()), float64(e.ds.NumColumns()), float64(nonNull), float64(unique)},
		Colors: []string{chart.Color(1)},
	}
}

// DataShapeChart shows rows against columns
func (e *Engine) DataShapeChart() *chart.Chart {
	rows, cols := e.ds.Rows(), e.ds.NumColumns()
	return &chart.Chart{
		Kind:        chart.KindBar,
		Title:       "Dataset Shape",
		XTitle:      "Dimension",
		YTitle:      "Count",
		Labels:      []string{"Rows", "Columns"},
		Values:      []float64{float64(rows), float64(cols)},
		Annotations: []string{formatCount(rows), formatCount(cols)},
		Colors:      []string{chart.Color(0), chart.Color(1)},
	}
}

// OverviewDashboard pairs the shape chart with the correlation heatmap
func (e *Engine) OverviewDashboard() *chart.Dashboard {
	return &chart.Dashboard{
		DataShape:   e.DataShapeChart(),
		Correlation: e.CorrelationHeatmap(),
	}
}

// ColumnScore is a per-column quality score in [0, 100]
type ColumnScore struct {
	Column       string  `json:"column"`
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Score        float64 `json:"score"`
}

// QualityScores averages completeness and consistency per column. Numeric and
// datetime columns are fully consistent; text consistency falls with the
// coefficient of variation of value lengths.
func (e *Engine) QualityScores() []ColumnScore {
	rows := e.ds.Rows()
	scores := make([]ColumnScore, 0, e.ds.NumColumns())
	for _, col := range e.ds.Columns() {
		completeness := 0.0
		if rows > 0 {
			completeness = (1 - float64(col.NullCount())/float64(rows)) * 100
		}
		consistency := 100.0
		if col.Kind() == dataset.KindText {
			consistency = lengthConsistency(col.Texts())
		}
		scores = append(scores, ColumnScore{
			Column:       col.Name(),
			Completeness: completeness,
			Consistency:  consistency,
			Score:        (completeness + consistency) / 2,
		})
	}
	return scores
}

// lengthConsistency is max(0, 100 − 100·std/mean) of value lengths; 0 when undefined
func lengthConsistency(values []string) float64 {
	if len(values) < 2 {
		return 0
	}
	lengths := make([]float64, len(values))
	for i, v := range values {
		lengths[i] = float64(len([]rune(v)))
	}
	mean, _ := stats.Mean(lengths)
	std, _ := stats.StandardDeviationSample(lengths)
	c := 100 - std/mean*100
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return 0
	}
	return c
}

func qualityColor(score float64) string {
	switch {
	case score >= 80:
		return chart.ColorGood
	case score >= 60:
		return chart.ColorFair
	default:
		return chart.ColorPoor
	}
}

// QualityDashboard colour-codes column scores against the 80 and 60 thresholds
func (e *Engine) QualityDashboard() *chart.Chart {
	scores := e.QualityScores()
	if len(scores) == 0 {
		return nil
	}
	c := &chart.Chart{
		Kind:   chart.KindBar,
		Title:  "Data Quality Scores by Column",
		XTitle: "Columns",
		YTitle: "Quality Score",
		YRange: &chart.Range{Min: 0, Max: 100},
		Thresholds: []chart.Threshold{
			{Value: 80, Label: "Good Quality", Color: "green", Dash: true},
			{Value: 60, Label: "Fair Quality", Color: "orange", Dash: true},
		},
	}
	for _, s := range scores {
		c.Labels = append(c.Labels, s.Column)
		c.Values = append(c.Values, s.Score)
		c.Colors = append(c.Colors, qualityColor(s.Score))
	}
	return c
}

// AnalyticsCharts builds the per-column quality, uniqueness and memory figures
func (e *Engine) AnalyticsCharts() (*chart.Analytics, error) {
	if e.ds.IsEmpty() {
		return nil, apperrors.EmptyDataset()
	}

	quality := &chart.Chart{
		Kind:   chart.KindBar,
		Title:  "Data Quality Score by Column",
		XTitle: "Columns",
		YTitle: "Quality Score (%)",
	}
	for _, s := range e.QualityScores() {
		quality.Labels = append(quality.Labels, s.Column)
		quality.Values = append(quality.Values, s.Score)
		quality.Annotations = append(quality.Annotations, fmt.Sprintf("%.1f%%", s.Score))
		quality.Colors = append(quality.Colors, qualityColor(s.Score))
	}

	uniqueness := &chart.Chart{
		Kind:       chart.KindBar,
		Title:      "Uniqueness Ratio by Column",
		XTitle:     "Uniqueness (%)",
		YTitle:     "Columns",
		Horizontal: true,
		Colors:     []string{chart.Color(2)},
	}
	memory := &chart.Chart{
		Kind:       chart.KindBar,
		Title:      "Memory Usage by Column",
		XTitle:     "Memory Usage (MB)",
		YTitle:     "Columns",
		Horizontal: true,
		Colors:     []string{chart.Color(1)},
	}
	rows := float64(e.ds.Rows())
	for _, col := range e.ds.Columns() {
		ratio := float64(col.UniqueCount()) / rows * 100
		uniqueness.Labels = append(uniqueness.Labels, col.Name())
		uniqueness.Values = append(uniqueness.Values, ratio)
		uniqueness.Annotations = append(uniqueness.Annotations, fmt.Sprintf("%.1f%%", ratio))

		mb := float64(col.MemoryUsage()) / (1024 * 1024)
		memory.Labels = append(memory.Labels, col.Name())
		memory.Values = append(memory.Values, mb)
		memory.Annotations = append(memory.Annotations, fmt.Sprintf("%.2f MB", mb))
	}

	return &chart.Analytics{
		DataQuality: quality,
		Uniqueness:  uniqueness,
		MemoryUsage: memory,
	}, nil
}
