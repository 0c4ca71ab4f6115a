package visualization

import (
	"strings"

	"aivaceo/domain/dataset"
	apperrors "aivaceo/internal/errors"
)

// ChartType selects the figure ColumnChart builds
type ChartType string

const (
	ChartAuto      ChartType = "auto"
	ChartHistogram ChartType = "histogram"
	ChartBar       ChartType = "bar"
	ChartBox       ChartType = "box"
	ChartLine      ChartType = "line"
	ChartScatter   ChartType = "scatter"
	ChartPie       ChartType = "pie"
)

// ComparisonType selects how two numeric columns are plotted against each other
type ComparisonType string

const (
	CompareScatter ComparisonType = "scatter"
	CompareLine    ComparisonType = "line"
)

// MultiType selects the MultiColumnChart layout
type MultiType string

const (
	MultiLine MultiType = "line"
	MultiBar  MultiType = "bar"
)

// ParseChartType accepts a chart type name; empty means auto
func ParseChartType(s string) (ChartType, error) {
	switch t := ChartType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ChartAuto, nil
	case ChartAuto, ChartHistogram, ChartBar, ChartBox, ChartLine, ChartScatter, ChartPie:
		return t, nil
	}
	return "", apperrors.InvalidInput("unknown chart type: " + s)
}

// ParseComparisonType accepts scatter or line; empty means scatter
func ParseComparisonType(s string) (ComparisonType, error) {
	switch t := ComparisonType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return CompareScatter, nil
	case CompareScatter, CompareLine:
		return t, nil
	}
	return "", apperrors.InvalidInput("unknown comparison type: " + s)
}

// ParseMultiType accepts line or bar; empty means line
func ParseMultiType(s string) (MultiType, error) {
	switch t := MultiType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return MultiLine, nil
	case MultiLine, MultiBar:
		return t, nil
	}
	return "", apperrors.InvalidInput("unknown multi-column chart type: " + s)
}

const (
	maxCategories     = 20 // bars in a value-count chart
	maxPieCategories  = 10
	overviewHistogram = 4 // numeric columns in the overview
)

// Engine builds chart objects over one immutable dataset. Builders return a
// nil chart, not an error, when no meaningful figure exists.
type Engine struct {
	ds *dataset.Dataset
}

// NewEngine creates an engine over ds; a nil ds behaves as an empty dataset
func NewEngine(ds *dataset.Dataset) *Engine {
	if ds == nil {
		ds = dataset.MustNew()
	}
	return &Engine{ds: ds}
}

// Dataset returns the charted dataset
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// column returns the named column when it exists and holds at least one value
func (e *Engine) column(name string) (*dataset.Column, bool) {
	col, ok := e.ds.Column(name)
	if !ok || col.Count() == 0 {
		return nil, false
	}
	return col, true
}
