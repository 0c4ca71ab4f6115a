package chart

import (
	"aivaceo/domain/profile"
)

// Kind identifies how a chart is drawn
type Kind string

const (
	KindPie       Kind = "pie"
	KindBar       Kind = "bar"
	KindHistogram Kind = "histogram"
	KindBox       Kind = "box"
	KindScatter   Kind = "scatter"
	KindLine      Kind = "line"
	KindHeatmap   Kind = "heatmap"
)

// Palette is the brand colour sequence
var Palette = []string{"#2E86AB", "#A23B72", "#F18F01", "#C73E1D", "#28a745", "#ffc107", "#6f42c1", "#fd7e14"}

// Color returns the i-th palette colour, wrapping around
func Color(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Quality colours used for score bars and threshold lines
const (
	ColorGood = "#28a745"
	ColorFair = "#ffc107"
	ColorPoor = "#dc3545"
)

// Chart is a renderer-agnostic figure. Which payload fields are set depends on Kind:
// pie and bar use Labels/Values, histogram uses Bins, box uses Boxes, scatter and
// line use Series, heatmap uses Heatmap.
type Chart struct {
	Kind        Kind        `json:"kind"`
	Title       string      `json:"title"`
	XTitle      string      `json:"x_title,omitempty"`
	YTitle      string      `json:"y_title,omitempty"`
	Horizontal  bool        `json:"horizontal,omitempty"`
	Labels      []string    `json:"labels,omitempty"`
	Values      []float64   `json:"values,omitempty"`
	Annotations []string    `json:"annotations,omitempty"` // per-value text such as "92.5%"
	Bins        []Bin       `json:"bins,omitempty"`
	Series      []Series    `json:"series,omitempty"`
	Boxes       []Box       `json:"boxes,omitempty"`
	Heatmap     *Heatmap    `json:"heatmap,omitempty"`
	Trend       *Trend      `json:"trend,omitempty"`
	Thresholds  []Threshold `json:"thresholds,omitempty"`
	Colors      []string    `json:"colors,omitempty"`
	YRange      *Range      `json:"y_range,omitempty"`
	Hole        float64     `json:"hole,omitempty"` // donut hole ratio for pies
}

// Bin is one equal-width histogram bucket; Upper is inclusive only for the last bin
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Series is a sequence of points; Categories replaces X for labelled axes such as months
type Series struct {
	Name       string    `json:"name"`
	X          []float64 `json:"x,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	Y          []float64 `json:"y"`
	Color      string    `json:"color,omitempty"`
}

// Len returns the number of points
func (s Series) Len() int { return len(s.Y) }

// Box is a Tukey box: whiskers reach the furthest values within 1.5·IQR
type Box struct {
	Name         string    `json:"name"`
	LowerWhisker float64   `json:"lower_whisker"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
	Count        int       `json:"count"`
}

// Heatmap is a labelled matrix; undefined cells encode as null
type Heatmap struct {
	XLabels []string            `json:"x_labels"`
	YLabels []string            `json:"y_labels"`
	Cells   [][]profile.Measure `json:"cells"` // Cells[row][col], rows follow YLabels
	Scale   string              `json:"scale"`
	Min     float64             `json:"min"`
	Max     float64             `json:"max"`
}

// Trend is an ordinary least squares fit y = Intercept + Slope·x
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	XMin      float64 `json:"x_min"`
	XMax      float64 `json:"x_max"`
}

// At evaluates the fitted line
func (t *Trend) At(x float64) float64 { return t.Intercept + t.Slope*x }

// Threshold is a horizontal reference line
type Threshold struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	Dash  bool    `json:"dash,omitempty"`
}

// Range bounds an axis
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Named pairs a chart with the column it describes
type Named struct {
	Column string `json:"column"`
	Chart  *Chart `json:"chart"`
}

// Overview groups the dataset overview figures
type Overview struct {
	DataTypes            *Chart  `json:"data_types"`
	MissingData          *Chart  `json:"missing_data,omitempty"`
	Metrics              *Chart  `json:"metrics"`
	NumericDistributions []Named `json:"numeric_distributions,omitempty"`
}

// Analytics groups the per-column quality figures
type Analytics struct {
	DataQuality *Chart `json:"data_quality"`
	Uniqueness  *Chart `json:"uniqueness"`
	MemoryUsage *Chart `json:"memory_usage"`
}

// Dashboard groups the shape and correlation figures
type Dashboard struct {
	DataShape   *Chart `json:"data_shape"`
	Correlation *Chart `json:"correlation,omitempty"`
}
