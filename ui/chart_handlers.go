package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"aivaceo/adapters/render"
	"aivaceo/app"
	"aivaceo/domain/chart"
	apperrors "aivaceo/internal/errors"
	"aivaceo/internal/visualization"
	"aivaceo/ui/middleware"
)

const maxCanvas = 4000

// ChartHandler serves chart specs as JSON or rendered images
type ChartHandler struct {
	service *app.ScanService
	size    render.Options
}

func NewChartHandler(service *app.ScanService, size render.Options) *ChartHandler {
	return &ChartHandler{service: service, size: size}
}

func (h *ChartHandler) engine(c *gin.Context) *visualization.Engine {
	return h.service.EngineFor(middleware.Snapshot(c))
}

// canvas reads width and height overrides
func (h *ChartHandler) canvas(c *gin.Context) (render.Options, error) {
	opts := h.size
	for _, dim := range []struct {
		name string
		dst  *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		raw := c.Query(dim.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxCanvas {
			return opts, apperrors.InvalidInput(fmt.Sprintf("invalid %s: %q", dim.name, raw))
		}
		*dim.dst = v
	}
	return opts, nil
}

// writeChart answers with the chart in the requested format; a nil chart is 204
func (h *ChartHandler) writeChart(c *gin.Context, ch *chart.Chart) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != render.FormatSVG && format != render.FormatPNG {
		middleware.AbortWithError(c, apperrors.InvalidInput("unknown chart format: "+format))
		return
	}
	if ch == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if format == "json" {
		c.JSON(http.StatusOK, ch)
		return
	}

	opts, err := h.canvas(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	data, err := render.Bytes(ch, format, opts)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, render.ContentType(format), data)
}

// distributionPart prefixes the ?part= name of an overview histogram
const distributionPart = "distribution:"

// writeGroup answers with a whole chart group as JSON, or with one member
// selected by ?part= when an image format is requested
func (h *ChartHandler) writeGroup(c *gin.Context, group interface{}, parts map[string]*chart.Chart) {
	part := c.Query("part")
	if part == "" {
		if f := strings.ToLower(c.DefaultQuery("format", "json")); f != "json" {
			middleware.AbortWithError(c, apperrors.InvalidInput("format "+f+" needs a part parameter"))
			return
		}
		c.JSON(http.StatusOK, group)
		return
	}
	ch, ok := parts[part]
	if !ok {
		middleware.AbortWithError(c, apperrors.NotFound(fmt.Sprintf("chart part %q", part)))
		return
	}
	h.writeChart(c, ch)
}

// requireColumn aborts unless name is a column of the snapshot
func (h *ChartHandler) requireColumn(c *gin.Context, name string) bool {
	if name == "" {
		middleware.AbortWithError(c, apperrors.InvalidInput("column name is required"))
		return false
	}
	if _, ok := middleware.Snapshot(c).Data.Column(name); !ok {
		middleware.AbortWithError(c, apperrors.ColumnNotFound(name))
		return false
	}
	return true
}

// HandleOverview parts: data_types, missing_data, metrics and one per distribution column
func (h *ChartHandler) HandleOverview() gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := h.engine(c).OverviewCharts()
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		parts := map[string]*chart.Chart{
			"data_types":   overview.DataTypes,
			"missing_data": overview.MissingData,
			"metrics":      overview.Metrics,
		}
		// distributions live under their own prefix so a column named "metrics" stays reachable
		for _, named := range overview.NumericDistributions {
			parts[distributionPart+named.Column] = named.Chart
		}
		h.writeGroup(c, overview, parts)
	}
}

// HandleAnalytics parts: data_quality, uniqueness, memory_usage
func (h *ChartHandler) HandleAnalytics() gin.HandlerFunc {
	return func(c *gin.Context) {
		analytics, err := h.engine(c).AnalyticsCharts()
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		h.writeGroup(c, analytics, map[string]*chart.Chart{
			"data_quality": analytics.DataQuality,
			"uniqueness":   analytics.Uniqueness,
			"memory_usage": analytics.MemoryUsage,
		})
	}
}

// HandleDashboard parts: data_shape, correlation
func (h *ChartHandler) HandleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		dashboard := h.engine(c).OverviewDashboard()
		h.writeGroup(c, dashboard, map[string]*chart.Chart{
			"data_shape":  dashboard.DataShape,
			"correlation": dashboard.Correlation,
		})
	}
}

func (h *ChartHandler) HandleCorrelation() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.writeChart(c, h.engine(c).CorrelationHeatmap())
	}
}

func (h *ChartHandler) HandleQuality() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.writeChart(c, h.engine(c).QualityDashboard())
	}
}

func (h *ChartHandler) HandleShape() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.writeChart(c, h.engine(c).DataShapeChart())
	}
}

// HandleColumn draws one column with ?type=auto|histogram|bar|box|line|scatter|pie
func (h *ChartHandler) HandleColumn() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("column")
		if !h.requireColumn(c, name) {
			return
		}
		kind, err := visualization.ParseChartType(c.Query("type"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		h.writeChart(c, h.engine(c).ColumnChart(name, kind))
	}
}

// HandleColumnAnalysis returns the per-kind chart set of a column as JSON, or
// one member selected by ?part=
func (h *ChartHandler) HandleColumnAnalysis() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("column")
		if !h.requireColumn(c, name) {
			return
		}
		charts := h.engine(c).ColumnAnalysisCharts(name)
		h.writeGroup(c, charts, charts)
	}
}

// HandleCompare plots ?x= against ?y= with ?type=scatter|line for numeric pairs
func (h *ChartHandler) HandleCompare() gin.HandlerFunc {
	return func(c *gin.Context) {
		x, y := c.Query("x"), c.Query("y")
		if !h.requireColumn(c, x) {
			return
		}
		if !h.requireColumn(c, y) {
			return
		}
		kind, err := visualization.ParseComparisonType(c.Query("type"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		h.writeChart(c, h.engine(c).ComparisonChart(x, y, kind))
	}
}

// HandleTimeSeries plots ?value= over the datetime column ?date=
func (h *ChartHandler) HandleTimeSeries() gin.HandlerFunc {
	return func(c *gin.Context) {
		date, value := c.Query("date"), c.Query("value")
		if !h.requireColumn(c, date) {
			return
		}
		if !h.requireColumn(c, value) {
			return
		}
		h.writeChart(c, h.engine(c).TimeSeriesChart(date, value))
	}
}

// HandleMulti overlays ?columns=a,b,... with ?type=line|bar
func (h *ChartHandler) HandleMulti() gin.HandlerFunc {
	return func(c *gin.Context) {
		var names []string
		for _, name := range strings.Split(c.Query("columns"), ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if len(names) < 2 {
			middleware.AbortWithError(c, apperrors.InvalidInput("columns needs at least two names"))
			return
		}
		kind, err := visualization.ParseMultiType(c.Query("type"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		h.writeChart(c, h.engine(c).MultiColumnChart(names, kind))
	}
}
