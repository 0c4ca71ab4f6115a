package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aivaceo/adapters/render"
	"aivaceo/app"
	"aivaceo/ui/middleware"
	"aivaceo/ui/services"
)

// DefaultMaxUploadBytes caps dataset uploads
const DefaultMaxUploadBytes = 32 << 20

// maxRecordsRequestBytes caps the JSON description of a records source
const maxRecordsRequestBytes = 1 << 20

// Server is the HTTP API over a ScanService
type Server struct {
	router    *gin.Engine
	service   *app.ScanService
	reports   *services.ReportService
	chartSize render.Options
	maxUpload int64
}

// ServerOption customises a Server
type ServerOption func(*Server)

// WithChartSize sets the default canvas of rendered charts
func WithChartSize(opts render.Options) ServerOption {
	return func(s *Server) { s.chartSize = opts }
}

// WithMaxUpload sets the upload size limit in bytes
func WithMaxUpload(limit int64) ServerOption {
	return func(s *Server) { s.maxUpload = limit }
}

// NewServer creates a server and registers its routes
func NewServer(service *app.ScanService, opts ...ServerOption) *Server {
	s := &Server{
		router:    gin.New(),
		service:   service,
		reports:   services.NewReportService(),
		chartSize: render.DefaultOptions(),
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	data := NewDataHandler(s.service)
	analysis := NewAnalysisHandler(s.service, s.reports)
	charts := NewChartHandler(s.service, s.chartSize)

	api := s.router.Group("/api")
	api.GET("/datasets", data.HandleList())
	api.POST("/datasets", middleware.MaxBodySize(s.maxUpload), data.HandleUpload())
	api.POST("/datasets/records", middleware.MaxBodySize(maxRecordsRequestBytes), data.HandleLoadRecords())

	ds := api.Group("/datasets/:id", middleware.LoadSnapshot(s.service))
	ds.GET("", data.HandleGet())
	ds.DELETE("", data.HandleDelete())
	ds.POST("/refresh", data.HandleRefresh())

	ds.GET("/overview", analysis.HandleOverview())
	ds.GET("/columns", analysis.HandleColumns())
	ds.GET("/columns/:column", analysis.HandleColumn())
	ds.GET("/correlations", analysis.HandleCorrelations())
	ds.GET("/patterns", analysis.HandlePatterns())
	ds.GET("/insights", analysis.HandleInsights())
	ds.GET("/report", analysis.HandleReport())

	ds.GET("/charts/overview", charts.HandleOverview())
	ds.GET("/charts/analytics", charts.HandleAnalytics())
	ds.GET("/charts/dashboard", charts.HandleDashboard())
	ds.GET("/charts/correlation", charts.HandleCorrelation())
	ds.GET("/charts/quality", charts.HandleQuality())
	ds.GET("/charts/shape", charts.HandleShape())
	ds.GET("/charts/column/:column", charts.HandleColumn())
	ds.GET("/charts/column/:column/analysis", charts.HandleColumnAnalysis())
	ds.GET("/charts/compare", charts.HandleCompare())
	ds.GET("/charts/timeseries", charts.HandleTimeSeries())
	ds.GET("/charts/multi", charts.HandleMulti())
}

func (s *Server) handleHealth(c *gin.Context) {
	summaries, err := s.service.List(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"datasets": len(summaries),
	})
}

// Start runs the HTTP server on addr
func (s *Server) Start(addr string) error {
	log.Printf("[Server] Starting AIVACEO scanner API on http://%s", addr)
	return s.router.Run(addr)
}
