package ui

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"aivaceo/app"
	"aivaceo/domain/profile"
	apperrors "aivaceo/internal/errors"
	"aivaceo/ui/middleware"
	"aivaceo/ui/services"
)

// AnalysisHandler serves the scanner operations of a dataset
type AnalysisHandler struct {
	service *app.ScanService
	reports *services.ReportService
}

func NewAnalysisHandler(service *app.ScanService, reports *services.ReportService) *AnalysisHandler {
	return &AnalysisHandler{service: service, reports: reports}
}

func (h *AnalysisHandler) HandleOverview() gin.HandlerFunc {
	return func(c *gin.Context) {
		overview, err := h.service.ScannerFor(middleware.Snapshot(c)).ScanOverview()
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func (h *AnalysisHandler) HandleColumns() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := middleware.Snapshot(c)
		scanner := h.service.ScannerFor(snap)

		columns := make([]*profile.ColumnAnalysis, 0, snap.Data.NumColumns())
		for _, name := range snap.Data.ColumnNames() {
			analysis, err := scanner.AnalyzeColumn(name)
			if err != nil {
				middleware.AbortWithError(c, err)
				return
			}
			columns = append(columns, analysis)
		}
		c.JSON(http.StatusOK, gin.H{
			"columns": columns,
			"count":   len(columns),
		})
	}
}

func (h *AnalysisHandler) HandleColumn() gin.HandlerFunc {
	return func(c *gin.Context) {
		analysis, err := h.service.ScannerFor(middleware.Snapshot(c)).AnalyzeColumn(c.Param("column"))
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

// HandleCorrelations accepts an optional threshold in [0, 1]
func (h *AnalysisHandler) HandleCorrelations() gin.HandlerFunc {
	return func(c *gin.Context) {
		scanner := h.service.ScannerFor(middleware.Snapshot(c))

		threshold := scanner.Options().CorrelationThreshold
		if raw := c.Query("threshold"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				middleware.AbortWithError(c, apperrors.InvalidInput(fmt.Sprintf("invalid threshold: %q", raw)))
				return
			}
			threshold = parsed
		}

		result, err := scanner.FindCorrelations(threshold)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *AnalysisHandler) HandlePatterns() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.service.ScannerFor(middleware.Snapshot(c)).DetectPatterns())
	}
}

func (h *AnalysisHandler) HandleInsights() gin.HandlerFunc {
	return func(c *gin.Context) {
		insights := h.service.ScannerFor(middleware.Snapshot(c)).GenerateInsights()
		c.JSON(http.StatusOK, gin.H{
			"insights": insights,
			"count":    len(insights),
		})
	}
}

// HandleReport renders the full report as json, md or html
func (h *AnalysisHandler) HandleReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		format := strings.ToLower(c.DefaultQuery("format", "json"))
		if format != "json" && format != "md" && format != "html" {
			middleware.AbortWithError(c, apperrors.InvalidInput("unknown report format: "+format))
			return
		}

		snap := middleware.Snapshot(c)
		report, err := h.service.ReportFor(c.Request.Context(), snap)
		if err != nil {
			log.Printf("[API] Report for %s failed: %v", snap.ID, err)
			middleware.AbortWithError(c, err)
			return
		}

		switch format {
		case "md":
			c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(h.reports.Markdown(report)))
		case "html":
			c.Data(http.StatusOK, "text/html; charset=utf-8", h.reports.HTML(report))
		default:
			c.JSON(http.StatusOK, report)
		}
	}
}
