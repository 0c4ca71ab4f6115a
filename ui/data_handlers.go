package ui

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"aivaceo/adapters/api"
	"aivaceo/app"
	apperrors "aivaceo/internal/errors"
	"aivaceo/ui/middleware"
)

// DataHandler manages the dataset registry
type DataHandler struct {
	service *app.ScanService
}

func NewDataHandler(service *app.ScanService) *DataHandler {
	return &DataHandler{service: service}
}

func (h *DataHandler) HandleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := h.service.List(c.Request.Context())
		if err != nil {
			log.Printf("[API] Failed to list datasets: %v", err)
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"datasets": summaries,
			"count":    len(summaries),
		})
	}
}

// HandleUpload loads a CSV or XLSX file sent as the multipart field "file"
func (h *DataHandler) HandleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			middleware.AbortWithError(c, middleware.BodyError(err,
				apperrors.InvalidInput("multipart field 'file' is required")))
			return
		}

		f, err := header.Open()
		if err != nil {
			middleware.AbortWithError(c, apperrors.Wrap(err, "failed to open upload"))
			return
		}
		defer f.Close()

		snap, err := h.service.LoadUpload(c.Request.Context(), header.Filename, f, c.PostForm("sheet"))
		if err != nil {
			log.Printf("[API] Upload of %s failed: %v", header.Filename, err)
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, snap.Summarize())
	}
}

type loadRecordsRequest struct {
	Name           string            `json:"name"`
	URL            string            `json:"url" binding:"required"`
	DataPath       string            `json:"data_path"`
	Headers        map[string]string `json:"headers"`
	QueryParams    map[string]string `json:"query_params"`
	AuthMethod     string            `json:"auth_method"`
	Token          string            `json:"token"`
	Username       string            `json:"username"`
	Password       string            `json:"password"`
	PaginationType string            `json:"pagination_type"`
	PageSize       int               `json:"page_size"`
	MaxPages       int               `json:"max_pages"`
	CursorPath     string            `json:"cursor_path"`
	TimeoutSeconds int               `json:"timeout_seconds"`
}

func (r loadRecordsRequest) source() api.RecordsSource {
	src := api.DefaultRecordsSource(r.URL)
	if r.Name != "" {
		src.Name = r.Name
	}
	src.DataPath = r.DataPath
	src.Headers = r.Headers
	src.QueryParams = r.QueryParams
	if r.AuthMethod != "" {
		src.AuthMethod = r.AuthMethod
	}
	src.AuthToken = r.Token
	src.Username = r.Username
	src.Password = r.Password
	if r.PaginationType != "" {
		src.PaginationType = r.PaginationType
	}
	if r.PageSize > 0 {
		src.PageSize = r.PageSize
	}
	if r.MaxPages > 0 {
		src.MaxPages = r.MaxPages
	}
	src.CursorPath = r.CursorPath
	if r.TimeoutSeconds > 0 {
		src.Timeout = time.Duration(r.TimeoutSeconds) * time.Second
	}
	return src
}

// HandleLoadRecords pulls a dataset from a JSON records endpoint
func (h *DataHandler) HandleLoadRecords() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loadRecordsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, middleware.BodyError(err,
				apperrors.ValidationError("invalid request: "+err.Error())))
			return
		}

		snap, err := h.service.LoadAPI(c.Request.Context(), req.source())
		if err != nil {
			log.Printf("[API] Records load from %s failed: %v", req.URL, err)
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, snap.Summarize())
	}
}

func (h *DataHandler) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.Snapshot(c).Summarize())
	}
}

func (h *DataHandler) HandleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := middleware.Snapshot(c)
		if err := h.service.Remove(c.Request.Context(), snap.ID.String()); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleRefresh rereads a file-backed dataset from disk
func (h *DataHandler) HandleRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := middleware.Snapshot(c)
		refreshed, err := h.service.Refresh(c.Request.Context(), snap.ID.String(), c.Query("sheet"))
		if err != nil {
			log.Printf("[API] Refresh of %s failed: %v", snap.ID, err)
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, refreshed.Summarize())
	}
}
