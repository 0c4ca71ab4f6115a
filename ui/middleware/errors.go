package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "aivaceo/internal/errors"
)

// StatusFor maps an application error code to an HTTP status
func StatusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.CodeNotFound, apperrors.CodeColumnNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidInput, apperrors.CodeValidationError:
		return http.StatusBadRequest
	case apperrors.CodeEmptyDataset, apperrors.CodeInsufficientData:
		return http.StatusUnprocessableEntity
	case apperrors.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperrors.CodeExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// AbortWithError writes the error as JSON and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	body := gin.H{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	}
	if status == http.StatusInternalServerError {
		body["error"] = "Internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}

// Recover turns a handler panic into an INTERNAL_ERROR response
func Recover() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[Server] Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		AbortWithError(c, apperrors.InternalError(fmt.Sprintf("panic: %v", recovered)))
	})
}

// BodyError classifies a failure to read the request body: exceeding the
// MaxBodySize limit becomes TOO_LARGE, anything else fallback.
func BodyError(err error, fallback error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.TooLarge(maxErr.Limit)
	}
	return fallback
}

// MaxBodySize caps the request body at limit bytes
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
