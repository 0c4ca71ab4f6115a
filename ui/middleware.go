package ui

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"aivaceo/ui/middleware"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), middleware.Recover())
	s.router.Use(slowRequestLogger(2 * time.Second))
}

// slowRequestLogger reports requests that take longer than threshold, which
// usually means a report over a wide dataset
func slowRequestLogger(threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if elapsed := time.Since(start); elapsed > threshold {
			log.Printf("[Server] Slow request %s %s took %v", c.Request.Method, c.Request.URL.Path, elapsed)
		}
	}
}
