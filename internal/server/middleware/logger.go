package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/personachat/internal/logger"
)

// Logger writes one access log entry per request
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log := logger.FromContext(c.Request.Context()).WithComponent("http").
			With("method", c.Request.Method).
			With("path", path).
			With("query", query).
			With("status", status).
			With("latency", latency.String()).
			With("client_ip", c.ClientIP()).
			With("body_size", c.Writer.Size())

		switch {
		case status >= 500:
			log.Error("HTTP request")
		case status >= 400:
			log.Warn("HTTP request")
		default:
			log.Info("HTTP request")
		}
	}
}
