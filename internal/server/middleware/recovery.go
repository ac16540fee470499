package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sleepstars/personachat/internal/logger"
	"github.com/sleepstars/personachat/internal/models"
	"github.com/sleepstars/personachat/internal/proxy"
	"github.com/sleepstars/personachat/internal/server/render"
)

// Recovery turns a handler panic into a generic 500 JSON response
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.FromContext(c.Request.Context()).WithComponent("http").
					With("path", c.Request.URL.Path).
					With("method", c.Request.Method).
					Error("panic recovered: %v", err)

				c.Abort()
				render.JSON(c, http.StatusInternalServerError, models.ErrorPayload{Error: proxy.InternalServerError})
			}
		}()
		c.Next()
	}
}
