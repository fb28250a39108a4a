package middleware

import (
	"time"

	"auction-backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := map[string]any{
			"method":      c.Request.Method,
			"path":        path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		if id := UserID(c); id != uuid.Nil {
			fields["user_id"] = id.String()
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request failed", fields)
		case c.Writer.Status() >= 400:
			logger.Warn("request rejected", fields)
		default:
			logger.Info("request handled", fields)
		}
	}
}
