package middleware

import (
	"time"

	"cascade-router/internal/log"

	"github.com/gin-gonic/gin"
)

// Logger writes one structured line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"size", c.Writer.Size(),
			"remote_addr", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			log.Errorw("request", append(fields, "error", c.Errors.String())...)
			return
		}
		log.Infow("request", fields...)
	}
}
