package middleware

import (
	"CivicLearn/pkg/logger"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(logger logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		method := c.Request.Method
		path := c.Request.URL.Path
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		fields := []interface{}{
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
		}
		if userID, ok := UserID(c); ok {
			fields = append(fields, "user_id", userID)
		}

		msg := fmt.Sprintf("%s %s", method, path)
		switch {
		case status >= 500:
			logger.Error(msg, fields...)
		case status >= 400:
			logger.Warn(msg, fields...)
		default:
			logger.Info(msg, fields...)
		}

		for _, ginErr := range c.Errors {
			logger.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", method,
				"path", path,
			)
		}
	}
}
