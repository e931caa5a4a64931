package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"premiumflow/logger"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware assigns every request a UUID unless the caller supplied
// one, and echoes it back in the response header.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

func (s *Server) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		logger.IncrementRequestServed(path, c.Writer.Size())
		s.log.WithComponent("api_server").WithFields(logger.Fields{
			"method":      c.Request.Method,
			"path":        path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
			"request_id":  c.GetString("request_id"),
		}).Info("request handled")
	}
}
