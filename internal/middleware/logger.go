package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	CtxLogger       = "logger"
)

// RequestLogger tags each request with an id, exposes a request-scoped
// logger under CtxLogger and logs one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)
		c.Set(CtxLogger, log.With("request_id", rid))

		c.Next()

		user := "-"
		if id, ok := c.Get(CtxUserID); ok {
			user = slog.AnyValue(id).String()
		}
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ms", time.Since(start).Milliseconds(),
			"user", user,
			"request_id", rid,
		)
	}
}

// Logger returns the request-scoped logger, or slog.Default outside RequestLogger.
func Logger(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(CtxLogger); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
