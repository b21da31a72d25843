package middleware

import (
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request. Requests that died
// because the client hung up mid-response are dropped instead of logged;
// listeners closing the tab mid-stream are routine, not noteworthy.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		for _, ginErr := range c.Errors {
			if clientHungUp(ginErr.Err) {
				return
			}
		}

		attrs := []any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, "query", q)
		}
		logger.Info("request", attrs...)
	}
}

func clientHungUp(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	return errors.Is(opErr.Err, syscall.EPIPE) || errors.Is(opErr.Err, syscall.ECONNRESET)
}
