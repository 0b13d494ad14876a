package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/api/response"
)

// Recovery turns a handler panic into the INTERNAL_ERROR envelope and logs
// the panic value under the returned error id.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if brokenPipe(rec) {
				logger.Warn("client connection lost", zap.String("path", c.Request.URL.Path), zap.Any("error", rec))
				c.Abort()
				return
			}

			errorID := response.Internal(c)
			logger.Error("panic recovered",
				zap.String("error_id", errorID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stack"))
		}()
		c.Next()
	}
}

func brokenPipe(rec any) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	if errors.Is(err, http.ErrAbortHandler) {
		return true
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) {
		msg := strings.ToLower(sysErr.Error())
		return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
	}
	return false
}
