package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/types"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		fields := logrus.Fields{
			"method":    ctx.Request.Method,
			"path":      path,
			"status":    ctx.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": ctx.ClientIP(),
		}

		if user, ok := ctx.Get(types.ContextUserKey); ok {
			if u, ok := user.(AuthenticatedUser); ok {
				fields["user_id"] = u.ID
			}
		}

		entry := logger.Log.WithFields(fields)

		switch status := ctx.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Info("request rejected")
		default:
			entry.Debug("request handled")
		}
	}
}
