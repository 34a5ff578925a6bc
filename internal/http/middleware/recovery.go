package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/triage/common/logger"
)

// Recovery turns a handler panic into a 500 and marks the request span
// (created by otelgin when tracing is on) as failed.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{Component: "triage.http"})
			err := fmt.Errorf("panic serving %s %s: %v", c.Request.Method, c.FullPath(), r)

			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")

			slog.ErrorContext(ctx, "panic recovered",
				"error", err,
				"client_ip", c.ClientIP(),
				"stack", string(debug.Stack()),
			)
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}()
		c.Next()
	}
}
