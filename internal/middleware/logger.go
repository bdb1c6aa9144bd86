package middleware

import (
	"time"

	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger writes one line per request. Errors attached with c.Error are
// logged at error level with the request id. Sampled requests carry their trace id.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case len(c.Errors) > 0 || status >= 500:
			evt = log.Error()
			if len(c.Errors) > 0 {
				evt = evt.Str("errors", c.Errors.String())
			}
		case status >= 400:
			evt = log.Warn()
		default:
			evt = log.Info()
		}

		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			evt = evt.Str("trace_id", sc.TraceID().String())
		}

		evt.Str("request_id", response.GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
