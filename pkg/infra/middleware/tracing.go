package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/edurag/pkg/infra/tracing"
)

// TracingConfig defines the config for Tracing middleware.
type TracingConfig struct {
	// SkipPaths is a list of paths that never start a span.
	SkipPaths []string
}

// DefaultTracingConfig is the default Tracing middleware config.
var DefaultTracingConfig = TracingConfig{
	SkipPaths: []string{"/health", "/metrics"},
}

// Tracing returns a middleware that extracts W3C trace context from the
// request and wraps the handler chain in a server span.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig)
}

// TracingWithConfig returns a Tracing middleware with custom config.
func TracingWithConfig(config TracingConfig) gin.HandlerFunc {
	skipPaths := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		req := c.Request
		if skipPaths[req.URL.Path] {
			c.Next()
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := otel.Tracer(tracing.TracerName).Start(ctx,
			fmt.Sprintf("%s %s", req.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(req.Method),
				attribute.String("http.route", route),
				semconv.HTTPTarget(req.URL.Path),
				semconv.ServerAddress(req.Host),
				semconv.UserAgentOriginal(req.UserAgent()),
			),
		)
		defer span.End()

		if requestID := GetRequestID(req.Context()); requestID != "" {
			span.SetAttributes(attribute.String("http.request_id", requestID))
		}

		c.Request = req.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		switch {
		case status >= http.StatusInternalServerError:
			span.RecordError(fmt.Errorf("HTTP %d: %s", status, http.StatusText(status)))
			span.SetStatus(codes.Error, http.StatusText(status))
		case status >= http.StatusBadRequest:
			span.SetStatus(codes.Error, http.StatusText(status))
		default:
			span.SetStatus(codes.Ok, "")
		}
	}
}
