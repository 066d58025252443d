// Package middleware provides the HTTP middleware chain for the TPM backend.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLen caps header-supplied request IDs before they land in
// trace attributes.
const maxRequestIDLen = 128

// TracingConfig configures the otelgin wrapper.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig enables tracing under the service name used by the
// tracer provider.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "tpm-backend",
		Enabled:     true,
	}
}

// Tracing is TracingWithConfig with defaults.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig wraps otelgin so every request gets a span named
// "METHOD route", then tags the span with request_id and tenant_id. When
// disabled it is a pass-through.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	otelMiddleware := otelgin.Middleware(cfg.ServiceName)
	return func(c *gin.Context) {
		otelMiddleware(c)

		// otelgin has run its part of the chain; tag whatever span it left
		// on the request context.
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			tagSpan(c, span)
		}
	}
}

// TracingAttributeInjector re-tags the current span once the tenant
// middleware has populated the gin context. Mount it after both Tracing
// and TenantMiddleware.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			tagSpan(c, span)
		}
		c.Next()
	}
}

func tagSpan(c *gin.Context, span trace.Span) {
	if id := requestIDFor(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if tenant := tenantIDFor(c); tenant != "" {
		span.SetAttributes(attribute.String("tenant_id", tenant))
	}
}

// requestIDFor prefers the ID minted by the RequestID middleware and only
// then trusts the inbound header, truncated so oversized headers cannot
// bloat the trace.
func requestIDFor(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	header := c.GetHeader("X-Request-ID")
	if len(header) > maxRequestIDLen {
		header = header[:maxRequestIDLen]
	}
	return header
}

// tenantIDFor reads the tenant resolved by TenantMiddleware, falling back
// to the raw header for routes mounted before it. Header values must parse
// as UUIDs before they are allowed into trace attributes.
func tenantIDFor(c *gin.Context) string {
	if tenant := c.GetString(TenantIDKey); tenant != "" {
		return tenant
	}
	header := c.GetHeader(TenantHeaderKey)
	if header == "" || !isTenantUUID(header) {
		return ""
	}
	return header
}

func isTenantUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// SpanErrorMarker flips the request span to codes.Error for 4xx/5xx
// responses. Mount it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		desc := http.StatusText(status)
		if desc == "" {
			desc = "request failed"
		}
		span.SetStatus(codes.Error, desc)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
