package httptransport

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/pkg/logging"
)

const headerRequestID = "X-Request-ID"

// requestContext opens a server span per request and seeds the context with
// a request-scoped logger carrying request, trace and span ids. Incoming W3C
// trace headers are honored.
func (h *Handler) requestContext() gin.HandlerFunc {
	tracer := otel.Tracer("minimart.http")
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(headerRequestID, requestID)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		parent := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(parent, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", c.Request.URL.Path),
			),
		)
		defer span.End()

		sc := span.SpanContext()
		logger := logging.WithTrace(h.log, sc.TraceID().String(), sc.SpanID().String()).
			With(zap.String("request_id", requestID))

		c.Request = c.Request.WithContext(logging.ContextWithLogger(ctx, logger))
		c.Next()
	}
}

// httpMetrics records request counts and latency per route template so label
// cardinality stays bounded.
func (h *Handler) httpMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		h.metrics.Requests.WithLabelValues(route, c.Request.Method, status).Inc()
		h.metrics.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// accessLog emits one line per request after the handler completes.
func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		logging.FromContext(c.Request.Context()).Info("http_access",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}
