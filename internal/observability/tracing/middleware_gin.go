package tracing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/eventory/internal/observability/context"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware instruments inbound HTTP requests. Tenant and actor
// attributes are read after the handler chain, once the platform and auth
// middlewares have populated the request context.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("eventory/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		ctx, span := tracer.Start(ctx, "HTTP "+strings.ToUpper(c.Request.Method), trace.WithSpanKind(trace.SpanKindServer))

		requestID := obscontext.RequestIDFromContext(ctx)
		if requestID != "" {
			member, err := baggage.NewMember("request_id", requestID)
			if err == nil {
				bag, bagErr := baggage.New(member)
				if bagErr == nil {
					ctx = baggage.ContextWithBaggage(ctx, bag)
				}
			}
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		span.SetName("HTTP " + strings.ToUpper(c.Request.Method) + " " + route)
		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		}
		reqCtx := c.Request.Context()
		if platformID, ok := platformctx.PlatformIDFromContext(reqCtx); ok {
			attrs = append(attrs, attribute.String("eventory.platform_id", platformID.String()))
		}
		if actor, ok := platformctx.ActorFromContext(reqCtx); ok {
			attrs = append(attrs,
				attribute.String("eventory.user_id", actor.UserID.String()),
				attribute.String("eventory.role", actor.Role),
			)
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		status := c.Writer.Status()
		lastErr := c.Errors.Last()
		switch {
		case status >= http.StatusInternalServerError:
			if lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, "request error")
		case status >= http.StatusBadRequest && lastErr != nil:
			// client errors stay OK but keep the rejection reason on the span
			span.AddEvent("request.rejected", trace.WithAttributes(attribute.String("reason", lastErr.Error())))
		}
		span.End()
	}
}
