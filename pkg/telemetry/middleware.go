package telemetry

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jaennil/guide_helper/backend/tileengine"

var untracedPaths = map[string]bool{
	"/api/v1/healthz": true,
	"/api/v1/events":  true,
	"/metrics":        true,
}

// GinMiddleware starts a server span per request. Tile routes also carry the
// provider, style and tile address, and the span records whether the tile came
// from the cache, from a fallback ancestor or is still pending.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)

	return func(c *gin.Context) {
		if untracedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(requestAttributes(c, serviceName, route)...),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(c.Writer.Header()))

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			semconv.HTTPResponseStatusCode(status),
			attribute.Int("http.response.size", c.Writer.Size()),
		)
		if src := c.Writer.Header().Get("X-Tile-Source"); src != "" {
			span.SetAttributes(attribute.String("tile.source", src))
		} else if status == http.StatusAccepted {
			span.SetAttributes(attribute.String("tile.source", "pending"))
		}

		// 4xx is the caller's fault and leaves the server span unset.
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, c.Errors.String())
			if err := c.Errors.Last(); err != nil {
				span.RecordError(err)
			}
		}
	}
}

func requestAttributes(c *gin.Context, serviceName, route string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.HTTPRequestMethodKey.String(c.Request.Method),
		semconv.HTTPRoute(route),
		semconv.URLPath(c.Request.URL.Path),
		semconv.ServerAddress(c.Request.Host),
		semconv.ClientAddress(c.ClientIP()),
		semconv.UserAgentOriginal(c.Request.UserAgent()),
	}

	if p := c.Param("provider"); p != "" {
		attrs = append(attrs,
			attribute.String("tile.provider", p),
			attribute.String("tile.style", c.Param("style")),
		)
	}
	for _, name := range []string{"z", "x", "y"} {
		if v, err := strconv.Atoi(c.Param(name)); err == nil {
			attrs = append(attrs, attribute.Int("tile."+name, v))
		}
	}
	if q := c.Query("provider"); q != "" {
		attrs = append(attrs, attribute.String("tile.provider", q))
	}
	return attrs
}

// SpanFromContext returns the request span started by GinMiddleware.
func SpanFromContext(c *gin.Context) trace.Span {
	return trace.SpanFromContext(c.Request.Context())
}
