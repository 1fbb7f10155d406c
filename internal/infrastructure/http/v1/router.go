package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

type RouterOptions struct {
	ServiceName      string
	TelemetryEnabled bool
	MetricsEnabled   bool
}

func NewRouter(handler *handler.Handler, l logger.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())

	if opts.TelemetryEnabled {
		r.Use(telemetry.GinMiddleware(opts.ServiceName))
	}

	r.Use(ginZapLogger(l))

	api := r.Group("/api")
	v1 := api.Group("/v1")

	v1.GET("/healthz", handler.Healthz)
	v1.GET("/stats", handler.Stats)
	v1.GET("/providers", handler.Providers)
	v1.GET("/tile/:provider/:style/:z/:x/:y", handler.Tile)
	v1.GET("/viewport", handler.Viewport)
	v1.GET("/events", handler.Events)

	if opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return r
}

func ginZapLogger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		rl := l
		if zl, ok := l.(*logger.ZapLogger); ok {
			rl = zl.With("request_id", requestID)
		}
		c.Set("logger", rl)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), rl))

		start := time.Now()

		c.Next()

		latency := time.Since(start)

		rl.Info("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
