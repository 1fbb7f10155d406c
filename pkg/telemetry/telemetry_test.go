package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/config"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), config.Telemetry{Enabled: false}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware("tileengine-test"))

	var sawSpan bool
	r.GET("/api/v1/tile/:provider/:style/:z/:x/:y", func(c *gin.Context) {
		sawSpan = SpanFromContext(c) != nil
		c.Status(http.StatusNoContent)
	})
	r.GET("/api/v1/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tile/osm/mapnik/1/0/0", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, sawSpan)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGinMiddleware_TileAttributes(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware("tileengine-test"))
	r.GET("/api/v1/tile/:provider/:style/:z/:x/:y", func(c *gin.Context) {
		c.Header("X-Tile-Source", "fallback")
		c.Status(http.StatusOK)
	})
	r.GET("/api/v1/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tile/osm/mapnik/3/2/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/tile/:provider/:style/:z/:x/:y", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "osm", attrs["tile.provider"].AsString())
	assert.Equal(t, "mapnik", attrs["tile.style"].AsString())
	assert.Equal(t, int64(3), attrs["tile.z"].AsInt64())
	assert.Equal(t, "fallback", attrs["tile.source"].AsString())
}
