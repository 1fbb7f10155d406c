package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/stretchr/testify/assert"
)

// healthz never touches the engine.
type idleEngine struct {
	handler.TileEngine
}

func newRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewHandler(validator.New(), idleEngine{}, 256)
	return NewRouter(h, logger.NewNopLogger(), opts)
}

func TestRouter_RequestID(t *testing.T) {
	r := newRouter(RouterOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestRouter_Metrics(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(RouterOptions{MetricsEnabled: true}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tile_queue_depth")

	w = httptest.NewRecorder()
	newRouter(RouterOptions{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
