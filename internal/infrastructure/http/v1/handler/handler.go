package handler

import (
	"context"
	"image"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/notify"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/provider"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/usecase"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
)

const (
	internalServerErrorText = "the server encountered an error and could not process your request"
)

// TileEngine is the part of usecase.TileUseCase the handlers need.
type TileEngine interface {
	Provider(providerID, styleID string) (provider.Provider, error)
	Providers() []provider.Provider
	Resolve(ctx context.Context, providerID, styleID string, a tile.Address, onlyFromCache bool) (image.Image, bool)
	Fallback(ctx context.Context, providerID, styleID string, a tile.Address) usecase.FallbackResult
	Viewport(ctx context.Context, req usecase.ViewportRequest) (usecase.Viewport, error)
	Subscribe(l notify.Listener) string
	Unsubscribe(id string) bool
	Stats() usecase.Stats
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Handler struct {
	validate *validator.Validate
	engine   TileEngine
	tileSize int
}

func NewHandler(v *validator.Validate, engine TileEngine, tileSize int) *Handler {
	return &Handler{
		validate: v,
		engine:   engine,
		tileSize: tileSize,
	}
}

func (h *Handler) RespondWithInternalServerError(c *gin.Context) {
	h.RespondWithJSON(c, http.StatusInternalServerError, internalServerErrorText, nil)
}

func (h *Handler) RespondWithJSON(c *gin.Context, code int, message string, data any) {
	success := code < 400

	r := response{
		Success: success,
		Message: message,
		Data:    data,
	}

	c.JSON(code, r)
}

func requestLogger(c *gin.Context) logger.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(logger.Logger); ok {
			return l
		}
	}
	return logger.FromContext(c.Request.Context())
}
