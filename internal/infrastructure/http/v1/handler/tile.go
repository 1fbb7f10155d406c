package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/imaging"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/provider"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
)

const (
	headerTileSource   = "X-Tile-Source"
	headerFallbackZoom = "X-Tile-Fallback-Zoom"
)

type tileParams struct {
	Provider string `uri:"provider" validate:"required"`
	Style    string `uri:"style" validate:"required"`
	Z        int    `uri:"z" validate:"min=0,max=23"`
	X        int    `uri:"x" validate:"min=0"`
	Y        int    `uri:"y" validate:"min=0"`
}

// Tile serves the exact tile when cached. Otherwise it queues the fetch and
// answers with a cached ancestor scaled up, or 202 when nothing is cached.
func (h *Handler) Tile(c *gin.Context) {
	l := requestLogger(c)

	var p tileParams
	if err := c.ShouldBindUri(&p); err != nil {
		l.Warn("invalid tile path", "path", c.Request.URL.Path, "error", err)
		h.RespondWithJSON(c, http.StatusBadRequest, "z, x and y should be integers", nil)
		return
	}
	if err := h.validate.Struct(p); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	g := tile.Grid{X: p.X, Y: p.Y, Z: p.Z}
	if !g.Valid() {
		h.RespondWithJSON(c, http.StatusBadRequest, ErrInvalidTileAddress.Error(), nil)
		return
	}

	prov, err := h.engine.Provider(p.Provider, p.Style)
	if err != nil {
		if errors.Is(err, provider.ErrUnknownProvider) {
			h.RespondWithJSON(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		h.RespondWithInternalServerError(c)
		return
	}
	a := prov.Address(g)

	ctx := c.Request.Context()
	if img, ok := h.engine.Resolve(ctx, p.Provider, p.Style, a, false); ok {
		data, err := imaging.EncodePNG(img)
		if err != nil {
			l.Error("failed to encode tile", "tile", a.String(), "error", err)
			h.RespondWithInternalServerError(c)
			return
		}
		c.Header(headerTileSource, "cache")
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, "image/png", data)
		return
	}

	fb := h.engine.Fallback(ctx, p.Provider, p.Style, a)
	if !fb.Found {
		l.Debug("tile pending", "provider", p.Provider, "style", p.Style, "tile", a.String())
		h.RespondWithJSON(c, http.StatusAccepted, "tile pending", gin.H{
			"key": prov.CacheKey(a),
		})
		return
	}

	img, err := imaging.SubTile(fb.Tile, fb.Address, g, h.tileSize)
	if err != nil {
		l.Error("failed to scale fallback tile", "tile", a.String(), "ancestor", fb.Address.String(), "error", err)
		h.RespondWithInternalServerError(c)
		return
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		l.Error("failed to encode fallback tile", "tile", a.String(), "error", err)
		h.RespondWithInternalServerError(c)
		return
	}

	c.Header(headerTileSource, "fallback")
	c.Header(headerFallbackZoom, strconv.Itoa(fb.Address.Zoom()))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}
