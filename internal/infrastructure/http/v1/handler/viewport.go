package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/provider"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/usecase"
	"github.com/paulmach/orb"
)

type viewportQuery struct {
	Provider string  `form:"provider" validate:"required"`
	Style    string  `form:"style" validate:"required"`
	MinLon   float64 `form:"min_lon" validate:"gte=-180,lte=180"`
	MinLat   float64 `form:"min_lat" validate:"gte=-90,lte=90"`
	MaxLon   float64 `form:"max_lon" validate:"gte=-180,lte=180,gtefield=MinLon"`
	MaxLat   float64 `form:"max_lat" validate:"gte=-90,lte=90,gtefield=MinLat"`
	Width    int     `form:"width" validate:"required,min=1,max=8192"`
}

type viewportTile struct {
	Key      string     `json:"key"`
	Zoom     int        `json:"zoom"`
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Fallback bool       `json:"fallback"`
	Bounds   [4]float64 `json:"bounds"`
	URL      string     `json:"url"`
}

type viewportResponse struct {
	Zoom        int            `json:"zoom"`
	Pending     int            `json:"pending"`
	Attribution string         `json:"attribution"`
	BrandLogo   string         `json:"brand_logo,omitempty"`
	Tiles       []viewportTile `json:"tiles"`
}

// Viewport lists the tiles to draw for a bounding box, coarsest first.
func (h *Handler) Viewport(c *gin.Context) {
	l := requestLogger(c)

	var q viewportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, ErrInvalidQuery.Error(), nil)
		return
	}
	if err := h.validate.Struct(q); err != nil {
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	vp, err := h.engine.Viewport(c.Request.Context(), usecase.ViewportRequest{
		Provider:    q.Provider,
		Style:       q.Style,
		Bounds:      orb.Bound{Min: orb.Point{q.MinLon, q.MinLat}, Max: orb.Point{q.MaxLon, q.MaxLat}},
		ScreenWidth: q.Width,
	})
	switch {
	case errors.Is(err, provider.ErrUnknownProvider):
		h.RespondWithJSON(c, http.StatusNotFound, err.Error(), nil)
		return
	case errors.Is(err, usecase.ErrInvalidViewport):
		h.RespondWithJSON(c, http.StatusBadRequest, err.Error(), nil)
		return
	case err != nil:
		l.Error("viewport failed", "error", err)
		h.RespondWithInternalServerError(c)
		return
	}

	resp := viewportResponse{
		Zoom:        vp.Zoom,
		Pending:     vp.Pending,
		Attribution: vp.Attribution,
		BrandLogo:   vp.BrandLogo,
		Tiles:       make([]viewportTile, 0, len(vp.Tiles)),
	}
	for _, t := range vp.Tiles {
		g := t.Address.Grid()
		resp.Tiles = append(resp.Tiles, viewportTile{
			Key:      t.Key,
			Zoom:     g.Z,
			X:        g.X,
			Y:        g.Y,
			Fallback: t.Fallback,
			Bounds:   [4]float64{t.Bounds.Min.Lon(), t.Bounds.Min.Lat(), t.Bounds.Max.Lon(), t.Bounds.Max.Lat()},
			URL:      fmt.Sprintf("/api/v1/tile/%s/%s/%d/%d/%d", q.Provider, q.Style, g.Z, g.X, g.Y),
		})
	}

	h.RespondWithJSON(c, http.StatusOK, "viewport resolved", resp)
}

type providerInfo struct {
	Provider    string `json:"provider"`
	Style       string `json:"style"`
	Attribution string `json:"attribution"`
	BrandLogo   string `json:"brand_logo,omitempty"`
}

func (h *Handler) Providers(c *gin.Context) {
	all := h.engine.Providers()
	out := make([]providerInfo, 0, len(all))
	for _, p := range all {
		info := providerInfo{Provider: p.ID(), Style: p.Style(), Attribution: p.Attribution()}
		if b, ok := p.(provider.Branded); ok {
			info.BrandLogo = b.BrandLogo()
		}
		out = append(out, info)
	}
	h.RespondWithJSON(c, http.StatusOK, "providers", out)
}
