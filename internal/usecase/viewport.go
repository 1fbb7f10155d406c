package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/provider"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
	"github.com/paulmach/orb"
)

// MaxViewportTiles caps the tile range one viewport may enumerate. Zoom 1
// has four tiles, so the cap can always be met.
const MaxViewportTiles = 1024

var ErrInvalidViewport = errors.New("invalid viewport")

type ViewportRequest struct {
	Provider    string
	Style       string
	Bounds      orb.Bound
	ScreenWidth int
}

// TileImage is one tile to draw. Fallback tiles are coarser ancestors
// standing in for a tile that is still being fetched.
type TileImage struct {
	Address  tile.Address
	Key      string
	Image    image.Image
	Bounds   orb.Bound
	Fallback bool
}

type Viewport struct {
	Zoom int
	// Tiles are in draw order: coarser zooms first so finer tiles paint
	// over them.
	Tiles       []TileImage
	Pending     int
	Attribution string
	// BrandLogo is a logo URL to show with Attribution, if the provider has one.
	BrandLogo string
}

// Viewport resolves every tile covering req.Bounds at the zoom that fits
// req.ScreenWidth. Missing tiles are queued for fetching and replaced by
// their nearest cached ancestor, each distinct tile appearing once.
func (uc *TileUseCase) Viewport(ctx context.Context, req ViewportRequest) (Viewport, error) {
	p, err := uc.registry.Lookup(req.Provider, req.Style)
	if err != nil {
		return Viewport{}, err
	}
	if req.ScreenWidth <= 0 {
		return Viewport{}, fmt.Errorf("%w: screen width %d", ErrInvalidViewport, req.ScreenWidth)
	}
	if req.Bounds.Min.Lon() > req.Bounds.Max.Lon() || req.Bounds.Min.Lat() > req.Bounds.Max.Lat() {
		return Viewport{}, fmt.Errorf("%w: inverted bounds", ErrInvalidViewport)
	}

	zoom := tile.SelectZoom(req.Bounds, req.ScreenWidth, uc.tilePixelWidth)
	nw, se := tile.Range(req.Bounds, zoom)

	// Zoom selection only looks at width, so tall boxes back off here.
	count := tileCount(nw, se)
	for count > MaxViewportTiles && zoom > 1 {
		zoom--
		nw, se = tile.Range(req.Bounds, zoom)
		count = tileCount(nw, se)
	}

	vp := Viewport{
		Zoom:        zoom,
		Tiles:       make([]TileImage, 0, count),
		Attribution: p.Attribution(),
	}
	if b, ok := p.(provider.Branded); ok {
		vp.BrandLogo = b.BrandLogo()
	}
	seen := make(map[string]struct{}, count)

	add := func(a tile.Address, key string, img image.Image, fallback bool) {
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		vp.Tiles = append(vp.Tiles, TileImage{
			Address:  a,
			Key:      key,
			Image:    img,
			Bounds:   tile.Bounds(a.Grid()),
			Fallback: fallback,
		})
	}

	for x := nw.X; x <= se.X; x++ {
		for y := nw.Y; y <= se.Y; y++ {
			a := p.Address(tile.Grid{X: x, Y: y, Z: zoom})
			key := p.CacheKey(a)
			if _, dup := seen[key]; dup {
				continue
			}

			if img, ok := uc.resolve(ctx, p, a, false); ok {
				add(a, key, img, false)
				continue
			}

			vp.Pending++
			if fb := uc.fallback(ctx, p, a); fb.Found {
				add(fb.Address, p.CacheKey(fb.Address), fb.Tile, true)
			}
		}
	}

	sort.SliceStable(vp.Tiles, func(i, j int) bool {
		return vp.Tiles[i].Address.Zoom() < vp.Tiles[j].Address.Zoom()
	})

	return vp, nil
}

func tileCount(nw, se tile.Grid) int {
	return (se.X - nw.X + 1) * (se.Y - nw.Y + 1)
}
