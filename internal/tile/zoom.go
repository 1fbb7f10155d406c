package tile

import (
	"math"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/projection"
	"github.com/paulmach/orb"
)

// SelectZoom picks the most detailed zoom whose tile span across the width of
// bounds fits on screenWidth pixels of tilePixelWidth-wide tiles. The search
// goes down from the max zoom and stops at 1.
func SelectZoom(bounds orb.Bound, screenWidth, tilePixelWidth int) int {
	if tilePixelWidth <= 0 {
		tilePixelWidth = projection.TileSize
	}
	fits := screenWidth / tilePixelWidth

	minLon := projection.Clip(bounds.Min.Lon(), projection.MinLongitude, projection.MaxLongitude)
	maxLon := projection.Clip(bounds.Max.Lon(), projection.MinLongitude, projection.MaxLongitude)

	zoom := projection.MaxZoom
	for zoom > 1 && tilesAcross(minLon, maxLon, zoom) > fits {
		zoom--
	}
	return zoom
}

func tilesAcross(minLon, maxLon float64, zoom int) int {
	n := math.Exp2(float64(zoom))
	first := math.Floor((minLon + 180) / 360 * n)
	last := math.Floor((maxLon + 180) / 360 * n)
	return int(last - first)
}

// Range returns the north-west and south-east tiles covering bounds at zoom,
// after clamping bounds to the Web Mercator limits.
func Range(bounds orb.Bound, zoom int) (Grid, Grid) {
	nw := At(orb.Point{bounds.Min.Lon(), bounds.Max.Lat()}, zoom)
	se := At(orb.Point{bounds.Max.Lon(), bounds.Min.Lat()}, zoom)
	return nw, se
}
