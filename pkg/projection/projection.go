// Package projection converts between WGS84 coordinates, the Web Mercator
// plane and the 256px-tile pixel plane used by slippy map providers.
package projection

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	EarthRadius = 6378137.0

	MinLatitude  = -85.05112878
	MaxLatitude  = 85.05112878
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// TileSize is the pixel width of a provider tile.
	TileSize = 256

	MinZoom = 0
	MaxZoom = 23
)

// Mercator is a point on the unprojected Mercator plane. X is in [-π, π].
// Y grows southward so that it follows tile row order.
type Mercator struct {
	X float64
	Y float64
}

// Clip clamps n to [minValue, maxValue].
func Clip(n, minValue, maxValue float64) float64 {
	return math.Min(math.Max(n, minValue), maxValue)
}

// ClampZoom clamps zoom to the supported level range.
func ClampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// ClampPoint clamps a lon/lat to the Web Mercator bounds.
func ClampPoint(p orb.Point) orb.Point {
	return orb.Point{
		Clip(p.Lon(), MinLongitude, MaxLongitude),
		Clip(p.Lat(), MinLatitude, MaxLatitude),
	}
}

func LonLatToMercator(lon, lat float64) Mercator {
	lon = Clip(lon, MinLongitude, MaxLongitude)
	lat = Clip(lat, MinLatitude, MaxLatitude)

	phi := lat * math.Pi / 180
	return Mercator{
		X: lon * math.Pi / 180,
		Y: -math.Log(math.Tan(math.Pi/4 + phi/2)),
	}
}

func MercatorToLonLat(m Mercator) orb.Point {
	lon := m.X * 180 / math.Pi
	lat := math.Atan(math.Sinh(-m.Y)) * 180 / math.Pi
	return orb.Point{lon, lat}
}

// MapSize is the width and height in pixels of the whole world at zoom.
func MapSize(zoom int) float64 {
	return float64(TileSize) * math.Exp2(float64(ClampZoom(zoom)))
}

// LonLatToPixel returns the fractional pixel coordinate of a lon/lat at zoom.
// The result is not clamped to the map edge.
func LonLatToPixel(lon, lat float64, zoom int) (float64, float64) {
	lon = Clip(lon, MinLongitude, MaxLongitude)
	lat = Clip(lat, MinLatitude, MaxLatitude)

	x := (lon + 180) / 360
	sinLat := math.Sin(lat * math.Pi / 180)
	y := 0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)

	size := MapSize(zoom)
	return x * size, y * size
}

// TileToLonLat returns the lon/lat of a fractional tile coordinate. Integer
// arguments give the north-west corner of that tile.
func TileToLonLat(x, y float64, zoom int) orb.Point {
	n := math.Exp2(float64(ClampZoom(zoom)))
	lon := x/n*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
	return orb.Point{lon, lat}
}

// GroundResolution is the number of metres per pixel at lat and zoom.
func GroundResolution(lat float64, zoom int) float64 {
	lat = Clip(lat, MinLatitude, MaxLatitude)
	return math.Cos(lat*math.Pi/180) * 2 * math.Pi * EarthRadius / MapSize(zoom)
}

// MapScale is the denominator of the map scale at lat, zoom and screen dpi.
func MapScale(lat float64, zoom int, dpi int) float64 {
	return GroundResolution(lat, zoom) * float64(dpi) / 0.0254
}

// DistanceMetres is the great-circle distance between two lon/lats.
func DistanceMetres(a, b orb.Point) float64 {
	const meanRadius = 6371000.0

	colat1 := (90 - a.Lat()) * math.Pi / 180
	colat2 := (90 - b.Lat()) * math.Pi / 180
	dLon := (a.Lon() - b.Lon()) * math.Pi / 180

	cos := math.Cos(colat1)*math.Cos(colat2) + math.Sin(colat1)*math.Sin(colat2)*math.Cos(dLon)
	return math.Acos(Clip(cos, -1, 1)) * meanRadius
}
