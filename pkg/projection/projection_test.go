package projection

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestLonLatToMercator_RoundTrip(t *testing.T) {
	points := []orb.Point{
		{0, 0},
		{-0.1278, 51.5074},
		{139.6917, 35.6895},
		{-179.9, -84.9},
		{180, 85},
	}

	for _, p := range points {
		m := LonLatToMercator(p.Lon(), p.Lat())
		got := MercatorToLonLat(m)
		assert.InDelta(t, p.Lon(), got.Lon(), 1e-9)
		assert.InDelta(t, p.Lat(), got.Lat(), 1e-9)
	}
}

func TestLonLatToMercator_Clamps(t *testing.T) {
	m := LonLatToMercator(200, 90)
	assert.InDelta(t, math.Pi, m.X, 1e-12)
	assert.False(t, math.IsInf(m.Y, 0))

	edge := LonLatToMercator(180, MaxLatitude)
	assert.Equal(t, edge, m)

	got := MercatorToLonLat(m)
	assert.InDelta(t, MaxLatitude, got.Lat(), 1e-9)
}

func TestLonLatToMercator_YDecreasesWithLatitude(t *testing.T) {
	prev := math.Inf(1)
	for lat := -85.0; lat <= 85.0; lat += 0.25 {
		y := LonLatToMercator(12.5, lat).Y
		assert.Less(t, y, prev, "lat %v", lat)
		prev = y
	}
}

func TestLonLatToPixel(t *testing.T) {
	x, y := LonLatToPixel(0, 0, 0)
	assert.InDelta(t, 128, x, 1e-9)
	assert.InDelta(t, 128, y, 1e-9)

	x, y = LonLatToPixel(-180, MaxLatitude, 1)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-3)
}

func TestTileToLonLat(t *testing.T) {
	nw := TileToLonLat(0, 0, 0)
	assert.InDelta(t, -180, nw.Lon(), 1e-9)
	assert.InDelta(t, 85.0511287798, nw.Lat(), 1e-9)

	centre := TileToLonLat(1, 1, 1)
	assert.InDelta(t, 0, centre.Lon(), 1e-9)
	assert.InDelta(t, 0, centre.Lat(), 1e-9)
}

func TestGroundResolution(t *testing.T) {
	assert.InDelta(t, 156543.03, GroundResolution(0, 0), 0.01)
	assert.InDelta(t, GroundResolution(0, 0)/2, GroundResolution(0, 1), 1e-9)
	assert.Greater(t, MapScale(0, 10, 96), 0.0)
}

func TestDistanceMetres(t *testing.T) {
	assert.InDelta(t, 0, DistanceMetres(orb.Point{1, 1}, orb.Point{1, 1}), 1e-6)

	// one degree of longitude on the equator
	assert.InDelta(t, 111195, DistanceMetres(orb.Point{0, 0}, orb.Point{1, 0}), 1)
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, 0, ClampZoom(-3))
	assert.Equal(t, 23, ClampZoom(40))
	assert.Equal(t, 12, ClampZoom(12))
}
