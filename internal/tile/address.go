package tile

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/projection"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

var (
	ErrInvalidQuadkey    = errors.New("invalid quadkey")
	ErrAddressOutOfRange = errors.New("tile address out of range")
)

// Address identifies one tile at one zoom level. Grid and Quadkey are the
// two concrete forms and convert losslessly into each other.
type Address interface {
	Zoom() int
	Grid() Grid
	// Parent returns the covering tile one zoom level lower. It reports false
	// at zoom 0.
	Parent() (Address, bool)
	String() string
}

// Grid is the x/y/zoom form used by OSM-style providers.
type Grid struct {
	X int
	Y int
	Z int
}

var _ Address = Grid{}

func (g Grid) Zoom() int  { return g.Z }
func (g Grid) Grid() Grid { return g }

func (g Grid) String() string {
	return fmt.Sprintf("%d/%d/%d", g.Z, g.X, g.Y)
}

// Valid reports whether the tile lies inside the world at its zoom.
func (g Grid) Valid() bool {
	if g.Z < projection.MinZoom || g.Z > projection.MaxZoom {
		return false
	}
	n := 1 << g.Z
	return g.X >= 0 && g.X < n && g.Y >= 0 && g.Y < n
}

// Parent re-derives the ancestor from the tile centre, which always lies
// strictly inside the coarser tile.
func (g Grid) Parent() (Address, bool) {
	if g.Z <= 0 {
		return nil, false
	}
	c := Center(g)
	return At(c, g.Z-1), true
}

func (g Grid) Quadkey() Quadkey {
	return GridToQuadkey(g.X, g.Y, g.Z)
}

// Maptile converts to the orb maptile representation.
func (g Grid) Maptile() maptile.Tile {
	return maptile.New(uint32(g.X), uint32(g.Y), maptile.Zoom(g.Z))
}

// Quadkey is the digit-per-level form used by Bing. Its length is its zoom.
type Quadkey string

var _ Address = Quadkey("")

func (q Quadkey) Zoom() int      { return len(q) }
func (q Quadkey) String() string { return string(q) }

// Grid converts the quadkey. Invalid digits are treated as '0'; use
// ParseQuadkey to validate untrusted input.
func (q Quadkey) Grid() Grid {
	g, err := QuadkeyToGrid(string(q))
	if err != nil {
		return Grid{Z: len(q)}
	}
	return g
}

// Parent truncates the last digit.
func (q Quadkey) Parent() (Address, bool) {
	if len(q) == 0 {
		return nil, false
	}
	return q[:len(q)-1], true
}

// ParseQuadkey validates s as a quadkey.
func ParseQuadkey(s string) (Quadkey, error) {
	if _, err := QuadkeyToGrid(s); err != nil {
		return "", err
	}
	return Quadkey(s), nil
}

// GridToQuadkey interleaves the bits of x and y, most significant first.
func GridToQuadkey(x, y, zoom int) Quadkey {
	var b strings.Builder
	b.Grow(zoom)
	for i := zoom; i > 0; i-- {
		digit := byte('0')
		mask := 1 << (i - 1)
		if x&mask != 0 {
			digit++
		}
		if y&mask != 0 {
			digit += 2
		}
		b.WriteByte(digit)
	}
	return Quadkey(b.String())
}

func QuadkeyToGrid(q string) (Grid, error) {
	zoom := len(q)
	if zoom > projection.MaxZoom {
		return Grid{}, fmt.Errorf("%w: %d digits exceeds max zoom %d", ErrInvalidQuadkey, zoom, projection.MaxZoom)
	}

	g := Grid{Z: zoom}
	for i := zoom; i > 0; i-- {
		mask := 1 << (i - 1)
		switch q[zoom-i] {
		case '0':
		case '1':
			g.X |= mask
		case '2':
			g.Y |= mask
		case '3':
			g.X |= mask
			g.Y |= mask
		default:
			return Grid{}, fmt.Errorf("%w: digit %q at %d", ErrInvalidQuadkey, q[zoom-i], zoom-i)
		}
	}
	return g, nil
}

// At returns the grid tile containing p at zoom. Out of range coordinates
// and zooms are clamped.
func At(p orb.Point, zoom int) Grid {
	zoom = projection.ClampZoom(zoom)
	px, py := projection.LonLatToPixel(p.Lon(), p.Lat(), zoom)

	last := float64(int(1)<<zoom) - 1
	return Grid{
		X: int(projection.Clip(math.Floor(px/projection.TileSize), 0, last)),
		Y: int(projection.Clip(math.Floor(py/projection.TileSize), 0, last)),
		Z: zoom,
	}
}

// Bounds returns the geographic footprint of a tile.
func Bounds(g Grid) orb.Bound {
	nw := projection.TileToLonLat(float64(g.X), float64(g.Y), g.Z)
	se := projection.TileToLonLat(float64(g.X+1), float64(g.Y+1), g.Z)
	return orb.Bound{
		Min: orb.Point{nw.Lon(), se.Lat()},
		Max: orb.Point{se.Lon(), nw.Lat()},
	}
}

func Center(g Grid) orb.Point {
	return projection.TileToLonLat(float64(g.X)+0.5, float64(g.Y)+0.5, g.Z)
}
