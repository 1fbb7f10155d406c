package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadrants paints each 128px quadrant of a 256px tile a different colour.
func quadrants() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	colours := [2][2]color.RGBA{
		{{255, 0, 0, 255}, {0, 255, 0, 255}},
		{{0, 0, 255, 255}, {255, 255, 0, 255}},
	}
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.SetRGBA(x, y, colours[y/128][x/128])
		}
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	data, err := EncodePNG(quadrants())
	require.NoError(t, err)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())
}

func TestDecode_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, quadrants(), nil))

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("<html>rate limited</html>"))
	assert.Error(t, err)
}

func TestSubTile_Quadrant(t *testing.T) {
	parent := tile.Grid{X: 0, Y: 0, Z: 0}

	out, err := SubTile(quadrants(), parent, tile.Grid{X: 1, Y: 1, Z: 1}, 256)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 256, 256), out.Bounds())

	r, g, b, _ := out.At(128, 128).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0), b)
}

func TestSubTile_QuadkeyAncestor(t *testing.T) {
	out, err := SubTile(quadrants(), tile.Quadkey("1"), tile.Grid{X: 2, Y: 0, Z: 2}, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, out.Bounds().Dx())
}

func TestSubTile_NotAncestor(t *testing.T) {
	_, err := SubTile(quadrants(), tile.Grid{X: 1, Y: 0, Z: 1}, tile.Grid{X: 0, Y: 0, Z: 2}, 256)
	assert.ErrorIs(t, err, ErrNotAncestor)

	_, err = SubTile(quadrants(), tile.Grid{X: 0, Y: 0, Z: 3}, tile.Grid{X: 0, Y: 0, Z: 2}, 256)
	assert.ErrorIs(t, err, ErrNotAncestor)
}

func TestSourceRect_DeepZoom(t *testing.T) {
	r, err := sourceRect(image.Rect(0, 0, 256, 256), tile.Grid{Z: 0}, tile.Grid{X: 1023, Y: 1023, Z: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Dx())
	assert.Equal(t, 1, r.Dy())
}
