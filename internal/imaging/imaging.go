// Package imaging decodes, encodes and resamples tile images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/projection"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmptyImage  = errors.New("decoded image has no pixels")
	ErrNotAncestor = errors.New("address is not an ancestor of the target tile")
)

// Decode reads a png, jpeg, gif, webp or bmp tile. An image with an empty
// bounding box is an error.
func Decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w (%s)", ErrEmptyImage, format)
	}
	return img, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SubTile cuts the part of ancestor that covers target and scales it to a
// size x size image. A ancestor at the same zoom is only rescaled.
func SubTile(ancestor image.Image, ancestorAddr tile.Address, target tile.Grid, size int) (image.Image, error) {
	if size <= 0 {
		size = projection.TileSize
	}

	src, err := sourceRect(ancestor.Bounds(), ancestorAddr.Grid(), target)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), ancestor, src, draw.Src, nil)
	return dst, nil
}

func sourceRect(b image.Rectangle, a, t tile.Grid) (image.Rectangle, error) {
	d := t.Z - a.Z
	if d < 0 || d > projection.MaxZoom {
		return image.Rectangle{}, fmt.Errorf("%w: %v above %v", ErrNotAncestor, a, t)
	}

	n := 1 << d
	ox := t.X - a.X<<d
	oy := t.Y - a.Y<<d
	if ox < 0 || ox >= n || oy < 0 || oy >= n {
		return image.Rectangle{}, fmt.Errorf("%w: %v does not cover %v", ErrNotAncestor, a, t)
	}

	w, h := b.Dx(), b.Dy()
	x0 := b.Min.X + ox*w/n
	y0 := b.Min.Y + oy*h/n
	x1 := b.Min.X + (ox+1)*w/n
	y1 := b.Min.Y + (oy+1)*h/n

	// Deep zoom gaps shrink the quadrant below one source pixel.
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return image.Rect(x0, y0, x1, y1), nil
}
