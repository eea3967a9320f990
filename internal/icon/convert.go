// Package icon converts native icons into image.Image values and resolves
// the default icon used for files without a custom launcher icon.
package icon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/reclaim/launchers/internal/platform"
)

// ErrEmpty is returned for a native image that carries neither bitmap data
// nor a drawable.
var ErrEmpty = errors.New("icon: empty native image")

// Converter turns a native icon into an image.Image.
type Converter func(*platform.Image) (image.Image, error)

// Convert decodes bitmap icons and rasterizes drawable ones. A nil native
// image converts to a nil image without error.
func Convert(native *platform.Image) (image.Image, error) {
	switch {
	case native == nil:
		return nil, nil
	case len(native.Data) > 0:
		img, _, err := image.Decode(bytes.NewReader(native.Data))
		if err != nil {
			return nil, fmt.Errorf("decode icon: %w", err)
		}
		return img, nil
	case native.Vector != nil:
		return Rasterize(native.Vector)
	default:
		return nil, ErrEmpty
	}
}

// Rasterize paints d onto a transparent RGBA image covering d.Bounds().
// The result keeps those bounds, so it need not start at the origin.
func Rasterize(d platform.Drawable) (*image.RGBA, error) {
	b := d.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("rasterize icon: empty bounds %v", b)
	}
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.Transparent, image.Point{}, draw.Src)
	d.Draw(dst)
	return dst, nil
}

// Size returns the pixel dimensions of img, 16×16 when img is nil.
func Size(img image.Image) image.Point {
	if img == nil {
		return image.Pt(16, 16)
	}
	return img.Bounds().Size()
}
