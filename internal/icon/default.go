package icon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"sync"

	"github.com/reclaim/launchers/internal/platform"
)

// probePattern names the empty file whose shell icon becomes the default
// icon. The extension is one no program registers.
const probePattern = "~launcher*~.qwertyuiop"

// ShellIconFunc returns the icon the desktop shell shows for path.
type ShellIconFunc func(ctx context.Context, path string) (*platform.Image, error)

// Default resolves the process-wide default icon once and keeps it.
type Default struct {
	shell   ShellIconFunc
	convert Converter
	logger  *slog.Logger

	mu  sync.Mutex
	img image.Image
}

// NewDefault returns a resolver that asks shell for the icon of an empty
// probe file. A nil convert means Convert.
func NewDefault(shell ShellIconFunc, convert Converter, logger *slog.Logger) *Default {
	if convert == nil {
		convert = Convert
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Default{shell: shell, convert: convert, logger: logger}
}

// Get returns the default icon, never nil. When the shell icon cannot be
// obtained the theme's generic file icon is used. A fallback caused by ctx
// ending is not cached.
func (d *Default) Get(ctx context.Context) image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.img != nil {
		return d.img
	}

	img, err := d.resolve(ctx)
	if err != nil {
		d.logger.Debug("default icon unavailable, using generic icon", "error", err)
		if ctx.Err() != nil {
			return Generic()
		}
		img = Generic()
	}
	d.img = img
	return img
}

func (d *Default) resolve(ctx context.Context) (image.Image, error) {
	if d.shell == nil {
		return nil, errors.New("no shell icon source")
	}
	f, err := os.CreateTemp("", probePattern)
	if err != nil {
		return nil, fmt.Errorf("create probe file: %w", err)
	}
	path := f.Name()
	f.Close()

	native, err := d.shell(ctx, path)
	if rmErr := os.Remove(path); rmErr != nil {
		d.logger.Debug("remove probe file", "path", path, "error", rmErr)
	}
	if err != nil {
		return nil, fmt.Errorf("shell icon: %w", err)
	}

	img, err := d.convert(native)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("shell returned no icon")
	}
	return img, nil
}

var (
	genericOnce sync.Once
	genericImg  *image.RGBA
)

// Generic returns the theme's generic file icon: a 16×16 page with a
// folded corner.
func Generic() image.Image {
	genericOnce.Do(func() {
		img, err := Rasterize(documentGlyph{})
		if err != nil {
			panic(err)
		}
		genericImg = img
	})
	return genericImg
}

type documentGlyph struct{}

func (documentGlyph) Bounds() image.Rectangle {
	return image.Rect(0, 0, 16, 16)
}

func (documentGlyph) Draw(dst draw.Image) {
	var (
		paper  = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
		edge   = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
		fold   = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
		left   = 2
		right  = 13
		top    = 1
		bottom = 14
		corner = 4
	)
	for y := top; y <= bottom; y++ {
		for x := left; x <= right; x++ {
			// Cut the top-right corner diagonally.
			if x > right-corner+(y-top) {
				continue
			}
			c := paper
			switch {
			case x == left || y == bottom || y == top || x == right:
				c = edge
			case x == right-corner+(y-top):
				c = edge
			case y-top < corner && x > right-corner && x < right-corner+(y-top):
				c = fold
			}
			dst.Set(x, y, c)
		}
	}
}
