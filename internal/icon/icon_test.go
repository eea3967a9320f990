package icon

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reclaim/launchers/internal/platform"
	"github.com/reclaim/launchers/internal/platform/platformtest"
)

type square struct{ size int }

func (s square) Bounds() image.Rectangle { return image.Rect(0, 0, s.size, s.size) }

func (s square) Draw(dst draw.Image) {
	dst.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
}

// offsetSquare fills its bounds, which do not start at the origin.
type offsetSquare struct{ min, size int }

func (s offsetSquare) Bounds() image.Rectangle {
	return image.Rect(s.min, s.min, s.min+s.size, s.min+s.size)
}

func (s offsetSquare) Draw(dst draw.Image) {
	draw.Draw(dst, s.Bounds(), image.White, image.Point{}, draw.Src)
}

func TestConvert(t *testing.T) {
	t.Run("nil is absent", func(t *testing.T) {
		img, err := Convert(nil)
		require.NoError(t, err)
		require.Nil(t, img)
	})

	t.Run("png bitmap", func(t *testing.T) {
		img, err := Convert(platformtest.PNG(24, 12))
		require.NoError(t, err)
		require.Equal(t, image.Pt(24, 12), img.Bounds().Size())
	})

	t.Run("drawable is rasterized", func(t *testing.T) {
		img, err := Convert(&platform.Image{Vector: square{size: 20}})
		require.NoError(t, err)
		require.Equal(t, image.Pt(20, 20), img.Bounds().Size())
		r, _, _, a := img.At(0, 0).RGBA()
		require.Equal(t, uint32(0xffff), r)
		require.Equal(t, uint32(0xffff), a)
		_, _, _, a = img.At(5, 5).RGBA()
		require.Zero(t, a)
	})

	t.Run("drawable with offset bounds", func(t *testing.T) {
		img, err := Convert(&platform.Image{Vector: offsetSquare{min: 16, size: 16}})
		require.NoError(t, err)
		b := img.Bounds()
		require.Equal(t, image.Pt(16, 16), b.Size())
		for _, p := range []image.Point{b.Min, b.Max.Sub(image.Pt(1, 1))} {
			_, _, _, a := img.At(p.X, p.Y).RGBA()
			require.Equal(t, uint32(0xffff), a, p)
		}
	})

	t.Run("garbage data", func(t *testing.T) {
		_, err := Convert(&platform.Image{Data: []byte("not an image")})
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Convert(&platform.Image{})
		require.ErrorIs(t, err, ErrEmpty)
	})
}

func TestRasterizeEmptyBounds(t *testing.T) {
	_, err := Rasterize(square{size: 0})
	require.Error(t, err)
}

func TestSize(t *testing.T) {
	require.Equal(t, image.Pt(16, 16), Size(nil))
	require.Equal(t, image.Pt(48, 32), Size(image.NewRGBA(image.Rect(0, 0, 48, 32))))
}

func TestGeneric(t *testing.T) {
	g := Generic()
	require.NotNil(t, g)
	require.Equal(t, image.Pt(16, 16), g.Bounds().Size())
	require.Same(t, g, Generic())
}

func TestDefaultUsesShellIcon(t *testing.T) {
	var probe string
	calls := 0
	d := NewDefault(func(_ context.Context, path string) (*platform.Image, error) {
		calls++
		probe = path
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Zero(t, info.Size())
		return platformtest.PNG(32, 32), nil
	}, nil, nil)

	img := d.Get(context.Background())
	require.Equal(t, image.Pt(32, 32), Size(img))
	require.Same(t, img, d.Get(context.Background()))
	require.Equal(t, 1, calls)

	_, err := os.Stat(probe)
	require.True(t, os.IsNotExist(err), "probe file must be removed")
}

func TestDefaultFallsBackToGeneric(t *testing.T) {
	tests := []struct {
		name  string
		shell ShellIconFunc
	}{
		{"shell error", func(context.Context, string) (*platform.Image, error) {
			return nil, errors.New("no shell")
		}},
		{"no icon", func(context.Context, string) (*platform.Image, error) { return nil, nil }},
		{"undecodable", func(context.Context, string) (*platform.Image, error) {
			return &platform.Image{Data: []byte{1, 2, 3}}, nil
		}},
		{"no source", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDefault(tt.shell, nil, nil)
			require.Same(t, Generic(), d.Get(context.Background()))
		})
	}
}

func TestDefaultDoesNotCacheCancelledFallback(t *testing.T) {
	calls := 0
	d := NewDefault(func(ctx context.Context, _ string) (*platform.Image, error) {
		calls++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return platformtest.PNG(20, 20), nil
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Same(t, Generic(), d.Get(ctx))

	img := d.Get(context.Background())
	require.Equal(t, image.Pt(20, 20), Size(img))
	require.Equal(t, 2, calls)
}
