package launcher

import (
	"context"
	"fmt"
	"image"
	"slices"

	"github.com/reclaim/launchers/internal/bridge"
	"github.com/reclaim/launchers/internal/registry"
)

// Launcher is a program that opens files. There is at most one Launcher
// per registry ID, so launchers compare equal only when they are the same
// pointer.
type Launcher struct {
	id  registry.ID
	svc *Service

	name       lazy[string]
	icon       lazy[image.Image]
	extensions lazy[[]string]
	hash       lazy[uint64]
}

// ID returns the registry ID the launcher stands for.
func (l *Launcher) ID() registry.ID {
	return l.id
}

func (l *Launcher) String() string {
	return fmt.Sprintf("launcher#%d", l.id)
}

// describe reads a property of the launcher's descriptor on the native loop.
func describe[T any](ctx context.Context, l *Launcher, name string, read func(*registry.Registry, *registry.Descriptor) T) (T, error) {
	return bridge.Sync(ctx, l.svc.loop, name, func(r *registry.Registry) (T, error) {
		d, err := r.Lookup(l.id)
		if err != nil {
			var zero T
			return zero, err
		}
		return read(r, d), nil
	})
}

// Name returns the program's display name.
func (l *Launcher) Name(ctx context.Context) (string, error) {
	name, _, err := l.name.get(ctx, func() (string, bool, error) {
		n, err := describe(ctx, l, "launcher-name", func(_ *registry.Registry, d *registry.Descriptor) string {
			return d.Name()
		})
		return n, true, err
	})
	return name, err
}

// Icon returns the program icon, or the default icon when it has none.
func (l *Launcher) Icon(ctx context.Context) (image.Image, error) {
	img, ok, err := l.icon.get(ctx, func() (image.Image, bool, error) {
		img, err := describe(ctx, l, "launcher-icon", func(r *registry.Registry, d *registry.Descriptor) image.Image {
			return r.Icon(d)
		})
		return img, img != nil, err
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return l.svc.DefaultIcon(ctx), nil
	}
	return img, nil
}

// Extensions returns the file extensions registered for the program. The
// extension catalog is loaded first so the list is complete.
func (l *Launcher) Extensions(ctx context.Context) ([]string, error) {
	exts, _, err := l.extensions.get(ctx, func() ([]string, bool, error) {
		exts, err := describe(ctx, l, "launcher-extensions", func(r *registry.Registry, d *registry.Descriptor) []string {
			r.LoadExtensions()
			return d.Extensions()
		})
		return exts, true, err
	})
	return slices.Clone(exts), err
}

// Hash returns the identity hash of the underlying native program.
func (l *Launcher) Hash(ctx context.Context) (uint64, error) {
	h, _, err := l.hash.get(ctx, func() (uint64, bool, error) {
		h, err := describe(ctx, l, "launcher-hash", func(r *registry.Registry, d *registry.Descriptor) uint64 {
			return r.Hash(d)
		})
		return h, true, err
	})
	return h, err
}

// Launch opens filePath with the program without waiting for it. Launch
// failures are logged on the native side; the only error returned is
// bridge.ErrClosed.
func (l *Launcher) Launch(filePath string) error {
	return l.svc.loop.Async("launch", func(r *registry.Registry) error {
		d, err := r.Lookup(l.id)
		if err != nil {
			return err
		}
		if !d.Program().Execute(filePath) {
			return fmt.Errorf("launch %q with %q failed", filePath, d.Name())
		}
		return nil
	})
}
