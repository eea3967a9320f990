// Package launcher exposes the programs the OS registers as file openers.
//
// The association database belongs to a single native loop (see package
// bridge). Service and Launcher are the caller-side view: every query is a
// command sent to that loop, and results are cached here so each value
// crosses the bridge at most once.
package launcher

import (
	"context"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/reclaim/launchers/internal/bridge"
	"github.com/reclaim/launchers/internal/icon"
	"github.com/reclaim/launchers/internal/platform"
	"github.com/reclaim/launchers/internal/registry"
)

type options struct {
	logger     *slog.Logger
	convert    icon.Converter
	lockThread bool
	tracer     trace.TracerProvider
}

// Option configures a Service.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConverter replaces icon.Convert for launcher and default icons.
func WithConverter(c icon.Converter) Option {
	return func(o *options) { o.convert = c }
}

// WithLockedThread pins the native loop to one OS thread.
func WithLockedThread() Option {
	return func(o *options) { o.lockThread = true }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// Service answers launcher queries against one platform.
type Service struct {
	loop        *bridge.Loop[*registry.Registry]
	proxies     *proxyCache
	defaultIcon *icon.Default
	logger      *slog.Logger
}

// New starts the native loop for p. Close releases it.
func New(p platform.Platform, opts ...Option) *Service {
	o := options{logger: slog.Default(), convert: icon.Convert}
	for _, opt := range opts {
		opt(&o)
	}

	reg := registry.New(p,
		registry.WithConverter(o.convert),
		registry.WithLogger(o.logger),
	)
	loopOpts := []bridge.Option{bridge.WithLogger(o.logger)}
	if o.lockThread {
		loopOpts = append(loopOpts, bridge.WithLockedThread())
	}
	if o.tracer != nil {
		loopOpts = append(loopOpts, bridge.WithTracerProvider(o.tracer))
	}

	s := &Service{
		loop:    bridge.New(reg, loopOpts...),
		proxies: newProxyCache(),
		logger:  o.logger,
	}
	s.defaultIcon = icon.NewDefault(s.shellIcon, o.convert, o.logger)
	return s
}

// Close stops the native loop after running the commands already queued,
// including pending launches.
func (s *Service) Close() error {
	return s.loop.Close()
}

// Load eagerly loads the extension and launcher catalogs. Later calls do
// nothing.
func (s *Service) Load(ctx context.Context) error {
	_, err := bridge.Sync(ctx, s.loop, "load-catalogs", func(r *registry.Registry) (struct{}, error) {
		r.LoadExtensions()
		r.LoadLaunchers()
		return struct{}{}, nil
	})
	return err
}

// Extensions returns every file extension some launcher is registered for.
func (s *Service) Extensions(ctx context.Context) ([]string, error) {
	return bridge.Sync(ctx, s.loop, "registered-extensions", func(r *registry.Registry) ([]string, error) {
		r.LoadExtensions()
		return r.RegisteredExtensions(), nil
	})
}

// Extension returns the extension of fileName including its dot: the text
// from the last "." of the final path element. ok is false when there is none.
// Directory names are ignored on purpose, so "dir.v2/README" has no
// extension rather than ".v2/README". Case is kept; lookups ignore it.
func Extension(fileName string) (ext string, ok bool) {
	base := fileName[strings.LastIndexAny(fileName, "/"+string(filepath.Separator))+1:]
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return "", false
	}
	return base[i:], true
}

// ForFile returns the launcher for fileName, which need not exist and may
// be a bare extension such as ".txt". It returns nil when the name has no
// extension or no program is registered for it.
func (s *Service) ForFile(ctx context.Context, fileName string) (*Launcher, error) {
	ext, ok := Extension(fileName)
	if !ok {
		return nil, nil
	}
	id, err := bridge.Sync(ctx, s.loop, "launcher-id", func(r *registry.Registry) (registry.ID, error) {
		d, ok := r.ForExtension(ext)
		if !ok {
			return 0, nil
		}
		return d.ID(), nil
	})
	if err != nil || id == 0 {
		return nil, err
	}
	return s.proxy(id), nil
}

// All loads both catalogs on first use and returns every launcher sorted
// by name, ignoring case.
func (s *Service) All(ctx context.Context) ([]*Launcher, error) {
	ids, err := bridge.Sync(ctx, s.loop, "launcher-ids", func(r *registry.Registry) ([]registry.ID, error) {
		r.LoadExtensions()
		r.LoadLaunchers()
		sorted := r.Sorted()
		ids := make([]registry.ID, len(sorted))
		for i, d := range sorted {
			ids[i] = d.ID()
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	launchers := make([]*Launcher, len(ids))
	for i, id := range ids {
		launchers[i] = s.proxy(id)
	}
	return launchers, nil
}

// DefaultIcon returns the icon for files without a custom launcher icon.
// It is never nil.
func (s *Service) DefaultIcon(ctx context.Context) image.Image {
	return s.defaultIcon.Get(ctx)
}

// IconSize returns the pixel size of launcher icons.
func (s *Service) IconSize(ctx context.Context) image.Point {
	return icon.Size(s.DefaultIcon(ctx))
}

func (s *Service) proxy(id registry.ID) *Launcher {
	return s.proxies.get(id, func(id registry.ID) *Launcher {
		return &Launcher{id: id, svc: s}
	})
}

func (s *Service) shellIcon(ctx context.Context, path string) (*platform.Image, error) {
	return bridge.Sync(ctx, s.loop, "shell-icon", func(r *registry.Registry) (*platform.Image, error) {
		return r.Platform().FileIcon(path)
	})
}
