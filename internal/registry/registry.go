// Package registry keeps the identity of native opener programs.
//
// A Registry maps each platform.Program to exactly one Descriptor with a
// stable integer ID for the lifetime of the process. It is not safe for
// concurrent use: the bridge loop owns it and every call happens there.
package registry

import (
	"errors"
	"fmt"
	"hash/maphash"
	"image"
	"log/slog"
	"slices"

	"github.com/reclaim/launchers/internal/icon"
	"github.com/reclaim/launchers/internal/platform"
)

// ID identifies a Descriptor. IDs start at 1 and are never reused.
type ID int64

// ErrUnknownID is returned by Lookup for an ID the registry never issued.
var ErrUnknownID = errors.New("registry: unknown id")

// Descriptor is the native-side record of one opener program.
type Descriptor struct {
	id         ID
	program    platform.Program
	extensions []string

	iconResolved bool
	icon         image.Image

	hashed bool
	hash   uint64
}

func (d *Descriptor) ID() ID {
	return d.id
}

func (d *Descriptor) Program() platform.Program {
	return d.program
}

func (d *Descriptor) Name() string {
	return d.program.Name()
}

// Extensions returns a copy of the extensions known to map to this program,
// in discovery order.
func (d *Descriptor) Extensions() []string {
	return slices.Clone(d.extensions)
}

// addExtension records ext unless it is already known.
func (d *Descriptor) addExtension(ext string) {
	if !slices.Contains(d.extensions, ext) {
		d.extensions = append(d.extensions, ext)
	}
}

// Registry is the arena of descriptors.
type Registry struct {
	platform platform.Platform
	convert  icon.Converter
	logger   *slog.Logger
	seed     maphash.Seed

	byProgram map[platform.Program]*Descriptor
	byID      map[ID]*Descriptor
	lastID    ID

	extensionsLoaded bool
	launchersLoaded  bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithConverter replaces icon.Convert for descriptor icons.
func WithConverter(c icon.Converter) Option {
	return func(r *Registry) { r.convert = c }
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New returns an empty registry backed by p.
func New(p platform.Platform, opts ...Option) *Registry {
	r := &Registry{
		platform:  p,
		convert:   icon.Convert,
		logger:    slog.Default(),
		seed:      maphash.MakeSeed(),
		byProgram: map[platform.Program]*Descriptor{},
		byID:      map[ID]*Descriptor{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Platform returns the association database the registry reads.
func (r *Registry) Platform() platform.Platform {
	return r.platform
}

// valid reports whether a program may be registered. Programs without a
// display name are transient or broken OS entries.
func valid(p platform.Program) bool {
	return p != nil && p.Name() != ""
}

// Resolve returns the descriptor for p, registering it under a new ID the
// first time a valid program is seen. It reports false for invalid programs.
func (r *Registry) Resolve(p platform.Program) (*Descriptor, bool) {
	if p == nil {
		return nil, false
	}
	if d, ok := r.byProgram[p]; ok {
		return d, true
	}
	if !valid(p) {
		return nil, false
	}
	r.lastID++
	d := &Descriptor{id: r.lastID, program: p}
	r.byProgram[p] = d
	r.byID[d.id] = d
	r.logger.Debug("registered launcher", "id", d.id, "name", p.Name())
	return d, true
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id ID) (*Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return d, nil
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Icon resolves and converts the program icon the first time it is asked
// for. Both a missing icon and a failed conversion are remembered as absent.
func (r *Registry) Icon(d *Descriptor) image.Image {
	if d.iconResolved {
		return d.icon
	}
	d.iconResolved = true
	img, err := r.convert(d.program.Icon())
	if err != nil {
		r.logger.Debug("launcher icon not convertible", "id", d.id, "error", err)
		return nil
	}
	d.icon = img
	return img
}

// Hash returns the identity hash of the descriptor's program, computed once.
func (r *Registry) Hash(d *Descriptor) uint64 {
	if !d.hashed {
		d.hash = maphash.Comparable(r.seed, d.program)
		d.hashed = true
	}
	return d.hash
}
