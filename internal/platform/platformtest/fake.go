// Package platformtest provides an in-memory platform.Platform that counts
// every call made into it.
package platformtest

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reclaim/launchers/internal/platform"
)

// Program is a fake opener. Pointers are used as program identity.
type Program struct {
	Label     string
	Image     *platform.Image
	ExecDelay time.Duration // Execute sleeps this long before recording the launch
	ExecFails bool

	iconCalls atomic.Int32
	nameCalls atomic.Int32

	mu       sync.Mutex
	launched []string
}

// NewProgram returns a program named label with a small PNG icon.
func NewProgram(label string) *Program {
	return &Program{Label: label, Image: PNG(32, 32)}
}

func (p *Program) Name() string {
	p.nameCalls.Add(1)
	return p.Label
}

func (p *Program) Icon() *platform.Image {
	p.iconCalls.Add(1)
	return p.Image
}

func (p *Program) Execute(filePath string) bool {
	if p.ExecDelay > 0 {
		time.Sleep(p.ExecDelay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.launched = append(p.launched, filePath)
	return !p.ExecFails
}

// IconCalls reports how many times Icon was called.
func (p *Program) IconCalls() int {
	return int(p.iconCalls.Load())
}

// NameCalls reports how many times Name was called.
func (p *Program) NameCalls() int {
	return int(p.nameCalls.Load())
}

// Launched returns the paths passed to Execute so far.
func (p *Program) Launched() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.launched...)
}

// Platform is a fake association database.
type Platform struct {
	Apps         []*Program
	Associations map[string]*Program // Extension (".txt") -> program
	Known        []string            // Extensions reported by Extensions
	ShellIcon    *platform.Image
	ShellIconErr error

	mu        sync.Mutex
	lookups   []string
	iconPaths []string
}

// New returns an empty fake platform.
func New() *Platform {
	return &Platform{Associations: map[string]*Program{}}
}

// Associate maps each extension to prog and adds the extensions to the
// known extension list.
func (f *Platform) Associate(prog *Program, exts ...string) {
	for _, ext := range exts {
		f.Associations[ext] = prog
		f.Known = append(f.Known, ext)
	}
}

func (f *Platform) Programs() []platform.Program {
	out := make([]platform.Program, 0, len(f.Apps))
	for _, p := range f.Apps {
		out = append(out, p)
	}
	return out
}

func (f *Platform) Extensions() []string {
	return append([]string(nil), f.Known...)
}

func (f *Platform) FindProgram(ext string) platform.Program {
	f.mu.Lock()
	f.lookups = append(f.lookups, ext)
	f.mu.Unlock()

	prog, ok := f.Associations[ext]
	if !ok || prog == nil {
		return nil
	}
	return prog
}

func (f *Platform) FileIcon(path string) (*platform.Image, error) {
	f.mu.Lock()
	f.iconPaths = append(f.iconPaths, path)
	f.mu.Unlock()

	if f.ShellIconErr != nil {
		return nil, f.ShellIconErr
	}
	if f.ShellIcon == nil {
		return nil, errors.New("no shell icon")
	}
	return f.ShellIcon, nil
}

// Lookups returns the extensions passed to FindProgram so far.
func (f *Platform) Lookups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookups...)
}

// IconPaths returns the paths passed to FileIcon so far.
func (f *Platform) IconPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.iconPaths...)
}

// PNG encodes a w×h opaque image as a platform image.
func PNG(w, h int) *platform.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return &platform.Image{Data: buf.Bytes()}
}
