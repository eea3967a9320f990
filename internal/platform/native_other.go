//go:build !darwin && !linux && !freebsd && !openbsd && !netbsd && !dragonfly

package platform

import "errors"

// emptyPlatform is used where no association database is supported. The
// host still answers, it just never finds a launcher.
type emptyPlatform struct{}

func newNative(Options) Platform {
	return emptyPlatform{}
}

func (emptyPlatform) Programs() []Program { return nil }
func (emptyPlatform) Extensions() []string { return nil }
func (emptyPlatform) FindProgram(string) Program { return nil }
func (emptyPlatform) FileIcon(string) (*Image, error) {
	return nil, errors.New("file icons are not supported on this platform")
}
