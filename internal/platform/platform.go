package platform

import (
	"image"
	"image/draw"
	"strings"
)

// Image is an icon as the operating system hands it over, before it is
// converted into an image.Image.
type Image struct {
	Data   []byte   // Encoded bitmap (PNG, GIF or JPEG)
	Vector Drawable // Set instead of Data when the OS returns a non-bitmap icon
}

// Drawable is a non-bitmap icon that has to be painted onto a raster.
type Drawable interface {
	Bounds() image.Rectangle
	Draw(dst draw.Image)
}

// Program is an application registered with the OS as a file opener.
//
// Implementations must be comparable: two equal values denote the same
// program, and values are used as map keys.
type Program interface {
	// Name returns the display name, empty for transient or broken entries
	Name() string

	// Icon returns the program icon, nil if it has none
	Icon() *Image

	// Execute opens filePath with the program, reporting whether it started
	Execute(filePath string) bool
}

// Platform abstracts the OS file association database
type Platform interface {
	// Programs enumerates every opener program known to the OS
	Programs() []Program

	// Extensions enumerates every file extension known to the OS, with the leading dot
	Extensions() []string

	// FindProgram returns the program associated with ext (".txt"), or nil
	FindProgram(ext string) Program

	// FileIcon returns the icon the desktop shell shows for the file at path
	FileIcon(path string) (*Image, error)
}

// Options configures the OS-backed Platform.
type Options struct {
	// Extensions seeds the extension catalog where the OS offers no enumeration (macOS)
	Extensions []string

	// MimeTypes is an extra mime.types file consulted on freedesktop systems
	MimeTypes string
}

// New returns a Platform implementation for the current OS
func New(opts Options) Platform {
	return newNative(opts)
}

// normalizeExt lower-cases ext and makes sure it carries a leading dot.
func normalizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}
