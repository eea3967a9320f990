//go:build darwin

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// genericDocumentIcon is the icon Finder shows for documents without a custom one.
const genericDocumentIcon = "/System/Library/CoreServices/CoreTypes.bundle/Contents/Resources/GenericDocumentIcon.icns"

// defaultAppDirs are scanned for application bundles
var defaultAppDirs = []string{
	"/Applications",
	"/System/Applications",
	"/System/Applications/Utilities",
}

// defaultExtensions is used when no extension list is configured.
// Launch Services has no public enumeration of every registered extension.
var defaultExtensions = []string{
	".txt", ".rtf", ".pdf", ".html", ".htm", ".xml", ".json", ".csv",
	".png", ".jpg", ".jpeg", ".gif", ".tiff", ".heic", ".svg",
	".mp3", ".m4a", ".wav", ".mp4", ".mov",
	".zip", ".gz", ".tar", ".dmg",
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".pages", ".numbers", ".key",
}

type darwinPlatform struct {
	appDirs    []string
	extensions []string
}

// darwinApp is an application bundle. It is a comparable value: two apps
// with the same bundle path are the same program.
type darwinApp struct {
	path string
	name string
}

func newNative(opts Options) Platform {
	return newDarwinPlatform(opts)
}

func newDarwinPlatform(opts Options) *darwinPlatform {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	return &darwinPlatform{
		appDirs:    defaultAppDirs,
		extensions: exts,
	}
}

// validatePath ensures a path is safe for command execution
// Returns the cleaned absolute path and an error if validation fails
func validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	// Ensure the path doesn't contain null bytes or other control characters
	for _, r := range cleanPath {
		if r < 32 || r == 127 {
			return "", fmt.Errorf("path contains invalid characters")
		}
	}

	return cleanPath, nil
}

// validateAppPath ensures an application path is valid
func validateAppPath(appPath string) (string, error) {
	cleanPath, err := validatePath(appPath)
	if err != nil {
		return "", err
	}

	if !strings.HasSuffix(cleanPath, ".app") {
		return "", fmt.Errorf("invalid application path")
	}

	// Apps are directories on macOS
	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("application not found")
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid application")
	}

	return cleanPath, nil
}

// extensionPattern validates file extensions (alphanumeric only)
var extensionPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Programs lists the application bundles found in the application directories.
func (p *darwinPlatform) Programs() []Program {
	var programs []Program
	for _, dir := range p.appDirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.app"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			programs = append(programs, darwinApp{
				path: m,
				name: strings.TrimSuffix(filepath.Base(m), ".app"),
			})
		}
	}
	return programs
}

func (p *darwinPlatform) Extensions() []string {
	out := make([]string, 0, len(p.extensions))
	for _, ext := range p.extensions {
		if ext = normalizeExt(ext); ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// FindProgram returns the default application for a file extension.
// Uses osascript/System Events to find the default app.
func (p *darwinPlatform) FindProgram(ext string) Program {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || !extensionPattern.MatchString(ext) {
		return nil
	}

	// Create a temp file to query (needs to exist for System Events)
	f, err := os.CreateTemp("", "query-*."+ext)
	if err != nil {
		return nil
	}
	tempPath := f.Name()
	f.Close()
	defer os.Remove(tempPath)

	// Returns format: "alias Macintosh HD:Applications:Numbers.app:"
	script := fmt.Sprintf(`tell application "System Events" to get default application of (info for (POSIX file "%s"))`, tempPath)
	output, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return nil
	}

	app, ok := parseAlias(strings.TrimSpace(string(output)))
	if !ok {
		return nil
	}
	return app
}

// parseAlias converts an HFS alias ("alias Macintosh HD:Applications:Numbers.app:")
// into the bundle it points at.
func parseAlias(alias string) (darwinApp, bool) {
	if !strings.HasPrefix(alias, "alias ") {
		return darwinApp{}, false
	}

	var name string
	for _, part := range strings.Split(alias, ":") {
		if strings.HasSuffix(part, ".app") {
			name = strings.TrimSuffix(part, ".app")
			break
		}
	}
	if name == "" {
		return darwinApp{}, false
	}

	// Drop the volume name and convert : to /
	hfsPath := strings.TrimSuffix(strings.TrimPrefix(alias, "alias "), ":")
	if i := strings.Index(hfsPath, ":"); i >= 0 {
		hfsPath = hfsPath[i:]
	}
	return darwinApp{path: strings.ReplaceAll(hfsPath, ":", "/"), name: name}, true
}

// FileIcon returns the generic document icon; Finder shows it for any
// file without a type-specific icon, which is what empty probe files get.
func (p *darwinPlatform) FileIcon(path string) (*Image, error) {
	return icnsToPNG(genericDocumentIcon)
}

func (a darwinApp) Name() string {
	return a.name
}

// Icon converts the bundle's CFBundleIconFile to PNG with sips.
func (a darwinApp) Icon() *Image {
	out, err := exec.Command("defaults", "read", filepath.Join(a.path, "Contents", "Info"), "CFBundleIconFile").Output()
	if err != nil {
		return nil
	}
	iconFile := strings.TrimSpace(string(out))
	if iconFile == "" {
		return nil
	}
	if filepath.Ext(iconFile) == "" {
		iconFile += ".icns"
	}
	img, err := icnsToPNG(filepath.Join(a.path, "Contents", "Resources", iconFile))
	if err != nil {
		return nil
	}
	return img
}

// Execute opens filePath with this application
func (a darwinApp) Execute(filePath string) bool {
	cleanPath, err := validatePath(filePath)
	if err != nil {
		return false
	}
	appPath, err := validateAppPath(a.path)
	if err != nil {
		return false
	}
	return exec.Command("open", "-a", appPath, cleanPath).Run() == nil
}

func icnsToPNG(icns string) (*Image, error) {
	out, err := os.CreateTemp("", "icon-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	if err := exec.Command("sips", "-s", "format", "png", icns, "--out", outPath).Run(); err != nil {
		return nil, fmt.Errorf("convert %s: %w", icns, err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read converted icon: %w", err)
	}
	return &Image{Data: data}, nil
}
