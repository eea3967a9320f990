package platform

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/xdg"
)

var (
	iconThemes = []string{"hicolor", "Adwaita"}
	iconSizes  = []string{"48x48", "32x32", "64x64", "24x24", "16x16", "128x128", "256x256"}
)

// freedesktopPlatform reads the XDG desktop entry, shared-mime-info and
// mimeapps.list databases.
type freedesktopPlatform struct {
	dataDirs   []string // In precedence order, most important first
	configDirs []string
	mimeFiles  []string

	once      sync.Once
	apps      map[string]desktopApp // By desktop file ID
	appOrder  []string
	extToMime map[string]string
	defaults  map[string][]string // MIME type -> desktop IDs in preference order
	icons     *iconLookup
}

// desktopApp is one desktop entry. It is a comparable value; icons points
// at the lookup shared by every app of one platform.
type desktopApp struct {
	id    string
	name  string
	icon  string
	exec  string
	icons *iconLookup
}

type iconLookup struct {
	dataDirs []string
}

func newFreedesktop(dataDirs, configDirs, mimeFiles []string) *freedesktopPlatform {
	return &freedesktopPlatform{
		dataDirs:   dataDirs,
		configDirs: configDirs,
		mimeFiles:  mimeFiles,
		icons:      &iconLookup{dataDirs: dataDirs},
	}
}

// dataDirs returns the XDG data directories, most important first.
func dataDirs() []string {
	return append([]string{xdg.DataHome}, xdg.DataDirs...)
}

// configDirs returns the XDG config directories, most important first.
func configDirs() []string {
	return append([]string{xdg.ConfigHome}, xdg.ConfigDirs...)
}

func (p *freedesktopPlatform) load() {
	p.once.Do(func() {
		p.apps = map[string]desktopApp{}
		p.extToMime = map[string]string{}
		p.defaults = map[string][]string{}
		declared := map[string][]string{}

		seen := map[string]bool{}
		for _, dir := range p.dataDirs {
			root := filepath.Join(dir, "applications")
			_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() || filepath.Ext(path) != ".desktop" {
					return nil
				}
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return nil
				}
				id := strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
				if seen[id] {
					return nil
				}
				seen[id] = true
				entry, ok := readDesktopEntry(path)
				if !ok || entry.Hidden || entry.Exec == "" {
					return nil
				}
				p.apps[id] = desktopApp{id: id, name: entry.Name, icon: entry.Icon, exec: entry.Exec, icons: p.icons}
				p.appOrder = append(p.appOrder, id)
				for _, mt := range entry.MimeTypes {
					declared[mt] = append(declared[mt], id)
				}
				return nil
			})
		}

		addExt := func(ext, mimeType string) {
			if _, ok := p.extToMime[ext]; !ok {
				p.extToMime[ext] = mimeType
			}
		}
		for _, dir := range p.dataDirs {
			for _, name := range []string{"globs2", "globs"} {
				readWith(filepath.Join(dir, "mime", name), func(f *os.File) error { return parseGlobs(f, addExt) })
			}
		}
		for _, path := range p.mimeFiles {
			readWith(path, func(f *os.File) error { return parseMimeTypes(f, addExt) })
		}

		var lists []string
		for _, dir := range p.configDirs {
			lists = append(lists, filepath.Join(dir, "mimeapps.list"))
		}
		for _, dir := range p.dataDirs {
			lists = append(lists, filepath.Join(dir, "applications", "mimeapps.list"))
		}
		added := map[string][]string{}
		for _, path := range lists {
			readWith(path, func(f *os.File) error {
				return parseMimeApps(f, func(group, mimeType string, ids []string) {
					if group == "Default Applications" {
						p.defaults[mimeType] = append(p.defaults[mimeType], ids...)
						return
					}
					added[mimeType] = append(added[mimeType], ids...)
				})
			})
		}
		for mt, ids := range added {
			p.defaults[mt] = append(p.defaults[mt], ids...)
		}
		for mt, ids := range declared {
			p.defaults[mt] = append(p.defaults[mt], ids...)
		}
	})
}

func readDesktopEntry(path string) (desktopEntry, bool) {
	f, err := os.Open(path)
	if err != nil {
		return desktopEntry{}, false
	}
	defer f.Close()
	return parseDesktopEntry(f)
}

// readWith opens path and hands it to parse; missing files are not an error.
func readWith(path string, parse func(*os.File) error) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_ = parse(f)
}

func (p *freedesktopPlatform) Programs() []Program {
	p.load()
	programs := make([]Program, 0, len(p.appOrder))
	for _, id := range p.appOrder {
		programs = append(programs, p.apps[id])
	}
	return programs
}

func (p *freedesktopPlatform) Extensions() []string {
	p.load()
	exts := make([]string, 0, len(p.extToMime))
	for ext := range p.extToMime {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func (p *freedesktopPlatform) FindProgram(ext string) Program {
	p.load()
	mimeType, ok := p.extToMime[normalizeExt(ext)]
	if !ok {
		return nil
	}
	for _, id := range p.defaults[mimeType] {
		if app, ok := p.apps[id]; ok {
			return app
		}
	}
	return nil
}

// FileIcon looks up the MIME type icon for path, falling back to the
// generic icon of its media type and then to the unknown-file icon.
func (p *freedesktopPlatform) FileIcon(path string) (*Image, error) {
	p.load()
	mimeType, ok := p.extToMime[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mimeType = "application/octet-stream"
	}
	major, _, _ := strings.Cut(mimeType, "/")
	for _, name := range []string{
		strings.ReplaceAll(mimeType, "/", "-"),
		major + "-x-generic",
		"text-x-generic",
		"unknown",
	} {
		if file := p.icons.find(name, "mimetypes"); file != "" {
			return readImage(file)
		}
	}
	return nil, fmt.Errorf("no icon for %s", mimeType)
}

// find returns the path of a PNG icon named name in the given theme
// context, or "" if none exists.
func (l *iconLookup) find(name, context string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		if strings.EqualFold(filepath.Ext(name), ".png") && fileExists(name) {
			return name
		}
		return ""
	}
	for _, dir := range l.dataDirs {
		for _, theme := range iconThemes {
			for _, size := range iconSizes {
				candidate := filepath.Join(dir, "icons", theme, size, context, name+".png")
				if fileExists(candidate) {
					return candidate
				}
			}
		}
	}
	if context == "apps" {
		for _, dir := range l.dataDirs {
			candidate := filepath.Join(dir, "pixmaps", name+".png")
			if fileExists(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}
	return &Image{Data: data}, nil
}

func (a desktopApp) Name() string {
	return a.name
}

func (a desktopApp) Icon() *Image {
	file := a.icons.find(a.icon, "apps")
	if file == "" {
		return nil
	}
	img, err := readImage(file)
	if err != nil {
		return nil
	}
	return img
}

// Execute starts the entry's command without waiting for it to exit.
func (a desktopApp) Execute(filePath string) bool {
	argv := expandExec(a.exec, filePath)
	if len(argv) == 0 {
		return false
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return false
	}
	go func() { _ = cmd.Wait() }()
	return true
}
