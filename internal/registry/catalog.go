package registry

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// LoadExtensions walks every extension known to the OS and registers the
// program associated with each, recording the extension against it. Only
// the first call does any work.
func (r *Registry) LoadExtensions() {
	if r.extensionsLoaded {
		return
	}
	r.extensionsLoaded = true

	for _, ext := range r.platform.Extensions() {
		ext = normalizeExt(ext)
		d, ok := r.Resolve(r.platform.FindProgram(ext))
		if ok {
			d.addExtension(ext)
		}
	}
	r.logger.Debug("extension catalog loaded", "launchers", len(r.byID))
}

// LoadLaunchers registers every opener program the OS enumerates directly.
// Only the first call does any work.
func (r *Registry) LoadLaunchers() {
	if r.launchersLoaded {
		return
	}
	r.launchersLoaded = true

	for _, p := range r.platform.Programs() {
		r.Resolve(p)
	}
	r.logger.Debug("launcher catalog loaded", "launchers", len(r.byID))
}

// ExtensionsLoaded reports whether LoadExtensions has run.
func (r *Registry) ExtensionsLoaded() bool {
	return r.extensionsLoaded
}

// LaunchersLoaded reports whether LoadLaunchers has run.
func (r *Registry) LaunchersLoaded() bool {
	return r.launchersLoaded
}

// ForExtension returns the descriptor of the program associated with ext
// (".txt", matched without regard to case). Until the extension catalog is
// loaded the extension is recorded against the descriptor as it is
// discovered, in the same lower-case form the catalog uses.
func (r *Registry) ForExtension(ext string) (*Descriptor, bool) {
	ext = normalizeExt(ext)
	d, ok := r.Resolve(r.platform.FindProgram(ext))
	if !ok {
		return nil, false
	}
	if !r.extensionsLoaded {
		d.addExtension(ext)
	}
	return d, true
}

// RegisteredExtensions returns every extension recorded against any
// descriptor, grouped by descriptor in ID order.
func (r *Registry) RegisteredExtensions() []string {
	var exts []string
	for _, d := range r.byIDOrder() {
		exts = append(exts, d.extensions...)
	}
	return exts
}

// Sorted returns all descriptors ordered by case-folded display name.
// Equal names keep ID order.
func (r *Registry) Sorted() []*Descriptor {
	ds := r.byIDOrder()
	fold := cases.Fold()
	keys := make(map[ID]string, len(ds))
	for _, d := range ds {
		keys[d.id] = fold.String(d.Name())
	}
	sort.SliceStable(ds, func(i, j int) bool {
		return strings.Compare(keys[ds[i].id], keys[ds[j].id]) < 0
	})
	return ds
}

func (r *Registry) byIDOrder() []*Descriptor {
	ds := make([]*Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].id < ds[j].id })
	return ds
}

// normalizeExt lower-cases ext and gives it a leading dot.
func normalizeExt(ext string) string {
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}
