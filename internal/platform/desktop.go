package platform

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/rkoesters/xdg/desktop"
	"github.com/rkoesters/xdg/keyfile"
)

// desktopEntry holds the parts of a .desktop file a launcher needs.
type desktopEntry struct {
	Name      string
	Icon      string
	Exec      string
	MimeTypes []string
	Hidden    bool // Deleted or NoDisplay; the entry must not be offered
}

// parseDesktopEntry reads an application entry. Links, directories and
// malformed files are rejected.
func parseDesktopEntry(r io.Reader) (desktopEntry, bool) {
	e, err := desktop.New(r)
	if err != nil || e.Type != desktop.Application {
		return desktopEntry{}, false
	}
	return desktopEntry{
		Name:      e.Name,
		Icon:      e.Icon,
		Exec:      e.Exec,
		MimeTypes: nonEmpty(e.MimeType),
		Hidden:    e.Hidden || e.NoDisplay,
	}, true
}

// mimeAppsGroups are the mimeapps.list groups that name handlers.
var mimeAppsGroups = []string{"Default Applications", "Added Associations"}

// parseMimeApps reads a mimeapps.list file and calls add with each MIME
// type and its desktop IDs, group by group.
func parseMimeApps(r io.Reader, add func(group, mimeType string, ids []string)) error {
	kf, err := keyfile.New(r)
	if err != nil {
		return err
	}
	for _, group := range mimeAppsGroups {
		for _, mimeType := range kf.Keys(group) {
			ids, err := kf.StringList(group, mimeType)
			if err != nil {
				continue
			}
			add(group, mimeType, nonEmpty(ids))
		}
	}
	return nil
}

// nonEmpty drops the empty items a trailing ";" can leave in a list.
func nonEmpty(list []string) []string {
	return slices.DeleteFunc(slices.Clone(list), func(s string) bool { return s == "" })
}

// globExt returns the extension of a "*.ext" glob, or "" for any other pattern.
func globExt(glob string) string {
	if !strings.HasPrefix(glob, "*.") {
		return ""
	}
	ext := glob[1:]
	if strings.ContainsAny(ext[1:], "*?[.") {
		return ""
	}
	return strings.ToLower(ext)
}

// parseGlobs reads a shared-mime-info globs2 ("weight:type:glob[:flags]") or
// legacy globs ("type:glob") file and calls add for each simple extension glob.
func parseGlobs(r io.Reader, add func(ext, mimeType string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, ":")
		var mimeType, glob string
		switch {
		case len(fields) >= 3:
			mimeType, glob = fields[1], fields[2]
		case len(fields) == 2:
			mimeType, glob = fields[0], fields[1]
		default:
			continue
		}
		if ext := globExt(glob); ext != "" {
			add(ext, mimeType)
		}
	}
	return sc.Err()
}

// parseMimeTypes reads an /etc/mime.types style file ("type ext1 ext2").
func parseMimeTypes(r io.Reader, add func(ext, mimeType string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		for _, ext := range fields[1:] {
			add("."+strings.ToLower(ext), fields[0])
		}
	}
	return sc.Err()
}

// splitExec tokenizes an Exec value. Double quotes group words and a
// backslash escapes the next character inside quotes.
func splitExec(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		inArg   bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == '"':
			inQuote = !inQuote
			inArg = true
		case !inQuote && (c == ' ' || c == '\t'):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteByte(c)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}

// expandExec builds the argv that opens filePath. Single-file and
// multi-file field codes both receive filePath; codes that need data a
// launcher does not have are dropped. When no file code is present the
// path is appended.
func expandExec(execLine, filePath string) []string {
	var argv []string
	used := false
	for _, arg := range splitExec(execLine) {
		switch arg {
		case "%f", "%F", "%u", "%U":
			argv = append(argv, filePath)
			used = true
			continue
		case "%i", "%c", "%k", "%d", "%D", "%n", "%N", "%v", "%m":
			continue
		}
		var b strings.Builder
		for i := 0; i < len(arg); i++ {
			if arg[i] != '%' || i+1 >= len(arg) {
				b.WriteByte(arg[i])
				continue
			}
			i++
			switch arg[i] {
			case '%':
				b.WriteByte('%')
			case 'f', 'F', 'u', 'U':
				b.WriteString(filePath)
				used = true
			}
		}
		argv = append(argv, b.String())
	}
	if len(argv) > 0 && !used {
		argv = append(argv, filePath)
	}
	return argv
}
