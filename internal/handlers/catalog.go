package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"log/slog"

	"github.com/reclaim/launchers/internal/launcher"
	"github.com/reclaim/launchers/internal/messaging"
)

// Catalog is the launcher query surface the handlers need.
// *launcher.Service implements it.
type Catalog interface {
	All(ctx context.Context) ([]*launcher.Launcher, error)
	ForFile(ctx context.Context, fileName string) (*launcher.Launcher, error)
	Extensions(ctx context.Context) ([]string, error)
	IconSize(ctx context.Context) image.Point
}

func internalError(err error) messaging.Response {
	slog.Error("catalog query failed", "error", err)
	return messaging.Response{
		Success: false,
		Error:   "internal",
		Message: err.Error(),
	}
}

func noDefaultApp(name string) messaging.Response {
	return messaging.Response{
		Success: false,
		Error:   "no_default_app",
		Message: "No application is configured to open " + name,
	}
}

// HandleList returns every launcher, sorted by name
func HandleList(ctx context.Context, cat Catalog) messaging.Response {
	all, err := cat.All(ctx)
	if err != nil {
		return internalError(err)
	}

	infos := make([]messaging.LauncherInfo, 0, len(all))
	for _, l := range all {
		info, err := describe(ctx, l)
		if err != nil {
			return internalError(err)
		}
		infos = append(infos, info)
	}

	return messaging.Response{
		Success:   true,
		Launchers: infos,
	}
}

// HandleLookup returns the launcher for msg.FileName, or msg.FilePath when
// no name is given. The file does not need to exist.
func HandleLookup(ctx context.Context, msg *messaging.Message, cat Catalog) messaging.Response {
	name := msg.FileName
	if name == "" {
		name = msg.FilePath
	}
	if name == "" {
		return messaging.Response{
			Success: false,
			Error:   "invalid_request",
			Message: "No file name provided",
		}
	}

	l, err := cat.ForFile(ctx, name)
	if err != nil {
		return internalError(err)
	}
	if l == nil {
		return noDefaultApp(name)
	}

	info, err := describe(ctx, l)
	if err != nil {
		return internalError(err)
	}
	return messaging.Response{
		Success:  true,
		Launcher: &info,
	}
}

// HandleExtensions returns every extension some launcher is registered for
func HandleExtensions(ctx context.Context, cat Catalog) messaging.Response {
	exts, err := cat.Extensions(ctx)
	if err != nil {
		return internalError(err)
	}
	return messaging.Response{
		Success:    true,
		Extensions: exts,
	}
}

// HandleIconSize returns the pixel size of launcher icons
func HandleIconSize(ctx context.Context, cat Catalog) messaging.Response {
	size := cat.IconSize(ctx)
	return messaging.Response{
		Success:  true,
		IconSize: &messaging.Size{Width: size.X, Height: size.Y},
	}
}

func describe(ctx context.Context, l *launcher.Launcher) (messaging.LauncherInfo, error) {
	name, err := l.Name(ctx)
	if err != nil {
		return messaging.LauncherInfo{}, err
	}
	img, err := l.Icon(ctx)
	if err != nil {
		return messaging.LauncherInfo{}, err
	}
	exts, err := l.Extensions(ctx)
	if err != nil {
		return messaging.LauncherInfo{}, err
	}

	info := messaging.LauncherInfo{
		ID:         int64(l.ID()),
		Name:       name,
		Extensions: exts,
	}
	if url, err := dataURL(img); err != nil {
		slog.Warn("icon encoding failed", "launcher", name, "error", err)
	} else {
		info.Icon = url
	}
	return info, nil
}

// dataURL encodes img as a base64 PNG data URL
func dataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
