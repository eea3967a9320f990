package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/reclaim/launchers/internal/messaging"
)

// sensitiveDirectories are never opened, even through symlinks
var sensitiveDirectories = []string{
	"/System",
	"/Library",
	"/usr",
	"/bin",
	"/sbin",
	"/etc",
	"/private/etc",
}

// validateFilePath ensures the file path is safe to open.
// Returns the resolved path, or an error message if validation fails.
func validateFilePath(filePath string) (string, string) {
	if filePath == "" {
		return "", "No file path provided"
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", "Invalid file path"
	}

	// Evaluate any symlinks to get the real path
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", "Cannot resolve file path"
		}
		// For non-existent files, at least check the parent directory
		if _, err := filepath.EvalSymlinks(filepath.Dir(absPath)); err != nil {
			return "", "Cannot resolve file path"
		}
		realPath = absPath
	}

	for _, sensitive := range sensitiveDirectories {
		if strings.HasPrefix(realPath, sensitive+"/") || realPath == sensitive {
			return "", "Access to system directories is not allowed"
		}
	}

	return realPath, ""
}

// HandleOpen opens a file with the launcher registered for its extension.
// The launch is not awaited: success means the launch was queued.
func HandleOpen(ctx context.Context, msg *messaging.Message, cat Catalog) messaging.Response {
	realPath, errMsg := validateFilePath(msg.FilePath)
	if errMsg != "" {
		return messaging.Response{
			Success: false,
			Error:   "file_not_found",
			Message: errMsg,
		}
	}

	info, err := os.Stat(realPath)
	if err != nil || info.IsDir() {
		return messaging.Response{
			Success: false,
			Error:   "file_not_found",
			Message: "The requested file could not be found",
		}
	}

	l, err := cat.ForFile(ctx, realPath)
	if err != nil {
		return internalError(err)
	}
	if l == nil {
		return noDefaultApp(filepath.Base(realPath))
	}

	if err := l.Launch(realPath); err != nil {
		return internalError(err)
	}

	return messaging.Response{
		Success: true,
	}
}
