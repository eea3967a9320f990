package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvPrefix+"_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "reclaim-launchers.log", filepath.Base(cfg.Log.File))
	require.True(t, cfg.Bridge.LockOSThread)
	require.False(t, cfg.Catalog.Preload)
	require.Empty(t, cfg.Catalog.Extensions)
	require.True(t, cfg.Telemetry.Enabled)
	require.Empty(t, cfg.Telemetry.Endpoint)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "host.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "debug"

[bridge]
lock_os_thread = false

[catalog]
preload = true
extensions = [".txt", ".pdf"]
mime_types = "/opt/mime.types"
`), 0o644))
	t.Setenv(EnvPrefix+"_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Bridge.LockOSThread)
	require.True(t, cfg.Catalog.Preload)
	require.Equal(t, []string{".txt", ".pdf"}, cfg.Catalog.Extensions)
	require.Equal(t, "/opt/mime.types", cfg.Catalog.MimeTypes)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"_LOG_LEVEL", "warn")
	t.Setenv(EnvPrefix+"_TELEMETRY_ENDPOINT", "http://localhost:4318")
	t.Setenv(EnvPrefix+"_CATALOG_PRELOAD", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "http://localhost:4318", cfg.Telemetry.Endpoint)
	require.True(t, cfg.Catalog.Preload)
}

func TestLoadInvalidFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log\nlevel = "), 0o644))
	t.Setenv(EnvPrefix+"_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}
