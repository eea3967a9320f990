package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RECLAIM_LAUNCHERS_LOG_LEVEL.
const EnvPrefix = "RECLAIM_LAUNCHERS"

// Config holds host configuration.
type Config struct {
	Log       LogConfig
	Bridge    BridgeConfig
	Catalog   CatalogConfig
	Telemetry TelemetryConfig
}

// LogConfig controls the log file. Stdout carries the messaging protocol,
// so logs never go there.
type LogConfig struct {
	Level string
	File  string
}

// BridgeConfig controls the native loop.
type BridgeConfig struct {
	LockOSThread bool `mapstructure:"lock_os_thread"`
}

// CatalogConfig controls launcher discovery.
type CatalogConfig struct {
	Preload    bool
	Extensions []string
	MimeTypes  string `mapstructure:"mime_types"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled  bool
	Endpoint string
}

func defaultLogFile() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "reclaim-launchers", "reclaim-launchers.log")
}

// Load reads configuration from file and env. The file is
// $RECLAIM_LAUNCHERS_CONFIG, or config.toml in the user config directory.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("bridge.lock_os_thread", true)
	v.SetDefault("catalog.preload", false)
	v.SetDefault("catalog.extensions", []string{})
	v.SetDefault("catalog.mime_types", "")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.endpoint", "")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv(EnvPrefix + "_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "reclaim-launchers"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
