package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
)

// Config represents the portal configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Backend BackendConfig        `toml:"backend"`
	Screen  ScreenConfig         `toml:"screen"`
	Logging common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// BackendConfig points at the screener backend service.
type BackendConfig struct {
	URL     string `toml:"url"`
	Timeout string `toml:"timeout"` // default request timeout, e.g. "10s"
}

// ScreenConfig contains data-synchronization settings.
type ScreenConfig struct {
	BatchSize int `toml:"batch_size"` // max codes per batched bars fetch
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies SCREENER_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("SCREENER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCREENER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if url := os.Getenv("SCREENER_BACKEND_URL"); url != "" {
		config.Backend.URL = url
	}
	if size := os.Getenv("SCREENER_BATCH_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			config.Screen.BatchSize = n
		}
	}
	if level := os.Getenv("SCREENER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string, backendURL string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if backendURL != "" {
		config.Backend.URL = backendURL
	}
}
