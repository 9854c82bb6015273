package config

import "github.com/toshiwd/moomoo-like-sub001/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 4321,
			Host: "localhost",
		},
		Backend: BackendConfig{
			URL:     "http://localhost:8000/api",
			Timeout: "10s",
		},
		Screen: ScreenConfig{
			BatchSize: 48,
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Outputs: []string{"console", "file"},
		},
	}
}
