package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Server.Port != 4321 {
		t.Errorf("default port = %d, want 4321", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host = %q", cfg.Server.Host)
	}
	if cfg.Backend.URL == "" {
		t.Error("default backend URL must be set")
	}
	if cfg.Screen.BatchSize != 48 {
		t.Errorf("default batch size = %d, want 48", cfg.Screen.BatchSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q", cfg.Logging.Level)
	}
}

func TestLoadFromFilesNoPaths(t *testing.T) {
	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles: %v", err)
	}
	if cfg.Server.Port != 4321 {
		t.Errorf("port = %d, want defaults", cfg.Server.Port)
	}
}

func TestLoadFromFilesOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screener.toml")
	content := `
[server]
port = 9999

[backend]
url = "http://backend:8000/api"
timeout = "30s"

[screen]
batch_size = 24
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host = %q, unset values keep defaults", cfg.Server.Host)
	}
	if cfg.Backend.URL != "http://backend:8000/api" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != "30s" {
		t.Errorf("timeout = %q", cfg.Backend.Timeout)
	}
	if cfg.Screen.BatchSize != 24 {
		t.Errorf("batch size = %d", cfg.Screen.BatchSize)
	}
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	os.WriteFile(first, []byte("[server]\nport = 1111\nhost = \"first\"\n"), 0644)
	os.WriteFile(second, []byte("[server]\nport = 2222\n"), 0644)

	cfg, err := LoadFromFiles(first, second)
	if err != nil {
		t.Fatalf("LoadFromFiles: %v", err)
	}
	if cfg.Server.Port != 2222 {
		t.Errorf("port = %d, later file must win", cfg.Server.Port)
	}
	if cfg.Server.Host != "first" {
		t.Errorf("host = %q, fields unset in later files survive", cfg.Server.Host)
	}
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	if _, err := LoadFromFiles("/nonexistent/screener.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFilesInvalidToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	os.WriteFile(path, []byte("this is not toml {{{"), 0644)

	if _, err := LoadFromFiles(path); err == nil {
		t.Fatal("expected error for invalid toml")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCREENER_SERVER_PORT", "7777")
	t.Setenv("SCREENER_BACKEND_URL", "http://env:8000/api")
	t.Setenv("SCREENER_BATCH_SIZE", "12")
	t.Setenv("SCREENER_LOG_LEVEL", "debug")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want env override", cfg.Server.Port)
	}
	if cfg.Backend.URL != "http://env:8000/api" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
	if cfg.Screen.BatchSize != 12 {
		t.Errorf("batch size = %d", cfg.Screen.BatchSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("SCREENER_SERVER_PORT", "not-a-number")
	t.Setenv("SCREENER_BATCH_SIZE", "-5")

	cfg, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles: %v", err)
	}
	if cfg.Server.Port != 4321 {
		t.Errorf("port = %d, invalid env must be ignored", cfg.Server.Port)
	}
	if cfg.Screen.BatchSize != 48 {
		t.Errorf("batch size = %d, non-positive env must be ignored", cfg.Screen.BatchSize)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 8080, "0.0.0.0", "http://flag:8000/api")
	if cfg.Server.Port != 8080 || cfg.Server.Host != "0.0.0.0" || cfg.Backend.URL != "http://flag:8000/api" {
		t.Errorf("config = %+v", cfg)
	}

	// Zero values leave the config alone.
	ApplyFlagOverrides(cfg, 0, "", "")
	if cfg.Server.Port != 8080 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("zero-value flags must not override: %+v", cfg)
	}
}
