package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	origPath := ConfigPath
	ConfigPath = filepath.Join(dir, "config.json")
	defer func() { ConfigPath = origPath }()

	cfg := &Config{
		ServerURL:          "https://gateway.example.com",
		UserID:             "42",
		DefaultGranularity: "day",
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL {
		t.Errorf("ServerURL = %q, want %q", loaded.ServerURL, cfg.ServerURL)
	}
	if loaded.DefaultGranularity != "day" {
		t.Errorf("DefaultGranularity = %q, want day", loaded.DefaultGranularity)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	origPath := ConfigPath
	ConfigPath = filepath.Join(t.TempDir(), "missing.json")
	defer func() { ConfigPath = origPath }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "" && os.Getenv("VELO_SERVER_URL") == "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	origPath := ConfigPath
	ConfigPath = filepath.Join(t.TempDir(), "config.json")
	defer func() { ConfigPath = origPath }()

	if err := Save(&Config{ServerURL: "https://old.example.com"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("VELO_SERVER_URL", "https://new.example.com")
	t.Setenv("VELO_ADMIN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "https://new.example.com" {
		t.Errorf("env override not applied: %q", cfg.ServerURL)
	}
	if !cfg.Admin {
		t.Error("VELO_ADMIN=true not applied")
	}
}
