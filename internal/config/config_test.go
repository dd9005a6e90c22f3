package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Category != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
category = "science"
time = 30
focus-weak = true

[backend]
url = "https://api.example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Category == nil || *cfg.Practice.Category != "science" {
		t.Fatalf("unexpected category %v", cfg.Practice.Category)
	}
	if cfg.Practice.TimeSec == nil || *cfg.Practice.TimeSec != 30 {
		t.Fatalf("unexpected time %v", cfg.Practice.TimeSec)
	}
	if cfg.Practice.FocusWeak == nil || !*cfg.Practice.FocusWeak {
		t.Fatalf("expected focus-weak")
	}
	if cfg.Backend.URL == nil || *cfg.Backend.URL != "https://api.example.com" {
		t.Fatalf("unexpected backend url %v", cfg.Backend.URL)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nlang = \"en\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "practice.lang") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("load server config: %v", err)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8080")
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %s, want 10s", cfg.RequestTimeout)
	}
	if cfg.IsProduction() {
		t.Fatalf("expected development by default")
	}
}

func TestLoadServerConfigOrigins(t *testing.T) {
	t.Setenv("TYPELINE_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("load server config: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadServerConfigProductionNeedsDomain(t *testing.T) {
	t.Setenv("TYPELINE_ENV", "production")
	_, err := LoadServerConfig()
	if err == nil || !strings.Contains(err.Error(), "CookieDomain") {
		t.Fatalf("expected cookie domain validation error, got %v", err)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("TYPELINE_CACHE_SIZE", "lots")
	var cfg ServerConfig
	err := ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	if got := DefaultConfigPath(); got != filepath.Join(dir, "typeline", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join(dir, "typeline", "typeline.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "typeline", "typeline.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
