// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Backend  BackendConfig  `toml:"backend"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Category   *string  `toml:"category"`
	Source     *string  `toml:"source"`
	Mode       *string  `toml:"mode"`
	TimeSec    *int     `toml:"time"`
	MaxWords   *int     `toml:"max-words"`
	Region     *string  `toml:"region"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// BackendConfig maps the API the CLI talks to.
type BackendConfig struct {
	URL          *string `toml:"url"`
	SessionToken *string `toml:"session-token"`
	TimeoutSec   *int    `toml:"timeout"`
	AutoSync     *bool   `toml:"auto-sync"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
