// Package config provides the TOML configuration file and default paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. All fields are optional;
// nil means "use the built-in default".
type FileConfig struct {
	Data DataConfig `toml:"data"`
}

// DataConfig maps storage-related settings.
type DataConfig struct {
	Path      *string `toml:"path"`       // sqlite database path
	ExportDir *string `toml:"export-dir"` // where CSV/JSON exports land
}

// Load reads a TOML config from the given path. A missing file is not an error.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// DBPath returns the configured database path or the XDG default.
func (c FileConfig) DBPath() string {
	if c.Data.Path != nil && *c.Data.Path != "" {
		return *c.Data.Path
	}
	return filepath.Join(xdgDataHome(), "ettpass", "ettpass.db")
}

// ExportDir returns the configured export directory or the user's home.
func (c FileConfig) ExportDir() string {
	if c.Data.ExportDir != nil && *c.Data.ExportDir != "" {
		return *c.Data.ExportDir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(xdgConfigHome(), "ettpass", "config.toml")
}

func xdgConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

func xdgDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}
