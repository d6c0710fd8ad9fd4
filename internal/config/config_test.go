package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Data.Path != nil {
		t.Fatal("expected zero-value config")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[data]\npath = \"/tmp/gym.db\"\nexport-dir = \"/tmp/exports\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath() != "/tmp/gym.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath())
	}
	if cfg.ExportDir() != "/tmp/exports" {
		t.Fatalf("unexpected export dir %q", cfg.ExportDir())
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[data\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDefaults(t *testing.T) {
	var cfg FileConfig
	if !strings.HasSuffix(cfg.DBPath(), filepath.Join("ettpass", "ettpass.db")) {
		t.Fatalf("unexpected default db path %q", cfg.DBPath())
	}
	if cfg.ExportDir() == "" {
		t.Fatal("export dir must never be empty")
	}
	if !strings.HasSuffix(DefaultConfigPath(), filepath.Join("ettpass", "config.toml")) {
		t.Fatalf("unexpected config path %q", DefaultConfigPath())
	}
}
