package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.Dir != "./data" {
		t.Errorf("Store.Dir = %q, want %q", cfg.Store.Dir, "./data")
	}
	if cfg.Snapshot.RetentionCount != 5 {
		t.Errorf("Snapshot.RetentionCount = %d, want 5", cfg.Snapshot.RetentionCount)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Dir != "./data" {
		t.Errorf("Store.Dir = %q, want default", cfg.Store.Dir)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store:
  dir: "/var/lib/diskemb"
  read_only: true
snapshot:
  retention_count: 10
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Dir != "/var/lib/diskemb" {
		t.Errorf("Store.Dir = %q, want %q", cfg.Store.Dir, "/var/lib/diskemb")
	}
	if !cfg.Store.ReadOnly {
		t.Error("Store.ReadOnly should be true")
	}
	if cfg.Snapshot.RetentionCount != 10 {
		t.Errorf("Snapshot.RetentionCount = %d, want 10", cfg.Snapshot.RetentionCount)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	// Untouched sections keep their defaults.
	if cfg.Snapshot.Dir != "./snapshots" {
		t.Errorf("Snapshot.Dir = %q, want default", cfg.Snapshot.Dir)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store:\n  dir: /from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DISKEMB_STORE_DIR", "/from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Dir != "/from-env" {
		t.Errorf("Store.Dir = %q, want %q", cfg.Store.Dir, "/from-env")
	}
}
