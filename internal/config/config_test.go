package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Directory != "./out" || cfg.Output.Format != "csv" {
		t.Fatalf("unexpected defaults: %+v", cfg.Output)
	}
	if cfg.Defaults.EntityRowCount != 1000 {
		t.Fatalf("expected default entity row count 1000, got %d", cfg.Defaults.EntityRowCount)
	}
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	t.Setenv("DATAGEN_OUTPUT_FORMAT", "json")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Fatalf("expected env override to apply, got %q", cfg.Output.Format)
	}
}

func TestLoadConfigReadsFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datagen.yaml")
	contents := "output:\n  directory: /tmp/from-file\n  format: csv\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	t.Setenv("DATAGEN_OUTPUT_FORMAT", "json")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Directory != "/tmp/from-file" {
		t.Fatalf("expected file value to apply, got %q", cfg.Output.Directory)
	}
	if cfg.Output.Format != "json" {
		t.Fatalf("expected env override to take precedence over file, got %q", cfg.Output.Format)
	}
}

func TestValidateConfigRejectsBadFormat(t *testing.T) {
	cfg := defaultConfig()
	cfg.Output.Format = "xml"
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("expected an error for an unsupported output format")
	}
}
