package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Parallelism != DefaultParallelism {
		t.Errorf("Parallelism = %d, want %d", cfg.Parallelism, DefaultParallelism)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.StatsEnabled {
		t.Error("StatsEnabled = true, want false by default")
	}
	wantBuildFile := filepath.Join(dir, DefaultBuildFile)
	if cfg.BuildFile != wantBuildFile {
		t.Errorf("BuildFile = %q, want %q", cfg.BuildFile, wantBuildFile)
	}
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, configFilename), `
parallelism: 8
stats_enabled: true
log_level: debug
resources:
  db: 2
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Parallelism != 8 {
		t.Errorf("Parallelism = %d, want 8", cfg.Parallelism)
	}
	if !cfg.StatsEnabled {
		t.Error("StatsEnabled = false, want true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Resources["db"] != 2 {
		t.Errorf("Resources[db] = %d, want 2", cfg.Resources["db"])
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, configFilename), "log_level: warn\n")
	t.Setenv("FORGE_LOG_LEVEL", "error")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, configFilename), "parallelism: [")

	_, err := LoadConfig(dir)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("err = %v, want a 'parse config' error", err)
	}
}

func TestLoadConfig_ValidationError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, configFilename), "parallelism: 0\n")

	_, err := LoadConfig(dir)
	if err == nil || !strings.Contains(err.Error(), "parallelism") {
		t.Fatalf("err = %v, want a parallelism validation error", err)
	}
}

func TestLoadConfig_RejectsInvalidResourceLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, configFilename), "resources:\n  db: 0\n")

	_, err := LoadConfig(dir)
	if err == nil || !strings.Contains(err.Error(), "resources.db") {
		t.Fatalf("err = %v, want a resources.db validation error", err)
	}
}
