// Package config loads and validates forge's run configuration: worker
// parallelism, the build file to execute, where to persist run history,
// and named shared-resource concurrency limits.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything a `forge run` invocation needs beyond the
// build file's own node declarations.
type Config struct {
	// Parallelism is N, the executor's worker-lease capacity (spec.md
	// §6). Must be >= 1.
	Parallelism int `yaml:"parallelism"`

	// BuildFile is the path to the YAML build graph (internal/buildfile)
	// to load and run.
	BuildFile string `yaml:"build_file"`

	// HistoryDB is the sqlite file run summaries are persisted to.
	HistoryDB string `yaml:"history_db"`

	// StatsEnabled turns on the opt-in executor timing collector
	// (spec.md §6 stats_property).
	StatsEnabled bool `yaml:"stats_enabled"`

	// LogLevel is one of debug/info/warn/error, parsed into a
	// log/slog.Level by internal/cli.
	LogLevel string `yaml:"log_level"`

	// Resources maps named shared resource (spec.md §5) to its maximum
	// concurrent holders. It is loaded and validated, but `forge run`
	// does not apply it: resource limits come from the build file's own
	// resources block.
	Resources map[string]int `yaml:"resources"`
}

// configFilename is the file LoadConfig looks for in dir, mirroring
// the teacher's per-repo ".choo.yaml" convention.
const configFilename = ".forge.yaml"

// LoadConfig reads configFilename from dir (if present), applies it
// over DefaultConfig, applies environment overrides, then validates
// the result. A missing config file is not an error — defaults alone
// are valid.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, configFilename)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		slog.Debug("no config file found, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.BuildFile != "" && !filepath.IsAbs(cfg.BuildFile) {
		cfg.BuildFile = filepath.Join(dir, cfg.BuildFile)
	}
	if cfg.HistoryDB != "" && !filepath.IsAbs(cfg.HistoryDB) {
		cfg.HistoryDB = filepath.Join(dir, cfg.HistoryDB)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
