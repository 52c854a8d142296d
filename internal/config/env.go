package config

import (
	"log/slog"
	"os"
)

// envOverrides maps environment variables to config field setters,
// applied after the file but before validation — the same three-layer
// precedence (defaults < file < env) the teacher's config package used.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "FORGE_BUILD_FILE",
		apply:  func(c *Config, v string) { c.BuildFile = v },
	},
	{
		envVar: "FORGE_HISTORY_DB",
		apply:  func(c *Config, v string) { c.HistoryDB = v },
	},
	{
		envVar: "FORGE_LOG_LEVEL",
		apply:  func(c *Config, v string) { c.LogLevel = v },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			slog.Debug("applying env override", "var", override.envVar, "value", val)
			override.apply(cfg, val)
		}
	}
}
