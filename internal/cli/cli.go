package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

// versionInfo holds build-time version metadata set via SetVersion.
type versionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App represents the CLI application with all wired dependencies.
type App struct {
	rootCmd *cobra.Command

	verbose  bool
	cancel   context.CancelFunc
	shutdown chan struct{}

	versionInfo versionInfo
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		shutdown: make(chan struct{}),
	}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command.
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = versionInfo{Version: version, Commit: commit, Date: date}
}

// setupRootCmd configures the root Cobra command and registers subcommands.
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "forge",
		Short: "Parallel work-plan executor",
		Long: `forge runs a declared dependency graph of build nodes across
a bounded pool of workers, honoring project and resource locks. A
failed node fails its dependents; independent nodes still run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output")

	a.rootCmd.AddCommand(NewVersionCmd(a))
	a.rootCmd.AddCommand(NewRunCmd(a))
	a.rootCmd.AddCommand(NewValidateCmd(a))
	a.rootCmd.AddCommand(NewStatsCmd(a))
}

// setLogLevel parses a config.Config.LogLevel string into a
// log/slog.Level and installs it as the default logger's threshold, so
// the slog.Debug/Warn calls in internal/graph, internal/buildfile and
// internal/config actually surface (or stay quiet) per the configured
// level. An unrecognized level falls back to info; config validation
// already rejects anything outside debug/info/warn/error before this
// runs.
func setLogLevel(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(lvl)
}
