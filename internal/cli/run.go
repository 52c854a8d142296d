package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/RevCBH/forge/internal/buildfile"
	"github.com/RevCBH/forge/internal/cli/tui"
	"github.com/RevCBH/forge/internal/config"
	"github.com/RevCBH/forge/internal/events"
	"github.com/RevCBH/forge/internal/executor"
	"github.com/RevCBH/forge/internal/graph"
	"github.com/RevCBH/forge/internal/history"
)

// NewRunCmd creates the `forge run` command: load the build file
// named by config or --file, execute its graph through a single
// executor.Pool, and report the outcome.
func NewRunCmd(app *App) *cobra.Command {
	var (
		buildFilePath string
		jsonOutput    bool
		noLog         bool
		useTUI        bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a build file's node graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(".")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			setLogLevel(cfg.LogLevel)

			path := buildFilePath
			if path == "" {
				path = cfg.BuildFile
			}

			build, err := buildfile.Load(path)
			if err != nil {
				return err
			}

			planName := filepath.Base(path)
			plan, err := build.NewPlan(planName)
			if err != nil {
				return fmt.Errorf("build plan: %w", err)
			}

			bus := events.NewBus()

			var program *tea.Program
			var bridge *tui.Bridge
			var tuiDone chan struct{}
			if useTUI {
				model := tui.NewModel(len(build.Nodes), cfg.Parallelism)
				program = tea.NewProgram(model)
				bridge = tui.NewBridge(program)
				bus.Subscribe(bridge.Handler())

				tuiDone = make(chan struct{})
				go func() {
					defer close(tuiDone)
					_, _ = program.Run()
				}()
			} else if !noLog {
				bus.Subscribe(events.LogHandler(events.LogConfig{
					Writer:         cmd.ErrOrStderr(),
					IncludePayload: jsonOutput,
				}))
			}

			pool, err := executor.NewPool(executor.Config{
				Parallelism:  cfg.Parallelism,
				StatsEnabled: cfg.StatsEnabled,
			})
			if err != nil {
				return fmt.Errorf("create pool: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			go func() {
				<-ctx.Done()
				pool.Cancel()
			}()

			bus.Emit(events.NewEvent(events.PoolStarted, planName).
				WithPayload(map[string]any{"node_count": len(build.Nodes)}))

			started := time.Now()
			baseDir := filepath.Dir(path)
			failures, err := pool.Process(ctx, plan, nodeAction(bus, planName, baseDir))
			report := pool.Stop()

			if recordErr := recordRun(cfg, planName, started, len(failures), err, report); recordErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record run history: %v\n", recordErr)
			}

			finishTUI := func() {
				if bridge == nil {
					return
				}
				bridge.SendDone()
				<-tuiDone
			}

			if err != nil {
				bus.Emit(events.NewEvent(events.PlanFailed, planName).WithError(err))
				finishTUI()
				return err
			}
			if len(failures) > 0 {
				bus.Emit(events.NewEvent(events.PlanFailed, planName))
				finishTUI()
				for _, f := range failures {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed: %v\n", f.Err)
				}
				return fmt.Errorf("run failed: %d node(s) did not complete", len(failures))
			}

			bus.Emit(events.NewEvent(events.PlanCompleted, planName))
			finishTUI()
			fmt.Fprintf(cmd.OutOrStdout(), "completed %d node(s) in %s\n",
				len(build.Nodes), time.Since(started).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&buildFilePath, "file", "f", "", "path to the build file (default: config build_file)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "include event payloads in log output")
	cmd.Flags().BoolVar(&noLog, "quiet", false, "suppress event log output")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show a live worker/node dashboard instead of log lines")

	return cmd
}

// nodeAction returns the executor.Action that runs a *graph.Node's
// shell command, if any, emitting node lifecycle events around it.
func nodeAction(bus *events.Bus, planName, baseDir string) executor.Action {
	return func(ctx context.Context, node any) error {
		n, ok := node.(*graph.Node)
		if !ok {
			return fmt.Errorf("unexpected node type %T", node)
		}

		worker := ""
		if lease, ok := executor.LeaseFromContext(ctx); ok {
			worker = fmt.Sprintf("%p", lease)
		}

		bus.Emit(events.NewEvent(events.NodeSelected, planName).WithNode(n.ID).WithWorker(worker))

		if n.Run == "" {
			bus.Emit(events.NewEvent(events.NodeFinished, planName).WithNode(n.ID).WithWorker(worker))
			return nil
		}

		dir := baseDir
		if n.Dir != "" {
			dir = filepath.Join(baseDir, n.Dir)
		}

		cmd := exec.CommandContext(ctx, "sh", "-c", n.Run)
		cmd.Dir = dir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			wrapped := fmt.Errorf("node %q: %w", n.ID, err)
			bus.Emit(events.NewEvent(events.NodeFailed, planName).WithNode(n.ID).WithWorker(worker).WithError(wrapped))
			return wrapped
		}

		bus.Emit(events.NewEvent(events.NodeFinished, planName).WithNode(n.ID).WithWorker(worker))
		return nil
	}
}

// recordRun persists a history.Record for this run if cfg.HistoryDB is set.
func recordRun(cfg *config.Config, planName string, started time.Time, failureCount int, runErr error, report executor.Report) error {
	if cfg.HistoryDB == "" {
		return nil
	}

	db, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer db.Close()

	rec := history.NewRecord(planName, cfg.Parallelism, started)
	rec.CompletedAt = time.Now()
	rec.Status = history.StatusCompleted
	if runErr != nil || failureCount > 0 {
		rec.Status = history.StatusFailed
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	rec.FailureCount = failureCount
	rec.Workers = report.Workers
	rec.AvgSelect = report.AvgSelect
	rec.AvgExecute = report.AvgExecute
	rec.AvgMarkFinished = report.AvgMarkFinished
	var livenessErr *executor.LivenessError
	if errors.As(runErr, &livenessErr) {
		rec.LivenessFailures = 1
	}

	return db.RecordRun(rec)
}
