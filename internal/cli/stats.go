package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RevCBH/forge/internal/config"
	"github.com/RevCBH/forge/internal/history"
)

// NewStatsCmd creates the `forge stats` command: report the most
// recent runs recorded in the history database.
func NewStatsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recent run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(".")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			setLogLevel(cfg.LogLevel)
			if cfg.HistoryDB == "" {
				return fmt.Errorf("history is disabled (no history_db configured)")
			}

			db, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history db: %w", err)
			}
			defer db.Close()

			recs, err := db.ListRecent(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded yet")
				return nil
			}

			for _, r := range recs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s  %-20s  parallelism=%d  workers=%d  failures=%d  avg_execute=%s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.PlanName,
					r.Parallelism, r.Workers, r.FailureCount, r.AvgExecute)
				if r.Error != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    error: %s\n", r.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")

	return cmd
}
