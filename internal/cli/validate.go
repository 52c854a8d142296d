package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RevCBH/forge/internal/buildfile"
)

// NewValidateCmd creates the `forge validate` command: parse a build
// file and construct its graph.Plan without running anything, so
// dependency cycles, missing references, and bad resource limits
// surface before a real run starts.
func NewValidateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <build-file>",
		Short: "Check a build file for cycles, missing dependencies, and bad locks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			build, err := buildfile.Load(path)
			if err != nil {
				return err
			}

			plan, err := build.NewPlan("validate")
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d node(s), %d resource(s) — OK (plan %s)\n",
				path, len(build.Nodes), len(build.Resources), plan.ID())
			return nil
		},
	}

	return cmd
}
