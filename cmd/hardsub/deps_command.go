package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hardsub/internal/deps"
	"hardsub/internal/preflight"
	"hardsub/internal/services"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external binaries and directories a run needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				if !status.Available {
					state = "missing"
					if status.Optional {
						state = "missing (optional)"
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state, status.Detail})
			}
			out := cmd.OutOrStdout()
			printTable(out, []string{"Dependency", "Command", "Status", "Detail"}, rows, nil)

			checks := preflight.RunAll(cmd.Context(), cfg)
			checkRows := make([][]string, 0, len(checks))
			for _, check := range checks {
				state := "ok"
				if !check.Passed {
					state = "failed"
				}
				checkRows = append(checkRows, []string{check.Name, state, check.Detail})
			}
			printTable(out, []string{"Check", "Status", "Detail"}, checkRows, nil)

			missing := deps.Missing(statuses)
			failed := preflight.Failed(checks)
			if len(missing) > 0 || len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "deps", "check",
					fmt.Sprintf("%d required dependencies missing, %d checks failed", len(missing), len(failed)), nil)
			}
			return nil
		},
	}
}
