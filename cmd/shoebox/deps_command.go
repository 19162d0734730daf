package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoebox/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := preflight.CheckSystemDeps(cfg)
			results := preflight.RunAll(cfg)

			if asJSON {
				return writeJSON(cmd, map[string]any{
					"binaries":  statuses,
					"preflight": results,
				})
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				if detail == "" {
					detail = status.Description
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(status.Available),
					yesNo(status.Optional),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "Available", "Optional", "Detail"},
				rows,
			))

			colorize := shouldColorize(out)
			fmt.Fprintln(out, "Preflight")
			for _, result := range results {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if len(preflight.Failed(results)) == 0 {
				fmt.Fprintln(out, "Ready to ingest")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}
