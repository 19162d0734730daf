package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/ingest"
	"shoebox/internal/logging"
	"shoebox/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the input directory and process everything found",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				if !skipPreflight {
					if err := requirePreflight(cfg); err != nil {
						return err
					}
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				manager := ingest.NewManager(cfg, store, logger)
				report, err := manager.Run(signalCtx)
				if errors.Is(err, ingest.ErrRunInProgress) {
					return errors.New("another shoebox run is already in progress")
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s finished\n", report.RunID)
				fmt.Fprintf(out, "  discovered: %d (known: %d, ignored: %d)\n",
					report.Scan.Discovered, report.Scan.Known, report.Scan.Ignored)
				fmt.Fprintf(out, "  completed:  %d\n", report.Completed)
				if report.Skipped > 0 {
					fmt.Fprintf(out, "  skipped:    %d (see `shoebox status -s skipped`)\n", report.Skipped)
				}
				if report.Failed > 0 {
					fmt.Fprintf(out, "  failed:     %d (see `shoebox status` for details)\n", report.Failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory and binary checks before the run")
	return cmd
}

func requirePreflight(cfg *config.Config) error {
	failed := preflight.Failed(preflight.RunAll(cfg))
	if len(failed) == 0 {
		return nil
	}
	lines := make([]string, 0, len(failed))
	for _, result := range failed {
		lines = append(lines, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return fmt.Errorf("preflight failed:\n  %s", strings.Join(lines, "\n  "))
}
