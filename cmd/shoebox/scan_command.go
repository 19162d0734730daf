package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
	"shoebox/internal/ingest"
	"shoebox/internal/logging"
	"shoebox/internal/preflight"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Catalog input media without processing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if result := preflight.CheckDirectoryReadable("Input directory", cfg.Paths.InputDir); !result.Passed {
					return fmt.Errorf("input directory: %s", result.Detail)
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				scanner := ingest.NewScanner(cfg, store, logger)
				result, err := scanner.Scan(cmd.Context(), uuid.NewString())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Discovered %d new file(s) (known: %d, ignored: %d)\n",
					result.Discovered, result.Known, result.Ignored)
				if result.Discovered > 0 {
					fmt.Fprintln(out, "Run `shoebox run` to process them.")
				}
				return nil
			})
		},
	}
}
