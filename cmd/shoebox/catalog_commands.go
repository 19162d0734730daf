package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain the ingest catalog database",
	}

	catalogCmd.AddCommand(newCatalogClearCommand(ctx))
	catalogCmd.AddCommand(newCatalogRetryCommand(ctx))

	return catalogCmd
}

func newCatalogClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all catalog items and day counters",
		Long: "Delete all catalog items and day counters. Already-ingested output " +
			"files are left in place; the next run re-catalogs the input directory " +
			"from scratch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("clear removes every catalog record; re-run with --yes to confirm")
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm the destructive clear")
	return cmd
}

func newCatalogRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Requeue failed items for the next run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				count, err := store.RetryFailed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d failed item(s)\n", count)
				return nil
			})
		},
	}
}
