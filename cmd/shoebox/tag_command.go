package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/tagger"
)

func newTagCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "tag [directory]",
		Short:       "Interactively date and rename MP4 files in a directory",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				return err
			}

			if !force && !isatty.IsTerminal(os.Stdin.Fd()) {
				return errors.New("tag is interactive and needs a terminal (use --force to override)")
			}

			logger, err := logging.New(logging.Options{Level: "info", Format: "console"})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			session := tagger.NewSession(expanded, logger,
				tagger.WithInput(cmd.InOrStdin()),
				tagger.WithOutput(cmd.OutOrStdout()),
			)
			report, err := session.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tagged %d, skipped %d, remaining %d\n",
				report.Tagged, report.Skipped, report.Remaining)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Run even when stdin is not a terminal")
	return cmd
}
