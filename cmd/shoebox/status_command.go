package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shoebox/internal/catalog"
	"shoebox/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show catalog summary and item details",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				statuses, err := parseStatusFilters(statusFilters)
				if err != nil {
					return err
				}

				summary, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}
				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd, statusPayload(summary, items))
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, "Catalog")
				fmt.Fprintln(out, renderSummaryLine(summary, colorize))
				if len(items) == 0 {
					fmt.Fprintln(out, "No catalog items")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "File", "Kind", "Status", "Captured", "Output", "Detail"},
					buildStatusRows(items),
					0,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by item status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func parseStatusFilters(filters []string) ([]catalog.Status, error) {
	var statuses []catalog.Status
	for _, filter := range filters {
		status, ok := catalog.ParseStatus(filter)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", filter)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func renderSummaryLine(summary catalog.HealthSummary, colorize bool) string {
	kind := statusOK
	switch {
	case summary.Failed > 0:
		kind = statusError
	case summary.Pending > 0 || summary.Processing > 0:
		kind = statusWarn
	}
	message := fmt.Sprintf("%d total (%d pending, %d processing, %d completed, %d failed, %d skipped)",
		summary.Total, summary.Pending, summary.Processing, summary.Completed, summary.Failed, summary.Skipped)
	return renderStatusLine("Items", kind, message, colorize)
}

func buildStatusRows(items []*catalog.Item) [][]string {
	titler := cases.Title(language.Und)
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		captured := ""
		if item.CapturedAt != nil {
			captured = item.CapturedAt.Format("2006-01-02 15:04")
			if item.TimeSource != "" {
				captured += " (" + string(item.TimeSource) + ")"
			}
		}
		detail := item.ProgressMessage
		if item.Status == catalog.StatusFailed && item.ErrorMessage != "" {
			detail = item.ErrorMessage
		}
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			filepath.Base(item.SourcePath),
			titler.String(string(item.Kind)),
			titler.String(string(item.Status)),
			captured,
			filepath.Base(item.DestPath),
			detail,
		})
	}
	return rows
}

type statusItemPayload struct {
	ID          int64      `json:"id"`
	SourcePath  string     `json:"source_path"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	TimeSource  string     `json:"time_source,omitempty"`
	DestPath    string     `json:"dest_path,omitempty"`
	Error       string     `json:"error,omitempty"`
	Progress    float64    `json:"progress"`
	ProgressMsg string     `json:"progress_message,omitempty"`
}

func statusPayload(summary catalog.HealthSummary, items []*catalog.Item) map[string]any {
	payloadItems := make([]statusItemPayload, 0, len(items))
	for _, item := range items {
		payloadItems = append(payloadItems, statusItemPayload{
			ID:          item.ID,
			SourcePath:  item.SourcePath,
			Kind:        string(item.Kind),
			Status:      string(item.Status),
			CapturedAt:  item.CapturedAt,
			TimeSource:  string(item.TimeSource),
			DestPath:    item.DestPath,
			Error:       item.ErrorMessage,
			Progress:    item.ProgressPercent,
			ProgressMsg: item.ProgressMessage,
		})
	}
	return map[string]any{
		"summary": summary,
		"items":   payloadItems,
	}
}
