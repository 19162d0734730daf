package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, source_path, kind, status, captured_at, time_source,
    dest_path, error_message, run_id, progress_stage, progress_percent,
    progress_message, created_at, updated_at`

// NewItem inserts a newly discovered media file in pending state. Returns
// the existing item unchanged when the source path is already cataloged.
func (s *Store) NewItem(ctx context.Context, sourcePath string, kind Kind) (*Item, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("source path required")
	}
	switch kind {
	case KindPhoto, KindVideo:
	default:
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}

	if existing, err := s.GetBySourcePath(ctx, sourcePath); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO catalog_items (
            source_path, kind, status, progress_percent, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		sourcePath,
		string(kind),
		StatusPending,
		0.0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a catalog item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetBySourcePath returns the item cataloged for a source path, if any.
func (s *Store) GetBySourcePath(ctx context.Context, sourcePath string) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM catalog_items WHERE source_path = ? LIMIT 1`,
		sourcePath,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by source: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing catalog item.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE catalog_items
         SET source_path = ?, kind = ?, status = ?, captured_at = ?, time_source = ?,
             dest_path = ?, error_message = ?, run_id = ?, progress_stage = ?,
             progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ?`,
		item.SourcePath,
		string(item.Kind),
		string(item.Status),
		nullableTime(item.CapturedAt),
		nullableString(string(item.TimeSource)),
		nullableString(item.DestPath),
		nullableString(item.ErrorMessage),
		nullableString(item.RunID),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		item.ID,
	); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// NextWithStatus returns the oldest item in any of the provided statuses,
// or nil when none match.
func (s *Store) NextWithStatus(ctx context.Context, statuses ...Status) (*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM catalog_items
         WHERE status IN (`+strings.Join(placeholders, ", ")+`)
         ORDER BY id LIMIT 1`,
		args...,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next item: %w", err)
	}
	return item, nil
}

// Claim atomically transitions the oldest item from one status to another
// and returns it, or nil when no item was waiting. Concurrent workers use
// this so each pending item is handed to exactly one of them.
func (s *Store) Claim(ctx context.Context, from, to Status) (*Item, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var id int64
	err := retryOnBusy(ensureContext(ctx), func() error {
		return s.db.QueryRowContext(
			ctx,
			`UPDATE catalog_items SET status = ?, updated_at = ?
             WHERE id = (SELECT id FROM catalog_items WHERE status = ? ORDER BY id LIMIT 1)
             RETURNING id`,
			string(to), timestamp, string(from),
		).Scan(&id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim item: %w", err)
	}
	return s.GetByID(ctx, id)
}

// List returns catalog items filtered by the provided statuses; with no
// statuses it returns every item ordered by id.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Summary reports aggregate catalog counts.
func (s *Store) Summary(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM catalog_items GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("summarize catalog: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan summary row: %w", err)
		}
		summary.Total += count
		switch Status(status) {
		case StatusPending, StatusInspected:
			summary.Pending += count
		case StatusInspecting, StatusProcessing:
			summary.Processing += count
		case StatusCompleted:
			summary.Completed += count
		case StatusFailed:
			summary.Failed += count
		case StatusSkipped:
			summary.Skipped += count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate summary: %w", err)
	}
	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		item            Item
		kind            string
		status          string
		capturedAt      sql.NullString
		timeSource      sql.NullString
		destPath        sql.NullString
		errorMessage    sql.NullString
		runID           sql.NullString
		progressStage   sql.NullString
		progressMessage sql.NullString
		createdAt       string
		updatedAt       string
	)
	if err := scanner.Scan(
		&item.ID,
		&item.SourcePath,
		&kind,
		&status,
		&capturedAt,
		&timeSource,
		&destPath,
		&errorMessage,
		&runID,
		&progressStage,
		&item.ProgressPercent,
		&progressMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	item.Kind = Kind(kind)
	item.Status = Status(status)
	item.TimeSource = TimeSource(timeSource.String)
	item.DestPath = destPath.String
	item.ErrorMessage = errorMessage.String
	item.RunID = runID.String
	item.ProgressStage = progressStage.String
	item.ProgressMessage = progressMessage.String

	if capturedAt.Valid && capturedAt.String != "" {
		parsed, err := time.Parse(time.RFC3339Nano, capturedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse captured_at: %w", err)
		}
		item.CapturedAt = &parsed
	}
	var err error
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &item, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}
