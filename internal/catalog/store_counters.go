package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

var dayKeyPattern = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}$`)

// NextDayCounter increments and returns the naming counter for a day key
// of the form YYYY_MM_DD. Counters start at 1 and survive across runs so
// re-ingesting later files continues the numbering.
func (s *Store) NextDayCounter(ctx context.Context, day string) (int, error) {
	if !dayKeyPattern.MatchString(day) {
		return 0, fmt.Errorf("invalid day key %q", day)
	}
	ctx = ensureContext(ctx)
	var value int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(
			ctx,
			`INSERT INTO day_counters (day, value) VALUES (?, 1)
             ON CONFLICT(day) DO UPDATE SET value = value + 1
             RETURNING value`,
			day,
		).Scan(&value)
	})
	if err != nil {
		return 0, fmt.Errorf("advance day counter: %w", err)
	}
	return value, nil
}

// PeekDayCounter returns the last counter issued for a day, or 0 when the
// day has no entries yet.
func (s *Store) PeekDayCounter(ctx context.Context, day string) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM day_counters WHERE day = ?`, day).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read day counter: %w", err)
	}
	return value, nil
}
