package catalog

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls items left in an in-flight status by an
// interrupted run back to the preceding stable status. Returns the number
// of items reset.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	var total int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE catalog_items SET status = ?, updated_at = ? WHERE status = ?`,
			string(transition.to), timestamp, string(transition.from),
		)
		if err != nil {
			return total, fmt.Errorf("reset %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// RetryFailed returns failed items to pending so the next run picks them up.
func (s *Store) RetryFailed(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE catalog_items
         SET status = ?, error_message = NULL, progress_stage = NULL,
             progress_percent = 0, progress_message = NULL, updated_at = ?
         WHERE status = ?`,
		string(StatusPending), timestamp, string(StatusFailed),
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// Clear removes all catalog items and day counters.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.execWithoutResultRetry(ctx, `DELETE FROM catalog_items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	if err := s.execWithoutResultRetry(ctx, `DELETE FROM day_counters`); err != nil {
		return fmt.Errorf("clear day counters: %w", err)
	}
	return nil
}
