package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// MarkFired records that a reminder fired for (eventID, offsetLabel).
// Returns whether a new marker was inserted.
//
// Uses ON CONFLICT(event_id, offset_label) DO NOTHING so the check and the
// write are one atomic statement: under concurrent runs exactly one caller
// observes inserted=true for a given pair. A false return is the benign
// "already fired" outcome, not an error.
func (s *Store) MarkFired(ctx context.Context, eventID, offsetLabel string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder_ledger (event_id, offset_label, sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT(event_id, offset_label) DO NOTHING
	`,
		eventID,
		offsetLabel,
		at.UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("mark fired: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark fired: %w", err)
	}
	return n > 0, nil
}

// HasFired reports whether a marker exists for (eventID, offsetLabel).
func (s *Store) HasFired(ctx context.Context, eventID, offsetLabel string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM reminder_ledger
		WHERE event_id = ? AND offset_label = ?
	`, eventID, offsetLabel).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has fired: %w", err)
	}
	return true, nil
}

// Unmark removes a single marker. This exists only to compensate a claim
// whose send failed; markers are otherwise monotonic.
func (s *Store) Unmark(ctx context.Context, eventID, offsetLabel string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM reminder_ledger
		WHERE event_id = ? AND offset_label = ?
	`, eventID, offsetLabel); err != nil {
		return fmt.Errorf("unmark: %w", err)
	}
	return nil
}

// Purge removes every marker for an event. Called when the event is deleted.
func (s *Store) Purge(ctx context.Context, eventID string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM reminder_ledger WHERE event_id = ?
	`, eventID); err != nil {
		return fmt.Errorf("purge ledger: %w", err)
	}
	return nil
}

// FiredLabels returns the offset labels already fired for an event, in
// firing order. Used by the API and by tests.
func (s *Store) FiredLabels(ctx context.Context, eventID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT offset_label FROM reminder_ledger
		WHERE event_id = ?
		ORDER BY id ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query fired labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fired labels: %w", err)
	}
	return labels, nil
}
