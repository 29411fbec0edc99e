package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cibyj/socialcal/internal/event"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

const timeLayout = time.RFC3339Nano

// CreateEvent inserts a new event and returns it with its assigned ID and
// timestamps. The display-only date column is derived from the event time.
func (s *Store) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	if err := ev.Validate(); err != nil {
		return event.Event{}, err
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	ev.DeriveDate()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, event_time, user_email, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID,
		ev.Title,
		ev.Description,
		ev.EventTime.UTC().Format(timeLayout),
		ev.UserEmail,
		ev.Date,
		now.Format(timeLayout),
		now.Format(timeLayout),
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return ev, nil
}

// GetEvent returns a single event by ID, or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, id string) (event.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, event_time, user_email, date, created_at, updated_at
		FROM events
		WHERE id = ?
	`, id)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, ErrNotFound
	}
	if err != nil {
		return event.Event{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// UpdateEvent replaces the mutable fields of an existing event. The ledger
// is untouched: markers key on the event ID, which never changes.
func (s *Store) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	if ev.ID == "" {
		return event.Event{}, errors.New("event id is required")
	}
	if err := ev.Validate(); err != nil {
		return event.Event{}, err
	}

	ev.UpdatedAt = time.Now().UTC()
	ev.DeriveDate()

	res, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, event_time = ?, user_email = ?, date = ?, updated_at = ?
		WHERE id = ?
	`,
		ev.Title,
		ev.Description,
		ev.EventTime.UTC().Format(timeLayout),
		ev.UserEmail,
		ev.Date,
		ev.UpdatedAt.Format(timeLayout),
		ev.ID,
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("update event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return event.Event{}, fmt.Errorf("update event: %w", err)
	}
	if n == 0 {
		return event.Event{}, ErrNotFound
	}

	return s.GetEvent(ctx, ev.ID)
}

// DeleteEvent removes an event and purges its ledger markers in a single
// transaction, so a later event with recycled semantic data starts clean.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_ledger WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("delete event: purge ledger: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete event: commit: %w", err)
	}
	return nil
}

// ListEvents returns all events ordered by event time, soonest first.
func (s *Store) ListEvents(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, event_time, user_email, date, created_at, updated_at
		FROM events
		ORDER BY event_time ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListEventsWithRecipient returns a page of events that have a recipient,
// keyset-paginated by ID. An empty next cursor means the listing is done.
func (s *Store) ListEventsWithRecipient(ctx context.Context, cursor string, limit int) ([]event.Event, string, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, event_time, user_email, date, created_at, updated_at
		FROM events
		WHERE user_email <> '' AND id > ?
		ORDER BY id ASC
		LIMIT ?
	`, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("query candidate events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(events) == limit {
		next = events[len(events)-1].ID
	}
	return events, next, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var ev event.Event
	var eventTime, createdAt, updatedAt string

	err := row.Scan(
		&ev.ID,
		&ev.Title,
		&ev.Description,
		&eventTime,
		&ev.UserEmail,
		&ev.Date,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return event.Event{}, err
	}

	if ev.EventTime, err = time.Parse(timeLayout, eventTime); err != nil {
		return event.Event{}, fmt.Errorf("parse event_time: %w", err)
	}
	if ev.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return event.Event{}, fmt.Errorf("parse created_at: %w", err)
	}
	if ev.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return event.Event{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return ev, nil
}

func collectEvents(rows *sql.Rows) ([]event.Event, error) {
	var events []event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	// Return empty slice instead of nil
	if events == nil {
		events = []event.Event{}
	}
	return events, nil
}
