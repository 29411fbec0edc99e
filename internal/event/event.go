// Package event defines the calendar event model shared by the store,
// the HTTP API and the reminder engine.
package event

import (
	"errors"
	"strings"
	"time"
)

// Event is a single calendar entry. EventTime is the authoritative instant
// for all reminder scheduling; Date is a derived display-only column kept
// for the UI and never used for reminder math.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	EventTime   time.Time `json:"event_time"`
	UserEmail   string    `json:"user_email,omitempty"`
	Date        string    `json:"date,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Validation errors returned by Validate.
var (
	ErrMissingTitle = errors.New("event title is required")
	ErrMissingTime  = errors.New("event time is required")
)

// Validate checks the fields required for an event to be stored.
// UserEmail is intentionally optional: events without a recipient are
// valid calendar entries, they just never produce reminders.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingTitle
	}
	if e.EventTime.IsZero() {
		return ErrMissingTime
	}
	return nil
}

// HasRecipient reports whether the event can receive reminder mail.
func (e *Event) HasRecipient() bool {
	return strings.TrimSpace(e.UserEmail) != ""
}

// DeriveDate recomputes the display-only Date column from EventTime.
// Call after any mutation of EventTime.
func (e *Event) DeriveDate() {
	if e.EventTime.IsZero() {
		e.Date = ""
		return
	}
	e.Date = e.EventTime.UTC().Format("2006-01-02")
}
