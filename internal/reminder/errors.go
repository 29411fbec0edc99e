package reminder

import (
	"errors"
	"fmt"
)

// RunError represents a failure detected during a reminder run.
//
// Run errors fall into four categories:
//   - Load failed: the event store is unreachable (fatal to the run)
//   - Render failed: event data could not be turned into a message (skip pair)
//   - Send failed: the mail transport rejected the message (skip pair,
//     eligible for retry on the next invocation while the window holds)
//   - Mark failed: the ledger could not be reconciled after a claim
//     (surfaced as a warning, never crashes the run)
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Message is a human-readable description.
	Message string

	// EventID identifies the affected event, if any.
	EventID string

	// OffsetLabel identifies the reminder offset, if any.
	OffsetLabel string

	// Err is the underlying cause, if any.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeLoadFailed indicates the event store could not be read.
	ErrCodeLoadFailed RunErrorCode = "LOAD_FAILED"

	// ErrCodeRenderFailed indicates a message could not be rendered.
	ErrCodeRenderFailed RunErrorCode = "RENDER_FAILED"

	// ErrCodeSendFailed indicates the mail transport failed.
	ErrCodeSendFailed RunErrorCode = "SEND_FAILED"

	// ErrCodeMarkFailed indicates a ledger write could not be reconciled.
	ErrCodeMarkFailed RunErrorCode = "MARK_FAILED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.EventID != "" && e.OffsetLabel != "" {
		return fmt.Sprintf("%s: %s (event=%s, offset=%q)", e.Code, e.Message, e.EventID, e.OffsetLabel)
	}
	if e.EventID != "" {
		return fmt.Sprintf("%s: %s (event=%s)", e.Code, e.Message, e.EventID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *RunError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if the error is a fatal store-load failure.
// Uses errors.As to handle wrapped errors.
func IsLoadError(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeLoadFailed
	}
	return false
}

// NewLoadError creates a RunError for an event store read failure.
func NewLoadError(err error) *RunError {
	return &RunError{
		Code:    ErrCodeLoadFailed,
		Message: "failed to load candidate events",
		Err:     err,
	}
}

// NewRenderError creates a RunError for a message render failure.
func NewRenderError(eventID, offsetLabel string, err error) *RunError {
	return &RunError{
		Code:        ErrCodeRenderFailed,
		Message:     "failed to render reminder message",
		EventID:     eventID,
		OffsetLabel: offsetLabel,
		Err:         err,
	}
}

// NewSendError creates a RunError for a mail transport failure.
func NewSendError(eventID, offsetLabel string, err error) *RunError {
	return &RunError{
		Code:        ErrCodeSendFailed,
		Message:     "failed to send reminder mail",
		EventID:     eventID,
		OffsetLabel: offsetLabel,
		Err:         err,
	}
}

// NewMarkError creates a RunError for a ledger reconciliation failure.
func NewMarkError(eventID, offsetLabel string, err error) *RunError {
	return &RunError{
		Code:        ErrCodeMarkFailed,
		Message:     "failed to reconcile reminder ledger",
		EventID:     eventID,
		OffsetLabel: offsetLabel,
		Err:         err,
	}
}
