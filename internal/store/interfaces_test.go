package store

import "github.com/cibyj/socialcal/internal/reminder"

// The store must satisfy the reminder engine's collaborator interfaces.
var (
	_ reminder.EventSource = (*Store)(nil)
	_ reminder.Ledger      = (*Store)(nil)
)
