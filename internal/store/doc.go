// Package store provides SQLite-backed persistence for calendar events,
// the reminder dedup ledger and process-wide settings.
//
// The Store satisfies both reminder.EventSource and reminder.Ledger, so the
// reminder engine only ever sees narrow interfaces. All mutation of a
// (event, offset) marker goes through MarkFired's atomic conditional insert,
// which keeps the ledger safe under overlapping runs.
package store
