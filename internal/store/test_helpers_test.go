package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cibyj/socialcal/internal/event"
)

// createTestStore opens a store on a throwaway database and closes it when
// the test ends.
func createTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvent inserts an event with a recipient and returns it.
func createTestEvent(t *testing.T, s *Store, title string) event.Event {
	t.Helper()

	ev, err := s.CreateEvent(context.Background(), event.Event{
		Title:       title,
		Description: "test event",
		EventTime:   time.Date(2026, 9, 4, 19, 30, 0, 0, time.UTC),
		UserEmail:   "user@example.com",
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return ev
}
