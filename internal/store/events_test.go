package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cibyj/socialcal/internal/event"
)

func TestCreateEvent_AssignsIDAndDate(t *testing.T) {
	s := createTestStore(t)

	ev := createTestEvent(t, s, "Team Offsite")

	if ev.ID == "" {
		t.Error("expected an assigned ID")
	}
	if ev.Date != "2026-09-04" {
		t.Errorf("Date = %q, want %q", ev.Date, "2026-09-04")
	}
	if ev.CreatedAt.IsZero() || ev.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestCreateEvent_Validates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, event.Event{EventTime: time.Now()})
	if !errors.Is(err, event.ErrMissingTitle) {
		t.Errorf("expected ErrMissingTitle, got %v", err)
	}

	_, err = s.CreateEvent(ctx, event.Event{Title: "x"})
	if !errors.Is(err, event.ErrMissingTime) {
		t.Errorf("expected ErrMissingTime, got %v", err)
	}
}

func TestGetEvent_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	created := createTestEvent(t, s, "Team Offsite")

	got, err := s.GetEvent(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}

	if got.Title != created.Title {
		t.Errorf("Title = %q, want %q", got.Title, created.Title)
	}
	if !got.EventTime.Equal(created.EventTime) {
		t.Errorf("EventTime = %v, want %v", got.EventTime, created.EventTime)
	}
	if got.UserEmail != created.UserEmail {
		t.Errorf("UserEmail = %q, want %q", got.UserEmail, created.UserEmail)
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetEvent(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEvent_MutatesFields(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	created := createTestEvent(t, s, "Old Title")

	created.Title = "New Title"
	created.Description = "updated"
	created.EventTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	created.UserEmail = "other@example.com"

	updated, err := s.UpdateEvent(ctx, created)
	if err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}

	if updated.Title != "New Title" {
		t.Errorf("Title = %q, want %q", updated.Title, "New Title")
	}
	if updated.Date != "2026-10-01" {
		t.Errorf("Date = %q, want recomputed %q", updated.Date, "2026-10-01")
	}
	if updated.UserEmail != "other@example.com" {
		t.Errorf("UserEmail = %q, want %q", updated.UserEmail, "other@example.com")
	}
}

func TestUpdateEvent_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.UpdateEvent(context.Background(), event.Event{
		ID:        "missing",
		Title:     "x",
		EventTime: time.Now(),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteEvent_PurgesLedger(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	created := createTestEvent(t, s, "Team Offsite")

	inserted, err := s.MarkFired(ctx, created.ID, "7 days before", time.Now())
	if err != nil || !inserted {
		t.Fatalf("MarkFired failed: inserted=%v err=%v", inserted, err)
	}

	if err := s.DeleteEvent(ctx, created.ID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	if _, err := s.GetEvent(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM reminder_ledger WHERE event_id = ?", created.ID).Scan(&count); err != nil {
		t.Fatalf("count ledger rows: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 ledger rows after delete, got %d", count)
	}
}

func TestDeleteEvent_NotFound(t *testing.T) {
	s := createTestStore(t)

	if err := s.DeleteEvent(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListEvents_OrderedByEventTime(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	later, _ := s.CreateEvent(ctx, event.Event{
		Title:     "later",
		EventTime: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	sooner, _ := s.CreateEvent(ctx, event.Event{
		Title:     "sooner",
		EventTime: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})

	events, err := s.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != sooner.ID || events[1].ID != later.ID {
		t.Error("events not ordered by event_time ascending")
	}
}

func TestListEventsWithRecipient_FiltersAndPages(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Three with a recipient, one without.
	for i := 0; i < 3; i++ {
		createTestEvent(t, s, "with recipient")
	}
	if _, err := s.CreateEvent(ctx, event.Event{
		Title:     "no recipient",
		EventTime: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	var all []string
	cursor := ""
	pages := 0
	for {
		events, next, err := s.ListEventsWithRecipient(ctx, cursor, 2)
		if err != nil {
			t.Fatalf("ListEventsWithRecipient failed: %v", err)
		}
		pages++
		for _, ev := range events {
			if ev.UserEmail == "" {
				t.Errorf("event %s has no recipient", ev.ID)
			}
			all = append(all, ev.ID)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	if len(all) != 3 {
		t.Errorf("expected 3 candidate events, got %d", len(all))
	}
	if pages < 2 {
		t.Errorf("expected at least 2 pages with limit 2, got %d", pages)
	}

	seen := make(map[string]bool)
	for _, id := range all {
		if seen[id] {
			t.Errorf("event %s returned twice across pages", id)
		}
		seen[id] = true
	}
}
