package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cibyj/socialcal/internal/event"
)

func testEvent(eventTime time.Time) event.Event {
	return event.Event{
		ID:        "ev-1",
		Title:     "Team Offsite",
		EventTime: eventTime,
		UserEmail: "user@example.com",
	}
}

func labels(offsets []Offset) []string {
	var out []string
	for _, o := range offsets {
		out = append(out, o.Label)
	}
	return out
}

func TestDueOffsets_ExactTarget(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator()

	// Event exactly 7 days out: the 7-day target is exactly now.
	ev := testEvent(now.Add(7 * 24 * time.Hour))

	due := eval.DueOffsets(ev, now)
	assert.Equal(t, []string{"7 days before"}, labels(due))
}

func TestDueOffsets_WithinTolerance(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator()

	// Event at now + 7d + 2min: the 7-day target is 2 minutes in the
	// future, well inside the 30-minute window. 2-day and 1-day targets
	// are days away.
	ev := testEvent(now.Add(7*24*time.Hour + 2*time.Minute))

	due := eval.DueOffsets(ev, now)
	assert.Equal(t, []string{"7 days before"}, labels(due))
}

func TestDueOffsets_ToleranceBoundary(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator()

	tests := []struct {
		name   string
		offset time.Duration
		want   []string
	}{
		{"target exactly tolerance ahead", 7*24*time.Hour + 30*time.Minute, []string{"7 days before"}},
		{"target exactly tolerance behind", 7*24*time.Hour - 30*time.Minute, []string{"7 days before"}},
		{"target just past tolerance ahead", 7*24*time.Hour + 31*time.Minute, nil},
		{"target just past tolerance behind", 7*24*time.Hour - 31*time.Minute, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := testEvent(now.Add(tt.offset))
			assert.Equal(t, tt.want, labels(eval.DueOffsets(ev, now)))
		})
	}
}

func TestDueOffsets_EachOffsetIndependent(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator()

	tests := []struct {
		name  string
		ahead time.Duration
		want  []string
	}{
		{"two days out", 2 * 24 * time.Hour, []string{"2 days before"}},
		{"one day out", 24 * time.Hour, []string{"1 day before"}},
		{"three days out", 3 * 24 * time.Hour, nil},
		{"event in the past", -24 * time.Hour, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := testEvent(now.Add(tt.ahead))
			assert.Equal(t, tt.want, labels(eval.DueOffsets(ev, now)))
		})
	}
}

func TestDueOffsets_NoRecipient(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator()

	ev := testEvent(now.Add(7 * 24 * time.Hour))
	ev.UserEmail = ""

	assert.Empty(t, eval.DueOffsets(ev, now))

	ev.UserEmail = "   "
	assert.Empty(t, eval.DueOffsets(ev, now))
}

func TestDueOffsets_ZeroEventTime(t *testing.T) {
	eval := NewEvaluator()
	ev := testEvent(time.Time{})

	assert.Empty(t, eval.DueOffsets(ev, time.Now()))
}

func TestDueOffsets_Deterministic(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	eval := NewEvaluator()
	ev := testEvent(now.Add(7 * 24 * time.Hour))

	first := eval.DueOffsets(ev, now)
	second := eval.DueOffsets(ev, now)
	require.Equal(t, first, second)
}

func TestDueOffsets_CustomTolerance(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	eval := Evaluator{Offsets: DefaultOffsets(), Tolerance: 90 * time.Minute}

	ev := testEvent(now.Add(7*24*time.Hour + 80*time.Minute))
	assert.Equal(t, []string{"7 days before"}, labels(eval.DueOffsets(ev, now)))
}
