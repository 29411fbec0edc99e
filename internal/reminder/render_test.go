package reminder

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cibyj/socialcal/internal/event"
)

func renderFixture() event.Event {
	return event.Event{
		ID:          "ev-render",
		Title:       "Team Offsite",
		Description: "Quarterly planning in the big room.",
		EventTime:   time.Date(2026, 9, 4, 19, 30, 0, 0, time.UTC),
		UserEmail:   "user@example.com",
	}
}

func TestRender_Golden(t *testing.T) {
	r := NewRenderer(time.UTC)
	off, ok := OffsetByLabel("7 days before")
	require.True(t, ok)

	msg, err := r.Render(renderFixture(), off)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "reminder_subject", []byte(msg.Subject))
	g.Assert(t, "reminder_text", []byte(msg.TextBody))
	g.Assert(t, "reminder_html", []byte(msg.HTMLBody))
}

func TestRender_NoDescription(t *testing.T) {
	r := NewRenderer(time.UTC)
	ev := renderFixture()
	ev.Description = ""

	msg, err := r.Render(ev, Offset{Label: "1 day before", Days: 1})
	require.NoError(t, err)

	assert.NotContains(t, msg.TextBody, "\n\n\n")
	assert.Contains(t, msg.TextBody, "Reminder window: 1 day before")
}

func TestRender_LocalTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	r := NewRenderer(loc)
	msg, err := r.Render(renderFixture(), Offset{Label: "2 days before", Days: 2})
	require.NoError(t, err)

	// 19:30 UTC is 15:30 in New York during DST.
	assert.Contains(t, msg.TextBody, "Friday, September 4, 2026 at 3:30 PM")
}

func TestRender_EscapesHTML(t *testing.T) {
	r := NewRenderer(time.UTC)
	ev := renderFixture()
	ev.Title = "Dinner <script>alert(1)</script>"

	msg, err := r.Render(ev, Offset{Label: "1 day before", Days: 1})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTMLBody, "<script>")
}

func TestRender_InvalidEvent(t *testing.T) {
	r := NewRenderer(time.UTC)

	t.Run("missing title", func(t *testing.T) {
		ev := renderFixture()
		ev.Title = "  "
		_, err := r.Render(ev, Offset{Label: "1 day before", Days: 1})
		assert.Error(t, err)
	})

	t.Run("missing time", func(t *testing.T) {
		ev := renderFixture()
		ev.EventTime = time.Time{}
		_, err := r.Render(ev, Offset{Label: "1 day before", Days: 1})
		assert.Error(t, err)
	})
}
