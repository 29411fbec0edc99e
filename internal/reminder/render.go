package reminder

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/cibyj/socialcal/internal/event"
)

// timeDisplayFormat renders event times the way the UI shows them,
// e.g. "Friday, September 4, 2026 at 7:30 PM".
const timeDisplayFormat = "Monday, January 2, 2006 at 3:04 PM"

var htmlBodyTmpl = template.Must(template.New("reminder").Parse(`<div style="font-family: Arial, sans-serif; padding: 16px;">
  <h2>{{.Title}}</h2>
  <p><strong>Date:</strong> {{.When}}</p>
  <p>{{.Description}}</p>
  <hr />
  <p style="color: gray; font-size: 12px;">This is your {{.Label}} reminder.</p>
</div>
`))

// Rendered is a reminder message ready for the mail transport.
type Rendered struct {
	Subject  string
	TextBody string
	HTMLBody string
}

// Renderer formats reminder messages. Times are rendered in Location,
// the calendar's display timezone.
type Renderer struct {
	Location *time.Location
}

// NewRenderer returns a Renderer displaying times in the given location,
// falling back to UTC when loc is nil.
func NewRenderer(loc *time.Location) Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return Renderer{Location: loc}
}

// Render produces the subject and both bodies for one (event, offset) pair.
func (r Renderer) Render(ev event.Event, off Offset) (Rendered, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return Rendered{}, fmt.Errorf("event %s has no title", ev.ID)
	}
	if ev.EventTime.IsZero() {
		return Rendered{}, fmt.Errorf("event %s has no event time", ev.ID)
	}

	when := ev.EventTime.In(r.Location).Format(timeDisplayFormat)
	subject := fmt.Sprintf("Reminder: %q is coming up", ev.Title)

	var text strings.Builder
	fmt.Fprintf(&text, "Your event %q happens on %s.\n", ev.Title, when)
	if strings.TrimSpace(ev.Description) != "" {
		fmt.Fprintf(&text, "\n%s\n", ev.Description)
	}
	fmt.Fprintf(&text, "\nReminder window: %s\n", off.Label)

	var html bytes.Buffer
	err := htmlBodyTmpl.Execute(&html, struct {
		Title       string
		When        string
		Description string
		Label       string
	}{
		Title:       ev.Title,
		When:        when,
		Description: ev.Description,
		Label:       off.Label,
	})
	if err != nil {
		return Rendered{}, fmt.Errorf("render html body: %w", err)
	}

	return Rendered{
		Subject:  subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
