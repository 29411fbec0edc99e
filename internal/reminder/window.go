package reminder

import (
	"time"

	"github.com/cibyj/socialcal/internal/event"
)

// DefaultTolerance is the half-width of the window around each reminder
// target instant. An offset is due while |target - now| <= tolerance, so a
// scheduler ticking at least once per hour cannot miss a window.
//
// This is the single canonical window definition. Earlier iterations of the
// service disagreed on the math (strict forward windows, 90-minute trailing
// grace); everything now evaluates against this one constant.
const DefaultTolerance = 30 * time.Minute

// Evaluator decides which reminder offsets are due for an event at a given
// instant. It is a pure function of (event, now, config): no I/O, no clock
// access, safe to call repeatedly with the same inputs.
type Evaluator struct {
	Offsets   []Offset
	Tolerance time.Duration
}

// NewEvaluator returns an Evaluator over the default offsets and tolerance.
func NewEvaluator() Evaluator {
	return Evaluator{Offsets: DefaultOffsets(), Tolerance: DefaultTolerance}
}

// DueOffsets returns the offsets whose target instant (event_time - offset)
// falls within the tolerance window around now. Events without a recipient
// never produce reminders. Results preserve the configured offset order and
// contain at most len(e.Offsets) entries.
func (e Evaluator) DueOffsets(ev event.Event, now time.Time) []Offset {
	if !ev.HasRecipient() || ev.EventTime.IsZero() {
		return nil
	}

	var due []Offset
	for _, off := range e.Offsets {
		target := ev.EventTime.Add(-off.Duration())
		delta := target.Sub(now)
		if delta < 0 {
			delta = -delta
		}
		if delta <= e.Tolerance {
			due = append(due, off)
		}
	}
	return due
}
