package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/cibyj/socialcal/internal/event"
	"github.com/cibyj/socialcal/internal/mail"
)

// EventSource supplies candidate events for a reminder run. Implementations
// must only return events that have a recipient. The cursor allows paging
// through large stores; an empty next cursor ends iteration.
type EventSource interface {
	ListEventsWithRecipient(ctx context.Context, cursor string, limit int) (events []event.Event, next string, err error)
}

// Ledger tracks which (event, offset) pairs have already fired.
//
// MarkFired is the only dedup primitive the runner relies on: it must be an
// atomic insert-if-absent so that two concurrent runs claiming the same pair
// observe exactly one inserted=true. Once fired, a pair never transitions
// back to unfired except through Unmark, which exists solely to compensate
// a claim whose send failed.
type Ledger interface {
	MarkFired(ctx context.Context, eventID, offsetLabel string, at time.Time) (inserted bool, err error)
	HasFired(ctx context.Context, eventID, offsetLabel string) (bool, error)
	Unmark(ctx context.Context, eventID, offsetLabel string) error
	Purge(ctx context.Context, eventID string) error
}

// unmarkAttempts bounds the compensation retries after a failed send.
const unmarkAttempts = 3

const (
	defaultPageSize    = 200
	defaultSendTimeout = 30 * time.Second
)

// RunOptions controls a single reminder run.
type RunOptions struct {
	// Now is the evaluation instant. Zero means time.Now().
	Now time.Time

	// DryRun renders and reports candidate sends without calling the mail
	// transport or writing the ledger.
	DryRun bool

	// TestEmail, when set, redirects every dispatch to this address
	// instead of each event's own recipient.
	TestEmail string

	// Force bypasses the window evaluation and the dedup check, dispatching
	// every offset for every candidate event. Operator tool; duplicates are
	// expected and accepted.
	Force bool
}

// PairFailure records one isolated (event, offset) failure inside a run.
type PairFailure struct {
	EventID     string       `json:"event_id"`
	OffsetLabel string       `json:"offset"`
	Code        RunErrorCode `json:"code"`
	Error       string       `json:"error"`
}

// Preview describes a message a dry run would have sent.
type Preview struct {
	EventID     string `json:"event_id"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	OffsetLabel string `json:"offset"`
	HTMLBody    string `json:"html"`
}

// Report is the outcome of one reminder run. Individual pair failures live
// in Failed; only a failure to load events aborts the run entirely.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	DryRun    bool          `json:"dry_run"`
	Force     bool          `json:"force,omitempty"`
	Sent      int           `json:"sent"`
	Skipped   int           `json:"skipped"`
	Failed    []PairFailure `json:"failed"`
	Previews  []Preview     `json:"previews,omitempty"`
}

// Runner coordinates one reminder run: load candidates, evaluate windows,
// claim ledger entries, render and dispatch mail, aggregate a report.
//
// A Runner holds no per-run state; Run may be invoked concurrently (e.g.
// overlapping scheduler ticks). The ledger's atomic claim guarantees a pair
// is dispatched at most once across overlapping runs.
type Runner struct {
	events EventSource
	ledger Ledger
	sender mail.Sender
	eval   Evaluator
	render Renderer
	log    *slog.Logger

	pageSize    int
	sendTimeout time.Duration
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithPageSize sets how many events are loaded per store page.
func WithPageSize(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

// WithSendTimeout bounds each individual mail dispatch.
func WithSendTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.sendTimeout = d
		}
	}
}

// NewRunner constructs a Runner. All collaborators are injected; the Runner
// builds no clients of its own.
func NewRunner(events EventSource, ledger Ledger, sender mail.Sender, eval Evaluator, render Renderer, log *slog.Logger, opts ...RunnerOption) *Runner {
	if log == nil {
		log = slog.Default()
	}
	r := &Runner{
		events:      events,
		ledger:      ledger,
		sender:      sender,
		eval:        eval,
		render:      render,
		log:         log,
		pageSize:    defaultPageSize,
		sendTimeout: defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one reminder run and returns its report.
//
// The returned error is non-nil only when the run could not proceed at all:
// the event store was unreadable (IsLoadError) or the context was canceled.
// Per-pair failures never surface as errors; they are in Report.Failed.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (Report, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	report := Report{
		StartedAt: now,
		DryRun:    opts.DryRun,
		Force:     opts.Force,
		Failed:    []PairFailure{},
	}

	events, err := r.loadCandidates(ctx)
	if err != nil {
		return report, NewLoadError(err)
	}

	r.log.Info("reminder run started",
		"now", now.Format(time.RFC3339),
		"candidates", len(events),
		"dry_run", opts.DryRun,
		"force", opts.Force,
	)

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			// Aborted mid-run: already-claimed pairs stay claimed, the
			// rest will be evaluated by the next invocation.
			return report, err
		}
		r.processEvent(ctx, ev, now, opts, &report)
	}

	r.log.Info("reminder run complete",
		"sent", report.Sent,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
		"previews", len(report.Previews),
	)
	return report, nil
}

// loadCandidates pages through every event with a recipient.
func (r *Runner) loadCandidates(ctx context.Context) ([]event.Event, error) {
	var all []event.Event
	cursor := ""
	for {
		page, next, err := r.events.ListEventsWithRecipient(ctx, cursor, r.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (r *Runner) processEvent(ctx context.Context, ev event.Event, now time.Time, opts RunOptions, report *Report) {
	var due []Offset
	if opts.Force {
		due = r.eval.Offsets
	} else {
		due = r.eval.DueOffsets(ev, now)
	}

	for _, off := range due {
		r.processPair(ctx, ev, off, now, opts, report)
	}
}

func (r *Runner) processPair(ctx context.Context, ev event.Event, off Offset, now time.Time, opts RunOptions, report *Report) {
	to := ev.UserEmail
	if opts.TestEmail != "" {
		to = opts.TestEmail
	}

	if opts.DryRun {
		r.previewPair(ctx, ev, off, to, opts, report)
		return
	}

	msg, err := r.render.Render(ev, off)
	if err != nil {
		r.recordFailure(report, NewRenderError(ev.ID, off.Label, err))
		return
	}

	// Claim before sending. The insert-if-absent is what makes overlapping
	// runs safe: exactly one run gets inserted=true for a given pair.
	if !opts.Force {
		inserted, err := r.ledger.MarkFired(ctx, ev.ID, off.Label, now)
		if err != nil {
			r.recordFailure(report, NewMarkError(ev.ID, off.Label, err))
			return
		}
		if !inserted {
			report.Skipped++
			r.log.Debug("reminder already fired", "event_id", ev.ID, "offset", off.Label)
			return
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.sendTimeout)
	defer cancel()

	msgID, err := r.sender.Send(sendCtx, mail.Message{
		To:       to,
		Subject:  msg.Subject,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	})
	if err != nil {
		r.recordFailure(report, NewSendError(ev.ID, off.Label, err))
		if !opts.Force {
			r.compensateClaim(ctx, ev.ID, off.Label, report)
		}
		return
	}

	if opts.Force {
		// Best effort: record the forced send so normal runs skip the pair.
		if _, err := r.ledger.MarkFired(ctx, ev.ID, off.Label, now); err != nil {
			r.recordFailure(report, NewMarkError(ev.ID, off.Label, err))
		}
	}

	report.Sent++
	r.log.Info("reminder sent",
		"event_id", ev.ID,
		"offset", off.Label,
		"to", to,
		"message_id", msgID,
	)
}

// previewPair handles dry-run mode: same window and dedup decisions as a
// real dispatch, but nothing is sent and the ledger is never written.
func (r *Runner) previewPair(ctx context.Context, ev event.Event, off Offset, to string, opts RunOptions, report *Report) {
	if !opts.Force {
		fired, err := r.ledger.HasFired(ctx, ev.ID, off.Label)
		if err != nil {
			r.recordFailure(report, NewMarkError(ev.ID, off.Label, err))
			return
		}
		if fired {
			report.Skipped++
			return
		}
	}

	msg, err := r.render.Render(ev, off)
	if err != nil {
		r.recordFailure(report, NewRenderError(ev.ID, off.Label, err))
		return
	}

	report.Previews = append(report.Previews, Preview{
		EventID:     ev.ID,
		To:          to,
		Subject:     msg.Subject,
		OffsetLabel: off.Label,
		HTMLBody:    msg.HTMLBody,
	})
}

// compensateClaim releases a claimed ledger entry after a failed send so the
// pair can retry on the next invocation. Retried a bounded number of times;
// if the ledger stays unreachable the pair remains marked and is surfaced as
// a possibly lost reminder rather than crashing the run.
func (r *Runner) compensateClaim(ctx context.Context, eventID, offsetLabel string, report *Report) {
	var lastErr error
	for attempt := 1; attempt <= unmarkAttempts; attempt++ {
		if lastErr = r.ledger.Unmark(ctx, eventID, offsetLabel); lastErr == nil {
			return
		}
		r.log.Error("ledger unmark failed",
			"event_id", eventID,
			"offset", offsetLabel,
			"attempt", attempt,
			"err", lastErr,
		)
	}
	r.recordFailure(report, NewMarkError(eventID, offsetLabel, lastErr))
}

func (r *Runner) recordFailure(report *Report, re *RunError) {
	r.log.Error("reminder pair failed",
		"code", string(re.Code),
		"event_id", re.EventID,
		"offset", re.OffsetLabel,
		"err", re.Err,
	)
	report.Failed = append(report.Failed, PairFailure{
		EventID:     re.EventID,
		OffsetLabel: re.OffsetLabel,
		Code:        re.Code,
		Error:       re.Error(),
	})
}
