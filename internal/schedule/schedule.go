// Package schedule drives periodic reminder runs off a cron expression.
package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/cibyj/socialcal/internal/reminder"
)

// Trigger invokes the reminder runner on a cron schedule. Overlapping runs
// are allowed: the ledger's atomic claim makes them safe, so there is no
// in-process mutual exclusion.
type Trigger struct {
	runner *reminder.Runner
	log    *slog.Logger
	cron   *cron.Cron
}

// New builds a Trigger for the given cron expression (standard 5-field
// syntax, e.g. "*/15 * * * *").
func New(runner *reminder.Runner, spec string, log *slog.Logger) (*Trigger, error) {
	if log == nil {
		log = slog.Default()
	}

	t := &Trigger{
		runner: runner,
		log:    log,
		cron:   cron.New(),
	}

	if _, err := t.cron.AddFunc(spec, t.tick); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return t, nil
}

// Start begins the schedule and blocks until ctx is canceled, then waits
// for any in-flight run to finish.
func (t *Trigger) Start(ctx context.Context) {
	t.log.Info("reminder schedule started")
	t.cron.Start()

	<-ctx.Done()
	stopCtx := t.cron.Stop()
	<-stopCtx.Done()
	t.log.Info("reminder schedule stopped")
}

func (t *Trigger) tick() {
	report, err := t.runner.Run(context.Background(), reminder.RunOptions{})
	if err != nil {
		t.log.Error("scheduled reminder run failed", "err", err)
		return
	}
	t.log.Info("scheduled reminder run finished",
		"sent", report.Sent,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
	)
}
