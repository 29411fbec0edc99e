package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cibyj/socialcal/internal/config"
	"github.com/cibyj/socialcal/internal/mail"
	"github.com/cibyj/socialcal/internal/reminder"
	"github.com/cibyj/socialcal/internal/store"
)

// app bundles the wired collaborators a command needs.
type app struct {
	cfg    *config.Config
	store  *store.Store
	runner *reminder.Runner
	log    *slog.Logger
}

// buildApp loads config, opens the store and constructs the reminder runner
// with its collaborators injected. offline swaps the SMTP transport for a
// capturing fake so runs never leave the machine.
func buildApp(opts *RootOptions, offline bool) (*app, error) {
	log := newLogger(opts.Verbose)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", opts.ConfigPath, err)
	}
	cfg.ApplyEnv()
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	var sender mail.Sender
	if offline || cfg.SMTP.Host == "" {
		if !offline {
			log.Warn("no SMTP host configured, capturing mail instead of sending")
		}
		sender = mail.NewCaptureSender()
	} else {
		sender, err = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("configure mail sender: %w", err)
		}
	}

	eval := reminder.Evaluator{
		Offsets:   reminder.DefaultOffsets(),
		Tolerance: time.Duration(cfg.ToleranceMinutes) * time.Minute,
	}
	runner := reminder.NewRunner(
		st,
		st,
		sender,
		eval,
		reminder.NewRenderer(loc),
		log,
		reminder.WithSendTimeout(time.Duration(cfg.SendTimeoutSeconds)*time.Second),
	)

	return &app{cfg: cfg, store: st, runner: runner, log: log}, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
