package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cibyj/socialcal/internal/schedule"
	"github.com/cibyj/socialcal/internal/web"
)

// NewServeCommand creates the serve command: HTTP API plus the cron-driven
// reminder schedule, running until SIGINT/SIGTERM.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var noSchedule bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calendar API and the reminder schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(opts, false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:    app.cfg.Listen,
				Handler: web.NewServer(app.cfg, app.store, app.runner, app.log).Handler(),
			}

			errCh := make(chan error, 1)
			go func() {
				app.log.Info("starting HTTP server", "listen", "http://"+app.cfg.Listen)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			if !noSchedule {
				trigger, err := schedule.New(app.runner, app.cfg.Schedule, app.log)
				if err != nil {
					return err
				}
				go trigger.Start(ctx)
				app.log.Info("reminder schedule enabled", "schedule", app.cfg.Schedule)
			}

			select {
			case <-ctx.Done():
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.log.Error("server shutdown failed", "err", err)
			}
			app.log.Info("socialcal exiting")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "serve the API without the periodic reminder runs")

	return cmd
}
