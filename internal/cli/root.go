// Package cli wires the socialcal commands: a long-running server and a
// one-shot reminder run.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string // overrides the config file when set
	Verbose    bool
}

// NewRootCommand creates the root command for the socialcal CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "socialcal",
		Short: "Social Calendar - events with email reminders",
		Long:  "A calendar service that registers events and emails reminders 7, 2 and 1 days before each one.",
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "socialcal.yaml", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (overrides config if set)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRemindCommand(opts))

	return cmd
}

// newLogger builds the process logger. Verbose enables debug level.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
