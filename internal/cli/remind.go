package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cibyj/socialcal/internal/reminder"
)

// NewRemindCommand creates the remind command: a single reminder run,
// printing the report as JSON. This is the same run the scheduler and the
// HTTP trigger perform.
func NewRemindCommand(opts *RootOptions) *cobra.Command {
	var (
		dryRun    bool
		testEmail string
		force     bool
		offline   bool
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Execute one reminder run and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(opts, offline)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.runner.Run(cmd.Context(), reminder.RunOptions{
				DryRun:    dryRun,
				TestEmail: testEmail,
				Force:     force,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render previews without sending or marking")
	cmd.Flags().StringVar(&testEmail, "test-email", "", "redirect every dispatch to this address")
	cmd.Flags().BoolVar(&force, "force", false, "dispatch every offset regardless of windows and the ledger")
	cmd.Flags().BoolVar(&offline, "offline", false, "capture mail instead of talking to the SMTP relay")

	return cmd
}
