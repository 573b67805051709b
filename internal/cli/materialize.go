package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewMaterializeCommand creates the materialize command.
func NewMaterializeCommand(rootOpts *RootOptions) *cobra.Command {
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Run the reconciliation and persist per-session categories",
		Long: `Run the reconciliation and write the result back into the database.

Stores the run metadata (window, range, strategy, fingerprint, counts)
and one category row per session, so downstream consumers can read the
split without recomputing it.

Example:
  sessionmatch materialize
  sessionmatch materialize --window 2m`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, runner, cleanup, err := executeRun(cmd.Context(), rootOpts, window)
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := runner.Materialize(cmd.Context(), run)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to materialize run", err)
			}

			text := fmt.Sprintf("materialized run %s\n  window      %s\n  both        %d\n  a-only      %d\n  b-only      %d\n  fingerprint %s\n",
				rec.ID, rec.Window, rec.BothCount, rec.AOnlyCount, rec.BOnlyCount, rec.Fingerprint)

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.SuccessText(text, payloadFor(run))
		},
	}

	cmd.Flags().DurationVar(&window, "window", 0, "override the configured matching window")

	return cmd
}
