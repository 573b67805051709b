package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenwick-labs/sessionmatch/internal/analysis"
	"github.com/fenwick-labs/sessionmatch/internal/category"
	"github.com/fenwick-labs/sessionmatch/internal/config"
	"github.com/fenwick-labs/sessionmatch/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the configured date range and report categories",
		Long: `Run the reconciliation over the configured date range.

Loads both source collections from the session warehouse, produces the
one-to-one assignment, and reports per-category counts, profiles and the
daily timeseries.

Example:
  sessionmatch run -c sessionmatch.yaml
  sessionmatch run --window 2m --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, _, cleanup, err := executeRun(cmd.Context(), rootOpts, window)
			if err != nil {
				return err
			}
			defer cleanup()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.SuccessText(renderRunText(run), payloadFor(run))
		},
	}

	cmd.Flags().DurationVar(&window, "window", 0, "override the configured matching window (e.g. 2m30s)")

	return cmd
}

// runPayload is the JSON shape for run and materialize output.
type runPayload struct {
	RunID       string          `json:"run_id"`
	Window      string          `json:"window"`
	RangeStart  string          `json:"range_start"`
	RangeEnd    string          `json:"range_end"`
	Strategy    string          `json:"strategy"`
	Fingerprint string          `json:"fingerprint"`
	Result      category.Result `json:"result"`
}

// executeRun loads config, opens the store and performs one run.
// The returned cleanup closes the store; callers needing further store
// access use the returned runner first.
func executeRun(ctx context.Context, rootOpts *RootOptions, windowOverride time.Duration) (*analysis.Run, *analysis.Runner, func(), error) {
	cfg, st, err := openStore(rootOpts)
	if err != nil {
		return nil, nil, nil, err
	}

	window := cfg.Window.Std()
	if windowOverride != 0 {
		window = windowOverride
	}

	runner := analysis.NewRunner(st)
	run, err := runner.Run(ctx, analysis.Options{
		Window:     window,
		RangeStart: cfg.Range.Start(),
		RangeEnd:   cfg.Range.End(),
	})
	if err != nil {
		st.Close()
		return nil, nil, nil, WrapExitError(ExitCommandError, "reconciliation failed", err)
	}

	return run, runner, func() { st.Close() }, nil
}

// openStore loads the config and opens the session warehouse.
func openStore(rootOpts *RootOptions) (*config.Config, *store.Store, error) {
	cfg, err := config.Load(rootOpts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return cfg, st, nil
}

func payloadFor(run *analysis.Run) runPayload {
	return runPayload{
		RunID:       run.ID,
		Window:      run.Window.String(),
		RangeStart:  run.RangeStart.Format(time.RFC3339),
		RangeEnd:    run.RangeEnd.Format(time.RFC3339),
		Strategy:    run.Strategy,
		Fingerprint: run.Assignment.Fingerprint(),
		Result:      run.Result,
	}
}

func renderRunText(run *analysis.Run) string {
	header := fmt.Sprintf("run %s  window=%s  strategy=%s\n\n",
		run.ID, run.Window, run.Strategy)
	return header + category.RenderText(run.Result)
}
