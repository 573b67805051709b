package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenwick-labs/sessionmatch/internal/analysis"
)

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	var windows []time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Rerun the matcher across several windows and compare category counts",
		Long: `Sweep the matching window across a set of values.

Each window produces an independent run over the same date range; the
output shows how the both / a-only / b-only split moves as the window
widens. Larger windows can only grow the matched set.

Example:
  sessionmatch sweep --windows 1m,2m,5m,10m`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			runner := analysis.NewRunner(st)
			points, err := runner.Sweep(cmd.Context(), windows, analysis.Options{
				RangeStart: cfg.Range.Start(),
				RangeEnd:   cfg.Range.End(),
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "sweep failed", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.SuccessText(renderSweepText(points), points)
		},
	}

	cmd.Flags().DurationSliceVar(&windows, "windows", []time.Duration{
		time.Minute, 2 * time.Minute, 5 * time.Minute, 10 * time.Minute,
	}, "windows to sweep, comma separated (e.g. 1m,2m,5m)")

	return cmd
}

func renderSweepText(points []analysis.SweepPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %10s %10s %10s\n", "WINDOW", "BOTH", "A-ONLY", "B-ONLY")
	for _, p := range points {
		fmt.Fprintf(&b, "%-10s %10d %10d %10d\n", p.Window, p.Both, p.AOnly, p.BOnly)
	}
	return b.String()
}
