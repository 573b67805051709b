package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenwick-labs/sessionmatch/internal/analysis"
	"github.com/fenwick-labs/sessionmatch/internal/hypothesis"
)

// NewHypothesesCommand creates the hypotheses command.
func NewHypothesesCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dir    string
		window time.Duration
	)

	cmd := &cobra.Command{
		Use:   "hypotheses",
		Short: "Evaluate CUE-defined hypotheses against the category profiles",
		Long: `Run the reconciliation and score each hypothesis in the configured
directory against the resulting category profiles.

Each hypothesis names a segment (a-only or b-only) and a set of checks;
the evidence score maps to a HIGH / MEDIUM / LOW confidence rating.
Hypotheses whose segment is empty rate N/A.

Example:
  sessionmatch hypotheses
  sessionmatch hypotheses --dir ./hypotheses`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			hypDir := cfg.HypothesesDir
			if dir != "" {
				hypDir = dir
			}
			if hypDir == "" {
				return NewExitError(ExitCommandError, "no hypotheses directory configured (set hypotheses_dir or pass --dir)")
			}

			hs, err := hypothesis.LoadDir(hypDir)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load hypotheses", err)
			}

			w := cfg.Window.Std()
			if window != 0 {
				w = window
			}

			runner := analysis.NewRunner(st)
			run, err := runner.Run(cmd.Context(), analysis.Options{
				Window:     w,
				RangeStart: cfg.Range.Start(),
				RangeEnd:   cfg.Range.End(),
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "reconciliation failed", err)
			}

			evals, err := hypothesis.EvaluateAll(hs, run.Result.Profiles)
			if err != nil {
				return WrapExitError(ExitCommandError, "hypothesis evaluation failed", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.SuccessText(renderEvaluations(evals), evaluationPayload(evals))
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "hypotheses directory (overrides config)")
	cmd.Flags().DurationVar(&window, "window", 0, "override the configured matching window")

	return cmd
}

// evaluationJSON is the JSON shape for one evaluated hypothesis.
type evaluationJSON struct {
	Name       string      `json:"name"`
	Segment    string      `json:"segment"`
	Score      float64     `json:"score"`
	MaxScore   float64     `json:"max_score"`
	Confidence string      `json:"confidence"`
	Checks     []checkJSON `json:"checks"`
}

type checkJSON struct {
	Label    string  `json:"label"`
	Observed float64 `json:"observed"`
	Score    float64 `json:"score"`
	Passed   bool    `json:"passed"`
}

func evaluationPayload(evals []hypothesis.Evaluation) []evaluationJSON {
	out := make([]evaluationJSON, 0, len(evals))
	for _, ev := range evals {
		ej := evaluationJSON{
			Name:       ev.Hypothesis.Name,
			Segment:    string(ev.Hypothesis.Segment),
			Score:      ev.Score,
			MaxScore:   ev.MaxScore,
			Confidence: ev.Confidence,
			Checks:     make([]checkJSON, 0, len(ev.Checks)),
		}
		for _, c := range ev.Checks {
			ej.Checks = append(ej.Checks, checkJSON{
				Label:    c.Label,
				Observed: c.Observed,
				Score:    c.Score,
				Passed:   c.Passed,
			})
		}
		out = append(out, ej)
	}
	return out
}

func renderEvaluations(evals []hypothesis.Evaluation) string {
	var b strings.Builder
	for i, ev := range evals {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  [%s]  score %.1f/%.1f  %s\n",
			ev.Hypothesis.Name, ev.Hypothesis.Segment, ev.Score, ev.MaxScore, ev.Confidence)
		if ev.Hypothesis.Description != "" {
			fmt.Fprintf(&b, "  %s\n", ev.Hypothesis.Description)
		}
		for _, c := range ev.Checks {
			mark := "fail"
			if c.Passed {
				mark = "pass"
			}
			fmt.Fprintf(&b, "  [%s] %-40s observed %.4f  +%.1f\n", mark, c.Label, c.Observed, c.Score)
		}
		if ev.DeviceShift.Defined {
			fmt.Fprintf(&b, "  device shift: chi2=%.2f df=%d p=%.4f\n",
				ev.DeviceShift.Statistic, ev.DeviceShift.DF, ev.DeviceShift.PValue)
		}
	}
	return b.String()
}
