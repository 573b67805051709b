// Package analysis orchestrates one reconciliation run: fetch both
// source collections, match, categorize, and optionally materialize the
// result back into the store.
//
// The two fetches run in parallel - they share no mutable state. The
// matching phase itself is strictly sequential (see package match).
// Each run is a finite, synchronous batch computation; the runner holds
// no state between runs, so repeated invocation on identical inputs
// yields an identical Assignment.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fenwick-labs/sessionmatch/internal/category"
	"github.com/fenwick-labs/sessionmatch/internal/match"
	"github.com/fenwick-labs/sessionmatch/internal/session"
	"github.com/fenwick-labs/sessionmatch/internal/store"
)

// Run is the complete output of one reconciliation run.
type Run struct {
	// ID is a UUIDv7: time-sortable, handy when listing materialized runs.
	ID string

	Window     time.Duration
	RangeStart time.Time
	RangeEnd   time.Time
	Strategy   string

	Assignment *match.Assignment
	Result     category.Result

	// Input sizes, before malformed-record exclusion.
	ACount int
	BCount int
}

// Runner executes reconciliation runs against a session store.
type Runner struct {
	store *store.Store
}

// NewRunner creates a Runner backed by the given store.
func NewRunner(st *store.Store) *Runner {
	return &Runner{store: st}
}

// Options configures a run.
type Options struct {
	Window     time.Duration
	RangeStart time.Time
	RangeEnd   time.Time

	// Strategy overrides the matcher's pair selection policy.
	Strategy match.Strategy
}

// Run fetches both collections, matches and categorizes them.
func (r *Runner) Run(ctx context.Context, opts Options) (*Run, error) {
	var aSessions, bSessions []session.Session

	// Fetching the two sources is the one phase safe to parallelize:
	// read-only, no shared state until both are materialized.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		aSessions, err = r.store.ReadSessions(gctx, session.SourceA, opts.RangeStart, opts.RangeEnd)
		return err
	})
	g.Go(func() error {
		var err error
		bSessions, err = r.store.ReadSessions(gctx, session.SourceB, opts.RangeStart, opts.RangeEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}

	slog.Info("sessions loaded",
		"source_a", len(aSessions),
		"source_b", len(bSessions),
		"range_start", opts.RangeStart,
		"range_end", opts.RangeEnd,
	)

	strategy := opts.Strategy
	if strategy == nil {
		strategy = match.GreedyNearest{}
	}

	asn, err := match.Match(aSessions, bSessions, match.Options{
		Window:   opts.Window,
		Strategy: strategy,
	})
	if err != nil {
		return nil, err
	}

	result := category.Categorize(aSessions, bSessions, asn)

	run := &Run{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Window:     opts.Window,
		RangeStart: opts.RangeStart,
		RangeEnd:   opts.RangeEnd,
		Strategy:   strategy.Name(),
		Assignment: asn,
		Result:     result,
		ACount:     len(aSessions),
		BCount:     len(bSessions),
	}

	slog.Info("run complete",
		"run_id", run.ID,
		"both", len(result.Both),
		"a_only", len(result.AOnly),
		"b_only", len(result.BOnly),
		"fingerprint", asn.Fingerprint(),
	)

	return run, nil
}

// Materialize persists the run's per-session category rows and metadata
// so the presentation layer can load results without recomputing.
func (r *Runner) Materialize(ctx context.Context, run *Run) (store.RunRecord, error) {
	rec := store.RunRecord{
		ID:          run.ID,
		CreatedAt:   time.Now().UTC(),
		Window:      run.Window,
		RangeStart:  run.RangeStart,
		RangeEnd:    run.RangeEnd,
		Strategy:    run.Strategy,
		Fingerprint: run.Assignment.Fingerprint(),
		BothCount:   len(run.Result.Both),
		AOnlyCount:  len(run.Result.AOnly),
		BOnlyCount:  len(run.Result.BOnly),
	}

	rows := make([]store.CategoryRow, 0, 2*len(run.Result.Both)+len(run.Result.AOnly)+len(run.Result.BOnly))
	for _, p := range run.Result.Both {
		rows = append(rows,
			store.CategoryRow{Source: session.SourceA, Identifier: p.A.Identifier, Category: string(category.LabelBoth), MatchedIdentifier: p.B.Identifier},
			store.CategoryRow{Source: session.SourceB, Identifier: p.B.Identifier, Category: string(category.LabelBoth), MatchedIdentifier: p.A.Identifier},
		)
	}
	for _, s := range run.Result.AOnly {
		rows = append(rows, store.CategoryRow{Source: session.SourceA, Identifier: s.Identifier, Category: string(category.LabelAOnly)})
	}
	for _, s := range run.Result.BOnly {
		rows = append(rows, store.CategoryRow{Source: session.SourceB, Identifier: s.Identifier, Category: string(category.LabelBOnly)})
	}

	if err := r.store.SaveRun(ctx, rec, rows); err != nil {
		return store.RunRecord{}, err
	}

	slog.Info("run materialized", "run_id", rec.ID, "rows", len(rows))
	return rec, nil
}

// SweepPoint is one window's outcome in a sensitivity sweep.
type SweepPoint struct {
	Window time.Duration `json:"window"`
	Both   int           `json:"both"`
	AOnly  int           `json:"a_only"`
	BOnly  int           `json:"b_only"`
}

// Sweep re-runs the matcher across a set of windows over fixed input.
// Widening the window can only grow the matched set, so the Both counts
// are non-decreasing when windows are given in ascending order.
func (r *Runner) Sweep(ctx context.Context, windows []time.Duration, opts Options) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(windows))
	for _, w := range windows {
		o := opts
		o.Window = w
		run, err := r.Run(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("sweep window %s: %w", w, err)
		}
		points = append(points, SweepPoint{
			Window: w,
			Both:   len(run.Result.Both),
			AOnly:  len(run.Result.AOnly),
			BOnly:  len(run.Result.BOnly),
		})
	}
	return points, nil
}
