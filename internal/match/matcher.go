package match

import (
	"log/slog"
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/index"
	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// DefaultWindow is the conventional window for callers that do not
// configure one. The matcher itself takes the window explicitly.
const DefaultWindow = 5 * time.Minute

// Strategy selects pairs from the candidate graph.
//
// Implementations must be deterministic: identical input collections in
// identical order must yield an identical Assignment. GreedyNearest is
// the default; an exact minimum-weight bipartite matcher satisfying the
// same window and categorical constraints can be swapped in without
// touching the rest of the pipeline.
type Strategy interface {
	// Name identifies the strategy in logs and run metadata.
	Name() string

	// Assign produces the pairing. aSessions is already sorted for
	// matching and contains only matchable records; ix indexes only
	// matchable B-sessions.
	Assign(aSessions []session.Session, ix *index.Index, window time.Duration) []Pair
}

// Options configures a matching run.
type Options struct {
	// Window is the maximum |a.start - b.start| for a pairing.
	// Must be positive; there is no implicit default here.
	Window time.Duration

	// Strategy overrides the pair selection policy. Nil means GreedyNearest.
	Strategy Strategy
}

// Match produces the Assignment for the two session collections.
//
// Malformed records (missing start time, device category or country) are
// excluded from matching entirely rather than aborting the run; they
// surface later as "-only" sessions. Either collection may be empty.
//
// Returns a *ConfigError before any matching begins if the window is
// not positive.
func Match(aSessions, bSessions []session.Session, opts Options) (*Assignment, error) {
	window := opts.Window
	if window <= 0 {
		return nil, &ConfigError{Field: "window", Message: "must be positive"}
	}

	strategy := opts.Strategy
	if strategy == nil {
		strategy = GreedyNearest{}
	}

	aOK, aBad := session.SplitMatchable(aSessions)
	bOK, bBad := session.SplitMatchable(bSessions)
	if len(aBad) > 0 || len(bBad) > 0 {
		slog.Warn("excluding malformed sessions from matching",
			"source_a", len(aBad),
			"source_b", len(bBad),
		)
	}

	// Deterministic iteration order for the greedy policy: ascending
	// start time, identifier tie-break.
	ordered := make([]session.Session, len(aOK))
	copy(ordered, aOK)
	session.SortForMatching(ordered)

	ix := index.Build(bOK)

	pairs := strategy.Assign(ordered, ix, window)
	asn := newAssignment(pairs)

	slog.Debug("matching complete",
		"strategy", strategy.Name(),
		"window", window,
		"a_sessions", len(aSessions),
		"b_sessions", len(bSessions),
		"pairs", asn.Len(),
		"fingerprint", asn.Fingerprint(),
	)

	return asn, nil
}

// GreedyNearest is the default pair selection policy: each A-session
// claims its nearest-in-time eligible B-session, first come first
// served in A start-time order.
//
// This is a deliberate simplification of full weighted bipartite
// matching. Observed traffic clusters by hour of day, which makes
// greedy-nearest track the optimal assignment closely at a fraction of
// the cost.
type GreedyNearest struct{}

// Name implements Strategy.
func (GreedyNearest) Name() string { return "greedy-nearest" }

// Assign implements Strategy.
//
// For each A-session, in order:
//  1. Window query against the index.
//  2. Hard categorical filter: device category and country must match
//     exactly. A mismatch excludes the candidate entirely - there is no
//     similarity score on these fields.
//  3. Already-claimed candidates are removed before selection, enforcing
//     the one-to-one invariant.
//  4. Among the rest, minimum |b.start - a.start| wins; equal deltas fall
//     back to the lexicographically smaller B identifier so the order is
//     total and reproducible.
//
// The winning pair is committed before the next A-session is processed.
func (GreedyNearest) Assign(aSessions []session.Session, ix *index.Index, window time.Duration) []Pair {
	var pairs []Pair
	claimedB := make(map[string]bool)

	for _, a := range aSessions {
		candidates := ix.Query(a.StartTime, window)

		var (
			best      session.Session
			bestDelta time.Duration
			found     bool
		)
		for _, b := range candidates {
			if b.Device != a.Device || b.Country != a.Country {
				continue
			}
			if claimedB[b.Identifier] {
				continue
			}
			delta := absDuration(b.StartTime.Sub(a.StartTime))
			switch {
			case !found:
				best, bestDelta, found = b, delta, true
			case delta < bestDelta:
				best, bestDelta = b, delta
			case delta == bestDelta && b.Identifier < best.Identifier:
				best = b
			}
		}
		if !found {
			continue // a stays unmatched for this pass
		}

		claimedB[best.Identifier] = true
		pairs = append(pairs, Pair{AID: a.Identifier, BID: best.Identifier, TimeDelta: bestDelta})
	}

	return pairs
}

// absDuration returns |d|.
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
