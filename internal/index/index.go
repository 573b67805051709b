// Package index provides the candidate index: a time-ordered structure
// over one source's sessions supporting window queries by start time.
//
// The index is read-only once built. Multiple goroutines may query it
// concurrently, but the matching phase that consumes it is kept
// single-threaded for determinism.
package index

import (
	"sort"
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// Index supports retrieval of all sessions whose start time lies within
// a fixed window of a given center timestamp.
//
// Implementation: a slice sorted by (start_time, identifier) with
// binary-search bounds. The sort tie-break on identifier makes query
// results a deterministic function of the input set, which keeps the
// greedy matcher reproducible without re-sorting candidates.
type Index struct {
	sessions []session.Session
}

// Build constructs an index over the given sessions.
// The input slice is copied; callers may reuse it afterwards.
// An empty or nil input yields a valid, empty index.
func Build(sessions []session.Session) *Index {
	sorted := make([]session.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].Identifier < sorted[j].Identifier
	})
	return &Index{sessions: sorted}
}

// Len returns the number of indexed sessions.
func (ix *Index) Len() int {
	return len(ix.sessions)
}

// Query returns every indexed session b with |b.start - center| <= window,
// ordered by (start_time, identifier). May return an empty slice; never
// errors. A negative window returns no candidates.
func (ix *Index) Query(center time.Time, window time.Duration) []session.Session {
	if window < 0 || len(ix.sessions) == 0 {
		return nil
	}

	lo := center.Add(-window)
	hi := center.Add(window)

	// First index with start >= lo.
	first := sort.Search(len(ix.sessions), func(i int) bool {
		return !ix.sessions[i].StartTime.Before(lo)
	})
	// First index with start > hi.
	last := sort.Search(len(ix.sessions), func(i int) bool {
		return ix.sessions[i].StartTime.After(hi)
	})

	if first >= last {
		return nil
	}

	out := make([]session.Session, last-first)
	copy(out, ix.sessions[first:last])
	return out
}
