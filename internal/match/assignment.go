package match

import (
	"time"
)

// Pair is one committed pairing between an A-session and a B-session.
// TimeDelta is the absolute start-time difference at commit time.
type Pair struct {
	AID       string        `json:"a_id"`
	BID       string        `json:"b_id"`
	TimeDelta time.Duration `json:"time_delta"`
}

// Assignment is the matcher's output: a partial injective mapping from
// source-A identifiers to source-B identifiers.
//
// An Assignment is built fresh per run, immutable once produced, and
// carries no reference to the input collections. Consumers look up
// membership by identifier.
type Assignment struct {
	pairs       []Pair
	aToB        map[string]string
	bToA        map[string]string
	fingerprint string
}

// newAssignment seals the builder state into an immutable Assignment.
func newAssignment(pairs []Pair) *Assignment {
	a := &Assignment{
		pairs: pairs,
		aToB:  make(map[string]string, len(pairs)),
		bToA:  make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		a.aToB[p.AID] = p.BID
		a.bToA[p.BID] = p.AID
	}
	a.fingerprint = fingerprintPairs(pairs)
	return a
}

// Len returns the number of committed pairs.
func (a *Assignment) Len() int {
	return len(a.pairs)
}

// Pairs returns the committed pairs in commit order.
// The returned slice is a copy; mutating it does not affect the Assignment.
func (a *Assignment) Pairs() []Pair {
	out := make([]Pair, len(a.pairs))
	copy(out, a.pairs)
	return out
}

// BFor returns the B identifier paired with the given A identifier.
func (a *Assignment) BFor(aID string) (string, bool) {
	b, ok := a.aToB[aID]
	return b, ok
}

// AFor returns the A identifier paired with the given B identifier.
func (a *Assignment) AFor(bID string) (string, bool) {
	id, ok := a.bToA[bID]
	return id, ok
}

// ContainsA reports whether the A identifier participates in a pair.
func (a *Assignment) ContainsA(aID string) bool {
	_, ok := a.aToB[aID]
	return ok
}

// ContainsB reports whether the B identifier participates in a pair.
func (a *Assignment) ContainsB(bID string) bool {
	_, ok := a.bToA[bID]
	return ok
}

// Fingerprint returns the content hash of the pair set.
// Two runs over identical, identically-ordered input produce the same
// fingerprint; the surrounding application may use it as a cache key.
func (a *Assignment) Fingerprint() string {
	return a.fingerprint
}
