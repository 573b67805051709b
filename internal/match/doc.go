// Package match implements the cross-source reconciliation matcher.
//
// The matcher consumes two session collections with no shared key and
// produces an Assignment: a partial one-to-one mapping from source-A
// identifiers to source-B identifiers. A pair is eligible only when the
// two sessions started within a configured window of each other and
// agree exactly on device category and country.
//
// ARCHITECTURE:
//
// Single-pass greedy loop:
// A-sessions are processed in ascending (start_time, identifier) order.
// For each, candidates come from a window query against the candidate
// index, hard categorical filters are applied, and the nearest-in-time
// unclaimed candidate is committed immediately. Committing marks both
// identifiers claimed before the next A-session is considered, which is
// what makes the result injective in both directions.
//
// The loop is strictly sequential: candidate eligibility depends on
// prior commits, so the claim step must not be parallelized. Given
// identically-ordered input the output is byte-for-byte identical,
// which the Assignment fingerprint makes checkable.
//
// The selection policy is pluggable via Strategy. Greedy-nearest is the
// default; a globally-optimal bipartite matcher could be substituted
// without changing the surrounding pipeline.
package match
