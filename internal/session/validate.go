package session

import (
	"fmt"
	"sort"
)

// MalformedError describes why a session record is unmatchable.
//
// Malformed records are never fatal: the matcher excludes them and they
// fall into their source's "-only" category, so partial data cannot
// prevent producing results for the rest of the set.
type MalformedError struct {
	Identifier string
	Source     Source
	Missing    []string // field names, in report order
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	return fmt.Sprintf("session %s (source %s): missing %v", e.Identifier, e.Source, e.Missing)
}

// Validate checks the fields the matcher depends on.
// Returns a *MalformedError naming every missing field, or nil.
//
// End time, OS, browser and purchase fields are not required: they feed
// aggregate statistics only and their absence degrades gracefully.
func Validate(s Session) error {
	var missing []string
	if s.StartTime.IsZero() {
		missing = append(missing, "start_time")
	}
	if s.Device == "" {
		missing = append(missing, "device_category")
	}
	if s.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) == 0 {
		return nil
	}
	return &MalformedError{Identifier: s.Identifier, Source: s.Source, Missing: missing}
}

// Matchable reports whether the session can participate in matching.
func Matchable(s Session) bool {
	return Validate(s) == nil
}

// SplitMatchable partitions sessions into matchable and malformed sets,
// preserving input order within each set.
func SplitMatchable(sessions []Session) (matchable, malformed []Session) {
	for _, s := range sessions {
		if Matchable(s) {
			matchable = append(matchable, s)
		} else {
			malformed = append(malformed, s)
		}
	}
	return matchable, malformed
}

// SortForMatching orders sessions by ascending start time, breaking ties
// by identifier. The matcher's greedy policy depends on this order being
// total and reproducible.
func SortForMatching(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].StartTime.Equal(sessions[j].StartTime) {
			return sessions[i].StartTime.Before(sessions[j].StartTime)
		}
		return sessions[i].Identifier < sessions[j].Identifier
	})
}
