package category

import (
	"sort"
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// Profile summarizes one category's sessions.
//
// Rates are only meaningful when Defined is true (at least one session).
// Callers rendering an undefined profile should print "n/a" rather than
// a zero, so an empty category cannot be mistaken for a measured zero.
type Profile struct {
	Sessions int `json:"sessions"`

	// Defined is false for an empty category; the rate fields below are
	// zero-valued and not meaningful in that case.
	Defined bool `json:"defined"`

	// PurchaseRate is the share of sessions with at least one purchase,
	// in [0,1].
	PurchaseRate float64 `json:"purchase_rate"`

	// AvgEngagement is the mean reported engagement time. Sessions that
	// report no engagement count as zero, mirroring the upstream
	// collector's accounting.
	AvgEngagement time.Duration `json:"avg_engagement"`

	// Distributions are absolute counts keyed by normalized dimension
	// value. Percentages are derived at render time.
	Device  map[string]int `json:"device"`
	OS      map[string]int `json:"os"`
	Country map[string]int `json:"country"`
}

// BuildProfile computes the aggregate profile for a session set.
// An empty input yields a zero Profile with Defined == false.
func BuildProfile(sessions []session.Session) Profile {
	p := Profile{
		Sessions: len(sessions),
		Device:   make(map[string]int),
		OS:       make(map[string]int),
		Country:  make(map[string]int),
	}
	if len(sessions) == 0 {
		return p
	}
	p.Defined = true

	purchases := 0
	var engagement time.Duration
	for _, s := range sessions {
		if s.HasPurchase() {
			purchases++
		}
		engagement += s.EngagementTime
		if s.Device != "" {
			p.Device[string(s.Device)]++
		}
		if s.OS != "" {
			p.OS[s.OS]++
		}
		if s.Country != "" {
			p.Country[s.Country]++
		}
	}

	p.PurchaseRate = float64(purchases) / float64(len(sessions))
	p.AvgEngagement = engagement / time.Duration(len(sessions))
	return p
}

// Share returns dist[key] as a fraction of the profile's sessions.
// Returns 0 for an undefined profile.
func (p Profile) Share(dist map[string]int, key string) float64 {
	if !p.Defined {
		return 0
	}
	return float64(dist[key]) / float64(p.Sessions)
}

// sortedKeys returns dist's keys ordered by descending count, ties by
// key, so rendered breakdowns are deterministic.
func sortedKeys(dist map[string]int) []string {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortDayCounts(days []DayCount) {
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day.Before(days[j].Day)
	})
}
