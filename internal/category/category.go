package category

import (
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/match"
	"github.com/fenwick-labs/sessionmatch/internal/session"
)

// Label is the derived category of a session.
type Label string

const (
	LabelBoth  Label = "both"
	LabelAOnly Label = "a-only"
	LabelBOnly Label = "b-only"
)

// MatchedPair carries both records of a verified pairing. The A-side
// record is canonical for dimension profiles; device category and
// country are attribute-equal by construction, so either side would do.
type MatchedPair struct {
	A         session.Session `json:"a"`
	B         session.Session `json:"b"`
	TimeDelta time.Duration   `json:"time_delta"`
}

// Result is the full categorization of one reconciliation run.
type Result struct {
	Both  []MatchedPair     `json:"both"`
	AOnly []session.Session `json:"a_only"`
	BOnly []session.Session `json:"b_only"`

	Profiles ProfileSet `json:"profiles"`
	Daily    []DayCount `json:"daily"`
}

// ProfileSet holds the per-category aggregate profiles.
type ProfileSet struct {
	Both  Profile `json:"both"`
	AOnly Profile `json:"a_only"`
	BOnly Profile `json:"b_only"`
}

// DayCount is one row of the daily category timeseries.
type DayCount struct {
	Day   time.Time `json:"day"`
	Both  int       `json:"both"`
	AOnly int       `json:"a_only"`
	BOnly int       `json:"b_only"`
}

// Categorize partitions the two collections against the assignment.
//
// Every A-session lands in exactly one of {Both, A-only} and every
// B-session in exactly one of {Both, B-only}, so
// len(Both)+len(AOnly) == len(a) and len(Both)+len(BOnly) == len(b).
// Empty collections are fine: the other side comes back fully "-only"
// and profiles over an empty category are marked undefined rather than
// raising.
//
// Pure function: no side effects, inputs are not mutated.
func Categorize(aSessions, bSessions []session.Session, asn *match.Assignment) Result {
	bByID := make(map[string]session.Session, len(bSessions))
	for _, b := range bSessions {
		bByID[b.Identifier] = b
	}

	var res Result
	for _, a := range aSessions {
		bID, ok := asn.BFor(a.Identifier)
		if !ok {
			res.AOnly = append(res.AOnly, a)
			continue
		}
		b := bByID[bID]
		res.Both = append(res.Both, MatchedPair{
			A:         a,
			B:         b,
			TimeDelta: absDelta(a.StartTime, b.StartTime),
		})
	}
	for _, b := range bSessions {
		if !asn.ContainsB(b.Identifier) {
			res.BOnly = append(res.BOnly, b)
		}
	}

	bothA := make([]session.Session, len(res.Both))
	for i, p := range res.Both {
		bothA[i] = p.A
	}
	res.Profiles = ProfileSet{
		Both:  BuildProfile(bothA),
		AOnly: BuildProfile(res.AOnly),
		BOnly: BuildProfile(res.BOnly),
	}
	res.Daily = dailyCounts(res)

	return res
}

// Total returns the number of distinct real-world sessions observed:
// matched pairs count once, "-only" sessions once each.
func (r Result) Total() int {
	return len(r.Both) + len(r.AOnly) + len(r.BOnly)
}

// dailyCounts buckets the categorized sessions by UTC day.
// Matched pairs bucket on the canonical A-side start time.
func dailyCounts(r Result) []DayCount {
	byDay := make(map[time.Time]*DayCount)
	bump := func(day time.Time) *DayCount {
		dc, ok := byDay[day]
		if !ok {
			dc = &DayCount{Day: day}
			byDay[day] = dc
		}
		return dc
	}

	for _, p := range r.Both {
		bump(p.A.Day()).Both++
	}
	for _, s := range r.AOnly {
		bump(s.Day()).AOnly++
	}
	for _, s := range r.BOnly {
		bump(s.Day()).BOnly++
	}

	days := make([]DayCount, 0, len(byDay))
	for _, dc := range byDay {
		days = append(days, *dc)
	}
	sortDayCounts(days)
	return days
}

func absDelta(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
