package hypothesis

import (
	"fmt"

	"github.com/fenwick-labs/sessionmatch/internal/category"
)

// Confidence ratings.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"

	// ConfidenceNA marks an evaluation that could not run because the
	// segment or the baseline is empty.
	ConfidenceNA = "N/A"
)

// CheckResult is one evaluated check.
type CheckResult struct {
	Check      Check
	Label      string  // human-readable check description
	Observed   float64 // the measured value the threshold applied to
	Baseline   float64 // Both-baseline value for shift checks, else 0
	Score      float64 // contribution toward the evidence score
	Passed     bool
}

// Evaluation is the outcome for one hypothesis.
type Evaluation struct {
	Hypothesis Hypothesis
	Checks     []CheckResult
	Score      float64
	MaxScore   float64
	Confidence string

	// DeviceShift is the contingency test of the segment's device
	// profile against the Both baseline, included as supporting
	// evidence alongside the declarative checks.
	DeviceShift category.ChiSquareResult
}

// Evaluate scores a hypothesis against the categorizer's profiles.
//
// An empty segment or baseline yields Confidence N/A with no checks
// evaluated - the data cannot speak either way, which is not the same
// as LOW.
func Evaluate(h Hypothesis, profiles category.ProfileSet) (Evaluation, error) {
	segment, err := segmentProfile(h.Segment, profiles)
	if err != nil {
		return Evaluation{}, err
	}
	baseline := profiles.Both

	ev := Evaluation{Hypothesis: h, MaxScore: h.totalWeight()}
	if !segment.Defined || !baseline.Defined {
		ev.Confidence = ConfidenceNA
		return ev, nil
	}

	for _, c := range h.Checks {
		res, err := evaluateCheck(c, segment, baseline)
		if err != nil {
			return Evaluation{}, fmt.Errorf("hypothesis %s: %w", h.Name, err)
		}
		ev.Score += res.Score
		ev.Checks = append(ev.Checks, res)
	}

	high, medium := h.thresholds()
	switch {
	case ev.Score >= high:
		ev.Confidence = ConfidenceHigh
	case ev.Score >= medium:
		ev.Confidence = ConfidenceMedium
	default:
		ev.Confidence = ConfidenceLow
	}

	ev.DeviceShift = category.DeviceShift(segment, baseline)
	return ev, nil
}

// EvaluateAll evaluates every hypothesis against the same profiles.
func EvaluateAll(hs []Hypothesis, profiles category.ProfileSet) ([]Evaluation, error) {
	out := make([]Evaluation, 0, len(hs))
	for _, h := range hs {
		ev, err := Evaluate(h, profiles)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func segmentProfile(label category.Label, profiles category.ProfileSet) (category.Profile, error) {
	switch label {
	case category.LabelAOnly:
		return profiles.AOnly, nil
	case category.LabelBOnly:
		return profiles.BOnly, nil
	case category.LabelBoth:
		return profiles.Both, nil
	default:
		return category.Profile{}, fmt.Errorf("unknown segment %q", label)
	}
}

func evaluateCheck(c Check, segment, baseline category.Profile) (CheckResult, error) {
	res := CheckResult{Check: c, Label: c.describe()}

	switch c.Metric {
	case MetricShare:
		dist, err := dimension(segment, c.Dimension)
		if err != nil {
			return CheckResult{}, err
		}
		res.Observed = segment.Share(dist, c.Value)
		res.Passed = passes(c, res.Observed)
		if res.Passed {
			res.Score = c.Weight
		}

	case MetricShift:
		segDist, err := dimension(segment, c.Dimension)
		if err != nil {
			return CheckResult{}, err
		}
		baseDist, err := dimension(baseline, c.Dimension)
		if err != nil {
			return CheckResult{}, err
		}
		res.Baseline = baseline.Share(baseDist, c.Value)
		res.Observed = segment.Share(segDist, c.Value) - res.Baseline
		res.Passed = passes(c, res.Observed)
		switch {
		case res.Passed:
			res.Score = c.Weight
		case c.Above != nil && res.Observed > 0:
			// Right direction but short of the threshold: half credit,
			// the same grading an analyst applies to a weak signal.
			res.Score = c.Weight / 2
		}

	case MetricPurchaseRate:
		res.Observed = segment.PurchaseRate
		res.Passed = passes(c, res.Observed)
		if res.Passed {
			res.Score = c.Weight
		}

	default:
		return CheckResult{}, fmt.Errorf("unknown metric %q", c.Metric)
	}

	return res, nil
}

func dimension(p category.Profile, name string) (map[string]int, error) {
	switch name {
	case "device":
		return p.Device, nil
	case "os":
		return p.OS, nil
	case "country":
		return p.Country, nil
	default:
		return nil, fmt.Errorf("unknown dimension %q", name)
	}
}

func passes(c Check, observed float64) bool {
	switch {
	case c.Above != nil:
		return observed >= *c.Above
	case c.Below != nil:
		return observed <= *c.Below
	}
	return false
}
