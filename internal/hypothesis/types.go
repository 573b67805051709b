// Package hypothesis evaluates declarative explanations for why the two
// pipelines capture different sessions (ad-blockers, corporate
// firewalls, national firewalls, ...).
//
// Hypotheses are written in CUE and compared against the categorizer's
// profiles. Each check contributes a weighted score; the total maps to
// a LOW/MEDIUM/HIGH confidence rating. This mirrors how an analyst
// argues from the data: several weak signals, summed.
package hypothesis

import (
	"fmt"

	"github.com/fenwick-labs/sessionmatch/internal/category"
)

// Metric names for checks.
const (
	// MetricShare tests a dimension value's share within the segment.
	MetricShare = "share"

	// MetricShift tests the segment's share minus the Both baseline's
	// share for the same dimension value.
	MetricShift = "shift"

	// MetricPurchaseRate tests the segment's purchase rate.
	MetricPurchaseRate = "purchase_rate"
)

// Check is one piece of evidence for a hypothesis.
//
// Exactly one of Above/Below should be set; both fractions in [0,1]
// (shifts may be negative). Weight defaults to 1.
type Check struct {
	Metric    string
	Dimension string // "device" | "os" | "country"; empty for purchase_rate
	Value     string // dimension value, e.g. "desktop"
	Above     *float64
	Below     *float64
	Weight    float64
}

// describe renders the check for reports.
func (c Check) describe() string {
	subject := c.Metric
	if c.Dimension != "" {
		subject = fmt.Sprintf("%s %s=%s", c.Metric, c.Dimension, c.Value)
	}
	switch {
	case c.Above != nil:
		return fmt.Sprintf("%s >= %.2f", subject, *c.Above)
	case c.Below != nil:
		return fmt.Sprintf("%s <= %.2f", subject, *c.Below)
	}
	return subject
}

// Hypothesis is one declarative explanation under test.
type Hypothesis struct {
	Name        string
	Description string

	// Segment names the category whose profile carries the evidence.
	Segment category.Label

	Checks []Check

	// High and Medium are confidence thresholds on the summed score.
	// When zero they default to 80% and 50% of the total check weight.
	High   float64
	Medium float64
}

// totalWeight sums the checks' weights.
func (h Hypothesis) totalWeight() float64 {
	var total float64
	for _, c := range h.Checks {
		total += c.Weight
	}
	return total
}

// thresholds returns the effective High/Medium cutoffs.
func (h Hypothesis) thresholds() (high, medium float64) {
	high, medium = h.High, h.Medium
	if high == 0 {
		high = 0.8 * h.totalWeight()
	}
	if medium == 0 {
		medium = 0.5 * h.totalWeight()
	}
	return high, medium
}
