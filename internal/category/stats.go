package category

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquareResult is the outcome of a contingency-table independence
// test between two categorical distributions.
//
// Defined is false when the test cannot run (an empty side, or fewer
// than two informative columns); the numeric fields are then zero and
// not meaningful.
type ChiSquareResult struct {
	Statistic float64 `json:"statistic"`
	DF        int     `json:"df"`
	PValue    float64 `json:"p_value"`
	Defined   bool    `json:"defined"`
}

// Contingency runs a standard Pearson chi-square test on the 2xK table
// formed by two count distributions over the union of their keys.
// Columns with a zero grand total are dropped; they carry no
// information and would divide by zero in the expected counts.
func Contingency(obs, baseline map[string]int) ChiSquareResult {
	keys := unionKeys(obs, baseline)

	var cols []string
	obsTotal, baseTotal := 0, 0
	for _, k := range keys {
		if obs[k]+baseline[k] > 0 {
			cols = append(cols, k)
		}
	}
	for _, k := range cols {
		obsTotal += obs[k]
		baseTotal += baseline[k]
	}

	if obsTotal == 0 || baseTotal == 0 || len(cols) < 2 {
		return ChiSquareResult{}
	}

	grand := float64(obsTotal + baseTotal)
	var stat float64
	for _, k := range cols {
		colTotal := float64(obs[k] + baseline[k])
		expObs := float64(obsTotal) * colTotal / grand
		expBase := float64(baseTotal) * colTotal / grand
		dObs := float64(obs[k]) - expObs
		dBase := float64(baseline[k]) - expBase
		stat += dObs * dObs / expObs
		stat += dBase * dBase / expBase
	}

	df := len(cols) - 1 // (rows-1)*(cols-1) with rows == 2
	dist := distuv.ChiSquared{K: float64(df)}
	return ChiSquareResult{
		Statistic: stat,
		DF:        df,
		PValue:    dist.Survival(stat),
		Defined:   true,
	}
}

// DeviceShift tests whether a category's device profile differs from
// the Both baseline. Used for hypothesis validation: e.g. whether
// A-only sessions skew desktop relative to sessions both pipelines saw.
func DeviceShift(p, baseline Profile) ChiSquareResult {
	return Contingency(p.Device, baseline.Device)
}

func unionKeys(a, b map[string]int) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
