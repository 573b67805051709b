package hypothesis

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/fenwick-labs/sessionmatch/internal/category"
)

// LoadDir loads every hypothesis defined in the CUE files of a
// directory. Definitions live under the top-level "hypothesis" struct,
// keyed by name:
//
//	hypothesis: adblock: {
//		description: "A-only sessions are ad-blocker users"
//		segment:     "a-only"
//		checks: [
//			{metric: "share", dimension: "device", value: "desktop", above: 0.70},
//			{metric: "shift", dimension: "device", value: "desktop", above: 0.03},
//		]
//	}
//
// Hypotheses are returned sorted by name for deterministic evaluation
// order.
func LoadDir(dir string) ([]Hypothesis, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("hypotheses directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	ctx := cuecontext.New()
	// Package "_" selects files without a package clause, which is how
	// hypothesis files are written; cue/load before v0.10 skips them
	// otherwise.
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir, Package: "_"})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}

	return Parse(value)
}

// Parse extracts hypotheses from a built CUE value.
// Exposed separately so tests can compile definitions inline.
func Parse(value cue.Value) ([]Hypothesis, error) {
	root := value.LookupPath(cue.ParsePath("hypothesis"))
	if !root.Exists() {
		return nil, fmt.Errorf("no top-level \"hypothesis\" struct")
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate hypotheses: %w", err)
	}

	var out []Hypothesis
	for iter.Next() {
		h, err := parseHypothesis(iter.Selector().String(), iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func parseHypothesis(name string, v cue.Value) (Hypothesis, error) {
	h := Hypothesis{Name: name}

	desc, err := requiredString(v, "description")
	if err != nil {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: %w", name, err)
	}
	h.Description = desc

	seg, err := requiredString(v, "segment")
	if err != nil {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: %w", name, err)
	}
	h.Segment = category.Label(seg)
	switch h.Segment {
	case category.LabelAOnly, category.LabelBOnly, category.LabelBoth:
	default:
		return Hypothesis{}, fmt.Errorf("hypothesis %s: unknown segment %q", name, seg)
	}

	checksVal := v.LookupPath(cue.ParsePath("checks"))
	if !checksVal.Exists() {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: checks are required", name)
	}
	list, err := checksVal.List()
	if err != nil {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: checks: %w", name, err)
	}
	for i := 0; list.Next(); i++ {
		c, err := parseCheck(list.Value())
		if err != nil {
			return Hypothesis{}, fmt.Errorf("hypothesis %s: checks[%d]: %w", name, i, err)
		}
		h.Checks = append(h.Checks, c)
	}
	if len(h.Checks) == 0 {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: at least one check is required", name)
	}

	if h.High, err = optionalFloat(v, "high", 0); err != nil {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: %w", name, err)
	}
	if h.Medium, err = optionalFloat(v, "medium", 0); err != nil {
		return Hypothesis{}, fmt.Errorf("hypothesis %s: %w", name, err)
	}

	return h, nil
}

func parseCheck(v cue.Value) (Check, error) {
	c := Check{Weight: 1}

	metric, err := requiredString(v, "metric")
	if err != nil {
		return Check{}, err
	}
	c.Metric = metric

	switch metric {
	case MetricShare, MetricShift:
		if c.Dimension, err = requiredString(v, "dimension"); err != nil {
			return Check{}, err
		}
		if c.Value, err = requiredString(v, "value"); err != nil {
			return Check{}, err
		}
	case MetricPurchaseRate:
	default:
		return Check{}, fmt.Errorf("unknown metric %q", metric)
	}

	if c.Above, err = floatPtr(v, "above"); err != nil {
		return Check{}, err
	}
	if c.Below, err = floatPtr(v, "below"); err != nil {
		return Check{}, err
	}
	if (c.Above == nil) == (c.Below == nil) {
		return Check{}, fmt.Errorf("exactly one of above/below is required")
	}

	if c.Weight, err = optionalFloat(v, "weight", 1); err != nil {
		return Check{}, err
	}
	if c.Weight <= 0 {
		return Check{}, fmt.Errorf("weight must be positive")
	}

	return c, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", fmt.Errorf("%s is required", field)
	}
	s, err := fv.String()
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return s, nil
}

func optionalFloat(v cue.Value, field string, def float64) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return f, nil
}

func floatPtr(v cue.Value, field string) (*float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &f, nil
}
