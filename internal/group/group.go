// Package group nests flat records by runtime-selected dimensions.
package group

import (
	"strings"

	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
)

// MaxDimensions is the number of selector slots.
const MaxDimensions = 5

// NoParameters is the param value of tests without a bracketed parameter id.
const NoParameters = "No-parameters"

// Dimension names a FlatRecord field to group by, or Rollup.
type Dimension string

const (
	Key     Dimension = "key"
	Grp     Dimension = "group"
	Param   Dimension = "param"
	Kind    Dimension = "kind"
	Outcome Dimension = "outcome"
	Name    Dimension = "name"
	Rollup  Dimension = "rollup"
)

// All lists the selectable dimensions in menu order.
var All = []Dimension{Key, Grp, Param, Kind, Outcome, Name, Rollup}

// ParseDimension maps s to a Dimension. Unknown values map to Rollup with
// ok=false so callers can warn.
func ParseDimension(s string) (Dimension, bool) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All {
		if d == known {
			return d, true
		}
	}
	return Rollup, false
}

// ParseDimensions parses a comma-separated selector list and returns the
// parsed dimensions plus any values that were not recognized.
func ParseDimensions(s string) ([]Dimension, []string) {
	var dims []Dimension
	var unknown []string
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, ok := ParseDimension(part)
		if !ok {
			unknown = append(unknown, part)
		}
		dims = append(dims, d)
	}
	return dims, unknown
}

// Next returns the dimension after d in menu order, wrapping around.
func Next(d Dimension) Dimension {
	for i, known := range All {
		if known == d {
			return All[(i+1)%len(All)]
		}
	}
	return All[0]
}

// Field returns the value of dimension d on r.
func Field(r report.FlatRecord, d Dimension) string {
	switch d {
	case Key:
		return r.Key
	case Grp:
		return r.Group
	case Param:
		return r.Param
	case Kind:
		return string(r.Kind)
	case Outcome:
		return string(r.Outcome)
	case Name:
		return r.Name
	}
	return ""
}

// SplitParam splits a test group on its first "[" into the bare group and
// the bracketed parameter id.
func SplitParam(group string) (string, string) {
	ind := strings.Index(group, "[")
	if ind == -1 {
		return group, NoParameters
	}
	end := len(group) - 1
	if end < ind+1 {
		end = ind + 1
	}
	return group[:ind], group[ind+1 : end]
}

// Effective trims dims to the levels that actually nest: at most
// MaxDimensions, stopping at the first Rollup or unknown selector.
func Effective(dims []Dimension) []Dimension {
	var out []Dimension
	for i, d := range dims {
		if i >= MaxDimensions {
			break
		}
		if _, ok := ParseDimension(string(d)); !ok || d == Rollup {
			break
		}
		out = append(out, d)
	}
	return out
}

// Group nests records by dims under a root named rootKey. Records are
// copied and param-split first; the input slice is not modified.
func Group(records []report.FlatRecord, dims []Dimension, rootKey string) treemap.Input {
	recs := make([]report.FlatRecord, len(records))
	for i, r := range records {
		r.Group, r.Param = SplitParam(r.Group)
		recs[i] = r
	}
	return treemap.Input{
		Key:    rootKey,
		Values: nest(recs, Effective(dims)),
	}
}

func nest(recs []report.FlatRecord, dims []Dimension) []treemap.Input {
	if len(recs) == 0 {
		return nil
	}
	if len(dims) == 0 {
		return []treemap.Input{rollup(recs)}
	}

	// Buckets keep first-appearance order.
	var order []string
	buckets := make(map[string][]report.FlatRecord)
	for _, r := range recs {
		k := Field(r, dims[0])
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], r)
	}

	out := make([]treemap.Input, 0, len(order))
	for _, k := range order {
		out = append(out, treemap.Input{
			Key:    k,
			Values: nest(buckets[k], dims[1:]),
		})
	}
	return out
}

// rollup reduces a bucket to one synthetic leaf. The +1 on value keeps
// zero-duration buckets visible and clickable in the layout; duration stays
// exact.
func rollup(recs []report.FlatRecord) treemap.Input {
	var sum float64
	outcomes := make([]report.Outcome, len(recs))
	for i, r := range recs {
		sum += r.Duration
		outcomes[i] = r.Outcome
	}
	value := sum + 1
	return treemap.Input{
		Key:      "",
		Value:    &value,
		Duration: sum,
		Outcome:  RollupOutcome(outcomes),
	}
}

// RollupOutcome folds a bucket's outcomes starting from the first one. A
// skipped record resets the running value to passed; equal values keep it;
// any mismatch is mixed. This differs from treemap.MergeOutcomes, which does
// not special-case skipped.
func RollupOutcome(outcomes []report.Outcome) report.Outcome {
	if len(outcomes) == 0 {
		return report.Passed
	}
	acc := outcomes[0]
	for _, o := range outcomes {
		switch {
		case o == report.Skipped:
			acc = report.Passed
		case acc != o:
			acc = report.Mixed
		}
	}
	return acc
}
