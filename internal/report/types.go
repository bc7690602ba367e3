// Package report normalizes pytest JSON reports into flat, timed records.
package report

import "strings"

// Kind is the lifecycle phase a record was timed in.
type Kind string

const (
	Call     Kind = "call"
	Setup    Kind = "setup"
	Teardown Kind = "teardown"
)

// Phases lists the lifecycle phases in the order records are emitted.
var Phases = []Kind{Call, Setup, Teardown}

// Outcome is a pytest phase outcome. Outcomes other than the constants
// below are carried through verbatim.
type Outcome string

const (
	Passed  Outcome = "passed"
	Failed  Outcome = "failed"
	Skipped Outcome = "skipped"
	Mixed   Outcome = "mixed"
)

// FlatRecord is one timed phase of one test.
type FlatRecord struct {
	Key      string  `json:"key"`
	Group    string  `json:"group"`
	Param    string  `json:"param,omitempty"`
	Kind     Kind    `json:"kind"`
	Outcome  Outcome `json:"outcome"`
	Duration float64 `json:"duration"`
	Name     string  `json:"name"`
}

// Format selects the report decoder.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatReport  Format = "report"
	FormatCompact Format = "compact"
)

// ParseFormat maps a user-supplied name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatAuto:
		return FormatAuto, true
	case FormatReport, "pytest-json-report", "a":
		return FormatReport, true
	case FormatCompact, "comp", "b":
		return FormatCompact, true
	}
	return FormatAuto, false
}

// Stats summarizes one decoded report.
type Stats struct {
	Format  Format `json:"format"`
	Tests   int    `json:"tests"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
}

// SplitNodeID splits a pytest node id on "::". The first segment is the
// file, the remainder (rejoined) is the test group.
func SplitNodeID(nodeid string) (key, group string) {
	parts := strings.Split(nodeid, "::")
	return parts[0], strings.Join(parts[1:], "::")
}
