package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotObject is returned when a report is valid JSON but not an object.
var ErrNotObject = errors.New("report is not a JSON object")

const msPerSecond = 1000

type phaseJSON struct {
	Duration *float64 `json:"duration"`
	Outcome  Outcome  `json:"outcome"`
}

type testJSON struct {
	NodeID   *string    `json:"nodeid"`
	Call     *phaseJSON `json:"call"`
	Setup    *phaseJSON `json:"setup"`
	Teardown *phaseJSON `json:"teardown"`
}

func (t testJSON) phase(k Kind) *phaseJSON {
	switch k {
	case Call:
		return t.Call
	case Setup:
		return t.Setup
	default:
		return t.Teardown
	}
}

// Decode parses a report in the given format. FormatAuto picks the
// pytest-json-report shape when a top-level "tests" key is present and the
// compact shape otherwise.
func Decode(data []byte, name string, format Format, logger *zap.Logger) ([]FlatRecord, Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, Stats{}, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return nil, Stats{}, fmt.Errorf("failed to parse %s: %w", name, ErrNotObject)
	}
	if top == nil {
		return nil, Stats{}, fmt.Errorf("failed to parse %s: %w", name, ErrNotObject)
	}

	if format == FormatAuto {
		format = FormatCompact
		if _, ok := top["tests"]; ok {
			format = FormatReport
		}
	}

	switch format {
	case FormatReport:
		recs, stats := parseTests(top["tests"], name, logger)
		return recs, stats, nil
	case FormatCompact:
		recs, stats := parseComp(top["comp"], name, logger)
		return recs, stats, nil
	}
	return nil, Stats{}, fmt.Errorf("unknown report format %q", format)
}

// ParseReport decodes the pytest-json-report shape:
// {"tests": [{"nodeid", "call", "setup", "teardown"}]}.
func ParseReport(data []byte, name string, logger *zap.Logger) ([]FlatRecord, Stats, error) {
	return Decode(data, name, FormatReport, logger)
}

// ParseCompact decodes the compact shape:
// {"comp": [[nodeid, callSeconds, setupSeconds, teardownSeconds]]}.
func ParseCompact(data []byte, name string, logger *zap.Logger) ([]FlatRecord, Stats, error) {
	return Decode(data, name, FormatCompact, logger)
}

func parseTests(raw json.RawMessage, name string, logger *zap.Logger) ([]FlatRecord, Stats) {
	stats := Stats{Format: FormatReport}

	var tests []json.RawMessage
	if isNull(raw) {
		logger.Warn("report has no tests", zap.String("source", name))
		return nil, stats
	}
	if err := json.Unmarshal(raw, &tests); err != nil {
		logger.Warn("tests is not an array", zap.String("source", name), zap.Error(err))
		return nil, stats
	}

	var records []FlatRecord
	for i, entry := range tests {
		stats.Tests++

		var t testJSON
		if err := json.Unmarshal(entry, &t); err != nil {
			stats.Skipped++
			logger.Warn("skipping malformed test entry",
				zap.String("source", name), zap.Int("index", i), zap.String("reason", err.Error()))
			continue
		}
		if t.NodeID == nil {
			stats.Skipped++
			logger.Warn("skipping malformed test entry",
				zap.String("source", name), zap.Int("index", i), zap.String("reason", "missing nodeid"))
			continue
		}

		key, group := SplitNodeID(*t.NodeID)
		for _, k := range Phases {
			p := t.phase(k)
			if p == nil || p.Duration == nil {
				stats.Skipped++
				logger.Warn("skipping phase without duration",
					zap.String("source", name), zap.Int("index", i),
					zap.String("nodeid", *t.NodeID), zap.String("phase", string(k)),
					zap.String("reason", "missing duration"))
				continue
			}
			records = append(records, FlatRecord{
				Key:      key,
				Group:    group,
				Kind:     k,
				Outcome:  p.Outcome,
				Duration: *p.Duration * msPerSecond,
				Name:     name,
			})
		}
	}

	stats.Records = len(records)
	return records, stats
}

func parseComp(raw json.RawMessage, name string, logger *zap.Logger) ([]FlatRecord, Stats) {
	stats := Stats{Format: FormatCompact}

	if isNull(raw) {
		logger.Info("compact report has no comp field", zap.String("source", name))
		return nil, stats
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn("comp is not an array", zap.String("source", name), zap.Error(err))
		return nil, stats
	}

	var records []FlatRecord
	for i, entry := range entries {
		stats.Tests++

		nodeid, secs, err := decodeCompEntry(entry)
		if err != nil {
			stats.Skipped++
			logger.Warn("skipping malformed comp entry",
				zap.String("source", name), zap.Int("index", i), zap.String("reason", err.Error()))
			continue
		}

		key, group := SplitNodeID(nodeid)
		for j, k := range Phases {
			records = append(records, FlatRecord{
				Key:      key,
				Group:    group,
				Kind:     k,
				Outcome:  Passed,
				Duration: secs[j] * msPerSecond,
				Name:     name,
			})
		}
	}

	logger.Debug("decoded compact report",
		zap.String("source", name), zap.Int("entries", len(entries)))
	stats.Records = len(records)
	return records, stats
}

func decodeCompEntry(raw json.RawMessage) (string, [3]float64, error) {
	var secs [3]float64

	var tuple []json.RawMessage
	if err := json.Unmarshal(raw, &tuple); err != nil {
		return "", secs, fmt.Errorf("entry is not an array: %w", err)
	}
	if len(tuple) != 4 {
		return "", secs, fmt.Errorf("expected 4 fields, got %d", len(tuple))
	}

	var nodeid string
	if err := json.Unmarshal(tuple[0], &nodeid); err != nil {
		return "", secs, fmt.Errorf("nodeid: %w", err)
	}
	for i := range secs {
		if isNull(tuple[i+1]) {
			return "", secs, fmt.Errorf("%s duration is null", Phases[i])
		}
		if err := json.Unmarshal(tuple[i+1], &secs[i]); err != nil {
			return "", secs, fmt.Errorf("%s duration: %w", Phases[i], err)
		}
	}
	return nodeid, secs, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
