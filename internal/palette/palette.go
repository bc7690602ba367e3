// Package palette maps node aggregates to fill colors.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lu-zhengda/pytestmap/internal/report"
)

// Duration ramp endpoints.
const (
	FastColor = "#10b5e3"
	SlowColor = "#43bf37"
)

// Outcome colors.
const (
	PassedColor = "#00cc00"
	FailedColor = "#cc0000"
	OtherColor  = "#ffa500"
)

var fast, slow colorful.Color

func init() {
	fast, _ = colorful.Hex(FastColor)
	slow, _ = colorful.Hex(SlowColor)
}

// DurationScale is a linear color ramp over [0, Max], clamped at both ends.
type DurationScale struct {
	Max float64
}

// NewDurationScale returns the ramp for a focus whose children sum to
// total. The upper end sits at a tenth of the total, so most cells land on
// the slow color.
func NewDurationScale(total float64) DurationScale {
	return DurationScale{Max: total / 10}
}

// Color returns the hex color for a duration.
func (s DurationScale) Color(d float64) string {
	t := 0.0
	if s.Max > 0 && !math.IsNaN(d) {
		t = math.Max(0, math.Min(1, d/s.Max))
	}
	return fast.BlendRgb(slow, t).Clamped().Hex()
}

// OutcomeColor returns the fill color for an outcome.
func OutcomeColor(o report.Outcome) string {
	switch o {
	case report.Passed:
		return PassedColor
	case report.Failed:
		return FailedColor
	default:
		return OtherColor
	}
}

// Mode selects how cells are colored.
type Mode string

const (
	ByDuration Mode = "duration"
	ByOutcome  Mode = "outcome"
)

// ParseMode maps a config value to a Mode, defaulting to ByDuration.
func ParseMode(s string) Mode {
	if Mode(s) == ByOutcome {
		return ByOutcome
	}
	return ByDuration
}

// Toggle flips between the two modes.
func (m Mode) Toggle() Mode {
	if m == ByOutcome {
		return ByDuration
	}
	return ByOutcome
}

// Fill picks the color for a node under mode m.
func Fill(m Mode, s DurationScale, duration float64, o report.Outcome) string {
	if m == ByOutcome {
		return OutcomeColor(o)
	}
	return s.Color(duration)
}

// TextColor returns black or white, whichever reads better on hex.
func TextColor(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return "#ffffff"
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}
