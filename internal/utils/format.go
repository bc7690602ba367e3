package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of significant digits used when no format
// spec is configured.
const DefaultPrecision = 3

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond

	minuteThreshold = 2 * msPerMinute
	secondThreshold = 1500
)

// FormatDuration renders a millisecond duration with p significant digits.
// Durations above two minutes are shown in minutes, above 1.5s in seconds,
// everything else in milliseconds.
func FormatDuration(ms float64, p int) string {
	switch {
	case ms > minuteThreshold:
		return FormatSig(ms/msPerMinute, p) + "min"
	case ms > secondThreshold:
		return FormatSig(ms/msPerSecond, p) + "s"
	default:
		return FormatSig(ms, p) + "ms"
	}
}

// FormatSig rounds x to p significant digits and prints it in fixed
// notation, keeping trailing zeros: 2 -> "2.00", 1234 -> "1230".
func FormatSig(x float64, p int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	if p < 1 {
		p = 1
	}
	if x < 0 {
		return "-" + FormatSig(-x, p)
	}

	x = roundTo(x, sigPrecision(x, p))
	decimals := sigPrecision(x, p)
	if decimals < 0 {
		decimals = 0
	}
	if decimals > 20 {
		decimals = 20
	}
	return strconv.FormatFloat(x, 'f', decimals, 64)
}

// sigPrecision returns the number of decimals needed to show p significant
// digits of x. Negative results mean rounding left of the decimal point.
func sigPrecision(x float64, p int) int {
	if x == 0 {
		return p - 1
	}
	return p - intDigits(x)
}

// intDigits returns the position of the leading digit of x > 0 relative to
// the decimal point (100 -> 3, 2 -> 1, 0.05 -> -1). Log10 alone is off by
// one near exact powers of ten.
func intDigits(x float64) int {
	e := int(math.Floor(math.Log10(x))) + 1
	if math.Pow(10, float64(e-1)) > x {
		e--
	}
	if math.Pow(10, float64(e)) <= x {
		e++
	}
	return e
}

// roundTo rounds half up at n decimals (n may be negative).
func roundTo(x float64, n int) float64 {
	if n == 0 {
		return math.Floor(x + 0.5)
	}
	k := math.Pow(10, float64(n))
	return math.Floor(x*k+0.5) / k
}

// ParseFormat parses a numeric format spec of the form ".Nr" (N significant
// digits, rounded) and returns N. An empty spec yields DefaultPrecision.
func ParseFormat(spec string) (int, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return DefaultPrecision, nil
	}
	if !strings.HasPrefix(s, ".") || !strings.HasSuffix(s, "r") {
		return 0, fmt.Errorf("unsupported format %q (expected .Nr, e.g. .3r)", spec)
	}
	n, err := strconv.Atoi(s[1 : len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid precision in format %q: %w", spec, err)
	}
	if n < 1 || n > 21 {
		return 0, fmt.Errorf("precision %d out of range in format %q (1-21)", n, spec)
	}
	return n, nil
}
