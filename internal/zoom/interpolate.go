package zoom

import "github.com/lu-zhengda/pytestmap/internal/treemap"

// Scale is a linear map from a domain interval onto a range interval.
type Scale struct {
	Domain [2]float64
	Range  [2]float64
}

// Identity returns the scale mapping [0, size] onto itself.
func Identity(size float64) Scale {
	return Scale{Domain: [2]float64{0, size}, Range: [2]float64{0, size}}
}

// Apply maps v through the scale. A zero-width domain maps everything to
// the start of the range.
func (s Scale) Apply(v float64) float64 {
	d := s.Domain[1] - s.Domain[0]
	if d == 0 {
		return s.Range[0]
	}
	return s.Range[0] + (v-s.Domain[0])/d*(s.Range[1]-s.Range[0])
}

// Project maps an absolute layout rectangle into screen space.
func Project(r treemap.Rect, x, y Scale) treemap.Rect {
	x0, x1 := x.Apply(r.X), x.Apply(r.X+r.DX)
	y0, y1 := y.Apply(r.Y), y.Apply(r.Y+r.DY)
	return treemap.Rect{X: x0, Y: y0, DX: x1 - x0, DY: y1 - y0}
}

// Interpolate blends two rectangle lists element-wise at t in [0, 1]. The
// result has the length of the shorter list.
func Interpolate(from, to []treemap.Rect, t float64) []treemap.Rect {
	n := min(len(from), len(to))
	out := make([]treemap.Rect, n)
	for i := range n {
		a, b := from[i], to[i]
		out[i] = treemap.Rect{
			X:  lerp(a.X, b.X, t),
			Y:  lerp(a.Y, b.Y, t),
			DX: lerp(a.DX, b.DX, t),
			DY: lerp(a.DY, b.DY, t),
		}
	}
	return out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// EaseCubicInOut is the symmetric cubic easing used by d3 transitions.
func EaseCubicInOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
