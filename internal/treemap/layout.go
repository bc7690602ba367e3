package treemap

import (
	"math"
	"sort"
)

// phi is the golden ratio, the squarify aspect target for a square frame.
var phi = 0.5 * (1 + math.Sqrt(5))

// Ratio returns the squarify aspect target for a width x height frame.
// Degenerate frames fall back to the golden ratio.
func Ratio(width, height float64) float64 {
	if width <= 0 || height <= 0 {
		return phi
	}
	return height / width * phi
}

// Layout assigns absolute rectangles to all descendants of id. Each sibling
// group is laid out in a 1x1 unit square and rescaled into its parent's box,
// so sibling proportions do not depend on the parent's shape. The caller must
// set the Rect of id itself.
func Layout(t *Tree, id int, ratio float64) {
	n := t.Node(id)
	if n == nil || len(n.Children) == 0 {
		return
	}

	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = phi
	}
	unit := squarifyUnit(t, n.Children, ratio)

	box := n.Rect
	depth := n.Depth
	for i, c := range n.Children {
		u := unit[i]
		child := &t.Nodes[c]
		child.X = box.X + u.X*box.DX
		child.Y = box.Y + u.Y*box.DY
		child.DX = u.DX * box.DX
		child.DY = u.DY * box.DY
		child.Depth = depth + 1
		Layout(t, c, ratio)
	}
}

type unitItem struct {
	idx  int // position in the sibling list
	area float64
}

// squarifyUnit lays out the given siblings in the unit square and returns
// their rectangles in sibling order.
func squarifyUnit(t *Tree, children []int, ratio float64) []Rect {
	out := make([]Rect, len(children))

	var total float64
	for _, c := range children {
		if v := t.Nodes[c].Value; v > 0 {
			total += v
		}
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return out
	}

	items := make([]unitItem, len(children))
	for i, c := range children {
		a := t.Nodes[c].Value / total
		if math.IsNaN(a) || a <= 0 {
			a = 0
		}
		items[i] = unitItem{idx: i, area: a}
	}
	// Ascending by area; the loop below consumes from the end so the largest
	// item goes first. Stable keeps insertion order among ties.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].area < items[j].area
	})

	squarify(items, Rect{DX: 1, DY: 1}, ratio, out)
	return out
}

// squarify implements the squarified treemap algorithm (Bruls et al. 2000),
// with rows scored against the given aspect ratio and the final row flushed
// to the remaining space.
func squarify(remaining []unitItem, rect Rect, ratio float64, out []Rect) {
	var row []unitItem
	var rowArea float64
	best := math.Inf(1)
	u := math.Min(rect.DX, rect.DY)

	for len(remaining) > 0 {
		item := remaining[len(remaining)-1]
		row = append(row, item)
		rowArea += item.area

		score := worst(row, rowArea, u, ratio)
		if score <= best {
			remaining = remaining[:len(remaining)-1]
			best = score
			continue
		}

		// Adding the item made the row worse: commit the row without it.
		row = row[:len(row)-1]
		rowArea -= item.area
		position(row, rowArea, u, &rect, false, out)
		u = math.Min(rect.DX, rect.DY)
		row = row[:0]
		rowArea = 0
		best = math.Inf(1)
	}

	if len(row) > 0 {
		position(row, rowArea, u, &rect, true, out)
	}
}

// worst returns the worst aspect ratio in row when laid along a side of
// length u.
func worst(row []unitItem, rowArea, u, ratio float64) float64 {
	rmax := 0.0
	rmin := math.Inf(1)
	for _, it := range row {
		if it.area == 0 {
			continue
		}
		rmin = math.Min(rmin, it.area)
		rmax = math.Max(rmax, it.area)
	}
	s := rowArea * rowArea
	if s == 0 || math.IsInf(rmin, 1) {
		return math.Inf(1)
	}
	u *= u
	return math.Max(u*rmax*ratio/s, s/(u*rmin*ratio))
}

// position places a committed row along the short side u of rect and
// shrinks rect by the consumed strip. flush stretches the row over the rest
// of rect.
func position(row []unitItem, rowArea, u float64, rect *Rect, flush bool, out []Rect) {
	if len(row) == 0 {
		return
	}
	x, y := rect.X, rect.Y
	v := 0.0
	if u != 0 {
		v = rowArea / u
	}

	if u == rect.DX {
		// Horizontal strip across the top.
		if flush || v > rect.DY {
			v = rect.DY
		}
		var last *Rect
		for _, it := range row {
			r := &out[it.idx]
			r.X, r.Y, r.DY = x, y, v
			dx := 0.0
			if v != 0 {
				dx = it.area / v
			}
			r.DX = math.Min(rect.X+rect.DX-x, dx)
			x += r.DX
			last = r
		}
		last.DX += rect.X + rect.DX - x
		rect.Y += v
		rect.DY -= v
		return
	}

	// Vertical strip down the left side.
	if flush || v > rect.DX {
		v = rect.DX
	}
	var last *Rect
	for _, it := range row {
		r := &out[it.idx]
		r.X, r.Y, r.DX = x, y, v
		dy := 0.0
		if v != 0 {
			dy = it.area / v
		}
		r.DY = math.Min(rect.Y+rect.DY-y, dy)
		y += r.DY
		last = r
	}
	last.DY += rect.Y + rect.DY - y
	rect.X += v
	rect.DX -= v
}

// LayoutRoot places the root in a width x height box at the origin and lays
// out the whole tree.
func LayoutRoot(t *Tree, width, height float64) {
	root := t.Node(Root)
	if root == nil {
		return
	}
	if width < 0 || math.IsNaN(width) {
		width = 0
	}
	if height < 0 || math.IsNaN(height) {
		height = 0
	}
	root.Rect = Rect{DX: width, DY: height}
	root.Depth = 0
	Layout(t, Root, Ratio(width, height))
}
