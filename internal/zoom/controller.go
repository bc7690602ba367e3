// Package zoom drives drill-down navigation over a laid-out treemap. It
// keeps the viewport scales and the animated transition between two focus
// nodes; rendering is left to callers through Frame.
package zoom

import (
	"time"

	"github.com/lu-zhengda/pytestmap/internal/treemap"
)

// State is the controller's transition state.
type State int

const (
	Idle State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "idle"
}

// TransitionDuration is the length of one zoom animation.
const TransitionDuration = 250 * time.Millisecond

// Cell is one screen-space rectangle of the current frame.
type Cell struct {
	ID        int
	Group     int // id of the focus child this cell belongs to
	Rect      treemap.Rect
	Parent    bool // the group's own outline rather than a child cell
	Clickable bool
	Opacity   float64 // label opacity
	Outgoing  bool
}

// item is one rectangle of a render set together with its endpoints.
type item struct {
	id, group int
	parent    bool
	clickable bool
	abs       treemap.Rect
}

type transition struct {
	target   int
	elapsed  time.Duration
	toX, toY Scale
	outgoing []item
	incoming []item
	// screen rects, aligned with the item slices
	outFrom, outTo []treemap.Rect
	inFrom, inTo   []treemap.Rect
}

// Controller tracks the zoom focus over a tree. It is not safe for
// concurrent use; callers drive it from one loop.
type Controller struct {
	tree  *treemap.Tree
	focus int
	state State
	x, y  Scale
	tr    *transition
}

// New returns an idle controller focused on the root of t, with identity
// scales over a width x height viewport.
func New(t *treemap.Tree, width, height float64) *Controller {
	return &Controller{
		tree:  t,
		focus: treemap.Root,
		x:     Identity(width),
		y:     Identity(height),
	}
}

// Focus returns the current focus node. During a transition it is still
// the node being left.
func (c *Controller) Focus() int { return c.focus }

// State returns Idle or Transitioning.
func (c *Controller) State() State { return c.state }

// Scales returns the current x and y scales.
func (c *Controller) Scales() (Scale, Scale) { return c.x, c.y }

// Target returns the node being zoomed to, or the focus when idle.
func (c *Controller) Target() int {
	if c.tr != nil {
		return c.tr.target
	}
	return c.focus
}

// Progress returns the eased transition progress in [0, 1]; idle is 1.
func (c *Controller) Progress() float64 {
	if c.tr == nil {
		return 1
	}
	return EaseCubicInOut(float64(c.tr.elapsed) / float64(TransitionDuration))
}

// ZoomIn starts a transition to id. It reports whether a transition began.
func (c *Controller) ZoomIn(id int) bool {
	if c.state == Transitioning || id == c.focus || !c.tree.HasChildren(id) {
		return false
	}
	c.begin(id)
	return true
}

// ZoomOut starts a transition to the focus parent. At the root it does
// nothing.
func (c *Controller) ZoomOut() bool {
	if c.state == Transitioning {
		return false
	}
	n := c.tree.Node(c.focus)
	if n == nil || n.Parent == treemap.NoParent {
		return false
	}
	c.begin(n.Parent)
	return true
}

// Jump moves the focus to id without animating. Leaves and invalid ids are
// rejected.
func (c *Controller) Jump(id int) bool {
	if !c.tree.HasChildren(id) {
		return false
	}
	c.tr = nil
	c.state = Idle
	c.focus = id
	c.x, c.y = c.scalesFor(id)
	return true
}

func (c *Controller) scalesFor(id int) (Scale, Scale) {
	n := c.tree.Node(id)
	x := Scale{Domain: [2]float64{n.X, n.X + n.DX}, Range: c.x.Range}
	y := Scale{Domain: [2]float64{n.Y, n.Y + n.DY}, Range: c.y.Range}
	return x, y
}

func (c *Controller) begin(target int) {
	toX, toY := c.scalesFor(target)
	tr := &transition{
		target:   target,
		toX:      toX,
		toY:      toY,
		outgoing: c.items(c.focus),
		incoming: c.items(target),
	}
	tr.outFrom = c.project(tr.outgoing, c.x, c.y)
	tr.outTo = c.project(tr.outgoing, toX, toY)
	tr.inFrom = c.project(tr.incoming, c.x, c.y)
	tr.inTo = c.project(tr.incoming, toX, toY)
	c.tr = tr
	c.state = Transitioning
}

// Advance moves a running transition forward by dt and reports whether it
// is still running.
func (c *Controller) Advance(dt time.Duration) bool {
	if c.tr == nil {
		return false
	}
	c.tr.elapsed += dt
	if c.tr.elapsed < TransitionDuration {
		return true
	}
	c.focus = c.tr.target
	c.x, c.y = c.tr.toX, c.tr.toY
	c.tr = nil
	c.state = Idle
	return false
}

// Frame returns the cells to draw. While idle these are the focus groups at
// full opacity. During a transition both sets are included, outgoing first,
// at interpolated positions and cross-faded label opacity.
func (c *Controller) Frame() []Cell {
	if c.tr == nil {
		set := c.items(c.focus)
		return cells(set, c.project(set, c.x, c.y), 1, false)
	}
	p := c.Progress()
	out := cells(c.tr.outgoing, Interpolate(c.tr.outFrom, c.tr.outTo, p), 1-p, true)
	in := cells(c.tr.incoming, Interpolate(c.tr.inFrom, c.tr.inTo, p), p, false)
	return append(out, in...)
}

func (c *Controller) items(focus int) []item {
	var set []item
	for _, g := range treemap.Groups(c.tree, focus) {
		if g.Clickable {
			for _, cell := range g.Cells {
				set = append(set, item{id: cell.ID, group: g.ID, abs: cell.Rect, clickable: true})
			}
		} else {
			set = append(set, item{id: g.ID, group: g.ID, abs: g.Parent})
		}
		set = append(set, item{id: g.ID, group: g.ID, abs: g.Parent, parent: true, clickable: g.Clickable})
	}
	return set
}

func (c *Controller) project(set []item, x, y Scale) []treemap.Rect {
	out := make([]treemap.Rect, len(set))
	for i, it := range set {
		out[i] = Project(it.abs, x, y)
	}
	return out
}

func cells(set []item, rects []treemap.Rect, opacity float64, outgoing bool) []Cell {
	out := make([]Cell, len(set))
	for i, it := range set {
		out[i] = Cell{
			ID:        it.id,
			Group:     it.group,
			Rect:      rects[i],
			Parent:    it.parent,
			Clickable: it.clickable,
			Opacity:   opacity,
			Outgoing:  outgoing,
		}
	}
	return out
}
