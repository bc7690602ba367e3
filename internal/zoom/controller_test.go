package zoom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
)

func leaf(d float64) treemap.Input {
	v := d + 1
	return treemap.Input{Value: &v, Duration: d, Outcome: report.Passed}
}

func testTree(t *testing.T) *treemap.Tree {
	t.Helper()
	in := treemap.Input{Key: "TOP", Values: []treemap.Input{
		{Key: "a.py", Values: []treemap.Input{
			{Key: "test_x", Values: []treemap.Input{leaf(30)}},
			{Key: "test_y", Values: []treemap.Input{leaf(10)}},
		}},
		{Key: "b.py", Values: []treemap.Input{
			{Key: "test_z", Values: []treemap.Input{leaf(20)}},
		}},
	}}
	tree := treemap.Build(in)
	treemap.LayoutRoot(tree, 100, 50)
	return tree
}

func mustFind(t *testing.T, tree *treemap.Tree, path string) int {
	t.Helper()
	id, ok := tree.Find(path)
	require.True(t, ok, path)
	return id
}

func TestNew_IdleAtRoot(t *testing.T) {
	c := New(testTree(t), 100, 50)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, treemap.Root, c.Focus())
	x, y := c.Scales()
	assert.Equal(t, Identity(100), x)
	assert.Equal(t, Identity(50), y)
	assert.Equal(t, 1.0, c.Progress())
}

func TestZoomIn_Transition(t *testing.T) {
	tree := testTree(t)
	c := New(tree, 100, 50)
	a := mustFind(t, tree, "a.py")

	require.True(t, c.ZoomIn(a))
	assert.Equal(t, Transitioning, c.State())
	assert.Equal(t, treemap.Root, c.Focus())
	assert.Equal(t, a, c.Target())

	// Ignored while a transition runs.
	b := mustFind(t, tree, "b.py")
	assert.False(t, c.ZoomIn(b))
	assert.False(t, c.ZoomOut())

	assert.True(t, c.Advance(100*time.Millisecond))
	assert.Equal(t, Transitioning, c.State())
	assert.False(t, c.Advance(150*time.Millisecond))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, a, c.Focus())

	n := tree.Nodes[a]
	x, y := c.Scales()
	assert.Equal(t, [2]float64{n.X, n.X + n.DX}, x.Domain)
	assert.Equal(t, [2]float64{n.Y, n.Y + n.DY}, y.Domain)
	assert.Equal(t, [2]float64{0, 100}, x.Range)
}

func TestZoomIn_Ignored(t *testing.T) {
	tree := testTree(t)
	c := New(tree, 100, 50)

	assert.False(t, c.ZoomIn(treemap.Root), "current focus")
	assert.False(t, c.ZoomIn(-1))
	assert.False(t, c.ZoomIn(len(tree.Nodes)))

	x := mustFind(t, tree, "a.py/test_x")
	leafID := tree.Nodes[x].Children[0]
	assert.False(t, c.ZoomIn(leafID), "leaf")
	assert.Equal(t, Idle, c.State())
}

func TestZoomOut(t *testing.T) {
	tree := testTree(t)
	c := New(tree, 100, 50)
	assert.False(t, c.ZoomOut(), "root is a no-op")

	a := mustFind(t, tree, "a.py")
	require.True(t, c.Jump(a))
	require.True(t, c.ZoomOut())
	c.Advance(TransitionDuration)
	assert.Equal(t, treemap.Root, c.Focus())
	x, _ := c.Scales()
	assert.Equal(t, Identity(100), x)
}

func TestFrame_IdleCoversViewport(t *testing.T) {
	tree := testTree(t)
	c := New(tree, 100, 50)

	var area float64
	for _, cell := range c.Frame() {
		assert.Equal(t, 1.0, cell.Opacity)
		assert.False(t, cell.Outgoing)
		if cell.Parent {
			area += cell.Rect.Area()
		}
	}
	assert.InDelta(t, 100*50, area, 1e-6)
}

func TestFrame_ZoomedGroupFillsViewport(t *testing.T) {
	tree := testTree(t)
	c := New(tree, 100, 50)
	a := mustFind(t, tree, "a.py")
	require.True(t, c.ZoomIn(a))
	c.Advance(TransitionDuration)

	var area float64
	for _, cell := range c.Frame() {
		if cell.Parent {
			area += cell.Rect.Area()
		}
	}
	assert.InDelta(t, 100*50, area, 1e-6)
}

func TestFrame_Transition(t *testing.T) {
	tree := testTree(t)
	c := New(tree, 100, 50)
	a := mustFind(t, tree, "a.py")
	require.True(t, c.ZoomIn(a))

	start := c.Frame()
	var outgoing, incoming int
	for _, cell := range start {
		if cell.Outgoing {
			outgoing++
			assert.Equal(t, 1.0, cell.Opacity)
		} else {
			incoming++
			assert.Equal(t, 0.0, cell.Opacity)
		}
	}
	assert.Positive(t, outgoing)
	assert.Positive(t, incoming)

	// The incoming set starts where it sat in the old view.
	for _, cell := range start {
		if !cell.Outgoing && cell.Parent {
			want := tree.Nodes[cell.ID].Rect
			assert.InDelta(t, want.X, cell.Rect.X, 1e-9)
			assert.InDelta(t, want.Y, cell.Rect.Y, 1e-9)
			assert.InDelta(t, want.DX, cell.Rect.DX, 1e-9)
			assert.InDelta(t, want.DY, cell.Rect.DY, 1e-9)
		}
	}

	c.Advance(TransitionDuration / 2)
	for _, cell := range c.Frame() {
		assert.InDelta(t, 0.5, cell.Opacity, 1e-9)
	}

	c.Advance(TransitionDuration)
	for _, cell := range c.Frame() {
		assert.False(t, cell.Outgoing)
		assert.Equal(t, 1.0, cell.Opacity)
	}
}

func TestJump(t *testing.T) {
	tree := testTree(t)
	c := New(tree, 100, 50)
	x := mustFind(t, tree, "a.py/test_x")

	require.True(t, c.Jump(x))
	assert.Equal(t, x, c.Focus())
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Jump(tree.Nodes[x].Children[0]))
}

func TestAdvance_Idle(t *testing.T) {
	c := New(testTree(t), 100, 50)
	assert.False(t, c.Advance(time.Second))
	assert.Equal(t, Idle, c.State())
}
