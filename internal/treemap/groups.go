package treemap

// Cell is one drawable rectangle of a render group.
type Cell struct {
	ID int
	Rect
}

// Group is what the renderer draws for one child of the focus node: its own
// parent rectangle plus the rectangles of its children. A leaf child draws
// only itself and cannot be zoomed into.
type Group struct {
	ID        int
	Parent    Rect
	Cells     []Cell
	Clickable bool
}

// Groups returns the render set for focus, one Group per child in child
// order.
func Groups(t *Tree, focus int) []Group {
	n := t.Node(focus)
	if n == nil {
		return nil
	}
	groups := make([]Group, 0, len(n.Children))
	for _, c := range n.Children {
		child := t.Nodes[c]
		g := Group{ID: c, Parent: child.Rect}
		if len(child.Children) > 0 {
			g.Clickable = true
			g.Cells = make([]Cell, 0, len(child.Children))
			for _, gc := range child.Children {
				g.Cells = append(g.Cells, Cell{ID: gc, Rect: t.Nodes[gc].Rect})
			}
		} else {
			g.Cells = []Cell{{ID: c, Rect: child.Rect}}
		}
		groups = append(groups, g)
	}
	return groups
}
