// Package treemap aggregates grouped test durations into an index-addressed
// tree and lays it out as a nested squarified treemap.
package treemap

import (
	"strings"

	"github.com/lu-zhengda/pytestmap/internal/report"
)

// Input is the nested grouping shape: internal entries carry Values, leaves
// carry a Value. It matches the {key, values} JSON accepted from messages.
type Input struct {
	Key      string         `json:"key"`
	Values   []Input        `json:"values,omitempty"`
	Value    *float64       `json:"value,omitempty"`
	Duration float64        `json:"duration,omitempty"`
	Outcome  report.Outcome `json:"outcome,omitempty"`
}

// IsLeaf reports whether the entry is an aggregate leaf.
func (in Input) IsLeaf() bool {
	return in.Value != nil && *in.Value >= 0
}

// Rect is an axis-aligned box in absolute coordinates.
type Rect struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Area returns DX*DY.
func (r Rect) Area() float64 { return r.DX * r.DY }

// NoParent marks the root node.
const NoParent = -1

// Node is one aggregated tree entry. Parent and Children are indices into
// Tree.Nodes.
type Node struct {
	Key      string         `json:"key"`
	Parent   int            `json:"parent"`
	Children []int          `json:"children,omitempty"`
	Leaf     bool           `json:"leaf"`
	Value    float64        `json:"value"`
	Duration float64        `json:"duration"`
	Outcome  report.Outcome `json:"outcome"`
	Prct     float64        `json:"prct"`
	Depth    int            `json:"depth"`
	Rect
}

// Tree is an arena of nodes; index 0 is the root.
type Tree struct {
	Nodes []Node
}

// Root is the index of the root node.
const Root = 0

// Node returns a pointer to node id, or nil when id is out of range.
func (t *Tree) Node(id int) *Node {
	if t == nil || id < 0 || id >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

// HasChildren reports whether id is an internal node with children.
func (t *Tree) HasChildren(id int) bool {
	n := t.Node(id)
	return n != nil && len(n.Children) > 0
}

// Path returns the keys from the root's first child down to id.
func (t *Tree) Path(id int) []string {
	var keys []string
	for n := t.Node(id); n != nil && n.Parent != NoParent; n = t.Node(n.Parent) {
		keys = append(keys, n.Key)
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// Find resolves a "/"-separated key path below the root. An empty path is
// the root itself.
func (t *Tree) Find(path string) (int, bool) {
	id := Root
	if t.Node(id) == nil {
		return 0, false
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return id, true
	}
	for _, key := range strings.Split(path, "/") {
		next := -1
		for _, c := range t.Nodes[id].Children {
			if t.Nodes[c].Key == key {
				next = c
				break
			}
		}
		if next < 0 {
			return 0, false
		}
		id = next
	}
	return id, true
}

// MergeOutcomes folds leaf outcomes left to right starting from passed:
// equal values keep the running outcome, anything else is mixed. Skipped is
// not normalized here, unlike group.RollupOutcome; the two folds differ on
// purpose and a test pins both.
func MergeOutcomes(outcomes []report.Outcome) report.Outcome {
	acc := report.Passed
	for _, o := range outcomes {
		if acc != o {
			acc = report.Mixed
		}
	}
	return acc
}

type leafAgg struct {
	value, duration float64
	outcome         report.Outcome
}

// Build copies in into a fresh arena and computes aggregates bottom-up.
// The result shares nothing with in.
func Build(in Input) *Tree {
	t := &Tree{}
	t.add(in, NoParent, 0)
	t.aggregate(Root)
	t.Nodes[Root].Prct = 1
	return t
}

func (t *Tree) add(in Input, parent, depth int) int {
	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{
		Key:    in.Key,
		Parent: parent,
		Depth:  depth,
	})
	if in.IsLeaf() {
		n := &t.Nodes[id]
		n.Leaf = true
		n.Value = *in.Value
		n.Duration = in.Duration
		n.Outcome = in.Outcome
		return id
	}
	children := make([]int, 0, len(in.Values))
	for _, v := range in.Values {
		children = append(children, t.add(v, id, depth+1))
	}
	t.Nodes[id].Children = children
	return id
}

// aggregate returns the leaf contributions under id, in order.
func (t *Tree) aggregate(id int) []leafAgg {
	n := &t.Nodes[id]
	if n.Leaf {
		return []leafAgg{{value: n.Value, duration: n.Duration, outcome: n.Outcome}}
	}

	var acc []leafAgg
	for _, c := range n.Children {
		acc = append(acc, t.aggregate(c)...)
	}

	var value, duration float64
	outcomes := make([]report.Outcome, 0, len(acc))
	for _, a := range acc {
		value += a.value
		duration += a.duration
		outcomes = append(outcomes, a.outcome)
	}

	n = &t.Nodes[id]
	n.Value = value
	n.Duration = duration
	n.Outcome = MergeOutcomes(outcomes)

	for _, c := range n.Children {
		child := &t.Nodes[c]
		if duration == 0 {
			child.Prct = 0
			continue
		}
		child.Prct = child.Duration / duration
	}
	return acc
}
