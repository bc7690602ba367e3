package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
)

type layoutJSON struct {
	Breadcrumb string   `json:"breadcrumb"`
	Focus      string   `json:"focus"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Root       nodeJSON `json:"root"`
}

type nodeJSON struct {
	Key      string         `json:"key"`
	Path     string         `json:"path"`
	Duration float64        `json:"duration"`
	Value    float64        `json:"value"`
	Prct     float64        `json:"prct"`
	Outcome  report.Outcome `json:"outcome"`
	Leaf     bool           `json:"leaf,omitempty"`
	Depth    int            `json:"depth"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	DX       float64        `json:"dx"`
	DY       float64        `json:"dy"`
	Children []nodeJSON     `json:"children,omitempty"`
}

// JSON writes the laid-out tree below the focus with absolute geometry.
func JSON(w io.Writer, v View) error {
	if v.Tree.Node(v.Focus) == nil {
		return fmt.Errorf("focus %d not in tree", v.Focus)
	}
	out := layoutJSON{
		Breadcrumb: v.Breadcrumb,
		Focus:      strings.Join(v.Tree.Path(v.Focus), "/"),
		Width:      v.Width,
		Height:     v.Height,
		Root:       buildNodeJSON(v.Tree, v.Focus),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	return nil
}

func buildNodeJSON(t *treemap.Tree, id int) nodeJSON {
	n := &t.Nodes[id]
	out := nodeJSON{
		Key:      n.Key,
		Path:     strings.Join(t.Path(id), "/"),
		Duration: n.Duration,
		Value:    n.Value,
		Prct:     n.Prct,
		Outcome:  n.Outcome,
		Leaf:     n.Leaf,
		Depth:    n.Depth,
		X:        n.X,
		Y:        n.Y,
		DX:       n.DX,
		DY:       n.DY,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, buildNodeJSON(t, c))
	}
	return out
}
