// Package export renders a laid-out session as text, an indented tree,
// JSON, SVG or a standalone HTML page.
package export

import (
	"github.com/lu-zhengda/pytestmap/internal/config"
	"github.com/lu-zhengda/pytestmap/internal/palette"
	"github.com/lu-zhengda/pytestmap/internal/session"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
	"github.com/lu-zhengda/pytestmap/internal/zoom"
)

// View is everything a renderer needs from a session, captured at one
// instant.
type View struct {
	Tree       *treemap.Tree
	Focus      int
	Cells      []zoom.Cell
	Width      float64 // chart size, margins excluded
	Height     float64
	Margin     config.Margin
	Title      string
	Breadcrumb string
	Mode       palette.Mode
	Precision  int
}

// FromSession captures the current frame of s.
func FromSession(s *session.Session) View {
	w, h := s.Viewport()
	o := s.Options()
	return View{
		Tree:       s.Tree(),
		Focus:      s.Controller().Target(),
		Cells:      s.Controller().Frame(),
		Width:      w,
		Height:     h,
		Margin:     o.Margin,
		Title:      o.Title,
		Breadcrumb: s.Breadcrumb(),
		Mode:       o.Color,
		Precision:  s.Precision(),
	}
}

// Scale is the duration color ramp for the focus children.
func (v View) Scale() palette.DurationScale {
	var total float64
	if n := v.Tree.Node(v.Focus); n != nil {
		for _, c := range n.Children {
			total += v.Tree.Nodes[c].Duration
		}
	}
	return palette.NewDurationScale(total)
}
