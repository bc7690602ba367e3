package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lu-zhengda/pytestmap/internal/palette"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
	"github.com/lu-zhengda/pytestmap/internal/zoom"
)

// CellAspect is how many layout units one terminal row spans relative to
// one column. Terminal cells are about twice as tall as wide.
const CellAspect = 2

// GridOptions controls RenderGrid.
type GridOptions struct {
	Mode      palette.Mode
	Scale     palette.DurationScale
	Precision int
	Selected  int  // group id drawn highlighted, -1 for none
	Color     bool // emit ANSI styles
}

type rect struct {
	x, y, w, h int
}

type gridCell struct {
	ch   rune
	bg   string
	fg   string
	bold bool
	rev  bool
	wide bool // second column of a wide rune
}

type grid struct {
	w, h  int
	cells [][]gridCell
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([][]gridCell, h)}
	for y := range g.cells {
		g.cells[y] = make([]gridCell, w)
		for x := range g.cells[y] {
			g.cells[y][x].ch = ' '
		}
	}
	return g
}

// snap converts a layout rectangle into whole terminal cells. Edges are
// rounded independently so neighbours share borders exactly.
func snap(r treemap.Rect) rect {
	x0 := int(math.Round(r.X))
	x1 := int(math.Round(r.X + r.DX))
	y0 := int(math.Round(r.Y / CellAspect))
	y1 := int(math.Round((r.Y + r.DY) / CellAspect))
	return rect{x: x0, y: y0, w: x1 - x0, h: y1 - y0}
}

func (g *grid) fill(r rect, bg, fg string) {
	for y := max(r.y, 0); y < r.y+r.h && y < g.h; y++ {
		for x := max(r.x, 0); x < r.x+r.w && x < g.w; x++ {
			c := &g.cells[y][x]
			*c = gridCell{ch: ' ', bg: bg, fg: fg}
		}
	}
}

func (g *grid) set(x, y int, ch rune) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x].ch = ch
	g.cells[y][x].wide = false
}

func (g *grid) border(r rect, highlight bool) {
	if r.w < 2 || r.h < 2 {
		return
	}
	x1, y1 := r.x+r.w-1, r.y+r.h-1
	for x := r.x + 1; x < x1; x++ {
		g.set(x, r.y, '─')
		g.set(x, y1, '─')
	}
	for y := r.y + 1; y < y1; y++ {
		g.set(r.x, y, '│')
		g.set(x1, y, '│')
	}
	g.set(r.x, r.y, '┌')
	g.set(x1, r.y, '┐')
	g.set(r.x, y1, '└')
	g.set(x1, y1, '┘')
	if !highlight {
		return
	}
	for y := max(r.y, 0); y <= y1 && y < g.h; y++ {
		for x := max(r.x, 0); x <= x1 && x < g.w; x++ {
			if y == r.y || y == y1 || x == r.x || x == x1 {
				g.cells[y][x].bold = true
				g.cells[y][x].rev = true
			}
		}
	}
}

// text writes s starting at column x, stopping at limit. Wide runes take
// two columns.
func (g *grid) text(x, y, limit int, s string) {
	if y < 0 || y >= g.h {
		return
	}
	col := x
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col+w > limit || col+w > g.w {
			return
		}
		// Runes left of the grid are clipped; a wide rune is marked only
		// when its first half landed.
		if col >= 0 {
			g.set(col, y, ch)
			if w == 2 {
				g.cells[y][col+1].wide = true
			}
		}
		col += w
	}
}

// fitLabel returns s when it fits in width columns, otherwise "". Labels
// that do not fit are hidden rather than cut.
func fitLabel(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) >= width {
		return ""
	}
	return s
}

// RenderGrid rasterizes a frame of zoom cells into w x h terminal cells.
func RenderGrid(t *treemap.Tree, cells []zoom.Cell, w, h int, opts GridOptions) string {
	if w < 4 || h < 2 {
		return "Terminal too small.\n"
	}
	if len(cells) == 0 {
		return "No data to display.\n"
	}

	g := newGrid(w, h)
	for _, c := range cells {
		n := t.Node(c.ID)
		if n == nil || c.Parent {
			continue
		}
		bg := palette.Fill(opts.Mode, opts.Scale, n.Duration, n.Outcome)
		g.fill(snap(c.Rect), bg, palette.TextColor(bg))
	}

	for _, c := range cells {
		n := t.Node(c.ID)
		if n == nil {
			continue
		}
		r := snap(c.Rect)
		visible := c.Opacity >= 0.5
		if c.Parent {
			g.border(r, c.ID == opts.Selected && !c.Outgoing)
			if !visible {
				continue
			}
			// Parent label sits top-left: key, then "duration - pct%".
			if label := fitLabel(n.Key, r.w-2); label != "" && r.h > 2 {
				g.text(r.x+1, r.y+1, r.x+r.w-1, label)
			}
			if sum := fitLabel(treemap.Summary(n, opts.Precision), r.w-2); sum != "" && r.h > 3 {
				g.text(r.x+1, r.y+2, r.x+r.w-1, sum)
			}
			continue
		}
		if !visible || n.Leaf {
			continue
		}
		// Child label sits bottom-right.
		label := fitLabel(n.Key, r.w-2)
		if label == "" || r.h < 4 {
			continue
		}
		lw := runewidth.StringWidth(label)
		g.text(r.x+r.w-1-lw, r.y+r.h-2, r.x+r.w-1, label)
	}
	return g.render(opts.Color)
}

func (g *grid) render(color bool) string {
	var sb strings.Builder
	for y := 0; y < g.h; y++ {
		row := g.cells[y]
		for x := 0; x < g.w; {
			if row[x].wide {
				x++
				continue
			}
			// Batch runs of identically styled cells.
			start := x
			var run strings.Builder
			for x < g.w && sameStyle(row[start], row[x]) {
				if !row[x].wide {
					run.WriteRune(row[x].ch)
				}
				x++
			}
			sb.WriteString(styled(row[start], run.String(), color))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func sameStyle(a, b gridCell) bool {
	return a.bg == b.bg && a.fg == b.fg && a.bold == b.bold && a.rev == b.rev
}

func styled(c gridCell, s string, color bool) string {
	if !color {
		return s
	}
	style := lipgloss.NewStyle()
	if c.bg != "" {
		style = style.Background(lipgloss.Color(c.bg))
	}
	if c.fg != "" {
		style = style.Foreground(lipgloss.Color(c.fg))
	}
	if c.bold {
		style = style.Bold(true)
	}
	if c.rev {
		style = style.Reverse(true)
	}
	return style.Render(s)
}
