package export

import (
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/lu-zhengda/pytestmap/internal/palette"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
	"github.com/lu-zhengda/pytestmap/internal/utils"
)

// charWidth approximates the advance of one column of 14px sans-serif.
const charWidth = 7.7

const labelPad = 6

type svgText struct {
	X, Y    float64
	Lines   []string
	Opacity float64
}

type svgRect struct {
	X, Y, W, H float64
	Fill       string
	Title      string
}

type svgChild struct {
	Rect svgRect
	Text *svgText
}

type svgGroup struct {
	Clickable bool
	Children  []svgChild
	Parent    svgRect
	Label     svgText
}

type svgDoc struct {
	Title       string
	Breadcrumb  string
	OuterWidth  float64
	OuterHeight float64
	Width       float64
	MarginTop   float64
	MarginLeft  float64
	Groups      []svgGroup
}

var funcs = template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"neg": func(v float64) float64 { return -v },
	"add": func(a, b float64) float64 { return a + b },
}

const svgTemplate = `{{define "svg"}}<svg xmlns="http://www.w3.org/2000/svg" width="{{num .OuterWidth}}" height="{{num .OuterHeight}}" font-family="sans-serif" font-size="14px">
<style>
rect.parent { fill-opacity: 0; stroke: #fff; stroke-width: 2px; }
rect.child { stroke: #fff; stroke-width: 1px; }
.grandparent rect { fill: #ffa500; }
.grandparent text { font-weight: bold; }
text { fill: #fff; }
</style>
<g transform="translate({{num .MarginLeft}},{{num .MarginTop}})" shape-rendering="crispEdges">
<g class="grandparent">
<rect y="{{num (neg .MarginTop)}}" width="{{num .Width}}" height="{{num .MarginTop}}"></rect>
<text x="6" y="{{num (add 6 (neg .MarginTop))}}" dy=".75em">{{.Breadcrumb}}</text>
</g>
<g class="depth">
{{- range .Groups}}
<g{{if .Clickable}} class="children"{{end}}>
{{- range .Children}}
<g>
<rect class="child" x="{{num .Rect.X}}" y="{{num .Rect.Y}}" width="{{num .Rect.W}}" height="{{num .Rect.H}}" fill="{{.Rect.Fill}}"><title>{{.Rect.Title}}</title></rect>
{{- with .Text}}
<text class="ctext" x="{{num .X}}" y="{{num .Y}}" fill-opacity="{{num .Opacity}}">{{index .Lines 0}}</text>
{{- end}}
</g>
{{- end}}
<rect class="parent" x="{{num .Parent.X}}" y="{{num .Parent.Y}}" width="{{num .Parent.W}}" height="{{num .Parent.H}}" fill="{{.Parent.Fill}}"></rect>
<text class="ptext" x="{{num .Label.X}}" y="{{num .Label.Y}}" dy=".75em" fill-opacity="{{num .Label.Opacity}}">
{{- $x := .Label.X}}{{range $i, $l := .Label.Lines}}<tspan x="{{num $x}}"{{if $i}} dy="1.0em"{{end}}>{{$l}}</tspan>{{end -}}
</text>
</g>
{{- end}}
</g>
</g>
</svg>
{{end}}`

const htmlTemplate = `{{define "html"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Title}}{{.Title}}{{else}}pytestmap{{end}}</title>
<style>
body { font-family: sans-serif; margin: 0; }
#chart { padding: 1em; }
p.title { font-size: 1.4em; font-weight: bold; margin: 0 0 .5em 0; }
</style>
</head>
<body>
<div id="chart">
{{- if .Title}}
<p class="title">{{.Title}}</p>
{{- end}}
{{template "svg" .}}
</div>
</body>
</html>
{{end}}`

var templates = template.Must(template.Must(template.New("export").Funcs(funcs).Parse(svgTemplate)).Parse(htmlTemplate))

// SVG writes a standalone SVG image of the current frame.
func SVG(w io.Writer, v View) error {
	if err := templates.ExecuteTemplate(w, "svg", buildDoc(v)); err != nil {
		return fmt.Errorf("rendering svg: %w", err)
	}
	return nil
}

// HTML writes a self-contained page embedding the SVG and the title.
func HTML(w io.Writer, v View) error {
	if err := templates.ExecuteTemplate(w, "html", buildDoc(v)); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

func buildDoc(v View) svgDoc {
	top, right := float64(max(v.Margin.Top, 0)), float64(max(v.Margin.Right, 0))
	bottom, left := float64(max(v.Margin.Bottom, 0)), float64(max(v.Margin.Left, 0))
	doc := svgDoc{
		Title:       v.Title,
		Breadcrumb:  v.Breadcrumb,
		OuterWidth:  v.Width + left + right,
		OuterHeight: v.Height + top + bottom,
		Width:       v.Width,
		MarginTop:   top,
		MarginLeft:  left,
	}
	scale := v.Scale()
	fill := func(n *treemap.Node) string {
		return palette.Fill(v.Mode, scale, n.Duration, n.Outcome)
	}

	index := map[int]int{}
	for _, c := range v.Cells {
		if c.Outgoing {
			continue
		}
		gi, ok := index[c.Group]
		if !ok {
			gi = len(doc.Groups)
			index[c.Group] = gi
			doc.Groups = append(doc.Groups, svgGroup{Clickable: c.Clickable})
		}
		g := &doc.Groups[gi]
		n := v.Tree.Node(c.ID)
		if n == nil {
			continue
		}
		r := svgRect{X: c.Rect.X, Y: c.Rect.Y, W: c.Rect.DX, H: c.Rect.DY, Fill: fill(n)}
		if c.Parent {
			g.Parent = r
			lines := []string{n.Key, treemap.Summary(n, v.Precision)}
			g.Label = svgText{
				X:       r.X + labelPad,
				Y:       r.Y + labelPad,
				Lines:   lines,
				Opacity: fits(lines[0], r.W),
			}
			continue
		}
		r.Title = tooltip(v.Tree, n, v.Precision)
		child := svgChild{Rect: r}
		if n.Key != "" {
			tw := textWidth(n.Key)
			child.Text = &svgText{
				X:       r.X + r.W - tw - labelPad,
				Y:       r.Y + r.H - labelPad,
				Lines:   []string{n.Key},
				Opacity: fits(n.Key, r.W),
			}
		}
		g.Children = append(g.Children, child)
	}
	return doc
}

// tooltip renders the two-part hover text of a child cell: its parent,
// then itself.
func tooltip(t *treemap.Tree, n *treemap.Node, precision int) string {
	part := func(n *treemap.Node) string {
		return n.Key + "\n(" + utils.FormatDuration(n.Duration, precision) +
			" - " + utils.FormatSig(n.Prct*100, precision) + "%)"
	}
	p := t.Node(n.Parent)
	if p == nil {
		return part(n)
	}
	return part(p) + "\n--\n" + part(n)
}

func textWidth(s string) float64 {
	return float64(runewidth.StringWidth(s)) * charWidth
}

func fits(s string, width float64) float64 {
	if textWidth(s) < width {
		return 1
	}
	return 0
}
