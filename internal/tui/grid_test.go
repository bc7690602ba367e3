package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/lu-zhengda/pytestmap/internal/palette"
	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
	"github.com/lu-zhengda/pytestmap/internal/zoom"
)

func leaf(d float64) treemap.Input {
	v := d + 1
	return treemap.Input{Value: &v, Duration: d, Outcome: report.Passed}
}

func gridTree(w, h int) *treemap.Tree {
	in := treemap.Input{Key: "TOP", Values: []treemap.Input{
		{Key: "alpha.py", Values: []treemap.Input{
			{Key: "test_one", Values: []treemap.Input{leaf(60)}},
			{Key: "test_two", Values: []treemap.Input{leaf(20)}},
		}},
		{Key: "beta.py", Values: []treemap.Input{
			{Key: "test_three", Values: []treemap.Input{leaf(20)}},
		}},
	}}
	tree := treemap.Build(in)
	treemap.LayoutRoot(tree, float64(w), float64(h*CellAspect))
	return tree
}

func render(t *testing.T, w, h int) string {
	t.Helper()
	tree := gridTree(w, h)
	ctrl := zoom.New(tree, float64(w), float64(h*CellAspect))
	return RenderGrid(tree, ctrl.Frame(), w, h, GridOptions{
		Mode:      palette.ByDuration,
		Scale:     palette.NewDurationScale(100),
		Precision: 3,
		Selected:  -1,
	})
}

func TestRenderGrid_Dimensions(t *testing.T) {
	out := render(t, 80, 24)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 24 {
		t.Fatalf("expected 24 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if w := runewidth.StringWidth(l); w != 80 {
			t.Errorf("line %d: expected width 80, got %d", i, w)
		}
	}
}

func TestRenderGrid_Labels(t *testing.T) {
	out := render(t, 80, 24)
	for _, want := range []string{"alpha.py", "beta.py", "80.0ms - 80.0%", "test_one"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "┌") || !strings.Contains(out, "┘") {
		t.Error("expected group borders")
	}
}

func TestRenderGrid_HidesLabelsThatDoNotFit(t *testing.T) {
	out := render(t, 12, 6)
	if strings.Contains(out, "test_three") {
		t.Errorf("label should be hidden in a tiny cell:\n%s", out)
	}
}

func TestRenderGrid_TooSmall(t *testing.T) {
	tree := gridTree(3, 1)
	if got := RenderGrid(tree, nil, 3, 1, GridOptions{}); got != "Terminal too small.\n" {
		t.Errorf("unexpected output %q", got)
	}
	if got := RenderGrid(tree, nil, 40, 10, GridOptions{}); got != "No data to display.\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestSnap(t *testing.T) {
	r := snap(treemap.Rect{X: 0.4, Y: 3, DX: 10.2, DY: 8})
	if r != (rect{x: 0, y: 2, w: 11, h: 4}) {
		t.Errorf("unexpected snap %+v", r)
	}
}

func TestFitLabel(t *testing.T) {
	if got := fitLabel("abc", 4); got != "abc" {
		t.Errorf("expected label to fit, got %q", got)
	}
	if got := fitLabel("abcd", 4); got != "" {
		t.Errorf("expected label hidden, got %q", got)
	}
	// Wide runes count double.
	if got := fitLabel("日本", 4); got != "" {
		t.Errorf("expected wide label hidden, got %q", got)
	}
}

func TestGridText_WideRunes(t *testing.T) {
	g := newGrid(6, 1)
	g.text(0, 0, 6, "日本x")
	out := g.render(false)
	if out != "日本x \n" {
		t.Errorf("unexpected row %q", out)
	}
}

func TestGridText_ClipsWideRunesLeftOfGrid(t *testing.T) {
	g := newGrid(6, 1)
	g.text(-3, 0, 6, "日本xy")
	out := g.render(false)
	if out != " xy   \n" {
		t.Errorf("unexpected row %q", out)
	}
}

func TestRenderGrid_TransitionWithWideLabels(t *testing.T) {
	const w, h = 160, 40
	module := func(key string, d float64) treemap.Input {
		return treemap.Input{Key: key, Values: []treemap.Input{
			{Key: "test_" + key, Values: []treemap.Input{leaf(d)}},
		}}
	}
	in := treemap.Input{Key: "TOP", Values: []treemap.Input{
		module("テスト.py", 80), module("a.py", 30), module("b.py", 20), module("c.py", 10),
	}}
	tree := treemap.Build(in)
	treemap.LayoutRoot(tree, w, h*CellAspect)

	for _, target := range []string{"c.py", "a.py"} {
		ctrl := zoom.New(tree, w, h*CellAspect)
		id, ok := tree.Find(target)
		if !ok || !ctrl.ZoomIn(id) {
			t.Fatalf("zoom into %s failed", target)
		}
		for frame := 0; frame < 40; frame++ {
			out := RenderGrid(tree, ctrl.Frame(), w, h, GridOptions{
				Mode:      palette.ByDuration,
				Scale:     palette.NewDurationScale(14),
				Precision: 3,
				Selected:  -1,
			})
			if n := strings.Count(out, "\n"); n != h {
				t.Fatalf("%s frame %d: expected %d rows, got %d", target, frame, h, n)
			}
			if !ctrl.Advance(16 * time.Millisecond) {
				break
			}
		}
	}
}
