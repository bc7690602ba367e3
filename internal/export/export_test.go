package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/pytestmap/internal/group"
	"github.com/lu-zhengda/pytestmap/internal/palette"
	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/session"
)

func testSession(t *testing.T, dims ...group.Dimension) *session.Session {
	t.Helper()
	s := session.New(session.DefaultOptions(), dims, nil)
	s.IngestRecords([]report.FlatRecord{
		{Key: "a.py", Group: "test_x", Kind: report.Call, Outcome: report.Passed, Duration: 300},
		{Key: "a.py", Group: "test_w", Kind: report.Call, Outcome: report.Failed, Duration: 200},
		{Key: "b.py", Group: "test_y", Kind: report.Setup, Outcome: report.Passed, Duration: 500},
	})
	s.Resize(1000, 624)
	return s
}

func TestFromSession(t *testing.T) {
	v := FromSession(testSession(t, group.Key, group.Grp))
	assert.Equal(t, 980.0, v.Width)
	assert.Equal(t, 600.0, v.Height)
	assert.Equal(t, "TOP (1000ms)", v.Breadcrumb)
	assert.Equal(t, 3, v.Precision)
	assert.NotEmpty(t, v.Cells)
	assert.Equal(t, 100.0, v.Scale().Max)
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, FromSession(testSession(t, group.Key, group.Grp))))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "TOP (1000ms)\n"))
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "DURATION")
	assert.Regexp(t, `a\.py\s+500ms\s+50\.0%\s+mixed\s+2`, out)
	assert.Regexp(t, `b\.py\s+500ms\s+50\.0%\s+passed\s+1`, out)
	assert.Contains(t, out, "Total: 1000ms")
}

func TestText_Leaf(t *testing.T) {
	s := testSession(t, group.Key, group.Grp)
	require.NoError(t, s.Focus("b.py/test_y"))

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, FromSession(s)))
	assert.Contains(t, buf.String(), "(all)")
}

func TestTree(t *testing.T) {
	v := FromSession(testSession(t, group.Key, group.Grp))

	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, v, 0))
	want := "TOP (1000ms)\n" +
		"  a.py (500ms - 50.0%) [mixed]\n" +
		"    test_x (300ms - 60.0%) [passed]\n" +
		"    test_w (200ms - 40.0%) [mixed]\n" +
		"  b.py (500ms - 50.0%) [passed]\n" +
		"    test_y (500ms - 100%) [passed]\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, Tree(&buf, v, 1))
	assert.NotContains(t, buf.String(), "test_x")
	assert.Contains(t, buf.String(), "b.py")
}

func TestInvalidFocus(t *testing.T) {
	v := FromSession(testSession(t, group.Key))
	v.Focus = 99
	var buf bytes.Buffer
	assert.Error(t, Text(&buf, v))
	assert.Error(t, Tree(&buf, v, 0))
	assert.Error(t, JSON(&buf, v))
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, FromSession(testSession(t, group.Key, group.Grp))))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="1000.00" height="624.00"`))
	assert.Contains(t, out, `<g transform="translate(10.00,24.00)"`)
	assert.Contains(t, out, `dy=".75em">TOP (1000ms)</text>`)
	assert.Contains(t, out, "<title>a.py\n(500ms - 50.0%)\n--\ntest_x\n(300ms - 60.0%)</title>")
	assert.Equal(t, 2, strings.Count(out, `class="parent"`))
	assert.Equal(t, 3, strings.Count(out, `class="child"`))
	assert.Equal(t, 2, strings.Count(out, `class="children"`))
	assert.Contains(t, out, "<tspan")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestSVG_OutcomeColors(t *testing.T) {
	s := testSession(t, group.Key, group.Grp)
	o := s.Options()
	o.Color = palette.ByOutcome
	s.SetOptions(o)

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, FromSession(s)))
	assert.Contains(t, buf.String(), `fill="#ffa500"`)
	assert.Contains(t, buf.String(), `fill="#00cc00"`)
	assert.NotContains(t, buf.String(), `fill="#cc0000"`)

	// Only the failed leaf itself is red; a lone failed leaf merges to mixed.
	require.NoError(t, s.Focus("a.py/test_w"))
	buf.Reset()
	require.NoError(t, SVG(&buf, FromSession(s)))
	assert.Contains(t, buf.String(), `fill="#cc0000"`)
}

func TestHTML(t *testing.T) {
	s := testSession(t, group.Key)
	o := s.Options()
	o.Title = "<b>Durations</b>"
	s.SetOptions(o)

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, FromSession(s)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<p class="title">&lt;b&gt;Durations&lt;/b&gt;</p>`)
	assert.Contains(t, out, "<svg")
	assert.NotContains(t, out, "<b>")
}

func TestFits(t *testing.T) {
	assert.Equal(t, 1.0, fits("abc", 30))
	assert.Equal(t, 0.0, fits("abcd", 30))
	assert.Equal(t, 2*charWidth, textWidth("日"))
}

func TestTooltip_Root(t *testing.T) {
	v := FromSession(testSession(t, group.Key))
	root := v.Tree.Node(0)
	assert.Equal(t, "TOP\n(1000ms - 100%)", tooltip(v.Tree, root, 3))
}

func TestJSON(t *testing.T) {
	s := testSession(t, group.Key, group.Grp)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, FromSession(s)))
	var got layoutJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "", got.Focus)
	assert.Equal(t, "TOP", got.Root.Key)
	assert.Equal(t, 980.0, got.Root.DX)
	require.Len(t, got.Root.Children, 2)
	a := got.Root.Children[0]
	assert.Equal(t, "a.py", a.Path)
	assert.Equal(t, report.Mixed, a.Outcome)
	assert.Equal(t, "a.py/test_x", a.Children[0].Path)
	assert.Greater(t, a.DX*a.DY, 0.0)

	require.NoError(t, s.Focus("a.py"))
	buf.Reset()
	require.NoError(t, JSON(&buf, FromSession(s)))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "a.py", got.Focus)
	assert.Equal(t, "a.py", got.Root.Key)
}
