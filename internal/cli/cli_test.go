package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const compactReport = `{"comp":[["a.py::test_x",0.3,0.1,0],["b.py::test_y",0.2,0,0]]}`

// captureOutput redirects stdout via os.Pipe and returns whatever was written.
func captureOutput(fn func()) string {
	origStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout

	data, _ := io.ReadAll(r)
	return string(data)
}

// resetFlags clears state left behind by a previous Execute.
func resetFlags() {
	jsonFlag, verboseFlag, configPath = false, false, ""
	configInitForce = false
	viewFlags, renderLoad, messageLoad = loadFlags{}, loadFlags{}, loadFlags{}
	renderOut = outputFlags{output: "text"}
	messageOut = outputFlags{}
	_ = rootCmd.Flags().Set("generate-completion", "")
	for _, fs := range []*pflag.FlagSet{
		rootCmd.Flags(), rootCmd.PersistentFlags(), renderCmd.Flags(), messageCmd.Flags(), configInitCmd.Flags(),
	} {
		fs.VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// execute runs the root command with an isolated config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRender_Text(t *testing.T) {
	report := writeFile(t, t.TempDir(), "run.json", compactReport)

	out, err := execute(t, "render", "--dims", "key", report)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "TOP (600ms)\n") {
		t.Errorf("output should start with breadcrumb, got:\n%s", out)
	}
	for _, want := range []string{"a.py", "400ms", "66.7%", "b.py", "200ms", "33.3%", "Total: 600ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_Focus(t *testing.T) {
	report := writeFile(t, t.TempDir(), "run.json", compactReport)

	out, err := execute(t, "render", "--dims", "key,kind", "--output", "tree", "--focus", "a.py", report)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "TOP (600ms) / a.py (400ms - 66.7%)\n") {
		t.Errorf("unexpected breadcrumb:\n%s", out)
	}
	if !strings.Contains(out, "  call (300ms - 75.0%) [passed]") {
		t.Errorf("missing call line:\n%s", out)
	}
	if strings.Contains(out, "b.py") {
		t.Errorf("focused output should not list siblings:\n%s", out)
	}
}

func TestRender_FocusMissing(t *testing.T) {
	report := writeFile(t, t.TempDir(), "run.json", compactReport)

	if _, err := execute(t, "render", "--focus", "nope.py", report); err == nil {
		t.Fatal("expected error for unknown focus path")
	}
}

func TestRender_UnknownOutput(t *testing.T) {
	report := writeFile(t, t.TempDir(), "run.json", compactReport)

	if _, err := execute(t, "render", "--output", "pdf", report); err == nil {
		t.Fatal("expected error for unsupported output")
	}
}

func TestRender_JSONFlag(t *testing.T) {
	report := writeFile(t, t.TempDir(), "run.json", compactReport)

	out, err := execute(t, "--json", "render", "--dims", "key", report)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var got struct {
		Breadcrumb string  `json:"breadcrumb"`
		Width      float64 `json:"width"`
		Root       struct {
			Key      string `json:"key"`
			Children []struct {
				Key string `json:"key"`
			} `json:"children"`
		} `json:"root"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Breadcrumb != "TOP (600ms)" {
		t.Errorf("breadcrumb = %q", got.Breadcrumb)
	}
	if got.Width != 940 {
		t.Errorf("width = %v, want 940", got.Width)
	}
	if len(got.Root.Children) != 2 || got.Root.Children[0].Key != "a.py" {
		t.Errorf("unexpected children: %+v", got.Root.Children)
	}
}

func TestRender_SVGToFile(t *testing.T) {
	dir := t.TempDir()
	report := writeFile(t, dir, "run.json", compactReport)
	dest := filepath.Join(dir, "out.svg")

	out, err := execute(t, "render", "--output", "svg", "--width", "400", "--height", "300", "--out", dest, report)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Errorf("stdout should be empty when --out is set, got %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), `<svg xmlns="http://www.w3.org/2000/svg" width="400.00" height="300.00"`) {
		t.Errorf("unexpected svg header: %.120s", data)
	}
}

func TestRender_Grid(t *testing.T) {
	report := writeFile(t, t.TempDir(), "run.json", compactReport)

	out, err := execute(t, "render", "--dims", "key", "--output", "grid", "--width", "40", "--height", "12", report)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "TOP (600ms)" {
		t.Errorf("first line = %q", lines[0])
	}
	if len(lines) != 12 {
		t.Errorf("got %d lines, want 12", len(lines))
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("grid written to a buffer should carry no ANSI codes")
	}
	if !strings.Contains(out, "a.py") {
		t.Errorf("grid should label a.py:\n%s", out)
	}
}

func TestRender_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	report := writeFile(t, dir, "run.json", compactReport)
	missing := filepath.Join(dir, "missing.json")

	out, err := execute(t, "render", "--dims", "key", missing, report)
	if err != nil {
		t.Fatalf("a missing report should not fail the render: %v", err)
	}
	if !strings.Contains(out, "TOP (600ms)") {
		t.Errorf("good report should still render:\n%s", out)
	}
}

func TestRender_BadInputFormat(t *testing.T) {
	report := writeFile(t, t.TempDir(), "run.json", compactReport)

	if _, err := execute(t, "render", "--input-format", "xml", report); err == nil {
		t.Fatal("expected error for unknown input format")
	}
}

func TestMessage_Records(t *testing.T) {
	msg := writeFile(t, t.TempDir(), "msg.json", `{
		"opts": {"rootname": "ALL"},
		"data": [
			{"key": "a.py", "group": "test_x", "kind": "call", "outcome": "passed", "duration": 300},
			{"key": "b.py", "group": "test_y", "kind": "call", "outcome": "failed", "duration": 100}
		]
	}`)

	out, err := execute(t, "message", "--dims", "key", "--output", "tree", msg)
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	want := "ALL (400ms)\n" +
		"  a.py (300ms - 75.0%) [passed]\n" +
		"  b.py (100ms - 25.0%) [mixed]\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestMessage_Tree(t *testing.T) {
	msg := writeFile(t, t.TempDir(), "msg.json", `{
		"data": {"key": "ROOT", "values": [
			{"key": "x", "values": [{"key": "", "value": 11, "duration": 10, "outcome": "passed"}]},
			{"key": "y", "values": [{"key": "", "value": 31, "duration": 30, "outcome": "passed"}]}
		]}
	}`)

	out, err := execute(t, "message", "--output", "text", msg)
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if !strings.HasPrefix(out, "ROOT (40.0ms)\n") {
		t.Errorf("tree data should be used as-is:\n%s", out)
	}
}

func TestMessage_NoData(t *testing.T) {
	msg := writeFile(t, t.TempDir(), "msg.json", `{"opts": {}}`)

	if _, err := execute(t, "message", "--output", "text", msg); err == nil {
		t.Fatal("expected error for message without data")
	}
}

func TestGenerateCompletion(t *testing.T) {
	out := captureOutput(func() {
		if _, err := execute(t, "--generate-completion", "bash"); err != nil {
			t.Errorf("completion: %v", err)
		}
	})
	if !strings.Contains(out, "pytestmap") {
		t.Error("bash completion should mention the command name")
	}

	if _, err := execute(t, "--generate-completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
