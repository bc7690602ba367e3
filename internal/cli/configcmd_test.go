package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lu-zhengda/pytestmap/internal/config"
)

func TestConfigValidate_OK(t *testing.T) {
	out := captureOutput(func() {
		if _, err := execute(t, "config", "validate"); err != nil {
			t.Errorf("validate: %v", err)
		}
	})
	if !strings.HasPrefix(out, "Config OK (") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestConfigValidate_Warnings(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "bad.yaml", "view:\n  color: rainbow\ndimensions: [key, bogus]\n")

	out := captureOutput(func() {
		resetFlags()
		rootCmd.SetArgs([]string{"--config", cfg, "config", "validate"})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("validate: %v", err)
		}
	})
	if !strings.Contains(out, "Found 2 warning(s)") {
		t.Errorf("expected two warnings, got:\n%s", out)
	}
	if !strings.Contains(out, "[dimensions]") {
		t.Errorf("expected dimensions warning, got:\n%s", out)
	}
}

func TestConfigValidate_JSON(t *testing.T) {
	out := captureOutput(func() {
		if _, err := execute(t, "--json", "config", "validate"); err != nil {
			t.Errorf("validate: %v", err)
		}
	})
	var got validateJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !got.Valid || len(got.Warnings) != 0 {
		t.Errorf("default config should be valid: %+v", got)
	}
	if got.Version == "" {
		t.Error("version should be set")
	}
}

func TestConfigShow(t *testing.T) {
	out := captureOutput(func() {
		if _, err := execute(t, "config", "show"); err != nil {
			t.Errorf("show: %v", err)
		}
	})
	if !strings.Contains(out, "rootname: TOP") {
		t.Errorf("yaml output missing rootname:\n%s", out)
	}

	out = captureOutput(func() {
		if _, err := execute(t, "--json", "config", "show"); err != nil {
			t.Errorf("show: %v", err)
		}
	})
	var got config.Config
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Export.Width != 960 {
		t.Errorf("export width = %d, want 960", got.Export.Width)
	}
}

func TestConfigInit(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "sub", "config.yaml")
	run := func(args ...string) error {
		resetFlags()
		rootCmd.SetArgs(append([]string{"--config", cfg, "config", "init"}, args...))
		return rootCmd.Execute()
	}

	// The root pre-run creates the file, so init without --force refuses.
	if err := run(); err == nil {
		t.Fatal("expected error when config exists")
	}
	if err := os.WriteFile(cfg, []byte("view:\n  rootname: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	captureOutput(func() {
		if err := run("--force"); err != nil {
			t.Errorf("init --force: %v", err)
		}
	})
	loaded, err := config.LoadFrom(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.View.RootName != "TOP" {
		t.Errorf("rootname = %q, want defaults restored", loaded.View.RootName)
	}
}

func TestBuildValidateJSON(t *testing.T) {
	got := buildValidateJSON("/tmp/c.yaml", []config.Warning{
		{Field: "view.color", Message: "bad color", Suggestion: "use duration"},
	})
	if got.Valid {
		t.Error("warnings should make the config invalid")
	}
	if len(got.Warnings) != 1 || got.Warnings[0].Field != "view.color" {
		t.Errorf("unexpected warnings: %+v", got.Warnings)
	}
	if got.Path != "/tmp/c.yaml" {
		t.Errorf("path = %q", got.Path)
	}
}
