package config

import (
	"fmt"
	"strings"

	"github.com/lu-zhengda/pytestmap/internal/group"
	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/utils"
)

// Warning is one problem found by Validate. Warnings never stop a load;
// the affected value falls back to its default at use.
type Warning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (w Warning) String() string {
	if w.Suggestion == "" {
		return fmt.Sprintf("%s: %s", w.Field, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Field, w.Message, w.Suggestion)
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the config for values that will be ignored or corrected.
func (c *Config) Validate() []Warning {
	var ws []Warning
	add := func(field, msg, suggestion string) {
		ws = append(ws, Warning{Field: field, Message: msg, Suggestion: suggestion})
	}

	m := c.View.Margin
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		add("view.margin", "negative margins are treated as 0", "use values >= 0")
	}
	if strings.TrimSpace(c.View.RootName) == "" {
		add("view.rootname", "empty root name", `set a label such as "TOP"`)
	}
	if _, err := utils.ParseFormat(c.View.Format); err != nil {
		add("view.format", err.Error(), `use ".Nr" with N between 1 and 21, e.g. ".3r"`)
	}
	switch c.View.Color {
	case "", ColorDuration, ColorOutcome:
	default:
		add("view.color", fmt.Sprintf("unknown color mode %q", c.View.Color), "use duration or outcome")
	}

	if len(c.Dimensions) > group.MaxDimensions {
		add("dimensions", fmt.Sprintf("%d dimensions given, only the first %d are used", len(c.Dimensions), group.MaxDimensions), "")
	}
	if _, unknown := group.ParseDimensions(strings.Join(c.Dimensions, ",")); len(unknown) > 0 {
		add("dimensions", fmt.Sprintf("unknown dimensions %s act as rollup", strings.Join(unknown, ", ")),
			"valid: "+strings.Join(dimensionNames(), ", "))
	}

	if _, ok := report.ParseFormat(c.Ingest.Format); !ok {
		add("ingest.format", fmt.Sprintf("unknown format %q", c.Ingest.Format), "use auto, report or compact")
	}
	if c.Ingest.Concurrency < 1 {
		add("ingest.concurrency", "must be at least 1", "use 8")
	}

	if c.Export.Width <= 0 || c.Export.Height <= 0 {
		add("export", "width and height must be positive", "use 960x600")
	}

	if !contains(logLevels, strings.ToLower(c.Log.Level)) {
		add("log.level", fmt.Sprintf("unknown level %q", c.Log.Level), "use "+strings.Join(logLevels, ", "))
	}
	return ws
}

// LoadAndValidate parses data over the defaults and validates the result.
func LoadAndValidate(data []byte) (*Config, []Warning, error) {
	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.Validate(), nil
}

func dimensionNames() []string {
	names := make([]string, 0, len(group.All))
	for _, d := range group.All {
		names = append(names, string(d))
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
