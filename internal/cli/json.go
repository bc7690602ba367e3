package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lu-zhengda/pytestmap/internal/config"
)

type validateJSON struct {
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Path      string        `json:"path"`
	Valid     bool          `json:"valid"`
	Warnings  []warningJSON `json:"warnings"`
}

type warningJSON struct {
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func buildValidateJSON(path string, warnings []config.Warning) validateJSON {
	out := validateJSON{
		Version:   version,
		Timestamp: time.Now(),
		Path:      path,
		Valid:     len(warnings) == 0,
		Warnings:  make([]warningJSON, 0, len(warnings)),
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, warningJSON{
			Field:      w.Field,
			Message:    w.Message,
			Suggestion: w.Suggestion,
		})
	}
	return out
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
