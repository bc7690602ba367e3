package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all pytestmap configuration.
type Config struct {
	View       ViewConfig   `yaml:"view" json:"view"`
	Dimensions []string     `yaml:"dimensions" json:"dimensions"`
	Ingest     IngestConfig `yaml:"ingest" json:"ingest"`
	Export     ExportConfig `yaml:"export" json:"export"`
	Log        LogConfig    `yaml:"log" json:"log"`
}

// Margin is the space around the chart. The top margin holds the
// breadcrumb bar.
type Margin struct {
	Top    int `yaml:"top" json:"top"`
	Right  int `yaml:"right" json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
	Left   int `yaml:"left" json:"left"`
}

// ViewConfig controls how the treemap is drawn.
type ViewConfig struct {
	Margin   Margin `yaml:"margin" json:"margin"`
	RootName string `yaml:"rootname" json:"rootname"`
	Format   string `yaml:"format" json:"format"`
	Title    string `yaml:"title" json:"title"`
	Color    string `yaml:"color" json:"color"`
}

// IngestConfig controls report loading.
type IngestConfig struct {
	Format      string `yaml:"format" json:"format"`
	Concurrency int    `yaml:"concurrency" json:"concurrency"`
}

// ExportConfig sets the canvas size of static exports.
type ExportConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// LogConfig controls diagnostics output.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Color modes.
const (
	ColorDuration = "duration"
	ColorOutcome  = "outcome"
)

// Default returns a Config with all default values populated.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Margin:   Margin{Top: 24, Right: 10, Bottom: 0, Left: 10},
			RootName: "TOP",
			Format:   ".3r",
			Title:    "",
			Color:    ColorDuration,
		},
		Dimensions: []string{"key", "group", "kind"},
		Ingest: IngestConfig{
			Format:      "auto",
			Concurrency: 8,
		},
		Export: ExportConfig{
			Width:  960,
			Height: 600,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.config/pytestmap/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pytestmap", "config.yaml"), nil
}

// Load loads config from the given path. If path is empty, it uses the
// default location (~/.config/pytestmap/config.yaml). If the file does not
// exist, it creates it with default values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	return LoadFrom(path)
}

// LoadFrom loads and parses config from the given path. Missing fields
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save marshals the config to YAML and writes it to the given path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
