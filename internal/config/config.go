/*
PURPOSE:
  Defines the configuration structure and loading logic for Bench Trend.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of log locations, initial settings and the
    regression alert threshold.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Initial settings in YAML are either strings or `true` (a bare flag).
  - Remote logs need retry and timeout tuning.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default files fall back to defaults.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (e.g., 30s fetch timeout).

USAGE:
  cfg, err := config.Load("bench_trend.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and DefaultConfig().

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daryltucker/bench-trend/internal/model"
	"github.com/daryltucker/bench-trend/internal/revision"
	"github.com/daryltucker/bench-trend/internal/series"
)

// Config represents the full configuration for Bench Trend.
type Config struct {
	// LogDir is scanned for files whose name matches FilePattern.
	LogDir string `yaml:"log_dir"`
	// FilePattern must have one capture group holding the revision number.
	FilePattern string `yaml:"file_pattern"`
	// Sources are explicit "REV=PATH" or "REV=URL" entries.
	Sources []string `yaml:"sources"`

	InitialSettings map[string]Setting `yaml:"initial_settings"`

	Representation string   `yaml:"representation"`
	Benches        []string `yaml:"benches"`
	Exclude        []string `yaml:"exclude"`
	TimeTypes      []string `yaml:"time_types"`

	// SlopeThreshold flags a series as regressed when its min-slope bound
	// (msecs per revision) is above it.
	SlopeThreshold float64 `yaml:"slope_threshold"`
	LinkHost       string  `yaml:"link_host"`

	OutputDir  string `yaml:"output_dir"`
	OutputFile string `yaml:"output_file"`
	PointsFile string `yaml:"points_file"`

	MaxRetries   int           `yaml:"max_retries"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogDir:          ".",
		FilePattern:     `^bench_r(\d+)_`,
		InitialSettings: map[string]Setting{},
		Representation:  string(series.Average),
		SlopeThreshold:  0,
		LinkHost:        revision.DefaultHost,
		OutputDir:       ".",
		OutputFile:      "trends.csv",
		PointsFile:      "points.jsonl",
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
		FetchTimeout:    30 * time.Second,
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		defaults := []string{"bench_trend.yaml", "bench-trend.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the fields that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	re, err := regexp.Compile(c.FilePattern)
	if err != nil {
		return fmt.Errorf("file_pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return fmt.Errorf("file_pattern %q needs a capture group for the revision", c.FilePattern)
	}
	if _, err := series.ParseRepresentation(c.Representation); err != nil {
		return fmt.Errorf("representation: %w", err)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	return nil
}

// Setting is one initial_settings value: a scalar kept verbatim, or true
// for a bare flag.
type Setting struct {
	Value string
	Flag  bool
}

// ParseSetting splits a "key" or "key=value" token.
func ParseSetting(token string) (string, Setting) {
	if k, v, ok := strings.Cut(token, "="); ok && v != "" {
		return k, Setting{Value: v}
	}
	return strings.TrimSuffix(token, "="), Setting{Flag: true}
}

func (s *Setting) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: setting must be a scalar", n.Line)
	}
	if n.ShortTag() == "!!bool" {
		if !strings.EqualFold(n.Value, "true") {
			return fmt.Errorf("line %d: false is not a valid setting (omit the key instead)", n.Line)
		}
		*s = Setting{Flag: true}
		return nil
	}
	*s = Setting{Value: n.Value}
	return nil
}

// Settings converts InitialSettings into parser settings.
func (c *Config) Settings() model.Settings {
	out := make(model.Settings, len(c.InitialSettings))
	for k, v := range c.InitialSettings {
		if v.Flag {
			out[k] = model.Flag()
		} else {
			out[k] = model.String(v.Value)
		}
	}
	return out
}
