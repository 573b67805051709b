// Package config loads and validates the analysis configuration file.
//
// The file is YAML, decoded strictly: unknown fields are rejected so a
// typo fails loudly instead of silently falling back to a default.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultWindow matches the matcher's conventional window.
const DefaultWindow = 5 * time.Minute

// Config is the analysis configuration.
type Config struct {
	// Database is the path to the SQLite session warehouse.
	Database string `yaml:"database"`

	// Window is the matching window (e.g. "5m", "90s").
	// Defaults to DefaultWindow when omitted.
	Window Duration `yaml:"window,omitempty"`

	// Range bounds the input collections, inclusive on both ends.
	Range DateRange `yaml:"range"`

	// HypothesesDir points at the CUE hypothesis definitions.
	// Optional; only the hypotheses command needs it.
	HypothesesDir string `yaml:"hypotheses_dir,omitempty"`
}

// DateRange is an inclusive calendar date range.
type DateRange struct {
	From Date `yaml:"from"`
	To   Date `yaml:"to"`
}

// Start returns the first instant of the range in UTC.
func (r DateRange) Start() time.Time {
	return time.Time(r.From)
}

// End returns the last representable instant of the range's final day.
func (r DateRange) End() time.Time {
	return time.Time(r.To).AddDate(0, 0, 1).Add(-time.Microsecond)
}

// Load reads, parses and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Strict decoding catches typos like "widow:" vs "window:".
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Window == 0 {
		cfg.Window = Duration(DefaultWindow)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive")
	}
	if time.Time(c.Range.From).IsZero() || time.Time(c.Range.To).IsZero() {
		return fmt.Errorf("range.from and range.to are required")
	}
	if time.Time(c.Range.To).Before(time.Time(c.Range.From)) {
		return fmt.Errorf("range.to precedes range.from")
	}
	return nil
}

// Duration wraps time.Duration with YAML support for "5m"-style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Date wraps time.Time with YAML support for "2006-01-02" values.
type Date time.Time

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseInLocation("2006-01-02", value.Value, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", value.Value, err)
	}
	*d = Date(parsed)
	return nil
}
