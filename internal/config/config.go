// Package config handles converter settings: defaults, YAML file, CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"img2stl/internal/preview"
	"img2stl/internal/relief"
	"img2stl/internal/stl"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "img2stl.yaml"

// Config holds all configurable settings.
type Config struct {
	Relief  relief.Params `yaml:"relief"`
	Output  OutputConfig  `yaml:"output"`
	Preview PreviewConfig `yaml:"preview"`
	Workers int           `yaml:"workers"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig controls what gets written and where.
type OutputConfig struct {
	Dir     string `yaml:"dir"`      // batch output directory, empty = next to input
	Format  string `yaml:"format"`   // binary or ascii
	MaxSide int    `yaml:"max_side"` // downscale longer image side, 0 = full size
}

// PreviewConfig enables the WebP hillshade written next to each STL.
type PreviewConfig struct {
	Enabled         bool `yaml:"enabled"`
	preview.Options `yaml:",inline"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Relief: relief.DefaultParams(),
		Output: OutputConfig{
			Format: string(stl.Binary),
		},
		Preview: PreviewConfig{
			Options: preview.DefaultOptions(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns defaults merged with the YAML file at path. An empty path
// falls back to DefaultFile in the working directory when it exists. JSON
// files load too, being valid YAML.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Nil
// pointers and zero values mean "not given".
type Flags struct {
	MinThickness *float64
	MaxThickness *float64
	BaseHeight   *float64
	Format       string
	MaxSide      *int
	Preview      *bool
	OutputDir    string
	Workers      int
	LogLevel     string
	LogFile      string
}

// Resolve applies flag overrides and fills in auto-detected defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.MinThickness != nil {
		c.Relief.MinThickness = *flags.MinThickness
	}
	if flags.MaxThickness != nil {
		c.Relief.MaxThickness = *flags.MaxThickness
	}
	if flags.BaseHeight != nil {
		c.Relief.BaseHeight = *flags.BaseHeight
	}
	if flags.Format != "" {
		c.Output.Format = flags.Format
	}
	if flags.MaxSide != nil {
		c.Output.MaxSide = *flags.MaxSide
	}
	if flags.Preview != nil {
		c.Preview.Enabled = *flags.Preview
	}
	if flags.OutputDir != "" {
		c.Output.Dir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}
	if flags.LogFile != "" {
		c.Logging.LogFile = flags.LogFile
	}

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Output.Dir != "" {
		c.Output.Dir = filepath.Clean(c.Output.Dir)
	}
}

// Validate checks the merged settings.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Relief.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := stl.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Output.MaxSide < 0 {
		errs = append(errs, fmt.Errorf("config: max_side must be >= 0, got %d", c.Output.MaxSide))
	}
	if c.Preview.Enabled && c.Preview.PixelsPerUnit <= 0 {
		errs = append(errs, fmt.Errorf("config: preview pixels_per_unit must be > 0, got %g", c.Preview.PixelsPerUnit))
	}
	if c.Preview.Enabled && c.Preview.Supersample < 1 {
		errs = append(errs, fmt.Errorf("config: preview supersample must be >= 1, got %d", c.Preview.Supersample))
	}
	return errors.Join(errs...)
}

// Format returns the parsed output format. Call after Validate.
func (c *Config) Format() stl.Format {
	f, _ := stl.ParseFormat(c.Output.Format)
	return f
}
