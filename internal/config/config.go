// Package config handles outline tool configuration loading and management.
package config

import "github.com/Faultbox/midgard-outline/pkg/outline"

// Config holds all tool settings.
type Config struct {
	Outline OutlineConfig `yaml:"outline"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutlineConfig holds outline generation settings.
type OutlineConfig struct {
	Mode outline.Mode `yaml:"mode"`
	// MinimumAngle overrides every other threshold source when non-zero
	// (radians).
	MinimumAngle float64 `yaml:"minimum_angle"`
}

// OutputConfig holds settings for writing processed assets.
type OutputConfig struct {
	Binary    bool `yaml:"binary"`    // Write .glb instead of .gltf when no extension is given
	Overwrite bool `yaml:"overwrite"` // Allow replacing existing files
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Outline: OutlineConfig{
			Mode:         outline.ModeUseModelSettings,
			MinimumAngle: 0,
		},
		Output: OutputConfig{
			Binary:    false,
			Overwrite: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// GeneratorOptions converts the outline settings into generator options.
func (c *Config) GeneratorOptions() []outline.Option {
	opts := []outline.Option{outline.WithMode(c.Outline.Mode)}
	if c.Outline.MinimumAngle > 0 {
		opts = append(opts, outline.WithThreshold(c.Outline.MinimumAngle))
	}
	return opts
}
