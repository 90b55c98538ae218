package config

import (
	"flag"

	"github.com/Faultbox/midgard-outline/pkg/outline"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMode      = flag.String("mode", "", "Outline mode: on, off or model")
	flagAngle     = flag.Float64("angle", 0, "Minimum face-normal angle in radians, in (0, pi); 0 keeps the configured threshold")
	flagLogFile   = flag.String("log", "", "Log file path")
	flagOverwrite = flag.Bool("overwrite", false, "Overwrite existing output files")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMode != "" {
		mode, err := outline.ParseMode(*flagMode)
		if err != nil {
			return err
		}
		cfg.Outline.Mode = mode
	}
	if *flagAngle != 0 {
		cfg.Outline.MinimumAngle = *flagAngle
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagOverwrite {
		cfg.Output.Overwrite = true
	}
	return nil
}
