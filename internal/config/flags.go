package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile     = flag.String("log", "", "Write logs to this file (rotated)")
	flagExtent      = flag.Float64("extent", 0, "World extent covered by the canvases")
	flagHeightScale = flag.Float64("height-scale", 0, "Height scale applied to stored heights")
	flagHeightSize  = flag.Int("height-size", 0, "Height canvas size in pixels")
	flagStampDir    = flag.String("stamps", "", "Brush stamp directory")
	flagTopology    = flag.String("topology", "", "Reference topology mesh for collision export")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagExtent > 0 {
		cfg.World.Extent = float32(*flagExtent)
	}
	if *flagHeightScale > 0 {
		cfg.World.HeightScale = float32(*flagHeightScale)
	}
	if *flagHeightSize > 0 {
		cfg.Canvas.HeightSize = *flagHeightSize
	}
	if *flagStampDir != "" {
		cfg.Brush.StampDir = *flagStampDir
	}
	if *flagTopology != "" {
		cfg.Export.Topology = *flagTopology
	}
}
