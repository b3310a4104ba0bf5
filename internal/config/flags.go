package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagSeed     = flag.Int64("seed", 0, "Random seed (0 keeps the configured seed)")
	flagConfigID = flag.Int("config-id", 0, "Surface configuration id 1..4")
	flagRays     = flag.Int("rays", 0, "Rays per grid axis")
	flagShape    = flag.String("shape", "", "Base shape (tetrahedron, cube, sphere, capsule, cylinder, custom)")
	flagOut      = flag.String("out", "", "Dataset output path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
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
	if *flagSeed != 0 {
		cfg.Simulation.Seed = *flagSeed
	}
	if *flagConfigID > 0 {
		cfg.Simulation.ConfigID = *flagConfigID
	}
	if *flagRays > 0 {
		cfg.Simulation.RaysPerAxis = *flagRays
	}
	if *flagShape != "" {
		cfg.Object.Shape = *flagShape
	}
	if *flagOut != "" {
		cfg.Dataset.Path = *flagOut
	}
}
