package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagCode       = flag.String("code", "", "Share code to restore a configuration from")
	flagEnv        = flag.String("env", "", "Environment image path")
	flagListen     = flag.String("listen", "", "Address for the camera position websocket feed")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagLowMemory  = flag.Bool("low-memory", false, "Periodically clear cached GPU resources")
	flagSave       = flag.Bool("save-config", false, "Write the effective config and the last share code back on exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether -save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagCode != "" {
		cfg.Share.Code = *flagCode
	}
	if *flagEnv != "" {
		cfg.Environment.Path = *flagEnv
	}
	if *flagListen != "" {
		cfg.Preview.Listen = *flagListen
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagLowMemory {
		cfg.Resources.LowMemory = true
	}
}
