// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Camera      CameraConfig      `yaml:"camera"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Environment EnvironmentConfig `yaml:"environment"`
	Preview     PreviewConfig     `yaml:"preview"`
	Share       ShareConfig       `yaml:"share"`
	Capture     CaptureConfig     `yaml:"capture"`
	Logging     LoggingConfig     `yaml:"logging"`

	source string
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"`
	FOV        float32 `yaml:"fov"` // degrees
}

// CameraConfig holds camera transition and orbit control settings.
type CameraConfig struct {
	Transition      time.Duration `yaml:"transition"`
	Epsilon         float32       `yaml:"epsilon"`
	MinDistance     float32       `yaml:"min_distance"`
	MaxDistance     float32       `yaml:"max_distance"`
	DragSensitivity float32       `yaml:"drag_sensitivity"`
	ZoomSensitivity float32       `yaml:"zoom_sensitivity"`
	Damping         float32       `yaml:"damping"`
}

// ResourcesConfig controls how superseded GPU resources are released.
type ResourcesConfig struct {
	// ReleaseDelayFrames is how many rendered frames must pass before
	// replaced materials are released.
	ReleaseDelayFrames int `yaml:"release_delay_frames"`
	// LowMemory enables the periodic pool maintenance and GPU buffer compaction.
	LowMemory bool `yaml:"low_memory"`
	// MaintenanceInterval is the number of frames between maintenance passes.
	MaintenanceInterval int `yaml:"maintenance_interval"`
}

// EnvironmentConfig selects the background/lighting environment.
type EnvironmentConfig struct {
	Path string `yaml:"path"` // equirectangular image; empty means flat lighting
}

// PreviewConfig holds the remote camera overlay settings.
type PreviewConfig struct {
	Listen string `yaml:"listen"` // empty disables the websocket feed
}

// ShareConfig holds share link settings.
type ShareConfig struct {
	BaseURL string `yaml:"base_url"`
	Code    string `yaml:"-"` // only set from the command line
	// Last is the configuration saved on the previous exit with -save-config.
	Last string `yaml:"last,omitempty"`
}

// StartCode is the configuration to open with: the command line code, else
// the last saved one.
func (s ShareConfig) StartCode() string {
	if s.Code != "" {
		return s.Code
	}
	return s.Last
}

// CaptureConfig holds screenshot settings.
type CaptureConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			FOV:    45,
		},
		Camera: CameraConfig{
			Transition:      time.Second,
			Epsilon:         1e-3,
			MinDistance:     30,
			MaxDistance:     100,
			DragSensitivity: 0.005,
			ZoomSensitivity: 0.1,
			Damping:         0.05,
		},
		Resources: ResourcesConfig{
			ReleaseDelayFrames:  2,
			LowMemory:           false,
			MaintenanceInterval: 600,
		},
		Share: ShareConfig{
			BaseURL: "http://localhost:3000",
		},
		Capture: CaptureConfig{
			Dir: "screenshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
