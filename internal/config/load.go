package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
		cfg.source = configPath
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Sonoir")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Sonoir")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "sonoir")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sonoir")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate rejects settings the viewer cannot run with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Transition <= 0 {
		return fmt.Errorf("camera transition %v must be positive", c.Camera.Transition)
	}
	if c.Camera.Epsilon <= 0 {
		return fmt.Errorf("camera epsilon %v must be positive", c.Camera.Epsilon)
	}
	if c.Camera.MinDistance > c.Camera.MaxDistance {
		return fmt.Errorf("camera min distance %v exceeds max distance %v", c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	if c.Resources.ReleaseDelayFrames < 1 {
		return fmt.Errorf("release delay must be at least one frame, got %d", c.Resources.ReleaseDelayFrames)
	}
	return nil
}
