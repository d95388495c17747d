package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Camera.Transition != time.Second {
		t.Errorf("expected transition 1s, got %v", cfg.Camera.Transition)
	}
	if cfg.Camera.MinDistance != 30 || cfg.Camera.MaxDistance != 100 {
		t.Errorf("expected orbit distance 30..100, got %v..%v", cfg.Camera.MinDistance, cfg.Camera.MaxDistance)
	}

	if cfg.Resources.ReleaseDelayFrames != 2 {
		t.Errorf("expected release delay 2 frames, got %d", cfg.Resources.ReleaseDelayFrames)
	}
	if cfg.Resources.LowMemory {
		t.Error("expected low memory mode off by default")
	}

	if cfg.Environment.Path != "" {
		t.Errorf("expected flat lighting by default, got %s", cfg.Environment.Path)
	}
	if cfg.Preview.Listen != "" {
		t.Errorf("expected preview feed disabled, got %s", cfg.Preview.Listen)
	}
	if cfg.Capture.Dir != "screenshots" {
		t.Errorf("expected screenshots dir, got %s", cfg.Capture.Dir)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144

camera:
  transition: 750ms
  epsilon: 0.01
  min_distance: 20
  max_distance: 80

resources:
  release_delay_frames: 3
  low_memory: true
  maintenance_interval: 120

environment:
  path: "env/warehouse.png"

preview:
  listen: ":8080"

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.FPSLimit != 144 {
		t.Errorf("expected fps limit 144, got %d", cfg.Window.FPSLimit)
	}
	if cfg.Camera.Transition != 750*time.Millisecond {
		t.Errorf("expected transition 750ms, got %v", cfg.Camera.Transition)
	}
	if cfg.Camera.Epsilon != 0.01 {
		t.Errorf("expected epsilon 0.01, got %v", cfg.Camera.Epsilon)
	}
	if cfg.Camera.DragSensitivity != 0.005 {
		t.Errorf("unset drag sensitivity should keep default, got %v", cfg.Camera.DragSensitivity)
	}
	if cfg.Resources.ReleaseDelayFrames != 3 || !cfg.Resources.LowMemory || cfg.Resources.MaintenanceInterval != 120 {
		t.Errorf("unexpected resources config: %+v", cfg.Resources)
	}
	if cfg.Environment.Path != "env/warehouse.png" {
		t.Errorf("expected environment path, got %s", cfg.Environment.Path)
	}
	if cfg.Preview.Listen != ":8080" {
		t.Errorf("expected listen :8080, got %s", cfg.Preview.Listen)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"zero transition", func(c *Config) { c.Camera.Transition = 0 }},
		{"negative epsilon", func(c *Config) { c.Camera.Epsilon = -1 }},
		{"inverted distance", func(c *Config) { c.Camera.MinDistance = 200 }},
		{"no release delay", func(c *Config) { c.Resources.ReleaseDelayFrames = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "code flag",
			setup: func() { *flagCode = "AbBa" },
			verify: func(cfg *Config) {
				if cfg.Share.Code != "AbBa" {
					t.Errorf("expected share code AbBa, got %s", cfg.Share.Code)
				}
			},
			teardown: func() { *flagCode = "" },
		},
		{
			name:  "env and listen flags",
			setup: func() { *flagEnv = "studio.png"; *flagListen = ":9000" },
			verify: func(cfg *Config) {
				if cfg.Environment.Path != "studio.png" {
					t.Errorf("expected env studio.png, got %s", cfg.Environment.Path)
				}
				if cfg.Preview.Listen != ":9000" {
					t.Errorf("expected listen :9000, got %s", cfg.Preview.Listen)
				}
			},
			teardown: func() { *flagEnv = ""; *flagListen = "" },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name:  "width and height flags",
			setup: func() { *flagWidth = 2560; *flagHeight = 1440 },
			verify: func(cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() { *flagWidth = 0; *flagHeight = 0 },
		},
		{
			name:  "low memory flag",
			setup: func() { *flagLowMemory = true },
			verify: func(cfg *Config) {
				if !cfg.Resources.LowMemory {
					t.Error("expected low memory mode with flag")
				}
			},
			teardown: func() { *flagLowMemory = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Resources.LowMemory = true
	cfg.Share.Code = "ignored"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !loaded.Resources.LowMemory {
		t.Error("low memory setting was not persisted")
	}
	if loaded.Share.Code != "" {
		t.Errorf("share code should never be persisted, got %q", loaded.Share.Code)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only config.yaml after save, found %d entries", len(entries))
	}
}

func TestSaveWritesBackToLoadedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "viewer.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 1600\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagCode = "1AbBa"
	defer func() {
		*flagConfig = ""
		*flagCode = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Source() != configPath {
		t.Fatalf("expected source %s, got %q", configPath, cfg.Source())
	}
	if got := cfg.Share.StartCode(); got != "1AbBa" {
		t.Errorf("command line code should win, got %q", got)
	}

	cfg.Remember("1XyZw")
	path, err := cfg.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if path != configPath {
		t.Errorf("expected save to %s, got %s", configPath, path)
	}

	*flagCode = ""
	reloaded, err := Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Window.Width != 1600 {
		t.Errorf("expected width 1600 to survive, got %d", reloaded.Window.Width)
	}
	if got := reloaded.Share.StartCode(); got != "1XyZw" {
		t.Errorf("expected remembered code 1XyZw, got %q", got)
	}
}
