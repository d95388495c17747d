package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Save writes a config that was not loaded from a file.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Source returns the file the config was loaded from, or "" for defaults.
func (c *Config) Source() string {
	return c.source
}

// Remember records code as the configuration to reopen next time.
func (c *Config) Remember(code string) {
	c.Share.Last = code
}

// Save writes the config back to the file it was loaded from, falling back to
// DefaultPath. It returns the path written.
func (c *Config) Save() (string, error) {
	path := c.source
	if path == "" {
		path = DefaultPath()
	}
	if err := c.SaveTo(path); err != nil {
		return "", err
	}
	c.source = path
	return path, nil
}

// SaveTo replaces the file at path with the config. The new content is written
// to a temporary file in the same directory and renamed into place.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving config to %s: %w", path, err)
	}
	return nil
}
