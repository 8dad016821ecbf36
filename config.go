// File created by olandr (c) 2026.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

package dirwatch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-backed configuration of the dirwatch command. Absent
// fields keep their defaults.
type Config struct {
	// Root is the directory tree to monitor.
	Root string `yaml:"root"`
	// Buffer is the notification channel capacity.
	Buffer int `yaml:"buffer"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Exclude lists glob patterns; a path whose base name or full path
	// matches any of them is excluded from monitoring.
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig gives the configuration used when no file and no flags are
// provided.
func DefaultConfig() Config {
	return Config{
		Root:     ".",
		Buffer:   512,
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work. LoadConfig
// validates on its own; call this again after applying overrides.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if c.Buffer <= 0 {
		return fmt.Errorf("buffer must be positive, got %d", c.Buffer)
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Filter compiles the exclude patterns into a DoNotWatchFn. With no patterns
// it returns nil, meaning nothing is excluded.
func (c Config) Filter() DoNotWatchFn {
	if len(c.Exclude) == 0 {
		return nil
	}
	patterns := append([]string(nil), c.Exclude...)
	return func(path string) bool {
		base := filepath.Base(path)
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, base); ok {
				return true
			}
			if ok, _ := filepath.Match(pattern, path); ok {
				return true
			}
		}
		return false
	}
}

// Level gives the slog level for the configured log_level.
func (c Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
