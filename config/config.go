// Package config loads grouptabs settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/lukemcguire/grouptabs/tabs"
	"github.com/lukemcguire/grouptabs/tld"
)

// RelPath is the config file location relative to the XDG config dirs.
const RelPath = "grouptabs/config.yaml"

// Config holds user settings. Zero values mean "use the default".
type Config struct {
	LogLevel        string   `yaml:"log_level"`
	Colors          []string `yaml:"colors"`
	GroupSingletons bool     `yaml:"group_singletons"`
	HostRate        float64  `yaml:"host_rate"`  // Host calls per second, 0 for unlimited
	HostBurst       int      `yaml:"host_burst"` // Limiter burst
	HistoryDepth    int      `yaml:"history_depth"`
	LookupCacheSize int      `yaml:"lookup_cache_size"`
	StateFile       string   `yaml:"state_file"` // Empty selects the XDG state dir
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		HostBurst:       1,
		HistoryDepth:    tabs.DefaultHistoryDepth,
		LookupCacheSize: tld.DefaultCacheSize,
	}
}

// Load reads the config at path on top of the defaults. An empty path
// searches the XDG config directories; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		found, err := xdg.SearchConfigFile(RelPath)
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the configuration for values the manager cannot use.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.GroupColors(); err != nil {
		return err
	}
	if c.HostRate < 0 {
		return fmt.Errorf("%w: host_rate %v is negative", ErrInvalid, c.HostRate)
	}
	if c.HostBurst < 0 {
		return fmt.Errorf("%w: host_burst %d is negative", ErrInvalid, c.HostBurst)
	}
	if c.HistoryDepth < 0 {
		return fmt.Errorf("%w: history_depth %d is negative", ErrInvalid, c.HistoryDepth)
	}
	if c.LookupCacheSize < 0 {
		return fmt.Errorf("%w: lookup_cache_size %d is negative", ErrInvalid, c.LookupCacheSize)
	}
	return nil
}

// GroupColors returns the configured colour cycle, or nil for the default.
func (c *Config) GroupColors() ([]tabs.Color, error) {
	if len(c.Colors) == 0 {
		return nil, nil
	}
	out := make([]tabs.Color, 0, len(c.Colors))
	for _, name := range c.Colors {
		color, ok := tabs.ParseColor(strings.ToLower(name))
		if !ok {
			return nil, fmt.Errorf("%w: unknown colour %q", ErrInvalid, name)
		}
		out = append(out, color)
	}
	return out, nil
}

// ParseLevel maps a level name to a slog.Level. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "error":
		return slog.LevelError, nil
	case "warn":
		return slog.LevelWarn, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalid, name)
}
