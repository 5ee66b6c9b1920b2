package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/clock"
	"gitlab.com/tinyland/lab/pulsebar/pkg/frame"
)

// Format selects the decoder for a config file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/pulsebar/config.toml
//  2. ~/.config/pulsebar/config.toml
//
// If no file exists, returns DefaultConfig() with environment overrides.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. Files ending
// in .yaml or .yml are decoded as YAML, everything else as TOML. A missing
// file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	cfg, err := LoadFromReader(f, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes configuration from r on top of the defaults.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the configuration that reproduces the stock bar:
// media, network and clock blocks, one tick per second.
func DefaultConfig() *Config {
	style := frame.DefaultStyle()
	return &Config{
		General: GeneralConfig{
			LogLevel:       "info",
			HealthInterval: Duration{30 * time.Second},
			ProbeTimeout:   Duration{500 * time.Millisecond},
		},
		Bar: BarConfig{
			Interval:            Duration{time.Second},
			SeparatorBlockWidth: style.SeparatorBlockWidth,
		},
		Media: MediaConfig{
			Enabled: true,
			Color:   style.MediaColor,
		},
		Network: NetworkConfig{
			Color: style.NetworkColor,
		},
		Clock: ClockConfig{
			Color:  style.ClockColor,
			Format: clock.DefaultLayout,
		},
	}
}

// Style returns the frame style described by the configuration.
func (c *Config) Style() frame.Style {
	return frame.Style{
		MediaColor:          c.Media.Color,
		NetworkColor:        c.Network.Color,
		TailscaleColor:      c.Tailscale.Color,
		LoadColor:           c.SysMetrics.Color,
		ClockColor:          c.Clock.Color,
		SeparatorBlockWidth: c.Bar.SeparatorBlockWidth,
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PULSEBAR_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("PULSEBAR_HEALTH_FILE"); v != "" {
		cfg.General.HealthFile = v
	}
	if v := os.Getenv("PULSEBAR_TIMEZONE"); v != "" {
		cfg.Clock.Timezone = v
	}
}

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "pulsebar", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "pulsebar", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
