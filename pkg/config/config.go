package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/clock"
)

// Config is the full pulsebar configuration.
type Config struct {
	General    GeneralConfig    `toml:"general" yaml:"general"`
	Bar        BarConfig        `toml:"bar" yaml:"bar"`
	Media      MediaConfig      `toml:"media" yaml:"media"`
	Network    NetworkConfig    `toml:"network" yaml:"network"`
	Clock      ClockConfig      `toml:"clock" yaml:"clock"`
	SysMetrics SysMetricsConfig `toml:"sysmetrics" yaml:"sysmetrics"`
	Tailscale  TailscaleConfig  `toml:"tailscale" yaml:"tailscale"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	LogLevel       string   `toml:"log_level" yaml:"log_level"`
	LogFile        string   `toml:"log_file" yaml:"log_file"`
	HealthFile     string   `toml:"health_file" yaml:"health_file"`
	PIDFile        string   `toml:"pid_file" yaml:"pid_file"`
	HealthInterval Duration `toml:"health_interval" yaml:"health_interval"`
	ProbeTimeout   Duration `toml:"probe_timeout" yaml:"probe_timeout"`
}

// BarConfig controls the tick cadence and block spacing.
type BarConfig struct {
	Interval            Duration `toml:"interval" yaml:"interval"`
	SeparatorBlockWidth int      `toml:"separator_block_width" yaml:"separator_block_width"`
}

// MediaConfig controls the media title block.
type MediaConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	Color    string `toml:"color" yaml:"color"`
	MaxWidth int    `toml:"max_width" yaml:"max_width"`
}

// NetworkConfig controls the address block.
type NetworkConfig struct {
	Color string `toml:"color" yaml:"color"`
	Sort  bool   `toml:"sort" yaml:"sort"`
}

// ClockConfig controls the timestamp block. Format is a Go time layout.
type ClockConfig struct {
	Color    string `toml:"color" yaml:"color"`
	Format   string `toml:"format" yaml:"format"`
	Timezone string `toml:"timezone" yaml:"timezone"`
}

// SysMetricsConfig controls the optional load/memory block.
type SysMetricsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Color   string `toml:"color" yaml:"color"`
}

// TailscaleConfig controls the optional tailnet block.
type TailscaleConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Color   string `toml:"color" yaml:"color"`
	Socket  string `toml:"socket" yaml:"socket"`
}

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := ParseLogLevel(c.General.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Bar.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("bar.interval must be positive, got %s", c.Bar.Interval))
	}
	if c.Bar.SeparatorBlockWidth < 0 {
		errs = append(errs, fmt.Errorf("bar.separator_block_width must not be negative, got %d", c.Bar.SeparatorBlockWidth))
	}
	if c.Media.MaxWidth < 0 {
		errs = append(errs, fmt.Errorf("media.max_width must not be negative, got %d", c.Media.MaxWidth))
	}
	for key, color := range map[string]string{
		"media.color":      c.Media.Color,
		"network.color":    c.Network.Color,
		"clock.color":      c.Clock.Color,
		"sysmetrics.color": c.SysMetrics.Color,
		"tailscale.color":  c.Tailscale.Color,
	} {
		if color != "" && !colorPattern.MatchString(color) {
			errs = append(errs, fmt.Errorf("%s: %q is not #RRGGBB or #RRGGBBAA", key, color))
		}
	}
	if _, err := clock.LoadLocation(c.Clock.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("clock.timezone: %w", err))
	}

	return errors.Join(errs...)
}

// Location resolves the configured clock timezone.
func (c *Config) Location() (*time.Location, error) {
	return clock.LoadLocation(c.Clock.Timezone)
}

// ParseLogLevel maps a level name to an slog.Level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("general.log_level: unknown level %q", s)
}
