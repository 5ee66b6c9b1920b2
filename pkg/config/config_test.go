package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Bar.Interval.Duration != time.Second {
		t.Errorf("Bar.Interval = %v, want 1s", cfg.Bar.Interval)
	}
	if cfg.Bar.SeparatorBlockWidth != 20 {
		t.Errorf("SeparatorBlockWidth = %d, want 20", cfg.Bar.SeparatorBlockWidth)
	}
	if cfg.Media.Color != "#97a891" || cfg.Network.Color != "#91a4a8" || cfg.Clock.Color != "" {
		t.Errorf("colors = %q %q %q", cfg.Media.Color, cfg.Network.Color, cfg.Clock.Color)
	}
	if !cfg.Media.Enabled || cfg.SysMetrics.Enabled || cfg.Tailscale.Enabled {
		t.Error("default should enable media only among optional probes")
	}
	if cfg.Network.Sort {
		t.Error("addresses should keep enumeration order by default")
	}
}

func TestStyleFromDefaults(t *testing.T) {
	s := DefaultConfig().Style()
	if s.MediaColor != "#97a891" || s.NetworkColor != "#91a4a8" || s.ClockColor != "" || s.SeparatorBlockWidth != 20 {
		t.Errorf("Style() = %+v", s)
	}
}

func TestLoadFromReaderTOML(t *testing.T) {
	input := `
[general]
log_level = "debug"
probe_timeout = "250ms"

[bar]
interval = "2s"

[clock]
color = "#ffffff"
timezone = "UTC"

[network]
sort = true

[tailscale]
enabled = true
socket = "/run/tailscale/tailscaled.sock"
`
	cfg, err := LoadFromReader(strings.NewReader(input), FormatTOML)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.General.LogLevel)
	}
	if cfg.General.ProbeTimeout.Duration != 250*time.Millisecond {
		t.Errorf("ProbeTimeout = %v", cfg.General.ProbeTimeout)
	}
	if cfg.Bar.Interval.Duration != 2*time.Second {
		t.Errorf("Interval = %v", cfg.Bar.Interval)
	}
	if cfg.Clock.Color != "#ffffff" || cfg.Clock.Timezone != "UTC" {
		t.Errorf("Clock = %+v", cfg.Clock)
	}
	if !cfg.Network.Sort || !cfg.Tailscale.Enabled {
		t.Error("network.sort and tailscale.enabled should be true")
	}
	// Untouched sections keep their defaults.
	if cfg.Media.Color != "#97a891" || cfg.Bar.SeparatorBlockWidth != 20 {
		t.Errorf("defaults lost: media=%q sep=%d", cfg.Media.Color, cfg.Bar.SeparatorBlockWidth)
	}
}

func TestLoadFromReaderYAML(t *testing.T) {
	input := `
media:
  enabled: false
  max_width: 30
bar:
  interval: 500ms
sysmetrics:
  enabled: true
  color: "#aabbcc"
`
	cfg, err := LoadFromReader(strings.NewReader(input), FormatYAML)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Media.Enabled || cfg.Media.MaxWidth != 30 {
		t.Errorf("Media = %+v", cfg.Media)
	}
	if cfg.Bar.Interval.Duration != 500*time.Millisecond {
		t.Errorf("Interval = %v", cfg.Bar.Interval)
	}
	if !cfg.SysMetrics.Enabled || cfg.SysMetrics.Color != "#aabbcc" {
		t.Errorf("SysMetrics = %+v", cfg.SysMetrics)
	}
	if cfg.Network.Color != "#91a4a8" {
		t.Errorf("network color default lost: %q", cfg.Network.Color)
	}
}

func TestLoadFromReaderEmptyYAML(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Bar.Interval.Duration != time.Second {
		t.Errorf("Interval = %v, want default", cfg.Bar.Interval)
	}
}

func TestLoadFromReaderInvalid(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader(`[bar]
interval = "soon"`), FormatTOML); err == nil {
		t.Error("expected error for bad duration")
	}
	if _, err := LoadFromReader(strings.NewReader("bar: [1, 2"), FormatYAML); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := LoadFromReader(strings.NewReader(`[bar]
interval = "-1s"`), FormatTOML); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(tomlPath, []byte("[media]\ncolor = \"#123456\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(tomlPath)
	if err != nil {
		t.Fatalf("LoadFromFile(toml): %v", err)
	}
	if cfg.Media.Color != "#123456" {
		t.Errorf("Media.Color = %q", cfg.Media.Color)
	}

	yamlPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(yamlPath, []byte("media:\n  color: \"#654321\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadFromFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFromFile(yaml): %v", err)
	}
	if cfg.Media.Color != "#654321" {
		t.Errorf("Media.Color = %q", cfg.Media.Color)
	}
}

func TestLoadFromFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Bar.SeparatorBlockWidth != 20 {
		t.Errorf("SeparatorBlockWidth = %d, want default", cfg.Bar.SeparatorBlockWidth)
	}
}

func TestLoadSearchesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", t.TempDir())
	if err := os.MkdirAll(filepath.Join(dir, "pulsebar"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pulsebar", "config.toml"), []byte("[bar]\nseparator_block_width = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bar.SeparatorBlockWidth != 8 {
		t.Errorf("SeparatorBlockWidth = %d, want 8 from XDG config", cfg.Bar.SeparatorBlockWidth)
	}
}

func TestLoadNoFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bar.Interval.Duration != time.Second {
		t.Errorf("Interval = %v, want default", cfg.Bar.Interval)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PULSEBAR_LOG_LEVEL", "warn")
	t.Setenv("PULSEBAR_HEALTH_FILE", "/tmp/pulsebar-health.json")
	t.Setenv("PULSEBAR_TIMEZONE", "Europe/Paris")

	cfg, err := LoadFromReader(strings.NewReader(""), FormatTOML)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.General.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.General.LogLevel)
	}
	if cfg.General.HealthFile != "/tmp/pulsebar-health.json" {
		t.Errorf("HealthFile = %q", cfg.General.HealthFile)
	}
	if cfg.Clock.Timezone != "Europe/Paris" {
		t.Errorf("Timezone = %q", cfg.Clock.Timezone)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad color", func(c *Config) { c.Media.Color = "green" }, "media.color"},
		{"short color", func(c *Config) { c.Network.Color = "#fff" }, "network.color"},
		{"alpha color ok", func(c *Config) { c.Clock.Color = "#ffffff80" }, ""},
		{"zero interval", func(c *Config) { c.Bar.Interval = Duration{} }, "bar.interval"},
		{"negative separator", func(c *Config) { c.Bar.SeparatorBlockWidth = -1 }, "separator_block_width"},
		{"negative max width", func(c *Config) { c.Media.MaxWidth = -5 }, "max_width"},
		{"unknown zone", func(c *Config) { c.Clock.Timezone = "Mars/Olympus" }, "clock.timezone"},
		{"unknown level", func(c *Config) { c.General.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Media.Color = "x"
	cfg.Bar.SeparatorBlockWidth = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	if !strings.Contains(err.Error(), "media.color") || !strings.Contains(err.Error(), "separator_block_width") {
		t.Errorf("Validate() = %v, want both problems reported", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("")); err != nil || d.Duration != 0 {
		t.Errorf("empty = %v, %v", d, err)
	}
	if err := d.UnmarshalText([]byte("1m30s")); err != nil || d.Duration != 90*time.Second {
		t.Errorf("1m30s = %v, %v", d, err)
	}
	text, _ := d.MarshalText()
	if string(text) != "1m30s" {
		t.Errorf("MarshalText = %q", text)
	}
}
