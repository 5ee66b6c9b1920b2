// pulsebar writes an i3bar/swaybar status stream to stdout.
//
// Each second it emits one frame with the playing media title, the host's
// IP addresses and the local time. Point the bar's status_command at it:
//
//	bar {
//	    status_command pulsebar
//	}
//
// Usage:
//
//	pulsebar [flags]
//
// Flags:
//
//	--config string   Path to configuration file (default: ~/.config/pulsebar/config.toml)
//	--preview         Render frames for a terminal instead of the bar protocol
//	--verbose         Enable debug logging
//	--version         Print version and exit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/pulsebar/pkg/bar"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/clock"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/media"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/network"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/tailscale"
	"gitlab.com/tinyland/lab/pulsebar/pkg/config"
	"gitlab.com/tinyland/lab/pulsebar/pkg/daemon"
	"gitlab.com/tinyland/lab/pulsebar/pkg/preview"
	"gitlab.com/tinyland/lab/pulsebar/pkg/protocol"
	"gitlab.com/tinyland/lab/pulsebar/pkg/scheduler"
)

// Version information (set via ldflags during build).
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pulsebar: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		verbose     bool
		previewMode bool
	)

	cmd := &cobra.Command{
		Use:           "pulsebar",
		Short:         "Status line generator for i3bar and swaybar",
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, verbose, previewMode)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to configuration file")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	cmd.Flags().BoolVar(&previewMode, "preview", false, "Render frames for a terminal instead of the bar protocol")

	return cmd
}

func run(ctx context.Context, configPath string, verbose, previewMode bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg, verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.General.PIDFile != "" {
		pf, err := daemon.AcquirePIDFile(cfg.General.PIDFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := pf.Release(); err != nil {
				logger.Warn("failed to remove pid file", "error", err)
			}
		}()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !previewMode && isatty.IsTerminal(os.Stdout.Fd()) {
		logger.Info("stdout is a terminal; use --preview for readable output")
	}

	reg, cleanup, err := buildRegistry(cfg, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	var out bar.FrameWriter = protocol.NewWriter(os.Stdout)
	if previewMode {
		out = preview.NewWriter(os.Stdout)
	}

	gen := bar.New(reg, out, bar.Options{
		Style:          cfg.Style(),
		ProbeTimeout:   cfg.General.ProbeTimeout.Duration,
		HealthFile:     cfg.General.HealthFile,
		HealthInterval: cfg.General.HealthInterval.Duration,
		Scheduler:      &scheduler.Scheduler{Period: cfg.Bar.Interval.Duration},
		Logger:         logger,
	})

	err = gen.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("received shutdown signal")
		return nil
	}
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

// newLogger logs to stderr, since stdout carries the status stream, and
// additionally to general.log_file when set.
func newLogger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level, err := config.ParseLogLevel(cfg.General.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.General.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// buildRegistry registers the collectors enabled in cfg. The returned
// cleanup releases the session bus connection.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*collectors.Registry, func(), error) {
	reg := collectors.NewRegistry()
	cleanup := func() {}

	if cfg.Media.Enabled {
		var finder media.PlayerFinder
		mpris, err := media.NewMPRISFinder()
		if err != nil {
			logger.Warn("session bus unavailable, media block disabled", "error", err)
		} else {
			finder = mpris
			cleanup = func() { mpris.Close() }
		}
		if err := reg.Register(media.New(media.Config{MaxWidth: cfg.Media.MaxWidth}, finder)); err != nil {
			return nil, cleanup, err
		}
	}

	if err := reg.Register(network.New(network.Config{Sort: cfg.Network.Sort}, nil)); err != nil {
		return nil, cleanup, err
	}

	if cfg.Tailscale.Enabled {
		if err := reg.Register(tailscale.New(tailscale.Config{SocketPath: cfg.Tailscale.Socket}, nil)); err != nil {
			return nil, cleanup, err
		}
	}

	if cfg.SysMetrics.Enabled {
		if err := reg.Register(sysmetrics.New(nil)); err != nil {
			return nil, cleanup, err
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, cleanup, err
	}
	if err := reg.Register(clock.New(clock.Config{Layout: cfg.Clock.Format, Location: loc})); err != nil {
		return nil, cleanup, err
	}

	logger.Debug("collectors registered", "names", reg.List())
	return reg, cleanup, nil
}
