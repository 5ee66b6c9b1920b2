// Package bar runs the status line: each tick it probes every registered
// collector, assembles the readings into a frame, and writes the frame.
package bar

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/media"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulsebar/pkg/collectors/tailscale"
	"gitlab.com/tinyland/lab/pulsebar/pkg/daemon"
	"gitlab.com/tinyland/lab/pulsebar/pkg/frame"
	"gitlab.com/tinyland/lab/pulsebar/pkg/protocol"
	"gitlab.com/tinyland/lab/pulsebar/pkg/scheduler"
)

// Collector names the generator knows how to place in a frame, in probe
// order. Unregistered names are skipped.
var probeOrder = []string{"media", "network", "tailscale", "sysmetrics", "clock"}

// FrameWriter is the output side of the generator. protocol.Writer is the
// production implementation; preview.Writer renders for a terminal.
type FrameWriter interface {
	WriteHeader(h protocol.Header) error
	WriteFrame(blocks []protocol.Block) error
}

// Options configures a Generator. Zero values take defaults.
type Options struct {
	Style frame.Style

	// ProbeTimeout bounds each collector call. Zero means no bound.
	ProbeTimeout time.Duration

	// HealthFile, when set, receives a collector health snapshot every
	// HealthInterval.
	HealthFile     string
	HealthInterval time.Duration

	Scheduler *scheduler.Scheduler
	Logger    *slog.Logger
}

// Generator produces the status stream.
type Generator struct {
	reg  *collectors.Registry
	out  FrameWriter
	opts Options
	log  *slog.Logger

	started    time.Time
	ticks      int64
	lastHealth time.Time
}

// New creates a Generator probing the collectors in reg and writing to out.
func New(reg *collectors.Registry, out FrameWriter, opts Options) *Generator {
	if opts.Scheduler == nil {
		opts.Scheduler = &scheduler.Scheduler{}
	}
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		reg:     reg,
		out:     out,
		opts:    opts,
		log:     log,
		started: time.Now(),
	}
}

// Run writes the header and then ticks until a write fails or ctx is
// cancelled.
func (g *Generator) Run(ctx context.Context) error {
	if err := g.out.WriteHeader(protocol.DefaultHeader()); err != nil {
		return err
	}
	g.log.Info("status stream started", "collectors", g.reg.List())
	return g.opts.Scheduler.Run(ctx, g.Tick)
}

// Tick probes, assembles and writes one frame. Probe failures only shrink
// or empty the frame; the returned error is always a write failure.
func (g *Generator) Tick(ctx context.Context) error {
	blocks := frame.Assemble(g.Collect(ctx), g.opts.Style)
	if err := g.out.WriteFrame(blocks); err != nil {
		return err
	}
	g.ticks++
	g.maybeWriteHealth()
	return nil
}

// Collect probes every registered collector once and returns the readings.
func (g *Generator) Collect(ctx context.Context) frame.Readings {
	r := frame.Readings{Addresses: []string{}}
	for _, name := range probeOrder {
		if _, ok := g.reg.Get(name); !ok {
			continue
		}
		g.apply(&r, g.reg.RunOnce(ctx, name, g.opts.ProbeTimeout))
	}
	return r
}

func (g *Generator) apply(r *frame.Readings, u collectors.Update) {
	if u.Error != nil {
		g.log.Debug("probe failed", "collector", u.Source, "error", u.Error)
	}

	switch u.Source {
	case "media":
		if t, ok := u.Data.(media.Track); ok && u.Error == nil {
			title := t.Title
			r.Title = &title
		}
	case "network":
		if addrs, ok := u.Data.([]string); ok && u.Error == nil {
			r.Addresses = addrs
		}
	case "tailscale":
		if st, ok := u.Data.(tailscale.Status); ok && u.Error == nil {
			text := st.Text()
			r.Tailscale = &text
		}
	case "sysmetrics":
		// Partial readings arrive with an error and are still shown.
		if m, ok := u.Data.(sysmetrics.Metrics); ok {
			if text := m.Text(); text != "" {
				r.Load = &text
			}
		}
	case "clock":
		if s, ok := u.Data.(string); ok {
			r.Time = s
		}
	}
}

func (g *Generator) maybeWriteHealth() {
	if g.opts.HealthFile == "" {
		return
	}
	now := time.Now()
	if !g.lastHealth.IsZero() && now.Sub(g.lastHealth) < g.opts.HealthInterval {
		return
	}
	g.lastHealth = now

	hs := daemon.NewHealthStatus(g.started, g.ticks, g.reg.AllStatus())
	if err := daemon.WriteHealthFile(g.opts.HealthFile, hs); err != nil {
		g.log.Warn("write health file", "path", g.opts.HealthFile, "error", err)
	}
}
