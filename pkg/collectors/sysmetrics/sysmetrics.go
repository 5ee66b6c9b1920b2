// Package sysmetrics provides a collector for the optional load block. It
// uses gopsutil to read load averages and memory usage on both Darwin and
// Linux without /proc parsing of its own.
package sysmetrics

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// LoadMetrics holds system load averages.
type LoadMetrics struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// Metrics is the snapshot returned by Collect. HasLoad and HasMemory mark
// which halves were read successfully.
type Metrics struct {
	Load              LoadMetrics `json:"load"`
	MemoryUsedPercent float64     `json:"memory_used_percent"`
	HasLoad           bool        `json:"-"`
	HasMemory         bool        `json:"-"`
}

// Text renders the block text, e.g. "load 0.42 mem 37%".
func (m Metrics) Text() string {
	var parts []string
	if m.HasLoad {
		parts = append(parts, fmt.Sprintf("load %.2f", m.Load.Load1))
	}
	if m.HasMemory {
		parts = append(parts, fmt.Sprintf("mem %.0f%%", m.MemoryUsedPercent))
	}
	return strings.Join(parts, " ")
}

// Source reads the raw values. The default uses gopsutil.
type Source interface {
	Load(ctx context.Context) (LoadMetrics, error)
	MemoryUsedPercent(ctx context.Context) (float64, error)
}

// Collector gathers load and memory usage. It satisfies the
// pkg/collectors.Collector interface.
type Collector struct {
	src     Source
	mu      sync.Mutex
	healthy bool
}

// New creates a Collector. A nil src reads from the host via gopsutil.
func New(src Source) *Collector {
	if src == nil {
		src = hostSource{}
	}
	return &Collector{
		src:     src,
		healthy: true, // healthy until proven otherwise
	}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string {
	return "sysmetrics"
}

// Healthy reports whether the last collection produced any data.
func (c *Collector) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *Collector) setHealthy(h bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = h
}

// Collect gathers load and memory. A partial failure still returns the half
// that succeeded together with an error; if both fail no data is returned.
// A cancelled context returns immediately with an error.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var m Metrics
	var errs []string

	if l, err := c.src.Load(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("load: %v", err))
	} else {
		m.Load = l
		m.HasLoad = true
	}

	if pct, err := c.src.MemoryUsedPercent(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("memory: %v", err))
	} else {
		m.MemoryUsedPercent = pct
		m.HasMemory = true
	}

	if len(errs) == 2 {
		c.setHealthy(false)
		return nil, fmt.Errorf("sysmetrics: all sub-collectors failed: %s", strings.Join(errs, "; "))
	}

	c.setHealthy(true)

	if len(errs) > 0 {
		return m, fmt.Errorf("sysmetrics: partial errors: %s", strings.Join(errs, "; "))
	}
	return m, nil
}

type hostSource struct{}

func (hostSource) Load(ctx context.Context) (LoadMetrics, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadMetrics{}, err
	}
	return LoadMetrics{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}, nil
}

func (hostSource) MemoryUsedPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}
