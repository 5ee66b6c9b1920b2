// Package collectors defines the data-source contract for pulsebar and a
// registry that runs sources one at a time and tracks their health. Each
// source (media, network, clock, sysmetrics, tailscale) implements Collector
// and is probed once per tick by the bar generator.
package collectors

import (
	"context"
	"time"
)

// Collector is the interface all data sources implement. Implementations
// live in sub-packages (e.g., pkg/collectors/network) and are registered
// with the Registry at startup.
type Collector interface {
	// Name returns a unique identifier for this collector (e.g., "network").
	Name() string

	// Collect performs one read and returns the data. The returned value is
	// opaque here; consumers type-assert based on the collector name. An
	// error means "no reading this tick" and must never be fatal.
	Collect(ctx context.Context) (interface{}, error)

	// Healthy reports whether the last collection succeeded.
	Healthy() bool
}

// CollectorStatus tracks the runtime state of a single collector. The
// registry updates it after every RunOnce.
type CollectorStatus struct {
	Name        string
	Healthy     bool
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	LastLatency time.Duration
}

// Update carries the result of a single collection.
type Update struct {
	Source    string
	Data      interface{}
	Timestamp time.Time
	Error     error
}
