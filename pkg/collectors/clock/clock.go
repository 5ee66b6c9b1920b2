// Package clock provides the collector for the bar's timestamp block.
package clock

import (
	"context"
	"fmt"
	"time"
)

// DefaultLayout renders as YYYY-MM-DD HH:MM:SS.
const DefaultLayout = "2006-01-02 15:04:05"

// Config holds the clock collector options.
type Config struct {
	// Layout is a Go time layout. Empty uses DefaultLayout.
	Layout string

	// Location is the zone the time is shown in. Nil uses time.Local.
	Location *time.Location

	// Now overrides the time source, for tests.
	Now func() time.Time
}

// Collector formats the current time. It cannot fail.
type Collector struct {
	layout string
	loc    *time.Location
	now    func() time.Time
}

// New creates a clock collector, filling unset fields with defaults.
func New(cfg Config) *Collector {
	c := &Collector{
		layout: cfg.Layout,
		loc:    cfg.Location,
		now:    cfg.Now,
	}
	if c.layout == "" {
		c.layout = DefaultLayout
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// LoadLocation resolves a configured zone name. Empty and "Local" mean the
// host zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Name returns the collector identifier.
func (c *Collector) Name() string {
	return "clock"
}

// Healthy always reports true.
func (c *Collector) Healthy() bool {
	return true
}

// Collect returns the formatted time as a string.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	return c.Read(), nil
}

// Read returns the current time in the configured zone and layout.
func (c *Collector) Read() string {
	return Format(c.now(), c.loc, c.layout)
}

// Format renders t in loc using layout.
func Format(t time.Time, loc *time.Location, layout string) string {
	return t.In(loc).Format(layout)
}
