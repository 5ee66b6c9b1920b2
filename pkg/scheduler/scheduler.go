// Package scheduler drives the tick loop on wall-clock period boundaries.
//
// The delay after each tick is measured from the boundary the tick started
// in, not a fixed period, so processing time never accumulates as drift:
// a tick that starts at 12:00:00.300 and finishes instantly sleeps 700ms.
package scheduler

import (
	"context"
	"time"
)

// DefaultPeriod is one tick per second.
const DefaultPeriod = time.Second

// TickFunc performs one tick. A non-nil error stops the scheduler.
type TickFunc func(ctx context.Context) error

// Delay returns how long to sleep at now so the next tick lands on the
// first period boundary after the one tickStart fell in. It is never
// negative: a tick that overran its period yields zero.
func Delay(tickStart, now time.Time, period time.Duration) time.Duration {
	if period <= 0 {
		period = DefaultPeriod
	}
	next := tickStart.Truncate(period).Add(period)
	d := next.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Scheduler runs a TickFunc once per Period, aligned to wall-clock
// boundaries. Zero-value fields take defaults.
type Scheduler struct {
	Period time.Duration

	// Now returns the current wall-clock time. Defaults to time.Now.
	Now func() time.Time

	// Sleep blocks for d or until ctx is done. Defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Run ticks until tick fails or ctx is cancelled, returning the tick error
// or ctx.Err(). There is no other way out of the loop.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	period := s.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	now := s.Now
	if now == nil {
		now = time.Now
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for {
		start := now()
		if err := tick(ctx); err != nil {
			return err
		}
		if err := sleep(ctx, Delay(start, now(), period)); err != nil {
			return err
		}
	}
}

// Sleep waits for d, returning early with ctx.Err() if ctx is done. A
// non-positive d still yields to a cancelled context.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
