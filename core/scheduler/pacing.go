// ABOUTME: Pacing primitives for refresh passes: fetch jitter and idle yields
// ABOUTME: Yielders abstract the host's run-when-idle facility behind one method

package scheduler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleFallback is the pause used when the host offers no idle signal
const DefaultIdleFallback = 200 * time.Millisecond

// jitter returns a random pause in [JitterMin, JitterMax]
func (s *Scheduler) jitter() time.Duration {
	span := int64(s.cfg.JitterMax - s.cfg.JitterMin)
	if span <= 0 {
		return s.cfg.JitterMin
	}
	return s.cfg.JitterMin + time.Duration(s.randN(span+1))
}

// sleepContext sleeps for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TimerYielder waits a fixed delay, standing in for a real idle callback
type TimerYielder struct {
	delay time.Duration
}

// NewTimerYielder creates a yielder with the given delay; non-positive means DefaultIdleFallback
func NewTimerYielder(delay time.Duration) *TimerYielder {
	if delay <= 0 {
		delay = DefaultIdleFallback
	}
	return &TimerYielder{delay: delay}
}

// Yield waits for the delay or until ctx is done
func (y *TimerYielder) Yield(ctx context.Context) error {
	return sleepContext(ctx, y.delay)
}

// ImmediateYielder returns at once; meant for tests and batch tools
type ImmediateYielder struct{}

// Yield only reports context cancellation
func (ImmediateYielder) Yield(ctx context.Context) error {
	return ctx.Err()
}

// RateYielder paces regenerations with a token bucket so bursts of work
// spread out across the host's idle time
type RateYielder struct {
	limiter *rate.Limiter
}

// NewRateYielder allows perSecond regenerations with the given burst
func NewRateYielder(perSecond float64, burst int) *RateYielder {
	if burst <= 0 {
		burst = 1
	}
	return &RateYielder{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Yield waits for a token
func (y *RateYielder) Yield(ctx context.Context) error {
	return y.limiter.Wait(ctx)
}

// YielderFunc adapts a function to an idle yielder
type YielderFunc func(ctx context.Context) error

// Yield calls f(ctx)
func (f YielderFunc) Yield(ctx context.Context) error {
	return f(ctx)
}
