// Package frame drives per-frame callbacks at a fixed or real-time cadence.
package frame

import (
	"context"
	"time"
)

// Func is called once per frame with the seconds elapsed since the previous
// frame. The delta is never negative.
type Func func(deltaSeconds float64)

// Step calls fn n times with a fixed delta.
func Step(n int, dt float64, fn Func) {
	if dt < 0 {
		dt = 0
	}
	for i := 0; i < n; i++ {
		fn(dt)
	}
}

// DefaultInterval approximates a 60 Hz display.
const DefaultInterval = time.Second / 60

// Driver ticks fn in real time until the context is done.
type Driver struct {
	Interval time.Duration
	// MaxFrames stops the driver after this many frames when positive.
	MaxFrames int
}

// Run blocks, calling fn on every tick. The first frame has a zero delta.
// It returns the number of frames run and ctx.Err() when cancelled, or nil
// when MaxFrames was reached.
func (d Driver) Run(ctx context.Context, fn Func) (int, error) {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	last := time.Now()
	fn(0)
	frames++
	for d.MaxFrames <= 0 || frames < d.MaxFrames {
		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			if delta < 0 {
				delta = 0
			}
			last = now
			fn(delta)
			frames++
		}
	}
	return frames, nil
}
