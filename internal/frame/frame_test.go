package frame

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStep(t *testing.T) {
	var calls int
	var total float64
	Step(5, 0.5, func(dt float64) {
		calls++
		total += dt
	})
	if calls != 5 || total != 2.5 {
		t.Fatalf("calls=%d total=%v", calls, total)
	}
	Step(2, -1, func(dt float64) {
		if dt != 0 {
			t.Fatalf("negative delta passed through: %v", dt)
		}
	})
}

func TestDriverMaxFrames(t *testing.T) {
	var deltas []float64
	d := Driver{Interval: time.Millisecond, MaxFrames: 4}
	n, err := d.Run(context.Background(), func(dt float64) { deltas = append(deltas, dt) })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 4 || len(deltas) != 4 {
		t.Fatalf("frames: got %d (%d calls) want 4", n, len(deltas))
	}
	if deltas[0] != 0 {
		t.Fatalf("first delta: got %v want 0", deltas[0])
	}
	for i, dt := range deltas {
		if dt < 0 {
			t.Fatalf("delta %d negative: %v", i, dt)
		}
	}
}

func TestDriverStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := Driver{Interval: time.Millisecond}
	n, err := d.Run(ctx, func(float64) { cancel() })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v want context.Canceled", err)
	}
	if n < 1 {
		t.Fatalf("frames: got %d", n)
	}
}
