package clock

import (
	"math"
	"testing"
)

func TestAdvanceStoppedClockIsZero(t *testing.T) {
	c := Clock{Speed: 3, Running: false, ExternalTime: 100}
	for _, dt := range []float64{0, 0.016, 1, 1000} {
		if got := Advance(dt, c); got != 0 {
			t.Fatalf("Advance(%v) on stopped clock: got %v want 0", dt, got)
		}
	}
}

func TestAdvanceGate(t *testing.T) {
	tests := []struct {
		name     string
		external float64
		want     float64
	}{
		{"before start", 4, 0},
		{"at start", 5, 0.2},
		{"after start", 9, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Clock{Speed: 2, StartTime: 5, Running: true, ExternalTime: tt.external}
			got := Advance(0.1, c)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestAdvanceZeroSpeedFreezes(t *testing.T) {
	c := Clock{Speed: 0, Running: true}
	if !c.Playing() {
		t.Fatal("zero speed should still pass the gate")
	}
	if got := Advance(0.5, c); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
}

func TestTimelineDoesNotCatchUp(t *testing.T) {
	var tl Timeline
	c := Clock{Speed: 1, StartTime: 1, Running: true}
	for i := 0; i < 10; i++ {
		c.ExternalTime = float64(i) * 0.25
		tl.Step(0.25, c)
	}
	// Only frames at external 1.0, 1.25, ..., 2.25 pass the gate.
	if got, want := tl.Elapsed(), 1.5; math.Abs(got-want) > 1e-12 {
		t.Fatalf("elapsed: got %v want %v", got, want)
	}
	if tl.Frames() != 10 {
		t.Fatalf("frames: got %d want 10", tl.Frames())
	}
}

func TestTimelineNegativeDeltaIgnored(t *testing.T) {
	var tl Timeline
	if got := tl.Step(-1, Default()); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
	if tl.Elapsed() != 0 {
		t.Fatalf("elapsed: got %v want 0", tl.Elapsed())
	}
}

func TestClipTimeLoops(t *testing.T) {
	var tl Timeline
	tl.Step(2.5, Default())
	if got := tl.ClipTime(Clip{Duration: 1}); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("got %v want 0.5", got)
	}
	if got := tl.ClipTime(Clip{}); got != 0 {
		t.Fatalf("zero clip: got %v want 0", got)
	}
	tl.Reset()
	if tl.Elapsed() != 0 || tl.Frames() != 0 {
		t.Fatal("reset did not rewind")
	}
}
