package clock

import "math"

// Clip is a named animation with a fixed duration in seconds.
type Clip struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
}

// Timeline accumulates applied animation time and maps it onto looping clips.
type Timeline struct {
	elapsed float64
	frames  int
}

// Step advances the timeline by the delta Advance returns for c and reports
// the applied delta.
func (t *Timeline) Step(frameDelta float64, c Clock) float64 {
	if frameDelta < 0 {
		frameDelta = 0
	}
	applied := Advance(frameDelta, c)
	t.elapsed += applied
	t.frames++
	return applied
}

// Elapsed returns the total animation time applied so far.
func (t *Timeline) Elapsed() float64 { return t.elapsed }

// Frames returns the number of frames stepped, including gated ones.
func (t *Timeline) Frames() int { return t.frames }

// Reset rewinds the timeline to the initial pose.
func (t *Timeline) Reset() {
	t.elapsed = 0
	t.frames = 0
}

// ClipTime returns the local time within clip, which loops. Zero-length clips
// always report zero.
func (t *Timeline) ClipTime(clip Clip) float64 {
	if clip.Duration <= 0 {
		return 0
	}
	return math.Mod(t.elapsed, clip.Duration)
}
