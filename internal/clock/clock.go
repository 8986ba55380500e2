// Package clock synchronizes the model's animation timeline with an
// independently playing video.
package clock

// Clock holds the animation playback parameters and the latest time reported
// by the video player.
type Clock struct {
	Speed        float64 `json:"speed"`
	StartTime    float64 `json:"startTime"`
	Running      bool    `json:"running"`
	ExternalTime float64 `json:"externalTime"`
}

// Default returns a running clock at normal speed gated at zero.
func Default() Clock {
	return Clock{Speed: 1, Running: true}
}

// GateOpen reports whether the video has reached the start time.
// The gate is inclusive: ExternalTime == StartTime opens it.
func (c Clock) GateOpen() bool {
	return c.ExternalTime >= c.StartTime
}

// Playing reports whether the animation advances this frame.
func (c Clock) Playing() bool {
	return c.Running && c.GateOpen()
}

// Advance returns how far the animation should move for a frame that took
// frameDelta seconds. Frames with the gate closed or the clock stopped
// contribute nothing; they are not buffered for later.
//
// Speed is expected to be validated (non-negative) by the caller.
func Advance(frameDelta float64, c Clock) float64 {
	if !c.Playing() {
		return 0
	}
	return frameDelta * c.Speed
}
