// Package controls defines the input ranges of the host's sliders and fields
// and applies clamped values to the state store.
package controls

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/geom"
)

// Range is a closed interval with a UI step. Max may be +Inf.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Clamp limits v to the range. NaN maps to Min.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

var (
	Position  = Range{Min: -10, Max: 10, Step: 0.1}
	Scale     = Range{Min: 0.1, Max: 10, Step: 0.1}
	Rotation  = Range{Min: 0, Max: 360, Step: 1}
	Speed     = Range{Min: 0, Max: 5, Step: 0.1}
	StartTime = Range{Min: 0, Max: math.Inf(1), Step: 0.1}
)

// Axis selects a vector component.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return X, nil
	case "y", "Y":
		return Y, nil
	case "z", "Z":
		return Z, nil
	}
	return X, fmt.Errorf("unknown axis %q", s)
}

// Target is the store the controls write to.
type Target interface {
	UpdatePosition(fn func(cur mgl64.Vec3) (mgl64.Vec3, error)) error
	UpdateRotation(fn func(cur geom.Euler) (geom.Euler, error)) error
	SetScale(v float64) error
	SetSpeed(v float64) error
	SetStartTime(v float64) error
	ToggleRunning() bool
}

// SetPositionAxis writes one clamped position component and keeps the other
// two as they are.
func SetPositionAxis(t Target, a Axis, v float64) error {
	if a < X || a > Z {
		return fmt.Errorf("position: unknown axis %d", int(a))
	}
	v = Position.Clamp(v)
	return t.UpdatePosition(func(cur mgl64.Vec3) (mgl64.Vec3, error) {
		cur[a] = v
		return cur, nil
	})
}

// SetRotationAxisDegrees converts a degree slider value to radians once and
// writes it to one rotation axis.
func SetRotationAxisDegrees(t Target, a Axis, deg float64) error {
	rad := mgl64.DegToRad(Rotation.Clamp(deg))
	return t.UpdateRotation(func(cur geom.Euler) (geom.Euler, error) {
		switch a {
		case X:
			cur.X = rad
		case Y:
			cur.Y = rad
		case Z:
			cur.Z = rad
		default:
			return cur, fmt.Errorf("rotation: unknown axis %d", int(a))
		}
		return cur, nil
	})
}

// RotationDegrees returns the display value of each rotation axis.
func RotationDegrees(e geom.Euler) mgl64.Vec3 {
	return e.Degrees()
}

// SetScale writes a clamped uniform scale.
func SetScale(t Target, v float64) error {
	return t.SetScale(Scale.Clamp(v))
}

// SetSpeed writes a clamped animation speed.
func SetSpeed(t Target, v float64) error {
	return t.SetSpeed(Speed.Clamp(v))
}

// SetStartTime writes a clamped start time.
func SetStartTime(t Target, v float64) error {
	return t.SetStartTime(StartTime.Clamp(v))
}

// ToggleAnimation flips the running flag.
func ToggleAnimation(t Target) bool {
	return t.ToggleRunning()
}
