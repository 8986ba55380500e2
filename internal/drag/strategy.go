package drag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/geom"
)

// ErrNoIntersection reports that the pointer ray missed the drag plane.
var ErrNoIntersection = errors.New("pointer ray does not hit the drag plane")

// DefaultSensitivity converts pointer pixels to world units in screen-delta mode.
const DefaultSensitivity = 0.01

// Mode names a drag strategy.
type Mode int

const (
	// ModeRayPlane moves the object to where the pointer ray crosses a plane
	// through the object facing the camera. Tracks the pointer exactly under
	// any camera.
	ModeRayPlane Mode = iota
	// ModeScreenDelta adds scaled pointer movement to world x/y. Only matches
	// the pointer for a camera looking straight down -Z.
	ModeScreenDelta
)

func (m Mode) String() string {
	switch m {
	case ModeScreenDelta:
		return "screen-delta"
	default:
		return "ray-plane"
	}
}

// ParseMode parses "ray-plane" or "screen-delta".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ray-plane", "rayplane", "ray":
		return ModeRayPlane, nil
	case "screen-delta", "screendelta", "delta":
		return ModeScreenDelta, nil
	default:
		return ModeRayPlane, fmt.Errorf("drag mode: unsupported value %q", s)
	}
}

// Camera is the view a drag is measured against.
type Camera interface {
	Forward() mgl64.Vec3
	RayFromNDC(x, y float64) (geom.Ray, bool)
}

// Strategy turns pointer input into a new object position.
type Strategy interface {
	Mode() Mode
	// Begin prepares s for a gesture starting at p with the object at pos.
	Begin(s *Session, cam Camera, vp Viewport, p Pointer, pos mgl64.Vec3) error
	// Move returns the position for the move event p given the current
	// position cur.
	Move(s *Session, cam Camera, vp Viewport, p Pointer, cur mgl64.Vec3) (mgl64.Vec3, error)
}

// NewStrategy returns the strategy for m.
func NewStrategy(m Mode, sensitivity float64) Strategy {
	if m == ModeScreenDelta {
		return ScreenDelta{Sensitivity: sensitivity}
	}
	return RayPlane{}
}

// ScreenDelta adds (movementX, -movementY) * Sensitivity to the position's
// x and y. z is never changed.
type ScreenDelta struct {
	Sensitivity float64
}

func (ScreenDelta) Mode() Mode { return ModeScreenDelta }

func (ScreenDelta) Begin(*Session, Camera, Viewport, Pointer, mgl64.Vec3) error { return nil }

func (d ScreenDelta) Move(_ *Session, _ Camera, _ Viewport, p Pointer, cur mgl64.Vec3) (mgl64.Vec3, error) {
	k := d.Sensitivity
	if k == 0 {
		k = DefaultSensitivity
	}
	return mgl64.Vec3{cur[0] + p.MovementX*k, cur[1] - p.MovementY*k, cur[2]}, nil
}

// RayPlane intersects the pointer ray with a plane fixed at gesture start:
// through the object's position, normal to the camera's forward direction.
type RayPlane struct{}

func (RayPlane) Mode() Mode { return ModeRayPlane }

func (RayPlane) Begin(s *Session, cam Camera, vp Viewport, p Pointer, pos mgl64.Vec3) error {
	pl := geom.PlaneFromNormalAndPoint(cam.Forward(), pos)
	s.Plane = &pl
	s.Anchor = pos
	if ray, ok := pointerRay(cam, vp, p); ok {
		s.Ray = &ray
	}
	return nil
}

func (RayPlane) Move(s *Session, cam Camera, vp Viewport, p Pointer, cur mgl64.Vec3) (mgl64.Vec3, error) {
	if s.Plane == nil {
		return cur, ErrNoIntersection
	}
	ray, ok := pointerRay(cam, vp, p)
	if !ok {
		return cur, ErrNoIntersection
	}
	s.Ray = &ray
	hit, ok := s.Plane.IntersectRay(ray)
	if !ok {
		return cur, ErrNoIntersection
	}
	return hit, nil
}

func pointerRay(cam Camera, vp Viewport, p Pointer) (geom.Ray, bool) {
	x, y, ok := vp.NDC(p.ClientX, p.ClientY)
	if !ok {
		return geom.Ray{}, false
	}
	return cam.RayFromNDC(x, y)
}
