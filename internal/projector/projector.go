// Package projector projects the model's bounding box into container pixels.
package projector

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/geom"
)

var (
	ErrNoObject     = errors.New("no object to project")
	ErrNoCamera     = errors.New("no camera")
	ErrNoContainer  = errors.New("container has no size")
	ErrBehindCamera = errors.New("point is behind the camera")
)

// Camera is the projection used to reach NDC and back.
type Camera interface {
	Project(world mgl64.Vec3) (mgl64.Vec3, bool)
	Unproject(ndc mgl64.Vec3) (mgl64.Vec3, bool)
}

// Size is the container size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether the container has been laid out.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0 && geom.IsFiniteScalar(s.Width) && geom.IsFiniteScalar(s.Height)
}

// Aspect returns width / height, or 1 for an invalid size.
func (s Size) Aspect() float64 {
	if !s.Valid() {
		return 1
	}
	return s.Width / s.Height
}

// Object is the thing being projected: an object-space bound and the world
// matrix placing it.
type Object struct {
	LocalBounds geom.Box3
	World       mgl64.Mat4
}

// Corners holds the eight projected corners in geom.Box3 corner order.
type Corners [geom.NumCorners]geom.Point

// Rect returns the 2D bounding rect of the corners.
func (c Corners) Rect() geom.Rect {
	return geom.RectOfPoints(c[:])
}

// Projection is the full result of projecting an object.
type Projection struct {
	Corners Corners                     `json:"corners"`
	Depth   [geom.NumCorners]float64    `json:"depth"`
	World   [geom.NumCorners]mgl64.Vec3 `json:"-"`
	Bounds  geom.Box3                   `json:"-"`
}

// Rect returns the 2D bounding rect of the projected corners.
func (p Projection) Rect() geom.Rect { return p.Corners.Rect() }

// WorldCorners transforms each local corner by the object's world matrix.
// The eight points are kept individually; a rotated box is not axis aligned.
func WorldCorners(obj *Object) [geom.NumCorners]mgl64.Vec3 {
	var out [geom.NumCorners]mgl64.Vec3
	for i, c := range obj.LocalBounds.Corners() {
		out[i] = geom.TransformPoint(obj.World, c)
	}
	return out
}

// WorldBounds returns the axis-aligned box around the eight world corners.
func WorldBounds(obj *Object) (geom.Box3, error) {
	if obj == nil || obj.LocalBounds.IsEmpty() {
		return geom.Box3{}, ErrNoObject
	}
	w := WorldCorners(obj)
	return geom.BoxOfPoints(w[:]), nil
}

// Project computes the object's world corners and their pixel positions.
// It fails without producing coordinates when the object, camera or
// container is not ready, or when a corner cannot be projected.
func Project(obj *Object, cam Camera, size Size) (Projection, error) {
	if obj == nil || obj.LocalBounds.IsEmpty() {
		return Projection{}, ErrNoObject
	}
	if cam == nil {
		return Projection{}, ErrNoCamera
	}
	if !size.Valid() {
		return Projection{}, fmt.Errorf("%vx%v: %w", size.Width, size.Height, ErrNoContainer)
	}

	var p Projection
	p.World = WorldCorners(obj)
	p.Bounds = geom.BoxOfPoints(p.World[:])
	for i, w := range p.World {
		px, depth, err := ProjectPoint(w, cam, size)
		if err != nil {
			return Projection{}, fmt.Errorf("corner %d: %w", i, err)
		}
		p.Corners[i] = px
		p.Depth[i] = depth
	}
	return p, nil
}

// ComputeProjectedCorners returns the eight corners of obj's bounding box in
// container pixels.
func ComputeProjectedCorners(obj *Object, cam Camera, size Size) (Corners, error) {
	p, err := Project(obj, cam, size)
	if err != nil {
		return Corners{}, err
	}
	return p.Corners, nil
}

// NDCToPixel maps NDC to container pixels with the origin at the top left.
func NDCToPixel(x, y float64, size Size) geom.Point {
	return geom.Point{
		X: (x + 1) / 2 * size.Width,
		Y: (1 - y) / 2 * size.Height,
	}
}

// PixelToNDC is the inverse of NDCToPixel.
func PixelToNDC(pt geom.Point, size Size) (float64, float64, bool) {
	if !size.Valid() {
		return 0, 0, false
	}
	return pt.X/size.Width*2 - 1, 1 - pt.Y/size.Height*2, true
}

// ProjectPoint projects one world point and returns its pixel position and
// NDC depth.
func ProjectPoint(world mgl64.Vec3, cam Camera, size Size) (geom.Point, float64, error) {
	if !size.Valid() {
		return geom.Point{}, 0, ErrNoContainer
	}
	ndc, ok := cam.Project(world)
	if !ok {
		return geom.Point{}, 0, ErrBehindCamera
	}
	return NDCToPixel(ndc.X(), ndc.Y(), size), ndc.Z(), nil
}

// UnprojectPoint recovers the world point at pixel pt and NDC depth.
func UnprojectPoint(pt geom.Point, depth float64, cam Camera, size Size) (mgl64.Vec3, error) {
	x, y, ok := PixelToNDC(pt, size)
	if !ok {
		return mgl64.Vec3{}, ErrNoContainer
	}
	w, ok := cam.Unproject(mgl64.Vec3{x, y, depth})
	if !ok {
		return mgl64.Vec3{}, ErrBehindCamera
	}
	return w, nil
}
