// Package camera models the viewing camera that projects the overlay model
// into container space.
package camera

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/overlay3d/internal/geom"
)

// Mode selects the projection type.
type Mode int

const (
	Perspective Mode = iota
	Orthographic
)

func (m Mode) String() string {
	switch m {
	case Orthographic:
		return "orthographic"
	default:
		return "perspective"
	}
}

// ParseMode parses "perspective" or "orthographic" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "perspective", "persp":
		return Perspective, nil
	case "orthographic", "ortho":
		return Orthographic, nil
	default:
		return Perspective, fmt.Errorf("camera mode: unsupported value %q", s)
	}
}

// Defaults match the host canvas the overlay was first built against.
const (
	DefaultFOV        = 75.0
	DefaultDistance   = 5.0
	DefaultNear       = 0.1
	DefaultFar        = 1000.0
	DefaultHalfHeight = 5.0
)

// minW guards the perspective divide for points on or behind the eye plane.
const minW = 1e-9

// Camera represents a 3D camera looking from Position towards Target.
type Camera struct {
	mode     Mode
	position mgl64.Vec3
	target   mgl64.Vec3
	up       mgl64.Vec3

	fov        float64 // vertical, degrees (perspective)
	halfHeight float64 // frustum half height in world units (orthographic)
	aspect     float64
	near       float64
	far        float64

	// Cached matrices
	view  mgl64.Mat4
	proj  mgl64.Mat4
	vpInv mgl64.Mat4
	dirty bool

	version uint64
}

// NewPerspective creates a perspective camera. fov is the vertical field of
// view in degrees.
func NewPerspective(position, target mgl64.Vec3, fov, aspect, near, far float64) *Camera {
	return &Camera{
		mode:       Perspective,
		position:   position,
		target:     target,
		up:         mgl64.Vec3{0, 1, 0},
		fov:        fov,
		halfHeight: DefaultHalfHeight,
		aspect:     sanitizeAspect(aspect),
		near:       near,
		far:        far,
		dirty:      true,
	}
}

// NewOrthographic creates an orthographic camera whose frustum spans
// 2*halfHeight world units vertically and 2*halfHeight*aspect horizontally.
func NewOrthographic(position, target mgl64.Vec3, halfHeight, aspect, near, far float64) *Camera {
	return &Camera{
		mode:       Orthographic,
		position:   position,
		target:     target,
		up:         mgl64.Vec3{0, 1, 0},
		fov:        DefaultFOV,
		halfHeight: halfHeight,
		aspect:     sanitizeAspect(aspect),
		near:       near,
		far:        far,
		dirty:      true,
	}
}

// Default returns the perspective camera at (0,0,5) looking at the origin.
func Default() *Camera {
	return NewPerspective(mgl64.Vec3{0, 0, DefaultDistance}, mgl64.Vec3{}, DefaultFOV, 1, DefaultNear, DefaultFar)
}

func sanitizeAspect(aspect float64) float64 {
	if aspect <= 0 || !geom.IsFiniteScalar(aspect) {
		return 1
	}
	return aspect
}

// Mode returns the projection type.
func (c *Camera) Mode() Mode { return c.mode }

// Position returns the eye position.
func (c *Camera) Position() mgl64.Vec3 { return c.position }

// Target returns the point the camera looks at.
func (c *Camera) Target() mgl64.Vec3 { return c.target }

// Aspect returns the width/height ratio of the frustum.
func (c *Camera) Aspect() float64 { return c.aspect }

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float64 { return c.fov }

// Version changes whenever a parameter affecting the projection changes.
func (c *Camera) Version() uint64 { return c.version }

func (c *Camera) touch() {
	c.dirty = true
	c.version++
}

// SetMode switches between perspective and orthographic projection.
func (c *Camera) SetMode(m Mode) {
	if c.mode != m {
		c.mode = m
		c.touch()
	}
}

// SetPosition updates camera position.
func (c *Camera) SetPosition(pos mgl64.Vec3) {
	if c.position != pos {
		c.position = pos
		c.touch()
	}
}

// SetTarget updates camera target.
func (c *Camera) SetTarget(target mgl64.Vec3) {
	if c.target != target {
		c.target = target
		c.touch()
	}
}

// SetFOV updates the vertical field of view (degrees).
func (c *Camera) SetFOV(fov float64) {
	if fov > 0 && fov < 180 && c.fov != fov {
		c.fov = fov
		c.touch()
	}
}

// SetHalfHeight updates the orthographic frustum half height.
func (c *Camera) SetHalfHeight(h float64) {
	if h > 0 && c.halfHeight != h {
		c.halfHeight = h
		c.touch()
	}
}

// SetAspect updates aspect ratio. Non-positive values are ignored so that an
// unmeasured container does not collapse the frustum.
func (c *Camera) SetAspect(aspect float64) {
	if aspect <= 0 || !geom.IsFiniteScalar(aspect) || c.aspect == aspect {
		return
	}
	c.aspect = aspect
	c.touch()
}

// SetClipPlanes updates the near and far planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	if near <= 0 || far <= near {
		return
	}
	if c.near != near || c.far != far {
		c.near, c.far = near, far
		c.touch()
	}
}

func (c *Camera) updateMatrices() {
	if !c.dirty {
		return
	}
	c.view = mgl64.LookAtV(c.position, c.target, c.up)
	switch c.mode {
	case Orthographic:
		hh := c.halfHeight
		hw := hh * c.aspect
		c.proj = mgl64.Ortho(-hw, hw, -hh, hh, c.near, c.far)
	default:
		c.proj = mgl64.Perspective(mgl64.DegToRad(c.fov), c.aspect, c.near, c.far)
	}
	c.vpInv = c.proj.Mul4(c.view).Inv()
	c.dirty = false
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	c.updateMatrices()
	return c.view
}

// ProjectionMatrix returns the camera-to-clip matrix.
func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	c.updateMatrices()
	return c.proj
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	c.updateMatrices()
	return c.proj.Mul4(c.view)
}

// Forward returns the unit view direction. A camera whose target coincides
// with its position looks down -Z.
func (c *Camera) Forward() mgl64.Vec3 {
	d := c.target.Sub(c.position)
	if d.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// Project maps a world point to normalized device coordinates. It reports
// false when the point sits on or behind the eye plane of a perspective
// camera, where the divide would be meaningless.
func (c *Camera) Project(world mgl64.Vec3) (mgl64.Vec3, bool) {
	clip := c.ViewProjection().Mul4x1(world.Vec4(1))
	w := clip.W()
	if w <= minW {
		return mgl64.Vec3{}, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	if !geom.IsFinite(ndc) {
		return mgl64.Vec3{}, false
	}
	return ndc, true
}

// Unproject maps normalized device coordinates (including depth) back to a
// world point.
func (c *Camera) Unproject(ndc mgl64.Vec3) (mgl64.Vec3, bool) {
	c.updateMatrices()
	v := c.vpInv.Mul4x1(ndc.Vec4(1))
	w := v.W()
	if math.Abs(w) <= minW {
		return mgl64.Vec3{}, false
	}
	p := v.Vec3().Mul(1 / w)
	if !geom.IsFinite(p) {
		return mgl64.Vec3{}, false
	}
	return p, true
}

// RayFromNDC returns the world-space ray through an NDC point. Perspective
// rays start at the eye; orthographic rays start on the near plane and run
// along the view direction.
func (c *Camera) RayFromNDC(x, y float64) (geom.Ray, bool) {
	near, ok := c.Unproject(mgl64.Vec3{x, y, -1})
	if !ok {
		return geom.Ray{}, false
	}
	if c.mode == Orthographic {
		return geom.NewRay(near, c.Forward()), true
	}
	far, ok := c.Unproject(mgl64.Vec3{x, y, 1})
	if !ok {
		return geom.Ray{}, false
	}
	dir := far.Sub(c.position)
	if dir.Len() == 0 {
		return geom.Ray{}, false
	}
	return geom.NewRay(c.position, dir), true
}
