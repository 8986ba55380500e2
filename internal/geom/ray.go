package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// parallelEpsilon bounds |n·d| below which a ray counts as parallel to a plane.
const parallelEpsilon = 1e-9

// Ray is a half-line starting at Origin. Direction is unit length.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay returns a ray from origin towards dir. dir is normalized.
func NewRay(origin, dir mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Plane is the set of points p with Normal·p + Constant = 0. Normal is unit length.
type Plane struct {
	Normal   mgl64.Vec3
	Constant float64
}

// PlaneFromNormalAndPoint returns the plane through point perpendicular to normal.
func PlaneFromNormalAndPoint(normal, point mgl64.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Constant: -n.Dot(point)}
}

// IntersectRay returns the point where r crosses the plane. It reports false
// when the ray is parallel to the plane, points away from it, or the normal
// is degenerate.
func (pl Plane) IntersectRay(r Ray) (mgl64.Vec3, bool) {
	if pl.Normal.Len() == 0 {
		return mgl64.Vec3{}, false
	}
	denom := pl.Normal.Dot(r.Direction)
	if math.Abs(denom) < parallelEpsilon {
		return mgl64.Vec3{}, false
	}
	t := -(pl.Normal.Dot(r.Origin) + pl.Constant) / denom
	if t < 0 || !IsFiniteScalar(t) {
		return mgl64.Vec3{}, false
	}
	p := r.At(t)
	if !IsFinite(p) {
		return mgl64.Vec3{}, false
	}
	return p, true
}
