package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Euler holds rotation angles in radians, applied in XYZ order.
type Euler struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EulerDegrees builds an Euler from angles in degrees.
func EulerDegrees(x, y, z float64) Euler {
	return Euler{X: mgl64.DegToRad(x), Y: mgl64.DegToRad(y), Z: mgl64.DegToRad(z)}
}

// Degrees returns the angles converted to degrees, for display.
func (e Euler) Degrees() mgl64.Vec3 {
	return mgl64.Vec3{mgl64.RadToDeg(e.X), mgl64.RadToDeg(e.Y), mgl64.RadToDeg(e.Z)}
}

// Vec3 returns the angles as a vector.
func (e Euler) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{e.X, e.Y, e.Z}
}

// Matrix returns the rotation matrix Rx * Ry * Rz.
func (e Euler) Matrix() mgl64.Mat4 {
	return mgl64.HomogRotate3DX(e.X).
		Mul4(mgl64.HomogRotate3DY(e.Y)).
		Mul4(mgl64.HomogRotate3DZ(e.Z))
}

// Compose builds a world matrix from position, rotation and a uniform scale.
// Points are scaled first, then rotated, then translated: T * R * S.
func Compose(position mgl64.Vec3, rotation Euler, scale float64) mgl64.Mat4 {
	t := mgl64.Translate3D(position[0], position[1], position[2])
	s := mgl64.Scale3D(scale, scale, scale)
	return t.Mul4(rotation.Matrix()).Mul4(s)
}

// TransformPoint applies an affine matrix to a point (w = 1).
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// IsFiniteScalar reports whether f is neither NaN nor infinite.
func IsFiniteScalar(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
