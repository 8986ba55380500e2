package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NumCorners is the number of corners of a Box3.
const NumCorners = 8

// Box3 is an axis-aligned box in 3D.
// A box whose Max is less than its Min on any axis is empty.
type Box3 struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyBox returns a box that contains nothing and absorbs the first point
// passed to ExpandByPoint.
func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// NewBox returns the box spanning min and max, reordering components so that
// Min <= Max on every axis.
func NewBox(a, b mgl64.Vec3) Box3 {
	return Box3{
		Min: mgl64.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])},
		Max: mgl64.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])},
	}
}

// CubeBox returns a box of the given edge length centered on the origin.
func CubeBox(size float64) Box3 {
	h := size / 2
	return Box3{Min: mgl64.Vec3{-h, -h, -h}, Max: mgl64.Vec3{h, h, h}}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// ExpandByPoint returns the smallest box containing b and p.
func (b Box3) ExpandByPoint(p mgl64.Vec3) Box3 {
	return Box3{
		Min: mgl64.Vec3{min(b.Min[0], p[0]), min(b.Min[1], p[1]), min(b.Min[2], p[2])},
		Max: mgl64.Vec3{max(b.Max[0], p[0]), max(b.Max[1], p[1]), max(b.Max[2], p[2])},
	}
}

// Union returns the smallest box containing both boxes.
func (b Box3) Union(other Box3) Box3 {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return b.ExpandByPoint(other.Min).ExpandByPoint(other.Max)
}

// Center returns the center point of the box.
func (b Box3) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the edge lengths of the box.
func (b Box3) Size() mgl64.Vec3 {
	if b.IsEmpty() {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Translate returns the box moved by offset.
func (b Box3) Translate(offset mgl64.Vec3) Box3 {
	return Box3{Min: b.Min.Add(offset), Max: b.Max.Add(offset)}
}

// Corner returns corner i of the box. Bit 0 of i selects x, bit 1 selects y
// and bit 2 selects z; a clear bit picks Min and a set bit picks Max. Corner 0
// is all-min and corner 7 is all-max.
func (b Box3) Corner(i int) mgl64.Vec3 {
	c := b.Min
	if i&1 != 0 {
		c[0] = b.Max[0]
	}
	if i&2 != 0 {
		c[1] = b.Max[1]
	}
	if i&4 != 0 {
		c[2] = b.Max[2]
	}
	return c
}

// Corners returns all eight corners in Corner order.
func (b Box3) Corners() [NumCorners]mgl64.Vec3 {
	var out [NumCorners]mgl64.Vec3
	for i := range out {
		out[i] = b.Corner(i)
	}
	return out
}

// Transform transforms all eight corners by m and returns their axis-aligned
// bounding box.
func (b Box3) Transform(m mgl64.Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(TransformPoint(m, c))
	}
	return out
}

// BoxOfPoints returns the bounding box of pts.
func BoxOfPoints(pts []mgl64.Vec3) Box3 {
	out := EmptyBox()
	for _, p := range pts {
		out = out.ExpandByPoint(p)
	}
	return out
}
