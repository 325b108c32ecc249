// Package geom provides the small geometric vocabulary shared by the
// shadow pipeline: 3D vectors (backed by golang/geo), 2D plane-local
// points, planes with orthonormal bases, and rigid transforms.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vec3 is a 3-component double-precision vector. It aliases r3.Vector so
// the full r3 method set (Dot, Cross, Norm, Normalize, ...) is available.
type Vec3 = r3.Vector

// Tol is the scalar tolerance used for sign tests and degenerate
// denominators.
const Tol = 1e-9

// MergeTol is the default distance below which two 2D points are treated
// as the same point during polygon reconstruction and trimming.
const MergeTol = 1e-6

// V constructs a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Sign classifies d as -1, 0 or +1 with tolerance.
func Sign(d float64) int {
	switch {
	case d > Tol:
		return 1
	case d < -Tol:
		return -1
	}
	return 0
}

// Parallel reports whether a and b point along the same line
// (in either direction).
func Parallel(a, b Vec3) bool {
	return a.Cross(b).Norm() < Tol*a.Norm()*b.Norm()
}

// AlmostEqual reports whether two vectors coincide within tol.
func AlmostEqual(a, b Vec3, tol float64) bool {
	return a.Sub(b).Norm() < tol
}

// Point2 is a point in plane-local 2D coordinates.
type Point2 struct {
	X, Y float64
}

// AlmostEqual reports whether two 2D points coincide within tol.
func (p Point2) AlmostEqual(q Point2, tol float64) bool {
	return math.Abs(p.X-q.X) < tol && math.Abs(p.Y-q.Y) < tol
}

// Sub returns p - q.
func (p Point2) Sub(q Point2) Point2 {
	return Point2{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the distance between two 2D points.
func (p Point2) Dist(q Point2) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Cross2 is the z-component of the cross product of 2D vectors a and b.
func Cross2(a, b Point2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Plane is a point and a unit normal.
type Plane struct {
	Origin Vec3
	Normal Vec3
}

// NewPlane normalizes the supplied normal.
func NewPlane(origin, normal Vec3) Plane {
	return Plane{Origin: origin, Normal: normal.Normalize()}
}

// Basis returns a right-handed orthonormal pair (U, V) spanning the
// plane, so that (U, V, Normal) forms a right-handed frame. For the XY
// plane with normal +Z this yields U=(1,0,0), V=(0,1,0), which keeps
// plane-local coordinates aligned with world axes in the common case.
func (pl Plane) Basis() (u, v Vec3) {
	ref := V(1, 0, 0)
	if math.Abs(pl.Normal.X) > 0.9 {
		ref = V(0, 1, 0)
	}
	// Gram-Schmidt: remove the normal component from the reference axis.
	u = ref.Sub(pl.Normal.Mul(ref.Dot(pl.Normal))).Normalize()
	v = pl.Normal.Cross(u)
	return u, v
}

// LocalUV expresses a 3D point (assumed on or near the plane) in the
// plane-local 2D frame given by Basis.
func (pl Plane) LocalUV(p Vec3) Point2 {
	u, v := pl.Basis()
	d := p.Sub(pl.Origin)
	return Point2{X: d.Dot(u), Y: d.Dot(v)}
}

// DistanceTo returns the signed distance from p to the plane.
func (pl Plane) DistanceTo(p Vec3) float64 {
	return p.Sub(pl.Origin).Dot(pl.Normal)
}
