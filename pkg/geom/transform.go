package geom

import "math"

// Transform is a rigid affine transform: a rotation matrix plus a
// translation. Instances reference a shared mesh definition and carry
// one Transform each; the mesh itself is never mutated.
type Transform struct {
	R [3][3]float64 // rotation (orthonormal)
	T Vec3          // translation
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{R: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Translate returns a pure translation.
func Translate(v Vec3) Transform {
	t := Identity()
	t.T = v
	return t
}

// RotateX returns a rotation about the X axis by deg degrees.
func RotateX(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Transform{R: [3][3]float64{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}}
}

// RotateY returns a rotation about the Y axis by deg degrees.
func RotateY(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Transform{R: [3][3]float64{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}}
}

// RotateZ returns a rotation about the Z axis by deg degrees.
func RotateZ(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Transform{R: [3][3]float64{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}}
}

// Mul composes transforms: (a.Mul(b)).Apply(p) == a.Apply(b.Apply(p)).
func (a Transform) Mul(b Transform) Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a.R[i][k] * b.R[k][j]
			}
			out.R[i][j] = s
		}
	}
	out.T = a.ApplyDir(b.T).Add(a.T)
	return out
}

// Apply transforms a point.
func (a Transform) Apply(p Vec3) Vec3 {
	return a.ApplyDir(p).Add(a.T)
}

// ApplyDir transforms a direction (rotation only, no translation).
func (a Transform) ApplyDir(v Vec3) Vec3 {
	return Vec3{
		X: a.R[0][0]*v.X + a.R[0][1]*v.Y + a.R[0][2]*v.Z,
		Y: a.R[1][0]*v.X + a.R[1][1]*v.Y + a.R[1][2]*v.Z,
		Z: a.R[2][0]*v.X + a.R[2][1]*v.Y + a.R[2][2]*v.Z,
	}
}

// Inverse returns the inverse transform. For a rigid transform this is
// the transposed rotation and a rotated, negated translation.
func (a Transform) Inverse() Transform {
	var inv Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			inv.R[i][j] = a.R[j][i]
		}
	}
	inv.T = inv.ApplyDir(a.T).Mul(-1)
	return inv
}
