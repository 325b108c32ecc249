package geom

import (
	"math"
	"testing"
)

func TestBasisRightHanded(t *testing.T) {
	planes := []Plane{
		NewPlane(V(0, 0, 0), V(0, 0, 1)),
		NewPlane(V(1, 2, 3), V(1, 0, 0)),
		NewPlane(V(0, 0, 0), V(1, 1, 1)),
		NewPlane(V(5, -2, 0), V(0, -1, 0)),
	}
	for _, pl := range planes {
		u, v := pl.Basis()
		if math.Abs(u.Norm()-1) > 1e-12 || math.Abs(v.Norm()-1) > 1e-12 {
			t.Errorf("basis of %v not unit length: |u|=%v |v|=%v", pl.Normal, u.Norm(), v.Norm())
		}
		if math.Abs(u.Dot(v)) > 1e-12 {
			t.Errorf("basis of %v not orthogonal: u.v=%v", pl.Normal, u.Dot(v))
		}
		if !AlmostEqual(u.Cross(v), pl.Normal, 1e-9) {
			t.Errorf("basis of %v not right-handed: u x v = %v", pl.Normal, u.Cross(v))
		}
	}
}

func TestBasisXYPlaneIsAxisAligned(t *testing.T) {
	pl := NewPlane(V(0, 0, 0), V(0, 0, 1))
	u, v := pl.Basis()
	if !AlmostEqual(u, V(1, 0, 0), 1e-12) {
		t.Errorf("U = %v, want (1,0,0)", u)
	}
	if !AlmostEqual(v, V(0, 1, 0), 1e-12) {
		t.Errorf("V = %v, want (0,1,0)", v)
	}
	p := pl.LocalUV(V(2.5, -1.5, 0))
	if !p.AlmostEqual(Point2{2.5, -1.5}, 1e-12) {
		t.Errorf("LocalUV = %v, want (2.5,-1.5)", p)
	}
}

func TestSign(t *testing.T) {
	cases := []struct {
		d    float64
		want int
	}{
		{1, 1}, {-1, -1}, {0, 0}, {Tol / 2, 0}, {-Tol / 2, 0}, {2 * Tol, 1},
	}
	for _, c := range cases {
		if got := Sign(c.d); got != c.want {
			t.Errorf("Sign(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Translate(V(3, -2, 7)).Mul(RotateZ(37)).Mul(RotateX(-12))
	inv := tr.Inverse()
	pts := []Vec3{V(0, 0, 0), V(1, 2, 3), V(-5, 0.5, 100)}
	for _, p := range pts {
		q := inv.Apply(tr.Apply(p))
		if !AlmostEqual(p, q, 1e-9) {
			t.Errorf("round trip of %v gave %v", p, q)
		}
	}
}

func TestTransformRotateZ(t *testing.T) {
	tr := RotateZ(90)
	got := tr.Apply(V(1, 0, 0))
	if !AlmostEqual(got, V(0, 1, 0), 1e-12) {
		t.Errorf("RotateZ(90) applied to x axis = %v, want (0,1,0)", got)
	}
}

func TestTransformCompositionOrder(t *testing.T) {
	// Translate after rotate: point on x axis rotates to y, then shifts.
	tr := Translate(V(10, 0, 0)).Mul(RotateZ(90))
	got := tr.Apply(V(1, 0, 0))
	if !AlmostEqual(got, V(10, 1, 0), 1e-12) {
		t.Errorf("composed transform = %v, want (10,1,0)", got)
	}
}

func TestParallel(t *testing.T) {
	if !Parallel(V(0, 0, 2), V(0, 0, -5)) {
		t.Error("anti-parallel vectors should report parallel")
	}
	if Parallel(V(1, 0, 0), V(0, 1, 0)) {
		t.Error("orthogonal vectors reported parallel")
	}
}
