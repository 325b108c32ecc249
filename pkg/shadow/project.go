package shadow

import (
	"math"

	"github.com/chazu/umbra/pkg/geom"
)

// projector carries the receiving plane, its 2D basis and the light
// direction, all expressed in one mesh's local coordinate frame. The
// plane is transformed once per instance (by the inverse instance
// transform) instead of transforming every mesh vertex to world space.
// The transform is rigid, so dot products computed in the local frame
// equal their world-frame values and the resulting plane-local UV
// coordinates agree across instances.
type projector struct {
	origin geom.Vec3
	normal geom.Vec3
	u, v   geom.Vec3
	light  geom.Vec3
}

func newProjector(plane geom.Plane, light geom.Vec3, instance geom.Transform) projector {
	inv := instance.Inverse()
	u, v := plane.Basis()
	return projector{
		origin: inv.Apply(plane.Origin),
		normal: inv.ApplyDir(plane.Normal),
		u:      inv.ApplyDir(u),
		v:      inv.ApplyDir(v),
		light:  inv.ApplyDir(light),
	}
}

// project intersects the ray {p, light} with the receiving plane and
// returns the hit in plane-local 2D coordinates. Fails with
// ErrDegenerateProjection when the light travels parallel to the
// plane; the caller skips the edge rather than aborting.
func (pr projector) project(p geom.Vec3) (geom.Point2, error) {
	den := pr.light.Dot(pr.normal)
	if math.Abs(den) < geom.Tol {
		return geom.Point2{}, ErrDegenerateProjection
	}
	t := pr.origin.Sub(p).Dot(pr.normal) / den
	hit := p.Add(pr.light.Mul(t))
	d := hit.Sub(pr.origin)
	return geom.Point2{X: d.Dot(pr.u), Y: d.Dot(pr.v)}, nil
}
