// Package meshgen constructs shadow-caster meshes: exact primitives
// built face by face, and tessellated meshes derived from signed
// distance fields.
package meshgen

import (
	"fmt"
	"math"

	"github.com/chazu/umbra/pkg/geom"
	"github.com/chazu/umbra/pkg/mesh"
)

// Box builds a closed axis-aligned box with its minimum corner at the
// origin, so that placement translations work intuitively — placing at
// (10, 0, 0) puts the box's corner at x=10. All faces cast shadows.
func Box(x, y, z float64) (*mesh.Mesh, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("meshgen: box dimensions must be positive, got %g x %g x %g", x, y, z)
	}
	return Prism([]geom.Point2{
		{X: 0, Y: 0}, {X: x, Y: 0}, {X: x, Y: y}, {X: 0, Y: y},
	}, z)
}

// Prism extrudes a simple 2D profile straight up from z=0 to z=height.
// The profile may be wound either way; it is normalized to
// counter-clockwise so the generated faces point outward.
func Prism(profile []geom.Point2, height float64) (*mesh.Mesh, error) {
	if len(profile) < 3 {
		return nil, fmt.Errorf("meshgen: prism profile needs at least 3 points, got %d", len(profile))
	}
	if height <= 0 {
		return nil, fmt.Errorf("meshgen: prism height must be positive, got %g", height)
	}
	var area float64
	for i := range profile {
		p, q := profile[i], profile[(i+1)%len(profile)]
		area += p.X*q.Y - q.X*p.Y
	}
	if math.Abs(area/2) < geom.Tol {
		return nil, fmt.Errorf("meshgen: prism profile has zero area")
	}
	if area < 0 {
		rev := make([]geom.Point2, len(profile))
		for i, p := range profile {
			rev[len(profile)-1-i] = p
		}
		profile = rev
	}

	b := mesh.NewBuilder(0)
	n := len(profile)
	bottom := make([]mesh.VertexID, n)
	top := make([]mesh.VertexID, n)
	for i, p := range profile {
		bottom[i] = b.AddVertex(geom.V(p.X, p.Y, 0))
		top[i] = b.AddVertex(geom.V(p.X, p.Y, height))
	}

	// Bottom winds clockwise seen from above so its normal points down.
	rev := make([]mesh.VertexID, n)
	for i := range bottom {
		rev[n-1-i] = bottom[i]
	}
	if _, err := b.AddFace(rev, true, false); err != nil {
		return nil, err
	}
	if _, err := b.AddFace(top, true, false); err != nil {
		return nil, err
	}
	for i := range profile {
		j := (i + 1) % n
		if _, err := b.AddFace([]mesh.VertexID{bottom[i], bottom[j], top[j], top[i]}, true, false); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Cylinder builds a closed polygonal cylinder standing on z=0, centered
// on the Z axis. Segments below 3 fall back to 32.
func Cylinder(height, radius float64, segments int) (*mesh.Mesh, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("meshgen: cylinder radius must be positive, got %g", radius)
	}
	if segments < 3 {
		segments = 32
	}
	profile := make([]geom.Point2, segments)
	for i := range profile {
		a := 2 * math.Pi * float64(i) / float64(segments)
		profile[i] = geom.Point2{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return Prism(profile, height)
}
