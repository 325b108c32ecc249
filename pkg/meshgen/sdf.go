package meshgen

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/umbra/pkg/geom"
	"github.com/chazu/umbra/pkg/mesh"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// FromSDF tessellates a signed distance field into a caster mesh using
// marching cubes. Shared vertices are merged by the mesh builder, which
// reconnects the triangle soup into a surface with proper edge
// adjacency; sliver triangles that collapse under the merge tolerance
// are skipped. A non-positive cells count uses the default resolution.
func FromSDF(s sdf.SDF3, cells int) (*mesh.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("meshgen: nil SDF")
	}
	if cells <= 0 {
		cells = defaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("meshgen: tessellation produced no triangles")
	}

	b := mesh.NewBuilder(0)
	for _, tri := range triangles {
		p0 := geom.V(tri[0].X, tri[0].Y, tri[0].Z)
		p1 := geom.V(tri[1].X, tri[1].Y, tri[1].Z)
		p2 := geom.V(tri[2].X, tri[2].Y, tri[2].Z)
		if _, err := b.AddTriangle(p0, p1, p2); err != nil {
			continue // degenerate sliver, drop it
		}
	}
	m := b.Build()
	if m.IsEmpty() {
		return nil, fmt.Errorf("meshgen: tessellation produced only degenerate triangles")
	}
	return m, nil
}

// Sphere tessellates a sphere of the given radius centered at the
// origin.
func Sphere(radius float64, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("meshgen: %w", err)
	}
	return FromSDF(s, cells)
}
