package shadow

import (
	"github.com/chazu/umbra/pkg/geom"
	"github.com/chazu/umbra/pkg/mesh"
)

// silhouetteEdges finds the edges of one connected component that form
// the shadow outline relative to the light direction: edges where the
// adjacent casting faces change orientation sign against the light, or
// open-boundary edges with a single casting face. Output order is
// unspecified; downstream treats the result as an edge soup.
func silhouetteEdges(m *mesh.Mesh, comp mesh.Component, light geom.Vec3) []mesh.EdgeID {
	var out []mesh.EdgeID
	for _, eid := range comp.Edges {
		e := &m.Edges[eid]
		var signs []int
		for _, fid := range e.Faces {
			f := &m.Faces[fid]
			if !f.CastsShadow {
				continue
			}
			signs = append(signs, geom.Sign(light.Dot(f.Normal)))
		}
		switch len(signs) {
		case 0:
			// no casting face touches this edge
		case 1:
			// open mesh boundary
			out = append(out, eid)
		case 2:
			if signs[0] != signs[1] {
				out = append(out, eid)
			}
		default:
			// Non-manifold input. The majority sign classifies the
			// surface around the edge, making it interior; tolerated
			// rather than rejected so a malformed mesh cannot halt the
			// computation.
			Logger().Warn("non-manifold edge treated as interior",
				"edge", int(eid), "castingFaces", len(signs))
		}
	}
	return out
}
