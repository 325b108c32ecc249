package mesh

// Component is a maximal connected subset of a mesh's edges and faces.
// Two elements are connected when they share a vertex. Components are
// computed once per shadow computation and discarded afterwards.
type Component struct {
	Edges []EdgeID
	Faces []FaceID
}

// Components flood-fills the mesh into connected components. An empty
// mesh yields nil. Every edge and face lands in exactly one component;
// faces whose edges were already claimed stay with their edges'
// component.
func (m *Mesh) Components() []Component {
	if m == nil || (len(m.Edges) == 0 && len(m.Faces) == 0) {
		return nil
	}

	// Vertex incidence: which edges touch each vertex. Faces reach
	// their component through their edges, which cover every face
	// vertex pair.
	incident := make([][]EdgeID, len(m.Verts))
	for ei := range m.Edges {
		e := &m.Edges[ei]
		incident[e.V[0]] = append(incident[e.V[0]], EdgeID(ei))
		incident[e.V[1]] = append(incident[e.V[1]], EdgeID(ei))
	}

	edgeSeen := make([]bool, len(m.Edges))
	faceSeen := make([]bool, len(m.Faces))
	var comps []Component

	for start := range m.Edges {
		if edgeSeen[start] {
			continue
		}
		var comp Component
		queue := []EdgeID{EdgeID(start)}
		edgeSeen[start] = true
		for len(queue) > 0 {
			eid := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			comp.Edges = append(comp.Edges, eid)

			e := &m.Edges[eid]
			for _, fid := range e.Faces {
				if faceSeen[fid] {
					continue
				}
				faceSeen[fid] = true
				comp.Faces = append(comp.Faces, fid)
			}
			for _, v := range e.V {
				for _, next := range incident[v] {
					if !edgeSeen[next] {
						edgeSeen[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
