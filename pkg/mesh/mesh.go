// Package mesh holds the shadow caster geometry: an arena-indexed
// polygon mesh whose vertices, edges and faces live in contiguous
// slices and reference each other by integer index. A Mesh is immutable
// once built and may be shared by any number of placed instances.
package mesh

import (
	"fmt"
	"math"

	"github.com/chazu/umbra/pkg/geom"
)

// VertexID indexes into Mesh.Verts.
type VertexID int

// EdgeID indexes into Mesh.Edges.
type EdgeID int

// FaceID indexes into Mesh.Faces.
type FaceID int

// Vertex is a mesh vertex position.
type Vertex struct {
	Pos geom.Vec3
}

// Edge joins exactly two vertices and records its incident faces.
// Well-formed input has at most two incident faces; more are tolerated
// and handled by majority classification during silhouette extraction.
type Edge struct {
	V     [2]VertexID
	Faces []FaceID
}

// Face is an ordered vertex loop with a computed normal and shadow
// flags.
type Face struct {
	Verts          []VertexID
	Edges          []EdgeID
	Normal         geom.Vec3
	CastsShadow    bool
	ReceivesShadow bool
}

// Mesh is an immutable, shareable mesh definition.
type Mesh struct {
	Verts []Vertex
	Edges []Edge
	Faces []Face
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Faces) == 0 && len(m.Edges) == 0
}

// EdgeVec returns the vector from the edge's first to second vertex.
func (m *Mesh) EdgeVec(e EdgeID) geom.Vec3 {
	ed := m.Edges[e]
	return m.Verts[ed.V[1]].Pos.Sub(m.Verts[ed.V[0]].Pos)
}

// FaceLoop returns the positions of a face's vertex loop.
func (m *Mesh) FaceLoop(f FaceID) []geom.Vec3 {
	fc := m.Faces[f]
	out := make([]geom.Vec3, len(fc.Verts))
	for i, v := range fc.Verts {
		out[i] = m.Verts[v].Pos
	}
	return out
}

// Builder accumulates vertices and faces and produces an immutable
// Mesh. Vertices are deduplicated within tol, edges by vertex pair.
type Builder struct {
	m       Mesh
	tol     float64
	vlookup map[[3]int64]VertexID
	elookup map[[2]VertexID]EdgeID
}

// NewBuilder creates a Builder with the given vertex merge tolerance.
// A non-positive tol uses geom.MergeTol.
func NewBuilder(tol float64) *Builder {
	if tol <= 0 {
		tol = geom.MergeTol
	}
	return &Builder{
		tol:     tol,
		vlookup: make(map[[3]int64]VertexID),
		elookup: make(map[[2]VertexID]EdgeID),
	}
}

func (b *Builder) quantize(p geom.Vec3) [3]int64 {
	q := b.tol
	return [3]int64{
		int64(math.Round(p.X / q)),
		int64(math.Round(p.Y / q)),
		int64(math.Round(p.Z / q)),
	}
}

// AddVertex adds a position, returning the index of an existing vertex
// if one lies within the merge tolerance.
func (b *Builder) AddVertex(p geom.Vec3) VertexID {
	key := b.quantize(p)
	if id, ok := b.vlookup[key]; ok {
		return id
	}
	id := VertexID(len(b.m.Verts))
	b.m.Verts = append(b.m.Verts, Vertex{Pos: p})
	b.vlookup[key] = id
	return id
}

func (b *Builder) edge(a, c VertexID) EdgeID {
	if c < a {
		a, c = c, a
	}
	key := [2]VertexID{a, c}
	if id, ok := b.elookup[key]; ok {
		return id
	}
	id := EdgeID(len(b.m.Edges))
	b.m.Edges = append(b.m.Edges, Edge{V: key})
	b.elookup[key] = id
	return id
}

// AddFace adds a face from an ordered vertex loop. The normal is
// computed with Newell's method, so non-planar loops still get a
// sensible average normal. Degenerate loops (fewer than 3 distinct
// vertices) are rejected.
func (b *Builder) AddFace(verts []VertexID, casts, receives bool) (FaceID, error) {
	if len(verts) < 3 {
		return 0, fmt.Errorf("mesh: face needs at least 3 vertices, got %d", len(verts))
	}
	n := newellNormal(&b.m, verts)
	if n.Norm() < geom.Tol {
		return 0, fmt.Errorf("mesh: degenerate face (zero area)")
	}
	fid := FaceID(len(b.m.Faces))
	face := Face{
		Verts:          append([]VertexID(nil), verts...),
		Normal:         n.Normalize(),
		CastsShadow:    casts,
		ReceivesShadow: receives,
	}
	for i := range verts {
		eid := b.edge(verts[i], verts[(i+1)%len(verts)])
		b.m.Edges[eid].Faces = append(b.m.Edges[eid].Faces, fid)
		face.Edges = append(face.Edges, eid)
	}
	b.m.Faces = append(b.m.Faces, face)
	return fid, nil
}

// AddQuad is a convenience wrapper adding a four-vertex casting face
// from raw positions.
func (b *Builder) AddQuad(p0, p1, p2, p3 geom.Vec3) (FaceID, error) {
	return b.AddFace([]VertexID{
		b.AddVertex(p0), b.AddVertex(p1), b.AddVertex(p2), b.AddVertex(p3),
	}, true, false)
}

// AddTriangle adds a three-vertex casting face from raw positions.
func (b *Builder) AddTriangle(p0, p1, p2 geom.Vec3) (FaceID, error) {
	return b.AddFace([]VertexID{
		b.AddVertex(p0), b.AddVertex(p1), b.AddVertex(p2),
	}, true, false)
}

// Build returns the finished mesh. The builder must not be used
// afterwards.
func (b *Builder) Build() *Mesh {
	m := b.m
	b.m = Mesh{}
	return &m
}

func newellNormal(m *Mesh, verts []VertexID) geom.Vec3 {
	var n geom.Vec3
	for i := range verts {
		p := m.Verts[verts[i]].Pos
		q := m.Verts[verts[(i+1)%len(verts)]].Pos
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}
