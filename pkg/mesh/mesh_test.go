package mesh

import (
	"math"
	"testing"

	"github.com/chazu/umbra/pkg/geom"
)

// quad adds a unit square face in the XY plane at height z, wound CCW
// seen from +Z so the normal points up.
func quad(t *testing.T, b *Builder, z float64) FaceID {
	t.Helper()
	fid, err := b.AddQuad(
		geom.V(0, 0, z), geom.V(1, 0, z), geom.V(1, 1, z), geom.V(0, 1, z),
	)
	if err != nil {
		t.Fatalf("AddQuad: %v", err)
	}
	return fid
}

func TestBuilderDedupsVertices(t *testing.T) {
	b := NewBuilder(0)
	a := b.AddVertex(geom.V(1, 2, 3))
	c := b.AddVertex(geom.V(1, 2, 3+1e-9))
	if a != c {
		t.Errorf("near-coincident vertices got distinct ids %d, %d", a, c)
	}
	d := b.AddVertex(geom.V(1, 2, 4))
	if d == a {
		t.Error("distinct vertices merged")
	}
}

func TestFaceNormal(t *testing.T) {
	b := NewBuilder(0)
	fid := quad(t, b, 0)
	m := b.Build()
	n := m.Faces[fid].Normal
	if !geom.AlmostEqual(n, geom.V(0, 0, 1), 1e-12) {
		t.Errorf("face normal = %v, want +Z", n)
	}
}

func TestDegenerateFaceRejected(t *testing.T) {
	b := NewBuilder(0)
	v0 := b.AddVertex(geom.V(0, 0, 0))
	v1 := b.AddVertex(geom.V(1, 0, 0))
	if _, err := b.AddFace([]VertexID{v0, v1, v0}, true, false); err == nil {
		t.Error("expected error for zero-area face")
	}
}

func TestEdgesSharedBetweenFaces(t *testing.T) {
	b := NewBuilder(0)
	// Two triangles sharing the diagonal of the unit square.
	if _, err := b.AddTriangle(geom.V(0, 0, 0), geom.V(1, 0, 0), geom.V(1, 1, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddTriangle(geom.V(0, 0, 0), geom.V(1, 1, 0), geom.V(0, 1, 0)); err != nil {
		t.Fatal(err)
	}
	m := b.Build()
	if len(m.Verts) != 4 {
		t.Errorf("vertex count = %d, want 4", len(m.Verts))
	}
	if len(m.Edges) != 5 {
		t.Errorf("edge count = %d, want 5", len(m.Edges))
	}
	shared := 0
	for _, e := range m.Edges {
		if len(e.Faces) == 2 {
			shared++
		}
	}
	if shared != 1 {
		t.Errorf("shared edge count = %d, want 1 (the diagonal)", shared)
	}
}

func TestComponentsEmptyMesh(t *testing.T) {
	m := NewBuilder(0).Build()
	if comps := m.Components(); len(comps) != 0 {
		t.Errorf("empty mesh components = %d, want 0", len(comps))
	}
}

func TestComponentsDisjointFaces(t *testing.T) {
	b := NewBuilder(0)
	quad(t, b, 0)
	// Second square far away, not sharing any vertex.
	if _, err := b.AddQuad(
		geom.V(10, 0, 0), geom.V(11, 0, 0), geom.V(11, 1, 0), geom.V(10, 1, 0),
	); err != nil {
		t.Fatal(err)
	}
	m := b.Build()
	comps := m.Components()
	if len(comps) != 2 {
		t.Fatalf("components = %d, want 2", len(comps))
	}
	for i, c := range comps {
		if len(c.Faces) != 1 || len(c.Edges) != 4 {
			t.Errorf("component %d: %d faces, %d edges; want 1, 4", i, len(c.Faces), len(c.Edges))
		}
	}
}

func TestComponentsCoverEveryElementOnce(t *testing.T) {
	b := NewBuilder(0)
	quad(t, b, 0)
	quad(t, b, 1) // distinct z: separate component
	if _, err := b.AddQuad(
		geom.V(0, 0, 1), geom.V(1, 0, 1), geom.V(1, 0, 2), geom.V(0, 0, 2),
	); err != nil {
		t.Fatal(err) // shares an edge with the z=1 quad
	}
	m := b.Build()
	comps := m.Components()
	if len(comps) != 2 {
		t.Fatalf("components = %d, want 2", len(comps))
	}
	edgeCount, faceCount := 0, 0
	seenE := map[EdgeID]bool{}
	seenF := map[FaceID]bool{}
	for _, c := range comps {
		for _, e := range c.Edges {
			if seenE[e] {
				t.Errorf("edge %d in two components", e)
			}
			seenE[e] = true
			edgeCount++
		}
		for _, f := range c.Faces {
			if seenF[f] {
				t.Errorf("face %d in two components", f)
			}
			seenF[f] = true
			faceCount++
		}
	}
	if edgeCount != len(m.Edges) || faceCount != len(m.Faces) {
		t.Errorf("covered %d/%d edges, %d/%d faces",
			edgeCount, len(m.Edges), faceCount, len(m.Faces))
	}
}

func TestFaceLoop(t *testing.T) {
	b := NewBuilder(0)
	fid := quad(t, b, 2)
	m := b.Build()
	pts := m.FaceLoop(fid)
	want := []geom.Vec3{
		geom.V(0, 0, 2), geom.V(1, 0, 2), geom.V(1, 1, 2), geom.V(0, 1, 2),
	}
	if len(pts) != len(want) {
		t.Fatalf("loop length = %d, want %d", len(pts), len(want))
	}
	for i := range want {
		if !geom.AlmostEqual(pts[i], want[i], 1e-12) {
			t.Errorf("point %d = %v, want %v", i, pts[i], want[i])
		}
	}
}

func TestEdgeVec(t *testing.T) {
	b := NewBuilder(0)
	quad(t, b, 0)
	m := b.Build()
	for ei := range m.Edges {
		l := m.EdgeVec(EdgeID(ei)).Norm()
		if math.Abs(l-1) > 1e-12 {
			t.Errorf("edge %d length = %v, want 1", ei, l)
		}
	}
}
