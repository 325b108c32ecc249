package shadow

import (
	"math"
	"testing"

	"github.com/chazu/umbra/pkg/geom"
)

func square(x0, y0, x1, y1 float64) Loop {
	return Loop{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func segmentsOf(l Loop) []segment2 {
	segs := make([]segment2, 0, len(l))
	for i := range l {
		segs = append(segs, segment2{a: l[i], b: l[(i+1)%len(l)]})
	}
	return segs
}

func TestReconstructSquare(t *testing.T) {
	loops, dropped := reconstruct(segmentsOf(square(0, 0, 1, 1)), 0)
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(loops) != 1 {
		t.Fatalf("loops = %d, want 1", len(loops))
	}
	if a := loops[0].Area(); math.Abs(a-1) > 1e-9 {
		t.Errorf("area = %v, want 1", a)
	}
}

func TestReconstructDedupesCoincidentSegments(t *testing.T) {
	// The same square twice, as from a cube's top and bottom rims
	// projecting onto the same outline.
	segs := append(segmentsOf(square(0, 0, 1, 1)), segmentsOf(square(0, 0, 1, 1))...)
	loops, dropped := reconstruct(segs, 0)
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(loops) != 1 {
		t.Fatalf("loops = %d, want 1", len(loops))
	}
	if a := loops[0].Area(); math.Abs(a-1) > 1e-9 {
		t.Errorf("area = %v, want 1", a)
	}
}

func TestReconstructOverlappingSquares(t *testing.T) {
	// Two squares overlapping in a corner region. Interior-edge removal
	// must leave only the union outline: 4 + 4 - 1 = 7.
	segs := append(segmentsOf(square(0, 0, 2, 2)), segmentsOf(square(1, 1, 3, 3))...)
	loops, dropped := reconstruct(segs, 0)
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(loops) != 1 {
		t.Fatalf("loops = %d, want 1", len(loops))
	}
	if a := loops[0].Area(); math.Abs(a-7) > 1e-9 {
		t.Errorf("area = %v, want 7", a)
	}
}

func TestReconstructDropsDanglingSegment(t *testing.T) {
	segs := append(segmentsOf(square(0, 0, 1, 1)),
		segment2{a: geom.Point2{X: 5, Y: 5}, b: geom.Point2{X: 6, Y: 5}})
	loops, dropped := reconstruct(segs, 0)
	if dropped == 0 {
		t.Error("expected the dangling segment to be reported as dropped")
	}
	if len(loops) != 1 {
		t.Fatalf("loops = %d, want 1", len(loops))
	}
	if a := loops[0].Area(); math.Abs(a-1) > 1e-9 {
		t.Errorf("area = %v, want 1", a)
	}
}

func TestReconstructEmptyInput(t *testing.T) {
	loops, dropped := reconstruct(nil, 0)
	if loops != nil || dropped != 0 {
		t.Errorf("reconstruct(nil) = %v, %d; want nil, 0", loops, dropped)
	}
}

func TestSplitAtVerticesTJunction(t *testing.T) {
	// A vertex sitting on the interior of an unrelated edge must split
	// that edge even though the segments only touch.
	g := newPlanarGraph(0)
	g.addSegment(geom.Point2{X: 0, Y: 0}, geom.Point2{X: 2, Y: 0}, tagSubject)
	g.addSegment(geom.Point2{X: 1, Y: 0}, geom.Point2{X: 1, Y: 1}, tagClip)
	g.splitAtVertices()
	if n := g.liveCount(); n != 3 {
		t.Errorf("live edges after vertex split = %d, want 3", n)
	}
}

func TestSplitIntersectionsCrossing(t *testing.T) {
	g := newPlanarGraph(0)
	g.addSegment(geom.Point2{X: -1, Y: 0}, geom.Point2{X: 1, Y: 0}, tagSubject)
	g.addSegment(geom.Point2{X: 0, Y: -1}, geom.Point2{X: 0, Y: 1}, tagSubject)
	g.splitIntersections()
	if n := g.liveCount(); n != 4 {
		t.Errorf("live edges after crossing split = %d, want 4", n)
	}
	// The crossing point must exist as a merged node.
	found := false
	for _, p := range g.nodes {
		if p.AlmostEqual(geom.Point2{}, 1e-9) {
			found = true
		}
	}
	if !found {
		t.Error("intersection node at origin not created")
	}
}

func TestSplitIntersectionsCollinearOverlap(t *testing.T) {
	g := newPlanarGraph(0)
	g.addSegment(geom.Point2{X: 0, Y: 0}, geom.Point2{X: 2, Y: 0}, tagSubject)
	g.addSegment(geom.Point2{X: 1, Y: 0}, geom.Point2{X: 3, Y: 0}, tagClip)
	g.splitIntersections()
	// 0..1, 1..2 (shared, collapsed), 2..3
	if n := g.liveCount(); n != 3 {
		t.Errorf("live edges after collinear split = %d, want 3", n)
	}
	shared := 0
	for i := range g.edges {
		e := &g.edges[i]
		if !e.dead && e.tag == tagSubject|tagClip {
			shared++
		}
	}
	if shared != 1 {
		t.Errorf("dual-tagged shared edges = %d, want 1", shared)
	}
}
