package shadow

import "github.com/chazu/umbra/pkg/geom"

// Boolean trimming: a generic planar set operator on polygon loops,
// used twice per instance — subtracting the instance's own ground
// footprint from its cast shadow, then clipping the result to the
// receiving boundary.
//
// Both operations share one mechanism: insert the clip polygon's edges
// into the subject edge set, run the vertex-split pass and segment
// intersection splitting, then classify every resulting edge by an
// even-odd test on its midpoint. The vertex-split pass must run before
// classification: a vertex of one polygon landing on the interior of an
// edge of the other only touches, never crosses, so plain intersection
// splitting misses it and adjacency comes out inconsistent.

func midpoint(a, b geom.Point2) geom.Point2 {
	return geom.Point2{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// prepare builds the combined, fully split planar graph for one boolean
// operation.
func prepare(subject []Loop, clip Loop, tol float64) *planarGraph {
	g := newPlanarGraph(tol)
	for _, l := range subject {
		g.addLoop(l, tagSubject)
	}
	g.addLoop(clip, tagClip)
	g.splitAtVertices()
	g.splitIntersections()
	return g
}

// subtractLoops removes the obstacle polygon's region from the subject
// loops: subject edges whose midpoint lies strictly inside the obstacle
// are removed, along with the obstacle's own boundary edges. An edge
// coincident between subject and obstacle survives as subject. The
// second return value counts stray edges dropped by the cleanup pass.
func subtractLoops(subject []Loop, obstacle Loop, tol float64) ([]Loop, int) {
	if len(obstacle) < 3 {
		// Subtracting an empty polygon is the identity.
		out := make([]Loop, len(subject))
		for i, l := range subject {
			out[i] = l.Clone()
		}
		return out, 0
	}
	g := prepare(subject, obstacle, tol)
	obLoops := []Loop{obstacle}
	for i := range g.edges {
		e := &g.edges[i]
		if e.dead {
			continue
		}
		if e.tag&tagSubject == 0 {
			// obstacle boundary edge
			g.kill(i)
			continue
		}
		if e.tag&tagClip != 0 {
			continue // coincident with the obstacle boundary, keep
		}
		mid := midpoint(g.nodes[e.a], g.nodes[e.b])
		if classify(mid, obLoops, tol) == inside {
			g.kill(i)
		}
	}
	return g.boundaryLoops()
}

// intersectLoops clips the subject loops to the boundary polygon.
// Subject edges are kept only when their midpoint classifies as
// inside-or-on the boundary; boundary edges are kept only when their
// midpoint lies strictly inside the subject region. Edges classifying
// outside, or whose containment is ambiguous, are removed.
func intersectLoops(subject []Loop, boundary Loop, tol float64) ([]Loop, int) {
	g := prepare(subject, boundary, tol)
	bLoops := []Loop{boundary}
	for i := range g.edges {
		e := &g.edges[i]
		if e.dead {
			continue
		}
		mid := midpoint(g.nodes[e.a], g.nodes[e.b])
		if e.tag&tagSubject != 0 {
			if classify(mid, bLoops, tol) == outside {
				g.kill(i)
			}
			continue
		}
		if classify(mid, subject, tol) != inside {
			g.kill(i)
		}
	}
	return g.boundaryLoops()
}
