package shadow

import "github.com/chazu/umbra/pkg/geom"

// segment2 is one projected silhouette edge in plane-local coordinates.
type segment2 struct {
	a, b geom.Point2
}

// reconstruct turns a projected segment soup into clean closed polygon
// loops: crossing and touching segments are split at their intersection
// points, the resulting planar subdivision is traced into faces, and
// edges interior to the union (bounding two faces) are discarded,
// leaving the outer silhouette boundaries. The second return value
// counts edges that could not be closed into a loop and were dropped.
func reconstruct(segments []segment2, tol float64) ([]Loop, int) {
	if len(segments) == 0 {
		return nil, 0
	}
	g := newPlanarGraph(tol)
	for _, s := range segments {
		g.addSegment(s.a, s.b, tagSubject)
	}
	g.splitIntersections()
	return g.boundaryLoops()
}
