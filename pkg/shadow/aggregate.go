package shadow

// mergeLoops flattens loop sets into one collection, removing edges
// shared by two coincident loop boundaries so that exactly adjacent
// loops fuse into one outline. This is coincidence-based flattening,
// not a true polygon union: loops that overlap without their edges
// coinciding (for example coplanar loops offset by sub-tolerance
// error) remain separate and their areas are counted separately. That
// approximation is inherited deliberately; see DESIGN.md.
//
// The second return value counts edges dropped without closing a loop.
func mergeLoops(tol float64, sets ...[]Loop) ([]Loop, int) {
	g := newPlanarGraph(tol)
	n := 0
	for _, set := range sets {
		for _, l := range set {
			g.addLoop(l, tagSubject)
			n++
		}
	}
	if n == 0 {
		return nil, 0
	}
	// An edge inserted more than once is a duplicate boundary between
	// two coincident faces; all copies vanish.
	for i := range g.edges {
		if !g.edges[i].dead && g.edges[i].dup > 1 {
			g.kill(i)
		}
	}
	return g.boundaryLoops()
}
