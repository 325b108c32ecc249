package shadow

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/umbra/pkg/geom"
)

// edgeTag records which operand a graph edge came from. Boolean
// trimming needs to tell the subject loop set apart from the clip
// polygon; an edge carrying both tags is a coincident duplicate.
type edgeTag uint8

const (
	tagSubject edgeTag = 1 << iota
	tagClip
)

type pEdge struct {
	a, b int // node indices, a < b
	tag  edgeTag
	dup  int // times this exact node pair was inserted
	dead bool
}

// planarGraph is a planar straight-line graph over tolerance-merged 2D
// nodes. It is the shared machinery behind polygon reconstruction,
// boolean trimming and the aggregate merge: segment insertion with
// point merging, pairwise intersection splitting, the vertex-split
// robustness pass, and angular face tracing.
type planarGraph struct {
	tol   float64
	nodes []geom.Point2
	grid  map[[2]int64][]int
	edges []pEdge
	pairs map[[2]int]int
}

func newPlanarGraph(tol float64) *planarGraph {
	if tol <= 0 {
		tol = geom.MergeTol
	}
	return &planarGraph{
		tol:   tol,
		grid:  make(map[[2]int64][]int),
		pairs: make(map[[2]int]int),
	}
}

func (g *planarGraph) cell(p geom.Point2) [2]int64 {
	c := g.tol * 2
	return [2]int64{int64(math.Floor(p.X / c)), int64(math.Floor(p.Y / c))}
}

// addNode returns the index of p, merging with an existing node when
// one lies within tolerance.
func (g *planarGraph) addNode(p geom.Point2) int {
	c := g.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, idx := range g.grid[[2]int64{c[0] + dx, c[1] + dy}] {
				if g.nodes[idx].AlmostEqual(p, g.tol) {
					return idx
				}
			}
		}
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, p)
	g.grid[c] = append(g.grid[c], idx)
	return idx
}

// addEdge inserts an undirected edge between existing nodes. Duplicate
// node pairs collapse into one edge that accumulates tags and a
// multiplicity count.
func (g *planarGraph) addEdge(ai, bi int, tag edgeTag) {
	if ai == bi {
		return
	}
	if bi < ai {
		ai, bi = bi, ai
	}
	key := [2]int{ai, bi}
	if idx, ok := g.pairs[key]; ok && !g.edges[idx].dead {
		g.edges[idx].tag |= tag
		g.edges[idx].dup++
		return
	}
	g.pairs[key] = len(g.edges)
	g.edges = append(g.edges, pEdge{a: ai, b: bi, tag: tag, dup: 1})
}

func (g *planarGraph) addSegment(p, q geom.Point2, tag edgeTag) {
	g.addEdge(g.addNode(p), g.addNode(q), tag)
}

func (g *planarGraph) addLoop(l Loop, tag edgeTag) {
	for i := range l {
		g.addSegment(l[i], l[(i+1)%len(l)], tag)
	}
}

func (g *planarGraph) kill(idx int) {
	e := &g.edges[idx]
	if e.dead {
		return
	}
	e.dead = true
	delete(g.pairs, [2]int{e.a, e.b})
}

// liveCount returns the number of live edges.
func (g *planarGraph) liveCount() int {
	n := 0
	for i := range g.edges {
		if !g.edges[i].dead {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Intersection splitting
// ---------------------------------------------------------------------------

type splitAt struct {
	t    float64
	node int
}

type edgeItem struct {
	idx  int
	rect rtreego.Rect
}

func (it *edgeItem) Bounds() rtreego.Rect { return it.rect }

func (g *planarGraph) edgeRect(e *pEdge) rtreego.Rect {
	pa, pb := g.nodes[e.a], g.nodes[e.b]
	minX, maxX := math.Min(pa.X, pb.X), math.Max(pa.X, pb.X)
	minY, maxY := math.Min(pa.Y, pb.Y), math.Max(pa.Y, pb.Y)
	r, err := rtreego.NewRect(
		rtreego.Point{minX - g.tol, minY - g.tol},
		[]float64{maxX - minX + 2*g.tol, maxY - minY + 2*g.tol},
	)
	if err != nil {
		// Cannot happen: lengths are padded positive.
		panic(err)
	}
	return r
}

// edgeTree indexes all live edges for candidate-pair pruning.
func (g *planarGraph) edgeTree() *rtreego.Rtree {
	tree := rtreego.NewTree(2, 4, 8)
	for i := range g.edges {
		if g.edges[i].dead {
			continue
		}
		tree.Insert(&edgeItem{idx: i, rect: g.edgeRect(&g.edges[i])})
	}
	return tree
}

// splitAtVertices runs the vertex-split robustness pass: every node is
// tested against every nearby edge, and an edge with the node on its
// interior is split there. Plain segment intersection does not reliably
// split a T-junction, where a vertex of one polygon lands on the
// interior of an edge of the other; trimming classification needs the
// shared vertex to exist on both operands before adjacency is computed.
func (g *planarGraph) splitAtVertices() {
	tree := g.edgeTree()
	splits := make(map[int][]splitAt)
	for ni, p := range g.nodes {
		rect, err := rtreego.NewRect(
			rtreego.Point{p.X - g.tol, p.Y - g.tol},
			[]float64{2 * g.tol, 2 * g.tol},
		)
		if err != nil {
			panic(err)
		}
		for _, hit := range tree.SearchIntersect(rect) {
			ei := hit.(*edgeItem).idx
			e := &g.edges[ei]
			if e.dead || e.a == ni || e.b == ni {
				continue
			}
			pa, pb := g.nodes[e.a], g.nodes[e.b]
			if distToSegment(p, pa, pb) >= g.tol {
				continue
			}
			d := pb.Sub(pa)
			l2 := d.X*d.X + d.Y*d.Y
			if l2 == 0 {
				continue
			}
			t := ((p.X-pa.X)*d.X + (p.Y-pa.Y)*d.Y) / l2
			eps := g.tol / math.Sqrt(l2)
			if t > eps && t < 1-eps {
				splits[ei] = append(splits[ei], splitAt{t: t, node: ni})
			}
		}
	}
	g.applySplits(splits)
}

// splitIntersections splits every pair of live edges that cross or
// touch at the intersection point, inserting a shared node. Collinear
// overlapping edges are split at each other's interior endpoints.
func (g *planarGraph) splitIntersections() {
	tree := g.edgeTree()
	splits := make(map[int][]splitAt)
	for i := range g.edges {
		if g.edges[i].dead {
			continue
		}
		for _, hit := range tree.SearchIntersect(g.edgeRect(&g.edges[i])) {
			j := hit.(*edgeItem).idx
			if j <= i || g.edges[j].dead {
				continue
			}
			g.intersectPair(i, j, splits)
		}
	}
	g.applySplits(splits)
}

func (g *planarGraph) intersectPair(i, j int, splits map[int][]splitAt) {
	e, f := &g.edges[i], &g.edges[j]
	a, b := g.nodes[e.a], g.nodes[e.b]
	c, d := g.nodes[f.a], g.nodes[f.b]
	r := b.Sub(a)
	s := d.Sub(c)
	lenR := math.Hypot(r.X, r.Y)
	lenS := math.Hypot(s.X, s.Y)
	if lenR == 0 || lenS == 0 {
		return
	}
	den := geom.Cross2(r, s)
	ca := c.Sub(a)
	et := g.tol / lenR
	eu := g.tol / lenS

	if math.Abs(den) > g.tol*lenR*lenS {
		t := geom.Cross2(ca, s) / den
		u := geom.Cross2(ca, r) / den
		if t < -et || t > 1+et || u < -eu || u > 1+eu {
			return
		}
		tc := math.Min(1, math.Max(0, t))
		at := geom.Point2{X: a.X + r.X*tc, Y: a.Y + r.Y*tc}
		node := g.addNode(at)
		if node != e.a && node != e.b {
			splits[i] = append(splits[i], splitAt{t: tc, node: node})
		}
		if node != f.a && node != f.b {
			uc := math.Min(1, math.Max(0, u))
			splits[j] = append(splits[j], splitAt{t: uc, node: node})
		}
		return
	}

	// Parallel. Only collinear overlap needs splits.
	if math.Abs(geom.Cross2(ca, r)) > g.tol*lenR {
		return
	}
	for _, n := range []int{f.a, f.b} {
		p := g.nodes[n]
		t := ((p.X-a.X)*r.X + (p.Y-a.Y)*r.Y) / (lenR * lenR)
		if t > et && t < 1-et {
			splits[i] = append(splits[i], splitAt{t: t, node: n})
		}
	}
	for _, n := range []int{e.a, e.b} {
		p := g.nodes[n]
		u := ((p.X-c.X)*s.X + (p.Y-c.Y)*s.Y) / (lenS * lenS)
		if u > eu && u < 1-eu {
			splits[j] = append(splits[j], splitAt{t: u, node: n})
		}
	}
}

// applySplits rebuilds each split edge as a chain of sub-edges through
// its split nodes, ordered by parameter.
func (g *planarGraph) applySplits(splits map[int][]splitAt) {
	for idx, list := range splits {
		e := g.edges[idx] // copy: kill below invalidates the pointer's pair
		sort.Slice(list, func(x, y int) bool { return list[x].t < list[y].t })
		chain := []int{e.a}
		for _, s := range list {
			if s.node != chain[len(chain)-1] {
				chain = append(chain, s.node)
			}
		}
		if e.b != chain[len(chain)-1] {
			chain = append(chain, e.b)
		}
		if len(chain) < 3 {
			continue // splits collapsed onto the endpoints
		}
		g.kill(idx)
		for i := 0; i+1 < len(chain); i++ {
			g.addEdge(chain[i], chain[i+1], e.tag)
		}
	}
}

// ---------------------------------------------------------------------------
// Face discovery
// ---------------------------------------------------------------------------

type halfEdge struct {
	from, to int
	edge     int
	twin     int
	next     int
	angle    float64
}

// buildHalfEdges creates the directed half-edge structure with next
// pointers for angular face tracing: at each node the outgoing edges
// are sorted by angle, and the successor of u->v is the outgoing edge
// at v that is clockwise-next from the reversal v->u. Tracing with this
// rule walks bounded faces counter-clockwise.
func (g *planarGraph) buildHalfEdges() []halfEdge {
	var hes []halfEdge
	for i := range g.edges {
		e := &g.edges[i]
		if e.dead {
			continue
		}
		h1 := len(hes)
		hes = append(hes, halfEdge{from: e.a, to: e.b, edge: i, twin: h1 + 1})
		hes = append(hes, halfEdge{from: e.b, to: e.a, edge: i, twin: h1})
	}
	for i := range hes {
		d := g.nodes[hes[i].to].Sub(g.nodes[hes[i].from])
		hes[i].angle = math.Atan2(d.Y, d.X)
	}

	outgoing := make(map[int][]int)
	for i := range hes {
		outgoing[hes[i].from] = append(outgoing[hes[i].from], i)
	}
	pos := make([]int, len(hes))
	for _, list := range outgoing {
		sort.Slice(list, func(x, y int) bool { return hes[list[x]].angle < hes[list[y]].angle })
		for p, h := range list {
			pos[h] = p
		}
	}
	for i := range hes {
		list := outgoing[hes[i].to]
		p := pos[hes[i].twin]
		hes[i].next = list[(p-1+len(list))%len(list)]
	}
	return hes
}

// traceFaces partitions the half-edges into face cycles and returns the
// cycles with their signed areas. Bounded faces come out with positive
// area.
func (g *planarGraph) traceFaces() (hes []halfEdge, cycles [][]int, areas []float64) {
	hes = g.buildHalfEdges()
	seen := make([]bool, len(hes))
	for start := range hes {
		if seen[start] {
			continue
		}
		var cyc []int
		var area float64
		h := start
		for !seen[h] {
			seen[h] = true
			cyc = append(cyc, h)
			p, q := g.nodes[hes[h].from], g.nodes[hes[h].to]
			area += p.X*q.Y - q.X*p.Y
			h = hes[h].next
		}
		cycles = append(cycles, cyc)
		areas = append(areas, area/2)
	}
	return hes, cycles, areas
}

// boundaryLoops reduces the graph to outer silhouette boundaries:
// edges bounding two discovered faces are interior and discarded,
// edges bounding none are dangling strays. The survivors are re-traced
// into closed loops. The second return value counts edges that had to
// be dropped without contributing to a closed loop.
func (g *planarGraph) boundaryLoops() ([]Loop, int) {
	hes, cycles, areas := g.traceFaces()

	bounded := make([]int, len(g.edges))
	for ci, cyc := range cycles {
		if areas[ci] <= g.tol {
			continue
		}
		for _, h := range cyc {
			bounded[hes[h].edge]++
		}
	}
	dropped := 0
	for i := range g.edges {
		if g.edges[i].dead {
			continue
		}
		switch bounded[i] {
		case 1:
			// boundary edge, keep
		case 0:
			dropped++
			g.kill(i)
		default:
			// interior edge between two faces
			g.kill(i)
		}
	}

	hes, cycles, areas = g.traceFaces()
	used := make([]bool, len(g.edges))
	var loops []Loop
	for ci, cyc := range cycles {
		if areas[ci] <= g.tol {
			continue
		}
		loop := make(Loop, 0, len(cyc))
		for _, h := range cyc {
			loop = append(loop, g.nodes[hes[h].from])
			used[hes[h].edge] = true
		}
		loops = append(loops, loop)
	}
	for i := range g.edges {
		if !g.edges[i].dead && !used[i] {
			dropped++
			g.kill(i)
		}
	}
	return loops, dropped
}
