package shadow

import (
	"math"

	"github.com/chazu/umbra/pkg/geom"
)

// Loop is an ordered, closed sequence of plane-local 2D points. The
// closing edge from the last point back to the first is implicit. After
// reconstruction loops are simple (non-self-intersecting) and wound
// counter-clockwise.
type Loop []geom.Point2

// Area returns the signed shoelace area of the loop. Counter-clockwise
// loops have positive area.
func (l Loop) Area() float64 {
	var s float64
	for i := range l {
		p, q := l[i], l[(i+1)%len(l)]
		s += p.X*q.Y - q.X*p.Y
	}
	return s / 2
}

// Clone returns an independent copy.
func (l Loop) Clone() Loop {
	return append(Loop(nil), l...)
}

// containment classifies a point against a polygon region.
type containment int

const (
	outside containment = iota
	inside
	onBoundary
)

// distToSegment returns the distance from p to segment ab.
func distToSegment(p, a, b geom.Point2) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(geom.Point2{X: a.X + t*ab.X, Y: a.Y + t*ab.Y})
}

// classify runs an even-odd containment test of p against one or more
// loops, with an explicit boundary-proximity check first so points
// within tol of any edge report onBoundary rather than flapping between
// inside and outside.
func classify(p geom.Point2, loops []Loop, tol float64) containment {
	for _, l := range loops {
		for i := range l {
			if distToSegment(p, l[i], l[(i+1)%len(l)]) < tol {
				return onBoundary
			}
		}
	}
	crossings := 0
	for _, l := range loops {
		for i := range l {
			a, b := l[i], l[(i+1)%len(l)]
			if (a.Y > p.Y) == (b.Y > p.Y) {
				continue
			}
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if x > p.X {
				crossings++
			}
		}
	}
	if crossings%2 == 1 {
		return inside
	}
	return outside
}

// RectLoop builds an axis-aligned rectangle loop centered at (cx, cy),
// wound counter-clockwise.
func RectLoop(cx, cy, width, depth float64) Loop {
	hw, hd := width/2, depth/2
	return Loop{
		{X: cx - hw, Y: cy - hd},
		{X: cx + hw, Y: cy - hd},
		{X: cx + hw, Y: cy + hd},
		{X: cx - hw, Y: cy + hd},
	}
}

// totalArea sums the absolute areas of a loop set.
func totalArea(loops []Loop) float64 {
	var s float64
	for _, l := range loops {
		s += math.Abs(l.Area())
	}
	return s
}
