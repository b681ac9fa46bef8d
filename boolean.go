package boxen

import (
	"math"
	"sort"
)

// Polygon booleans for additive/subtractive edge operations. The clipper
// operates on simple polygons with integer-scaled coordinates, splits both
// boundaries at mutual intersections, keeps the sub-segments the operation
// calls for, and stitches them back into one ring. Anything that does not
// stitch into exactly one simple ring is declined (InvalidBooleanResult)
// rather than repaired.

// boolScale is the integer scale factor for clipping coordinates: 1e4
// yields sub-micron resolution, sufficient for millimeter-scale boxes.
// Extreme zoom-ins would need a larger scale.
const boolScale = 1e4

// BoolOp selects the boolean operation.
type BoolOp uint8

const (
	// BoolUnion adds the shape to the outline.
	BoolUnion BoolOp = iota
	// BoolDifference removes the shape from the outline.
	BoolDifference
)

func (op BoolOp) String() string {
	if op == BoolUnion {
		return "union"
	}
	return "difference"
}

// snapPoint quantizes a point onto the integer grid.
func snapPoint(p PathPoint) PathPoint {
	return PathPoint{
		X: math.Round(p.X*boolScale) / boolScale,
		Y: math.Round(p.Y*boolScale) / boolScale,
	}
}

// snapPoly quantizes and normalizes a polygon to counter-clockwise winding.
func snapPoly(poly []PathPoint) []PathPoint {
	out := make([]PathPoint, 0, len(poly))
	for _, p := range poly {
		out = append(out, snapPoint(p))
	}
	out = dedupePoints(out, 1/boolScale/2)
	if signedArea(out) < 0 {
		reversePoints(out)
	}
	return out
}

// boolSegment is one directed boundary piece after splitting.
type boolSegment struct {
	a, b PathPoint
}

// segIntersection finds the proper intersection parameter pair of segments
// (p1,p2) and (p3,p4), if any. Endpoint touches count as intersections so
// shapes flush with the outline split correctly.
func segIntersection(p1, p2, p3, p4 PathPoint) (t, u float64, ok bool) {
	d1 := ptSub(p2, p1)
	d2 := ptSub(p4, p3)
	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < 1e-12 {
		return 0, 0, false // parallel or collinear: no split point
	}
	w := ptSub(p3, p1)
	t = (w.X*d2.Y - w.Y*d2.X) / denom
	u = (w.X*d1.Y - w.Y*d1.X) / denom
	const tol = 1e-9
	if t < -tol || t > 1+tol || u < -tol || u > 1+tol {
		return 0, 0, false
	}
	return clamp01(t), clamp01(u), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// splitAgainst cuts every edge of poly at its intersections with other,
// returning the resulting directed sub-segments in boundary order.
func splitAgainst(poly, other []PathPoint) []boolSegment {
	var segs []boolSegment
	n := len(poly)
	m := len(other)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		ts := []float64{0, 1}
		for j := 0; j < m; j++ {
			c := other[j]
			d := other[(j+1)%m]
			if t, _, ok := segIntersection(a, b, c, d); ok {
				ts = append(ts, t)
			}
		}
		sort.Float64s(ts)
		for k := 0; k+1 < len(ts); k++ {
			if ts[k+1]-ts[k] < 1e-9 {
				continue
			}
			pa := snapPoint(lerpPoint(a, b, ts[k]))
			pb := snapPoint(lerpPoint(a, b, ts[k+1]))
			if ptNear(pa, pb, 1/boolScale/2) {
				continue
			}
			segs = append(segs, boolSegment{pa, pb})
		}
	}
	return segs
}

func lerpPoint(a, b PathPoint, t float64) PathPoint {
	return PathPoint{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// mid returns a segment's midpoint.
func (s boolSegment) mid() PathPoint {
	return PathPoint{X: (s.a.X + s.b.X) / 2, Y: (s.a.Y + s.b.Y) / 2}
}

func (s boolSegment) reversed() boolSegment { return boolSegment{s.b, s.a} }

// polygonBoolean computes subject OP shape. Both inputs must be simple
// closed polylines; the result is a single simple counter-clockwise ring.
// ok is false when the operation cannot produce one (disjoint shapes,
// multiple result rings, or a collapsed result).
func polygonBoolean(subject, shape []PathPoint, op BoolOp) ([]PathPoint, bool) {
	A := snapPoly(subject)
	B := snapPoly(shape)
	if len(A) < 3 || len(B) < 3 {
		return nil, false
	}

	segsA := splitAgainst(A, B)
	segsB := splitAgainst(B, A)

	// Keep rules, by containment of points just left (inside) and right
	// (outside) of each sub-segment, so parts lying on the other boundary
	// classify consistently:
	//   union:      A-parts whose right side is outside B, plus B-parts with
	//               neither side inside A
	//   difference: A-parts whose left side is outside B, plus B-parts with
	//               both sides inside A, reversed
	side := func(s boolSegment, left bool) PathPoint {
		d := ptSub(s.b, s.a)
		n := ptScale(ptPerp(d), 1/(boolScale*10*math.Hypot(d.X, d.Y)))
		if !left {
			n = ptScale(n, -1)
		}
		return ptAdd(s.mid(), n)
	}
	var kept []boolSegment
	for _, s := range segsA {
		if !pointInPolygon(side(s, op == BoolDifference), B) {
			kept = append(kept, s)
		}
	}
	for _, s := range segsB {
		inL, inR := pointInPolygon(side(s, true), A), pointInPolygon(side(s, false), A)
		switch op {
		case BoolUnion:
			if !inL && !inR {
				kept = append(kept, s)
			}
		case BoolDifference:
			if inL && inR {
				kept = append(kept, s.reversed())
			}
		}
	}
	if len(kept) < 3 {
		return nil, false
	}

	ring, ok := stitchRing(kept)
	if !ok {
		return nil, false
	}
	ring = dedupePoints(ring, 1/boolScale/2)
	if len(ring) < 3 || math.Abs(signedArea(ring)) < 1/boolScale {
		return nil, false
	}
	if signedArea(ring) < 0 {
		reversePoints(ring)
	}
	return ring, true
}

// stitchRing chains directed segments end-to-start into one closed ring.
// Every segment must be used exactly once; leftovers or dead ends (a second
// disjoint ring, a hole, a non-simple join) fail the stitch.
func stitchRing(segs []boolSegment) ([]PathPoint, bool) {
	type key struct{ x, y int64 }
	k := func(p PathPoint) key {
		return key{int64(math.Round(p.X * boolScale)), int64(math.Round(p.Y * boolScale))}
	}
	starts := map[key][]int{}
	for i, s := range segs {
		starts[k(s.a)] = append(starts[k(s.a)], i)
	}
	used := make([]bool, len(segs))
	var ring []PathPoint
	cur := segs[0]
	used[0] = true
	ring = append(ring, cur.a)
	count := 1
	for {
		nk := k(cur.b)
		if nk == k(segs[0].a) {
			break // closed
		}
		candidates := starts[nk]
		next := -1
		for _, ci := range candidates {
			if !used[ci] {
				next = ci
				break
			}
		}
		if next == -1 {
			return nil, false
		}
		cur = segs[next]
		used[next] = true
		ring = append(ring, cur.a)
		count++
		if count > len(segs) {
			return nil, false
		}
	}
	if count != len(segs) {
		return nil, false // more than one ring (disjoint piece or hole)
	}
	return ring, true
}
