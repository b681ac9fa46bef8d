package boxen

import "math"

// All coordinates are millimeters in IEEE-754 doubles.

// EPS is the tolerance used for coordinate comparisons, duplicate-point
// filtering, and rectangle overlap tests.
const EPS = 0.001

// holeClearance is the minimum gap required between any hole and the panel
// outline for the hole to be emitted.
const holeClearance = 0.01

// PathPoint is a 2D point in panel-local coordinates (y-up).
type PathPoint struct {
	X float64
	Y float64
}

// EdgePathPoint is one vertex of a user-authored edge path. T is the
// normalized position along the edge in [0, 1]; Offset is the perpendicular
// displacement in millimeters, positive pointing outward from the panel body.
type EdgePathPoint struct {
	T      float64
	Offset float64
}

// --- Vector helpers ---

func ptAdd(a, b PathPoint) PathPoint { return PathPoint{a.X + b.X, a.Y + b.Y} }
func ptSub(a, b PathPoint) PathPoint { return PathPoint{a.X - b.X, a.Y - b.Y} }
func ptScale(a PathPoint, f float64) PathPoint {
	return PathPoint{a.X * f, a.Y * f}
}

func ptDot(a, b PathPoint) float64 { return a.X*b.X + a.Y*b.Y }

// ptPerp returns a rotated 90 degrees counter-clockwise (y-up).
func ptPerp(a PathPoint) PathPoint { return PathPoint{-a.Y, a.X} }

func ptDist(a, b PathPoint) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// ptNormalize returns a unit-length copy of a, or the zero point if a is
// shorter than EPS.
func ptNormalize(a PathPoint) PathPoint {
	l := math.Sqrt(a.X*a.X + a.Y*a.Y)
	if l < EPS {
		return PathPoint{}
	}
	return PathPoint{a.X / l, a.Y / l}
}

func ptNear(a, b PathPoint, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// --- Polylines ---

// signedArea computes the shoelace area of a closed polyline (the first
// point is implicitly repeated at the end). Counter-clockwise order in the
// engine's y-up convention yields a positive value. Outlines are emitted
// counter-clockwise (positive), holes clockwise (negative).
func signedArea(points []PathPoint) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

// pointInPolygon reports whether p lies inside the closed polyline using
// ray casting. Points on the boundary are not reliably classified; callers
// that care keep holeClearance away from edges.
func pointInPolygon(p PathPoint, poly []PathPoint) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// polyBounds returns the axis-aligned bounding rectangle of a polyline.
// The zero Rect is returned for an empty polyline.
func polyBounds(points []PathPoint) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// dedupePoints drops consecutive points closer than eps, including a
// duplicated closing point. Degenerate input never propagates outward; this
// runs on every polyline at emit time.
func dedupePoints(points []PathPoint, eps float64) []PathPoint {
	if len(points) == 0 {
		return points
	}
	out := points[:1]
	for _, p := range points[1:] {
		if !ptNear(p, out[len(out)-1], eps) {
			out = append(out, p)
		}
	}
	// The closing point is implicit; drop it if it duplicates the first.
	for len(out) > 1 && ptNear(out[len(out)-1], out[0], eps) {
		out = out[:len(out)-1]
	}
	return out
}

// reversePoints reverses a polyline in place and returns it.
func reversePoints(points []PathPoint) []PathPoint {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}

// polyContainsPoly reports whether every vertex of inner lies strictly
// inside outer, with at least the given clearance between their bounds.
func polyContainsPoly(outer, inner []PathPoint, clearance float64) bool {
	ob := polyBounds(outer)
	ib := polyBounds(inner)
	if ib.X < ob.X+clearance || ib.Y < ob.Y+clearance ||
		ib.X+ib.Width > ob.X+ob.Width-clearance ||
		ib.Y+ib.Height > ob.Y+ob.Height-clearance {
		return false
	}
	for _, p := range inner {
		if !pointInPolygon(p, outer) {
			return false
		}
	}
	return true
}

// --- Rect ---

// Rect is an axis-aligned rectangle with its origin at the bottom-left
// corner (y-up).
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle,
// EPS-inclusive on all sides.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X-EPS && x <= r.X+r.Width+EPS &&
		y >= r.Y-EPS && y <= r.Y+r.Height+EPS
}

// Overlaps reports whether two rectangles share interior area beyond EPS.
func (r Rect) Overlaps(o Rect) bool {
	return r.X+EPS < o.X+o.Width && o.X+EPS < r.X+r.Width &&
		r.Y+EPS < o.Y+o.Height && o.Y+EPS < r.Y+r.Height
}

// ContainsRect reports whether o lies entirely inside r, EPS-inclusive.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X-EPS && o.Y >= r.Y-EPS &&
		o.X+o.Width <= r.X+r.Width+EPS &&
		o.Y+o.Height <= r.Y+r.Height+EPS
}

// Empty reports whether the rectangle has no usable area.
func (r Rect) Empty() bool {
	return r.Width <= EPS || r.Height <= EPS
}

// Points returns the rectangle's corners as a counter-clockwise polyline.
func (r Rect) Points() []PathPoint {
	return []PathPoint{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}

// subtractRect removes o from r, appending the up-to-four remainder
// rectangles to out. Used by the safe-area computation.
func subtractRect(out []Rect, r, o Rect) []Rect {
	if !r.Overlaps(o) {
		return append(out, r)
	}
	// Bottom band.
	if o.Y > r.Y {
		out = append(out, Rect{r.X, r.Y, r.Width, o.Y - r.Y})
	}
	// Top band.
	if o.Y+o.Height < r.Y+r.Height {
		out = append(out, Rect{r.X, o.Y + o.Height, r.Width, r.Y + r.Height - (o.Y + o.Height)})
	}
	midY := math.Max(r.Y, o.Y)
	midTop := math.Min(r.Y+r.Height, o.Y+o.Height)
	if midTop > midY {
		// Left band.
		if o.X > r.X {
			out = append(out, Rect{r.X, midY, o.X - r.X, midTop - midY})
		}
		// Right band.
		if o.X+o.Width < r.X+r.Width {
			out = append(out, Rect{o.X + o.Width, midY, r.X + r.Width - (o.X + o.Width), midTop - midY})
		}
	}
	return out
}

// subtractRects removes sub from every rectangle in set.
func subtractRects(set []Rect, sub Rect) []Rect {
	out := make([]Rect, 0, len(set)+3)
	for _, r := range set {
		out = subtractRect(out, r, sub)
	}
	return out
}

// rectSetCovers reports whether target is entirely covered by the set.
// It subtracts each set member from the remainder and checks that nothing
// with usable area is left.
func rectSetCovers(set []Rect, target Rect) bool {
	remainder := []Rect{target}
	for _, r := range set {
		remainder = subtractRects(remainder, r)
	}
	for _, r := range remainder {
		if !r.Empty() {
			return false
		}
	}
	return true
}

// --- Arcs ---

// filletSegments is the number of polyline segments used to approximate a
// 90-degree fillet arc.
const filletSegments = 8

// arcPoints approximates a circular arc around center from angle a0 to a1
// (radians, positive counter-clockwise) with the given radius. The first
// and last points lie exactly on the arc endpoints.
func arcPoints(center PathPoint, radius, a0, a1 float64, segments int) []PathPoint {
	if segments < 1 {
		segments = 1
	}
	pts := make([]PathPoint, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := a0 + (a1-a0)*float64(i)/float64(segments)
		pts = append(pts, PathPoint{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		})
	}
	return pts
}

// circlePoints approximates a circle as a counter-clockwise polyline with
// the given number of segments.
func circlePoints(cx, cy, r float64, segments int) []PathPoint {
	if segments < 3 {
		segments = 3
	}
	pts := make([]PathPoint, 0, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts = append(pts, PathPoint{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}
