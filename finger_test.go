package boxen

import (
	"math"
	"testing"
)

// Reference material: mt=3, fw=10, fg=1.5 as in the scenario suite.
var testMaterial = Material{Thickness: 3, FingerWidth: 10, FingerGap: 1.5}

func TestAxisPatternLayout(t *testing.T) {
	p := newAxisPattern(100, 3, 10, 1.5)
	// corner gap 4.5, interior 91, 9 units of 10, margin 0.5 per side.
	want := []float64{5, 15, 25, 35, 45, 55, 65, 75, 85, 95}
	if len(p.transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", p.transitions, want)
	}
	for i, w := range want {
		assertNear(t, "transition", p.transitions[i], w)
	}
}

func TestAxisPatternSymmetry(t *testing.T) {
	p := newAxisPattern(137, 3, 10, 1.5)
	tr := p.transitions
	if len(tr) == 0 {
		t.Fatal("expected a pattern")
	}
	for i := range tr {
		mirror := 137 - tr[len(tr)-1-i]
		assertNear(t, "symmetric transition", tr[i], mirror)
	}
}

func TestAxisPatternCollapse(t *testing.T) {
	// length < 2*fg*mt + fw collapses to a straight edge.
	p := newAxisPattern(18, 3, 10, 1.5)
	if len(p.transitions) != 0 {
		t.Fatalf("short edge should collapse, got transitions %v", p.transitions)
	}
}

func TestAxisPatternOddUnits(t *testing.T) {
	for _, length := range []float64{60, 80, 100, 133, 200, 297.5} {
		p := newAxisPattern(length, 3, 10, 1.5)
		if n := len(p.transitions); n > 0 && n%2 != 0 {
			t.Errorf("length %v: %d transitions (even count expected for odd units)", length, n)
		}
	}
}

func TestTabAt(t *testing.T) {
	p := newAxisPattern(100, 3, 10, 1.5)
	assertFalse(t, "corner gap", p.tabAt(2))
	assertTrue(t, "first tab", p.tabAt(10))
	assertFalse(t, "first gap", p.tabAt(20))
	assertTrue(t, "middle tab", p.tabAt(50))
	assertTrue(t, "last tab", p.tabAt(90))
	assertFalse(t, "trailing corner", p.tabAt(98))
}

func TestTabIntervals(t *testing.T) {
	p := newAxisPattern(100, 3, 10, 1.5)
	tabs := p.tabIntervals()
	if len(tabs) != 5 {
		t.Fatalf("tab count = %d, want 5", len(tabs))
	}
	assertNear(t, "first tab start", tabs[0][0], 5)
	assertNear(t, "first tab end", tabs[0][1], 15)
	assertNear(t, "last tab start", tabs[4][0], 85)
	assertNear(t, "last tab end", tabs[4][1], 95)
}

func TestAxisFingerDataPerAxis(t *testing.T) {
	fd := computeAxisFingerData(Dimensions{Width: 100, Height: 80, Depth: 60}, testMaterial)
	if got := fd.pattern(AxisX).length; got != 100 {
		t.Errorf("X pattern length = %v", got)
	}
	if got := fd.pattern(AxisY).length; got != 80 {
		t.Errorf("Y pattern length = %v", got)
	}
	if got := fd.pattern(AxisZ).length; got != 60 {
		t.Errorf("Z pattern length = %v", got)
	}
}

// sampleEdgeLevel walks a castellation polyline and returns the
// perpendicular offset (along outward) of the outline at the given
// along-edge coordinate. The polyline must be axis-aligned.
func sampleEdgeLevel(pts []PathPoint, end PathPoint, dir, outward PathPoint, at float64) float64 {
	full := append(append([]PathPoint(nil), pts...), end)
	for i := 0; i+1 < len(full); i++ {
		a, b := full[i], full[i+1]
		la := ptDot(a, dir)
		lb := ptDot(b, dir)
		if la > lb {
			la, lb = lb, la
		}
		if at >= la-EPS && at <= lb+EPS && lb-la > EPS {
			return ptDot(a, outward)
		}
	}
	return math.NaN()
}

func TestFingerEdgeComplementary(t *testing.T) {
	pat := newAxisPattern(100, 3, 10, 1.5)
	outward := PathPoint{0, -1}
	male := genFingerEdge(fingerEdgeSpec{
		Start: PathPoint{3, 3}, End: PathPoint{97, 3},
		Outward: outward, Gender: GenderMale,
		AxisStart: 3, AxisDir: 1, BaseOffset: -3,
	}, pat)
	female := genFingerEdge(fingerEdgeSpec{
		Start: PathPoint{0, 0}, End: PathPoint{100, 0},
		Outward: outward, Gender: GenderFemale,
		AxisStart: 0, AxisDir: 1, BaseOffset: -3,
	}, pat)

	// At every sample point, exactly one of the two edges holds material to
	// the boundary (level 0) and the other is recessed 3 mm inward (level
	// -3); both levels are expressed along outward.
	for _, at := range []float64{7, 12, 18, 30, 42, 50, 68, 88, 93} {
		lm := sampleEdgeLevel(male, PathPoint{97, 3}, PathPoint{1, 0}, outward, at)
		lf := sampleEdgeLevel(female, PathPoint{100, 0}, PathPoint{1, 0}, outward, at)
		if math.IsNaN(lm) || math.IsNaN(lf) {
			t.Fatalf("no level at %v", at)
		}
		// Male boundary level is y=0 (outward offset 0 from baseline);
		// recessed is y=3. The female trace lives on the same baseline.
		sum := lm + lf
		if math.Abs(sum-(-3)) > 1e-6 {
			t.Errorf("at %v: male %v + female %v = %v, want -3 (complementary)", at, lm, lf, sum)
		}
	}
}

func TestFingerEdgeStraight(t *testing.T) {
	pat := newAxisPattern(100, 3, 10, 1.5)
	pts := genFingerEdge(fingerEdgeSpec{
		Start: PathPoint{0, 0}, End: PathPoint{100, 0},
		Outward: PathPoint{0, -1}, Gender: GenderStraight,
		AxisStart: 0, AxisDir: 1,
	}, pat)
	if len(pts) != 1 {
		t.Fatalf("straight edge polyline = %v, want just the start point", pts)
	}
}

func TestFingerEdgeAxisAligned(t *testing.T) {
	pat := newAxisPattern(100, 3, 10, 1.5)
	pts := genFingerEdge(fingerEdgeSpec{
		Start: PathPoint{3, 3}, End: PathPoint{97, 3},
		Outward: PathPoint{0, -1}, Gender: GenderMale,
		AxisStart: 3, AxisDir: 1, BaseOffset: -3,
	}, pat)
	for i := 0; i+1 < len(pts); i++ {
		dx := math.Abs(pts[i+1].X - pts[i].X)
		dy := math.Abs(pts[i+1].Y - pts[i].Y)
		if dx > EPS && dy > EPS {
			t.Fatalf("diagonal segment %v -> %v on a tabbed edge", pts[i], pts[i+1])
		}
	}
}

func TestFingerEdgeReversedDirection(t *testing.T) {
	// The same axis span traced in the opposite direction must produce the
	// mirror polyline: teeth anchored to the axis, not the edge.
	pat := newAxisPattern(100, 3, 10, 1.5)
	fwd := genFingerEdge(fingerEdgeSpec{
		Start: PathPoint{0, 0}, End: PathPoint{100, 0},
		Outward: PathPoint{0, -1}, Gender: GenderFemale,
		AxisStart: 0, AxisDir: 1, BaseOffset: -3,
	}, pat)
	rev := genFingerEdge(fingerEdgeSpec{
		Start: PathPoint{100, 0}, End: PathPoint{0, 0},
		Outward: PathPoint{0, 1}, Gender: GenderFemale,
		AxisStart: 100, AxisDir: -1, BaseOffset: -3,
	}, pat)
	if len(fwd) != len(rev) {
		t.Fatalf("forward %d points, reverse %d points", len(fwd), len(rev))
	}
	// Each polyline omits its own End point, so each trace starts where the
	// other ends and the stations after the start pair up in reverse order.
	assertNear(t, "forward start", fwd[0].X, 0)
	assertNear(t, "reverse start", rev[0].X, 100)
	for i := 1; i < len(fwd); i++ {
		mirror := rev[len(rev)-i]
		// The reverse trace visits the same X stations; Y flips around the
		// baseline because outward points the other way.
		assertNear(t, "mirror x", fwd[i].X, mirror.X)
	}
}
