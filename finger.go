package boxen

import "math"

// Finger-joint generation. Tooth positions are never derived from an edge's
// own endpoints: every edge running along a world axis places its teeth from
// the shared per-axis pattern (axisPattern), so two mating panels always
// produce bit-for-bit complementary castellations regardless of which
// panel's edge is shorter.

// EdgeGender describes how one panel edge participates in a joint.
type EdgeGender uint8

const (
	// GenderStraight renders the edge as a plain segment (open edges).
	GenderStraight EdgeGender = iota
	// GenderMale renders tabs that insert into the mating panel.
	GenderMale
	// GenderFemale renders slots that receive the mating panel's tabs.
	GenderFemale
)

func (g EdgeGender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "straight"
	}
}

// --- Axis pattern ---

// axisPattern holds the tooth layout shared by every edge along one world
// axis of an assembly. Transitions are ascending coordinates (measured from
// the assembly origin on that axis) at which the pattern flips between tab
// and gap. The interval between transitions[2k] and transitions[2k+1] is a
// tab; everything outside [first, last] is the corner gap.
type axisPattern struct {
	length      float64
	toothDepth  float64 // material thickness, the castellation depth
	transitions []float64
}

// newAxisPattern lays out teeth along an axis of the given outer length.
// The corner gap at each end is fingerGap*thickness; the interior is divided
// into an odd number of alternating tab/gap units of width fingerWidth so the
// pattern begins and ends with a tab and is symmetric about the middle. Any
// remainder is split evenly between the two corner gaps. A length too short
// for a single tab produces no transitions (the edge stays straight).
func newAxisPattern(length, thickness, fingerWidth, fingerGap float64) axisPattern {
	p := axisPattern{length: length, toothDepth: thickness}
	corner := fingerGap * thickness
	interior := length - 2*corner
	if interior < fingerWidth || fingerWidth <= 0 {
		return p
	}
	n := int(math.Floor(interior / fingerWidth))
	if n%2 == 0 {
		n--
	}
	if n < 1 {
		return p
	}
	margin := (interior - float64(n)*fingerWidth) / 2
	first := corner + margin
	p.transitions = make([]float64, n+1)
	for i := 0; i <= n; i++ {
		p.transitions[i] = first + float64(i)*fingerWidth
	}
	return p
}

// tabAt reports whether the axis coordinate lies inside a tab interval.
func (p axisPattern) tabAt(coord float64) bool {
	t := p.transitions
	if len(t) == 0 || coord < t[0] || coord > t[len(t)-1] {
		return false
	}
	k := int(math.Floor((coord - t[0]) / (t[1] - t[0])))
	if k >= len(t)-1 {
		k = len(t) - 2
	}
	return k%2 == 0
}

// tabIntervals returns the [start, end] coordinate pairs of every tab.
func (p axisPattern) tabIntervals() [][2]float64 {
	var out [][2]float64
	for i := 0; i+1 < len(p.transitions); i += 2 {
		out = append(out, [2]float64{p.transitions[i], p.transitions[i+1]})
	}
	return out
}

// transitionsWithin returns the transitions strictly inside (lo, hi).
func (p axisPattern) transitionsWithin(lo, hi float64) []float64 {
	var out []float64
	for _, t := range p.transitions {
		if t > lo+EPS && t < hi-EPS {
			out = append(out, t)
		}
	}
	return out
}

// --- Axis finger data ---

// AxisFingerData carries the three per-axis tooth patterns of an assembly.
// Every edge of every panel belonging to the assembly looks up its pattern
// here; sub-assemblies compute their own from their own dimensions.
type AxisFingerData struct {
	patterns [3]axisPattern
}

// computeAxisFingerData builds the patterns from the assembly's outer
// dimensions and material constants.
func computeAxisFingerData(dims Dimensions, m Material) *AxisFingerData {
	return &AxisFingerData{patterns: [3]axisPattern{
		AxisX: newAxisPattern(dims.Width, m.Thickness, m.FingerWidth, m.FingerGap),
		AxisY: newAxisPattern(dims.Height, m.Thickness, m.FingerWidth, m.FingerGap),
		AxisZ: newAxisPattern(dims.Depth, m.Thickness, m.FingerWidth, m.FingerGap),
	}}
}

// pattern returns the tooth pattern for one world axis.
func (d *AxisFingerData) pattern(a Axis) axisPattern {
	return d.patterns[a]
}

// Anchors returns the transition coordinates along the given axis. Exposed
// for the alignment validator and for consumers that render joint guides.
func (d *AxisFingerData) Anchors(a Axis) []float64 {
	return d.patterns[a].transitions
}

// --- Edge polyline generation ---

// fingerEdgeSpec describes one edge to castellate. Start and end are the
// corner vertices of the edge in panel coordinates, already displaced by
// the corner insets of this edge and its neighbors (see cornerInset).
// AxisStart is the shared-axis coordinate of the Start vertex; AxisDir is
// +1 when the axis coordinate grows from start to end, -1 when it shrinks.
// Outward is the unit normal pointing away from the panel body. BaseOffset
// is the perpendicular level of the recessed (gap) line measured along
// Outward from the body boundary: face edges castellate inward
// (BaseOffset = -thickness), divider edges push tabs outward past the
// boundary (BaseOffset = 0).
type fingerEdgeSpec struct {
	Start, End PathPoint
	Outward    PathPoint
	Gender     EdgeGender
	AxisStart  float64
	AxisDir    float64
	BaseOffset float64
}

// cornerInset is the perpendicular displacement of a panel corner along an
// edge's inward normal. Male edges are recessed by one material thickness in
// their corner-gap region; the mating female edge holds material to the
// boundary there, so exactly one panel fills each corner.
func cornerInset(g EdgeGender, thickness float64) float64 {
	if g == GenderMale {
		return thickness
	}
	return 0
}

// genFingerEdge emits the polyline for one edge, excluding the final End
// point (the next edge supplies it). A straight edge is just its start
// point. Castellated edges step between two perpendicular levels at each
// pattern transition; all segments stay axis-aligned in panel coordinates.
func genFingerEdge(spec fingerEdgeSpec, pat axisPattern) []PathPoint {
	if spec.Gender == GenderStraight || len(pat.transitions) == 0 {
		return []PathPoint{spec.Start}
	}

	edgeVec := ptSub(spec.End, spec.Start)
	length := math.Sqrt(edgeVec.X*edgeVec.X + edgeVec.Y*edgeVec.Y)
	if length < EPS {
		return []PathPoint{spec.Start}
	}
	dir := ptScale(edgeVec, 1/length)

	// Axis range covered by this edge.
	axisLo := spec.AxisStart
	axisHi := spec.AxisStart + spec.AxisDir*length
	if axisLo > axisHi {
		axisLo, axisHi = axisHi, axisLo
	}
	trans := pat.transitionsWithin(axisLo, axisHi)
	if spec.AxisDir < 0 {
		// Walk transitions in edge order.
		for i, j := 0, len(trans)-1; i < j; i, j = i+1, j-1 {
			trans[i], trans[j] = trans[j], trans[i]
		}
	}

	// Perpendicular levels measured along Outward from the edge baseline.
	// Male: tabs at the raised level, gaps and corners recessed. Female:
	// complementary.
	depth := pat.toothDepth
	level := func(axisCoord float64) float64 {
		tab := pat.tabAt(axisCoord)
		if spec.Gender == GenderMale {
			if tab {
				return spec.BaseOffset + depth
			}
			return spec.BaseOffset
		}
		if tab {
			return spec.BaseOffset
		}
		return spec.BaseOffset + depth
	}
	toEdge := func(axisCoord float64) float64 {
		return (axisCoord - spec.AxisStart) * spec.AxisDir
	}

	cur := edgeCornerLevel(spec.Gender, spec.BaseOffset, depth)
	baseline := ptSub(spec.Start, ptScale(spec.Outward, cur))
	pts := []PathPoint{spec.Start}
	for _, tc := range trans {
		d := toEdge(tc)
		// Sample just past the transition in edge direction.
		next := level(tc + spec.AxisDir*EPS)
		if next == cur {
			continue
		}
		at := ptAdd(baseline, ptScale(dir, d))
		pts = append(pts, ptAdd(at, ptScale(spec.Outward, cur)))
		pts = append(pts, ptAdd(at, ptScale(spec.Outward, next)))
		cur = next
	}
	return pts
}

// edgeCornerLevel returns the perpendicular level of an edge in its
// corner-gap regions: recessed for male, raised for female.
func edgeCornerLevel(g EdgeGender, baseOffset, depth float64) float64 {
	if g == GenderMale {
		return baseOffset
	}
	return baseOffset + depth
}
