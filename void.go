package boxen

import (
	"math"
	"sort"
	"strconv"
)

// Bounds3 is an axis-aligned box in assembly-interior coordinates: the
// origin sits at the interior corner nearest the world origin.
type Bounds3 struct {
	X, Y, Z float64
	W, H, D float64
}

// axisRange returns the start coordinate and size along one axis.
func (b Bounds3) axisRange(a Axis) (start, size float64) {
	switch a {
	case AxisX:
		return b.X, b.W
	case AxisY:
		return b.Y, b.H
	default:
		return b.Z, b.D
	}
}

// withAxisRange returns a copy with the range replaced on one axis.
func (b Bounds3) withAxisRange(a Axis, start, size float64) Bounds3 {
	switch a {
	case AxisX:
		b.X, b.W = start, size
	case AxisY:
		b.Y, b.H = start, size
	default:
		b.Z, b.D = start, size
	}
	return b
}

// SubdivisionKind distinguishes linear from grid subdivisions.
type SubdivisionKind uint8

const (
	SubdivisionLinear SubdivisionKind = iota
	SubdivisionGrid
)

// Position is one divider position inside a void. Value is an absolute
// coordinate in interior coordinates. Fraction-mode positions rescale with
// their void so their relative placement is preserved; absolute positions
// stay put and reject resizes that would push them outside their void.
type Position struct {
	Value    float64
	Fraction bool
}

// SubdivisionSpec records how a void is split. Linear subdivisions use Axis
// and Positions; grid subdivisions additionally use AxisB and PositionsB,
// and their children are the Cartesian product of the cells.
type SubdivisionSpec struct {
	Kind       SubdivisionKind
	Axis       Axis
	Positions  []Position
	AxisB      Axis
	PositionsB []Position
}

func (s *SubdivisionSpec) clone() *SubdivisionSpec {
	if s == nil {
		return nil
	}
	c := *s
	c.Positions = append([]Position(nil), s.Positions...)
	c.PositionsB = append([]Position(nil), s.PositionsB...)
	return &c
}

// Void is an axis-aligned interior region of an assembly. Exactly one of
// the following holds: it is a leaf; it is subdivided (linear or grid); or
// it hosts a sub-assembly.
type Void struct {
	id       string
	scene    *Scene
	assembly *Assembly
	parent   *Void
	bounds   Bounds3

	subdivision *SubdivisionSpec
	children    []*Void

	// subAssembly is the nested assembly filling this leaf void, if any.
	subAssembly *Assembly
}

func newVoid(s *Scene, a *Assembly, parent *Void, b Bounds3) *Void {
	return &Void{id: s.newNodeID("void"), scene: s, assembly: a, parent: parent, bounds: b}
}

// ID returns the void's stable identifier.
func (v *Void) ID() string { return v.id }

// Bounds returns the void's region in interior coordinates.
func (v *Void) Bounds() Bounds3 { return v.bounds }

// Assembly returns the owning assembly.
func (v *Void) Assembly() *Assembly { return v.assembly }

// Children returns the child voids. The returned slice MUST NOT be mutated.
func (v *Void) Children() []*Void { return v.children }

// Subdivision returns the subdivision spec, or nil for a leaf.
func (v *Void) Subdivision() *SubdivisionSpec { return v.subdivision }

// SubAssembly returns the hosted sub-assembly, or nil.
func (v *Void) SubAssembly() *Assembly { return v.subAssembly }

// IsLeaf reports whether the void has no subdivision.
func (v *Void) IsLeaf() bool { return v.subdivision == nil }

func (v *Void) markDirty() {
	if v.scene != nil {
		v.scene.markDirty()
	}
}

// --- Subdivision ---

// validatePositions checks that values are strictly ascending, strictly
// inside the void on the axis, and that every resulting child span is at
// least the material thickness wide.
func (v *Void) validatePositions(axis Axis, positions []Position) dispatchError {
	if len(positions) == 0 {
		return errInvalidArgument
	}
	start, size := v.bounds.axisRange(axis)
	mt := v.assembly.material.Thickness
	prev := start - mt/2 // so the first child span check works uniformly
	for _, p := range positions {
		if p.Value <= start || p.Value >= start+size {
			return errInvalidArgument
		}
		// Child span between the previous divider (or wall) and this one.
		if p.Value-mt/2-(prev+mt/2) < mt-EPS {
			return errInvalidArgument
		}
		prev = p.Value
	}
	if start+size-(prev+mt/2) < mt-EPS {
		return errInvalidArgument
	}
	return errOK
}

// childSpans computes the child ranges along the subdivided axis. Child i
// spans from the void start (i = 0) or positions[i-1]+mt/2 to
// positions[i]-mt/2 (i < n) or the void end (i = n).
func childSpans(start, size, mt float64, positions []Position) [][2]float64 {
	n := len(positions)
	out := make([][2]float64, 0, n+1)
	lo := start
	for _, p := range positions {
		hi := p.Value - mt/2
		out = append(out, [2]float64{lo, hi - lo})
		lo = p.Value + mt/2
	}
	out = append(out, [2]float64{lo, start + size - lo})
	return out
}

// addLinearSubdivision splits a leaf void on one axis. The new dividers'
// slot requirements are checked against every existing divider they meet;
// a conflict rejects the whole operation.
func (v *Void) addLinearSubdivision(axis Axis, positions []Position) dispatchError {
	if v.subdivision != nil || v.subAssembly != nil {
		return errInvalidArgument
	}
	if !sort.SliceIsSorted(positions, func(i, j int) bool {
		return positions[i].Value < positions[j].Value
	}) {
		return errInvalidArgument
	}
	if err := v.validatePositions(axis, positions); err != errOK {
		return err
	}
	spec := &SubdivisionSpec{Kind: SubdivisionLinear, Axis: axis, Positions: append([]Position(nil), positions...)}
	if v.assembly.conflictingCrossLap(v, spec) {
		return errConflictingCrossLap
	}
	v.subdivision = spec
	v.rebuildChildren()
	v.markDirty()
	return errOK
}

// addGridSubdivision splits a leaf void on two distinct axes at once,
// producing the Cartesian product of cells. Every divider spans the void
// fully, so each (positionA, positionB) pair crosses in a cross-lap.
func (v *Void) addGridSubdivision(axisA Axis, positionsA []Position, axisB Axis, positionsB []Position) dispatchError {
	if v.subdivision != nil || v.subAssembly != nil || axisA == axisB {
		return errInvalidArgument
	}
	for _, ps := range [][]Position{positionsA, positionsB} {
		if !sort.SliceIsSorted(ps, func(i, j int) bool { return ps[i].Value < ps[j].Value }) {
			return errInvalidArgument
		}
	}
	if err := v.validatePositions(axisA, positionsA); err != errOK {
		return err
	}
	if err := v.validatePositions(axisB, positionsB); err != errOK {
		return err
	}
	spec := &SubdivisionSpec{
		Kind:       SubdivisionGrid,
		Axis:       axisA,
		Positions:  append([]Position(nil), positionsA...),
		AxisB:      axisB,
		PositionsB: append([]Position(nil), positionsB...),
	}
	if v.assembly.conflictingCrossLap(v, spec) {
		return errConflictingCrossLap
	}
	v.subdivision = spec
	v.rebuildChildren()
	v.markDirty()
	return errOK
}

// removeSubdivision drops all children, their nested content, and the
// subdivision spec. The void becomes a leaf again.
func (v *Void) removeSubdivision() dispatchError {
	if v.subdivision == nil {
		return errInvalidArgument
	}
	v.subdivision = nil
	v.children = nil
	v.markDirty()
	return errOK
}

// purge clears both subdivision and sub-assembly, whatever is present.
func (v *Void) purge() dispatchError {
	v.subdivision = nil
	v.children = nil
	v.subAssembly = nil
	v.markDirty()
	return errOK
}

// moveSubdivision changes one divider position. The move must keep the
// divider strictly between its neighbors with minimum separation, and
// nested absolute positions must survive the resulting child-bounds change.
func (v *Void) moveSubdivision(axis Axis, index int, newValue float64) dispatchError {
	spec := v.subdivision
	if spec == nil {
		return errInvalidArgument
	}
	ps := spec.Positions
	if spec.Kind == SubdivisionGrid && axis == spec.AxisB {
		ps = spec.PositionsB
	} else if axis != spec.Axis {
		return errInvalidArgument
	}
	if index < 0 || index >= len(ps) {
		return errInvalidArgument
	}
	old := ps[index].Value
	ps[index].Value = newValue
	if err := v.revalidateAndRebuild(axis, ps); err != errOK {
		ps[index].Value = old
		return err
	}
	v.markDirty()
	return errOK
}

// revalidateAndRebuild re-checks the position list and rebuilds children,
// preserving nested subdivisions where their positions remain valid.
func (v *Void) revalidateAndRebuild(axis Axis, ps []Position) dispatchError {
	if !sort.SliceIsSorted(ps, func(i, j int) bool { return ps[i].Value < ps[j].Value }) {
		return errInvalidArgument
	}
	if err := v.validatePositions(axis, ps); err != errOK {
		return err
	}
	if v.assembly.conflictingCrossLap(v, v.subdivision) {
		return errConflictingCrossLap
	}
	// Dry-run the child bounds to make sure nested content survives.
	if err := v.reboundChildren(true); err != errOK {
		return err
	}
	return v.reboundChildren(false)
}

// rebuildChildren discards existing children and creates fresh leaf voids
// from the subdivision spec.
func (v *Void) rebuildChildren() {
	v.children = nil
	spec := v.subdivision
	if spec == nil {
		return
	}
	mt := v.assembly.material.Thickness
	if spec.Kind == SubdivisionLinear {
		start, size := v.bounds.axisRange(spec.Axis)
		for _, span := range childSpans(start, size, mt, spec.Positions) {
			b := v.bounds.withAxisRange(spec.Axis, span[0], span[1])
			v.children = append(v.children, newVoid(v.scene, v.assembly, v, b))
		}
		return
	}
	startA, sizeA := v.bounds.axisRange(spec.Axis)
	startB, sizeB := v.bounds.axisRange(spec.AxisB)
	spansA := childSpans(startA, sizeA, mt, spec.Positions)
	spansB := childSpans(startB, sizeB, mt, spec.PositionsB)
	for _, sa := range spansA {
		for _, sb := range spansB {
			b := v.bounds.withAxisRange(spec.Axis, sa[0], sa[1]).
				withAxisRange(spec.AxisB, sb[0], sb[1])
			v.children = append(v.children, newVoid(v.scene, v.assembly, v, b))
		}
	}
}

// reboundChildren recomputes child bounds from the current spec without
// recreating the child nodes, so nested subdivisions survive a move or
// resize. With dryRun set it only validates.
func (v *Void) reboundChildren(dryRun bool) dispatchError {
	spec := v.subdivision
	if spec == nil {
		return errOK
	}
	mt := v.assembly.material.Thickness
	var bounds []Bounds3
	if spec.Kind == SubdivisionLinear {
		start, size := v.bounds.axisRange(spec.Axis)
		for _, span := range childSpans(start, size, mt, spec.Positions) {
			bounds = append(bounds, v.bounds.withAxisRange(spec.Axis, span[0], span[1]))
		}
	} else {
		startA, sizeA := v.bounds.axisRange(spec.Axis)
		startB, sizeB := v.bounds.axisRange(spec.AxisB)
		for _, sa := range childSpans(startA, sizeA, mt, spec.Positions) {
			for _, sb := range childSpans(startB, sizeB, mt, spec.PositionsB) {
				bounds = append(bounds, v.bounds.withAxisRange(spec.Axis, sa[0], sa[1]).
					withAxisRange(spec.AxisB, sb[0], sb[1]))
			}
		}
	}
	if len(bounds) != len(v.children) {
		// Children were never built (fresh spec); nothing nested to check.
		if !dryRun {
			v.rebuildChildren()
		}
		return errOK
	}
	for i, c := range v.children {
		if err := c.checkRebound(bounds[i], dryRun); err != errOK {
			return err
		}
	}
	return errOK
}

// checkRebound applies (or validates) new bounds on a child void and
// cascades into its own subdivision. Fraction positions rescale to keep
// their relative placement; absolute positions must stay strictly inside.
func (v *Void) checkRebound(b Bounds3, dryRun bool) dispatchError {
	old := v.bounds
	if v.subdivision != nil {
		for _, set := range []struct {
			axis Axis
			ps   []Position
		}{
			{v.subdivision.Axis, v.subdivision.Positions},
			{v.subdivision.AxisB, v.subdivision.PositionsB},
		} {
			if len(set.ps) == 0 {
				continue
			}
			oldStart, oldSize := old.axisRange(set.axis)
			newStart, newSize := b.axisRange(set.axis)
			for i := range set.ps {
				nv := set.ps[i].Value
				if set.ps[i].Fraction && oldSize > EPS {
					nv = newStart + (nv-oldStart)/oldSize*newSize
				}
				if nv <= newStart+EPS || nv >= newStart+newSize-EPS {
					return errInvalidArgument
				}
				if !dryRun {
					set.ps[i].Value = nv
				}
			}
		}
	}
	if v.subAssembly != nil {
		dims := deriveSubDimensions(b, v.subAssembly.clearance)
		mt := v.subAssembly.material.Thickness
		if dims.Width <= 2*mt || dims.Height <= 2*mt || dims.Depth <= 2*mt {
			return errInvalidArgument
		}
	}
	if dryRun {
		return errOK
	}
	v.bounds = b
	if err := v.reboundChildren(false); err != errOK {
		return err
	}
	if v.subAssembly != nil {
		return v.subAssembly.refreshFromHost()
	}
	return errOK
}

// rescale validates and applies a dimension change on the root void.
func (v *Void) rescale(newBounds Bounds3) dispatchError {
	if err := v.checkRebound(newBounds, true); err != errOK {
		return err
	}
	return v.checkRebound(newBounds, false)
}

// --- Sub-assembly hosting ---

// createSubAssembly spawns a nested assembly filling this leaf void, inset
// by the clearance on every face. Only permitted on a leaf void with no
// existing sub-assembly.
func (v *Void) createSubAssembly(axis Axis, clearance float64) (*Assembly, dispatchError) {
	if v.subdivision != nil || v.subAssembly != nil {
		return nil, errInvalidArgument
	}
	if clearance < 0 {
		return nil, errInvalidArgument
	}
	dims := deriveSubDimensions(v.bounds, clearance)
	m := v.assembly.material
	if dims.Width <= 2*m.Thickness || dims.Height <= 2*m.Thickness || dims.Depth <= 2*m.Thickness {
		return nil, errInvalidArgument
	}
	sub := newAssembly(v.scene, dims, m)
	sub.id = v.scene.newNodeID("subassembly")
	sub.axis = axis
	sub.host = v
	sub.clearance = clearance
	v.subAssembly = sub
	v.markDirty()
	return sub, errOK
}

// removeSubAssembly drops the hosted sub-assembly.
func (v *Void) removeSubAssembly() dispatchError {
	if v.subAssembly == nil {
		return errInvalidArgument
	}
	v.subAssembly = nil
	v.markDirty()
	return errOK
}

// --- Clone / walk / dividers ---

func (v *Void) clone(s *Scene, a *Assembly, parent *Void) *Void {
	c := &Void{
		id:          v.id,
		scene:       s,
		assembly:    a,
		parent:      parent,
		bounds:      v.bounds,
		subdivision: v.subdivision.clone(),
	}
	for _, child := range v.children {
		c.children = append(c.children, child.clone(s, a, c))
	}
	if v.subAssembly != nil {
		c.subAssembly = v.subAssembly.clone(s, c)
	}
	return c
}

func (v *Void) walk(visit func(node any)) {
	visit(v)
	for _, c := range v.children {
		c.walk(visit)
	}
	if v.subAssembly != nil {
		v.subAssembly.walk(visit)
	}
}

// dividerRef locates one divider plane in an assembly's void tree.
type dividerRef struct {
	void  *Void
	axis  Axis
	index int     // index into the position list for that axis
	pos   float64 // absolute interior coordinate of the divider center
}

// panelID derives the deterministic divider panel identifier.
func (d dividerRef) panelID() string {
	return "divider:" + d.void.id + ":" + d.axis.String() + ":" + strconv.Itoa(d.index)
}

// span returns the divider's extent along a non-normal axis (its void's
// range there).
func (d dividerRef) span(a Axis) (start, size float64) {
	return d.void.bounds.axisRange(a)
}

func (v *Void) collectDividers(out *[]dividerRef) {
	if spec := v.subdivision; spec != nil {
		for i, p := range spec.Positions {
			*out = append(*out, dividerRef{void: v, axis: spec.Axis, index: i, pos: p.Value})
		}
		if spec.Kind == SubdivisionGrid {
			for i, p := range spec.PositionsB {
				*out = append(*out, dividerRef{void: v, axis: spec.AxisB, index: i, pos: p.Value})
			}
		}
	}
	for _, c := range v.children {
		c.collectDividers(out)
	}
}

// dividersMeet reports whether two divider planes on different axes
// physically touch: their slabs overlap or abut on all three axes. Abutting
// counts because a terminating divider ends exactly at the plane it slots
// into.
func dividersMeet(a, b dividerRef, mt float64) bool {
	if a.axis == b.axis {
		return false
	}
	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		aLo, aHi := dividerRange(a, axis, mt)
		bLo, bHi := dividerRange(b, axis, mt)
		if aLo > bHi+EPS || bLo > aHi+EPS {
			return false
		}
	}
	return true
}

// dividerRange returns a divider slab's extent along one axis.
func dividerRange(d dividerRef, a Axis, mt float64) (lo, hi float64) {
	if a == d.axis {
		return d.pos - mt/2, d.pos + mt/2
	}
	start, size := d.span(a)
	return start, start + size
}

// conflictingCrossLap reports whether adding spec to void v would put two
// same-axis dividers that share a perpendicular divider closer than the
// cross-lap separation (2*mt between slot centers).
func (a *Assembly) conflictingCrossLap(v *Void, spec *SubdivisionSpec) bool {
	// The spec stands in for v's subdivision, so v's own dividers are
	// excluded from the existing set (they would double-count during a
	// revalidation, where the spec is already installed).
	var existing []dividerRef
	for _, d := range a.collectDividers() {
		if d.void != v {
			existing = append(existing, d)
		}
	}
	var proposed []dividerRef
	for i, p := range spec.Positions {
		proposed = append(proposed, dividerRef{void: v, axis: spec.Axis, index: i, pos: p.Value})
	}
	if spec.Kind == SubdivisionGrid {
		for i, p := range spec.PositionsB {
			proposed = append(proposed, dividerRef{void: v, axis: spec.AxisB, index: i, pos: p.Value})
		}
	}
	all := append(append([]dividerRef(nil), existing...), proposed...)
	sep := a.crossLapSeparation()
	mt := a.material.Thickness
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			d1, d2 := all[i], all[j]
			if d1.axis != d2.axis {
				continue
			}
			if math.Abs(d1.pos-d2.pos) >= sep-EPS {
				continue
			}
			// Same-axis, too close: conflict only if a perpendicular
			// divider meets both (it would carry both slots).
			for _, d3 := range all {
				if d3.axis == d1.axis {
					continue
				}
				if dividersMeet(d1, d3, mt) && dividersMeet(d2, d3, mt) {
					return true
				}
			}
		}
	}
	return false
}

