package boxen

import "math"

// Hole generation: cross-lap slots between crossing dividers, tab slots
// where dividers and sub-assembly walls meet a panel, slot holes behind
// displaced female edges, and user cutouts. Every hole is wound opposite
// to the outline (clockwise) and must sit strictly inside it; anything
// degenerate is dropped and logged, never emitted.

// addError appends an alignment error to the generator's sink.
func (g *panelGenerator) addError(code dispatchError, panelID, detail string) {
	if g.errors != nil {
		*g.errors = append(*g.errors, AlignmentError{Code: code, PanelID: panelID, Detail: detail})
	}
}

// emitHole validates winding and containment, then appends the hole.
func (g *panelGenerator) emitHole(p *Panel, pts []PathPoint, what string) {
	pts = dedupePoints(pts, EPS)
	if len(pts) < 3 {
		g.addError(errDegenerateGeometry, p.ID, what+": degenerate hole dropped")
		return
	}
	if signedArea(pts) > 0 {
		reversePoints(pts)
	}
	if !polyContainsPoly(p.Outline, pts, holeClearance) {
		g.addError(errDegenerateGeometry, p.ID, what+": hole not strictly inside outline")
		return
	}
	p.Holes = append(p.Holes, pts)
}

// emitHoleRect is emitHole for axis-aligned rectangles.
func (g *panelGenerator) emitHoleRect(p *Panel, r Rect, what string) {
	if r.Empty() {
		g.addError(errDegenerateGeometry, p.ID, what+": empty slot dropped")
		return
	}
	g.emitHole(p, r.Points(), what)
}

// generateSlotHoles computes the joint-driven holes for one panel. It runs
// before the safe area (which subtracts clearance around these slots);
// cutout holes run after, against the finished safe area.
func (g *panelGenerator) generateSlotHoles(a *Assembly, p *Panel) {
	switch p.Source.Kind {
	case SourceFace:
		g.faceJointSlots(a, p)
		g.subAssemblySlots(a, p)
	case SourceDivider:
		g.dividerJointSlots(a, p)
	}
	g.displacedFemaleSlots(a, p)
}

// --- Divider tab slots on faces ---

// faceJointSlots emits the through-slots a face panel needs wherever a
// divider edge terminates against it. Slot positions come from the same
// axis pattern the divider's edge castellation uses, so tabs and slots
// align exactly.
func (g *panelGenerator) faceJointSlots(a *Assembly, p *Panel) {
	f := p.Source.Face
	mt := a.material.Thickness
	lx, _ := faceLocalAxes(f)
	for _, d := range a.collectDividers() {
		if d.axis == f.normalAxis() {
			continue // divider parallel to this face never touches it
		}
		if !dividerTouchesFace(a, d, f) {
			continue
		}
		// The divider's terminating edge runs along the remaining axis.
		runAxis := otherAxis(d.axis, f.normalAxis())
		spanLo, spanSize := d.void.bounds.axisRange(runAxis)
		lo, hi := spanLo+mt, spanLo+mt+spanSize
		center := d.pos + mt // divider plane center, outer coordinates
		for _, tab := range a.FingerData().pattern(runAxis).tabIntervals() {
			tLo := math.Max(tab[0], lo)
			tHi := math.Min(tab[1], hi)
			if tHi-tLo <= EPS {
				continue
			}
			g.emitHoleRect(p, faceLocalRect(lx, d.axis, center-mt/2, mt, runAxis, tLo, tHi-tLo), "divider-slot")
		}
	}
}

// dividerTouchesFace reports whether the divider's edge on the face's axis
// reaches the assembly interior boundary on the face's side.
func dividerTouchesFace(a *Assembly, d dividerRef, f FaceID) bool {
	axis := f.normalAxis()
	start, size := d.void.bounds.axisRange(axis)
	_, interior := a.interiorBoundsRange(axis)
	pos, neg := facesForAxis(axis)
	if f == neg {
		return start <= EPS
	}
	if f == pos {
		return start+size >= interior-EPS
	}
	return false
}

// otherAxis returns the axis that is neither a nor b.
func otherAxis(a, b Axis) Axis {
	for _, c := range []Axis{AxisX, AxisY, AxisZ} {
		if c != a && c != b {
			return c
		}
	}
	return AxisX
}

// faceLocalRect builds a panel-local rectangle from two world-axis spans.
func faceLocalRect(lx, axisA Axis, aLo, aSize float64, axisB Axis, bLo, bSize float64) Rect {
	if axisA == lx {
		return Rect{X: aLo, Width: aSize, Y: bLo, Height: bSize}
	}
	return Rect{X: bLo, Width: bSize, Y: aLo, Height: aSize}
}

// --- Sub-assembly wall slots ---

// subAssemblySlots emits slots where a sub-assembly's outer wall passes
// through a parent face: only possible with zero clearance and the hosting
// void flush against the interior boundary.
func (g *panelGenerator) subAssemblySlots(a *Assembly, p *Panel) {
	f := p.Source.Face
	axis := f.normalAxis()
	mt := a.material.Thickness
	lx, _ := faceLocalAxes(f)
	var visit func(v *Void)
	visit = func(v *Void) {
		for _, c := range v.children {
			visit(c)
		}
		sub := v.subAssembly
		if sub == nil || sub.clearance > EPS || !dividerVoidTouchesFace(a, v, f) {
			return
		}
		// Each solid sub wall perpendicular to the parent face leaves a
		// mt-wide footprint across the face.
		for wf := FaceID(0); wf < faceCount; wf++ {
			if !sub.faces[wf].Solid || wf.normalAxis() == axis {
				continue
			}
			wallAxis := wf.normalAxis()
			runAxis := otherAxis(axis, wallAxis)
			wallLo, wallSize := v.bounds.axisRange(wallAxis)
			wPos, wNeg := facesForAxis(wallAxis)
			wallPlane := wallLo + mt // outer coordinate of the wall's min-side sheet start
			if wf == wPos {
				wallPlane = wallLo + mt + wallSize - mt
			} else if wf != wNeg {
				continue
			}
			runLo, runSize := v.bounds.axisRange(runAxis)
			g.emitHoleRect(p, faceLocalRect(lx, wallAxis, wallPlane, mt, runAxis, runLo+mt, runSize), "subassembly-slot")
		}
	}
	visit(a.root)
}

// dividerVoidTouchesFace reports whether the void is flush against the
// interior boundary on the face's side.
func dividerVoidTouchesFace(a *Assembly, v *Void, f FaceID) bool {
	axis := f.normalAxis()
	start, size := v.bounds.axisRange(axis)
	_, interior := a.interiorBoundsRange(axis)
	pos, neg := facesForAxis(axis)
	if f == neg {
		return start <= EPS
	}
	if f == pos {
		return start+size >= interior-EPS
	}
	return false
}

// --- Cross-lap and terminating slots on dividers ---

// dividerJointSlots emits cross-lap slots for every divider crossing this
// one, and tab slots for every divider terminating against it.
func (g *panelGenerator) dividerJointSlots(a *Assembly, p *Panel) {
	mt := a.material.Thickness
	self := dividerRef{}
	found := false
	all := a.collectDividers()
	for _, d := range all {
		if d.panelID() == p.ID {
			self = d
			found = true
			break
		}
	}
	if !found {
		return
	}
	lx, ly := dividerLocalAxes(self.axis)
	baseX, _ := self.void.bounds.axisRange(lx)
	baseY, _ := self.void.bounds.axisRange(ly)
	base := map[Axis]float64{lx: baseX, ly: baseY}

	for _, d2 := range all {
		if d2.panelID() == p.ID || d2.axis == self.axis {
			continue
		}
		if !dividersMeet(self, d2, mt) {
			continue
		}
		if dividersCross(self, d2, mt) {
			g.crossLapSlot(a, p, self, d2, base)
			continue
		}
		if dividerTerminatesAt(d2, self, mt) {
			g.terminatingSlots(a, p, self, d2, base)
		}
	}
}

// dividersCross reports whether both dividers extend strictly past each
// other (a physical crossing, as opposed to a T-joint).
func dividersCross(d1, d2 dividerRef, mt float64) bool {
	return spanStrictlyContains(d1, d2.axis, d2.pos, mt) &&
		spanStrictlyContains(d2, d1.axis, d1.pos, mt)
}

// spanStrictlyContains reports whether d's extent on the axis strictly
// contains the slab [pos-mt/2, pos+mt/2].
func spanStrictlyContains(d dividerRef, axis Axis, pos, mt float64) bool {
	start, size := d.void.bounds.axisRange(axis)
	return pos-mt/2 > start+EPS && pos+mt/2 < start+size-EPS
}

// dividerTerminatesAt reports whether d2's extent on d1's normal axis ends
// at d1's plane (either side).
func dividerTerminatesAt(d2, d1 dividerRef, mt float64) bool {
	start, size := d2.void.bounds.axisRange(d1.axis)
	return math.Abs(start-(d1.pos+mt/2)) <= EPS || math.Abs(start+size-(d1.pos-mt/2)) <= EPS
}

// crossLapSlot emits the half-depth slot this panel carries for one
// crossing divider. Which side the slot opens from alternates with the
// pair's position indices so neither divider family dominates.
func (g *panelGenerator) crossLapSlot(a *Assembly, p *Panel, self, d2 dividerRef, base map[Axis]float64) {
	mt := a.material.Thickness
	lx, _ := dividerLocalAxes(self.axis)
	// Crossing coordinate sits on d2's normal axis; the slot runs along the
	// shared perpendicular axis.
	crossAxis := d2.axis
	runAxis := otherAxis(self.axis, crossAxis)
	crossLocal := d2.pos - base[crossAxis]

	_, runSize := self.void.bounds.axisRange(runAxis)
	depth := runSize / 2
	fromMax := (self.index+d2.index)%2 == 0
	if self.axis > d2.axis {
		fromMax = !fromMax
	}
	var runLo float64
	if fromMax {
		runLo = runSize - depth
	}
	var r Rect
	if crossAxis == lx {
		r = Rect{X: crossLocal - mt/2, Width: mt, Y: runLo, Height: depth}
	} else {
		r = Rect{X: runLo, Width: depth, Y: crossLocal - mt/2, Height: mt}
	}
	r = insetTowardInterior(r, fromMax, crossAxis == lx)
	g.emitHoleRect(p, r, "cross-lap")
}

// insetTowardInterior pulls the slot's open end back by the hole clearance
// so the emitted hole stays strictly inside the outline.
func insetTowardInterior(r Rect, fromMax, crossOnX bool) Rect {
	if crossOnX {
		// Slot runs along Y.
		if fromMax {
			r.Height -= holeClearance
		} else {
			r.Y += holeClearance
			r.Height -= holeClearance
		}
	} else {
		if fromMax {
			r.Width -= holeClearance
		} else {
			r.X += holeClearance
			r.Width -= holeClearance
		}
	}
	return r
}

// terminatingSlots emits tab slots where divider d2 T-joints into this
// panel. Tab positions come from the shared axis pattern of the axis d2's
// terminating edge runs along.
func (g *panelGenerator) terminatingSlots(a *Assembly, p *Panel, self, d2 dividerRef, base map[Axis]float64) {
	mt := a.material.Thickness
	lx, _ := dividerLocalAxes(self.axis)
	runAxis := otherAxis(self.axis, d2.axis)
	spanLo, spanSize := d2.void.bounds.axisRange(runAxis)
	lo, hi := spanLo+mt, spanLo+mt+spanSize
	crossLocal := d2.pos - base[d2.axis]
	for _, tab := range a.FingerData().pattern(runAxis).tabIntervals() {
		tLo := math.Max(tab[0], lo)
		tHi := math.Min(tab[1], hi)
		if tHi-tLo <= EPS {
			continue
		}
		// Convert outer run coordinates to panel-local.
		rLo := tLo - mt - base[runAxis]
		var r Rect
		if d2.axis == lx {
			r = Rect{X: crossLocal - mt/2, Width: mt, Y: rLo, Height: tHi - tLo}
		} else {
			r = Rect{X: rLo, Width: tHi - tLo, Y: crossLocal - mt/2, Height: mt}
		}
		g.emitHoleRect(p, r, "terminating-slot")
	}
}

// --- Displaced female joints ---

// displacedFemaleSlots emits the slot holes behind a female edge whose
// boundary moved outward (extension or custom path): the mating tabs still
// land in the original joint strip, which is now interior material.
func (g *panelGenerator) displacedFemaleSlots(a *Assembly, p *Panel) {
	mt := a.material.Thickness
	var ctx panelEdgeContext
	if p.Source.Kind == SourceFace {
		ctx = facePanelEdgeContext(a, p.Source.Face)
	} else {
		return // divider edges are never female
	}
	plan := planEdges(a, p, ctx)
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		if !plan[e].slotsAsHoles() {
			continue
		}
		g2 := edgeGeoms[e]
		axisIdx := 0
		if !g2.isX {
			axisIdx = 1
		}
		axis := ctx.axes[axisIdx]
		L := edgeLength(p, e)
		for _, tab := range a.FingerData().pattern(axis).tabIntervals() {
			tLo := math.Max(tab[0], 0)
			tHi := math.Min(tab[1], L)
			if tHi-tLo <= EPS {
				continue
			}
			var r Rect
			switch e {
			case EdgeBottom:
				r = Rect{X: tLo, Width: tHi - tLo, Y: 0, Height: mt}
			case EdgeTop:
				r = Rect{X: tLo, Width: tHi - tLo, Y: p.Height - mt, Height: mt}
			case EdgeLeft:
				r = Rect{X: 0, Width: mt, Y: tLo, Height: tHi - tLo}
			default: // right
				r = Rect{X: p.Width - mt, Width: mt, Y: tLo, Height: tHi - tLo}
			}
			g.emitHoleRect(p, r, "displaced-joint-slot")
		}
	}
}

// --- Cutouts ---

// cutoutHoles lowers user cutouts into holes. A cutout is emitted only when
// its polygon sits strictly inside the safe area; anything else was either
// rejected at dispatch time or has been invalidated by a later change, and
// is logged and skipped here.
func (g *panelGenerator) cutoutHoles(a *Assembly, p *Panel) {
	cuts := a.overlays.Cutouts[p.ID]
	if len(cuts) == 0 {
		return
	}
	for _, c := range cuts {
		poly := c.polygon()
		if len(poly) < 3 {
			g.addError(errDegenerateGeometry, p.ID, "cutout "+c.ID+": fewer than 3 points")
			continue
		}
		if !cutoutInsideSafeArea(poly, p.SafeArea) {
			g.addError(errSafeAreaViolation, p.ID, "cutout "+c.ID+": outside safe area")
			continue
		}
		g.emitHole(p, poly, "cutout "+c.ID)
	}
}

// cutoutInsideSafeArea reports whether the polygon's bounds are entirely
// covered by the safe-area rectangle set.
func cutoutInsideSafeArea(poly []PathPoint, safe []Rect) bool {
	if len(safe) == 0 {
		return false
	}
	return rectSetCovers(safe, polyBounds(poly))
}
