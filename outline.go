package boxen

import "math"

// Panel outline synthesis. The body rectangle is traced counter-clockwise
// from the bottom-left corner (bottom, right, top, left); each edge's
// straight segment is replaced by applying, in order: edge extension,
// custom edge path, finger joint. Corner fillets run over the assembled
// outline last.

// panelEdgeContext carries the axis mapping a panel's edges use to look up
// the shared tooth pattern.
type panelEdgeContext struct {
	axes       [2]Axis    // world axes of local X and local Y
	axisBase   [2]float64 // outer-axis coordinate of the panel-local origin
	baseOffset float64    // castellation gap level: -mt for faces, 0 for dividers
	isFace     bool
	face       FaceID
}

func facePanelEdgeContext(a *Assembly, f FaceID) panelEdgeContext {
	lx, ly := faceLocalAxes(f)
	return panelEdgeContext{
		axes:       [2]Axis{lx, ly},
		baseOffset: -a.material.Thickness,
		isFace:     true,
		face:       f,
	}
}

func dividerPanelEdgeContext(a *Assembly, d dividerRef) panelEdgeContext {
	lx, ly := dividerLocalAxes(d.axis)
	mt := a.material.Thickness
	sx, _ := d.void.bounds.axisRange(lx)
	sy, _ := d.void.bounds.axisRange(ly)
	return panelEdgeContext{
		axes:     [2]Axis{lx, ly},
		axisBase: [2]float64{sx + mt, sy + mt},
	}
}

// edgeGeom is the fixed per-edge trace data: direction, outward normal, and
// body corner layout for the counter-clockwise bottom/right/top/left walk.
type edgeGeom struct {
	dir     PathPoint
	outward PathPoint
	isX     bool // runs along local X
	axisDir float64
}

var edgeGeoms = [panelEdgeCount]edgeGeom{
	EdgeBottom: {dir: PathPoint{1, 0}, outward: PathPoint{0, -1}, isX: true, axisDir: 1},
	EdgeRight:  {dir: PathPoint{0, 1}, outward: PathPoint{1, 0}, isX: false, axisDir: 1},
	EdgeTop:    {dir: PathPoint{-1, 0}, outward: PathPoint{0, 1}, isX: true, axisDir: -1},
	EdgeLeft:   {dir: PathPoint{0, -1}, outward: PathPoint{-1, 0}, isX: false, axisDir: -1},
}

// bodyCorners returns the rectangle corners in trace order: the start
// corner of each edge.
func bodyCorners(w, h float64) [panelEdgeCount]PathPoint {
	return [panelEdgeCount]PathPoint{
		EdgeBottom: {0, 0},
		EdgeRight:  {w, 0},
		EdgeTop:    {w, h},
		EdgeLeft:   {0, h},
	}
}

// edgeLength returns a body edge's length.
func edgeLength(p *Panel, e PanelEdge) float64 {
	if edgeGeoms[e].isX {
		return p.Width
	}
	return p.Height
}

// resolvedEdgePath returns the custom path in effect for one edge: a stored
// overlay wins; otherwise the feet preset lowers to a path on the bottom
// edge of side-wall face panels.
func resolvedEdgePath(a *Assembly, p *Panel, ctx panelEdgeContext, e PanelEdge) *EdgePath {
	if m := a.overlays.CustomEdgePaths[p.ID]; m != nil {
		if ep := m[e]; ep != nil {
			return ep
		}
	}
	if a.feet != nil && a.feet.Enabled && ctx.isFace && e == EdgeBottom && isSideWall(ctx.face) {
		return feetEdgePath(*a.feet, edgeLength(p, e))
	}
	return nil
}

func isSideWall(f FaceID) bool {
	return f == FaceFront || f == FaceBack || f == FaceLeft || f == FaceRight
}

// feetEdgePath lowers the feet preset to a mirrored edge path: a notch
// down-and-back between the inset and inset+width, tapered by the slope
// angle. Offsets are outward (downward on a bottom edge).
func feetEdgePath(cfg FeetConfig, edgeLen float64) *EdgePath {
	if edgeLen <= 0 {
		return nil
	}
	i := cfg.Inset
	w := cfg.Width
	h := cfg.Height
	s := h * math.Tan(cfg.SlopeAngle)
	t := func(x float64) float64 { return x / edgeLen }
	return &EdgePath{
		Mirrored: true,
		Points: []EdgePathPoint{
			{T: 0, Offset: 0},
			{T: t(i), Offset: 0},
			{T: t(i + s), Offset: h},
			{T: t(i + w - s), Offset: h},
			{T: t(i + w), Offset: 0},
			{T: 0.5, Offset: 0},
		},
	}
}

// expandEdgePath resolves mirroring into a full [0,1] point list.
func expandEdgePath(ep *EdgePath) []EdgePathPoint {
	pts := append([]EdgePathPoint(nil), ep.Points...)
	if !ep.Mirrored {
		return pts
	}
	for i := len(ep.Points) - 1; i >= 0; i-- {
		p := ep.Points[i]
		if p.T >= 0.5-1e-12 {
			continue
		}
		pts = append(pts, EdgePathPoint{T: 1 - p.T, Offset: p.Offset})
	}
	return pts
}

// edgeRender is the per-edge synthesis plan derived from status, extension,
// and custom path.
type edgeRender struct {
	status   EdgeStatus
	ext      float64
	path     *EdgePath
	yieldLo  bool // corner yielding at the edge-start corner
	yieldHi  bool // corner yielding at the edge-end corner
	offStart float64
	offEnd   float64
}

// slotsAsHoles reports whether the edge keeps its joint as interior slot
// holes instead of castellations: a female edge displaced outward by an
// extension or replaced by a custom path.
func (r edgeRender) slotsAsHoles() bool {
	return r.status == EdgeFemale && (r.ext > 0 || r.path != nil)
}

// jointish reports whether the edge renders an actual joint castellation,
// which blocks corner-fillet eligibility at both its ends.
func (r edgeRender) jointish() bool {
	if r.status == EdgeMale {
		return true
	}
	return r.status == EdgeFemale && r.ext == 0 && r.path == nil
}

// planEdges computes the render plan for all four edges, including corner
// offsets and female corner yielding.
func planEdges(a *Assembly, p *Panel, ctx panelEdgeContext) [panelEdgeCount]edgeRender {
	mt := a.material.Thickness
	var plan [panelEdgeCount]edgeRender
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		r := edgeRender{status: p.EdgeStatuses[e], ext: p.EdgeExtensions[e]}
		r.path = resolvedEdgePath(a, p, ctx, e)
		if r.path != nil && r.status == EdgeMale {
			// Custom paths cannot coexist with a male joint. The overlay
			// setter rejects this; a stale overlay is ignored here.
			r.path = nil
		}
		plan[e] = r
	}
	// Corner yielding: a female extension pulls back by one thickness at a
	// corner where the adjacent panel extends too.
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		if plan[e].status != EdgeFemale || plan[e].ext <= 0 || !ctx.isFace {
			continue
		}
		prev := (e + panelEdgeCount - 1) % panelEdgeCount
		next := (e + 1) % panelEdgeCount
		plan[e].yieldLo = neighborExtendsAtCorner(a, ctx.face, e, prev)
		plan[e].yieldHi = neighborExtendsAtCorner(a, ctx.face, e, next)
	}
	// Corner offsets.
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		r := &plan[e]
		switch {
		case r.path != nil:
			r.offStart, r.offEnd = 0, 0
		case r.status == EdgeMale:
			if ctx.isFace {
				r.offStart, r.offEnd = -mt, -mt
			}
		case r.status == EdgeFemale && r.ext > 0:
			r.offStart, r.offEnd = r.ext, r.ext
			if r.yieldLo {
				r.offStart = 0
			}
			if r.yieldHi {
				r.offEnd = 0
			}
		case r.status == EdgeOpen:
			r.offStart, r.offEnd = r.ext, r.ext
		}
		// Female without extension: offsets stay 0.
	}
	return plan
}

// neighborExtendsAtCorner reports whether the panel mating across the
// adjacent edge carries an extension on its own edge parallel to e.
func neighborExtendsAtCorner(a *Assembly, face FaceID, e, adjacent PanelEdge) bool {
	neighbor := faceEdgeNeighbors[face][adjacent]
	if !a.faces[neighbor].Solid {
		return false
	}
	// The neighbor's edge meeting the same corner region is the one that
	// faces the same third face as e does from this panel.
	third := faceEdgeNeighbors[face][e]
	for ne := PanelEdge(0); ne < panelEdgeCount; ne++ {
		if faceEdgeNeighbors[neighbor][ne] != third {
			continue
		}
		m := a.overlays.EdgeExtensions[facePanelID(a.id, neighbor)]
		return m != nil && m[ne] > 0
	}
	return false
}

// synthesizeOutline builds the panel outline, vertex tags, and corner
// eligibility. A stored modified-safe-area polygon replaces synthesis
// entirely (its vertices carry no edge attribution, so none are
// fillet-eligible).
func synthesizeOutline(a *Assembly, p *Panel, ctx panelEdgeContext) {
	if mod, ok := a.overlays.ModifiedSafeArea[p.ID]; ok && len(mod) >= 3 {
		outline := append([]PathPoint(nil), mod...)
		if signedArea(outline) < 0 {
			reversePoints(outline)
		}
		p.Outline = dedupePoints(outline, EPS)
		for i, pt := range p.Outline {
			p.Corners = append(p.Corners, CornerEligibility{ID: i, Location: pt})
		}
		return
	}

	plan := planEdges(a, p, ctx)
	corners := bodyCorners(p.Width, p.Height)
	fd := a.FingerData()

	// Corner vertices: each vertex is the body corner displaced by the
	// perpendicular offsets of both incident edges.
	var verts [panelEdgeCount]PathPoint
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		prev := (e + panelEdgeCount - 1) % panelEdgeCount
		verts[e] = ptAdd(corners[e], ptAdd(
			ptScale(edgeGeoms[prev].outward, plan[prev].offEnd),
			ptScale(edgeGeoms[e].outward, plan[e].offStart)))
	}

	var pts []PathPoint
	var tags []PanelEdge // tags[i] labels the segment starting at pts[i]
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		next := (e + 1) % panelEdgeCount
		seg := renderEdge(a, p, ctx, e, plan[e], corners[e], verts[e], verts[next], fd)
		pts = append(pts, seg...)
		for range seg {
			tags = append(tags, e)
		}
	}
	pts, tags = dedupeTagged(pts, tags)

	// Nominal corner vertices re-resolve by location after deduplication.
	var nominal [panelEdgeCount]int
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		nominal[e] = -1
		for i, pt := range pts {
			if ptNear(pt, verts[e], EPS) {
				nominal[e] = i
				break
			}
		}
	}

	p.Corners = cornerEligibility(pts, tags, plan)
	p.Outline = applyFillets(a, p, pts, nominal, plan)
}

// renderEdge emits one edge's polyline from start (inclusive) to end
// (exclusive), per the synthesis plan. corner is the edge's nominal body
// corner; start and end are the displaced trace vertices.
func renderEdge(a *Assembly, p *Panel, ctx panelEdgeContext, e PanelEdge, r edgeRender, corner, start, end PathPoint, fd *AxisFingerData) []PathPoint {
	g := edgeGeoms[e]
	// Custom edge path (including the lowered feet preset).
	if r.path != nil {
		return renderEdgePath(p, e, r, corner, start, end)
	}
	// Straight cases: open edges, extended or not, and female edges whose
	// joint moved into slot holes.
	if r.status == EdgeOpen || r.slotsAsHoles() {
		if r.status == EdgeFemale && r.ext > 0 && (r.yieldLo || r.yieldHi) {
			return renderYieldedExtension(a, r, e, start, end)
		}
		return []PathPoint{start}
	}
	if r.status == EdgeMale || r.status == EdgeFemale {
		axisIdx := 0
		if !g.isX {
			axisIdx = 1
		}
		axis := ctx.axes[axisIdx]
		// Axis coordinate of the (possibly displaced) start vertex.
		local := start.Y
		if g.isX {
			local = start.X
		}
		return genFingerEdge(fingerEdgeSpec{
			Start:      start,
			End:        end,
			Outward:    g.outward,
			Gender:     r.status.gender(),
			AxisStart:  ctx.axisBase[axisIdx] + local,
			AxisDir:    g.axisDir,
			BaseOffset: ctx.baseOffset,
		}, fd.pattern(axis))
	}
	return []PathPoint{start}
}

// renderYieldedExtension draws a female extension that steps back to the
// body boundary for one material thickness at yielded corners.
func renderYieldedExtension(a *Assembly, r edgeRender, e PanelEdge, start, end PathPoint) []PathPoint {
	mt := a.material.Thickness
	g := edgeGeoms[e]
	pts := []PathPoint{start}
	if r.yieldLo {
		p1 := ptAdd(start, ptScale(g.dir, mt))
		pts = append(pts, p1, ptAdd(p1, ptScale(g.outward, r.ext)))
	}
	if r.yieldHi {
		p2 := ptSub(end, ptScale(g.dir, mt))
		pts = append(pts, ptAdd(p2, ptScale(g.outward, r.ext)), p2)
	}
	return pts
}

// renderEdgePath maps the authored (t, offset) points onto the edge. T is
// measured along the nominal body edge; points outside the span actually
// owned by this edge (after neighbor corner displacements) are dropped.
func renderEdgePath(p *Panel, e PanelEdge, r edgeRender, corner, start, end PathPoint) []PathPoint {
	g := edgeGeoms[e]
	L := edgeLength(p, e)
	dLo := ptDot(ptSub(start, corner), g.dir)
	dHi := ptDot(ptSub(end, corner), g.dir)

	pts := []PathPoint{start}
	for _, ep := range expandEdgePath(r.path) {
		d := ep.T * L
		if d < dLo-EPS || d > dHi+EPS {
			continue
		}
		pos := ptAdd(corner, ptScale(g.dir, d))
		pts = append(pts, ptAdd(pos, ptScale(g.outward, ep.Offset)))
	}
	return pts
}

// dedupeTagged drops consecutive duplicate points keeping tags aligned.
func dedupeTagged(pts []PathPoint, tags []PanelEdge) ([]PathPoint, []PanelEdge) {
	if len(pts) == 0 {
		return pts, tags
	}
	outP := pts[:1]
	outT := tags[:1]
	for i := 1; i < len(pts); i++ {
		if !ptNear(pts[i], outP[len(outP)-1], EPS) {
			outP = append(outP, pts[i])
			outT = append(outT, tags[i])
		}
	}
	for len(outP) > 1 && ptNear(outP[len(outP)-1], outP[0], EPS) {
		outP = outP[:len(outP)-1]
		outT = outT[:len(outT)-1]
	}
	return outP, outT
}

// cornerEligibility enumerates every outline vertex. A vertex is eligible
// for a fillet only when neither incident edge renders a joint
// castellation; jointed corners carry mating material and stay square.
func cornerEligibility(pts []PathPoint, tags []PanelEdge, plan [panelEdgeCount]edgeRender) []CornerEligibility {
	n := len(pts)
	out := make([]CornerEligibility, 0, n)
	for i := 0; i < n; i++ {
		prev := (i + n - 1) % n
		before := ptDist(pts[prev], pts[i])
		after := ptDist(pts[i], pts[(i+1)%n])
		eIn := tags[prev]
		eOut := tags[i]
		out = append(out, CornerEligibility{
			ID:        i,
			Location:  pts[i],
			MaxRadius: math.Min(before, after),
			Eligible:  !plan[eIn].jointish() && !plan[eOut].jointish(),
		})
	}
	return out
}

// applyFillets substitutes eligible vertices with circular-arc polylines.
// Radii silently clamp to the shorter adjacent segment.
func applyFillets(a *Assembly, p *Panel, pts []PathPoint, nominal [panelEdgeCount]int, plan [panelEdgeCount]edgeRender) []PathPoint {
	radii := map[int]float64{}
	for idx, r := range a.overlays.AllCornerFillets[p.ID] {
		if r > 0 {
			radii[idx] = r
		}
	}
	for corner, r := range a.overlays.CornerFillets[p.ID] {
		if r > 0 && corner >= 0 && corner < int(panelEdgeCount) && nominal[corner] >= 0 {
			radii[nominal[corner]] = r
		}
	}
	if len(radii) == 0 {
		return pts
	}
	eligible := map[int]bool{}
	for _, c := range p.Corners {
		if c.Eligible {
			eligible[c.ID] = true
		}
	}
	n := len(pts)
	var out []PathPoint
	for i := 0; i < n; i++ {
		r, ok := radii[i]
		if !ok || !eligible[i] {
			out = append(out, pts[i])
			continue
		}
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		arc := filletVertex(prev, pts[i], next, r)
		if arc == nil {
			out = append(out, pts[i])
			continue
		}
		out = append(out, arc...)
	}
	return dedupePoints(out, EPS)
}

// filletVertex computes the arc polyline replacing vertex v, or nil when
// the corner is too degenerate to fillet.
func filletVertex(prev, v, next PathPoint, r float64) []PathPoint {
	u1 := ptNormalize(ptSub(prev, v))
	u2 := ptNormalize(ptSub(next, v))
	len1 := ptDist(prev, v)
	len2 := ptDist(v, next)
	r = math.Min(r, math.Min(len1, len2))
	if r <= EPS {
		return nil
	}
	cosA := ptDot(u1, u2)
	if cosA > 1-1e-9 || cosA < -1+1e-9 {
		// Collinear or reflex-degenerate corner.
		return nil
	}
	theta := math.Acos(cosA)
	tan := r / math.Tan(theta/2)
	if tan > len1 || tan > len2 {
		tan = math.Min(len1, len2)
		r = tan * math.Tan(theta/2)
	}
	t1 := ptAdd(v, ptScale(u1, tan))
	t2 := ptAdd(v, ptScale(u2, tan))
	bis := ptNormalize(ptAdd(u1, u2))
	center := ptAdd(v, ptScale(bis, r/math.Sin(theta/2)))
	a0 := math.Atan2(t1.Y-center.Y, t1.X-center.X)
	a1 := math.Atan2(t2.Y-center.Y, t2.X-center.X)
	// Sweep the short way around.
	for a1-a0 > math.Pi {
		a1 -= 2 * math.Pi
	}
	for a0-a1 > math.Pi {
		a1 += 2 * math.Pi
	}
	return arcPoints(center, r, a0, a1, filletSegments)
}
