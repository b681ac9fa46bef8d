package boxen

import (
	"math"
	"time"
)

// PanelSourceKind distinguishes face panels from divider panels.
type PanelSourceKind uint8

const (
	SourceFace PanelSourceKind = iota
	SourceDivider
)

func (k PanelSourceKind) String() string {
	if k == SourceFace {
		return "face"
	}
	return "divider"
}

// PanelSource carries enough information to reverse-identify where a panel
// came from.
type PanelSource struct {
	Kind       PanelSourceKind
	AssemblyID string
	Face       FaceID  // face panels
	VoidID     string  // divider panels
	Axis       Axis    // divider normal axis
	Index      int     // divider position index
	Position   float64 // divider center in interior coordinates
}

// Transform3D places a panel in world space: Position is the world location
// of the panel's local origin on the sheet mid-plane, Rotation is XYZ Euler
// angles in radians.
type Transform3D struct {
	Position [3]float64
	Rotation [3]float64
}

// CornerEligibility describes one outline vertex's fillet candidacy.
type CornerEligibility struct {
	ID        int
	Location  PathPoint
	MaxRadius float64
	Eligible  bool
}

// Panel is one derived 2D cut path. Panels are never stored on the scene;
// they are recomputed whenever a dirty ancestor is read.
type Panel struct {
	ID     string
	Source PanelSource

	// Width and Height are the body dimensions before extensions.
	Width  float64
	Height float64

	Transform Transform3D

	// Outline is a simple closed polyline, counter-clockwise (positive
	// signed area), implicitly re-closing last to first.
	Outline []PathPoint

	// Holes are closed polylines wound opposite to the outline (clockwise),
	// each strictly inside it.
	Holes [][]PathPoint

	// Corners enumerates every outline vertex's fillet eligibility.
	Corners []CornerEligibility

	EdgeStatuses   [panelEdgeCount]EdgeStatus
	EdgeExtensions map[PanelEdge]float64

	// SafeArea is the region where interior cutouts may be placed, as a set
	// of axis-aligned rectangles for cheap containment tests.
	SafeArea []Rect

	// BoundingRect is the outline's axis-aligned bounds.
	BoundingRect Rect
}

// Area returns the outline area minus all hole areas.
func (p *Panel) Area() float64 {
	a := math.Abs(signedArea(p.Outline))
	for _, h := range p.Holes {
		a -= math.Abs(signedArea(h))
	}
	return a
}

// EdgeStatus returns the resolved status of one body edge.
func (p *Panel) EdgeStatus(e PanelEdge) EdgeStatus {
	return p.EdgeStatuses[e]
}

// PanelList is the output of one generation pass.
type PanelList struct {
	Panels      []*Panel
	GeneratedAt time.Time
}

// Find returns the panel with the given ID, or nil.
func (l *PanelList) Find(id string) *Panel {
	for _, p := range l.Panels {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// --- Identity ---

// facePanelID derives the deterministic face panel identifier.
func facePanelID(assemblyID string, f FaceID) string {
	return "face:" + assemblyID + ":" + f.String()
}

// --- Generation ---

// panelGenerator walks one scene and derives all panels. It carries the
// alignment-error sink so degenerate geometry can be reported without
// invalidating the panel.
type panelGenerator struct {
	scene  *Scene
	errors *[]AlignmentError
}

// generatePanels derives every panel of every assembly in the scene,
// recursing into sub-assemblies.
func (g *panelGenerator) generatePanels() []*Panel {
	var out []*Panel
	for _, a := range g.scene.assemblies {
		out = g.assemblyPanels(a, [3]float64{}, out)
	}
	return out
}

// assemblyPanels derives panels for one assembly. origin is the world
// location of the assembly's outer min corner.
func (g *panelGenerator) assemblyPanels(a *Assembly, origin [3]float64, out []*Panel) []*Panel {
	mt := a.material.Thickness
	for f := FaceID(0); f < faceCount; f++ {
		if !a.faces[f].Solid {
			continue
		}
		out = append(out, g.facePanel(a, f, origin))
	}
	for _, d := range a.collectDividers() {
		out = append(out, g.dividerPanel(a, d, origin))
	}
	// Recurse into hosted sub-assemblies; their origin is the void origin
	// plus the clearance inset, in world coordinates.
	var recurse func(v *Void)
	recurse = func(v *Void) {
		if sub := v.subAssembly; sub != nil {
			subOrigin := [3]float64{
				origin[0] + mt + v.bounds.X + sub.clearance,
				origin[1] + mt + v.bounds.Y + sub.clearance,
				origin[2] + mt + v.bounds.Z + sub.clearance,
			}
			out = g.assemblyPanels(sub, subOrigin, out)
		}
		for _, c := range v.children {
			recurse(c)
		}
	}
	recurse(a.root)
	return out
}

// faceBodyDims returns a face panel's body width and height from the
// assembly dimensions and the face's local axis mapping.
func faceBodyDims(a *Assembly, f FaceID) (w, h float64) {
	lx, ly := faceLocalAxes(f)
	return a.dims.axisSize(lx), a.dims.axisSize(ly)
}

// facePanel derives one face panel.
func (g *panelGenerator) facePanel(a *Assembly, f FaceID, origin [3]float64) *Panel {
	w, h := faceBodyDims(a, f)
	p := &Panel{
		ID:     facePanelID(a.id, f),
		Source: PanelSource{Kind: SourceFace, AssemblyID: a.id, Face: f},
		Width:  w,
		Height: h,
	}
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		p.EdgeStatuses[e] = resolveFaceEdge(f, faceEdgeNeighbors[f][e], &a.faces, a.axis)
	}
	// Feet force the side-wall bottom edge open: the box stands on its
	// feet and the bottom panel no longer joints into the notched edge.
	if a.feet != nil && a.feet.Enabled && isSideWall(f) {
		p.EdgeStatuses[EdgeBottom] = EdgeOpen
	}
	p.Transform = faceTransform(a, f, origin)
	p.EdgeExtensions = effectiveExtensions(a, p)

	synthesizeOutline(a, p, facePanelEdgeContext(a, f))
	g.generateSlotHoles(a, p)
	p.SafeArea = computeSafeArea(a, p)
	g.cutoutHoles(a, p)
	p.BoundingRect = polyBounds(p.Outline)
	return p
}

// dividerLocalAxes returns the in-plane axes of a divider panel with the
// given normal axis, matching the face-panel conventions.
func dividerLocalAxes(normal Axis) (localX, localY Axis) {
	switch normal {
	case AxisX:
		return AxisZ, AxisY
	case AxisY:
		return AxisX, AxisZ
	default:
		return AxisX, AxisY
	}
}

// dividerPanel derives one divider panel.
func (g *panelGenerator) dividerPanel(a *Assembly, d dividerRef, origin [3]float64) *Panel {
	lx, ly := dividerLocalAxes(d.axis)
	_, w := d.void.bounds.axisRange(lx)
	_, h := d.void.bounds.axisRange(ly)
	p := &Panel{
		ID: d.panelID(),
		Source: PanelSource{
			Kind:       SourceDivider,
			AssemblyID: a.id,
			VoidID:     d.void.id,
			Axis:       d.axis,
			Index:      d.index,
			Position:   d.pos,
		},
		Width:  w,
		Height: h,
	}
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		p.EdgeStatuses[e] = resolveDividerEdge(a, d, e)
	}
	p.Transform = dividerTransform(a, d, origin)
	p.EdgeExtensions = effectiveExtensions(a, p)

	synthesizeOutline(a, p, dividerPanelEdgeContext(a, d))
	g.generateSlotHoles(a, p)
	p.SafeArea = computeSafeArea(a, p)
	g.cutoutHoles(a, p)
	p.BoundingRect = polyBounds(p.Outline)
	return p
}

// resolveDividerEdge decides the status of one divider panel edge. An edge
// that reaches the assembly interior boundary meets a face: male when the
// face is solid, open when it is removed. An edge that stops inside the
// interior terminates at a parent divider and is always male.
func resolveDividerEdge(a *Assembly, d dividerRef, e PanelEdge) EdgeStatus {
	lx, ly := dividerLocalAxes(d.axis)
	// The adjacency axis is the in-plane axis the edge sits at an extreme
	// of: bottom/top edges bound local Y, left/right edges bound local X.
	axis := lx
	if e == EdgeBottom || e == EdgeTop {
		axis = ly
	}
	start, size := d.void.bounds.axisRange(axis)
	_, interior := a.interiorBoundsRange(axis)
	atMin := e == EdgeBottom || e == EdgeLeft
	if atMin && start <= EPS || !atMin && start+size >= interior-EPS {
		pos, neg := facesForAxis(axis)
		face := neg
		if !atMin {
			face = pos
		}
		if !a.faces[face].Solid {
			return EdgeOpen
		}
		return EdgeMale
	}
	return EdgeMale
}

// interiorBoundsRange returns the interior start (always 0) and size along
// one axis.
func (a *Assembly) interiorBoundsRange(axis Axis) (start, size float64) {
	b := a.interiorBounds()
	return b.axisRange(axis)
}

// --- Transforms ---

// faceTransform places a face panel: Position is the world location of the
// panel's local origin on the sheet mid-plane.
func faceTransform(a *Assembly, f FaceID, origin [3]float64) Transform3D {
	mt := a.material.Thickness
	w, h, d := a.dims.Width, a.dims.Height, a.dims.Depth
	o := origin
	switch f {
	case FaceFront:
		return Transform3D{Position: [3]float64{o[0], o[1], o[2] + mt/2}}
	case FaceBack:
		return Transform3D{Position: [3]float64{o[0], o[1], o[2] + d - mt/2}}
	case FaceLeft:
		return Transform3D{
			Position: [3]float64{o[0] + mt/2, o[1], o[2]},
			Rotation: [3]float64{0, -math.Pi / 2, 0},
		}
	case FaceRight:
		return Transform3D{
			Position: [3]float64{o[0] + w - mt/2, o[1], o[2]},
			Rotation: [3]float64{0, -math.Pi / 2, 0},
		}
	case FaceTop:
		return Transform3D{
			Position: [3]float64{o[0], o[1] + h - mt/2, o[2]},
			Rotation: [3]float64{math.Pi / 2, 0, 0},
		}
	default: // bottom
		return Transform3D{
			Position: [3]float64{o[0], o[1] + mt/2, o[2]},
			Rotation: [3]float64{math.Pi / 2, 0, 0},
		}
	}
}

// dividerTransform places a divider panel at its center plane inside the
// interior.
func dividerTransform(a *Assembly, d dividerRef, origin [3]float64) Transform3D {
	mt := a.material.Thickness
	b := d.void.bounds
	base := [3]float64{origin[0] + mt + b.X, origin[1] + mt + b.Y, origin[2] + mt + b.Z}
	switch d.axis {
	case AxisX:
		base[0] = origin[0] + mt + d.pos
		return Transform3D{Position: base, Rotation: [3]float64{0, -math.Pi / 2, 0}}
	case AxisY:
		base[1] = origin[1] + mt + d.pos
		return Transform3D{Position: base, Rotation: [3]float64{math.Pi / 2, 0, 0}}
	default:
		base[2] = origin[2] + mt + d.pos
		return Transform3D{Position: base}
	}
}

// --- Extension clamping ---

// effectiveExtensions resolves the stored extension overlay against the
// panel's edge statuses: male edges clamp to zero, female edges clamp to
// outward-only, open edges allow down to -thickness inward. Values beyond
// the sane outer maximum clamp to it.
func effectiveExtensions(a *Assembly, p *Panel) map[PanelEdge]float64 {
	stored := a.overlays.EdgeExtensions[p.ID]
	if len(stored) == 0 {
		return nil
	}
	mt := a.material.Thickness
	maxExt := a.maxExtension()
	out := map[PanelEdge]float64{}
	for e, v := range stored {
		switch p.EdgeStatuses[e] {
		case EdgeMale:
			v = 0
		case EdgeFemale:
			v = math.Max(0, v)
		default:
			v = math.Max(-mt, v)
		}
		v = math.Min(v, maxExt)
		if v != 0 {
			out[e] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
