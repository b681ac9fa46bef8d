package boxen

import "math"

// Dimensions are the outer width/height/depth of an assembly in millimeters.
type Dimensions struct {
	Width  float64
	Height float64
	Depth  float64
}

// axisSize returns the outer size along a world axis.
func (d Dimensions) axisSize(a Axis) float64 {
	switch a {
	case AxisX:
		return d.Width
	case AxisY:
		return d.Height
	default:
		return d.Depth
	}
}

// Material describes the sheet stock an assembly is cut from.
type Material struct {
	// Thickness is the sheet thickness (mt).
	Thickness float64
	// FingerWidth is the width of one tab/gap unit (fw).
	FingerWidth float64
	// FingerGap is the corner-gap multiplier (fg >= 1); the gap at each end
	// of a jointed edge is FingerGap*Thickness.
	FingerGap float64
}

// FeetConfig is the parametric feet preset. It is lowered to a mirrored
// custom path on the bottom edge of every side wall at build time.
type FeetConfig struct {
	Enabled      bool
	Height       float64
	Width        float64
	Inset        float64
	SlopeAngle   float64 // radians; 0 means vertical foot sides
	CornerFinish string  // "square" (default); stored verbatim in snapshots
}

// --- Overlays ---

// CutoutKind selects the shape of a user cutout.
type CutoutKind uint8

const (
	CutoutRect CutoutKind = iota
	CutoutCircle
	CutoutPolygon
)

func (k CutoutKind) String() string {
	switch k {
	case CutoutRect:
		return "rect"
	case CutoutCircle:
		return "circle"
	default:
		return "polygon"
	}
}

// defaultCircleSegments is the polyline resolution of circle cutouts.
const defaultCircleSegments = 24

// Cutout is a user-specified hole in panel-local coordinates.
type Cutout struct {
	ID       string
	Kind     CutoutKind
	Rect     Rect        // CutoutRect
	CX, CY   float64     // CutoutCircle center
	R        float64     // CutoutCircle radius
	Segments int         // CutoutCircle resolution; 0 means default
	Points   []PathPoint // CutoutPolygon
}

// polygon lowers the cutout to a polyline: counter-clockwise for rectangles
// and circles; polygon cutouts return their points as authored.
func (c Cutout) polygon() []PathPoint {
	switch c.Kind {
	case CutoutRect:
		return c.Rect.Points()
	case CutoutCircle:
		seg := c.Segments
		if seg == 0 {
			seg = defaultCircleSegments
		}
		return circlePoints(c.CX, c.CY, c.R, seg)
	default:
		return append([]PathPoint(nil), c.Points...)
	}
}

// EdgePath is a user-authored replacement for one panel edge.
type EdgePath struct {
	Points []EdgePathPoint
	// Mirrored means only the t in [0, 0.5] half is authored; the engine
	// emits its mirror image for the other half.
	Mirrored bool
}

// clone deep-copies the path.
func (p *EdgePath) clone() *EdgePath {
	if p == nil {
		return nil
	}
	return &EdgePath{Points: append([]EdgePathPoint(nil), p.Points...), Mirrored: p.Mirrored}
}

// Overlays are the per-panel customizations stored on the owning assembly,
// keyed by panel ID. Panel IDs are deterministic derivations of the owning
// void/face/axis/position, so regeneration re-keys to the same entries;
// stale keys are garbage-collected at commit.
type Overlays struct {
	EdgeExtensions   map[string]map[PanelEdge]float64
	CornerFillets    map[string]map[int]float64 // nominal corner index 0-3
	AllCornerFillets map[string]map[int]float64 // any outline vertex index
	CustomEdgePaths  map[string]map[PanelEdge]*EdgePath
	Cutouts          map[string][]Cutout
	ModifiedSafeArea map[string][]PathPoint
}

func newOverlays() Overlays {
	return Overlays{
		EdgeExtensions:   map[string]map[PanelEdge]float64{},
		CornerFillets:    map[string]map[int]float64{},
		AllCornerFillets: map[string]map[int]float64{},
		CustomEdgePaths:  map[string]map[PanelEdge]*EdgePath{},
		Cutouts:          map[string][]Cutout{},
		ModifiedSafeArea: map[string][]PathPoint{},
	}
}

func (o *Overlays) clone() Overlays {
	c := newOverlays()
	for id, m := range o.EdgeExtensions {
		mm := map[PanelEdge]float64{}
		for k, v := range m {
			mm[k] = v
		}
		c.EdgeExtensions[id] = mm
	}
	for id, m := range o.CornerFillets {
		mm := map[int]float64{}
		for k, v := range m {
			mm[k] = v
		}
		c.CornerFillets[id] = mm
	}
	for id, m := range o.AllCornerFillets {
		mm := map[int]float64{}
		for k, v := range m {
			mm[k] = v
		}
		c.AllCornerFillets[id] = mm
	}
	for id, m := range o.CustomEdgePaths {
		mm := map[PanelEdge]*EdgePath{}
		for k, v := range m {
			mm[k] = v.clone()
		}
		c.CustomEdgePaths[id] = mm
	}
	for id, cuts := range o.Cutouts {
		cc := make([]Cutout, len(cuts))
		for i, cut := range cuts {
			cc[i] = cut
			cc[i].Points = append([]PathPoint(nil), cut.Points...)
		}
		c.Cutouts[id] = cc
	}
	for id, poly := range o.ModifiedSafeArea {
		c.ModifiedSafeArea[id] = append([]PathPoint(nil), poly...)
	}
	return c
}

// gc drops overlay entries whose panel ID is not in the live set.
func (o *Overlays) gc(live map[string]bool) {
	for id := range o.EdgeExtensions {
		if !live[id] {
			delete(o.EdgeExtensions, id)
		}
	}
	for id := range o.CornerFillets {
		if !live[id] {
			delete(o.CornerFillets, id)
		}
	}
	for id := range o.AllCornerFillets {
		if !live[id] {
			delete(o.AllCornerFillets, id)
		}
	}
	for id := range o.CustomEdgePaths {
		if !live[id] {
			delete(o.CustomEdgePaths, id)
		}
	}
	for id := range o.Cutouts {
		if !live[id] {
			delete(o.Cutouts, id)
		}
	}
	for id := range o.ModifiedSafeArea {
		if !live[id] {
			delete(o.ModifiedSafeArea, id)
		}
	}
}

// --- Assembly ---

// defaultClearance is the per-face inset of a sub-assembly inside its
// hosting void.
const defaultClearance = 1.0

// Assembly is a box with six configurable faces, an interior void tree, and
// per-panel customization overlays. A sub-assembly is an Assembly whose host
// is the leaf void it fills; its dimensions derive from the void bounds
// minus the clearance.
type Assembly struct {
	id    string
	scene *Scene

	dims     Dimensions
	material Material
	faces    [faceCount]FaceConfig
	axis     Axis
	feet     *FeetConfig

	overlays Overlays

	// root is the interior void.
	root *Void

	// host is non-nil for sub-assemblies: the leaf void this assembly fills.
	host      *Void
	clearance float64

	// fingerData is cached per-assembly and invalidated when dimensions or
	// material change.
	fingerData *AxisFingerData
}

// newAssembly creates an assembly with all faces solid and a fresh root void.
func newAssembly(s *Scene, dims Dimensions, m Material) *Assembly {
	a := &Assembly{
		id:       s.newNodeID("assembly"),
		scene:    s,
		dims:     dims,
		material: m,
		axis:     AxisY,
		overlays: newOverlays(),
	}
	for f := FaceID(0); f < faceCount; f++ {
		a.faces[f] = FaceConfig{Solid: true}
	}
	a.root = newVoid(s, a, nil, a.interiorBounds())
	return a
}

// ID returns the assembly's stable identifier.
func (a *Assembly) ID() string { return a.id }

// Root returns the assembly's root void.
func (a *Assembly) Root() *Void { return a.root }

// Dimensions returns the outer dimensions.
func (a *Assembly) Dimensions() Dimensions { return a.dims }

// MaterialSpec returns the material constants.
func (a *Assembly) MaterialSpec() Material { return a.material }

// IsSub reports whether this assembly fills a void of a parent assembly.
func (a *Assembly) IsSub() bool { return a.host != nil }

// interiorBounds returns the interior region in interior coordinates:
// origin at the inner corner nearest the world origin.
func (a *Assembly) interiorBounds() Bounds3 {
	mt := a.material.Thickness
	return Bounds3{
		W: a.dims.Width - 2*mt,
		H: a.dims.Height - 2*mt,
		D: a.dims.Depth - 2*mt,
	}
}

// FingerData returns the shared per-axis tooth patterns, recomputing them
// if dimensions or material changed since the last read.
func (a *Assembly) FingerData() *AxisFingerData {
	if a.fingerData == nil {
		a.fingerData = computeAxisFingerData(a.dims, a.material)
	}
	return a.fingerData
}

func (a *Assembly) markDirty() {
	if a.scene != nil {
		a.scene.markDirty()
	}
}

// invalidateFingerData drops the cached anchor data; called when dimensions
// or material change.
func (a *Assembly) invalidateFingerData() {
	a.fingerData = nil
}

// --- Mutators ---

// setDimensions resizes the assembly and recomputes the void tree bounds.
// Fraction-mode subdivision positions rescale; absolute positions that fall
// outside their void reject the whole resize.
func (a *Assembly) setDimensions(dims Dimensions) dispatchError {
	mt := a.material.Thickness
	if dims.Width <= 2*mt || dims.Height <= 2*mt || dims.Depth <= 2*mt {
		return errInvalidArgument
	}
	old := a.dims
	a.dims = dims
	if err := a.root.rescale(a.interiorBounds()); err != errOK {
		// The dry-run pass rejects before anything mutates.
		a.dims = old
		return err
	}
	a.invalidateFingerData()
	a.markDirty()
	return errOK
}

// setMaterial changes the sheet stock. Thickness, finger width, and corner
// gap multiplier must stay positive; the gap multiplier must be >= 1.
func (a *Assembly) setMaterial(m Material) dispatchError {
	if m.Thickness <= 0 || m.FingerWidth <= 0 || m.FingerGap < 1 {
		return errInvalidArgument
	}
	old := a.material
	a.material = m
	if err := a.root.rescale(a.interiorBounds()); err != errOK {
		a.material = old
		return err
	}
	a.invalidateFingerData()
	a.markDirty()
	return errOK
}

// setFaceSolid toggles a face open or closed.
func (a *Assembly) setFaceSolid(f FaceID, solid bool) dispatchError {
	if f >= faceCount {
		return errInvalidArgument
	}
	a.faces[f].Solid = solid
	a.markDirty()
	return errOK
}

// configureFace sets solidity and lid tab direction together.
func (a *Assembly) configureFace(f FaceID, solid *bool, dir *LidTabDirection) dispatchError {
	if f >= faceCount {
		return errInvalidArgument
	}
	if solid != nil {
		a.faces[f].Solid = *solid
	}
	if dir != nil {
		a.faces[f].LidTabDirection = *dir
	}
	a.markDirty()
	return errOK
}

// setAxis chooses the lid pair.
func (a *Assembly) setAxis(axis Axis) dispatchError {
	if axis > AxisZ {
		return errInvalidArgument
	}
	a.axis = axis
	a.markDirty()
	return errOK
}

// setLidConfig sets the tab direction of the positive or negative lid of
// the current assembly axis.
func (a *Assembly) setLidConfig(positiveSide bool, dir LidTabDirection) dispatchError {
	pos, neg := facesForAxis(a.axis)
	f := neg
	if positiveSide {
		f = pos
	}
	a.faces[f].LidTabDirection = dir
	a.markDirty()
	return errOK
}

// setFeet installs or clears the feet preset.
func (a *Assembly) setFeet(cfg FeetConfig) dispatchError {
	if cfg.Enabled {
		if cfg.Height <= 0 || cfg.Width <= 0 || cfg.Inset < 0 {
			return errInvalidArgument
		}
		if cfg.CornerFinish == "" {
			cfg.CornerFinish = "square"
		}
		c := cfg
		a.feet = &c
	} else {
		a.feet = nil
	}
	a.markDirty()
	return errOK
}

// --- Sub-assembly derivation ---

// deriveSubDimensions computes a sub-assembly's outer dimensions from its
// hosting void bounds minus clearance on every face.
func deriveSubDimensions(b Bounds3, clearance float64) Dimensions {
	return Dimensions{
		Width:  b.W - 2*clearance,
		Height: b.H - 2*clearance,
		Depth:  b.D - 2*clearance,
	}
}

// refreshFromHost re-derives a sub-assembly's dimensions after its hosting
// void changed shape.
func (a *Assembly) refreshFromHost() dispatchError {
	if a.host == nil {
		return errOK
	}
	dims := deriveSubDimensions(a.host.bounds, a.clearance)
	mt := a.material.Thickness
	if dims.Width <= 2*mt || dims.Height <= 2*mt || dims.Depth <= 2*mt {
		return errInvalidArgument
	}
	return a.setDimensions(dims)
}

// setClearance changes a sub-assembly's per-face clearance and re-derives
// its dimensions.
func (a *Assembly) setClearance(c float64) dispatchError {
	if a.host == nil || c < 0 {
		return errInvalidArgument
	}
	a.clearance = c
	return a.refreshFromHost()
}

// --- Clone / walk ---

// clone deep-copies the assembly into scene s. host is the already-cloned
// hosting void for sub-assemblies (nil for top-level assemblies).
func (a *Assembly) clone(s *Scene, host *Void) *Assembly {
	c := &Assembly{
		id:        a.id,
		scene:     s,
		dims:      a.dims,
		material:  a.material,
		faces:     a.faces,
		axis:      a.axis,
		overlays:  a.overlays.clone(),
		host:      host,
		clearance: a.clearance,
	}
	if a.feet != nil {
		f := *a.feet
		c.feet = &f
	}
	c.root = a.root.clone(s, c, nil)
	return c
}

// walk visits this assembly, then its void tree (which recurses into
// sub-assemblies).
func (a *Assembly) walk(visit func(node any)) {
	visit(a)
	a.root.walk(visit)
}

// collectDividers appends every divider plane of the assembly's void tree
// (not descending into sub-assemblies, which have their own interiors).
func (a *Assembly) collectDividers() []dividerRef {
	var out []dividerRef
	a.root.collectDividers(&out)
	return out
}

// minSeparation is the smallest allowed gap between adjacent divider
// positions after accounting for the divider thickness.
func (a *Assembly) minSeparation() float64 {
	return a.material.Thickness
}

// crossLapSeparation is the smallest allowed distance between slot centers
// on a shared crossing divider.
func (a *Assembly) crossLapSeparation() float64 {
	return 2 * a.material.Thickness
}

// maxExtension is a sane outer bound for edge extensions: the largest
// assembly dimension.
func (a *Assembly) maxExtension() float64 {
	return math.Max(a.dims.Width, math.Max(a.dims.Height, a.dims.Depth))
}
