package boxen

// Safe-area computation and drawn-path classification. The safe area is the
// editable region for interior cutouts, kept as a set of axis-aligned
// rectangles for cheap containment tests.

// jointStripWidth is the per-edge strip reserved on jointed edges: one
// thickness for the joint itself plus one thickness clearance.
func jointStripWidth(mt float64) float64 { return 2 * mt }

// computeSafeArea builds the safe area for one panel: the body rectangle
// minus a 2*mt strip along every jointed edge, minus mt clearance around
// every slot hole, plus the interior of any outward extensions (inset mt
// from the body edge on all sides).
func computeSafeArea(a *Assembly, p *Panel) []Rect {
	mt := a.material.Thickness
	strip := jointStripWidth(mt)

	core := Rect{X: 0, Y: 0, Width: p.Width, Height: p.Height}
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		inset := 0.0
		switch p.EdgeStatuses[e] {
		case EdgeMale, EdgeFemale:
			inset = strip
		default:
			// Open edges pulled inward by a negative extension lose the
			// covered strip.
			if ext := p.EdgeExtensions[e]; ext < 0 {
				inset = -ext
			}
		}
		if inset == 0 {
			continue
		}
		switch e {
		case EdgeBottom:
			core.Y += inset
			core.Height -= inset
		case EdgeTop:
			core.Height -= inset
		case EdgeLeft:
			core.X += inset
			core.Width -= inset
		default: // right
			core.Width -= inset
		}
	}
	var set []Rect
	if !core.Empty() {
		set = []Rect{core}
	}

	// Clearance around every slot hole.
	for _, h := range p.Holes {
		b := polyBounds(h)
		set = subtractRects(set, Rect{
			X: b.X - mt, Y: b.Y - mt,
			Width: b.Width + 2*mt, Height: b.Height + 2*mt,
		})
	}

	// Outward extensions contribute their own region: the extension strip
	// minus mt clearance from the body edge and the two ends.
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		ext := p.EdgeExtensions[e]
		if ext <= mt {
			continue
		}
		var r Rect
		switch e {
		case EdgeBottom:
			r = Rect{X: mt, Y: -ext + 0, Width: p.Width - 2*mt, Height: ext - mt}
		case EdgeTop:
			r = Rect{X: mt, Y: p.Height + mt, Width: p.Width - 2*mt, Height: ext - mt}
		case EdgeLeft:
			r = Rect{X: -ext, Y: mt, Width: ext - mt, Height: p.Height - 2*mt}
		default: // right
			r = Rect{X: p.Width + mt, Y: mt, Width: ext - mt, Height: p.Height - 2*mt}
		}
		if !r.Empty() {
			set = append(set, r)
		}
	}
	return set
}

// PathClass is the classification of a drawn polygon against a panel.
type PathClass uint8

const (
	// PathCutout: entirely inside the safe area; becomes a hole.
	PathCutout PathClass = iota
	// PathRejected: touches the reserved strip of a jointed edge.
	PathRejected
	// PathEdgeModification: touches an open body edge; becomes a notch via
	// a custom edge path or a boolean difference.
	PathEdgeModification
	// PathAdditive: extends beyond an open body edge with additive intent;
	// becomes a boolean union.
	PathAdditive
)

func (c PathClass) String() string {
	switch c {
	case PathCutout:
		return "cutout"
	case PathRejected:
		return "rejected"
	case PathEdgeModification:
		return "edge-modification"
	default:
		return "additive"
	}
}

// analyzePath classifies a drawn polygon. additive marks the caller's
// intent for shapes reaching past the body edge.
func analyzePath(a *Assembly, p *Panel, poly []PathPoint, additive bool) PathClass {
	if cutoutInsideSafeArea(poly, p.SafeArea) {
		return PathCutout
	}
	mt := a.material.Thickness
	strip := jointStripWidth(mt)
	b := polyBounds(poly)
	body := Rect{X: 0, Y: 0, Width: p.Width, Height: p.Height}

	// Touching the reserved strip of any jointed edge weakens the joint.
	for e := PanelEdge(0); e < panelEdgeCount; e++ {
		if p.EdgeStatuses[e] != EdgeMale && p.EdgeStatuses[e] != EdgeFemale {
			continue
		}
		var stripRect Rect
		switch e {
		case EdgeBottom:
			stripRect = Rect{X: 0, Y: 0, Width: p.Width, Height: strip}
		case EdgeTop:
			stripRect = Rect{X: 0, Y: p.Height - strip, Width: p.Width, Height: strip}
		case EdgeLeft:
			stripRect = Rect{X: 0, Y: 0, Width: strip, Height: p.Height}
		default:
			stripRect = Rect{X: p.Width - strip, Y: 0, Width: strip, Height: p.Height}
		}
		if stripRect.Overlaps(b) {
			return PathRejected
		}
	}

	beyond := b.X < body.X-EPS || b.Y < body.Y-EPS ||
		b.X+b.Width > body.X+body.Width+EPS ||
		b.Y+b.Height > body.Y+body.Height+EPS
	if beyond && additive {
		return PathAdditive
	}
	return PathEdgeModification
}
