package boxen

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Scene snapshots: an immutable, fully-specified plain data tree with a
// canonical JSON form. Key order is fixed by struct declaration order
// (dimensions, material, assembly axis, faces, feet, overlays, void tree),
// overlay entries sort lexicographically by panel ID, the void tree is
// emitted DFS, and every float prints with at most six fractional digits.
// Byte-identical input always yields byte-identical output.

// Scalar is a millimeter value with canonical JSON formatting.
type Scalar float64

// MarshalJSON emits the value with at most six fractional digits, trailing
// zeros trimmed.
func (s Scalar) MarshalJSON() ([]byte, error) {
	str := strconv.FormatFloat(float64(s), 'f', 6, 64)
	str = trimFloat(str)
	return []byte(str), nil
}

func trimFloat(str string) string {
	if !bytes.ContainsRune([]byte(str), '.') {
		return str
	}
	str = string(bytes.TrimRight([]byte(str), "0"))
	if str[len(str)-1] == '.' {
		str = str[:len(str)-1]
	}
	// Normalize negative zero.
	if str == "-0" {
		return "0"
	}
	return str
}

// PointSnapshot is one 2D point.
type PointSnapshot struct {
	X Scalar `json:"x"`
	Y Scalar `json:"y"`
}

// DimensionsSnapshot mirrors Dimensions.
type DimensionsSnapshot struct {
	Width  Scalar `json:"width"`
	Height Scalar `json:"height"`
	Depth  Scalar `json:"depth"`
}

// MaterialSnapshot mirrors Material.
type MaterialSnapshot struct {
	Thickness   Scalar `json:"thickness"`
	FingerWidth Scalar `json:"fingerWidth"`
	FingerGap   Scalar `json:"fingerGap"`
}

// FaceSnapshot is one face's configuration.
type FaceSnapshot struct {
	Face            string `json:"face"`
	Solid           bool   `json:"solid"`
	LidTabDirection string `json:"lidTabDirection,omitempty"`
}

// FeetSnapshot mirrors FeetConfig.
type FeetSnapshot struct {
	Height       Scalar `json:"height"`
	Width        Scalar `json:"width"`
	Inset        Scalar `json:"inset"`
	SlopeAngle   Scalar `json:"slopeAngle"`
	CornerFinish string `json:"cornerFinish"`
}

// PositionSnapshot is one subdivision position with its explicit mode flag.
type PositionSnapshot struct {
	Value Scalar `json:"value"`
	Mode  string `json:"mode"` // "absolute" | "fraction"
}

// SubdivisionSnapshot mirrors SubdivisionSpec.
type SubdivisionSnapshot struct {
	Kind       string             `json:"kind"`
	Axis       string             `json:"axis"`
	Positions  []PositionSnapshot `json:"positions"`
	AxisB      string             `json:"axisB,omitempty"`
	PositionsB []PositionSnapshot `json:"positionsB,omitempty"`
}

// BoundsSnapshot mirrors Bounds3.
type BoundsSnapshot struct {
	X Scalar `json:"x"`
	Y Scalar `json:"y"`
	Z Scalar `json:"z"`
	W Scalar `json:"w"`
	H Scalar `json:"h"`
	D Scalar `json:"d"`
}

// VoidSnapshot is one void subtree, DFS order.
type VoidSnapshot struct {
	ID          string               `json:"id"`
	Bounds      BoundsSnapshot       `json:"bounds"`
	Subdivision *SubdivisionSnapshot `json:"subdivision,omitempty"`
	Children    []VoidSnapshot       `json:"children,omitempty"`
	SubAssembly *AssemblySnapshot    `json:"subAssembly,omitempty"`
}

// EdgeValueSnapshot is one per-edge overlay value.
type EdgeValueSnapshot struct {
	PanelID string `json:"panelId"`
	Edge    string `json:"edge"`
	Value   Scalar `json:"value"`
}

// CornerValueSnapshot is one per-corner overlay value.
type CornerValueSnapshot struct {
	PanelID string `json:"panelId"`
	Corner  int    `json:"corner"`
	Radius  Scalar `json:"radius"`
}

// EdgePathPointSnapshot is one custom-path vertex.
type EdgePathPointSnapshot struct {
	T      Scalar `json:"t"`
	Offset Scalar `json:"offset"`
}

// EdgePathSnapshot is one stored custom edge path.
type EdgePathSnapshot struct {
	PanelID  string                  `json:"panelId"`
	Edge     string                  `json:"edge"`
	Mirrored bool                    `json:"mirrored,omitempty"`
	Points   []EdgePathPointSnapshot `json:"points"`
}

// CutoutSnapshot is one stored cutout.
type CutoutSnapshot struct {
	PanelID  string          `json:"panelId"`
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	X        Scalar          `json:"x,omitempty"`
	Y        Scalar          `json:"y,omitempty"`
	W        Scalar          `json:"w,omitempty"`
	H        Scalar          `json:"h,omitempty"`
	CX       Scalar          `json:"cx,omitempty"`
	CY       Scalar          `json:"cy,omitempty"`
	R        Scalar          `json:"r,omitempty"`
	Segments int             `json:"segments,omitempty"`
	Points   []PointSnapshot `json:"points,omitempty"`
}

// PolygonSnapshot is one stored replacement outline.
type PolygonSnapshot struct {
	PanelID string          `json:"panelId"`
	Points  []PointSnapshot `json:"points"`
}

// OverlaysSnapshot carries all per-panel customizations, each list sorted
// lexicographically by panel ID (then edge/corner) for determinism.
type OverlaysSnapshot struct {
	EdgeExtensions   []EdgeValueSnapshot   `json:"edgeExtensions,omitempty"`
	CornerFillets    []CornerValueSnapshot `json:"cornerFillets,omitempty"`
	AllCornerFillets []CornerValueSnapshot `json:"allCornerFillets,omitempty"`
	CustomEdgePaths  []EdgePathSnapshot    `json:"customEdgePaths,omitempty"`
	Cutouts          []CutoutSnapshot      `json:"cutouts,omitempty"`
	ModifiedSafeArea []PolygonSnapshot     `json:"modifiedSafeArea,omitempty"`
}

// AssemblySnapshot is one assembly subtree.
type AssemblySnapshot struct {
	ID           string             `json:"id"`
	Dimensions   DimensionsSnapshot `json:"dimensions"`
	Material     MaterialSnapshot   `json:"material"`
	AssemblyAxis string             `json:"assemblyAxis"`
	Faces        []FaceSnapshot     `json:"faces"`
	Feet         *FeetSnapshot      `json:"feet,omitempty"`
	Clearance    Scalar             `json:"clearance,omitempty"`
	Overlays     OverlaysSnapshot   `json:"overlays"`
	Root         VoidSnapshot       `json:"root"`
}

// SceneSnapshot is the canonical serialization of a scene.
type SceneSnapshot struct {
	Assemblies []AssemblySnapshot `json:"assemblies"`
}

// MarshalCanonical returns the canonical JSON bytes.
func (s *SceneSnapshot) MarshalCanonical() []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// The snapshot tree is plain data; marshaling cannot fail.
		panic("boxen: snapshot marshal: " + err.Error())
	}
	return b
}

// GetSceneSnapshot builds an immutable snapshot of the active scene.
func (e *Engine) GetSceneSnapshot() *SceneSnapshot {
	sc := e.active()
	snap := &SceneSnapshot{}
	for _, a := range sc.assemblies {
		snap.Assemblies = append(snap.Assemblies, snapshotAssembly(a))
	}
	return snap
}

func snapshotAssembly(a *Assembly) AssemblySnapshot {
	s := AssemblySnapshot{
		ID: a.id,
		Dimensions: DimensionsSnapshot{
			Width:  Scalar(a.dims.Width),
			Height: Scalar(a.dims.Height),
			Depth:  Scalar(a.dims.Depth),
		},
		Material: MaterialSnapshot{
			Thickness:   Scalar(a.material.Thickness),
			FingerWidth: Scalar(a.material.FingerWidth),
			FingerGap:   Scalar(a.material.FingerGap),
		},
		AssemblyAxis: a.axis.String(),
		Overlays:     snapshotOverlays(&a.overlays),
		Root:         snapshotVoid(a.root),
	}
	for f := FaceID(0); f < faceCount; f++ {
		fs := FaceSnapshot{Face: f.String(), Solid: a.faces[f].Solid}
		if a.faces[f].LidTabDirection != LidTabDefault {
			fs.LidTabDirection = a.faces[f].LidTabDirection.String()
		}
		s.Faces = append(s.Faces, fs)
	}
	if a.feet != nil && a.feet.Enabled {
		s.Feet = &FeetSnapshot{
			Height:       Scalar(a.feet.Height),
			Width:        Scalar(a.feet.Width),
			Inset:        Scalar(a.feet.Inset),
			SlopeAngle:   Scalar(a.feet.SlopeAngle),
			CornerFinish: a.feet.CornerFinish,
		}
	}
	if a.IsSub() {
		s.Clearance = Scalar(a.clearance)
	}
	return s
}

func snapshotVoid(v *Void) VoidSnapshot {
	s := VoidSnapshot{
		ID: v.id,
		Bounds: BoundsSnapshot{
			X: Scalar(v.bounds.X), Y: Scalar(v.bounds.Y), Z: Scalar(v.bounds.Z),
			W: Scalar(v.bounds.W), H: Scalar(v.bounds.H), D: Scalar(v.bounds.D),
		},
	}
	if spec := v.subdivision; spec != nil {
		ss := &SubdivisionSnapshot{
			Kind:      "linear",
			Axis:      spec.Axis.String(),
			Positions: snapshotPositions(spec.Positions),
		}
		if spec.Kind == SubdivisionGrid {
			ss.Kind = "grid"
			ss.AxisB = spec.AxisB.String()
			ss.PositionsB = snapshotPositions(spec.PositionsB)
		}
		s.Subdivision = ss
	}
	for _, c := range v.children {
		s.Children = append(s.Children, snapshotVoid(c))
	}
	if v.subAssembly != nil {
		sub := snapshotAssembly(v.subAssembly)
		s.SubAssembly = &sub
	}
	return s
}

func snapshotPositions(ps []Position) []PositionSnapshot {
	out := make([]PositionSnapshot, len(ps))
	for i, p := range ps {
		mode := "absolute"
		if p.Fraction {
			mode = "fraction"
		}
		out[i] = PositionSnapshot{Value: Scalar(p.Value), Mode: mode}
	}
	return out
}

func snapshotOverlays(o *Overlays) OverlaysSnapshot {
	var s OverlaysSnapshot
	for _, id := range sortedKeys(o.EdgeExtensions) {
		for _, e := range sortedEdgeKeys(o.EdgeExtensions[id]) {
			s.EdgeExtensions = append(s.EdgeExtensions, EdgeValueSnapshot{
				PanelID: id, Edge: e.String(), Value: Scalar(o.EdgeExtensions[id][e]),
			})
		}
	}
	for _, id := range sortedKeys(o.CornerFillets) {
		for _, c := range sortedIntKeys(o.CornerFillets[id]) {
			s.CornerFillets = append(s.CornerFillets, CornerValueSnapshot{
				PanelID: id, Corner: c, Radius: Scalar(o.CornerFillets[id][c]),
			})
		}
	}
	for _, id := range sortedKeys(o.AllCornerFillets) {
		for _, c := range sortedIntKeys(o.AllCornerFillets[id]) {
			s.AllCornerFillets = append(s.AllCornerFillets, CornerValueSnapshot{
				PanelID: id, Corner: c, Radius: Scalar(o.AllCornerFillets[id][c]),
			})
		}
	}
	for _, id := range sortedKeys(o.CustomEdgePaths) {
		for _, e := range sortedEdgePathKeys(o.CustomEdgePaths[id]) {
			ep := o.CustomEdgePaths[id][e]
			es := EdgePathSnapshot{PanelID: id, Edge: e.String(), Mirrored: ep.Mirrored}
			for _, pt := range ep.Points {
				es.Points = append(es.Points, EdgePathPointSnapshot{T: Scalar(pt.T), Offset: Scalar(pt.Offset)})
			}
			s.CustomEdgePaths = append(s.CustomEdgePaths, es)
		}
	}
	for _, id := range sortedKeys(o.Cutouts) {
		for _, c := range o.Cutouts[id] {
			cs := CutoutSnapshot{PanelID: id, ID: c.ID, Kind: c.Kind.String()}
			switch c.Kind {
			case CutoutRect:
				cs.X, cs.Y = Scalar(c.Rect.X), Scalar(c.Rect.Y)
				cs.W, cs.H = Scalar(c.Rect.Width), Scalar(c.Rect.Height)
			case CutoutCircle:
				cs.CX, cs.CY, cs.R = Scalar(c.CX), Scalar(c.CY), Scalar(c.R)
				cs.Segments = c.Segments
			default:
				for _, pt := range c.Points {
					cs.Points = append(cs.Points, PointSnapshot{X: Scalar(pt.X), Y: Scalar(pt.Y)})
				}
			}
			s.Cutouts = append(s.Cutouts, cs)
		}
	}
	for _, id := range sortedKeys(o.ModifiedSafeArea) {
		ps := PolygonSnapshot{PanelID: id}
		for _, pt := range o.ModifiedSafeArea[id] {
			ps.Points = append(ps.Points, PointSnapshot{X: Scalar(pt.X), Y: Scalar(pt.Y)})
		}
		s.ModifiedSafeArea = append(s.ModifiedSafeArea, ps)
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedEdgeKeys(m map[PanelEdge]float64) []PanelEdge {
	keys := make([]PanelEdge, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedEdgePathKeys(m map[PanelEdge]*EdgePath) []PanelEdge {
	keys := make([]PanelEdge, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
