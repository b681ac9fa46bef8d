package boxen

import (
	"math"
	"strings"
	"testing"
)

// findPanel fetches a generated panel by ID or fails the test.
func findPanel(t *testing.T, e *Engine, id string) *Panel {
	t.Helper()
	p := e.GeneratePanels().Find(id)
	if p == nil {
		var ids []string
		for _, q := range e.GeneratePanels().Panels {
			ids = append(ids, q.ID)
		}
		t.Fatalf("panel %q not found in %v", id, ids)
	}
	return p
}

// assertClosedCCW checks outline basics: at least a triangle, no duplicate
// closing point, counter-clockwise winding.
func assertClosedCCW(t *testing.T, p *Panel) {
	t.Helper()
	if len(p.Outline) < 3 {
		t.Fatalf("panel %s outline has %d points", p.ID, len(p.Outline))
	}
	if ptNear(p.Outline[0], p.Outline[len(p.Outline)-1], EPS) {
		t.Errorf("panel %s outline repeats its first point", p.ID)
	}
	if signedArea(p.Outline) <= 0 {
		t.Errorf("panel %s outline winding is not counter-clockwise", p.ID)
	}
}

// eligibleCount counts fillet-eligible outline vertices.
func eligibleCount(p *Panel) int {
	n := 0
	for _, c := range p.Corners {
		if c.Eligible {
			n++
		}
	}
	return n
}

// --- Enclosed box ---

func TestEnclosedBox(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	list := e.GeneratePanels()
	if len(list.Panels) != 6 {
		t.Fatalf("panel count = %d, want 6", len(list.Panels))
	}

	front := findPanel(t, e, "face:"+a.id+":front")
	assertNear(t, "front width", front.Width, 100)
	assertNear(t, "front height", front.Height, 80)
	for eId := PanelEdge(0); eId < panelEdgeCount; eId++ {
		if s := front.EdgeStatuses[eId]; s != EdgeMale {
			t.Errorf("front %v edge = %v, want male-joint", eId, s)
		}
	}

	left := findPanel(t, e, "face:"+a.id+":left")
	assertNear(t, "left width", left.Width, 60)
	assertNear(t, "left height", left.Height, 80)
	if left.EdgeStatuses[EdgeLeft] != EdgeFemale || left.EdgeStatuses[EdgeRight] != EdgeFemale {
		t.Error("left panel vertical edges should be female (front/back win)")
	}
	if left.EdgeStatuses[EdgeTop] != EdgeMale || left.EdgeStatuses[EdgeBottom] != EdgeMale {
		t.Error("left panel horizontal edges should be male (left beats top/bottom)")
	}

	top := findPanel(t, e, "face:"+a.id+":top")
	for eId := PanelEdge(0); eId < panelEdgeCount; eId++ {
		if s := top.EdgeStatuses[eId]; s != EdgeFemale {
			t.Errorf("top %v edge = %v, want female-joint", eId, s)
		}
	}

	for _, p := range list.Panels {
		assertClosedCCW(t, p)
		if got := eligibleCount(p); got != 0 {
			t.Errorf("panel %s has %d eligible corners, want 0", p.ID, got)
		}
		// Every edge is jointed, so every edge produced a castellation:
		// the outline needs many more than 4 points.
		if len(p.Outline) < 20 {
			t.Errorf("panel %s outline has only %d points", p.ID, len(p.Outline))
		}
		// Tabbed outlines stay axis-aligned.
		n := len(p.Outline)
		for i := 0; i < n; i++ {
			q := p.Outline[(i+1)%n]
			dx := math.Abs(q.X - p.Outline[i].X)
			dy := math.Abs(q.Y - p.Outline[i].Y)
			if dx > EPS && dy > EPS {
				t.Fatalf("panel %s has a diagonal segment", p.ID)
			}
		}
	}
	if errs := e.AlignmentErrors(); len(errs) != 0 {
		t.Errorf("alignment errors on a plain box: %v", errs)
	}
}

func TestEnclosedBoxOutlineBounds(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	front := findPanel(t, e, "face:"+a.id+":front")
	b := front.BoundingRect
	assertNear(t, "minX", b.X, 0)
	assertNear(t, "minY", b.Y, 0)
	assertNear(t, "maxX", b.X+b.Width, 100)
	assertNear(t, "maxY", b.Y+b.Height, 80)
}

// --- Open faces ---

func TestTopRemoved(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})

	list := e.GeneratePanels()
	if len(list.Panels) != 5 {
		t.Fatalf("panel count = %d, want 5", len(list.Panels))
	}
	front := findPanel(t, e, "face:"+a.id+":front")
	if front.EdgeStatuses[EdgeTop] != EdgeOpen {
		t.Errorf("front top edge = %v, want open", front.EdgeStatuses[EdgeTop])
	}
	for _, eId := range []PanelEdge{EdgeBottom, EdgeLeft, EdgeRight} {
		if front.EdgeStatuses[eId] == EdgeOpen {
			t.Errorf("front %v edge should stay jointed", eId)
		}
	}
	// The open top edge is a straight line at y=80: no outline point
	// exceeds the body height, and the top run has no castellation steps.
	for _, p := range front.Outline {
		if p.Y > 80+EPS {
			t.Errorf("open edge point above body: %v", p)
		}
	}
	if got := eligibleCount(front); got != 0 {
		t.Errorf("front eligible corners = %d, want 0", got)
	}
}

func TestTopAndLeftRemoved(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: SetFaceSolidPayload{Face: FaceLeft, Solid: false}})

	front := findPanel(t, e, "face:"+a.id+":front")
	if front.EdgeStatuses[EdgeTop] != EdgeOpen || front.EdgeStatuses[EdgeLeft] != EdgeOpen {
		t.Fatal("front top and left edges should be open")
	}
	if got := eligibleCount(front); got != 1 {
		t.Fatalf("front eligible corners = %d, want exactly 1", got)
	}
	for _, c := range front.Corners {
		if c.Eligible {
			assertNear(t, "eligible corner x", c.Location.X, 0)
			assertNear(t, "eligible corner y", c.Location.Y, 80)
		}
	}
}

// --- Extension clamp on male edges ---

func TestMaleExtensionClamps(t *testing.T) {
	e, a := newTestBox(t, 100, 100, 100)
	snap := string(e.GetSceneSnapshot().MarshalCanonical())
	ok := e.Dispatch(Action{Kind: ActionSetEdgeExtension, TargetID: a.id, Payload: SetEdgeExtensionPayload{
		PanelID: "face:" + a.id + ":front", Edge: EdgeLeft, Value: 5,
	}})
	assertTrue(t, "action accepted (silent clamp)", ok)
	if got := string(e.GetSceneSnapshot().MarshalCanonical()); got != snap {
		t.Error("clamped-to-zero extension should leave the snapshot unchanged")
	}
}

// --- Open-edge extension ---

func TestOpenTopExtension(t *testing.T) {
	e, a := newTestBox(t, 100, 100, 100)
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})
	ok := e.Dispatch(Action{Kind: ActionSetEdgeExtension, TargetID: a.id, Payload: SetEdgeExtensionPayload{
		PanelID: "face:" + a.id + ":front", Edge: EdgeTop, Value: 10,
	}})
	assertTrue(t, "extension accepted", ok)

	front := findPanel(t, e, "face:"+a.id+":front")
	b := front.BoundingRect
	assertNear(t, "extended height", b.Y+b.Height, 110)

	// The safe area gains an extended strip (W-2mt) x (ext-mt) = 94 x 7.
	var strip *Rect
	for i, r := range front.SafeArea {
		if r.Y >= 100 {
			strip = &front.SafeArea[i]
		}
	}
	if strip == nil {
		t.Fatal("no extended safe-area strip")
	}
	assertNear(t, "strip width", strip.Width, 94)
	assertNear(t, "strip height", strip.Height, 7)
	assertNear(t, "strip base", strip.Y, 103)
}

// --- Feet ---

func TestFeetEdgePath(t *testing.T) {
	e, a := newTestBox(t, 200, 100, 150)
	ok := e.Dispatch(Action{Kind: ActionSetFeetConfig, TargetID: a.id, Payload: FeetConfig{
		Enabled: true, Height: 15, Width: 20, Inset: 10,
	}})
	assertTrue(t, "feet", ok)

	ep := feetEdgePath(*a.feet, 200)
	if !ep.Mirrored {
		t.Fatal("feet path should be mirrored")
	}
	wantT := []float64{0, 10.0 / 200, 10.0 / 200, 30.0 / 200, 30.0 / 200, 0.5}
	if len(ep.Points) != 6 {
		t.Fatalf("feet path has %d points, want 6", len(ep.Points))
	}
	for i, w := range wantT {
		assertNear(t, "feet t", ep.Points[i].T, w)
	}
	wantOff := []float64{0, 0, 15, 15, 0, 0}
	for i, w := range wantOff {
		assertNear(t, "feet offset", ep.Points[i].Offset, w)
	}

	// The front panel's outline extends below the body by the foot height,
	// and the notched edge reports as open.
	front := findPanel(t, e, "face:"+a.id+":front")
	assertNear(t, "foot depth", front.BoundingRect.Y, -15)
	if front.EdgeStatuses[EdgeBottom] != EdgeOpen {
		t.Errorf("feet bottom edge = %v, want open", front.EdgeStatuses[EdgeBottom])
	}
}

// --- Divider panels ---

func TestDividerPanelBasics(t *testing.T) {
	e, a := newTestBox(t, 300, 100, 200)
	e.Dispatch(Action{Kind: ActionAddSubdivisions, TargetID: a.root.id, Payload: AddSubdivisionsPayload{
		Axis: AxisX, Positions: []Position{{Value: 150}},
	}})
	list := e.GeneratePanels()
	if len(list.Panels) != 7 {
		t.Fatalf("panel count = %d, want 6 faces + 1 divider", len(list.Panels))
	}
	var div *Panel
	for _, p := range list.Panels {
		if p.Source.Kind == SourceDivider {
			div = p
		}
	}
	if div == nil {
		t.Fatal("no divider panel")
	}
	if !strings.HasPrefix(div.ID, "divider:") {
		t.Errorf("divider id = %q", div.ID)
	}
	// Interior spans: z 194, y 94.
	assertNear(t, "divider width", div.Width, 194)
	assertNear(t, "divider height", div.Height, 94)
	for eId := PanelEdge(0); eId < panelEdgeCount; eId++ {
		if div.EdgeStatuses[eId] != EdgeMale {
			t.Errorf("divider %v edge = %v, want male", eId, div.EdgeStatuses[eId])
		}
	}
	// Tabs protrude one thickness past the body on all sides.
	b := div.BoundingRect
	assertNear(t, "tab overhang left", b.X, -3)
	assertNear(t, "tab overhang right", b.X+b.Width, 197)
	assertClosedCCW(t, div)
}

func TestDividerOpenFaceEdge(t *testing.T) {
	e, a := newTestBox(t, 300, 100, 200)
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})
	e.Dispatch(Action{Kind: ActionAddSubdivisions, TargetID: a.root.id, Payload: AddSubdivisionsPayload{
		Axis: AxisX, Positions: []Position{{Value: 150}},
	}})
	var div *Panel
	for _, p := range e.GeneratePanels().Panels {
		if p.Source.Kind == SourceDivider {
			div = p
		}
	}
	if div == nil {
		t.Fatal("no divider panel")
	}
	// Divider local Y is world Y; its top edge faces the removed top.
	if div.EdgeStatuses[EdgeTop] != EdgeOpen {
		t.Errorf("divider top edge = %v, want open", div.EdgeStatuses[EdgeTop])
	}
	if div.EdgeStatuses[EdgeBottom] != EdgeMale {
		t.Errorf("divider bottom edge = %v, want male", div.EdgeStatuses[EdgeBottom])
	}
}

func TestPanelTransformsDeterministic(t *testing.T) {
	e1, a1 := newTestBox(t, 100, 80, 60)
	e2, a2 := newTestBox(t, 100, 80, 60)
	if a1.id != a2.id {
		t.Fatal("assembly ids diverge")
	}
	p1 := findPanel(t, e1, "face:"+a1.id+":back")
	p2 := findPanel(t, e2, "face:"+a2.id+":back")
	if p1.Transform != p2.Transform {
		t.Errorf("transforms diverge: %v vs %v", p1.Transform, p2.Transform)
	}
	assertNear(t, "back plane z", p1.Transform.Position[2], 60-1.5)
}

func TestPanelArea(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	front := findPanel(t, e, "face:"+a.id+":front")
	area := front.Area()
	// The castellated outline area is the body area minus the recessed
	// notches; it must land strictly between the inset body and full body.
	if area <= 94*74 || area >= 100*80 {
		t.Errorf("front area = %v, want between inset and full body", area)
	}
}
