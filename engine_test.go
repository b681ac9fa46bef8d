package boxen

import (
	"bytes"
	"testing"
)

func TestDispatchUnknownTarget(t *testing.T) {
	e, _ := newTestBox(t, 100, 80, 60)
	ok := e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: "assembly-99", Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})
	assertFalse(t, "unknown target rejected", ok)
}

func TestDispatchWrongPayload(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	ok := e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: "nope"})
	assertFalse(t, "wrong payload rejected", ok)
}

func TestClearScene(t *testing.T) {
	e, _ := newTestBox(t, 100, 80, 60)
	ok := e.Dispatch(Action{Kind: ActionClearScene})
	assertTrue(t, "clear", ok)
	if len(e.GeneratePanels().Panels) != 0 {
		t.Error("panels remain after clear")
	}
}

func TestFindHandles(t *testing.T) {
	e, a := newTestBox(t, 200, 150, 200)
	if h, ok := e.FindAssembly(a.id); !ok || h.Kind != "assembly" {
		t.Errorf("FindAssembly = %v, %v", h, ok)
	}
	if h, ok := e.FindVoid(a.root.id); !ok || h.Kind != "void" {
		t.Errorf("FindVoid = %v, %v", h, ok)
	}
	e.Dispatch(Action{Kind: ActionCreateSubAssembly, TargetID: a.root.id, Payload: CreateSubAssemblyPayload{}})
	if h, ok := e.FindByID(a.root.subAssembly.id); !ok || h.Kind != "subassembly" {
		t.Errorf("FindByID(sub) = %v, %v", h, ok)
	}
	if _, ok := e.FindByID("nothing"); ok {
		t.Error("FindByID(nothing) should fail")
	}
}

func TestPanelMemoization(t *testing.T) {
	e, _ := newTestBox(t, 100, 80, 60)
	first := e.GeneratePanels()
	second := e.GeneratePanels()
	if first != second {
		t.Error("clean scene should return the cached panel list")
	}
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: e.active().Primary().id, Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})
	third := e.GeneratePanels()
	if third == first {
		t.Error("dirty scene should regenerate")
	}
}

// --- Determinism ---

func boxActions() []Action {
	return []Action{
		{Kind: ActionCreateAssembly, Payload: CreateAssemblyPayload{
			Dimensions: Dimensions{Width: 300, Height: 100, Depth: 200},
			Material:   testMaterial,
		}},
		{Kind: ActionSetFaceSolid, TargetID: "assembly-1", Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}},
		{Kind: ActionAddSubdivisions, TargetID: "void-2", Payload: AddSubdivisionsPayload{
			Axis: AxisX, Positions: []Position{{Value: 150}},
		}},
		{Kind: ActionSetEdgeExtension, TargetID: "assembly-1", Payload: SetEdgeExtensionPayload{
			PanelID: "face:assembly-1:front", Edge: EdgeTop, Value: 12,
		}},
	}
}

func TestDeterministicSnapshots(t *testing.T) {
	run := func() []byte {
		e := NewEngine()
		for _, act := range boxActions() {
			if !e.Dispatch(act) {
				t.Fatalf("action %s failed", act.Kind)
			}
		}
		return e.GetSceneSnapshot().MarshalCanonical()
	}
	a := run()
	b := run()
	if !bytes.Equal(a, b) {
		t.Error("identical transcripts produced different snapshots")
	}
}

func TestTranscriptReplay(t *testing.T) {
	e := NewEngine()
	for _, act := range boxActions() {
		e.Dispatch(act)
	}
	replayed := Replay(e.Transcript())
	if !bytes.Equal(
		e.GetSceneSnapshot().MarshalCanonical(),
		replayed.GetSceneSnapshot().MarshalCanonical(),
	) {
		t.Error("replayed transcript diverges from the original scene")
	}
}

// --- Preview ---

func TestPreviewCommitEquivalence(t *testing.T) {
	direct := NewEngine()
	for _, act := range boxActions() {
		direct.Dispatch(act)
	}

	previewed := NewEngine()
	previewed.Dispatch(boxActions()[0])
	assertTrue(t, "start", previewed.StartPreview())
	for _, act := range boxActions()[1:] {
		if !previewed.Dispatch(act) {
			t.Fatalf("preview action %s failed", act.Kind)
		}
	}
	assertTrue(t, "has preview", previewed.HasPreview())
	assertTrue(t, "commit", previewed.CommitPreview())
	assertFalse(t, "no preview after commit", previewed.HasPreview())

	if !bytes.Equal(
		direct.GetSceneSnapshot().MarshalCanonical(),
		previewed.GetSceneSnapshot().MarshalCanonical(),
	) {
		t.Error("preview+commit snapshot differs from direct application")
	}
}

func TestPreviewDiscard(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	before := e.GetSceneSnapshot().MarshalCanonical()
	e.StartPreview()
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})
	// The preview sees the change...
	if len(e.GeneratePanels().Panels) != 5 {
		t.Error("preview scene should reflect the dispatch")
	}
	assertTrue(t, "discard", e.DiscardPreview())
	// ...and the main scene never does.
	if !bytes.Equal(before, e.GetSceneSnapshot().MarshalCanonical()) {
		t.Error("discarded preview leaked into the main scene")
	}
	if len(e.GeneratePanels().Panels) != 6 {
		t.Error("main scene panels changed after discard")
	}
}

func TestPreviewTranscriptFolding(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	e.StartPreview()
	e.Dispatch(Action{Kind: ActionSetFaceSolid, TargetID: a.id, Payload: SetFaceSolidPayload{Face: FaceTop, Solid: false}})
	if got := len(e.Transcript()); got != 1 {
		t.Fatalf("transcript during preview = %d actions, want 1 (pending excluded)", got)
	}
	e.CommitPreview()
	if got := len(e.Transcript()); got != 2 {
		t.Fatalf("transcript after commit = %d actions, want 2", got)
	}
}

// --- Cross-lap conflicts leave the scene untouched ---

func TestGridConflictNoOp(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	e.Dispatch(Action{Kind: ActionAddGridSubdivision, TargetID: a.root.id, Payload: AddGridSubdivisionPayload{
		AxisA: AxisX, PositionsA: []Position{{Value: 50}},
		AxisB: AxisZ, PositionsB: []Position{{Value: 30}},
	}})
	snap := e.GetSceneSnapshot().MarshalCanonical()

	// Any x-position near the existing x-divider's slot on the z-divider
	// is rejected; the snapshot stays byte-identical.
	cell := a.root.children[0]
	ok := e.Dispatch(Action{Kind: ActionAddSubdivision, TargetID: cell.id, Payload: AddSubdivisionPayload{
		Axis: AxisX, Position: Position{Value: 46},
	}})
	assertFalse(t, "conflicting subdivision rejected", ok)
	if !bytes.Equal(snap, e.GetSceneSnapshot().MarshalCanonical()) {
		t.Error("rejected action changed the snapshot")
	}
}

func TestAlignmentErrorsCleanScene(t *testing.T) {
	e, _ := newTestBox(t, 300, 100, 200)
	if errs := e.AlignmentErrors(); len(errs) != 0 {
		t.Errorf("unexpected alignment errors: %v", errs)
	}
}

func TestOrderingIndependence(t *testing.T) {
	// Replaying the transcript from a fresh scene reproduces the result
	// regardless of when snapshots were taken in between.
	e := NewEngine()
	e.Dispatch(boxActions()[0])
	e.GetSceneSnapshot()
	e.Dispatch(boxActions()[1])
	e.GeneratePanels()
	e.Dispatch(boxActions()[2])
	e.Dispatch(boxActions()[3])

	replayed := Replay(e.Transcript())
	if !bytes.Equal(
		e.GetSceneSnapshot().MarshalCanonical(),
		replayed.GetSceneSnapshot().MarshalCanonical(),
	) {
		t.Error("interleaved reads changed the outcome")
	}
}
