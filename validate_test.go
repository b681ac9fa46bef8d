package boxen

import (
	"strings"
	"testing"
)

func TestValidatePanelBadWinding(t *testing.T) {
	p := &Panel{
		ID: "test",
		Outline: []PathPoint{
			{0, 0}, {0, 50}, {100, 50}, {100, 0}, // clockwise
		},
	}
	var errs []AlignmentError
	validatePanel(p, &errs)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Detail, "winding") {
		t.Errorf("unexpected detail %q", errs[0].Detail)
	}
}

func TestValidatePanelHoleWinding(t *testing.T) {
	p := &Panel{
		ID:      "test",
		Outline: []PathPoint{{0, 0}, {100, 0}, {100, 50}, {0, 50}},
		Holes: [][]PathPoint{
			// Counter-clockwise: same winding as the outline.
			{{10, 10}, {20, 10}, {20, 20}, {10, 20}},
		},
	}
	var errs []AlignmentError
	validatePanel(p, &errs)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Detail, "hole 0") {
		t.Errorf("unexpected detail %q", errs[0].Detail)
	}
}

func TestValidatePanelHoleTouchingBounds(t *testing.T) {
	p := &Panel{
		ID:      "test",
		Outline: []PathPoint{{0, 0}, {100, 0}, {100, 50}, {0, 50}},
		Holes: [][]PathPoint{
			// Correct winding but flush against the outline's left bound.
			{{0, 10}, {0, 20}, {10, 20}, {10, 10}},
		},
	}
	var errs []AlignmentError
	validatePanel(p, &errs)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Detail, "bounds") {
		t.Errorf("unexpected detail %q", errs[0].Detail)
	}
}

func TestValidateCleanSubdividedScene(t *testing.T) {
	e, a := newTestBox(t, 300, 100, 200)
	ok := e.Dispatch(Action{Kind: ActionAddSubdivisions, TargetID: a.root.id, Payload: AddSubdivisionsPayload{
		Axis:      AxisX,
		Positions: []Position{{Value: 100}, {Value: 200}},
	}})
	if !ok {
		t.Fatal("AddSubdivisions failed")
	}
	e.GeneratePanels()
	if errs := e.AlignmentErrors(); len(errs) != 0 {
		t.Fatalf("clean scene reported errors: %v", errs)
	}
}

func TestValidateCleanGridScene(t *testing.T) {
	e, a := newTestBox(t, 100, 80, 60)
	ok := e.Dispatch(Action{Kind: ActionAddGridSubdivision, TargetID: a.root.id, Payload: AddGridSubdivisionPayload{
		AxisA:      AxisX,
		AxisB:      AxisZ,
		PositionsA: []Position{{Value: 50}},
		PositionsB: []Position{{Value: 30}},
	}})
	if !ok {
		t.Fatal("AddGridSubdivision failed")
	}
	e.GeneratePanels()
	if errs := e.AlignmentErrors(); len(errs) != 0 {
		t.Fatalf("clean grid scene reported errors: %v", errs)
	}
}

func TestValidateVoidSumDetectsDrift(t *testing.T) {
	e, a := newTestBox(t, 300, 100, 200)
	if !e.Dispatch(Action{Kind: ActionAddSubdivision, TargetID: a.root.id, Payload: AddSubdivisionPayload{
		Axis:     AxisX,
		Position: Position{Value: 150},
	}}) {
		t.Fatal("AddSubdivision failed")
	}

	// Corrupt a child's bounds directly; the check must notice the drift.
	a.root.children[0].bounds.W += 1

	var errs []AlignmentError
	validateVoidSum(a.root, &errs)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Detail, "recompose") {
		t.Errorf("unexpected detail %q", errs[0].Detail)
	}
}

func TestValidateGenderOpposition(t *testing.T) {
	_, a := newTestBox(t, 100, 80, 60)
	var errs []AlignmentError
	validateAssembly(a, &errs)
	if len(errs) != 0 {
		t.Fatalf("enclosed box reported gender errors: %v", errs)
	}
}
