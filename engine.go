package boxen

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// dispatchError is the internal failure taxonomy. Dispatch itself reports a
// bare success bool to callers. The code of a rejected action is printed to
// stderr in debug mode and is not recorded anywhere; the alignment-error log
// carries only the codes of generation-time findings.
type dispatchError uint8

const (
	errOK dispatchError = iota
	errNotFound
	errInvalidArgument
	errConflictingCrossLap
	errInvalidBooleanResult
	errSafeAreaViolation
	errDegenerateGeometry
)

func (e dispatchError) String() string {
	switch e {
	case errOK:
		return "ok"
	case errNotFound:
		return "not-found"
	case errInvalidArgument:
		return "invalid-argument"
	case errConflictingCrossLap:
		return "conflicting-cross-lap"
	case errInvalidBooleanResult:
		return "invalid-boolean-result"
	case errSafeAreaViolation:
		return "safe-area-violation"
	default:
		return "degenerate-geometry"
	}
}

// AlignmentError is one entry of the engine's best-effort error log:
// degenerate geometry dropped at emit time and invariant violations found by
// the post-commit checks, as of the latest generation pass. Rejected actions
// are not recorded in it.
type AlignmentError struct {
	Code    dispatchError
	PanelID string
	Detail  string
}

// Error implements error.
func (a AlignmentError) Error() string {
	if a.PanelID == "" {
		return a.Code.String() + ": " + a.Detail
	}
	return a.Code.String() + " [" + a.PanelID + "]: " + a.Detail
}

// Handle is an opaque node reference returned by the find helpers.
type Handle struct {
	ID   string
	Kind string // "assembly", "subassembly", "void"
}

// Engine owns the scene state and is the single mutation entry point. It is
// single-threaded: a dispatch begins, mutates, marks dirty, and returns,
// with no suspension points. Consumers that read concurrently must clone
// snapshots first or serialize externally.
type Engine struct {
	main    *Scene
	preview *Scene

	// idMap is the lazy id-to-node cache, invalidated on any successful
	// dispatch or preview transition.
	idMap    map[string]any
	idMapFor *Scene

	// panels memoizes the last generation; valid while the owning scene
	// stays clean.
	panels    *PanelList
	panelsFor *Scene

	alignErrors []AlignmentError

	// transcript records every action successfully applied to the main
	// scene; preview actions are pending until commit.
	transcript []Action
	pending    []Action

	debug bool
}

// NewEngine creates an engine with an empty main scene.
func NewEngine() *Engine {
	return &Engine{main: newScene()}
}

// SetDebugMode enables stderr diagnostics for rejected actions and
// invariant reports.
func (e *Engine) SetDebugMode(enabled bool) { e.debug = enabled }

// active returns the scene dispatches and reads currently address.
func (e *Engine) active() *Scene {
	if e.preview != nil {
		return e.preview
	}
	return e.main
}

// --- Preview lifecycle ---

// StartPreview deep-clones the scene; subsequent dispatches route to the
// clone until commit or discard. Starting twice is a no-op.
func (e *Engine) StartPreview() bool {
	if e.preview != nil {
		return false
	}
	e.preview = e.main.clone()
	e.invalidateLookups()
	return true
}

// CommitPreview swaps the preview in as the main scene and folds its
// actions into the transcript.
func (e *Engine) CommitPreview() bool {
	if e.preview == nil {
		return false
	}
	e.main = e.preview
	e.preview = nil
	e.transcript = append(e.transcript, e.pending...)
	e.pending = nil
	e.invalidateLookups()
	e.collectStaleOverlays()
	e.GeneratePanels() // refresh the invariant checks
	return true
}

// DiscardPreview drops the preview scene.
func (e *Engine) DiscardPreview() bool {
	if e.preview == nil {
		return false
	}
	e.preview = nil
	e.pending = nil
	e.invalidateLookups()
	return true
}

// HasPreview reports whether a preview scene is active.
func (e *Engine) HasPreview() bool { return e.preview != nil }

func (e *Engine) invalidateLookups() {
	e.idMap = nil
	e.idMapFor = nil
	e.panels = nil
	e.panelsFor = nil
}

// collectStaleOverlays garbage-collects overlay entries keyed by panel IDs
// that no longer derive from the scene.
func (e *Engine) collectStaleOverlays() {
	live := map[string]bool{}
	gen := &panelGenerator{scene: e.main}
	for _, p := range gen.generatePanels() {
		live[p.ID] = true
	}
	e.main.walk(func(node any) {
		if a, ok := node.(*Assembly); ok {
			a.overlays.gc(live)
		}
	})
}

// --- Lookup ---

// nodeByID resolves an ID in the active scene through the lazy map.
func (e *Engine) nodeByID(id string) any {
	sc := e.active()
	if e.idMap == nil || e.idMapFor != sc {
		m := map[string]any{}
		sc.walk(func(node any) {
			switch n := node.(type) {
			case *Assembly:
				m[n.id] = n
			case *Void:
				m[n.id] = n
			}
		})
		e.idMap = m
		e.idMapFor = sc
	}
	return e.idMap[id]
}

// FindAssembly returns a handle for an assembly or sub-assembly ID.
func (e *Engine) FindAssembly(id string) (Handle, bool) {
	if a, ok := e.nodeByID(id).(*Assembly); ok {
		kind := "assembly"
		if a.IsSub() {
			kind = "subassembly"
		}
		return Handle{ID: a.id, Kind: kind}, true
	}
	return Handle{}, false
}

// FindVoid returns a handle for a void ID.
func (e *Engine) FindVoid(id string) (Handle, bool) {
	if v, ok := e.nodeByID(id).(*Void); ok {
		return Handle{ID: v.id, Kind: "void"}, true
	}
	return Handle{}, false
}

// FindByID returns a handle for any node ID.
func (e *Engine) FindByID(id string) (Handle, bool) {
	switch n := e.nodeByID(id).(type) {
	case *Assembly:
		kind := "assembly"
		if n.IsSub() {
			kind = "subassembly"
		}
		return Handle{ID: n.id, Kind: kind}, true
	case *Void:
		return Handle{ID: n.id, Kind: "void"}, true
	}
	return Handle{}, false
}

// --- Panel generation ---

// GeneratePanels derives the panel list for the active scene. The result is
// memoized: while nothing in the scene is dirty the previous list is
// returned unchanged.
func (e *Engine) GeneratePanels() *PanelList {
	sc := e.active()
	if e.panels != nil && e.panelsFor == sc && !sc.dirty {
		return e.panels
	}
	var errs []AlignmentError
	gen := &panelGenerator{scene: sc, errors: &errs}
	panels := gen.generatePanels()
	validateInvariants(sc, panels, &errs)
	e.alignErrors = errs
	e.panels = &PanelList{Panels: panels, GeneratedAt: time.Now()}
	e.panelsFor = sc
	sc.dirty = false
	if e.debug && len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "[boxen] %s\n", err.Error())
		}
	}
	return e.panels
}

// AlignmentErrors returns the joint/invariant violations recorded by the
// most recent generation pass.
func (e *Engine) AlignmentErrors() []AlignmentError {
	e.GeneratePanels()
	return append([]AlignmentError(nil), e.alignErrors...)
}

// --- Transcript ---

// Transcript returns the actions successfully applied to the main scene.
func (e *Engine) Transcript() []Action {
	return append([]Action(nil), e.transcript...)
}

// Replay applies a transcript to a fresh engine.
func Replay(actions []Action) *Engine {
	fresh := NewEngine()
	for _, act := range actions {
		fresh.Dispatch(act)
	}
	return fresh
}

// --- Dispatch ---

// Dispatch applies one action to the active scene. Failures are silent
// no-ops (false); nothing is partially mutated.
func (e *Engine) Dispatch(act Action) bool {
	sc := e.active()
	err := e.apply(sc, act)
	if err != errOK {
		if e.debug {
			fmt.Fprintf(os.Stderr, "[boxen] action %s rejected: %s\n", act.Kind, err)
		}
		return false
	}
	e.idMap = nil
	e.idMapFor = nil
	if sc == e.main {
		e.transcript = append(e.transcript, act)
	} else {
		e.pending = append(e.pending, act)
	}
	return true
}

// targetAssembly resolves an action's target as an assembly.
func (e *Engine) targetAssembly(id string) (*Assembly, dispatchError) {
	a, ok := e.nodeByID(id).(*Assembly)
	if !ok {
		return nil, errNotFound
	}
	return a, errOK
}

// targetVoid resolves an action's target as a void.
func (e *Engine) targetVoid(id string) (*Void, dispatchError) {
	v, ok := e.nodeByID(id).(*Void)
	if !ok {
		return nil, errNotFound
	}
	return v, errOK
}

func (e *Engine) apply(sc *Scene, act Action) dispatchError {
	switch act.Kind {
	case ActionCreateAssembly:
		p, ok := act.Payload.(CreateAssemblyPayload)
		if !ok {
			return errInvalidArgument
		}
		m := p.Material
		if m.Thickness <= 0 || m.FingerWidth <= 0 || m.FingerGap < 1 {
			return errInvalidArgument
		}
		d := p.Dimensions
		if d.Width <= 2*m.Thickness || d.Height <= 2*m.Thickness || d.Depth <= 2*m.Thickness {
			return errInvalidArgument
		}
		sc.addAssembly(newAssembly(sc, d, m))
		return errOK

	case ActionClearScene:
		sc.clear()
		return errOK

	case ActionSetDimensions:
		p, ok := act.Payload.(SetDimensionsPayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		// The anchor face only matters to consumers that track a world
		// placement; core panel transforms derive from the assembly origin,
		// so the payload's Anchor is carried for them but not acted on.
		if a.IsSub() {
			return a.setSubDimensions(p.Dimensions)
		}
		return a.setDimensions(p.Dimensions)

	case ActionSetMaterial:
		p, ok := act.Payload.(Material)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return a.setMaterial(p)

	case ActionSetFaceSolid:
		p, ok := act.Payload.(SetFaceSolidPayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return a.setFaceSolid(p.Face, p.Solid)

	case ActionToggleFace, ActionToggleSubAssemblyFace:
		p, ok := act.Payload.(ToggleFacePayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		if p.Face >= faceCount {
			return errInvalidArgument
		}
		return a.setFaceSolid(p.Face, !a.faces[p.Face].Solid)

	case ActionConfigureFace:
		p, ok := act.Payload.(ConfigureFacePayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return a.configureFace(p.Face, p.Solid, p.LidTabDirection)

	case ActionSetAssemblyAxis, ActionSetSubAssemblyAxis:
		p, ok := act.Payload.(SetAssemblyAxisPayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return a.setAxis(p.Axis)

	case ActionSetLidConfig, ActionSetSubAssemblyLidTabDirection:
		p, ok := act.Payload.(SetLidConfigPayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return a.setLidConfig(p.PositiveSide, p.TabDirection)

	case ActionSetFeetConfig:
		p, ok := act.Payload.(FeetConfig)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return a.setFeet(p)

	case ActionConfigureAssembly:
		p, ok := act.Payload.(ConfigureAssemblyPayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return e.configureAssembly(a, p)

	case ActionAddSubdivision:
		p, ok := act.Payload.(AddSubdivisionPayload)
		if !ok {
			return errInvalidArgument
		}
		v, err := e.targetVoid(act.TargetID)
		if err != errOK {
			return err
		}
		return addPositions(v, p.Axis, []Position{p.Position})

	case ActionAddSubdivisions:
		p, ok := act.Payload.(AddSubdivisionsPayload)
		if !ok {
			return errInvalidArgument
		}
		v, err := e.targetVoid(act.TargetID)
		if err != errOK {
			return err
		}
		return addPositions(v, p.Axis, p.Positions)

	case ActionAddGridSubdivision, ActionSetGridSubdivision:
		p, ok := act.Payload.(AddGridSubdivisionPayload)
		if !ok {
			return errInvalidArgument
		}
		v, err := e.targetVoid(act.TargetID)
		if err != errOK {
			return err
		}
		posA := p.PositionsA
		if len(posA) == 0 {
			posA = evenPositions(v, p.AxisA, max(p.CountA, 1))
		}
		posB := p.PositionsB
		if len(posB) == 0 {
			posB = evenPositions(v, p.AxisB, max(p.CountB, 1))
		}
		if posA == nil || posB == nil {
			return errInvalidArgument
		}
		if act.Kind == ActionSetGridSubdivision {
			// Atomic replace: the old subdivision comes back if the new
			// grid is rejected.
			oldSpec, oldChildren := v.subdivision, v.children
			v.subdivision, v.children = nil, nil
			if err := v.addGridSubdivision(p.AxisA, posA, p.AxisB, posB); err != errOK {
				v.subdivision, v.children = oldSpec, oldChildren
				return err
			}
			v.markDirty()
			return errOK
		}
		return v.addGridSubdivision(p.AxisA, posA, p.AxisB, posB)

	case ActionRemoveSubdivision:
		v, err := e.targetVoid(act.TargetID)
		if err != errOK {
			return err
		}
		return v.removeSubdivision()

	case ActionPurgeVoid:
		v, err := e.targetVoid(act.TargetID)
		if err != errOK {
			return err
		}
		return v.purge()

	case ActionMoveSubdivisions:
		p, ok := act.Payload.(MoveSubdivisionsPayload)
		if !ok || len(p.Moves) == 0 {
			return errInvalidArgument
		}
		return e.moveSubdivisions(p.Moves)

	case ActionCreateSubAssembly:
		p, ok := act.Payload.(CreateSubAssemblyPayload)
		if !ok {
			return errInvalidArgument
		}
		v, err := e.targetVoid(act.TargetID)
		if err != errOK {
			return err
		}
		axis := AxisY
		if p.Axis != nil {
			axis = *p.Axis
		}
		clearance := defaultClearance
		if p.Clearance != nil {
			clearance = *p.Clearance
		}
		_, err = v.createSubAssembly(axis, clearance)
		return err

	case ActionRemoveSubAssembly:
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		if a.host == nil {
			return errInvalidArgument
		}
		return a.host.removeSubAssembly()

	case ActionSetSubAssemblyClearance:
		p, ok := act.Payload.(SetSubAssemblyClearancePayload)
		if !ok {
			return errInvalidArgument
		}
		a, err := e.targetAssembly(act.TargetID)
		if err != errOK {
			return err
		}
		return a.setClearance(p.Clearance)

	default:
		return e.applyOverlay(act)
	}
}

// configureAssembly applies the multi-field composite setter atomically
// enough: validation happens field-by-field in a fixed order and the first
// failure aborts before later fields are touched.
func (e *Engine) configureAssembly(a *Assembly, p ConfigureAssemblyPayload) dispatchError {
	if p.Material != nil {
		if err := a.setMaterial(*p.Material); err != errOK {
			return err
		}
	}
	if p.Dimensions != nil {
		var err dispatchError
		if a.IsSub() {
			err = a.setSubDimensions(*p.Dimensions)
		} else {
			err = a.setDimensions(*p.Dimensions)
		}
		if err != errOK {
			return err
		}
	}
	if p.Axis != nil {
		if err := a.setAxis(*p.Axis); err != errOK {
			return err
		}
	}
	for _, f := range p.Faces {
		if err := a.configureFace(f.Face, f.Solid, f.LidTabDirection); err != errOK {
			return err
		}
	}
	if p.Feet != nil {
		if err := a.setFeet(*p.Feet); err != errOK {
			return err
		}
	}
	return errOK
}

// addPositions adds linear subdivision positions, merging into an existing
// same-axis linear subdivision (children are rebuilt).
func addPositions(v *Void, axis Axis, positions []Position) dispatchError {
	if len(positions) == 0 {
		return errInvalidArgument
	}
	for i := 1; i < len(positions); i++ {
		if positions[i].Value < positions[i-1].Value {
			return errInvalidArgument
		}
	}
	if v.subdivision != nil {
		s := v.subdivision
		if s.Kind != SubdivisionLinear || s.Axis != axis {
			return errInvalidArgument
		}
		merged := append(append([]Position(nil), s.Positions...), positions...)
		sortPositions(merged)
		oldChildren := v.children
		v.subdivision = nil
		v.children = nil
		if err := v.addLinearSubdivision(axis, merged); err != errOK {
			v.subdivision = s
			v.children = oldChildren
			return err
		}
		return errOK
	}
	sorted := append([]Position(nil), positions...)
	sortPositions(sorted)
	return v.addLinearSubdivision(axis, sorted)
}

func sortPositions(ps []Position) {
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && ps[j].Value < ps[j-1].Value; j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
}

// evenPositions computes count evenly spaced divider positions inside the
// void on one axis, accounting for divider thickness. Returns nil when the
// void cannot fit them.
func evenPositions(v *Void, axis Axis, count int) []Position {
	if count <= 0 {
		return nil
	}
	start, size := v.bounds.axisRange(axis)
	mt := v.assembly.material.Thickness
	cell := (size - float64(count)*mt) / float64(count+1)
	if cell < mt {
		return nil
	}
	out := make([]Position, count)
	for i := 0; i < count; i++ {
		out[i] = Position{Value: start + float64(i+1)*cell + float64(i)*mt + mt/2}
	}
	return out
}

// moveSubdivisions applies a batch of position moves atomically: the first
// failure rolls back every move already applied.
func (e *Engine) moveSubdivisions(moves []SubdivisionMove) dispatchError {
	type undo struct {
		v     *Void
		axis  Axis
		index int
		old   float64
	}
	var undos []undo
	rollback := func() {
		for i := len(undos) - 1; i >= 0; i-- {
			u := undos[i]
			u.v.moveSubdivision(u.axis, u.index, u.old)
		}
	}
	for _, m := range moves {
		v, err := e.targetVoid(m.VoidID)
		if err != errOK {
			rollback()
			return err
		}
		spec := v.subdivision
		if spec == nil {
			rollback()
			return errInvalidArgument
		}
		ps := spec.Positions
		if spec.Kind == SubdivisionGrid && m.Axis == spec.AxisB {
			ps = spec.PositionsB
		}
		if m.Index < 0 || m.Index >= len(ps) {
			rollback()
			return errInvalidArgument
		}
		old := ps[m.Index].Value
		if err := v.moveSubdivision(m.Axis, m.Index, m.NewValue); err != errOK {
			rollback()
			return err
		}
		undos = append(undos, undo{v: v, axis: m.Axis, index: m.Index, old: old})
	}
	return errOK
}

// setSubDimensions overrides a sub-assembly's derived dimensions directly.
// The new dimensions must still fit the hosting void.
func (a *Assembly) setSubDimensions(dims Dimensions) dispatchError {
	if a.host == nil {
		return errInvalidArgument
	}
	b := a.host.bounds
	if dims.Width > b.W+EPS || dims.Height > b.H+EPS || dims.Depth > b.D+EPS {
		return errInvalidArgument
	}
	return a.setDimensions(dims)
}

// --- Panel ID resolution for overlay actions ---

// panelStatuses resolves a panel ID against one assembly and returns the
// panel's edge statuses without a full generation pass.
func panelStatuses(a *Assembly, panelID string) ([panelEdgeCount]EdgeStatus, bool) {
	var st [panelEdgeCount]EdgeStatus
	parts := strings.Split(panelID, ":")
	switch {
	case len(parts) == 3 && parts[0] == "face":
		if parts[1] != a.id {
			return st, false
		}
		f, ok := parseFace(parts[2])
		if !ok || !a.faces[f].Solid {
			return st, false
		}
		for e := PanelEdge(0); e < panelEdgeCount; e++ {
			st[e] = resolveFaceEdge(f, faceEdgeNeighbors[f][e], &a.faces, a.axis)
		}
		if a.feet != nil && a.feet.Enabled && isSideWall(f) {
			st[EdgeBottom] = EdgeOpen
		}
		return st, true
	case len(parts) == 4 && parts[0] == "divider":
		for _, d := range a.collectDividers() {
			if d.panelID() != panelID {
				continue
			}
			for e := PanelEdge(0); e < panelEdgeCount; e++ {
				st[e] = resolveDividerEdge(a, d, e)
			}
			return st, true
		}
	}
	return st, false
}
