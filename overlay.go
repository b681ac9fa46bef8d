package boxen

// Overlay action handlers: per-panel customizations dispatched against the
// owning assembly. Validation that depends only on edge statuses runs
// without a generation pass; cutouts and booleans read the generated panel.

func (e *Engine) applyOverlay(act Action) dispatchError {
	a, err := e.targetAssembly(act.TargetID)
	if err != errOK {
		return err
	}
	switch act.Kind {
	case ActionSetEdgeExtension:
		p, ok := act.Payload.(SetEdgeExtensionPayload)
		if !ok {
			return errInvalidArgument
		}
		return e.setEdgeExtension(a, EdgeExtensionItem(p))

	case ActionSetEdgeExtensionsBatch:
		p, ok := act.Payload.(SetEdgeExtensionsBatchPayload)
		if !ok || len(p.Items) == 0 {
			return errInvalidArgument
		}
		// Validate all panel IDs and edges first so the batch is atomic.
		for _, item := range p.Items {
			if _, found := panelStatuses(a, item.PanelID); !found || item.Edge >= panelEdgeCount {
				return errInvalidArgument
			}
		}
		for _, item := range p.Items {
			if err := e.setEdgeExtension(a, item); err != errOK {
				return err
			}
		}
		return errOK

	case ActionSetCornerFillet:
		p, ok := act.Payload.(SetCornerFilletPayload)
		if !ok {
			return errInvalidArgument
		}
		return setFillet(a, a.overlays.CornerFillets, p.PanelID, p.Corner, p.Radius, true)

	case ActionSetCornerFilletsBatch:
		p, ok := act.Payload.(SetCornerFilletsBatchPayload)
		if !ok || len(p.Items) == 0 {
			return errInvalidArgument
		}
		// Validate every item first so the batch is atomic.
		for _, item := range p.Items {
			if _, found := panelStatuses(a, item.PanelID); !found || item.Radius < 0 || item.Corner < 0 || item.Corner >= int(panelEdgeCount) {
				return errInvalidArgument
			}
		}
		for _, item := range p.Items {
			if err := setFillet(a, a.overlays.CornerFillets, item.PanelID, item.Corner, item.Radius, true); err != errOK {
				return err
			}
		}
		return errOK

	case ActionSetAllCornerFillet:
		p, ok := act.Payload.(SetAllCornerFilletPayload)
		if !ok {
			return errInvalidArgument
		}
		return setFillet(a, a.overlays.AllCornerFillets, p.PanelID, p.CornerID, p.Radius, false)

	case ActionSetAllCornerFilletsBatch:
		p, ok := act.Payload.(SetAllCornerFilletsBatchPayload)
		if !ok || len(p.Items) == 0 {
			return errInvalidArgument
		}
		// Validate every item first so the batch is atomic.
		for _, item := range p.Items {
			if _, found := panelStatuses(a, item.PanelID); !found || item.Radius < 0 || item.Corner < 0 {
				return errInvalidArgument
			}
		}
		for _, item := range p.Items {
			if err := setFillet(a, a.overlays.AllCornerFillets, item.PanelID, item.Corner, item.Radius, false); err != errOK {
				return err
			}
		}
		return errOK

	case ActionSetEdgePath:
		p, ok := act.Payload.(SetEdgePathPayload)
		if !ok {
			return errInvalidArgument
		}
		return setEdgePath(a, p)

	case ActionClearEdgePath:
		p, ok := act.Payload.(ClearEdgePathPayload)
		if !ok {
			return errInvalidArgument
		}
		m := a.overlays.CustomEdgePaths[p.PanelID]
		if m == nil || m[p.Edge] == nil {
			return errInvalidArgument
		}
		delete(m, p.Edge)
		if len(m) == 0 {
			delete(a.overlays.CustomEdgePaths, p.PanelID)
		}
		a.markDirty()
		return errOK

	case ActionAddCutout:
		p, ok := act.Payload.(AddCutoutPayload)
		if !ok {
			return errInvalidArgument
		}
		return e.addCutout(a, p.PanelID, p.Cutout, false)

	case ActionUpdateCutout:
		p, ok := act.Payload.(UpdateCutoutPayload)
		if !ok {
			return errInvalidArgument
		}
		return e.addCutout(a, p.PanelID, p.Cutout, true)

	case ActionDeleteCutout:
		p, ok := act.Payload.(DeleteCutoutPayload)
		if !ok {
			return errInvalidArgument
		}
		cuts := a.overlays.Cutouts[p.PanelID]
		for i, c := range cuts {
			if c.ID == p.CutoutID {
				a.overlays.Cutouts[p.PanelID] = append(cuts[:i:i], cuts[i+1:]...)
				if len(a.overlays.Cutouts[p.PanelID]) == 0 {
					delete(a.overlays.Cutouts, p.PanelID)
				}
				a.markDirty()
				return errOK
			}
		}
		return errNotFound

	case ActionApplyEdgeOperation:
		p, ok := act.Payload.(ApplyEdgeOperationPayload)
		if !ok {
			return errInvalidArgument
		}
		return e.applyEdgeOperation(a, p)

	case ActionClearModifiedSafeArea:
		p, ok := act.Payload.(ClearModifiedSafeAreaPayload)
		if !ok {
			return errInvalidArgument
		}
		if _, exists := a.overlays.ModifiedSafeArea[p.PanelID]; !exists {
			return errInvalidArgument
		}
		delete(a.overlays.ModifiedSafeArea, p.PanelID)
		a.markDirty()
		return errOK
	}
	return errInvalidArgument
}

// setEdgeExtension stores one extension value after clamping it to the
// edge's allowed range. Clamping is silent: an extension on a male edge
// becomes zero and the action still succeeds, leaving the snapshot
// unchanged.
func (e *Engine) setEdgeExtension(a *Assembly, item EdgeExtensionItem) dispatchError {
	st, found := panelStatuses(a, item.PanelID)
	if !found || item.Edge >= panelEdgeCount {
		return errInvalidArgument
	}
	v := item.Value
	switch st[item.Edge] {
	case EdgeMale:
		v = 0
	case EdgeFemale:
		if v < 0 {
			v = 0
		}
	default:
		if v < -a.material.Thickness {
			v = -a.material.Thickness
		}
	}
	if v > a.maxExtension() {
		v = a.maxExtension()
	}
	m := a.overlays.EdgeExtensions[item.PanelID]
	if v == 0 {
		if m != nil {
			delete(m, item.Edge)
			if len(m) == 0 {
				delete(a.overlays.EdgeExtensions, item.PanelID)
			}
		}
		a.markDirty()
		return errOK
	}
	if m == nil {
		m = map[PanelEdge]float64{}
		a.overlays.EdgeExtensions[item.PanelID] = m
	}
	m[item.Edge] = v
	a.markDirty()
	return errOK
}

// setFillet stores a fillet radius. Nominal corners are bounded to the four
// body corners; vertex fillets accept any non-negative index (eligibility
// and clamping are enforced at generation time).
func setFillet(a *Assembly, store map[string]map[int]float64, panelID string, corner int, radius float64, nominal bool) dispatchError {
	if _, found := panelStatuses(a, panelID); !found {
		return errInvalidArgument
	}
	if radius < 0 || corner < 0 || (nominal && corner >= int(panelEdgeCount)) {
		return errInvalidArgument
	}
	m := store[panelID]
	if radius == 0 {
		if m != nil {
			delete(m, corner)
			if len(m) == 0 {
				delete(store, panelID)
			}
		}
		a.markDirty()
		return errOK
	}
	if m == nil {
		m = map[int]float64{}
		store[panelID] = m
	}
	m[corner] = radius
	a.markDirty()
	return errOK
}

// setEdgePath validates and installs a custom edge path. Paths cannot land
// on male edges; on female edges the authored offsets must stay out of the
// joint region (non-negative).
func setEdgePath(a *Assembly, p SetEdgePathPayload) dispatchError {
	st, found := panelStatuses(a, p.PanelID)
	if !found || p.Edge >= panelEdgeCount || len(p.Path.Points) < 2 {
		return errInvalidArgument
	}
	switch st[p.Edge] {
	case EdgeMale:
		return errInvalidArgument
	case EdgeFemale:
		for _, pt := range p.Path.Points {
			if pt.Offset < 0 {
				return errInvalidArgument
			}
		}
	}
	limit := 1.0
	if p.Path.Mirrored {
		limit = 0.5
	}
	prev := -1.0
	for _, pt := range p.Path.Points {
		if pt.T < 0 || pt.T > limit+EPS || pt.T < prev-EPS {
			return errInvalidArgument
		}
		prev = pt.T
	}
	m := a.overlays.CustomEdgePaths[p.PanelID]
	if m == nil {
		m = map[PanelEdge]*EdgePath{}
		a.overlays.CustomEdgePaths[p.PanelID] = m
	}
	m[p.Edge] = p.Path.clone()
	a.markDirty()
	return errOK
}

// addCutout validates a cutout against the panel's current safe area and
// stores it. With update set, an existing cutout of the same ID is
// replaced; otherwise the ID must be new (an empty ID is assigned one).
func (e *Engine) addCutout(a *Assembly, panelID string, c Cutout, update bool) dispatchError {
	if _, found := panelStatuses(a, panelID); !found {
		return errInvalidArgument
	}
	poly := c.polygon()
	if len(poly) < 3 {
		return errInvalidArgument
	}
	panel := e.GeneratePanels().Find(panelID)
	if panel == nil {
		return errInvalidArgument
	}
	if analyzePath(a, panel, poly, false) != PathCutout {
		return errSafeAreaViolation
	}
	cuts := a.overlays.Cutouts[panelID]
	idx := -1
	for i, existing := range cuts {
		if existing.ID == c.ID {
			idx = i
			break
		}
	}
	if update {
		if idx == -1 {
			return errNotFound
		}
		cuts[idx] = c
	} else {
		if c.ID == "" {
			c.ID = a.scene.newNodeID("cutout")
		} else if idx != -1 {
			return errInvalidArgument
		}
		a.overlays.Cutouts[panelID] = append(cuts, c)
	}
	a.markDirty()
	return errOK
}

// applyEdgeOperation computes a boolean of the drawn shape against the
// panel's current outline (not a pristine rectangle, so finger teeth and
// prior modifications survive) and stores the result as the panel's
// modified outline.
func (e *Engine) applyEdgeOperation(a *Assembly, p ApplyEdgeOperationPayload) dispatchError {
	if _, found := panelStatuses(a, p.PanelID); !found {
		return errInvalidArgument
	}
	if len(p.Shape) < 3 {
		return errInvalidArgument
	}
	panel := e.GeneratePanels().Find(p.PanelID)
	if panel == nil {
		return errInvalidArgument
	}
	result, ok := polygonBoolean(panel.Outline, p.Shape, p.Op)
	if !ok {
		return errInvalidBooleanResult
	}
	a.overlays.ModifiedSafeArea[p.PanelID] = result
	a.markDirty()
	return errOK
}
