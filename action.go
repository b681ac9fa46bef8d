package boxen

// Actions are the only way consumers mutate a scene. Each action is a plain
// value: a kind, a target node ID, and a typed payload. Actions serialize,
// so a recorded transcript replays bit-for-bit onto a fresh engine.

// ActionKind names one mutation in the catalog.
type ActionKind string

const (
	ActionCreateAssembly ActionKind = "create-assembly"
	ActionClearScene     ActionKind = "clear-scene"

	ActionSetDimensions     ActionKind = "set-dimensions"
	ActionSetMaterial       ActionKind = "set-material"
	ActionSetFaceSolid      ActionKind = "set-face-solid"
	ActionToggleFace        ActionKind = "toggle-face"
	ActionConfigureFace     ActionKind = "configure-face"
	ActionSetAssemblyAxis   ActionKind = "set-assembly-axis"
	ActionSetLidConfig      ActionKind = "set-lid-config"
	ActionSetFeetConfig     ActionKind = "set-feet-config"
	ActionConfigureAssembly ActionKind = "configure-assembly"

	ActionAddSubdivision     ActionKind = "add-subdivision"
	ActionAddSubdivisions    ActionKind = "add-subdivisions"
	ActionAddGridSubdivision ActionKind = "add-grid-subdivision"
	ActionSetGridSubdivision ActionKind = "set-grid-subdivision"
	ActionRemoveSubdivision  ActionKind = "remove-subdivision"
	ActionMoveSubdivisions   ActionKind = "move-subdivisions"
	ActionPurgeVoid          ActionKind = "purge-void"

	ActionCreateSubAssembly             ActionKind = "create-subassembly"
	ActionRemoveSubAssembly             ActionKind = "remove-subassembly"
	ActionSetSubAssemblyClearance       ActionKind = "set-subassembly-clearance"
	ActionToggleSubAssemblyFace         ActionKind = "toggle-subassembly-face"
	ActionSetSubAssemblyAxis            ActionKind = "set-subassembly-axis"
	ActionSetSubAssemblyLidTabDirection ActionKind = "set-subassembly-lid-tab-direction"

	ActionSetEdgeExtension         ActionKind = "set-edge-extension"
	ActionSetEdgeExtensionsBatch   ActionKind = "set-edge-extensions-batch"
	ActionSetCornerFillet          ActionKind = "set-corner-fillet"
	ActionSetCornerFilletsBatch    ActionKind = "set-corner-fillets-batch"
	ActionSetAllCornerFillet       ActionKind = "set-all-corner-fillet"
	ActionSetAllCornerFilletsBatch ActionKind = "set-all-corner-fillets-batch"
	ActionSetEdgePath              ActionKind = "set-edge-path"
	ActionClearEdgePath            ActionKind = "clear-edge-path"
	ActionAddCutout                ActionKind = "add-cutout"
	ActionUpdateCutout             ActionKind = "update-cutout"
	ActionDeleteCutout             ActionKind = "delete-cutout"
	ActionApplyEdgeOperation       ActionKind = "apply-edge-operation"
	ActionClearModifiedSafeArea    ActionKind = "clear-modified-safe-area"
)

// Action is one mutation request. TargetID addresses a node in the active
// scene; scene-level actions leave it empty.
type Action struct {
	Kind     ActionKind
	TargetID string
	Payload  any
}

// --- Payloads ---

// CreateAssemblyPayload adds an assembly to the active scene.
type CreateAssemblyPayload struct {
	Dimensions Dimensions
	Material   Material
}

// SetDimensionsPayload resizes an assembly or sub-assembly. Anchor is
// carried in the payload but does not change the result: the min corner
// always stays put.
type SetDimensionsPayload struct {
	Dimensions Dimensions
	Anchor     *FaceID
}

// ConfigureFacePayload is the composite per-face setter.
type ConfigureFacePayload struct {
	Face            FaceID
	Solid           *bool
	LidTabDirection *LidTabDirection
}

// SetFaceSolidPayload toggles one face open or closed.
type SetFaceSolidPayload struct {
	Face  FaceID
	Solid bool
}

// ToggleFacePayload flips one face's solidity.
type ToggleFacePayload struct {
	Face FaceID
}

// SetAssemblyAxisPayload chooses the lid pair.
type SetAssemblyAxisPayload struct {
	Axis Axis
}

// SetLidConfigPayload sets one lid's tab direction.
type SetLidConfigPayload struct {
	PositiveSide bool
	TabDirection LidTabDirection
}

// ConfigureAssemblyPayload is the multi-field composite setter.
type ConfigureAssemblyPayload struct {
	Dimensions *Dimensions
	Material   *Material
	Axis       *Axis
	Faces      []ConfigureFacePayload
	Feet       *FeetConfig
}

// AddSubdivisionPayload adds one linear divider.
type AddSubdivisionPayload struct {
	Axis     Axis
	Position Position
}

// AddSubdivisionsPayload adds a full linear subdivision.
type AddSubdivisionsPayload struct {
	Axis      Axis
	Positions []Position
}

// AddGridSubdivisionPayload adds a grid subdivision on two distinct axes.
// Empty position lists with a positive count default to even splits.
type AddGridSubdivisionPayload struct {
	AxisA      Axis
	AxisB      Axis
	PositionsA []Position
	PositionsB []Position
	CountA     int
	CountB     int
}

// SubdivisionMove is one entry of a batch move.
type SubdivisionMove struct {
	VoidID   string
	Axis     Axis
	Index    int
	NewValue float64
}

// MoveSubdivisionsPayload batch-moves divider positions atomically.
type MoveSubdivisionsPayload struct {
	Moves []SubdivisionMove
}

// CreateSubAssemblyPayload spawns a sub-assembly in a leaf void.
type CreateSubAssemblyPayload struct {
	Axis      *Axis
	Clearance *float64
}

// SetSubAssemblyClearancePayload changes the per-face clearance.
type SetSubAssemblyClearancePayload struct {
	Clearance float64
}

// EdgeExtensionItem is one entry of a batch extension set.
type EdgeExtensionItem struct {
	PanelID string
	Edge    PanelEdge
	Value   float64
}

// SetEdgeExtensionPayload sets one panel edge's extension.
type SetEdgeExtensionPayload struct {
	PanelID string
	Edge    PanelEdge
	Value   float64
}

// SetEdgeExtensionsBatchPayload sets several extensions atomically.
type SetEdgeExtensionsBatchPayload struct {
	Items []EdgeExtensionItem
}

// CornerFilletItem is one entry of a batch fillet set.
type CornerFilletItem struct {
	PanelID string
	Corner  int
	Radius  float64
}

// SetCornerFilletPayload sets a fillet on one of the four nominal corners.
type SetCornerFilletPayload struct {
	PanelID string
	Corner  int
	Radius  float64
}

// SetCornerFilletsBatchPayload sets several nominal-corner fillets.
type SetCornerFilletsBatchPayload struct {
	Items []CornerFilletItem
}

// SetAllCornerFilletPayload sets a fillet on any outline vertex.
type SetAllCornerFilletPayload struct {
	PanelID  string
	CornerID int
	Radius   float64
}

// SetAllCornerFilletsBatchPayload sets several vertex fillets.
type SetAllCornerFilletsBatchPayload struct {
	Items []CornerFilletItem
}

// SetEdgePathPayload installs a custom edge path.
type SetEdgePathPayload struct {
	PanelID string
	Edge    PanelEdge
	Path    EdgePath
}

// ClearEdgePathPayload removes a custom edge path.
type ClearEdgePathPayload struct {
	PanelID string
	Edge    PanelEdge
}

// AddCutoutPayload adds a panel cutout.
type AddCutoutPayload struct {
	PanelID string
	Cutout  Cutout
}

// UpdateCutoutPayload replaces a cutout by ID.
type UpdateCutoutPayload struct {
	PanelID string
	Cutout  Cutout
}

// DeleteCutoutPayload removes a cutout by ID.
type DeleteCutoutPayload struct {
	PanelID  string
	CutoutID string
}

// ApplyEdgeOperationPayload runs a boolean against the panel's current
// outline.
type ApplyEdgeOperationPayload struct {
	PanelID string
	Op      BoolOp
	Shape   []PathPoint
}

// ClearModifiedSafeAreaPayload reverts boolean modifications.
type ClearModifiedSafeAreaPayload struct {
	PanelID string
}
