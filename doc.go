// Package boxen is a parametric geometry engine for laser-cut box designs.
//
// From a hierarchical declarative description (box dimensions, material,
// face configuration, recursive void subdivisions, sub-assemblies, and
// per-panel customizations) it derives a deterministic set of 2D panel cut
// paths with correctly mated finger joints, cross-lap slots, edge
// extensions, corner fillets, cutouts, and custom edge paths. Every output
// panel is a simple closed polygon (with optional internal holes) whose
// edges interlock with every mating panel.
//
// # Quick start
//
//	engine := boxen.NewEngine()
//	engine.Dispatch(boxen.Action{
//		Kind: boxen.ActionCreateAssembly,
//		Payload: boxen.CreateAssemblyPayload{
//			Dimensions: boxen.Dimensions{Width: 100, Height: 80, Depth: 60},
//			Material:   boxen.Material{Thickness: 3, FingerWidth: 10, FingerGap: 1.5},
//		},
//	})
//	for _, panel := range engine.GeneratePanels().Panels {
//		// panel.Outline, panel.Holes, panel.Transform ...
//	}
//
// # Mutation model
//
// Every mutation is an [Action] routed through [Engine.Dispatch]. Actions
// either apply fully or not at all; a failure is a silent no-op reported
// only by the false return of Dispatch. [Engine.AlignmentErrors] lists the
// geometry and invariant problems found by the latest generation pass.
// [Engine.StartPreview] clones the scene for
// interactive operations: dispatches route to the clone until
// [Engine.CommitPreview] swaps it in or [Engine.DiscardPreview] drops it.
//
// The engine is single-threaded by contract. Consumers that read snapshots
// concurrently must clone them first or serialize with dispatches
// externally.
package boxen
