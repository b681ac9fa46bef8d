package boxen

import "fmt"

// Scene is the root of the engine's state: an ordered set of assemblies.
// It is purely a container; all derived data lives on the assemblies. A
// single plain counter issues node IDs (no atomic — the engine is
// single-threaded by contract), and the counter is cloned with the scene so
// a committed preview is indistinguishable from direct mutation.
type Scene struct {
	assemblies []*Assembly

	// nextID feeds deterministic node IDs: same action transcript, same IDs.
	nextID uint32

	// dirty is set whenever anything beneath the scene changes; panel and
	// snapshot caches key on it.
	dirty bool
}

// newScene creates an empty scene.
func newScene() *Scene {
	return &Scene{dirty: true}
}

func (s *Scene) newNodeID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// markDirty flags the scene. Node mutators call this through their owner
// chain; derived data is regenerated per-assembly from scratch on read.
func (s *Scene) markDirty() {
	s.dirty = true
}

// Assemblies returns the scene's assembly list. The returned slice MUST NOT
// be mutated by the caller.
func (s *Scene) Assemblies() []*Assembly {
	return s.assemblies
}

// Primary returns the first assembly, or nil for an empty scene.
func (s *Scene) Primary() *Assembly {
	if len(s.assemblies) == 0 {
		return nil
	}
	return s.assemblies[0]
}

// addAssembly appends a new top-level assembly.
func (s *Scene) addAssembly(a *Assembly) {
	a.scene = s
	s.assemblies = append(s.assemblies, a)
	s.markDirty()
}

// clear drops all assemblies.
func (s *Scene) clear() {
	s.assemblies = nil
	s.markDirty()
}

// clone deep-copies the scene for the preview arena. IDs, counters, overlay
// maps, and the entire void tree are copied so dispatches against the clone
// never alias main-scene state.
func (s *Scene) clone() *Scene {
	c := &Scene{nextID: s.nextID, dirty: true}
	c.assemblies = make([]*Assembly, len(s.assemblies))
	for i, a := range s.assemblies {
		c.assemblies[i] = a.clone(c, nil)
	}
	return c
}

// walk visits every assembly, void, and nested sub-assembly in DFS order.
func (s *Scene) walk(visit func(node any)) {
	for _, a := range s.assemblies {
		a.walk(visit)
	}
}
