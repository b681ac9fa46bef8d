package boxen

import (
	"bytes"
	"testing"
)

func TestLoadTemplate(t *testing.T) {
	tpl, err := LoadTemplate([]byte(BuiltinTemplates["open-crate"]))
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Name != "open-crate" {
		t.Errorf("name = %q", tpl.Name)
	}
	if tpl.Dimensions.Width != 300 || tpl.Material.Thickness != 6 {
		t.Error("template fields not parsed")
	}
	if tpl.Feet == nil || !tpl.Feet.Enabled {
		t.Error("feet block not parsed")
	}
}

func TestLoadTemplateInvalid(t *testing.T) {
	if _, err := LoadTemplate([]byte("name: broken\n")); err == nil {
		t.Error("template without dimensions should fail")
	}
	if _, err := LoadTemplate([]byte(":::")); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func TestInstantiateBuiltins(t *testing.T) {
	for name, doc := range BuiltinTemplates {
		tpl, err := LoadTemplate([]byte(doc))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		e := NewEngine()
		if !tpl.Instantiate(e) {
			t.Fatalf("%s: instantiation failed", name)
		}
		if len(e.GeneratePanels().Panels) == 0 {
			t.Fatalf("%s: no panels", name)
		}
		if errs := e.AlignmentErrors(); len(errs) != 0 {
			t.Errorf("%s: alignment errors %v", name, errs)
		}
	}
}

func TestInstantiateOpenCrate(t *testing.T) {
	tpl, _ := LoadTemplate([]byte(BuiltinTemplates["open-crate"]))
	e := NewEngine()
	tpl.Instantiate(e)
	a := e.active().Primary()
	if a.faces[FaceTop].Solid {
		t.Error("crate top should be open")
	}
	if a.feet == nil || !a.feet.Enabled {
		t.Error("crate feet missing")
	}
	// 5 faces; feet notch the side walls.
	if got := len(e.GeneratePanels().Panels); got != 5 {
		t.Errorf("panels = %d, want 5", got)
	}
}

func TestInstantiateDividerTray(t *testing.T) {
	tpl, _ := LoadTemplate([]byte(BuiltinTemplates["divider-tray"]))
	e := NewEngine()
	tpl.Instantiate(e)
	divs := 0
	for _, p := range e.GeneratePanels().Panels {
		if p.Source.Kind == SourceDivider {
			divs++
		}
	}
	if divs != 2 {
		t.Errorf("tray dividers = %d, want 2", divs)
	}
}

func TestTemplateReplayable(t *testing.T) {
	// Template instantiation lowers to ordinary actions, so the resulting
	// transcript replays to the same scene.
	tpl, _ := LoadTemplate([]byte(BuiltinTemplates["divider-tray"]))
	e := NewEngine()
	tpl.Instantiate(e)
	replayed := Replay(e.Transcript())
	if !bytes.Equal(
		e.GetSceneSnapshot().MarshalCanonical(),
		replayed.GetSceneSnapshot().MarshalCanonical(),
	) {
		t.Error("template transcript does not replay")
	}
}
