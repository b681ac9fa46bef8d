package boxen

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Box templates: named parametric presets stored as YAML and lowered to
// ordinary dispatcher actions, so an instantiation is replayable like any
// other transcript.

// TemplateFace is the per-face block of a template document.
type TemplateFace struct {
	Solid           *bool  `yaml:"solid"`
	LidTabDirection string `yaml:"lidTabDirection"`
}

// TemplateFeet is the feet block of a template document.
type TemplateFeet struct {
	Enabled      bool    `yaml:"enabled"`
	Height       float64 `yaml:"height"`
	Width        float64 `yaml:"width"`
	Inset        float64 `yaml:"inset"`
	SlopeAngle   float64 `yaml:"slopeAngle"`
	CornerFinish string  `yaml:"cornerFinish"`
}

// TemplateSubdivision is one subdivision block applied to the root void.
type TemplateSubdivision struct {
	Axis      string    `yaml:"axis"`
	Positions []float64 `yaml:"positions"`
	AxisB     string    `yaml:"axisB"`
	PositionsB []float64 `yaml:"positionsB"`
}

// Template is a parsed preset document.
type Template struct {
	Name       string `yaml:"name"`
	Dimensions struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
		Depth  float64 `yaml:"depth"`
	} `yaml:"dimensions"`
	Material struct {
		Thickness   float64 `yaml:"thickness"`
		FingerWidth float64 `yaml:"fingerWidth"`
		FingerGap   float64 `yaml:"fingerGap"`
	} `yaml:"material"`
	Axis         string                  `yaml:"axis"`
	Faces        map[string]TemplateFace `yaml:"faces"`
	Feet         *TemplateFeet           `yaml:"feet"`
	Subdivisions []TemplateSubdivision   `yaml:"subdivisions"`
}

// LoadTemplate parses a YAML template document.
func LoadTemplate(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("boxen: parse template: %w", err)
	}
	if t.Dimensions.Width <= 0 || t.Dimensions.Height <= 0 || t.Dimensions.Depth <= 0 {
		return nil, fmt.Errorf("boxen: template %q: missing dimensions", t.Name)
	}
	if t.Material.Thickness <= 0 {
		return nil, fmt.Errorf("boxen: template %q: missing material", t.Name)
	}
	return &t, nil
}

// Instantiate lowers the template onto the engine's active scene through
// ordinary actions. It reports whether every action applied.
func (t *Template) Instantiate(e *Engine) bool {
	ok := e.Dispatch(Action{Kind: ActionCreateAssembly, Payload: CreateAssemblyPayload{
		Dimensions: Dimensions{Width: t.Dimensions.Width, Height: t.Dimensions.Height, Depth: t.Dimensions.Depth},
		Material:   Material{Thickness: t.Material.Thickness, FingerWidth: t.Material.FingerWidth, FingerGap: t.Material.FingerGap},
	}})
	if !ok {
		return false
	}
	sc := e.active()
	a := sc.assemblies[len(sc.assemblies)-1]

	if t.Axis != "" {
		axis, valid := parseAxis(t.Axis)
		if !valid {
			return false
		}
		ok = e.Dispatch(Action{Kind: ActionSetAssemblyAxis, TargetID: a.id, Payload: SetAssemblyAxisPayload{Axis: axis}}) && ok
	}
	for _, name := range sortedKeys(t.Faces) {
		cfg := t.Faces[name]
		f, valid := parseFace(name)
		if !valid {
			return false
		}
		payload := ConfigureFacePayload{Face: f, Solid: cfg.Solid}
		switch cfg.LidTabDirection {
		case "tabs-in":
			d := TabsIn
			payload.LidTabDirection = &d
		case "tabs-out":
			d := TabsOut
			payload.LidTabDirection = &d
		case "":
		default:
			return false
		}
		ok = e.Dispatch(Action{Kind: ActionConfigureFace, TargetID: a.id, Payload: payload}) && ok
	}
	if t.Feet != nil && t.Feet.Enabled {
		ok = e.Dispatch(Action{Kind: ActionSetFeetConfig, TargetID: a.id, Payload: FeetConfig{
			Enabled: true, Height: t.Feet.Height, Width: t.Feet.Width,
			Inset: t.Feet.Inset, SlopeAngle: t.Feet.SlopeAngle, CornerFinish: t.Feet.CornerFinish,
		}}) && ok
	}
	for _, sub := range t.Subdivisions {
		axis, valid := parseAxis(sub.Axis)
		if !valid {
			return false
		}
		if sub.AxisB != "" {
			axisB, validB := parseAxis(sub.AxisB)
			if !validB {
				return false
			}
			ok = e.Dispatch(Action{Kind: ActionAddGridSubdivision, TargetID: a.root.id, Payload: AddGridSubdivisionPayload{
				AxisA: axis, AxisB: axisB,
				PositionsA: toPositions(sub.Positions),
				PositionsB: toPositions(sub.PositionsB),
			}}) && ok
			continue
		}
		ok = e.Dispatch(Action{Kind: ActionAddSubdivisions, TargetID: a.root.id, Payload: AddSubdivisionsPayload{
			Axis: axis, Positions: toPositions(sub.Positions),
		}}) && ok
	}
	return ok
}

func toPositions(vals []float64) []Position {
	out := make([]Position, len(vals))
	for i, v := range vals {
		out[i] = Position{Value: v}
	}
	return out
}

// BuiltinTemplates are the presets shipped with the engine.
var BuiltinTemplates = map[string]string{
	"basic-box": `name: basic-box
dimensions: {width: 200, height: 100, depth: 150}
material: {thickness: 3, fingerWidth: 10, fingerGap: 1.5}
axis: y
`,
	"open-crate": `name: open-crate
dimensions: {width: 300, height: 150, depth: 200}
material: {thickness: 6, fingerWidth: 18, fingerGap: 1.5}
axis: y
faces:
  top: {solid: false}
feet: {enabled: true, height: 18, width: 30, inset: 15}
`,
	"divider-tray": `name: divider-tray
dimensions: {width: 240, height: 60, depth: 160}
material: {thickness: 3, fingerWidth: 8, fingerGap: 1.5}
axis: y
faces:
  top: {solid: false}
subdivisions:
  - axis: x
    positions: [78, 156]
`,
}
