package boxen

import (
	"math"
	"strconv"
)

// Engine-level invariant checks. These run after every generation pass and
// never mutate the scene: violations are reported through the
// alignment-error log consumed by debug interfaces.

// alignmentTolerance is the maximum world-space mismatch allowed between
// mating joint anchors.
const alignmentTolerance = 0.001

func validateInvariants(sc *Scene, panels []*Panel, errs *[]AlignmentError) {
	for _, p := range panels {
		validatePanel(p, errs)
	}
	sc.walk(func(node any) {
		switch n := node.(type) {
		case *Assembly:
			validateAssembly(n, errs)
		case *Void:
			validateVoidSum(n, errs)
		}
	})
}

// validatePanel checks winding and hole containment for one panel.
func validatePanel(p *Panel, errs *[]AlignmentError) {
	area := signedArea(p.Outline)
	if area <= 0 {
		*errs = append(*errs, AlignmentError{
			Code: errDegenerateGeometry, PanelID: p.ID,
			Detail: "outline winding is not counter-clockwise",
		})
	}
	ob := polyBounds(p.Outline)
	for i, h := range p.Holes {
		if signedArea(h) >= 0 {
			*errs = append(*errs, AlignmentError{
				Code: errDegenerateGeometry, PanelID: p.ID,
				Detail: "hole " + strconv.Itoa(i) + " winding matches outline",
			})
		}
		hb := polyBounds(h)
		if hb.X <= ob.X || hb.Y <= ob.Y ||
			hb.X+hb.Width >= ob.X+ob.Width ||
			hb.Y+hb.Height >= ob.Y+ob.Height {
			*errs = append(*errs, AlignmentError{
				Code: errDegenerateGeometry, PanelID: p.ID,
				Detail: "hole " + strconv.Itoa(i) + " bounds reach the outline bounds",
			})
		}
	}
}

// validateAssembly checks joint gender opposition and cross-lap separation.
func validateAssembly(a *Assembly, errs *[]AlignmentError) {
	// Adjacent solid faces must resolve to opposite genders.
	for f := FaceID(0); f < faceCount; f++ {
		if !a.faces[f].Solid {
			continue
		}
		for e := PanelEdge(0); e < panelEdgeCount; e++ {
			n := faceEdgeNeighbors[f][e]
			if !a.faces[n].Solid {
				continue
			}
			sf := resolveFaceEdge(f, n, &a.faces, a.axis)
			sn := resolveFaceEdge(n, f, &a.faces, a.axis)
			bad := sf == sn ||
				(sf == EdgeMale && sn != EdgeFemale) ||
				(sf == EdgeFemale && sn != EdgeMale)
			if bad {
				*errs = append(*errs, AlignmentError{
					Code:    errDegenerateGeometry,
					PanelID: facePanelID(a.id, f),
					Detail:  "joint with " + n.String() + " is not gender-opposed",
				})
			}
		}
	}

	// Cross-lap slot centers on a shared crossing divider must stay 2*mt
	// apart.
	dividers := a.collectDividers()
	sep := a.crossLapSeparation()
	mt := a.material.Thickness
	for i := 0; i < len(dividers); i++ {
		for j := i + 1; j < len(dividers); j++ {
			d1, d2 := dividers[i], dividers[j]
			if d1.axis != d2.axis || math.Abs(d1.pos-d2.pos) >= sep-EPS {
				continue
			}
			for _, d3 := range dividers {
				if d3.axis == d1.axis {
					continue
				}
				if dividersMeet(d1, d3, mt) && dividersMeet(d2, d3, mt) {
					*errs = append(*errs, AlignmentError{
						Code:    errConflictingCrossLap,
						PanelID: d3.panelID(),
						Detail:  "slots from " + d1.panelID() + " and " + d2.panelID() + " closer than 2*mt",
					})
				}
			}
		}
	}

	// Anchor alignment: the per-axis patterns must be derived from the
	// current dimensions; a mismatch means a stale cache.
	fd := a.FingerData()
	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		pat := fd.pattern(axis)
		if pat.length != a.dims.axisSize(axis) {
			*errs = append(*errs, AlignmentError{
				Code:   errDegenerateGeometry,
				Detail: "stale finger anchors on axis " + axis.String(),
			})
		}
		for k := 1; k < len(pat.transitions); k++ {
			if pat.transitions[k] <= pat.transitions[k-1] {
				*errs = append(*errs, AlignmentError{
					Code:   errDegenerateGeometry,
					Detail: "non-monotonic finger anchors on axis " + axis.String(),
				})
				break
			}
		}
	}
}

// validateVoidSum checks the subdivision dimension invariant: child sizes
// plus divider thicknesses recompose the parent exactly.
func validateVoidSum(v *Void, errs *[]AlignmentError) {
	spec := v.subdivision
	if spec == nil || spec.Kind != SubdivisionLinear {
		return
	}
	mt := v.assembly.material.Thickness
	_, parent := v.bounds.axisRange(spec.Axis)
	sum := float64(len(spec.Positions)) * mt
	for _, c := range v.children {
		_, size := c.bounds.axisRange(spec.Axis)
		sum += size
	}
	if math.Abs(sum-parent) > 1e-9 {
		*errs = append(*errs, AlignmentError{
			Code:   errDegenerateGeometry,
			Detail: "void " + v.id + ": child sizes do not recompose the parent",
		})
	}
}
