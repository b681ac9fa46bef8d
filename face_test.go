package boxen

import "testing"

func solidFaces() [faceCount]FaceConfig {
	var f [faceCount]FaceConfig
	for i := range f {
		f[i].Solid = true
	}
	return f
}

func TestPriorityGender(t *testing.T) {
	faces := solidFaces()
	cases := []struct {
		face, neighbor FaceID
		want           EdgeStatus
	}{
		{FaceFront, FaceTop, EdgeMale},
		{FaceTop, FaceFront, EdgeFemale},
		{FaceFront, FaceLeft, EdgeMale},
		{FaceLeft, FaceFront, EdgeFemale},
		{FaceLeft, FaceTop, EdgeMale},
		{FaceTop, FaceLeft, EdgeFemale},
		{FaceLeft, FaceBottom, EdgeMale},
		{FaceBottom, FaceRight, EdgeFemale},
		{FaceBack, FaceRight, EdgeMale},
	}
	for _, c := range cases {
		got := resolveFaceEdge(c.face, c.neighbor, &faces, AxisY)
		if got != c.want {
			t.Errorf("resolveFaceEdge(%v, %v) = %v, want %v", c.face, c.neighbor, got, c.want)
		}
	}
}

func TestOpenFaceRule(t *testing.T) {
	faces := solidFaces()
	faces[FaceTop].Solid = false
	if got := resolveFaceEdge(FaceFront, FaceTop, &faces, AxisY); got != EdgeOpen {
		t.Errorf("edge against removed face = %v, want open", got)
	}
}

func TestLidOverrideTabsOut(t *testing.T) {
	faces := solidFaces()
	faces[FaceTop].LidTabDirection = TabsOut
	// Axis Y selects top/bottom as lids; the top wins everywhere.
	if got := resolveFaceEdge(FaceTop, FaceFront, &faces, AxisY); got != EdgeMale {
		t.Errorf("tabs-out lid = %v, want male", got)
	}
	if got := resolveFaceEdge(FaceFront, FaceTop, &faces, AxisY); got != EdgeFemale {
		t.Errorf("face meeting tabs-out lid = %v, want female", got)
	}
}

func TestLidOverrideTabsIn(t *testing.T) {
	faces := solidFaces()
	faces[FaceBottom].LidTabDirection = TabsIn
	if got := resolveFaceEdge(FaceBottom, FaceLeft, &faces, AxisY); got != EdgeFemale {
		t.Errorf("tabs-in lid = %v, want female", got)
	}
	if got := resolveFaceEdge(FaceLeft, FaceBottom, &faces, AxisY); got != EdgeMale {
		t.Errorf("face meeting tabs-in lid = %v, want male", got)
	}
}

func TestLidOverrideIgnoredOffAxis(t *testing.T) {
	faces := solidFaces()
	faces[FaceTop].LidTabDirection = TabsOut
	// Axis X selects left/right as lids; the top's override is inert and
	// priority applies: top(5) vs front(1) makes the top female.
	if got := resolveFaceEdge(FaceTop, FaceFront, &faces, AxisX); got != EdgeFemale {
		t.Errorf("off-axis lid override = %v, want female", got)
	}
}

func TestLidFacesPerAxis(t *testing.T) {
	cases := []struct {
		axis Axis
		a, b FaceID
	}{
		{AxisY, FaceTop, FaceBottom},
		{AxisZ, FaceFront, FaceBack},
		{AxisX, FaceLeft, FaceRight},
	}
	for _, c := range cases {
		a, b := lidFaces(c.axis)
		if a != c.a || b != c.b {
			t.Errorf("lidFaces(%v) = %v,%v want %v,%v", c.axis, a, b, c.a, c.b)
		}
	}
}

func TestOppositeFaces(t *testing.T) {
	for f := FaceID(0); f < faceCount; f++ {
		if f.Opposite().Opposite() != f {
			t.Errorf("opposite of opposite of %v is %v", f, f.Opposite().Opposite())
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if f, ok := parseFace("top"); !ok || f != FaceTop {
		t.Error("parseFace(top) failed")
	}
	if _, ok := parseFace("lid"); ok {
		t.Error("parseFace(lid) should fail")
	}
	if a, ok := parseAxis("z"); !ok || a != AxisZ {
		t.Error("parseAxis(z) failed")
	}
	if e, ok := parsePanelEdge("left"); !ok || e != EdgeLeft {
		t.Error("parsePanelEdge(left) failed")
	}
}

func TestFaceEdgeNeighborsConsistent(t *testing.T) {
	// Every face's four neighbors are the four faces that are neither
	// itself nor its opposite.
	for f := FaceID(0); f < faceCount; f++ {
		seen := map[FaceID]bool{}
		for e := PanelEdge(0); e < panelEdgeCount; e++ {
			n := faceEdgeNeighbors[f][e]
			if n == f || n == f.Opposite() {
				t.Errorf("face %v edge %v neighbors %v", f, e, n)
			}
			seen[n] = true
		}
		if len(seen) != 4 {
			t.Errorf("face %v has duplicate neighbors", f)
		}
	}
}
