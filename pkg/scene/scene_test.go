package scene

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/chazu/umbra/pkg/geom"
	"github.com/chazu/umbra/pkg/meshgen"
	"github.com/chazu/umbra/pkg/shadow"
)

func xyPlane() geom.Plane {
	return geom.NewPlane(geom.V(0, 0, 0), geom.V(0, 0, 1))
}

// demoScene is a 4x4 receiving surface with a unit cube hovering one
// unit above its center.
func demoScene(t *testing.T) *Scene {
	t.Helper()
	m, err := meshgen.Box(1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	s := New()
	s.AddReceivingFace("ground", xyPlane(), shadow.RectLoop(0, 0, 4, 4))
	s.AddInstance(shadow.Instance{
		Name:        "cube",
		Mesh:        m,
		Transform:   geom.Translate(geom.V(-0.5, -0.5, 1)),
		Visible:     true,
		CastsShadow: true,
	})
	return s
}

func TestReceivingPlaneValidation(t *testing.T) {
	s := New()
	if _, _, err := s.ReceivingPlane(); err == nil {
		t.Error("scene without receiving face accepted")
	}
	s.AddReceivingFace("a", xyPlane(), shadow.RectLoop(0, 0, 1, 1))
	if _, _, err := s.ReceivingPlane(); err != nil {
		t.Errorf("single receiving face rejected: %v", err)
	}
	s.AddReceivingFace("b", xyPlane(), shadow.RectLoop(0, 0, 1, 1))
	if _, _, err := s.ReceivingPlane(); err == nil {
		t.Error("two receiving faces accepted")
	}
}

func TestReceivingPlaneDegenerateBoundary(t *testing.T) {
	s := New()
	s.AddReceivingFace("bad", xyPlane(), shadow.Loop{{X: 0, Y: 0}, {X: 1, Y: 0}})
	if _, _, err := s.ReceivingPlane(); err == nil {
		t.Error("degenerate boundary accepted")
	}
}

func TestCastingInstancesEmpty(t *testing.T) {
	if _, err := New().CastingInstances(); err == nil {
		t.Error("empty instance list accepted")
	}
}

func TestElementsOfKind(t *testing.T) {
	s := New()
	s.AddElement(&VertexElement{Name: "v", Point: geom.V(0, 0, 0)})
	s.AddElement(&EdgeElement{Name: "e", A: geom.V(0, 0, 0), B: geom.V(1, 0, 0)})
	s.AddReceivingFace("f", xyPlane(), shadow.RectLoop(0, 0, 1, 1))
	if got := len(s.ElementsOfKind(KindFace)); got != 1 {
		t.Errorf("faces = %d, want 1", got)
	}
	if got := len(s.ElementsOfKind(KindGroup)); got != 0 {
		t.Errorf("groups = %d, want 0", got)
	}
	if got := s.ElementsOfKind(KindVertex)[0].Label(); got != "v" {
		t.Errorf("vertex label = %q", got)
	}
}

func TestComputeShadowEndToEnd(t *testing.T) {
	res, err := ComputeShadow(context.Background(), demoScene(t), nil)
	if err != nil {
		t.Fatalf("ComputeShadow: %v", err)
	}
	if a := res.Shadow.Area; math.Abs(a-1) > 1e-6 {
		t.Errorf("shadow area = %v, want 1", a)
	}
	if math.Abs(res.SunArea-15) > 1e-6 {
		t.Errorf("sun area = %v, want 15", res.SunArea)
	}
}

func TestApplyShadow(t *testing.T) {
	s := demoScene(t)
	res, err := ComputeShadow(context.Background(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	before := len(s.ElementsOfKind(KindFace))
	label, err := s.ApplyShadow(res)
	if err != nil {
		t.Fatalf("ApplyShadow: %v", err)
	}
	if !strings.HasPrefix(label, "shadow-") {
		t.Errorf("layer label = %q, want shadow- prefix", label)
	}
	faces := s.ElementsOfKind(KindFace)
	if len(faces) != before+len(res.Shadow.Loops) {
		t.Errorf("faces = %d, want %d", len(faces), before+len(res.Shadow.Loops))
	}
	var group *GroupElement
	for _, e := range s.ElementsOfKind(KindGroup) {
		if e.Label() == label {
			group = e.(*GroupElement)
		}
	}
	if group == nil {
		t.Fatal("layer group not added")
	}
	if len(group.Members) != len(res.Shadow.Loops) {
		t.Errorf("group members = %d, want %d", len(group.Members), len(res.Shadow.Loops))
	}
	for _, e := range faces[before:] {
		f := e.(*FaceElement)
		if f.Layer != label {
			t.Errorf("face %q layer = %q, want %q", f.Name, f.Layer, label)
		}
		if f.Receives {
			t.Errorf("applied face %q marked receiving", f.Name)
		}
	}
	if s.snapshot != nil {
		t.Error("transaction left open after ApplyShadow")
	}
}

func TestApplyShadowEmptyResult(t *testing.T) {
	s := demoScene(t)
	if _, err := s.ApplyShadow(&shadow.Result{}); err == nil {
		t.Error("empty result applied")
	}
}

func TestTransactionRollback(t *testing.T) {
	s := New()
	s.AddElement(&VertexElement{Name: "keep"})
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	s.AddElement(&VertexElement{Name: "discard"})
	s.SetLight(geom.V(1, 0, 0))
	if err := s.Rollback(); err != nil {
		t.Fatal(err)
	}
	if got := len(s.ElementsOfKind(KindVertex)); got != 1 {
		t.Errorf("vertices after rollback = %d, want 1", got)
	}
	if s.LightDirection() != geom.V(0, 0, -1) {
		t.Errorf("light after rollback = %v", s.LightDirection())
	}
	if err := s.Commit(); err == nil {
		t.Error("commit succeeded with no open transaction")
	}
}

func TestTransactionNesting(t *testing.T) {
	s := New()
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := s.Begin(); err == nil {
		t.Error("nested transaction accepted")
	}
	if err := s.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestFormatReport(t *testing.T) {
	res := &shadow.Result{
		Shadow:        shadow.ShadowPolygonSet{Loops: []shadow.Loop{shadow.RectLoop(0, 0, 1, 1)}, Area: 1},
		GroundArea:    1,
		SunArea:       14,
		ReceivingArea: 16,
	}
	got := FormatReport(res)
	for _, want := range []string{"Shadow report", "receiving area", "16.000", "6.2%"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestFormatReportIncomplete(t *testing.T) {
	res := &shadow.Result{ReceivingArea: 4, Incomplete: true}
	if got := FormatReport(res); !strings.Contains(got, "incomplete") {
		t.Errorf("report missing incomplete marker:\n%s", got)
	}
}
