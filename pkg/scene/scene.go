// Package scene is the host side of the shadow pipeline: it owns the
// modeled elements, decides which face receives shadows and which
// instances cast them, and applies computed footprints back as new
// geometry under an undoable transaction.
package scene

import (
	"fmt"

	"github.com/chazu/umbra/pkg/geom"
	"github.com/chazu/umbra/pkg/shadow"
)

// Host supplies everything one shadow computation needs. The core
// pipeline never reaches into scene state directly; a Host handle is
// passed by parameter.
type Host interface {
	// ReceivingPlane returns the single face that receives shadows: its
	// plane and its boundary loop in plane-local coordinates.
	ReceivingPlane() (geom.Plane, shadow.Loop, error)
	// CastingInstances returns the candidate casting geometry with
	// visibility and casting flags already resolved.
	CastingInstances() ([]shadow.Instance, error)
	// LightDirection is the direction shadows travel (reversed light
	// source direction).
	LightDirection() geom.Vec3
}

// ElementKind is the explicit discriminant of a scene element.
type ElementKind int

const (
	KindVertex ElementKind = iota
	KindEdge
	KindFace
	KindGroup
)

var kindNames = [...]string{"vertex", "edge", "face", "group"}

func (k ElementKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Element is a tagged scene entity. Selection queries switch on Kind
// rather than probing capabilities.
type Element interface {
	Kind() ElementKind
	Label() string
}

// VertexElement is a bare point.
type VertexElement struct {
	Name  string
	Point geom.Vec3
}

func (e *VertexElement) Kind() ElementKind { return KindVertex }
func (e *VertexElement) Label() string     { return e.Name }

// EdgeElement is a bare segment.
type EdgeElement struct {
	Name string
	A, B geom.Vec3
}

func (e *EdgeElement) Kind() ElementKind { return KindEdge }
func (e *EdgeElement) Label() string     { return e.Name }

// FaceElement is a planar polygon. At most one face in a scene has
// Receives set; it is the shadow projection target.
type FaceElement struct {
	Name     string
	Layer    string
	Plane    geom.Plane
	Boundary shadow.Loop
	Receives bool
}

func (e *FaceElement) Kind() ElementKind { return KindFace }
func (e *FaceElement) Label() string     { return e.Name }

// GroupElement names a set of other elements.
type GroupElement struct {
	Name    string
	Members []string
}

func (e *GroupElement) Kind() ElementKind { return KindGroup }
func (e *GroupElement) Label() string     { return e.Name }

// Scene is the in-memory Host implementation used by the DSL and the
// CLI.
type Scene struct {
	elements  []Element
	instances []shadow.Instance
	light     geom.Vec3

	snapshot *snapshot
}

// Compile-time interface check.
var _ Host = (*Scene)(nil)

// New returns an empty scene with a default overhead light.
func New() *Scene {
	return &Scene{light: geom.V(0, 0, -1)}
}

// SetLight sets the direction shadows travel.
func (s *Scene) SetLight(dir geom.Vec3) {
	s.light = dir
}

// AddElement appends an element.
func (s *Scene) AddElement(e Element) {
	s.elements = append(s.elements, e)
}

// AddReceivingFace adds the shadow projection target.
func (s *Scene) AddReceivingFace(name string, plane geom.Plane, boundary shadow.Loop) {
	s.AddElement(&FaceElement{Name: name, Plane: plane, Boundary: boundary, Receives: true})
}

// AddInstance appends a casting instance.
func (s *Scene) AddInstance(inst shadow.Instance) {
	s.instances = append(s.instances, inst)
}

// ElementsOfKind returns the elements matching the discriminant.
func (s *Scene) ElementsOfKind(k ElementKind) []Element {
	var out []Element
	for _, e := range s.elements {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

// ReceivingPlane implements Host. Exactly one receiving face must
// exist.
func (s *Scene) ReceivingPlane() (geom.Plane, shadow.Loop, error) {
	var found *FaceElement
	n := 0
	for _, e := range s.ElementsOfKind(KindFace) {
		f := e.(*FaceElement)
		if !f.Receives {
			continue
		}
		found = f
		n++
	}
	if n != 1 {
		return geom.Plane{}, nil, fmt.Errorf("scene: need exactly one receiving face, got %d", n)
	}
	if len(found.Boundary) < 3 {
		return geom.Plane{}, nil, fmt.Errorf("scene: receiving face %q has a degenerate boundary", found.Name)
	}
	return found.Plane, found.Boundary, nil
}

// CastingInstances implements Host.
func (s *Scene) CastingInstances() ([]shadow.Instance, error) {
	if len(s.instances) == 0 {
		return nil, fmt.Errorf("scene: no casting instances")
	}
	return append([]shadow.Instance(nil), s.instances...), nil
}

// LightDirection implements Host.
func (s *Scene) LightDirection() geom.Vec3 {
	return s.light
}
