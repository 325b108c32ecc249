package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/umbra/pkg/shadow"
)

// snapshot is the saved state of an open transaction.
type snapshot struct {
	elements  []Element
	instances []shadow.Instance
	light     [3]float64
}

// Begin opens a transaction. Scene mutations until Commit or Rollback
// form one undo boundary. Nested transactions are not supported.
func (s *Scene) Begin() error {
	if s.snapshot != nil {
		return fmt.Errorf("scene: transaction already open")
	}
	s.snapshot = &snapshot{
		elements:  append([]Element(nil), s.elements...),
		instances: append([]shadow.Instance(nil), s.instances...),
		light:     [3]float64{s.light.X, s.light.Y, s.light.Z},
	}
	return nil
}

// Commit closes the open transaction, keeping the mutations.
func (s *Scene) Commit() error {
	if s.snapshot == nil {
		return fmt.Errorf("scene: no open transaction")
	}
	s.snapshot = nil
	return nil
}

// Rollback closes the open transaction and restores the saved state.
func (s *Scene) Rollback() error {
	if s.snapshot == nil {
		return fmt.Errorf("scene: no open transaction")
	}
	s.elements = s.snapshot.elements
	s.instances = s.snapshot.instances
	s.light.X, s.light.Y, s.light.Z = s.snapshot.light[0], s.snapshot.light[1], s.snapshot.light[2]
	s.snapshot = nil
	return nil
}

// shadowLayerLabel builds a time-derived, collision-free layer name.
func shadowLayerLabel(now time.Time) string {
	return fmt.Sprintf("shadow-%s-%s", now.Format("20060102-150405"), uuid.NewString()[:8])
}

// ComputeShadow runs the pipeline against a host: receiving plane,
// casting instances and light direction are pulled from the host, the
// result is returned untouched.
func ComputeShadow(ctx context.Context, host Host, opts *shadow.Options) (*shadow.Result, error) {
	plane, boundary, err := host.ReceivingPlane()
	if err != nil {
		return nil, err
	}
	instances, err := host.CastingInstances()
	if err != nil {
		return nil, err
	}
	return shadow.Compute(ctx, plane, boundary, instances, host.LightDirection(), opts)
}

// ApplyShadow adds the computed footprint to the scene as one face per
// loop plus a group, all under a fresh shadow layer. The mutation is
// wrapped in a transaction so it lands atomically and forms a single
// undo step. Returns the layer label.
func (s *Scene) ApplyShadow(res *shadow.Result) (string, error) {
	if res == nil || len(res.Shadow.Loops) == 0 {
		return "", fmt.Errorf("scene: no shadow polygons to apply")
	}
	plane, _, err := s.ReceivingPlane()
	if err != nil {
		return "", err
	}
	if err := s.Begin(); err != nil {
		return "", err
	}
	label := shadowLayerLabel(time.Now())
	members := make([]string, 0, len(res.Shadow.Loops))
	for i, l := range res.Shadow.Loops {
		name := fmt.Sprintf("%s/loop-%d", label, i)
		s.AddElement(&FaceElement{
			Name:     name,
			Layer:    label,
			Plane:    plane,
			Boundary: l.Clone(),
		})
		members = append(members, name)
	}
	s.AddElement(&GroupElement{Name: label, Members: members})
	if err := s.Commit(); err != nil {
		return "", err
	}
	return label, nil
}
