// Package shadow computes the 2D footprint that shadow-casting meshes
// project onto a single planar receiving surface under a directional
// light: connected-component grouping, silhouette extraction,
// ray/plane projection, polygon reconstruction, boolean trimming and
// aggregation.
package shadow

import (
	"context"
	"fmt"
	"math"

	"github.com/chazu/umbra/pkg/geom"
	"github.com/chazu/umbra/pkg/mesh"
)

// Stage identifies a step of the per-instance pipeline. The stages run
// strictly in order with no branching back.
type Stage int

const (
	StageGrouped Stage = iota
	StageSilhouetteExtracted
	StageProjected
	StageReconstructed
	StageGroundSubtracted
	StageBoundaryTrimmed
	StageMerged
)

var stageNames = [...]string{
	"grouped",
	"silhouette-extracted",
	"projected",
	"reconstructed",
	"ground-subtracted",
	"boundary-trimmed",
	"merged",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ProgressEvent reports the completion of one pipeline stage for one
// instance.
type ProgressEvent struct {
	Instance string
	Index    int // instance index, 0-based
	Total    int // eligible instance count
	Stage    Stage
}

// Options configures a shadow computation. The zero value is usable.
type Options struct {
	// Tolerance is the 2D point-merge distance for reconstruction and
	// trimming. Zero means geom.MergeTol.
	Tolerance float64
	// Progress, when non-nil, is invoked after each completed pipeline
	// stage. The computation can be long-running for large meshes; the
	// callback gives the caller incremental visibility.
	Progress func(ProgressEvent)
}

func (o *Options) tolerance() float64 {
	if o == nil || o.Tolerance <= 0 {
		return geom.MergeTol
	}
	return o.Tolerance
}

// Instance is a placed, transformed reference to a shared mesh
// definition, eligible to cast a shadow when both flags are set. The
// mesh itself is read-only for the duration of a computation.
type Instance struct {
	Name        string
	Mesh        *mesh.Mesh
	Transform   geom.Transform
	Visible     bool
	CastsShadow bool
}

// Eligible reports whether the instance participates in shadow
// casting.
func (in Instance) Eligible() bool {
	return in.Visible && in.CastsShadow && !in.Mesh.IsEmpty()
}

// ShadowPolygonSet is the final aggregated loop collection with its
// total area.
type ShadowPolygonSet struct {
	Loops []Loop
	Area  float64
}

// Result is the immutable value returned by Compute.
type Result struct {
	Shadow        ShadowPolygonSet
	GroundArea    float64 // casting footprints coplanar with the plane, clipped to the boundary
	SunArea       float64 // receiving area not covered by shadow or footprints, clamped at zero
	ReceivingArea float64
	Warnings      []Warning
	// Incomplete is set when casting geometry was present but no
	// shadow polygon survived (for example under grazing light).
	Incomplete bool
}

// Compute runs the full pipeline: for each eligible instance the mesh
// is grouped into connected components, silhouette edges are extracted
// per component, projected onto the receiving plane, reconstructed
// into loops, trimmed against the instance's own ground footprint and
// the receiving boundary, and merged; the per-instance results are
// then merged into one footprint.
//
// The context is checked between instances and between pipeline
// stages; cancellation returns ctx.Err(). Geometry-level failures are
// recovered at the smallest possible scope and reported as warnings on
// the result. Only a missing precondition (no casting geometry, no
// valid boundary, zero light vector) fails the call.
func Compute(ctx context.Context, plane geom.Plane, boundary Loop, instances []Instance, lightDir geom.Vec3, opts *Options) (*Result, error) {
	if len(boundary) < 3 {
		return nil, fmt.Errorf("shadow: receiving boundary needs at least 3 points, got %d", len(boundary))
	}
	if lightDir.Norm() < geom.Tol {
		return nil, fmt.Errorf("shadow: zero light direction")
	}
	light := lightDir.Normalize()
	tol := opts.tolerance()

	var eligible []Instance
	for _, in := range instances {
		if in.Eligible() {
			eligible = append(eligible, in)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoCastingGeometry
	}

	res := &Result{ReceivingArea: math.Abs(boundary.Area())}
	log := Logger()

	var allLoops [][]Loop
	for i, inst := range eligible {
		step := func(s Stage) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if opts != nil && opts.Progress != nil {
				opts.Progress(ProgressEvent{Instance: inst.Name, Index: i, Total: len(eligible), Stage: s})
			}
			return nil
		}
		warn := func(s Stage, err error) {
			res.Warnings = append(res.Warnings, Warning{Instance: inst.Name, Stage: s, Err: err})
			log.Warn("recovered geometry failure", "instance", inst.Name, "stage", s.String(), "err", err)
		}

		comps := inst.Mesh.Components()
		log.Debug("grouped", "instance", inst.Name, "components", len(comps))
		if err := step(StageGrouped); err != nil {
			return nil, err
		}

		pr := newProjector(plane, light, inst.Transform)

		silhouettes := make([][]mesh.EdgeID, len(comps))
		for ci, comp := range comps {
			silhouettes[ci] = silhouetteEdges(inst.Mesh, comp, pr.light)
		}
		if err := step(StageSilhouetteExtracted); err != nil {
			return nil, err
		}

		segments := make([][]segment2, len(comps))
		degenerate := 0
		for ci := range comps {
			for _, eid := range silhouettes[ci] {
				e := &inst.Mesh.Edges[eid]
				a, errA := pr.project(inst.Mesh.Verts[e.V[0]].Pos)
				b, errB := pr.project(inst.Mesh.Verts[e.V[1]].Pos)
				if errA != nil || errB != nil {
					degenerate++
					continue
				}
				segments[ci] = append(segments[ci], segment2{a: a, b: b})
			}
		}
		if degenerate > 0 {
			warn(StageProjected, fmt.Errorf("%w (%d edge(s) skipped)", ErrDegenerateProjection, degenerate))
		}
		if err := step(StageProjected); err != nil {
			return nil, err
		}

		var loops []Loop
		for ci := range comps {
			compLoops, dropped := reconstruct(segments[ci], tol)
			if dropped > 0 {
				warn(StageReconstructed, &ReconstructionError{Dropped: dropped})
			}
			loops = append(loops, compLoops...)
		}
		if err := step(StageReconstructed); err != nil {
			return nil, err
		}

		ground := groundFootprint(inst, plane, tol)
		subDropped := 0
		for _, gl := range ground {
			var d int
			loops, d = subtractLoops(loops, gl, tol)
			subDropped += d
		}
		if subDropped > 0 {
			warn(StageGroundSubtracted, &ReconstructionError{Dropped: subDropped})
		}
		if err := step(StageGroundSubtracted); err != nil {
			return nil, err
		}

		var trimDropped int
		loops, trimDropped = intersectLoops(loops, boundary, tol)
		if trimDropped > 0 {
			warn(StageBoundaryTrimmed, &ReconstructionError{Dropped: trimDropped})
		}
		if err := step(StageBoundaryTrimmed); err != nil {
			return nil, err
		}

		merged, dropped := mergeLoops(tol, loops)
		if dropped > 0 {
			warn(StageMerged, &ReconstructionError{Dropped: dropped})
		}
		if err := step(StageMerged); err != nil {
			return nil, err
		}
		allLoops = append(allLoops, merged)

		// The footprint area itself is reported clipped to the
		// receiving boundary; the loops are otherwise discarded.
		clipped, _ := intersectLoops(ground, boundary, tol)
		res.GroundArea += totalArea(clipped)
	}

	final, dropped := mergeLoops(tol, allLoops...)
	if dropped > 0 {
		res.Warnings = append(res.Warnings, Warning{Stage: StageMerged, Err: &ReconstructionError{Dropped: dropped}})
	}
	res.Shadow = ShadowPolygonSet{Loops: final, Area: totalArea(final)}
	if len(final) == 0 {
		res.Incomplete = true
		res.Warnings = append(res.Warnings, Warning{Stage: StageMerged, Err: ErrIncompleteResult})
	}
	res.SunArea = math.Max(0, res.ReceivingArea-res.Shadow.Area-res.GroundArea)
	log.Debug("computation finished",
		"loops", len(final), "shadowArea", res.Shadow.Area,
		"groundArea", res.GroundArea, "sunArea", res.SunArea,
		"warnings", len(res.Warnings))
	return res, nil
}

// groundFootprint collects the instance's faces that lie in the
// receiving plane (coplanar and parallel, in world space), expressed as
// loops in plane-local coordinates. These are the regions already
// occupying the ground; their projection must be excluded from the
// cast shadow.
func groundFootprint(inst Instance, plane geom.Plane, tol float64) []Loop {
	var out []Loop
	m := inst.Mesh
	for fi := range m.Faces {
		f := &m.Faces[fi]
		n := inst.Transform.ApplyDir(f.Normal)
		if math.Abs(math.Abs(n.Dot(plane.Normal))-1) > geom.Tol*10 {
			continue
		}
		coplanar := true
		pts := m.FaceLoop(mesh.FaceID(fi))
		loop := make(Loop, 0, len(pts))
		for _, p := range pts {
			w := inst.Transform.Apply(p)
			if math.Abs(plane.DistanceTo(w)) > tol {
				coplanar = false
				break
			}
			loop = append(loop, plane.LocalUV(w))
		}
		if coplanar {
			out = append(out, loop)
		}
	}
	return out
}
