package shadow

import (
	"errors"
	"fmt"
)

// ErrNoCastingGeometry is returned by Compute when the eligible
// instance list is empty. No partial result is meaningful.
var ErrNoCastingGeometry = errors.New("shadow: no casting geometry")

// ErrDegenerateProjection marks an edge whose projection ray travels
// parallel to the receiving plane. Recovered locally: the edge is
// skipped and computation continues.
var ErrDegenerateProjection = errors.New("shadow: light direction parallel to receiving plane")

// ErrIncompleteResult marks a computation that finished without
// producing any shadow polygons despite casting geometry being present.
// Attached as a warning to an empty-but-valid result, never a failure.
var ErrIncompleteResult = errors.New("shadow: computation produced no shadow polygons")

// ReconstructionError reports loops that failed to close within
// tolerance during polygon reconstruction. Recovered locally: the
// affected edges are dropped and the remaining loops are kept.
type ReconstructionError struct {
	Dropped int // stray edges discarded
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("shadow: %d edge(s) did not close into a loop and were dropped", e.Dropped)
}

// Warning records a recovered failure attached to a Result.
type Warning struct {
	Instance string
	Stage    Stage
	Err      error
}

func (w Warning) String() string {
	if w.Instance == "" {
		return fmt.Sprintf("[%s] %v", w.Stage, w.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", w.Stage, w.Instance, w.Err)
}
