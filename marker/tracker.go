package marker

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
)

// An Observation is one detected marker within a single tracker frame.
type Observation struct {
	MarkerID    int
	Position    r3.Vector
	Orientation spatialmath.Orientation
}

// A Tracker observes fiducial markers in an environment and reports their
// poses. Each Observations call is one frame and returns only the markers
// detected in it; a marker absent from the result is simply not detected
// right now, not gone. Implementations are external tracking subsystems
// (camera pipelines, mocap systems, fakes).
type Tracker interface {
	Observations(ctx context.Context) ([]Observation, error)
}
