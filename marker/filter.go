// Package marker turns the noisy, intermittent pose stream of fiducial
// markers into stable anchor frames that persist across tracking loss.
package marker

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
)

// A PoseFilter deadbands one marker's pose stream: a new sample only replaces
// the cached pose when it differs enough from it to represent real motion.
// Tracking systems report sub-millimeter, sub-degree noise every frame, and
// anchoring frames to the raw stream would make them visibly jitter.
type PoseFilter struct {
	positionThresholdMeters  float64
	rotationThresholdDegrees float64

	point       r3.Vector
	orientation spatialmath.Orientation
	initialized bool
}

// NewPoseFilter returns an uninitialized filter with the given deadband
// thresholds. A zero position threshold (or zero rotation threshold) disables
// the deadband: every sample is then stored.
func NewPoseFilter(positionThresholdMeters, rotationThresholdDegrees float64) (*PoseFilter, error) {
	if positionThresholdMeters < 0 {
		return nil, errors.Errorf("position threshold must be non-negative, got %v", positionThresholdMeters)
	}
	if rotationThresholdDegrees < 0 {
		return nil, errors.Errorf("rotation threshold must be non-negative, got %v", rotationThresholdDegrees)
	}
	return &PoseFilter{
		positionThresholdMeters:  positionThresholdMeters,
		rotationThresholdDegrees: rotationThresholdDegrees,
		orientation:              spatialmath.NewZeroOrientation(),
	}, nil
}

// TryUpdate offers a new sample to the filter and returns whether it was
// stored. The first sample is always stored. After that a sample is stored
// only if it moved at least the position threshold or rotated at least the
// rotation threshold away from the cached pose; either axis of change alone
// is enough. Rejected samples leave the cache untouched, so slow drift keeps
// being measured against the last stored pose, not the last seen one.
func (pf *PoseFilter) TryUpdate(point r3.Vector, orientation spatialmath.Orientation) bool {
	if !pf.initialized {
		pf.store(point, orientation)
		return true
	}
	dPos := point.Sub(pf.point).Norm()
	dRot := spatialmath.AngleBetweenDegrees(pf.orientation, orientation)
	if dPos < pf.positionThresholdMeters && dRot < pf.rotationThresholdDegrees {
		return false
	}
	pf.store(point, orientation)
	return true
}

// ForceUpdate stores the given pose unconditionally, initializing the filter
// if needed. It is meant for anchor creation and resets, never for the
// tracking path.
func (pf *PoseFilter) ForceUpdate(point r3.Vector, orientation spatialmath.Orientation) {
	pf.store(point, orientation)
}

// Pose returns the cached pose. Before the first stored sample this is the
// zero pose.
func (pf *PoseFilter) Pose() spatialmath.Pose {
	return spatialmath.NewPose(pf.point, pf.orientation)
}

// Initialized returns whether the filter has stored at least one sample.
func (pf *PoseFilter) Initialized() bool {
	return pf.initialized
}

func (pf *PoseFilter) store(point r3.Vector, orientation spatialmath.Orientation) {
	pf.point = point
	pf.orientation = orientation
	pf.initialized = true
}
