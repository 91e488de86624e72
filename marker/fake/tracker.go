// Package fake implements a marker tracker that synthesizes detections
// from a scripted scene instead of a camera.
package fake

import (
	"context"
	"math/rand"
	"sync"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/michaelharrison1/DH-Parameter-Visualization/marker"
	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
	"github.com/michaelharrison1/DH-Parameter-Visualization/utils"
)

// A SimMarker is one scripted marker in the scene.
type SimMarker struct {
	ID   int
	Pose spatialmath.Pose
	// AppearAfter is how many frames pass before the marker is first
	// detected. Zero means it is visible from the start.
	AppearAfter int
}

// Tracker produces detections for a fixed set of simulated markers. The
// sequence of observations is deterministic for a given script and jitter
// settings.
type Tracker struct {
	mu      sync.Mutex
	markers []SimMarker
	frame   int
	rand    *rand.Rand

	posJitterMeters  float64
	rotJitterDegrees float64
}

// NewTracker returns a tracker that reports the given markers.
func NewTracker(markers ...SimMarker) *Tracker {
	return &Tracker{
		markers: markers,
		rand:    rand.New(rand.NewSource(1)),
	}
}

// SetJitter adds Gaussian noise to every reported pose, with the given
// standard deviations. Zero disables noise on that axis.
func (t *Tracker) SetJitter(posMeters, rotDegrees float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.posJitterMeters = posMeters
	t.rotJitterDegrees = rotDegrees
}

// SetPose moves a scripted marker. Unknown ids are ignored.
func (t *Tracker) SetPose(markerID int, pose spatialmath.Pose) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, m := range t.markers {
		if m.ID == markerID {
			t.markers[i].Pose = pose
		}
	}
}

// Observations reports every marker whose appearance frame has passed,
// advancing the frame counter by one.
func (t *Tracker) Observations(ctx context.Context) ([]marker.Observation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	frame := t.frame
	t.frame++

	var obs []marker.Observation
	for _, m := range t.markers {
		if frame < m.AppearAfter {
			continue
		}
		pt := m.Pose.Point()
		o := m.Pose.Orientation()
		if t.posJitterMeters > 0 {
			pt = pt.Add(r3.Vector{
				X: t.rand.NormFloat64() * t.posJitterMeters,
				Y: t.rand.NormFloat64() * t.posJitterMeters,
				Z: t.rand.NormFloat64() * t.posJitterMeters,
			})
		}
		if t.rotJitterDegrees > 0 {
			o = t.jitterOrientation(o)
		}
		obs = append(obs, marker.Observation{MarkerID: m.ID, Position: pt, Orientation: o})
	}
	return obs, nil
}

func (t *Tracker) jitterOrientation(o spatialmath.Orientation) spatialmath.Orientation {
	axis := r3.Vector{X: t.rand.NormFloat64(), Y: t.rand.NormFloat64(), Z: t.rand.NormFloat64()}
	if axis.Norm() == 0 {
		axis = r3.Vector{Z: 1}
	}
	axis = axis.Normalize()
	wobble := spatialmath.R4AA{
		Theta: utils.DegToRad(t.rand.NormFloat64() * t.rotJitterDegrees),
		RX:    axis.X,
		RY:    axis.Y,
		RZ:    axis.Z,
	}
	return spatialmath.NewOrientationFromQuaternion(quat.Mul(wobble.ToQuat(), o.Quaternion()))
}
