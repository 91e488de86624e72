package marker

import (
	"sync"

	"github.com/golang/geo/r3"

	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
)

// An Anchor is the persisted world pose of one physical marker. The last
// accepted detection is retained indefinitely: a marker the tracker stops
// reporting simply keeps its anchor where it last was. There is no "lost"
// signal anywhere in this package; absence of updates is the only way
// tracking loss is represented.
type Anchor struct {
	markerID   int
	sizeMeters float64

	mu          sync.Mutex
	filter      *PoseFilter
	everTracked bool
}

// NewAnchor wires an anchor for the given marker around the given filter.
func NewAnchor(markerID int, sizeMeters float64, filter *PoseFilter) *Anchor {
	return &Anchor{markerID: markerID, sizeMeters: sizeMeters, filter: filter}
}

// MarkerID returns the id of the marker this anchor follows.
func (a *Anchor) MarkerID() int {
	return a.markerID
}

// SizeMeters returns the printed marker's side length.
func (a *Anchor) SizeMeters() float64 {
	return a.sizeMeters
}

// EverTracked returns whether this marker has ever cleared the filter. Once
// true it stays true for the anchor's lifetime.
func (a *Anchor) EverTracked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.everTracked
}

// Pose returns the anchor's world pose: the last accepted detection, or the
// zero pose while the marker has never been tracked.
func (a *Anchor) Pose() spatialmath.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter.Pose()
}

// UpdateFromTracking offers one detection to the anchor and returns whether
// it was accepted. A false return only means the sample did not clear the
// deadband; it never means the marker was lost.
func (a *Anchor) UpdateFromTracking(point r3.Vector, orientation spatialmath.Orientation) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.filter.TryUpdate(point, orientation) {
		return false
	}
	a.everTracked = true
	return true
}
