package marker

import (
	"sort"
	"sync"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"golang.org/x/exp/maps"

	"github.com/michaelharrison1/DH-Parameter-Visualization/config"
	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
)

// A Registry owns one Anchor per configured marker id and routes tracker
// detections to them. The anchor set is fixed at construction and mutated
// only by Clear, so steady-state lookups need no locking; pose updates are
// expected to arrive from a single goroutine per tick.
type Registry struct {
	logger  golog.Logger
	anchors map[int]*Anchor

	mu      sync.Mutex
	unknown map[int]bool
}

// NewRegistry builds one anchor per distinct marker id in the configuration.
// Tags sharing a marker id share an anchor. An empty configuration yields a
// registry with no anchors; that is reported but is not an error.
func NewRegistry(cfg config.Config, logger golog.Logger) (*Registry, error) {
	registry := &Registry{
		logger:  logger,
		anchors: map[int]*Anchor{},
		unknown: map[int]bool{},
	}
	if len(cfg.Tags) == 0 {
		logger.Warn("no tags configured; registry has no anchors")
		return registry, nil
	}
	for _, tm := range cfg.Tags {
		if _, ok := registry.anchors[tm.MarkerID]; ok {
			continue
		}
		filter, err := NewPoseFilter(cfg.Filter.PositionThresholdMeters, cfg.Filter.RotationThresholdDegrees)
		if err != nil {
			return nil, err
		}
		registry.anchors[tm.MarkerID] = NewAnchor(tm.MarkerID, tm.MarkerSizeMeters, filter)
	}
	logger.Debugw("anchor registry built", "anchors", len(registry.anchors))
	return registry, nil
}

// UpdatePose routes one detection to its anchor and returns whether the
// anchor accepted it. Ids with no anchor are reported once and then ignored;
// trackers routinely see printed tags that are not part of the setup.
func (r *Registry) UpdatePose(markerID int, point r3.Vector, orientation spatialmath.Orientation) bool {
	anchor, ok := r.anchors[markerID]
	if !ok {
		r.reportUnknown(markerID)
		return false
	}
	return anchor.UpdateFromTracking(point, orientation)
}

func (r *Registry) reportUnknown(markerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unknown == nil {
		r.unknown = map[int]bool{}
	}
	if !r.unknown[markerID] {
		r.unknown[markerID] = true
		r.logger.Warnw("ignoring detections for marker with no anchor", "marker_id", markerID)
		return
	}
	r.logger.Debugw("no anchor for marker", "marker_id", markerID)
}

// Anchor returns the anchor for the given marker id.
func (r *Registry) Anchor(markerID int) (*Anchor, bool) {
	anchor, ok := r.anchors[markerID]
	return anchor, ok
}

// MarkerIDs returns the configured marker ids in ascending order.
func (r *Registry) MarkerIDs() []int {
	ids := maps.Keys(r.anchors)
	sort.Ints(ids)
	return ids
}

// Len returns the number of anchors.
func (r *Registry) Len() int {
	return len(r.anchors)
}

// Clear releases all anchors. It is a teardown operation: safe to call
// repeatedly and on an empty registry, but not concurrently with updates.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anchors = map[int]*Anchor{}
	r.unknown = map[int]bool{}
}
