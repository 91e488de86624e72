// Package visibility decides which joints a renderer may show, gating
// each joint on both sequence progress and its marker's tracking state.
package visibility

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/michaelharrison1/DH-Parameter-Visualization/config"
	"github.com/michaelharrison1/DH-Parameter-Visualization/marker"
	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
)

// A Listener observes per-joint visibility flips.
type Listener interface {
	VisibilityChanged(jointID int, visible bool)
}

// Policy computes which joints are visible. A joint is visible while its
// index has been reached in the walk and its owning marker has produced at
// least one accepted pose. A joint on a marker that is never seen stays
// hidden no matter how far the walk gets; there is no anchor to place it
// at. A Policy is not safe for concurrent use without external
// synchronization.
type Policy struct {
	logger golog.Logger

	joints   []config.Joint
	anchors  map[int]*marker.Anchor
	byMarker map[int][]config.Joint
	byID     map[int]config.Joint

	// last visibility delivered to listeners, per joint id
	shown     map[int]bool
	listeners []Listener
}

// NewPolicy binds every joint to its anchor up front and returns the
// policy. A joint naming a marker the registry has no anchor for, or a
// duplicated joint id, is a construction error.
func NewPolicy(joints []config.Joint, registry *marker.Registry, logger golog.Logger) (*Policy, error) {
	if registry == nil {
		return nil, errors.New("anchor registry is required")
	}
	policy := &Policy{
		logger:   logger,
		joints:   joints,
		anchors:  map[int]*marker.Anchor{},
		byMarker: map[int][]config.Joint{},
		byID:     map[int]config.Joint{},
		shown:    map[int]bool{},
	}
	for _, joint := range joints {
		if _, ok := policy.byID[joint.ID]; ok {
			return nil, errors.Errorf("joint id %d appears more than once", joint.ID)
		}
		anchor, ok := registry.Anchor(joint.MarkerID)
		if !ok {
			return nil, errors.Errorf("joint %d is mapped to marker %d which has no anchor", joint.ID, joint.MarkerID)
		}
		policy.byID[joint.ID] = joint
		policy.anchors[joint.ID] = anchor
		policy.byMarker[joint.MarkerID] = append(policy.byMarker[joint.MarkerID], joint)
	}
	return policy, nil
}

// VisibleSet recomputes visibility for every joint at the given walk
// position. It has no side effects.
func (p *Policy) VisibleSet(currentJointIndex int) map[int]bool {
	visible := make(map[int]bool, len(p.joints))
	for _, joint := range p.joints {
		visible[joint.ID] = p.jointVisible(joint, currentJointIndex)
	}
	return visible
}

// Refresh recomputes every joint and notifies listeners of each flip since
// the last delivery. Call it whenever the walk position changes.
func (p *Policy) Refresh(currentJointIndex int) {
	p.refresh(p.joints, currentJointIndex)
}

// RefreshMarker recomputes only the joints owned by the given marker. An
// accepted anchor update can only flip that marker's joints, so this is
// the per-update path. Unknown marker ids refresh nothing.
func (p *Policy) RefreshMarker(currentJointIndex, markerID int) {
	p.refresh(p.byMarker[markerID], currentJointIndex)
}

// JointWorldPose returns the joint's frame in world space, the anchor pose
// composed with the joint's configured offset. The bool is false when the
// joint id is unknown or its marker was never tracked, meaning there is no
// world datum to place the joint at yet.
func (p *Policy) JointWorldPose(jointID int) (spatialmath.Pose, bool) {
	joint, ok := p.byID[jointID]
	if !ok {
		return nil, false
	}
	anchor := p.anchors[jointID]
	if !anchor.EverTracked() {
		return nil, false
	}
	return spatialmath.Compose(anchor.Pose(), joint.Offset), true
}

// AddListener subscribes to visibility flips. Nil listeners are ignored.
func (p *Policy) AddListener(listener Listener) {
	if listener == nil {
		return
	}
	p.listeners = append(p.listeners, listener)
}

// RemoveListener drops a previously added listener, compared by identity.
func (p *Policy) RemoveListener(listener Listener) {
	for i, existing := range p.listeners {
		if existing == listener {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

func (p *Policy) jointVisible(joint config.Joint, currentJointIndex int) bool {
	return joint.Index <= currentJointIndex && p.anchors[joint.ID].EverTracked()
}

func (p *Policy) refresh(joints []config.Joint, currentJointIndex int) {
	for _, joint := range joints {
		visible := p.jointVisible(joint, currentJointIndex)
		if visible == p.shown[joint.ID] {
			continue
		}
		p.shown[joint.ID] = visible
		p.logger.Debugw("joint visibility changed", "joint_id", joint.ID, "visible", visible)
		for _, listener := range p.listeners {
			listener.VisibilityChanged(joint.ID, visible)
		}
	}
}
