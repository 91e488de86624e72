// Package session ties a marker tracker, an input controller, and the
// joint walk together into one running teaching aid instance.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/michaelharrison1/DH-Parameter-Visualization/config"
	"github.com/michaelharrison1/DH-Parameter-Visualization/input"
	"github.com/michaelharrison1/DH-Parameter-Visualization/marker"
	"github.com/michaelharrison1/DH-Parameter-Visualization/sequence"
	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
	"github.com/michaelharrison1/DH-Parameter-Visualization/visibility"
)

// DefaultTickRate is how often the tracker is polled when Params does not
// say otherwise, roughly a 30Hz camera cadence.
const DefaultTickRate = 33 * time.Millisecond

// Default buttons for driving the walk.
const (
	DefaultAdvanceButton = input.ButtonSouth
	DefaultBackButton    = input.ButtonEast
)

// Params configures a Session.
type Params struct {
	// Config describes the markers and the joints they anchor. An invalid
	// config degrades to an empty one rather than failing construction;
	// the problems are logged.
	Config config.Config

	// Tracker supplies marker observations each tick. Required.
	Tracker marker.Tracker

	// Controller supplies the buttons that drive the walk. Required.
	Controller input.Controller

	// AdvanceButton and BackButton select which controls step the walk
	// forward and backward. They default to DefaultAdvanceButton and
	// DefaultBackButton and must differ.
	AdvanceButton input.Control
	BackButton    input.Control

	// TickRate is how often the tracker is polled. Defaults to
	// DefaultTickRate.
	TickRate time.Duration

	// Clock drives the tick loop; tests inject a mock. Defaults to the
	// wall clock.
	Clock clock.Clock
}

// A Session owns one assignment walk. It polls the tracker on a fixed
// cadence, routes button presses into the sequencer, and keeps joint
// visibility in line with both. Button transitions and tracker batches
// are serialized on one mutex, so neither ever interleaves with the
// other.
type Session struct {
	id     uuid.UUID
	logger golog.Logger

	tracker       marker.Tracker
	controller    input.Controller
	advanceButton input.Control
	backButton    input.Control
	tickRate      time.Duration
	clk           clock.Clock

	joints    []config.Joint
	registry  *marker.Registry
	sequencer *sequence.Sequencer
	policy    *visibility.Policy

	mu      sync.Mutex
	started bool
	closed  bool

	cancelCtx               context.Context
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

// StepInfo is a snapshot of where the walk is.
type StepInfo struct {
	Phase      sequence.Phase
	JointIndex int
	// JointID and MarkerID describe the joint being assigned. Both are -1
	// outside Stepping.
	JointID  int
	MarkerID int
}

// AnchorStatus is one anchor's entry in Status.
type AnchorStatus struct {
	MarkerID int
	Tracked  bool
	Pose     spatialmath.Pose
}

// New builds a session from params. A nil tracker or controller is an
// error; nothing is left partially wired when New fails.
func New(ctx context.Context, params Params, logger golog.Logger) (*Session, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Tracker == nil {
		return nil, errors.New("tracker is required")
	}
	if params.Controller == nil {
		return nil, errors.New("controller is required")
	}
	advance := params.AdvanceButton
	if advance == "" {
		advance = DefaultAdvanceButton
	}
	back := params.BackButton
	if back == "" {
		back = DefaultBackButton
	}
	if advance == back {
		return nil, errors.Errorf("advance and back cannot share control %q", advance)
	}
	tickRate := params.TickRate
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	clk := params.Clock
	if clk == nil {
		clk = clock.New()
	}

	cfg := params.Config
	if err := cfg.Ensure(); err != nil {
		logger.Errorw("invalid configuration; continuing with no anchors or joints", "error", err)
		cfg = config.Config{}
	}

	registry, err := marker.NewRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	joints := cfg.Joints()
	sequencer, err := sequence.NewSequencer(len(joints), logger)
	if err != nil {
		return nil, err
	}
	policy, err := visibility.NewPolicy(joints, registry, logger)
	if err != nil {
		return nil, err
	}

	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	return &Session{
		id:            uuid.New(),
		logger:        logger,
		tracker:       params.Tracker,
		controller:    params.Controller,
		advanceButton: advance,
		backButton:    back,
		tickRate:      tickRate,
		clk:           clk,
		joints:        joints,
		registry:      registry,
		sequencer:     sequencer,
		policy:        policy,
		cancelCtx:     cancelCtx,
		cancelFunc:    cancelFunc,
	}, nil
}

// Start registers the button callbacks, begins polling the tracker, and
// starts the sequencer. Starting an already started session is a no-op.
// Step and visibility listeners should be registered before Start so no
// transition is missed.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session closed")
	}
	if s.started {
		return nil
	}

	if err := s.controller.RegisterControlCallback(
		ctx,
		s.advanceButton,
		[]input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) { s.Advance(ctx) },
	); err != nil {
		return errors.Wrap(err, "cannot register advance callback")
	}
	if err := s.controller.RegisterControlCallback(
		ctx,
		s.backButton,
		[]input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) { s.Back(ctx) },
	); err != nil {
		// leave nothing wired behind a failed start
		err = multierr.Combine(err, s.controller.RegisterControlCallback(
			ctx, s.advanceButton, []input.EventType{input.ButtonPress}, nil))
		return errors.Wrap(err, "cannot register back callback")
	}

	s.started = true
	s.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(s.tickLoop, s.activeBackgroundWorkers.Done)

	s.sequencer.Start()
	s.policy.Refresh(s.sequencer.CurrentJointIndex())
	s.logger.Infow("session started",
		"id", s.id,
		"total_joints", s.sequencer.TotalJoints(),
		"tick_rate", s.tickRate,
	)
	return nil
}

// Advance asks the sequencer for the next joint and refreshes visibility
// either way; the advance that finishes the walk still moves state even
// though it reports no further step. The return mirrors the sequencer's,
// so callers can gate feedback on it. Returns false on a closed session.
func (s *Session) Advance(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	ok := s.sequencer.Advance()
	s.policy.Refresh(s.sequencer.CurrentJointIndex())
	return ok
}

// Back asks the sequencer for the previous joint and refreshes
// visibility, hiding any joint that fell out of range. Returns false on a
// closed session.
func (s *Session) Back(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	ok := s.sequencer.Back()
	s.policy.Refresh(s.sequencer.CurrentJointIndex())
	return ok
}

// CurrentStep reports the sequencer position and the joint it points at.
func (s *Session) CurrentStep() StepInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := StepInfo{
		Phase:      s.sequencer.Phase(),
		JointIndex: s.sequencer.CurrentJointIndex(),
		JointID:    -1,
		MarkerID:   -1,
	}
	if info.Phase == sequence.PhaseStepping && info.JointIndex >= 0 && info.JointIndex < len(s.joints) {
		joint := s.joints[info.JointIndex]
		info.JointID = joint.ID
		info.MarkerID = joint.MarkerID
	}
	return info
}

// Status reports every anchor's tracking state, sorted by marker id.
func (s *Session) Status() []AnchorStatus {
	var out []AnchorStatus
	for _, markerID := range s.registry.MarkerIDs() {
		anchor, ok := s.registry.Anchor(markerID)
		if !ok {
			continue
		}
		out = append(out, AnchorStatus{
			MarkerID: markerID,
			Tracked:  anchor.EverTracked(),
			Pose:     anchor.Pose(),
		})
	}
	return out
}

// VisibleJoints reports the joints a renderer may currently show, keyed
// by joint id.
func (s *Session) VisibleJoints() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.VisibleSet(s.sequencer.CurrentJointIndex())
}

// ID returns the id of this session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Joints returns the flattened joint table the walk covers. Treat the
// returned slice as read-only.
func (s *Session) Joints() []config.Joint {
	return s.joints
}

// Sequencer returns the step sequencer, for listener registration.
// Listeners fire while the session lock is held and must not call back
// into the session.
func (s *Session) Sequencer() *sequence.Sequencer {
	return s.sequencer
}

// VisibilityPolicy returns the visibility policy, for listener
// registration and world pose queries. Listeners fire while the session
// lock is held and must not call back into the session.
func (s *Session) VisibilityPolicy() *visibility.Policy {
	return s.policy
}

// Registry returns the anchor registry.
func (s *Session) Registry() *marker.Registry {
	return s.registry
}

// Close stops the tick worker, unregisters the button callbacks, and
// releases the anchors. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	s.mu.Unlock()

	s.cancelFunc()
	s.activeBackgroundWorkers.Wait()

	var err error
	if started {
		err = multierr.Combine(
			s.controller.RegisterControlCallback(
				ctx, s.advanceButton, []input.EventType{input.ButtonPress}, nil),
			s.controller.RegisterControlCallback(
				ctx, s.backButton, []input.EventType{input.ButtonPress}, nil),
		)
	}
	s.registry.Clear()
	s.logger.Debugw("session closed", "id", s.id)
	return err
}

func (s *Session) tickLoop() {
	ticker := s.clk.Ticker(s.tickRate)
	defer ticker.Stop()
	for {
		if s.cancelCtx.Err() != nil {
			return
		}
		select {
		case <-s.cancelCtx.Done():
			return
		case <-ticker.C:
			s.tick(s.cancelCtx)
		}
	}
}

// tick applies one batch of observations. Every accepted update lands in
// the registry before visibility recomputes for any affected marker.
func (s *Session) tick(ctx context.Context) {
	observations, err := s.tracker.Observations(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Errorw("tracker observations failed; skipping tick", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	var accepted []int
	seen := map[int]bool{}
	for _, obs := range observations {
		if !s.registry.UpdatePose(obs.MarkerID, obs.Position, obs.Orientation) {
			continue
		}
		if !seen[obs.MarkerID] {
			seen[obs.MarkerID] = true
			accepted = append(accepted, obs.MarkerID)
		}
	}
	idx := s.sequencer.CurrentJointIndex()
	for _, markerID := range accepted {
		s.policy.RefreshMarker(idx, markerID)
	}
}
