// Package sequence implements the linear state machine that walks joint
// assignments one index at a time.
package sequence

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Phase describes where a sequencer is in its walk.
type Phase string

// The phases a sequencer moves through.
const (
	PhaseInitializing Phase = "Initializing"
	PhaseStepping     Phase = "Stepping"
	PhaseComplete     Phase = "Complete"
)

// A StepListener is notified of sequencer transitions. Delivery is
// synchronous and in registration order, within the call that caused the
// transition.
type StepListener interface {
	// StepChanged reports the phase and joint index after a transition.
	StepChanged(phase Phase, jointIndex int)
	// SequenceComplete fires each time the sequencer enters Complete from
	// another phase. Repeated calls while already Complete do not refire it.
	SequenceComplete()
}

// A Sequencer steps through joint indices 0..totalJoints-1 in order,
// ending in Complete. Indices are plain integers; any index at or past
// totalJoints means the walk is over. A Sequencer is not safe for
// concurrent use without external synchronization.
type Sequencer struct {
	logger      golog.Logger
	totalJoints int

	phase     Phase
	jointIdx  int
	listeners []StepListener
}

// NewSequencer returns a sequencer covering the given number of joints.
// Zero joints is legal; such a sequencer completes as soon as it starts.
func NewSequencer(totalJoints int, logger golog.Logger) (*Sequencer, error) {
	if totalJoints < 0 {
		return nil, errors.Errorf("total joints cannot be negative (got %d)", totalJoints)
	}
	return &Sequencer{
		logger:      logger,
		totalJoints: totalJoints,
		phase:       PhaseInitializing,
		jointIdx:    -1,
	}, nil
}

// Start moves the sequencer out of Initializing, to the first joint or
// straight to Complete when there are no joints. Calling it again later
// has no effect.
func (s *Sequencer) Start() {
	if s.phase != PhaseInitializing {
		s.logger.Debugw("start ignored", "phase", s.phase)
		return
	}
	if s.totalJoints == 0 {
		s.phase = PhaseComplete
		s.jointIdx = 0
		s.logger.Infow("sequence complete", "total_joints", 0)
		s.emitComplete()
		return
	}
	s.phase = PhaseStepping
	s.jointIdx = 0
	s.logger.Debugw("sequence started", "total_joints", s.totalJoints)
	s.emitStepChanged()
}

// Advance moves to the next joint, returning whether another joint
// remains. The advance that lands on Complete still happens; the false
// return only signals that the walk is over. Advancing from Initializing
// or Complete changes nothing and returns false.
func (s *Sequencer) Advance() bool {
	if s.phase != PhaseStepping {
		return false
	}
	if s.jointIdx+1 < s.totalJoints {
		s.jointIdx++
		s.emitStepChanged()
		return true
	}
	s.phase = PhaseComplete
	s.jointIdx = s.totalJoints
	s.emitStepChanged()
	s.logger.Infow("sequence complete", "total_joints", s.totalJoints)
	s.emitComplete()
	return false
}

// Back returns to the previous joint. From Complete it reopens the walk
// at the last joint. At the first joint, or before Start, there is
// nothing to go back to and Back returns false.
func (s *Sequencer) Back() bool {
	switch s.phase {
	case PhaseStepping:
		if s.jointIdx == 0 {
			return false
		}
		s.jointIdx--
		s.emitStepChanged()
		return true
	case PhaseComplete:
		if s.totalJoints == 0 {
			return false
		}
		s.phase = PhaseStepping
		s.jointIdx = s.totalJoints - 1
		s.emitStepChanged()
		return true
	default:
		return false
	}
}

// AddListener subscribes to transition events. Nil listeners are ignored.
func (s *Sequencer) AddListener(listener StepListener) {
	if listener == nil {
		return
	}
	s.listeners = append(s.listeners, listener)
}

// RemoveListener drops a previously added listener, compared by identity.
func (s *Sequencer) RemoveListener(listener StepListener) {
	for i, existing := range s.listeners {
		if existing == listener {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	return s.phase
}

// CurrentJointIndex returns the active joint index. It is -1 before Start
// and totalJoints once the walk is over.
func (s *Sequencer) CurrentJointIndex() int {
	return s.jointIdx
}

// TotalJoints returns how many joints the walk covers.
func (s *Sequencer) TotalJoints() int {
	return s.totalJoints
}

func (s *Sequencer) emitStepChanged() {
	s.logger.Debugw("step changed", "phase", s.phase, "joint_index", s.jointIdx)
	for _, listener := range s.listeners {
		listener.StepChanged(s.phase, s.jointIdx)
	}
}

func (s *Sequencer) emitComplete() {
	for _, listener := range s.listeners {
		listener.SequenceComplete()
	}
}
