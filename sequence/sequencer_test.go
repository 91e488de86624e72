package sequence_test

import (
	"fmt"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/michaelharrison1/DH-Parameter-Visualization/sequence"
)

type recordingListener struct {
	name string
	log  *[]string
}

func (l *recordingListener) StepChanged(phase sequence.Phase, jointIndex int) {
	*l.log = append(*l.log, fmt.Sprintf("%s:%s/%d", l.name, phase, jointIndex))
}

func (l *recordingListener) SequenceComplete() {
	*l.log = append(*l.log, l.name+":complete")
}

func TestNewSequencer(t *testing.T) {
	logger := golog.NewTestLogger(t)

	seq, err := sequence.NewSequencer(3, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseInitializing)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, -1)
	test.That(t, seq.TotalJoints(), test.ShouldEqual, 3)

	_, err = sequence.NewSequencer(-1, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "negative")
}

func TestThreeJointWalk(t *testing.T) {
	seq, err := sequence.NewSequencer(3, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	var log []string
	seq.AddListener(&recordingListener{name: "a", log: &log})

	seq.Start()
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseStepping)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 0)

	test.That(t, seq.Advance(), test.ShouldBeTrue)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 1)
	test.That(t, seq.Advance(), test.ShouldBeTrue)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 2)

	// the third advance completes the walk and reports no further step
	test.That(t, seq.Advance(), test.ShouldBeFalse)
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseComplete)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 3)

	test.That(t, log, test.ShouldResemble, []string{
		"a:Stepping/0",
		"a:Stepping/1",
		"a:Stepping/2",
		"a:Complete/3",
		"a:complete",
	})

	// advancing past Complete changes nothing
	test.That(t, seq.Advance(), test.ShouldBeFalse)
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseComplete)
}

func TestBack(t *testing.T) {
	seq, err := sequence.NewSequencer(3, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// nothing to go back to before the walk starts
	test.That(t, seq.Back(), test.ShouldBeFalse)

	seq.Start()
	test.That(t, seq.Back(), test.ShouldBeFalse)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 0)

	seq.Advance()
	test.That(t, seq.Back(), test.ShouldBeTrue)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 0)

	// back is the only way out of Complete and lands on the last joint
	seq.Advance()
	seq.Advance()
	seq.Advance()
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseComplete)
	test.That(t, seq.Back(), test.ShouldBeTrue)
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseStepping)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 2)
}

func TestRecompletionRefires(t *testing.T) {
	seq, err := sequence.NewSequencer(1, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	var log []string
	seq.AddListener(&recordingListener{name: "a", log: &log})

	seq.Start()
	seq.Advance()
	seq.Back()
	seq.Advance()

	test.That(t, log, test.ShouldResemble, []string{
		"a:Stepping/0",
		"a:Complete/1",
		"a:complete",
		"a:Stepping/0",
		"a:Complete/1",
		"a:complete",
	})
}

func TestZeroJoints(t *testing.T) {
	seq, err := sequence.NewSequencer(0, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	var log []string
	seq.AddListener(&recordingListener{name: "a", log: &log})

	seq.Start()
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseComplete)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 0)
	// no step to report, only completion
	test.That(t, log, test.ShouldResemble, []string{"a:complete"})

	test.That(t, seq.Advance(), test.ShouldBeFalse)
	test.That(t, seq.Back(), test.ShouldBeFalse)
	test.That(t, log, test.ShouldResemble, []string{"a:complete"})
}

func TestStartIdempotent(t *testing.T) {
	seq, err := sequence.NewSequencer(2, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// advancing before the walk starts does nothing
	test.That(t, seq.Advance(), test.ShouldBeFalse)
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseInitializing)

	var log []string
	seq.AddListener(&recordingListener{name: "a", log: &log})

	seq.Start()
	seq.Advance()
	seq.Start()
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseStepping)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, 1)
	test.That(t, log, test.ShouldResemble, []string{"a:Stepping/0", "a:Stepping/1"})
}

func TestListeners(t *testing.T) {
	seq, err := sequence.NewSequencer(2, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	var log []string
	first := &recordingListener{name: "first", log: &log}
	second := &recordingListener{name: "second", log: &log}
	seq.AddListener(first)
	seq.AddListener(second)

	seq.Start()
	test.That(t, log, test.ShouldResemble, []string{"first:Stepping/0", "second:Stepping/0"})

	log = nil
	seq.RemoveListener(first)
	seq.Advance()
	test.That(t, log, test.ShouldResemble, []string{"second:Stepping/1"})

	// removing an unknown listener is harmless
	seq.RemoveListener(first)
}

func TestNoEnumeratedBound(t *testing.T) {
	const total = 100
	seq, err := sequence.NewSequencer(total, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	seq.Start()
	for i := 1; i < total; i++ {
		test.That(t, seq.Advance(), test.ShouldBeTrue)
		test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, i)
	}
	test.That(t, seq.Advance(), test.ShouldBeFalse)
	test.That(t, seq.Phase(), test.ShouldEqual, sequence.PhaseComplete)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, total)

	test.That(t, seq.Back(), test.ShouldBeTrue)
	test.That(t, seq.CurrentJointIndex(), test.ShouldEqual, total-1)
}
