// Package main contains a demo command that walks a simulated marker rig
// through a joint-by-joint Denavit-Hartenberg frame assignment.
package main

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/michaelharrison1/DH-Parameter-Visualization/config"
	"github.com/michaelharrison1/DH-Parameter-Visualization/input"
	inputfake "github.com/michaelharrison1/DH-Parameter-Visualization/input/fake"
	markerfake "github.com/michaelharrison1/DH-Parameter-Visualization/marker/fake"
	"github.com/michaelharrison1/DH-Parameter-Visualization/sequence"
	"github.com/michaelharrison1/DH-Parameter-Visualization/session"
	"github.com/michaelharrison1/DH-Parameter-Visualization/spatialmath"
	"github.com/michaelharrison1/DH-Parameter-Visualization/visibility"
)

var logger = golog.NewDevelopmentLogger("dhviz")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// durationFlag parses a duration command line argument.
type durationFlag time.Duration

func (df *durationFlag) String() string {
	return time.Duration(*df).String()
}

func (df *durationFlag) Set(val string) error {
	if val == "" {
		*df = 0
		return nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return err
	}
	*df = durationFlag(parsed)
	return nil
}

// Get gets the parsed duration.
func (df *durationFlag) Get() interface{} {
	return time.Duration(*df)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string       `flag:"config,usage=marker and joint configuration file (JSON)"`
	TickRate   durationFlag `flag:"tick,default=33ms,usage=tracker poll interval"`
	Auto       durationFlag `flag:"auto,default=800ms,usage=delay between scripted advance presses (0s disables)"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := demoConfig()
	if argsParsed.ConfigFile != "" {
		var err error
		cfg, err = config.Read(argsParsed.ConfigFile)
		if err != nil {
			return err
		}
	}

	return runDemo(ctx, cfg, time.Duration(argsParsed.TickRate), time.Duration(argsParsed.Auto), logger)
}

// demoConfig is a two marker rig used when no configuration file is given: a
// base marker anchoring the first two joints, and a wrist marker anchoring
// the third.
func demoConfig() config.Config {
	return config.Config{
		Tags: []config.TagMapping{
			{
				MarkerID:         0,
				MarkerSizeMeters: 0.06,
				Joints: []config.JointDefinition{
					{JointID: 0, PositionOffset: config.Translation{Z: 0.05}},
					{JointID: 1, DH: &config.DHParams{A: 0.12, D: 0.03, Alpha: math.Pi / 2}},
				},
			},
			{
				MarkerID:         1,
				MarkerSizeMeters: 0.04,
				Joints: []config.JointDefinition{
					{
						JointID:        2,
						PositionOffset: config.Translation{X: 0.08},
						RotationOffset: config.Rotation{Yaw: 90},
					},
				},
			},
		},
	}
}

func runDemo(ctx context.Context, cfg config.Config, tickRate, auto time.Duration, logger golog.Logger) (err error) {
	// The wrist marker enters the scene a couple of seconds in, so a scripted
	// walk reaches its joint before the camera has ever seen it.
	tracker := markerfake.NewTracker(
		markerfake.SimMarker{ID: 0, Pose: spatialmath.NewPoseFromPoint(r3.Vector{X: 0.3, Z: 0.5})},
		markerfake.SimMarker{
			ID: 1,
			Pose: spatialmath.NewPose(
				r3.Vector{X: -0.2, Z: 0.6},
				spatialmath.EulerAnglesFromDegrees(0, 0, 45),
			),
			AppearAfter: 60,
		},
	)
	tracker.SetJitter(0.0005, 0.1)
	controller := inputfake.NewController(session.DefaultAdvanceButton, session.DefaultBackButton)

	sess, err := session.New(ctx, session.Params{
		Config:     cfg,
		Tracker:    tracker,
		Controller: controller,
		TickRate:   tickRate,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, sess.Close(ctx))
	}()

	watcher := &walkWatcher{
		logger: logger,
		policy: sess.VisibilityPolicy(),
		joints: sess.Joints(),
		done:   make(chan struct{}),
	}
	sess.Sequencer().AddListener(watcher)
	sess.VisibilityPolicy().AddListener(watcher)

	if err := sess.Start(ctx); err != nil {
		return err
	}
	logger.Infow("session running", "session_id", sess.ID(), "joints", len(sess.Joints()))

	if auto > 0 {
		utils.PanicCapturingGo(func() {
			pressAdvance(ctx, controller, auto, watcher.done)
		})
	}

	select {
	case <-ctx.Done():
	case <-watcher.done:
	}

	for _, status := range sess.Status() {
		if !status.Tracked {
			logger.Infow("anchor never tracked", "marker_id", status.MarkerID)
			continue
		}
		pt := status.Pose.Point()
		logger.Infow("anchor", "marker_id", status.MarkerID, "x", pt.X, "y", pt.Y, "z", pt.Z)
	}
	return nil
}

// pressAdvance fires scripted advance presses until the walk completes.
func pressAdvance(ctx context.Context, controller *inputfake.Controller, every time.Duration, done <-chan struct{}) {
	for {
		if !utils.SelectContextOrWait(ctx, every) {
			return
		}
		select {
		case <-done:
			return
		default:
		}
		press := input.Event{Event: input.ButtonPress, Control: session.DefaultAdvanceButton, Value: 1}
		if err := controller.TriggerEvent(ctx, press); err != nil {
			logger.Errorw("cannot press advance", "error", err)
			return
		}
		release := input.Event{Event: input.ButtonRelease, Control: session.DefaultAdvanceButton}
		if err := controller.TriggerEvent(ctx, release); err != nil {
			logger.Errorw("cannot release advance", "error", err)
			return
		}
	}
}

// walkWatcher logs walk progress. Its callbacks run while the session lock
// is held, so it reads only its own captured state and the policy.
type walkWatcher struct {
	logger golog.Logger
	policy *visibility.Policy
	joints []config.Joint
	once   sync.Once
	done   chan struct{}
}

func (w *walkWatcher) StepChanged(phase sequence.Phase, jointIndex int) {
	if phase != sequence.PhaseStepping || jointIndex >= len(w.joints) {
		w.logger.Infow("step changed", "phase", phase, "joint_index", jointIndex)
		return
	}
	joint := w.joints[jointIndex]
	w.logger.Infow("step changed",
		"phase", phase,
		"joint_index", jointIndex,
		"joint_id", joint.ID,
		"marker_id", joint.MarkerID,
	)
}

func (w *walkWatcher) SequenceComplete() {
	w.logger.Info("assignment walk complete")
	w.once.Do(func() {
		close(w.done)
	})
}

func (w *walkWatcher) VisibilityChanged(jointID int, visible bool) {
	if !visible {
		w.logger.Infow("joint hidden", "joint_id", jointID)
		return
	}
	if pose, ok := w.policy.JointWorldPose(jointID); ok {
		pt := pose.Point()
		w.logger.Infow("joint shown", "joint_id", jointID, "x", pt.X, "y", pt.Y, "z", pt.Z)
		return
	}
	w.logger.Infow("joint shown", "joint_id", jointID)
}
