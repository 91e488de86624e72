package fake

import (
	"context"
	"testing"

	"go.viam.com/test"

	"github.com/michaelharrison1/DH-Parameter-Visualization/input"
)

func TestControls(t *testing.T) {
	c := NewController(input.ButtonSouth, input.ButtonEast)

	controls, err := c.Controls(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, controls, test.ShouldResemble, []input.Control{input.ButtonSouth, input.ButtonEast})

	events, err := c.Events(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events[input.ButtonSouth].Event, test.ShouldEqual, input.Connect)
}

func TestTriggerEvent(t *testing.T) {
	ctx := context.Background()
	c := NewController(input.ButtonSouth)

	var presses []input.Event
	err := c.RegisterControlCallback(ctx, input.ButtonSouth, []input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) {
			presses = append(presses, ev)
		})
	test.That(t, err, test.ShouldBeNil)

	press := input.Event{Event: input.ButtonPress, Control: input.ButtonSouth, Value: 1}
	test.That(t, c.TriggerEvent(ctx, press), test.ShouldBeNil)
	test.That(t, len(presses), test.ShouldEqual, 1)
	test.That(t, presses[0].Value, test.ShouldEqual, 1)
	test.That(t, presses[0].Time.IsZero(), test.ShouldBeFalse)

	// releases are not registered and do not fire the callback
	release := input.Event{Event: input.ButtonRelease, Control: input.ButtonSouth}
	test.That(t, c.TriggerEvent(ctx, release), test.ShouldBeNil)
	test.That(t, len(presses), test.ShouldEqual, 1)

	events, err := c.Events(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events[input.ButtonSouth].Event, test.ShouldEqual, input.ButtonRelease)

	err = c.TriggerEvent(ctx, input.Event{Event: input.ButtonPress, Control: input.ButtonNorth})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown control")
}

func TestButtonChangeExpansion(t *testing.T) {
	ctx := context.Background()
	c := NewController(input.ButtonSouth)

	var seen []input.EventType
	err := c.RegisterControlCallback(ctx, input.ButtonSouth, []input.EventType{input.ButtonChange},
		func(ctx context.Context, ev input.Event) {
			seen = append(seen, ev.Event)
		})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, c.TriggerEvent(ctx, input.Event{Event: input.ButtonPress, Control: input.ButtonSouth, Value: 1}), test.ShouldBeNil)
	test.That(t, c.TriggerEvent(ctx, input.Event{Event: input.ButtonRelease, Control: input.ButtonSouth}), test.ShouldBeNil)
	test.That(t, seen, test.ShouldResemble, []input.EventType{input.ButtonPress, input.ButtonRelease})
}

func TestAllEventsAdditive(t *testing.T) {
	ctx := context.Background()
	c := NewController(input.ButtonSouth)

	var specific, all int
	err := c.RegisterControlCallback(ctx, input.ButtonSouth, []input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) { specific++ })
	test.That(t, err, test.ShouldBeNil)
	err = c.RegisterControlCallback(ctx, input.ButtonSouth, []input.EventType{input.AllEvents},
		func(ctx context.Context, ev input.Event) { all++ })
	test.That(t, err, test.ShouldBeNil)

	test.That(t, c.TriggerEvent(ctx, input.Event{Event: input.ButtonPress, Control: input.ButtonSouth, Value: 1}), test.ShouldBeNil)
	test.That(t, specific, test.ShouldEqual, 1)
	test.That(t, all, test.ShouldEqual, 1)
}

func TestNilCallbackUnregisters(t *testing.T) {
	ctx := context.Background()
	c := NewController(input.ButtonSouth)

	var count int
	err := c.RegisterControlCallback(ctx, input.ButtonSouth, []input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) { count++ })
	test.That(t, err, test.ShouldBeNil)

	err = c.RegisterControlCallback(ctx, input.ButtonSouth, []input.EventType{input.ButtonPress}, nil)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, c.TriggerEvent(ctx, input.Event{Event: input.ButtonPress, Control: input.ButtonSouth, Value: 1}), test.ShouldBeNil)
	test.That(t, count, test.ShouldEqual, 0)
}

func TestCallbackMayReenter(t *testing.T) {
	ctx := context.Background()
	c := NewController(input.ButtonSouth)

	var events map[input.Control]input.Event
	err := c.RegisterControlCallback(ctx, input.ButtonSouth, []input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) {
			events, _ = c.Events(ctx)
		})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, c.TriggerEvent(ctx, input.Event{Event: input.ButtonPress, Control: input.ButtonSouth, Value: 1}), test.ShouldBeNil)
	test.That(t, events[input.ButtonSouth].Event, test.ShouldEqual, input.ButtonPress)
}
