// Package fake implements an input controller whose events are injected
// by the caller instead of read from hardware.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/michaelharrison1/DH-Parameter-Visualization/input"
)

// Controller is an input.Controller that only ever reports events handed
// to it through TriggerEvent.
type Controller struct {
	mu         sync.Mutex
	controls   []input.Control
	callbacks  map[input.Control]map[input.EventType]input.ControlFunction
	lastEvents map[input.Control]input.Event
}

// NewController returns a controller exposing the given controls.
func NewController(controls ...input.Control) *Controller {
	c := &Controller{
		controls:   controls,
		callbacks:  map[input.Control]map[input.EventType]input.ControlFunction{},
		lastEvents: map[input.Control]input.Event{},
	}
	now := time.Now()
	for _, control := range controls {
		c.lastEvents[control] = input.Event{Time: now, Event: input.Connect, Control: control}
	}
	return c
}

// Controls returns the controls the controller was built with.
func (c *Controller) Controls(ctx context.Context) ([]input.Control, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]input.Control, len(c.controls))
	copy(out, c.controls)
	return out, nil
}

// Events returns the most recent event per control.
func (c *Controller) Events(ctx context.Context) (map[input.Control]input.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[input.Control]input.Event, len(c.lastEvents))
	for control, event := range c.lastEvents {
		out[control] = event
	}
	return out, nil
}

// RegisterControlCallback registers ctrlFunc to fire on the given triggers.
// ButtonChange registers for both press and release.
func (c *Controller) RegisterControlCallback(
	ctx context.Context,
	control input.Control,
	triggers []input.EventType,
	ctrlFunc input.ControlFunction,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.callbacks[control] == nil {
		c.callbacks[control] = make(map[input.EventType]input.ControlFunction)
	}
	for _, trigger := range triggers {
		if trigger == input.ButtonChange {
			c.callbacks[control][input.ButtonRelease] = ctrlFunc
			c.callbacks[control][input.ButtonPress] = ctrlFunc
		} else {
			c.callbacks[control][trigger] = ctrlFunc
		}
	}
	return nil
}

// TriggerEvent dispatches the event to matching callbacks on the calling
// goroutine. Callbacks run outside the controller's lock, so they may call
// back into it.
func (c *Controller) TriggerEvent(ctx context.Context, event input.Event) error {
	c.mu.Lock()
	known := false
	for _, control := range c.controls {
		if control == event.Control {
			known = true
			break
		}
	}
	if !known {
		c.mu.Unlock()
		return errors.Errorf("unknown control %q", event.Control)
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	c.lastEvents[event.Control] = event
	callbackMap := c.callbacks[event.Control]
	specific := callbackMap[event.Event]
	all := callbackMap[input.AllEvents]
	c.mu.Unlock()

	if specific != nil {
		specific(ctx, event)
	}
	if all != nil {
		all(ctx, event)
	}
	return nil
}
