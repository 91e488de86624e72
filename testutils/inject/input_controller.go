package inject

import (
	"context"

	"github.com/pkg/errors"

	"github.com/michaelharrison1/DH-Parameter-Visualization/input"
)

// InputController is an injected input controller.
type InputController struct {
	input.Controller
	ControlsFunc func(ctx context.Context) ([]input.Control, error)
	EventsFunc   func(ctx context.Context) (map[input.Control]input.Event, error)
	RegisterControlCallbackFunc func(
		ctx context.Context,
		control input.Control,
		triggers []input.EventType,
		ctrlFunc input.ControlFunction,
	) error
	TriggerEventFunc func(ctx context.Context, event input.Event) error
}

// Controls calls the injected function or the real version.
func (c *InputController) Controls(ctx context.Context) ([]input.Control, error) {
	if c.ControlsFunc == nil {
		return c.Controller.Controls(ctx)
	}
	return c.ControlsFunc(ctx)
}

// Events calls the injected function or the real version.
func (c *InputController) Events(ctx context.Context) (map[input.Control]input.Event, error) {
	if c.EventsFunc == nil {
		return c.Controller.Events(ctx)
	}
	return c.EventsFunc(ctx)
}

// RegisterControlCallback calls the injected function or the real version.
func (c *InputController) RegisterControlCallback(
	ctx context.Context,
	control input.Control,
	triggers []input.EventType,
	ctrlFunc input.ControlFunction,
) error {
	if c.RegisterControlCallbackFunc == nil {
		return c.Controller.RegisterControlCallback(ctx, control, triggers, ctrlFunc)
	}
	return c.RegisterControlCallbackFunc(ctx, control, triggers, ctrlFunc)
}

// TriggerEvent calls the injected function if one is set. It errors when
// the real controller is not Triggerable.
func (c *InputController) TriggerEvent(ctx context.Context, event input.Event) error {
	if c.TriggerEventFunc == nil {
		triggerable, ok := c.Controller.(input.Triggerable)
		if !ok {
			return errors.New("controller is not Triggerable")
		}
		return triggerable.TriggerEvent(ctx, event)
	}
	return c.TriggerEventFunc(ctx, event)
}
