// Package inject provides dependency injected collaborators for testing,
// where each method can be overridden per test.
package inject

import (
	"context"

	"github.com/michaelharrison1/DH-Parameter-Visualization/marker"
)

// Tracker is an injected marker tracker.
type Tracker struct {
	marker.Tracker
	ObservationsFunc func(ctx context.Context) ([]marker.Observation, error)
}

// Observations calls the injected function or the real version.
func (t *Tracker) Observations(ctx context.Context) ([]marker.Observation, error) {
	if t.ObservationsFunc == nil {
		return t.Tracker.Observations(ctx)
	}
	return t.ObservationsFunc(ctx)
}
