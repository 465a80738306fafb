// Package validate implements the range checks for stimulus events.
//
// The timeline core deliberately does not re-validate ranges on AddEvent:
// this package is the explicit validation boundary that editing surfaces
// run before mutating a timeline, kept UI-free so it is unit-testable on
// its own.
package validate

import (
	"errors"
	"fmt"

	"github.com/stimflow/stimflow/pkg/timeline"
)

// ErrValidation classifies every field-level constraint violation.
var ErrValidation = errors.New("validate: invalid stimulus event")

// Marker code bounds for hardware trigger channels.
const (
	MinMarkerCode = 1
	MaxMarkerCode = 255
)

// FieldError reports a single field violating its documented constraint.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validate: %s: %s", e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// Event checks every field constraint of a single event and returns all
// violations found, or nil when the event is valid.
func Event(e *timeline.StimulusEvent) []error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)})
	}

	if e.OnsetMS < 0 {
		fail("onset_ms", "must be >= 0, got %d", e.OnsetMS)
	}
	if e.DurationMS <= 0 {
		fail("duration_ms", "must be > 0, got %d", e.DurationMS)
	}
	if e.Payload == nil {
		fail("payload", "missing payload")
		return errs
	}
	if e.Payload.File() == "" {
		fail("file_path", "must not be empty")
	}
	if m := e.Payload.Marker(); m != 0 && (m < MinMarkerCode || m > MaxMarkerCode) {
		fail("marker_code", "must be in [%d, %d], got %d", MinMarkerCode, MaxMarkerCode, m)
	}

	switch p := e.Payload.(type) {
	case *timeline.ImagePayload:
		if e.Kind != timeline.KindImage {
			fail("event_type", "image payload on %s event", e.Kind)
		}
		if p.Position.String() == "unknown" {
			fail("position", "unknown position value")
		}
	case *timeline.AudioPayload:
		if e.Kind != timeline.KindAudio {
			fail("event_type", "audio payload on %s event", e.Kind)
		}
		if p.Volume < 0 || p.Volume > 1 {
			fail("volume", "must be in [0.0, 1.0], got %g", p.Volume)
		}
	}
	return errs
}

// Timeline validates every event of a timeline, returning the violations
// keyed by event position in timeline order.
func Timeline(t *timeline.Timeline) map[int][]error {
	var out map[int][]error
	for i, e := range t.Events {
		if errs := Event(e); len(errs) > 0 {
			if out == nil {
				out = make(map[int][]error)
			}
			out[i] = errs
		}
	}
	return out
}
