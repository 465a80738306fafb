package timeline

import "sort"

// DefaultName is the metadata name of a freshly created timeline.
const DefaultName = "Untitled Test"

// Metadata holds test-level information about a timeline.
type Metadata struct {
	Name        string
	Description string
	// DurationMS always equals max(onset+duration) over all events, or 0 when
	// the timeline is empty. Recomputed synchronously after every mutation.
	DurationMS int64
}

// Timeline is an ordered collection of stimulus events.
//
// Events is always sorted ascending by OnsetMS, ties broken by insertion
// order. Mutation methods re-establish the sort and duration invariants
// before returning, so a reader that is externally synchronized against
// writers always observes a fully consistent timeline. The timeline itself
// provides no internal locking; single-writer usage is the caller's
// responsibility.
type Timeline struct {
	Events   []*StimulusEvent
	Metadata Metadata
}

// New creates an empty timeline with default metadata.
func New() *Timeline {
	return &Timeline{Metadata: Metadata{Name: DefaultName}}
}

// AddEvent inserts an event and re-establishes the sort and duration
// invariants. Overlapping and duplicate timings are legal: multi-modal
// synchrony is the intended use case. Range validation of the event's fields
// is the caller's responsibility (see the validate package); AddEvent does
// not re-check it.
func (t *Timeline) AddEvent(e *StimulusEvent) {
	t.Events = append(t.Events, e)
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].OnsetMS < t.Events[j].OnsetMS
	})
	t.recomputeDuration()
}

// RemoveEvent removes the event with the given ID and reports whether it was
// present. Removing an absent ID is a no-op.
func (t *Timeline) RemoveEvent(id string) bool {
	for i, e := range t.Events {
		if e.ID == id {
			t.Events = append(t.Events[:i], t.Events[i+1:]...)
			t.recomputeDuration()
			return true
		}
	}
	return false
}

// FindEvent returns the event with the given ID.
func (t *Timeline) FindEvent(id string) (*StimulusEvent, error) {
	for _, e := range t.Events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrEventNotFound
}

// EventsAt returns every event active at tMS, in timeline order. The interval
// test is inclusive on both ends, widened by toleranceMS on each side. This
// is the scheduling query the playback driver polls on its clock tick, and
// the synchronization inspection used while editing.
func (t *Timeline) EventsAt(tMS, toleranceMS int64) []*StimulusEvent {
	var active []*StimulusEvent
	for _, e := range t.Events {
		if e.ActiveAt(tMS, toleranceMS) {
			active = append(active, e)
		}
	}
	return active
}

func (t *Timeline) recomputeDuration() {
	var max int64
	for _, e := range t.Events {
		if end := e.End(); end > max {
			max = end
		}
	}
	t.Metadata.DurationMS = max
}
