package timeline

import (
	"errors"
	"testing"
)

func img(onsetMS, durationMS int64, file string) *StimulusEvent {
	return NewImageEvent(onsetMS, durationMS, ImagePayload{FilePath: file})
}

func aud(onsetMS, durationMS int64, file string, volume float64) *StimulusEvent {
	return NewAudioEvent(onsetMS, durationMS, AudioPayload{FilePath: file, Volume: volume})
}

func TestNewDefaults(t *testing.T) {
	tl := New()

	if tl.Metadata.Name != DefaultName {
		t.Errorf("Name = %q, want %q", tl.Metadata.Name, DefaultName)
	}
	if len(tl.Events) != 0 {
		t.Errorf("expected empty timeline, got %d events", len(tl.Events))
	}
	if tl.Metadata.DurationMS != 0 {
		t.Errorf("DurationMS = %d, want 0", tl.Metadata.DurationMS)
	}
}

func TestAddEventSortsByOnset(t *testing.T) {
	tl := New()
	tl.AddEvent(img(1000, 2000, "img1.png"))
	tl.AddEvent(aud(500, 1500, "sound1.wav", 1.0))

	if len(tl.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(tl.Events))
	}
	if tl.Events[0].OnsetMS != 500 {
		t.Errorf("Events[0].OnsetMS = %d, want 500", tl.Events[0].OnsetMS)
	}
	if tl.Events[1].OnsetMS != 1000 {
		t.Errorf("Events[1].OnsetMS = %d, want 1000", tl.Events[1].OnsetMS)
	}
}

func TestAddEventStableTies(t *testing.T) {
	tl := New()
	first := img(1000, 500, "a.png")
	second := aud(1000, 500, "b.wav", 1.0)
	tl.AddEvent(first)
	tl.AddEvent(second)

	if tl.Events[0].ID != first.ID || tl.Events[1].ID != second.ID {
		t.Error("events with equal onset should keep insertion order")
	}
}

func TestDurationInvariant(t *testing.T) {
	tl := New()

	e1 := img(1000, 2000, "img1.png")
	tl.AddEvent(e1)
	if tl.Metadata.DurationMS != 3000 {
		t.Errorf("DurationMS = %d, want 3000", tl.Metadata.DurationMS)
	}

	tl.AddEvent(img(0, 500, "img2.png"))
	if tl.Metadata.DurationMS != 3000 {
		t.Errorf("DurationMS = %d, want 3000", tl.Metadata.DurationMS)
	}

	e3 := img(2500, 1000, "img3.png")
	tl.AddEvent(e3)
	if tl.Metadata.DurationMS != 3500 {
		t.Errorf("DurationMS = %d, want 3500", tl.Metadata.DurationMS)
	}

	tl.RemoveEvent(e3.ID)
	if tl.Metadata.DurationMS != 3000 {
		t.Errorf("DurationMS after remove = %d, want 3000", tl.Metadata.DurationMS)
	}

	tl.RemoveEvent(e1.ID)
	tl.RemoveEvent(tl.Events[0].ID)
	if tl.Metadata.DurationMS != 0 {
		t.Errorf("DurationMS after removing all = %d, want 0", tl.Metadata.DurationMS)
	}
}

func TestRemoveEvent(t *testing.T) {
	tl := New()
	e1 := img(1000, 2000, "img1.png")
	e2 := aud(500, 1500, "sound1.wav", 1.0)
	tl.AddEvent(e1)
	tl.AddEvent(e2)

	if !tl.RemoveEvent(e1.ID) {
		t.Error("RemoveEvent returned false for a present event")
	}
	if len(tl.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(tl.Events))
	}
	if tl.Events[0].Kind != KindAudio {
		t.Errorf("remaining event kind = %v, want audio", tl.Events[0].Kind)
	}

	// Removing an absent ID is a no-op
	if tl.RemoveEvent(e1.ID) {
		t.Error("RemoveEvent returned true for an absent event")
	}
	if len(tl.Events) != 1 {
		t.Errorf("no-op removal changed event count to %d", len(tl.Events))
	}
}

func TestFindEvent(t *testing.T) {
	tl := New()
	e := img(0, 500, "img.png")
	tl.AddEvent(e)

	got, err := tl.FindEvent(e.ID)
	if err != nil {
		t.Fatalf("FindEvent: %v", err)
	}
	if got != e {
		t.Error("FindEvent returned a different event")
	}

	if _, err := tl.FindEvent("no-such-id"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestActiveAtBoundary(t *testing.T) {
	e := img(1000, 2000, "img.png")

	tests := []struct {
		t      int64
		active bool
	}{
		{999, false},
		{1000, true}, // active exactly at onset
		{1500, true},
		{3000, true}, // active exactly at end
		{3001, false},
	}

	for _, tt := range tests {
		if got := e.ActiveAt(tt.t, 0); got != tt.active {
			t.Errorf("ActiveAt(%d, 0) = %v, want %v", tt.t, got, tt.active)
		}
	}
}

func TestEventsAtTolerance(t *testing.T) {
	tl := New()
	tl.AddEvent(img(1000, 2000, "img.png"))

	tests := []struct {
		t         int64
		tolerance int64
		count     int
	}{
		{950, 0, 0},
		{950, 50, 1},
		{949, 50, 0},
		{3050, 50, 1},
		{3051, 50, 0},
	}

	for _, tt := range tests {
		got := len(tl.EventsAt(tt.t, tt.tolerance))
		if got != tt.count {
			t.Errorf("EventsAt(%d, %d) = %d events, want %d", tt.t, tt.tolerance, got, tt.count)
		}
	}
}

// TestSynchronizationScenario exercises a realistic attention task: fixation
// cross, audio cue, target image with synchronized tone, late distractor.
func TestSynchronizationScenario(t *testing.T) {
	tl := New()
	tl.AddEvent(img(0, 500, "fixation.png"))
	tl.AddEvent(aud(500, 200, "beep.wav", 0.8))
	tl.AddEvent(img(1000, 2000, "target.png"))
	tl.AddEvent(aud(1000, 1000, "tone.wav", 1.0))
	tl.AddEvent(img(2500, 1000, "distractor.png"))

	// At 250ms: only the fixation cross
	active := tl.EventsAt(250, 0)
	if len(active) != 1 || active[0].Payload.File() != "fixation.png" {
		t.Errorf("at 250ms: got %d events, want exactly the fixation cross", len(active))
	}

	// At 600ms: only the beep
	active = tl.EventsAt(600, 0)
	if len(active) != 1 || active[0].Payload.File() != "beep.wav" {
		t.Errorf("at 600ms: got %d events, want exactly the beep", len(active))
	}

	// At 1500ms: target image and tone, synchronized
	active = tl.EventsAt(1500, 0)
	if len(active) != 2 {
		t.Fatalf("at 1500ms: got %d events, want 2", len(active))
	}
	kinds := map[Kind]bool{}
	for _, e := range active {
		kinds[e.Kind] = true
	}
	if !kinds[KindImage] || !kinds[KindAudio] {
		t.Error("at 1500ms: expected one image and one audio event")
	}

	// At 2700ms: target image and distractor, both images
	active = tl.EventsAt(2700, 0)
	if len(active) != 2 {
		t.Fatalf("at 2700ms: got %d events, want 2", len(active))
	}
	for _, e := range active {
		if e.Kind != KindImage {
			t.Errorf("at 2700ms: got %v event, want images only", e.Kind)
		}
	}

	// Past the end: nothing
	if active := tl.EventsAt(4000, 0); len(active) != 0 {
		t.Errorf("at 4000ms: got %d events, want 0", len(active))
	}
}

func TestKindAndPositionParsing(t *testing.T) {
	if k, err := ParseKind("image"); err != nil || k != KindImage {
		t.Errorf("ParseKind(image) = %v, %v", k, err)
	}
	if k, err := ParseKind("audio"); err != nil || k != KindAudio {
		t.Errorf("ParseKind(audio) = %v, %v", k, err)
	}
	if _, err := ParseKind("video"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("ParseKind(video) error = %v, want ErrBadFormat", err)
	}

	positions := []string{"center", "top-left", "top-right", "bottom-left", "bottom-right"}
	for _, s := range positions {
		p, err := ParsePosition(s)
		if err != nil {
			t.Errorf("ParsePosition(%q): %v", s, err)
			continue
		}
		if p.String() != s {
			t.Errorf("ParsePosition(%q).String() = %q", s, p.String())
		}
	}
	if _, err := ParsePosition("middle"); !errors.Is(err, ErrBadFormat) {
		t.Errorf("ParsePosition(middle) error = %v, want ErrBadFormat", err)
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		e := img(0, 1, "x.png")
		if seen[e.ID] {
			t.Fatalf("duplicate event ID %q", e.ID)
		}
		seen[e.ID] = true
	}
}
