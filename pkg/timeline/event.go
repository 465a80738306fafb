// Package timeline implements the stimulus timeline core: the event model,
// point-in-time scheduling queries, and the canonical JSON document form
// consumed by the export formatters and the playback driver.
package timeline

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies the stimulus modality of an event.
type Kind uint8

const (
	KindImage Kind = iota
	KindAudio
)

// String returns the wire name of the kind ("image", "audio").
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// ParseKind parses a wire-format kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "image":
		return KindImage, nil
	case "audio":
		return KindAudio, nil
	default:
		return 0, fmt.Errorf("%w: unknown event_type %q", ErrBadFormat, s)
	}
}

// Position places an image stimulus on the presentation surface.
type Position uint8

const (
	PosCenter Position = iota
	PosTopLeft
	PosTopRight
	PosBottomLeft
	PosBottomRight
)

// String returns the wire name of the position.
func (p Position) String() string {
	switch p {
	case PosCenter:
		return "center"
	case PosTopLeft:
		return "top-left"
	case PosTopRight:
		return "top-right"
	case PosBottomLeft:
		return "bottom-left"
	case PosBottomRight:
		return "bottom-right"
	default:
		return "unknown"
	}
}

// ParsePosition parses a wire-format position name.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "center":
		return PosCenter, nil
	case "top-left":
		return PosTopLeft, nil
	case "top-right":
		return PosTopRight, nil
	case "bottom-left":
		return PosBottomLeft, nil
	case "bottom-right":
		return PosBottomRight, nil
	default:
		return 0, fmt.Errorf("%w: unknown position %q", ErrBadFormat, s)
	}
}

// Payload holds the kind-specific attributes of a stimulus event.
// Exactly two shapes exist: ImagePayload and AudioPayload.
type Payload interface {
	// File returns the stimulus file path.
	File() string
	// Marker returns the hardware marker code, or 0 when unset.
	// Exporters substitute DefaultMarkerCode for 0.
	Marker() int
	// Extras returns the open extension map holding unknown data keys
	// carried through load/save for forward compatibility.
	Extras() map[string]any
}

// DefaultMarkerCode is used by exporters when an event carries no marker code.
const DefaultMarkerCode = 1

// ImagePayload describes a visual stimulus.
type ImagePayload struct {
	FilePath   string
	Position   Position
	MarkerCode int // 0 = unset
	Extra      map[string]any
}

func (p *ImagePayload) File() string           { return p.FilePath }
func (p *ImagePayload) Marker() int            { return p.MarkerCode }
func (p *ImagePayload) Extras() map[string]any { return p.Extra }

// AudioPayload describes an auditory stimulus.
type AudioPayload struct {
	FilePath   string
	Volume     float64 // 0.0 to 1.0 inclusive
	MarkerCode int     // 0 = unset
	Extra      map[string]any
}

func (p *AudioPayload) File() string           { return p.FilePath }
func (p *AudioPayload) Marker() int            { return p.MarkerCode }
func (p *AudioPayload) Extras() map[string]any { return p.Extra }

// StimulusEvent is one scheduled stimulus occurrence on a timeline.
// The ID is assigned at construction and is stable for the lifetime of the
// event; it is used for lookup and removal only, never for ordering, and is
// not serialized. Timing and payload fields may be edited in place.
type StimulusEvent struct {
	ID         string
	Kind       Kind
	OnsetMS    int64
	DurationMS int64
	Payload    Payload
}

// NewImageEvent creates an image stimulus event with a fresh identifier.
func NewImageEvent(onsetMS, durationMS int64, p ImagePayload) *StimulusEvent {
	return &StimulusEvent{
		ID:         uuid.NewString(),
		Kind:       KindImage,
		OnsetMS:    onsetMS,
		DurationMS: durationMS,
		Payload:    &p,
	}
}

// NewAudioEvent creates an audio stimulus event with a fresh identifier.
func NewAudioEvent(onsetMS, durationMS int64, p AudioPayload) *StimulusEvent {
	return &StimulusEvent{
		ID:         uuid.NewString(),
		Kind:       KindAudio,
		OnsetMS:    onsetMS,
		DurationMS: durationMS,
		Payload:    &p,
	}
}

// End returns the instant the event stops being active, in milliseconds.
func (e *StimulusEvent) End() int64 {
	return e.OnsetMS + e.DurationMS
}

// ActiveAt reports whether the event is active at t. The interval test is
// inclusive on both ends: an event is active exactly at its onset and exactly
// at its end instant.
func (e *StimulusEvent) ActiveAt(tMS, toleranceMS int64) bool {
	return e.OnsetMS-toleranceMS <= tMS && tMS <= e.End()+toleranceMS
}
