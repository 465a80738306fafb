package timeline

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Document is the canonical serializable form of a timeline:
//
//	{ "metadata": {...}, "events": [ { "event_type", "timestamp_ms", "data": {...} } ] }
//
// The data object is kept as an open map so that keys this version does not
// recognize survive a load/save round trip. Export formatters consume this
// form rather than the in-memory Timeline.
type Document struct {
	Metadata DocMetadata `json:"metadata"`
	Events   []DocEvent  `json:"events"`
}

// DocMetadata mirrors Metadata in the wire schema.
type DocMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DurationMS  int64  `json:"duration_ms"`
}

// DocEvent is one event in the wire schema.
type DocEvent struct {
	EventType   string         `json:"event_type"`
	TimestampMS int64          `json:"timestamp_ms"`
	Data        map[string]any `json:"data"`
}

// Duration returns the event duration from the data object, 0 when absent.
func (e DocEvent) Duration() int64 {
	return asInt64(e.Data["duration_ms"])
}

// StimulusFile returns the stimulus file path from the data object.
func (e DocEvent) StimulusFile() string {
	s, _ := e.Data["file_path"].(string)
	return s
}

// Marker returns the marker code from the data object, substituting
// DefaultMarkerCode when the key is absent or zero.
func (e DocEvent) Marker() int {
	if v, ok := e.Data["marker_code"]; ok {
		if n := asInt64(v); n != 0 {
			return int(n)
		}
	}
	return DefaultMarkerCode
}

// asInt64 converts the numeric types a decoded JSON value may carry.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}

// ownedKeys lists the data keys the event model itself manages; everything
// else found on load is carried in the payload's Extra map.
var ownedKeys = map[string]bool{
	"file_path":   true,
	"duration_ms": true,
	"position":    true,
	"volume":      true,
	"marker_code": true,
}

// ToDocument produces the canonical structured form of the timeline.
func (t *Timeline) ToDocument() Document {
	doc := Document{
		Metadata: DocMetadata{
			Name:        t.Metadata.Name,
			Description: t.Metadata.Description,
			DurationMS:  t.Metadata.DurationMS,
		},
		Events: make([]DocEvent, 0, len(t.Events)),
	}
	for _, e := range t.Events {
		data := map[string]any{
			"file_path":   e.Payload.File(),
			"duration_ms": e.DurationMS,
		}
		switch p := e.Payload.(type) {
		case *ImagePayload:
			data["position"] = p.Position.String()
		case *AudioPayload:
			data["volume"] = p.Volume
		}
		if m := e.Payload.Marker(); m != 0 {
			data["marker_code"] = m
		}
		for k, v := range e.Payload.Extras() {
			data[k] = v
		}
		doc.Events = append(doc.Events, DocEvent{
			EventType:   e.Kind.String(),
			TimestampMS: e.OnsetMS,
			Data:        data,
		})
	}
	return doc
}

// FromDocument builds a timeline from the canonical structured form.
// The operation is all-or-nothing: any structural problem fails the whole
// load with an ErrBadFormat-classified error and no timeline is returned.
// Range validation (onset sign, duration positivity, volume and marker
// bounds) is not performed here; run the validate package afterwards.
func FromDocument(doc Document) (*Timeline, error) {
	t := New()
	if doc.Metadata.Name != "" {
		t.Metadata.Name = doc.Metadata.Name
	}
	t.Metadata.Description = doc.Metadata.Description

	for i, ev := range doc.Events {
		e, err := eventFromDoc(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		t.Events = append(t.Events, e)
	}

	// Re-establish invariants regardless of input order; the stored
	// duration_ms is recomputed, not trusted.
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].OnsetMS < t.Events[j].OnsetMS
	})
	t.recomputeDuration()
	return t, nil
}

func eventFromDoc(ev DocEvent) (*StimulusEvent, error) {
	if ev.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_type", ErrBadFormat)
	}
	kind, err := ParseKind(ev.EventType)
	if err != nil {
		return nil, err
	}
	if ev.Data == nil {
		return nil, fmt.Errorf("%w: missing data object", ErrBadFormat)
	}

	file, ok := ev.Data["file_path"].(string)
	if !ok || file == "" {
		return nil, fmt.Errorf("%w: missing file_path", ErrBadFormat)
	}
	durRaw, ok := ev.Data["duration_ms"]
	if !ok {
		return nil, fmt.Errorf("%w: missing duration_ms", ErrBadFormat)
	}
	duration := asInt64(durRaw)

	marker := 0
	if v, ok := ev.Data["marker_code"]; ok {
		marker = int(asInt64(v))
	}

	extra := extraKeys(ev.Data)

	switch kind {
	case KindImage:
		pos := PosCenter
		if v, ok := ev.Data["position"]; ok {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: position is not a string", ErrBadFormat)
			}
			pos, err = ParsePosition(s)
			if err != nil {
				return nil, err
			}
		}
		e := NewImageEvent(ev.TimestampMS, duration, ImagePayload{
			FilePath:   file,
			Position:   pos,
			MarkerCode: marker,
			Extra:      extra,
		})
		return e, nil
	default:
		volume := 1.0
		if v, ok := ev.Data["volume"]; ok {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: volume is not a number", ErrBadFormat)
			}
			volume = f
		}
		e := NewAudioEvent(ev.TimestampMS, duration, AudioPayload{
			FilePath:   file,
			Volume:     volume,
			MarkerCode: marker,
			Extra:      extra,
		})
		return e, nil
	}
}

func extraKeys(data map[string]any) map[string]any {
	var extra map[string]any
	for k, v := range data {
		if ownedKeys[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}

// Save writes the timeline to path as indented UTF-8 JSON.
func (t *Timeline) Save(fsys FS, path string) error {
	data, err := json.MarshalIndent(t.ToDocument(), "", "  ")
	if err != nil {
		return err
	}
	return fsys.WriteFile(path, append(data, '\n'), 0644)
}

// Load reads a timeline from path. Malformed content fails with an
// ErrBadFormat-classified error; filesystem failures surface as-is.
func Load(fsys FS, path string) (*Timeline, error) {
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return FromDocument(doc)
}
