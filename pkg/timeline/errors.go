package timeline

import "errors"

var (
	// ErrBadFormat is returned when structured timeline data is malformed or
	// incomplete on load. Loading is all-or-nothing: no partial timeline is
	// ever returned alongside this error.
	ErrBadFormat = errors.New("timeline: malformed timeline data")

	// ErrEventNotFound is returned when an event lookup by ID fails.
	ErrEventNotFound = errors.New("timeline: event not found")
)
