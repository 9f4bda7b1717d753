package attendees

import "errors"

var (
	// ErrNotFound is returned when an attendee id does not exist in the store.
	ErrNotFound = errors.New("attendee not found")
	// ErrCapacityExceeded is returned when a registration would push the
	// attendee count past the configured limit. No write is performed.
	ErrCapacityExceeded = errors.New("registration capacity exceeded")
)
