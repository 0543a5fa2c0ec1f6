package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStaleBooking means the booking changed after it was read.
	ErrStaleBooking = errors.New("booking was modified concurrently")
)
