package availability

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHold              = errors.New("invalid hold")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrVersionConflict          = errors.New("accommodation version conflict")
	ErrConflictRetriesExhausted = errors.New("too many concurrent updates")
)

// ShortfallError names the first date of a stay that cannot cover the
// requested rooms. It matches ErrInsufficientAvailability with errors.Is.
type ShortfallError struct {
	Date      string
	Available int
	Requested int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: %d rooms available on %s, %d requested",
		ErrInsufficientAvailability, e.Available, e.Date, e.Requested)
}

func (e *ShortfallError) Is(target error) bool {
	return target == ErrInsufficientAvailability
}
