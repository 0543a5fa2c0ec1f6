package availability

import "fmt"

// Hold is one booking's claim on an accommodation: Rooms rooms on each of
// the Nights calendar days starting at StartDate.
type Hold struct {
	StartDate string
	Nights    int
	Rooms     int
}

func (h Hold) Validate() error {
	if h.Nights <= 0 {
		return fmt.Errorf("%w: nights must be positive, got %d", ErrInvalidHold, h.Nights)
	}
	if h.Nights > MaxStayNights {
		return fmt.Errorf("%w: nights must be at most %d, got %d", ErrInvalidHold, MaxStayNights, h.Nights)
	}
	if h.Rooms <= 0 {
		return fmt.Errorf("%w: rooms must be positive, got %d", ErrInvalidHold, h.Rooms)
	}
	_, err := ParseDate(h.StartDate)
	return err
}

func (h Hold) Dates() ([]string, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return StayDates(h.StartDate, h.Nights)
}

// FirstShortfall returns the earliest date whose counter is below h.Rooms,
// or nil when the stay fits. Missing dates count as zero.
func FirstShortfall(counters map[string]int, h Hold) (*ShortfallError, error) {
	dates, err := h.Dates()
	if err != nil {
		return nil, err
	}
	for _, date := range dates {
		if available := counters[date]; available < h.Rooms {
			return &ShortfallError{Date: date, Available: available, Requested: h.Rooms}, nil
		}
	}
	return nil, nil
}

// Check reports whether every night of h has at least h.Rooms available.
func Check(counters map[string]int, h Hold) (bool, error) {
	shortfall, err := FirstShortfall(counters, h)
	if err != nil {
		return false, err
	}
	return shortfall == nil, nil
}
