package availability

import (
	"fmt"
	"time"
)

// DateLayout is the key format of an accommodation's date counters.
const DateLayout = "2006-01-02"

// MaxStayNights bounds any stay the reconciler will expand into dates,
// whatever limit the caller configured.
const MaxStayNights = 3660

// ParseDate parses a YYYY-MM-DD calendar day as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidHold, s)
	}
	return t, nil
}

// FormatDate renders t as the UTC calendar day it falls on.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StayDates lists the nights of a stay: start, start+1d, ..., start+(nights-1)d.
// The checkout day is not included.
func StayDates(start string, nights int) ([]string, error) {
	if nights <= 0 {
		return nil, fmt.Errorf("%w: nights must be positive, got %d", ErrInvalidHold, nights)
	}
	if nights > MaxStayNights {
		return nil, fmt.Errorf("%w: nights must be at most %d, got %d", ErrInvalidHold, MaxStayNights, nights)
	}
	day, err := ParseDate(start)
	if err != nil {
		return nil, err
	}

	dates := make([]string, nights)
	for i := range dates {
		dates[i] = day.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates, nil
}
