package model

import "time"

const (
	BookingEventCreated   = "booking.created"
	BookingEventAmended   = "booking.amended"
	BookingEventCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking changed the availability
// counters. Previous is set only for amendments.
type BookingEvent struct {
	EventID         string       `json:"event_id" bson:"_id"`
	Type            string       `json:"type" bson:"type"`
	BookingID       string       `json:"booking_id" bson:"booking_id"`
	AccommodationID string       `json:"accommodation_id" bson:"accommodation_id"`
	UserID          string       `json:"user_id" bson:"user_id"`
	StartDate       string       `json:"start_date" bson:"start_date"`
	Nights          int          `json:"nights" bson:"nights"`
	Rooms           int          `json:"rooms" bson:"rooms"`
	Previous        *BookingStay `json:"previous,omitempty" bson:"previous,omitempty"`
	OccurredAt      time.Time    `json:"occurred_at" bson:"occurred_at"`
	RecordedAt      time.Time    `json:"recorded_at,omitempty" bson:"recorded_at"`
}

type BookingStay struct {
	StartDate string `json:"start_date" bson:"start_date"`
	Nights    int    `json:"nights" bson:"nights"`
	Rooms     int    `json:"rooms" bson:"rooms"`
}
