package model

import (
	"time"
)

type Booking struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID          string    `json:"user_id" bson:"user_id" validate:"required"`
	AccommodationID string    `json:"accommodation_id" bson:"accommodation_id" validate:"required,mongodb"`
	StartDate       string    `json:"start_date" bson:"start_date" validate:"required,stay_date"`
	Nights          int       `json:"nights" bson:"nights" validate:"required,min=1"`
	Rooms           int       `json:"rooms" bson:"rooms" validate:"required,min=1"`
	Version         int64     `json:"version" bson:"version"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

type BookingRequest struct {
	AccommodationID string `json:"accommodation_id" validate:"required,mongodb"`
	StartDate       string `json:"start_date" validate:"required,stay_date"`
	Nights          int    `json:"nights" validate:"required,min=1"`
	Rooms           int    `json:"rooms" validate:"required,min=1"`
}

type BookingUpdate struct {
	StartDate *string `json:"start_date,omitempty" validate:"omitempty,stay_date"`
	Nights    *int    `json:"nights,omitempty" validate:"omitempty,min=1"`
	Rooms     *int    `json:"rooms,omitempty" validate:"omitempty,min=1"`
}

func (u *BookingUpdate) IsEmpty() bool {
	return u.StartDate == nil && u.Nights == nil && u.Rooms == nil
}
