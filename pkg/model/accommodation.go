package model

import "time"

const (
	AccommodationHotel      = "Hotel"
	AccommodationHostel     = "Hostel"
	AccommodationApartment  = "Apartment"
	AccommodationVilla      = "Villa"
	AccommodationGuesthouse = "Guesthouse"
)

var AccommodationTypes = []string{
	AccommodationHotel,
	AccommodationHostel,
	AccommodationApartment,
	AccommodationVilla,
	AccommodationGuesthouse,
}

var AccommodationLocations = []string{
	"New York",
	"London",
	"Tokyo",
	"Paris",
	"Sydney",
	"Dubai",
	"Berlin",
	"Rome",
	"Toronto",
	"Mexico City",
}

// Accommodation holds the sparse per-date room counters. A date missing from
// AvailableRoomsByDate has zero rooms available. Version increases on every
// counter write and guards compare-and-swap updates.
type Accommodation struct {
	ID                   string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name                 string         `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Type                 string         `json:"type" bson:"type" validate:"required,accommodation_type"`
	Location             string         `json:"location" bson:"location" validate:"required,accommodation_location"`
	AvailableRoomsByDate map[string]int `json:"available_rooms_by_date" bson:"available_rooms_by_date" validate:"omitempty,dive,keys,stay_date,endkeys,min=0"`
	Version              int64          `json:"version" bson:"version"`
	CreatedAt            time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" bson:"updated_at"`
}

// AccommodationUpdate carries a partial update. Entries of
// AvailableRoomsByDate are absolute counts merged into the stored map.
type AccommodationUpdate struct {
	Name                 *string        `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Type                 string         `json:"type,omitempty" validate:"omitempty,accommodation_type"`
	Location             string         `json:"location,omitempty" validate:"omitempty,accommodation_location"`
	AvailableRoomsByDate map[string]int `json:"available_rooms_by_date,omitempty" validate:"omitempty,dive,keys,stay_date,endkeys,min=0"`
}

// AccommodationSearch is the equality query on type and location, optionally
// narrowed to accommodations that can hold the given stay.
type AccommodationSearch struct {
	Type      string `validate:"required,accommodation_type"`
	Location  string `validate:"required,accommodation_location"`
	StartDate string `validate:"omitempty,stay_date"`
	Nights    int    `validate:"omitempty,min=1"`
	Rooms     int    `validate:"omitempty,min=1"`
}

func (s AccommodationSearch) HasStay() bool {
	return s.StartDate != ""
}
