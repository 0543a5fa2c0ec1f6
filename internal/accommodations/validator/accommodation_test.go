package validator

import (
	"errors"
	"io"
	"math"
	"testing"

	"lodging/pkg/logger"
	"lodging/pkg/model"
	"lodging/pkg/validation"
)

func newTestValidator() *AccommodationValidator {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard})
	return NewAccommodationValidator(log, 30, 20)
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		acc       *model.Accommodation
		wantField string
	}{
		{
			name: "valid with counters",
			acc: &model.Accommodation{
				Type:                 model.AccommodationHotel,
				Location:             "Paris",
				AvailableRoomsByDate: map[string]int{"2024-07-01": 3, "2024-07-02": 0},
			},
		},
		{
			name: "valid without counters",
			acc:  &model.Accommodation{Type: model.AccommodationVilla, Location: "Rome"},
		},
		{
			name:      "unknown type",
			acc:       &model.Accommodation{Type: "Castle", Location: "Rome"},
			wantField: "type",
		},
		{
			name:      "unknown location",
			acc:       &model.Accommodation{Type: model.AccommodationHostel, Location: "Atlantis"},
			wantField: "location",
		},
		{
			name: "negative count",
			acc: &model.Accommodation{
				Type:                 model.AccommodationHotel,
				Location:             "Tokyo",
				AvailableRoomsByDate: map[string]int{"2024-07-01": -1},
			},
			wantField: "available_rooms_by_date[2024-07-01]",
		},
		{
			name: "above the per-date maximum",
			acc: &model.Accommodation{
				Type:                 model.AccommodationHotel,
				Location:             "Tokyo",
				AvailableRoomsByDate: map[string]int{"2024-07-01": 21},
			},
			wantField: "available_rooms_by_date[2024-07-01]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.acc)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}

			var errs validation.ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("Validate() error = %v, want ValidationErrors", err)
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()

	short := "A"
	if err := v.ValidateUpdate(&model.AccommodationUpdate{Name: &short}); err == nil {
		t.Error("expected error for a one-letter name")
	}
	if err := v.ValidateUpdate(&model.AccommodationUpdate{AvailableRoomsByDate: map[string]int{"2024-07-01": 25}}); err == nil {
		t.Error("expected error for a count above the maximum")
	}
	if err := v.ValidateUpdate(&model.AccommodationUpdate{Type: model.AccommodationApartment}); err != nil {
		t.Errorf("ValidateUpdate() unexpected error: %v", err)
	}
}

func TestValidateSearch(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		search  model.AccommodationSearch
		wantErr bool
	}{
		{name: "type and location", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London"}},
		{name: "with stay", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London", StartDate: "2024-07-01", Nights: 2, Rooms: 1}},
		{name: "missing location", search: model.AccommodationSearch{Type: model.AccommodationHotel}, wantErr: true},
		{name: "bad date", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London", StartDate: "July 1"}, wantErr: true},
		{name: "negative rooms", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London", Rooms: -1}, wantErr: true},
		{name: "longest bookable stay", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London", StartDate: "2024-07-01", Nights: 30}},
		{name: "too many nights", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London", StartDate: "2024-07-01", Nights: 31}, wantErr: true},
		{name: "huge nights", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London", StartDate: "2024-07-01", Nights: math.MaxInt}, wantErr: true},
		{name: "more rooms than any date holds", search: model.AccommodationSearch{Type: model.AccommodationHotel, Location: "London", Rooms: 21}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSearch(&tt.search)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSearch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
