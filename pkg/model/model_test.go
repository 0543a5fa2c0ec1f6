package model_test

import (
	"io"
	"testing"

	"lodging/pkg/logger"
	"lodging/pkg/model"
	"lodging/pkg/validation"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestAccommodationTags(t *testing.T) {
	v := validation.New(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))

	tests := []struct {
		name    string
		acc     model.Accommodation
		wantErr bool
	}{
		{
			name: "valid",
			acc:  model.Accommodation{Type: model.AccommodationVilla, Location: "Rome", AvailableRoomsByDate: map[string]int{"2099-07-01": 4}},
		},
		{name: "no counters", acc: model.Accommodation{Type: model.AccommodationHotel, Location: "Tokyo"}},
		{name: "unknown type", acc: model.Accommodation{Type: "Castle", Location: "Rome"}, wantErr: true},
		{name: "unknown location", acc: model.Accommodation{Type: model.AccommodationHotel, Location: "Atlantis"}, wantErr: true},
		{
			name:    "bad date key",
			acc:     model.Accommodation{Type: model.AccommodationHotel, Location: "Rome", AvailableRoomsByDate: map[string]int{"07/01/2099": 1}},
			wantErr: true,
		},
		{
			name:    "negative counter",
			acc:     model.Accommodation{Type: model.AccommodationHotel, Location: "Rome", AvailableRoomsByDate: map[string]int{"2099-07-01": -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Struct(v, &tt.acc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookingRequestTags(t *testing.T) {
	v := validation.New(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
	valid := model.BookingRequest{AccommodationID: "507f1f77bcf86cd799439011", StartDate: "2099-07-01", Nights: 2, Rooms: 1}

	tests := []struct {
		name    string
		mutate  func(r *model.BookingRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *model.BookingRequest) {}},
		{name: "not an object id", mutate: func(r *model.BookingRequest) { r.AccommodationID = "abc" }, wantErr: true},
		{name: "impossible date", mutate: func(r *model.BookingRequest) { r.StartDate = "2099-02-30" }, wantErr: true},
		{name: "zero nights", mutate: func(r *model.BookingRequest) { r.Nights = 0 }, wantErr: true},
		{name: "zero rooms", mutate: func(r *model.BookingRequest) { r.Rooms = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := validation.Struct(v, &req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookingUpdateIsEmpty(t *testing.T) {
	if !(&model.BookingUpdate{}).IsEmpty() {
		t.Error("zero update should be empty")
	}
	if (&model.BookingUpdate{Rooms: intPtr(2)}).IsEmpty() {
		t.Error("update with rooms should not be empty")
	}
	if (&model.BookingUpdate{StartDate: strPtr("2099-07-01")}).IsEmpty() {
		t.Error("update with start date should not be empty")
	}
}

func TestAccommodationSearchHasStay(t *testing.T) {
	if (model.AccommodationSearch{Type: "Hotel", Location: "Rome"}).HasStay() {
		t.Error("search without a start date has no stay")
	}
	if !(model.AccommodationSearch{Type: "Hotel", Location: "Rome", StartDate: "2099-07-01"}).HasStay() {
		t.Error("search with a start date has a stay")
	}
}
