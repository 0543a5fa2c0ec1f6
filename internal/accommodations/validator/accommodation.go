package validator

import (
	"fmt"
	"sort"

	"lodging/pkg/logger"
	"lodging/pkg/model"
	"lodging/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AccommodationValidator struct {
	validate        *validator.Validate
	maxNights       int
	maxRoomsPerDate int
}

func NewAccommodationValidator(log *logger.Logger, maxNights, maxRoomsPerDate int) *AccommodationValidator {
	return &AccommodationValidator{
		validate:        validation.New(log),
		maxNights:       maxNights,
		maxRoomsPerDate: maxRoomsPerDate,
	}
}

func (v *AccommodationValidator) Validate(acc *model.Accommodation) error {
	if err := validation.Struct(v.validate, acc); err != nil {
		return err
	}
	return v.validateRoomCounts(acc.AvailableRoomsByDate)
}

func (v *AccommodationValidator) ValidateUpdate(u *model.AccommodationUpdate) error {
	if err := validation.Struct(v.validate, u); err != nil {
		return err
	}
	return v.validateRoomCounts(u.AvailableRoomsByDate)
}

// ValidateSearch applies the same stay limits as a booking, so a search
// never asks for more nights or rooms than could be booked.
func (v *AccommodationValidator) ValidateSearch(s *model.AccommodationSearch) error {
	if err := validation.Struct(v.validate, s); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	if v.maxNights > 0 && s.Nights > v.maxNights {
		errs = append(errs, validation.ValidationError{
			Field:   "nights",
			Message: fmt.Sprintf("nights must be at most %d", v.maxNights),
		})
	}
	if v.maxRoomsPerDate > 0 && s.Rooms > v.maxRoomsPerDate {
		errs = append(errs, validation.ValidationError{
			Field:   "rooms",
			Message: fmt.Sprintf("rooms must be at most %d", v.maxRoomsPerDate),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *AccommodationValidator) validateRoomCounts(counts map[string]int) error {
	if v.maxRoomsPerDate <= 0 {
		return nil
	}

	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var errs validation.ValidationErrors
	for _, date := range dates {
		if counts[date] > v.maxRoomsPerDate {
			errs = append(errs, validation.ValidationError{
				Field:   fmt.Sprintf("available_rooms_by_date[%s]", date),
				Message: fmt.Sprintf("rooms per date must be at most %d", v.maxRoomsPerDate),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
