package validator

import (
	"fmt"
	"time"

	"lodging/internal/availability"
	"lodging/pkg/logger"
	"lodging/pkg/model"
	"lodging/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate  *validator.Validate
	logger    *logger.Logger
	maxNights int
	maxRooms  int
	now       func() time.Time
}

func NewBookingValidator(log *logger.Logger, maxNights, maxRooms int) *BookingValidator {
	return &BookingValidator{
		validate:  validation.New(log),
		logger:    log,
		maxNights: maxNights,
		maxRooms:  maxRooms,
		now:       time.Now,
	}
}

func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := validation.Struct(v.validate, req); err != nil {
		return err
	}
	return v.validateStay(req.StartDate, req.Nights, req.Rooms, true)
}

func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	return validation.Struct(v.validate, update)
}

// ValidateAmended checks the stay a booking would have after an update.
// A start date only has to be in the future when it is being moved.
func (v *BookingValidator) ValidateAmended(booking *model.Booking, startMoved bool) error {
	return v.validateStay(booking.StartDate, booking.Nights, booking.Rooms, startMoved)
}

func (v *BookingValidator) validateStay(startDate string, nights, rooms int, checkPast bool) error {
	var errs validation.ValidationErrors

	if v.maxNights > 0 && nights > v.maxNights {
		errs = append(errs, validation.ValidationError{
			Field:   "nights",
			Message: fmt.Sprintf("nights must be at most %d", v.maxNights),
		})
	}
	if v.maxRooms > 0 && rooms > v.maxRooms {
		errs = append(errs, validation.ValidationError{
			Field:   "rooms",
			Message: fmt.Sprintf("rooms must be at most %d", v.maxRooms),
		})
	}

	if checkPast {
		start, err := availability.ParseDate(startDate)
		if err != nil {
			errs = append(errs, validation.ValidationError{Field: "start_date", Message: err.Error()})
		} else if start.Before(today(v.now())) {
			errs = append(errs, validation.ValidationError{
				Field:   "start_date",
				Message: "start_date cannot be in the past",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
