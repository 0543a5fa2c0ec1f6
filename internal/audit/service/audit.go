package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"lodging/internal/audit/repository"
	"lodging/pkg/auth"
	apperrors "lodging/pkg/errors"
	"lodging/pkg/logger"
	"lodging/pkg/model"
)

// ErrInvalidEvent marks an event that can never be stored, so retrying it
// is pointless.
var ErrInvalidEvent = errors.New("invalid booking event")

var eventTypes = []string{
	model.BookingEventCreated,
	model.BookingEventAmended,
	model.BookingEventCancelled,
}

type AuditService interface {
	Record(ctx context.Context, event *model.BookingEvent) error
	Trail(ctx context.Context, bookingID string) ([]*model.BookingEvent, error)
}

type auditService struct {
	repo repository.EventRepository
	log  *logger.Logger
}

func NewAuditService(repo repository.EventRepository, log *logger.Logger) AuditService {
	return &auditService{repo: repo, log: log}
}

// Record stores event once. Redelivered events are acknowledged without a
// second write.
func (s *auditService) Record(ctx context.Context, event *model.BookingEvent) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	inserted, err := s.repo.Record(ctx, event)
	if err != nil {
		return err
	}
	if !inserted {
		s.log.Info("Booking event already recorded",
			"event_id", event.EventID,
			"booking_id", event.BookingID,
		)
		return nil
	}

	s.log.Info("Booking event recorded",
		"event_id", event.EventID,
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"accommodation_id", event.AccommodationID,
	)
	return nil
}

func (s *auditService) Trail(ctx context.Context, bookingID string) ([]*model.BookingEvent, error) {
	if _, err := auth.RequireRole(ctx, model.RoleAdmin); err != nil {
		return nil, err
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("booking id is required")
	}

	events, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to load booking audit trail", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("failed to load booking audit trail", err)
	}
	return events, nil
}

func validateEvent(event *model.BookingEvent) error {
	switch {
	case event == nil:
		return fmt.Errorf("%w: empty event", ErrInvalidEvent)
	case event.EventID == "":
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	case event.BookingID == "" || event.AccommodationID == "":
		return fmt.Errorf("%w: event %s has no booking or accommodation", ErrInvalidEvent, event.EventID)
	case !slices.Contains(eventTypes, event.Type):
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, event.Type)
	case event.OccurredAt.IsZero():
		return fmt.Errorf("%w: event %s has no occurred_at", ErrInvalidEvent, event.EventID)
	}
	return nil
}
