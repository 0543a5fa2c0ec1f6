package handler

import (
	"context"
	"errors"

	"lodging/internal/audit/service"
	"lodging/pkg/kafka"
	"lodging/pkg/model"
)

// EventConsumer turns booking-event messages into audit records.
type EventConsumer struct {
	service service.AuditService
}

func NewEventConsumer(service service.AuditService) *EventConsumer {
	return &EventConsumer{service: service}
}

// Handle classifies failures for the consumer's retry policy: malformed
// events go straight to the dead letter queue, store failures are retried.
func (c *EventConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err)
	}
	if event.EventID == "" {
		event.EventID = msg.GetEventID()
	}
	if event.Type == "" {
		event.Type = msg.GetEventType()
	}

	err := c.service.Record(ctx, &event)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrInvalidEvent):
		return kafka.NewPermanentError("rejected booking event", err)
	default:
		return kafka.NewTransientError("failed to record booking event", err)
	}
}
