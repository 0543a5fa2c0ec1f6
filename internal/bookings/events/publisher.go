// Package events publishes booking lifecycle events after a reconciliation
// has committed.
package events

import (
	"context"
	"time"

	"lodging/pkg/kafka"
	"lodging/pkg/logger"
	"lodging/pkg/middleware"
	"lodging/pkg/model"

	"github.com/google/uuid"
)

const (
	source        = "lodging"
	schemaVersion = "1"
)

type Publisher interface {
	Publish(ctx context.Context, event *model.BookingEvent) error
}

// MessagePublisher is the part of kafka.Producer used here.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// NoopPublisher drops events. It is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	return nil
}

type KafkaPublisher struct {
	producer MessagePublisher
	log      *logger.Logger
}

func NewKafkaPublisher(producer MessagePublisher, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, log: log}
}

// Publish keys the message by booking ID so every event of one booking
// lands on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	builder := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventID(event.EventID).
		WithEventType(event.Type).
		WithSchemaVersion(schemaVersion).
		WithSource(source)
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		builder.WithCorrelationID(requestID)
	}
	if err := builder.Err(); err != nil {
		return err
	}
	msg := builder.Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_id", event.EventID,
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
		return err
	}
	return nil
}

// NewEvent builds an event for booking. previous is set for amendments.
func NewEvent(eventType string, booking *model.Booking, previous *model.BookingStay) *model.BookingEvent {
	return &model.BookingEvent{
		EventID:         uuid.NewString(),
		Type:            eventType,
		BookingID:       booking.ID,
		AccommodationID: booking.AccommodationID,
		UserID:          booking.UserID,
		StartDate:       booking.StartDate,
		Nights:          booking.Nights,
		Rooms:           booking.Rooms,
		Previous:        previous,
		OccurredAt:      time.Now().UTC(),
	}
}
