package repository

import (
	"context"
	"fmt"
	"time"

	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Booking_events"
)

type EventRepository interface {
	// Record stores event once. It reports false when an event with the
	// same ID was already recorded.
	Record(ctx context.Context, event *model.BookingEvent) (bool, error)
	FindByBooking(ctx context.Context, bookingID string) ([]*model.BookingEvent, error)
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEventRepository) Record(ctx context.Context, event *model.BookingEvent) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	event.RecordedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": event.EventID},
		bson.M{"$setOnInsert": event},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two consumers racing on the same event both try the upsert.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record booking event %s: %w", event.EventID, err)
	}
	return result.UpsertedCount == 1, nil
}

func (r *mongoEventRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.BookingEvent, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find events for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	events := make([]*model.BookingEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode booking events: %w", err)
	}
	return events, nil
}
