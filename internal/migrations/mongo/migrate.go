package mongo

import (
	"context"
	"fmt"

	"lodging/internal/migrations/mongo/validators"
	"lodging/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	AccommodationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "location", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_date", Value: 1}}},
		{Keys: bson.D{{Key: "accommodation_id", Value: 1}}},
		{Keys: bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}},
	}

	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	BookingEventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
	}
)

// Collections maps every collection the service uses to its schema and
// indexes.
func Collections() map[string]collectionDef {
	return map[string]collectionDef{
		"Accommodations": {Indexes: AccommodationsIndexes, Validator: validators.AccommodationValidator},
		"Bookings":       {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		"Users":          {Indexes: UsersIndexes, Validator: validators.UserValidator},
		"Booking_events": {Indexes: BookingEventsIndexes, Validator: validators.BookingEventValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
		log.Info("Collection ready", "collection", name, "indexes", len(def.Indexes))
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	return err
}
