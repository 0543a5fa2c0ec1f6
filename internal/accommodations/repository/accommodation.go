package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	accommodationserrors "lodging/internal/accommodations/errors"
	"lodging/internal/availability"
	"lodging/pkg/config"
	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Accommodations"

	countersField = "available_rooms_by_date"
)

type mongoAccommodationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AccommodationRepository interface {
	Create(ctx context.Context, acc *model.Accommodation) error
	FindByID(ctx context.Context, id string) (*model.Accommodation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Accommodation, error)
	Count(ctx context.Context) (int64, error)
	FindByTypeAndLocation(ctx context.Context, accType, location string) ([]*model.Accommodation, error)
	Update(ctx context.Context, acc *model.Accommodation, counts map[string]int) error
	ApplyDateDeltas(ctx context.Context, id string, expectedVersion int64, deltas map[string]int) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAccommodationRepository(cfg *config.Config) AccommodationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAccommodationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAccommodationRepository) Create(ctx context.Context, acc *model.Accommodation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	acc.CreatedAt = now
	acc.UpdatedAt = now
	acc.Version = 0
	if acc.AvailableRoomsByDate == nil {
		acc.AvailableRoomsByDate = map[string]int{}
	}

	result, err := r.collection.InsertOne(ctx, acc)
	if err != nil {
		return fmt.Errorf("failed to create accommodation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		acc.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAccommodationRepository) FindByID(ctx context.Context, id string) (*model.Accommodation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", accommodationserrors.ErrInvalidID, id)
	}

	var acc model.Accommodation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accommodationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find accommodation: %w", err)
	}

	if acc.AvailableRoomsByDate == nil {
		acc.AvailableRoomsByDate = map[string]int{}
	}
	return &acc, nil
}

func (r *mongoAccommodationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Accommodation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "location", Value: 1}, {Key: "type", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoAccommodationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count accommodations: %w", err)
	}
	return count, nil
}

// FindByTypeAndLocation is the equality query backing search. It is served
// by the {type, location} index.
func (r *mongoAccommodationRepository) FindByTypeAndLocation(ctx context.Context, accType, location string) ([]*model.Accommodation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	filter := bson.M{"type": accType, "location": location}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoAccommodationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Accommodation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find accommodations: %w", err)
	}
	defer cursor.Close(ctx)

	accs := []*model.Accommodation{}
	if err = cursor.All(ctx, &accs); err != nil {
		return nil, fmt.Errorf("failed to decode accommodations: %w", err)
	}
	return accs, nil
}

// Update writes descriptive fields and sets absolute room counts for the
// given dates, guarded by acc.Version.
func (r *mongoAccommodationRepository) Update(ctx context.Context, acc *model.Accommodation, counts map[string]int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(acc.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", accommodationserrors.ErrInvalidID, acc.ID)
	}

	set := bson.M{
		"name":       acc.Name,
		"type":       acc.Type,
		"location":   acc.Location,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	for date, n := range counts {
		set[countersField+"."+date] = n
	}

	filter := bson.M{"_id": objectID, "version": acc.Version}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update accommodation: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, objectID)
	}
	return nil
}

// ApplyDateDeltas increments per-date counters in one document update. The
// filter pins the version read by the caller and refuses to take any
// counter below zero, so a stale plan can never overbook.
func (r *mongoAccommodationRepository) ApplyDateDeltas(ctx context.Context, id string, expectedVersion int64, deltas map[string]int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", accommodationserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "version": expectedVersion}
	inc := bson.M{"version": 1}
	for date, d := range deltas {
		field := countersField + "." + date
		inc[field] = d
		if d < 0 {
			filter[field] = bson.M{"$gte": -d}
		}
	}
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to apply availability deltas: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, objectID)
	}
	return nil
}

func (r *mongoAccommodationRepository) missOrConflict(ctx context.Context, objectID primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check accommodation existence: %w", err)
	}
	if count == 0 {
		return accommodationserrors.ErrNotFound
	}
	return availability.ErrVersionConflict
}

func (r *mongoAccommodationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", accommodationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete accommodation: %w", err)
	}
	if result.DeletedCount == 0 {
		return accommodationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoAccommodationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
