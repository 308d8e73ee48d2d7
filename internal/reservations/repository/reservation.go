package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationerrors "campsite/internal/reservations/errors"
	"campsite/pkg/config"
	mongotx "campsite/pkg/db/mongo"
	"campsite/pkg/model"
)

const (
	CollectionName = "Reservations"
)

// ReservationStore is the durable source of truth for reservations. The
// booking engine holds its own serialization lock; the store only has to keep
// individual operations transactional.
type ReservationStore interface {
	// Create persists the reservation, assigning a transaction id when the
	// reservation does not carry one.
	Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error)
	Delete(ctx context.Context, transactionID string) error
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Reservation, error)
	// FindActive returns reservations whose stay has not fully elapsed as of
	// the given day, ordered by start date.
	FindActive(ctx context.Context, day time.Time) ([]*model.Reservation, error)
	// CountOverlapping counts reservations whose occupied range intersects the
	// closed range [checkIn, checkOut]. A non-empty excludeTransactionID
	// removes that reservation from consideration.
	CountOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeTransactionID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoReservationStore struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationStore(cfg *config.Config) ReservationStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationStore{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// EnsureIndexes creates the unique transaction id index and the range index
// backing the overlap query. Called once at startup.
func EnsureIndexes(ctx context.Context, cfg *config.Config) error {
	collection := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName)

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}

// withTimeout wraps ctx with a timeout unless it already runs inside a
// transaction; a SessionContext cannot be wrapped without breaking the
// transaction semantics.
func (s *mongoReservationStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *mongoReservationStore) Create(ctx context.Context, reservation *model.Reservation) (*model.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if reservation.TransactionID == "" {
		reservation.TransactionID = uuid.NewString()
	}
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := s.collection.InsertOne(ctx, reservation)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", reservationerrors.ErrDuplicateTransactionID, reservation.TransactionID)
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return reservation, nil
}

func (s *mongoReservationStore) Delete(ctx context.Context, transactionID string) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	result, err := s.collection.DeleteOne(ctx, bson.M{"transaction_id": transactionID})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationerrors.ErrNotFound
	}
	return nil
}

func (s *mongoReservationStore) FindByTransactionID(ctx context.Context, transactionID string) (*model.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var reservation model.Reservation
	err := s.collection.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	return &reservation, nil
}

func (s *mongoReservationStore) FindActive(ctx context.Context, day time.Time) ([]*model.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"end_date": bson.M{"$gte": day}}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

func (s *mongoReservationStore) CountOverlapping(ctx context.Context, checkIn, checkOut time.Time, excludeTransactionID string) (int64, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	// Two closed day ranges intersect iff end >= checkIn and start <= checkOut.
	filter := bson.M{
		"end_date":   bson.M{"$gte": checkIn},
		"start_date": bson.M{"$lte": checkOut},
	}
	if excludeTransactionID != "" {
		filter["transaction_id"] = bson.M{"$ne": excludeTransactionID}
	}

	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping reservations: %w", err)
	}
	return count, nil
}

func (s *mongoReservationStore) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
