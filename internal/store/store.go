package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmahub-service/internal/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	CollectionUsers           = "users"
	CollectionMedicines       = "medicines"
	CollectionCarts           = "carts"
	CollectionPayments        = "payments"
	CollectionAdvertisements  = "advertisements"
	CollectionProcessedEvents = "processed_events"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users           *mongo.Collection
	medicines       *mongo.Collection
	carts           *mongo.Collection
	payments        *mongo.Collection
	advertisements  *mongo.Collection
	processedEvents *mongo.Collection
}

// NewStore connects to MongoDB and prepares collections and indexes
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMaxPoolSize(50).
		SetMaxConnIdleTime(5 * time.Minute)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:          client,
		db:              db,
		users:           db.Collection(CollectionUsers),
		medicines:       db.Collection(CollectionMedicines),
		carts:           db.Collection(CollectionCarts),
		payments:        db.Collection(CollectionPayments),
		advertisements:  db.Collection(CollectionAdvertisements),
		processedEvents: db.Collection(CollectionProcessedEvents),
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

// ensureIndexes creates the indexes queries rely on
func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.carts, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}}},
		{s.medicines, mongo.IndexModel{Keys: bson.D{{Key: "sellerEmail", Value: 1}}}},
		{s.medicines, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}},
		{s.payments, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}}},
		{s.payments, mongo.IndexModel{Keys: bson.D{{Key: "sellerEmail", Value: 1}}}},
		{s.payments, mongo.IndexModel{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.advertisements, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects from MongoDB
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// WithTransaction runs fn inside a MongoDB transaction. Store calls made
// with the context passed to fn take part in the transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return apperr.Upstream("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// ParseID converts a hex identifier into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("malformed identifier %q", id)
	}
	return oid, nil
}

// ParseIDs converts every hex identifier, failing on the first malformed one.
// Repeated identifiers are kept once, in first-seen order.
func ParseIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		oid, err := ParseID(id)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		oids = append(oids, oid)
	}
	return oids, nil
}

// notFoundOr maps ErrNoDocuments to apperr.ErrNotFound and wraps anything else
func notFoundOr(op, what string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, apperr.ErrNotFound)
	}
	return apperr.Upstream(op, err)
}
