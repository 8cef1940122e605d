package store

import (
	"context"
	"fmt"
	"time"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentFilter narrows a payment listing
type PaymentFilter struct {
	BuyerEmail  string
	SellerEmail string
}

func (f PaymentFilter) query() bson.M {
	q := bson.M{}
	if f.BuyerEmail != "" {
		q["email"] = f.BuyerEmail
	}
	if f.SellerEmail != "" {
		// sellerEmail is an array; equality matches any element
		q["sellerEmail"] = f.SellerEmail
	}
	return q
}

// InsertPayment records a payment
func (s *Store) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if payment.Date.IsZero() {
		payment.Date = time.Now().UTC()
	}

	res, err := s.payments.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("transaction %s already recorded: %w", payment.TransactionID, apperr.ErrConflict)
		}
		return apperr.Upstream("insert payment", err)
	}
	payment.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListPayments retrieves payments matching filter, newest first
func (s *Store) ListPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	cursor, err := s.payments.Find(ctx, filter.query(), options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, apperr.Upstream("find payments", err)
	}

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, apperr.Upstream("decode payments", err)
	}
	return payments, nil
}

// UpdatePaymentStatus updates payment status
func (s *Store) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	res, err := s.payments.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return apperr.Upstream("update payment status", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("payment %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}

type sumBucket struct {
	Sum float64 `bson:"sum"`
}

// revenueFacet is the single document produced by RevenuePipeline
type revenueFacet struct {
	Total   []sumBucket `bson:"total"`
	Paid    []sumBucket `bson:"paid"`
	Pending []sumBucket `bson:"pending"`
}

// bucketSum returns 0 for a branch that matched no records
func bucketSum(b []sumBucket) float64 {
	if len(b) == 0 {
		return 0
	}
	return b[0].Sum
}

func (f revenueFacet) totals() models.RevenueTotals {
	return models.RevenueTotals{
		TotalRevenue: bucketSum(f.Total),
		PaidTotal:    bucketSum(f.Paid),
		PendingTotal: bucketSum(f.Pending),
	}
}

func sumPriceStage() bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "sum", Value: bson.D{{Key: "$sum", Value: "$price"}}},
	}}}
}

func statusBranch(status models.PaymentStatus) bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "status", Value: status}}}},
		sumPriceStage(),
	}
}

// RevenuePipeline builds a single-pass aggregation computing total, paid and
// pending revenue, optionally restricted to payments involving sellerEmail
func RevenuePipeline(sellerEmail string) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if sellerEmail != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "sellerEmail", Value: sellerEmail}}}})
	}

	return append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "total", Value: bson.A{sumPriceStage()}},
		{Key: "paid", Value: statusBranch(models.PaymentStatusPaid)},
		{Key: "pending", Value: statusBranch(models.PaymentStatusPending)},
	}}})
}

// RevenueTotals aggregates payment prices for the dashboard
func (s *Store) RevenueTotals(ctx context.Context, sellerEmail string) (models.RevenueTotals, error) {
	cursor, err := s.payments.Aggregate(ctx, RevenuePipeline(sellerEmail))
	if err != nil {
		return models.RevenueTotals{}, apperr.Upstream("aggregate revenue", err)
	}

	var facets []revenueFacet
	if err := cursor.All(ctx, &facets); err != nil {
		return models.RevenueTotals{}, apperr.Upstream("decode revenue", err)
	}
	if len(facets) == 0 {
		return models.RevenueTotals{}, nil
	}
	return facets[0].totals(), nil
}
