package store

import (
	"context"
	"fmt"
	"time"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdvertisementFilter narrows an advertisement listing
type AdvertisementFilter struct {
	SellerEmail string
	Status      models.AdStatus
}

// CreateAdvertisement inserts a new advertisement
func (s *Store) CreateAdvertisement(ctx context.Context, ad *models.Advertisement) error {
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = time.Now().UTC()
	}

	res, err := s.advertisements.InsertOne(ctx, ad)
	if err != nil {
		return apperr.Upstream("insert advertisement", err)
	}
	ad.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListAdvertisements retrieves advertisements matching filter
func (s *Store) ListAdvertisements(ctx context.Context, filter AdvertisementFilter) ([]models.Advertisement, error) {
	q := bson.M{}
	if filter.SellerEmail != "" {
		q["sellerEmail"] = filter.SellerEmail
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}

	cursor, err := s.advertisements.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.Upstream("find advertisements", err)
	}

	ads := []models.Advertisement{}
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, apperr.Upstream("decode advertisements", err)
	}
	return ads, nil
}

// UpdateAdvertisementStatus sets the review status of an advertisement
func (s *Store) UpdateAdvertisementStatus(ctx context.Context, id primitive.ObjectID, status models.AdStatus) error {
	res, err := s.advertisements.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return apperr.Upstream("update advertisement status", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("advertisement %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}
