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

// ListCartItems retrieves the cart of email
func (s *Store) ListCartItems(ctx context.Context, email string) ([]models.CartItem, error) {
	cursor, err := s.carts.Find(ctx, bson.M{"email": email}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, apperr.Upstream("find cart items", err)
	}

	items := []models.CartItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, apperr.Upstream("decode cart items", err)
	}
	return items, nil
}

// AddCartItem inserts a cart line
func (s *Store) AddCartItem(ctx context.Context, item *models.CartItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	res, err := s.carts.InsertOne(ctx, item)
	if err != nil {
		return apperr.Upstream("insert cart item", err)
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetCartItem retrieves a cart line owned by email
func (s *Store) GetCartItem(ctx context.Context, id primitive.ObjectID, email string) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.carts.FindOne(ctx, bson.M{"_id": id, "email": email}).Decode(&item); err != nil {
		return nil, notFoundOr("find cart item", fmt.Sprintf("cart item %s", id.Hex()), err)
	}
	return &item, nil
}

// UpdateCartQuantity sets quantity and total price of a cart line owned by email
func (s *Store) UpdateCartQuantity(ctx context.Context, id primitive.ObjectID, email string, quantity int, totalPrice float64) error {
	res, err := s.carts.UpdateOne(ctx,
		bson.M{"_id": id, "email": email},
		bson.M{"$set": bson.M{"quantity": quantity, "totalPrice": totalPrice}})
	if err != nil {
		return apperr.Upstream("update cart item", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cart item %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}

// DeleteCartItem removes a cart line owned by email
func (s *Store) DeleteCartItem(ctx context.Context, id primitive.ObjectID, email string) error {
	res, err := s.carts.DeleteOne(ctx, bson.M{"_id": id, "email": email})
	if err != nil {
		return apperr.Upstream("delete cart item", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("cart item %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}

// ClearCart removes every line of the cart of email
func (s *Store) ClearCart(ctx context.Context, email string) (int64, error) {
	res, err := s.carts.DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		return 0, apperr.Upstream("clear cart", err)
	}
	return res.DeletedCount, nil
}

// DeleteCartItemsByIDs removes the listed lines owned by email
func (s *Store) DeleteCartItemsByIDs(ctx context.Context, email string, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.carts.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "email": email})
	if err != nil {
		return 0, apperr.Upstream("delete paid cart items", err)
	}
	return res.DeletedCount, nil
}

// ExistingCartItemIDs returns which of ids are still present in the cart of email
func (s *Store) ExistingCartItemIDs(ctx context.Context, email string, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.carts.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "email": email},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, apperr.Upstream("find remaining cart items", err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.Upstream("decode remaining cart items", err)
	}

	remaining := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		remaining = append(remaining, d.ID)
	}
	return remaining, nil
}
