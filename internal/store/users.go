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

// InsertUserIfAbsent creates the user unless one with the same email exists.
// It reports whether a new document was inserted.
func (s *Store) InsertUserIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": user.Email},
		bson.M{"$setOnInsert": bson.M{
			"email":     user.Email,
			"name":      user.Name,
			"photo":     user.Photo,
			"role":      user.Role,
			"createdAt": user.CreatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, apperr.Upstream("upsert user", err)
	}

	if res.UpsertedID != nil {
		if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
			user.ID = oid
		}
		return true, nil
	}
	return false, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFoundOr("find user", fmt.Sprintf("user %s", email), err)
	}
	return &user, nil
}

// ListUsers retrieves all users
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.Upstream("find users", err)
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperr.Upstream("decode users", err)
	}
	return users, nil
}

// UpdateUserRole sets the role of the user with the given id
func (s *Store) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return apperr.Upstream("update user role", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}

// UpdateUserProfile sets the name and photo of the user with the given email
func (s *Store) UpdateUserProfile(ctx context.Context, email, name, photo string) error {
	set := bson.M{}
	if name != "" {
		set["name"] = name
	}
	if photo != "" {
		set["photo"] = photo
	}
	if len(set) == 0 {
		return apperr.BadRequest("nothing to update")
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return apperr.Upstream("update user profile", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
	}
	return nil
}
