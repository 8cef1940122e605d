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

// MedicineFilter narrows a catalog listing
type MedicineFilter struct {
	Category    string
	SellerEmail string
}

func (f MedicineFilter) query() bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.SellerEmail != "" {
		q["sellerEmail"] = f.SellerEmail
	}
	return q
}

// ListMedicines retrieves catalog entries matching filter
func (s *Store) ListMedicines(ctx context.Context, filter MedicineFilter) ([]models.Medicine, error) {
	cursor, err := s.medicines.Find(ctx, filter.query(), options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.Upstream("find medicines", err)
	}

	medicines := []models.Medicine{}
	if err := cursor.All(ctx, &medicines); err != nil {
		return nil, apperr.Upstream("decode medicines", err)
	}
	return medicines, nil
}

// MedicineUpdate carries the optional fields a seller may change
type MedicineUpdate struct {
	Name        *string  `json:"name"`
	GenericName *string  `json:"genericName"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Company     *string  `json:"company"`
	MassUnit    *string  `json:"massUnit"`
	Image       *string  `json:"image"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Discount    *float64 `json:"discount" binding:"omitempty,gte=0,lte=100"`
}

func (u MedicineUpdate) fields() bson.M {
	set := bson.M{}
	for key, val := range map[string]*string{
		"name":        u.Name,
		"genericName": u.GenericName,
		"description": u.Description,
		"category":    u.Category,
		"company":     u.Company,
		"massUnit":    u.MassUnit,
		"image":       u.Image,
	} {
		if val != nil {
			set[key] = *val
		}
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Discount != nil {
		set["discount"] = *u.Discount
	}
	return set
}

// GetMedicine retrieves a medicine by ID
func (s *Store) GetMedicine(ctx context.Context, id primitive.ObjectID) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := s.medicines.FindOne(ctx, bson.M{"_id": id}).Decode(&medicine); err != nil {
		return nil, notFoundOr("find medicine", fmt.Sprintf("medicine %s", id.Hex()), err)
	}
	return &medicine, nil
}

// CreateMedicine inserts a new medicine
func (s *Store) CreateMedicine(ctx context.Context, medicine *models.Medicine) error {
	if medicine.CreatedAt.IsZero() {
		medicine.CreatedAt = time.Now().UTC()
	}

	res, err := s.medicines.InsertOne(ctx, medicine)
	if err != nil {
		return apperr.Upstream("insert medicine", err)
	}
	medicine.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateMedicine applies update to a medicine owned by sellerEmail
func (s *Store) UpdateMedicine(ctx context.Context, id primitive.ObjectID, sellerEmail string, update MedicineUpdate) error {
	fields := update.fields()
	if len(fields) == 0 {
		return apperr.BadRequest("nothing to update")
	}

	res, err := s.medicines.UpdateOne(ctx,
		bson.M{"_id": id, "sellerEmail": sellerEmail},
		bson.M{"$set": fields})
	if err != nil {
		return apperr.Upstream("update medicine", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("medicine %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}

// DeleteMedicine removes a medicine owned by sellerEmail
func (s *Store) DeleteMedicine(ctx context.Context, id primitive.ObjectID, sellerEmail string) error {
	res, err := s.medicines.DeleteOne(ctx, bson.M{"_id": id, "sellerEmail": sellerEmail})
	if err != nil {
		return apperr.Upstream("delete medicine", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("medicine %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}
