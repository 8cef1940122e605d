package service

import (
	"context"
	"math"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"
	"pharmahub-service/internal/util"

	"go.uber.org/zap"
)

// CartService manages buyer carts
type CartService struct {
	carts     CartRepository
	medicines MedicineRepository
	logger    *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts CartRepository, medicines MedicineRepository) *CartService {
	return &CartService{
		carts:     carts,
		medicines: medicines,
		logger:    util.GetLogger(),
	}
}

// AddCartItemRequest adds a medicine to the caller's cart
type AddCartItemRequest struct {
	MedicineID string `json:"medicineId" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// UpdateQuantityRequest sets the quantity of a cart line
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// unitPrice applies the percentage discount and rounds to cents
func unitPrice(m *models.Medicine) float64 {
	return roundCents(m.Price * (1 - m.Discount/100))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// List returns the cart of email
func (s *CartService) List(ctx context.Context, email string) ([]models.CartItem, error) {
	return s.carts.ListCartItems(ctx, email)
}

// Add puts a medicine into the cart of email. Name, seller and price are
// taken from the catalog, not from the client.
func (s *CartService) Add(ctx context.Context, email string, req *AddCartItemRequest) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Add")
	defer span.End()

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperr.BadRequest("quantity must be at least 1")
	}

	oid, err := store.ParseID(req.MedicineID)
	if err != nil {
		return nil, err
	}
	medicine, err := s.medicines.GetMedicine(ctx, oid)
	if err != nil {
		return nil, err
	}

	price := unitPrice(medicine)
	item := &models.CartItem{
		Email:       email,
		MedicineID:  medicine.ID.Hex(),
		Name:        medicine.Name,
		Image:       medicine.Image,
		SellerEmail: medicine.SellerEmail,
		Price:       price,
		Quantity:    quantity,
		TotalPrice:  roundCents(price * float64(quantity)),
	}
	if err := s.carts.AddCartItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("Cart item added",
		zap.String("email", email),
		zap.String("medicine_id", item.MedicineID),
		zap.Int("quantity", quantity))
	return item, nil
}

// UpdateQuantity changes the quantity of a line in the cart of email and
// recomputes its total
func (s *CartService) UpdateQuantity(ctx context.Context, email, id string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperr.BadRequest("quantity must be at least 1")
	}
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.GetCartItem(ctx, oid, email)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	item.TotalPrice = roundCents(item.Price * float64(quantity))
	if err := s.carts.UpdateCartQuantity(ctx, oid, email, item.Quantity, item.TotalPrice); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove deletes a line from the cart of email
func (s *CartService) Remove(ctx context.Context, email, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	return s.carts.DeleteCartItem(ctx, oid, email)
}

// Clear empties the cart of email
func (s *CartService) Clear(ctx context.Context, email string) (int64, error) {
	return s.carts.ClearCart(ctx, email)
}
