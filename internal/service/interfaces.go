package service

import (
	"context"
	"time"

	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository is the user directory
type UserRepository interface {
	InsertUserIfAbsent(ctx context.Context, user *models.User) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id primitive.ObjectID, role models.Role) error
	UpdateUserProfile(ctx context.Context, email, name, photo string) error
}

// MedicineRepository is the catalog
type MedicineRepository interface {
	ListMedicines(ctx context.Context, filter store.MedicineFilter) ([]models.Medicine, error)
	GetMedicine(ctx context.Context, id primitive.ObjectID) (*models.Medicine, error)
	CreateMedicine(ctx context.Context, medicine *models.Medicine) error
	UpdateMedicine(ctx context.Context, id primitive.ObjectID, sellerEmail string, update store.MedicineUpdate) error
	DeleteMedicine(ctx context.Context, id primitive.ObjectID, sellerEmail string) error
}

// CartRepository stores cart lines
type CartRepository interface {
	ListCartItems(ctx context.Context, email string) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, item *models.CartItem) error
	GetCartItem(ctx context.Context, id primitive.ObjectID, email string) (*models.CartItem, error)
	UpdateCartQuantity(ctx context.Context, id primitive.ObjectID, email string, quantity int, totalPrice float64) error
	DeleteCartItem(ctx context.Context, id primitive.ObjectID, email string) error
	ClearCart(ctx context.Context, email string) (int64, error)
	DeleteCartItemsByIDs(ctx context.Context, email string, ids []primitive.ObjectID) (int64, error)
	ExistingCartItemIDs(ctx context.Context, email string, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

// PaymentRepository stores payment records
type PaymentRepository interface {
	InsertPayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error
	RevenueTotals(ctx context.Context, sellerEmail string) (models.RevenueTotals, error)
}

// AdvertisementRepository stores seller advertisements
type AdvertisementRepository interface {
	CreateAdvertisement(ctx context.Context, ad *models.Advertisement) error
	ListAdvertisements(ctx context.Context, filter store.AdvertisementFilter) ([]models.Advertisement, error)
	UpdateAdvertisementStatus(ctx context.Context, id primitive.ObjectID, status models.AdStatus) error
}

// EventStore records which broker events were already applied
type EventStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// Transactor runs fn atomically against the document store
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker provides the checkout lock and transaction idempotency keys
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	CheckIdempotencyKey(ctx context.Context, key string) (bool, error)
}

// EventPublisher emits payment domain events
type EventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, event *models.PaymentRecordedEvent) error
	PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error
	PublishCartCleanupRequested(ctx context.Context, event *models.CartCleanupRequestedEvent) error
}

// PaymentGateway creates card payment intents
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}
