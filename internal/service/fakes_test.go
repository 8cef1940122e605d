package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for *store.Store
type memStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	medicines map[primitive.ObjectID]*models.Medicine
	carts     map[primitive.ObjectID]*models.CartItem
	payments  []*models.Payment
	ads       map[primitive.ObjectID]*models.Advertisement
	processed map[string]bool

	deleteErr   error
	skipDeletes int // number of ids to leave behind on the next bulk delete
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*models.User{},
		medicines: map[primitive.ObjectID]*models.Medicine{},
		carts:     map[primitive.ObjectID]*models.CartItem{},
		ads:       map[primitive.ObjectID]*models.Advertisement{},
		processed: map[string]bool{},
	}
}

func (m *memStore) InsertUserIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return false, nil
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	m.users[user.Email] = &cp
	return true, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", id.Hex(), apperr.ErrNotFound)
}

func (m *memStore) UpdateUserProfile(ctx context.Context, email, name, photo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
	}
	if name != "" {
		u.Name = name
	}
	if photo != "" {
		u.Photo = photo
	}
	return nil
}

func (m *memStore) ListMedicines(ctx context.Context, filter store.MedicineFilter) ([]models.Medicine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Medicine{}
	for _, med := range m.medicines {
		if filter.Category != "" && med.Category != filter.Category {
			continue
		}
		if filter.SellerEmail != "" && med.SellerEmail != filter.SellerEmail {
			continue
		}
		out = append(out, *med)
	}
	return out, nil
}

func (m *memStore) GetMedicine(ctx context.Context, id primitive.ObjectID) (*models.Medicine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	med, ok := m.medicines[id]
	if !ok {
		return nil, fmt.Errorf("medicine %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	cp := *med
	return &cp, nil
}

func (m *memStore) CreateMedicine(ctx context.Context, medicine *models.Medicine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	medicine.ID = primitive.NewObjectID()
	cp := *medicine
	m.medicines[medicine.ID] = &cp
	return nil
}

func (m *memStore) UpdateMedicine(ctx context.Context, id primitive.ObjectID, sellerEmail string, update store.MedicineUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	med, ok := m.medicines[id]
	if !ok || med.SellerEmail != sellerEmail {
		return fmt.Errorf("medicine %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	if update.Name != nil {
		med.Name = *update.Name
	}
	if update.Price != nil {
		med.Price = *update.Price
	}
	return nil
}

func (m *memStore) DeleteMedicine(ctx context.Context, id primitive.ObjectID, sellerEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	med, ok := m.medicines[id]
	if !ok || med.SellerEmail != sellerEmail {
		return fmt.Errorf("medicine %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	delete(m.medicines, id)
	return nil
}

func (m *memStore) addCartItem(email string) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID()
	m.carts[id] = &models.CartItem{ID: id, Email: email, Price: 10, Quantity: 1, TotalPrice: 10}
	return id
}

func (m *memStore) cartSize(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.carts {
		if item.Email == email {
			n++
		}
	}
	return n
}

func (m *memStore) ListCartItems(ctx context.Context, email string) ([]models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CartItem{}
	for _, item := range m.carts {
		if item.Email == email {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memStore) AddCartItem(ctx context.Context, item *models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = primitive.NewObjectID()
	cp := *item
	m.carts[item.ID] = &cp
	return nil
}

func (m *memStore) GetCartItem(ctx context.Context, id primitive.ObjectID, email string) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.carts[id]
	if !ok || item.Email != email {
		return nil, fmt.Errorf("cart item %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	cp := *item
	return &cp, nil
}

func (m *memStore) UpdateCartQuantity(ctx context.Context, id primitive.ObjectID, email string, quantity int, totalPrice float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.carts[id]
	if !ok || item.Email != email {
		return fmt.Errorf("cart item %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	item.Quantity = quantity
	item.TotalPrice = totalPrice
	return nil
}

func (m *memStore) DeleteCartItem(ctx context.Context, id primitive.ObjectID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.carts[id]
	if !ok || item.Email != email {
		return fmt.Errorf("cart item %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	delete(m.carts, id)
	return nil
}

func (m *memStore) ClearCart(ctx context.Context, email string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, item := range m.carts {
		if item.Email == email {
			delete(m.carts, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteCartItemsByIDs(ctx context.Context, email string, ids []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	for i, id := range ids {
		if i < m.skipDeletes {
			continue
		}
		if item, ok := m.carts[id]; ok && item.Email == email {
			delete(m.carts, id)
			n++
		}
	}
	m.skipDeletes = 0
	return n, nil
}

func (m *memStore) ExistingCartItemIDs(ctx context.Context, email string, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []primitive.ObjectID
	for _, id := range ids {
		if item, ok := m.carts[id]; ok && item.Email == email {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memStore) InsertPayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID == payment.TransactionID {
			return fmt.Errorf("transaction %s already recorded: %w", payment.TransactionID, apperr.ErrConflict)
		}
	}
	payment.ID = primitive.NewObjectID()
	cp := *payment
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *memStore) ListPayments(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Payment{}
	for _, p := range m.payments {
		if filter.BuyerEmail != "" && p.Email != filter.BuyerEmail {
			continue
		}
		if filter.SellerEmail != "" && !p.SellerEmail.Contains(filter.SellerEmail) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) UpdatePaymentStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			p.Status = status
			return nil
		}
	}
	return fmt.Errorf("payment %s: %w", id.Hex(), apperr.ErrNotFound)
}

func (m *memStore) RevenueTotals(ctx context.Context, sellerEmail string) (models.RevenueTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var t models.RevenueTotals
	for _, p := range m.payments {
		if sellerEmail != "" && !p.SellerEmail.Contains(sellerEmail) {
			continue
		}
		t.TotalRevenue += p.Price
		switch p.Status {
		case models.PaymentStatusPaid:
			t.PaidTotal += p.Price
		case models.PaymentStatusPending:
			t.PendingTotal += p.Price
		}
	}
	return t, nil
}

func (m *memStore) CreateAdvertisement(ctx context.Context, ad *models.Advertisement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ad.ID = primitive.NewObjectID()
	cp := *ad
	m.ads[ad.ID] = &cp
	return nil
}

func (m *memStore) ListAdvertisements(ctx context.Context, filter store.AdvertisementFilter) ([]models.Advertisement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Advertisement{}
	for _, ad := range m.ads {
		if filter.SellerEmail != "" && ad.SellerEmail != filter.SellerEmail {
			continue
		}
		if filter.Status != "" && ad.Status != filter.Status {
			continue
		}
		out = append(out, *ad)
	}
	return out, nil
}

func (m *memStore) UpdateAdvertisementStatus(ctx context.Context, id primitive.ObjectID, status models.AdStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ad, ok := m.ads[id]
	if !ok {
		return fmt.Errorf("advertisement %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	ad.Status = status
	return nil
}

func (m *memStore) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed[eventID], nil
}

func (m *memStore) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed[eventID] = true
	return nil
}

// WithTransaction snapshots payments and carts and restores them when fn fails
func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	payments := append([]*models.Payment(nil), m.payments...)
	carts := make(map[primitive.ObjectID]*models.CartItem, len(m.carts))
	for k, v := range m.carts {
		carts[k] = v
	}
	m.mu.Unlock()

	err := fn(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.payments = payments
		m.carts = carts
	}
	return err
}

type fakeLocker struct {
	mu    sync.Mutex
	locks map[string]string
	keys  map[string]interface{}
	err   error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locks: map[string]string{}, keys: map[string]interface{}{}}
}

func (l *fakeLocker) AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, held := l.locks[name]; held {
		return "", false, nil
	}
	token := primitive.NewObjectID().Hex()
	l.locks[name] = token
	return token, true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[name] == token {
		delete(l.locks, name)
	}
	return nil
}

func (l *fakeLocker) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys[key] = value
	return nil
}

func (l *fakeLocker) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	_, ok := l.keys[key]
	return ok, nil
}

type fakePublisher struct {
	mu             sync.Mutex
	recorded       []*models.PaymentRecordedEvent
	statusChanges  []*models.PaymentStatusChangedEvent
	cleanups       []*models.CartCleanupRequestedEvent
	failPublishing bool
}

var errBrokerDown = errors.New("broker down")

func (p *fakePublisher) PublishPaymentRecorded(ctx context.Context, event *models.PaymentRecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPublishing {
		return errBrokerDown
	}
	p.recorded = append(p.recorded, event)
	return nil
}

func (p *fakePublisher) PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPublishing {
		return errBrokerDown
	}
	p.statusChanges = append(p.statusChanges, event)
	return nil
}

func (p *fakePublisher) PublishCartCleanupRequested(ctx context.Context, event *models.CartCleanupRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPublishing {
		return errBrokerDown
	}
	p.cleanups = append(p.cleanups, event)
	return nil
}

type fakeGateway struct {
	amount   int64
	currency string
	err      error
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.amount = amount
	g.currency = currency
	return "pi_secret_123", nil
}
