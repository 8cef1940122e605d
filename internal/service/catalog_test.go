package service

import (
	"context"
	"testing"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const seller = "seller@pharmahub.io"

func seedMedicine(t *testing.T, s *memStore, price, discount float64) *models.Medicine {
	t.Helper()
	svc := NewMedicineService(s)
	med, err := svc.Create(context.Background(), seller, &CreateMedicineRequest{
		Name:     "Napa",
		Category: "tablet",
		Price:    price,
		Discount: discount,
	})
	require.NoError(t, err)
	return med
}

func TestMedicineOwnership(t *testing.T) {
	s := newMemStore()
	svc := NewMedicineService(s)
	ctx := context.Background()
	med := seedMedicine(t, s, 10, 0)

	name := "Napa Extra"
	assert.ErrorIs(t, svc.Update(ctx, "intruder@pharmahub.io", med.ID.Hex(), store.MedicineUpdate{Name: &name}), apperr.ErrNotFound)
	require.NoError(t, svc.Update(ctx, seller, med.ID.Hex(), store.MedicineUpdate{Name: &name}))

	got, err := svc.Get(ctx, med.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Napa Extra", got.Name)

	assert.ErrorIs(t, svc.Delete(ctx, "intruder@pharmahub.io", med.ID.Hex()), apperr.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, seller, med.ID.Hex()))

	_, err = svc.Get(ctx, "bogus")
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestMedicineCreateValidation(t *testing.T) {
	svc := NewMedicineService(newMemStore())

	_, err := svc.Create(context.Background(), seller, &CreateMedicineRequest{Name: "X", Price: -1})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = svc.Create(context.Background(), seller, &CreateMedicineRequest{Name: "X", Price: 1, Discount: 120})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestCartAddUsesCatalogPrice(t *testing.T) {
	s := newMemStore()
	med := seedMedicine(t, s, 20, 10)
	carts := NewCartService(s, s)

	item, err := carts.Add(context.Background(), buyer, &AddCartItemRequest{MedicineID: med.ID.Hex(), Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, 18.0, item.Price)
	assert.Equal(t, 54.0, item.TotalPrice)
	assert.Equal(t, seller, item.SellerEmail)
	assert.Equal(t, buyer, item.Email)
}

func TestCartAddDefaultsAndErrors(t *testing.T) {
	s := newMemStore()
	med := seedMedicine(t, s, 5, 0)
	carts := NewCartService(s, s)
	ctx := context.Background()

	item, err := carts.Add(ctx, buyer, &AddCartItemRequest{MedicineID: med.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	_, err = carts.Add(ctx, buyer, &AddCartItemRequest{MedicineID: med.ID.Hex(), Quantity: -2})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = carts.Add(ctx, buyer, &AddCartItemRequest{MedicineID: "nope"})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = carts.Add(ctx, buyer, &AddCartItemRequest{MedicineID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCartUpdateQuantityRecomputesTotal(t *testing.T) {
	s := newMemStore()
	id := s.addCartItem(buyer)
	carts := NewCartService(s, s)
	ctx := context.Background()

	item, err := carts.UpdateQuantity(ctx, buyer, id.Hex(), 4)
	require.NoError(t, err)
	assert.Equal(t, 40.0, item.TotalPrice)
	assert.Equal(t, 40.0, s.carts[id].TotalPrice)

	_, err = carts.UpdateQuantity(ctx, buyer, id.Hex(), 0)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = carts.UpdateQuantity(ctx, "other@pharmahub.io", id.Hex(), 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCartRemoveAndClear(t *testing.T) {
	s := newMemStore()
	a := s.addCartItem(buyer)
	s.addCartItem(buyer)
	s.addCartItem("other@pharmahub.io")
	carts := NewCartService(s, s)
	ctx := context.Background()

	require.NoError(t, carts.Remove(ctx, buyer, a.Hex()))
	assert.ErrorIs(t, carts.Remove(ctx, buyer, a.Hex()), apperr.ErrNotFound)

	n, err := carts.Clear(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, s.cartSize("other@pharmahub.io"))
}

func TestAdvertisementLifecycle(t *testing.T) {
	s := newMemStore()
	med := seedMedicine(t, s, 5, 0)
	ads := NewAdvertisementService(s, s)
	ctx := context.Background()

	_, err := ads.Submit(ctx, "intruder@pharmahub.io", &SubmitAdvertisementRequest{MedicineID: med.ID.Hex()})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	ad, err := ads.Submit(ctx, seller, &SubmitAdvertisementRequest{MedicineID: med.ID.Hex(), Description: "Summer sale"})
	require.NoError(t, err)
	assert.Equal(t, models.AdStatusPending, ad.Status)
	assert.Equal(t, "Napa", ad.MedicineName)

	active, err := ads.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, ads.UpdateStatus(ctx, ad.ID.Hex(), models.AdStatusApproved))
	assert.ErrorIs(t, ads.UpdateStatus(ctx, ad.ID.Hex(), "live"), apperr.ErrBadRequest)

	active, err = ads.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	mine, err := ads.ListMine(ctx, seller)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
