package service

import (
	"context"
	"fmt"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"
	"pharmahub-service/internal/util"

	"go.uber.org/zap"
)

// AdvertisementService handles banner requests from sellers
type AdvertisementService struct {
	ads       AdvertisementRepository
	medicines MedicineRepository
	logger    *zap.Logger
}

// NewAdvertisementService creates a new advertisement service
func NewAdvertisementService(ads AdvertisementRepository, medicines MedicineRepository) *AdvertisementService {
	return &AdvertisementService{
		ads:       ads,
		medicines: medicines,
		logger:    util.GetLogger(),
	}
}

// SubmitAdvertisementRequest asks for a medicine to be featured
type SubmitAdvertisementRequest struct {
	MedicineID  string `json:"medicineId" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// UpdateAdStatusRequest carries the review decision
type UpdateAdStatusRequest struct {
	Status models.AdStatus `json:"status" binding:"required"`
}

// Submit files a pending advertisement for a medicine owned by sellerEmail
func (s *AdvertisementService) Submit(ctx context.Context, sellerEmail string, req *SubmitAdvertisementRequest) (*models.Advertisement, error) {
	ctx, span := util.StartSpan(ctx, "AdvertisementService.Submit")
	defer span.End()

	oid, err := store.ParseID(req.MedicineID)
	if err != nil {
		return nil, err
	}
	medicine, err := s.medicines.GetMedicine(ctx, oid)
	if err != nil {
		return nil, err
	}
	if medicine.SellerEmail != sellerEmail {
		return nil, fmt.Errorf("%w: medicine %s belongs to another seller", apperr.ErrForbidden, req.MedicineID)
	}

	image := req.Image
	if image == "" {
		image = medicine.Image
	}
	ad := &models.Advertisement{
		MedicineID:   medicine.ID.Hex(),
		MedicineName: medicine.Name,
		Image:        image,
		Description:  req.Description,
		SellerEmail:  sellerEmail,
		Status:       models.AdStatusPending,
	}
	if err := s.ads.CreateAdvertisement(ctx, ad); err != nil {
		return nil, err
	}

	s.logger.Info("Advertisement submitted",
		zap.String("ad_id", ad.ID.Hex()),
		zap.String("seller", sellerEmail))
	return ad, nil
}

// ListMine returns the advertisements of sellerEmail
func (s *AdvertisementService) ListMine(ctx context.Context, sellerEmail string) ([]models.Advertisement, error) {
	return s.ads.ListAdvertisements(ctx, store.AdvertisementFilter{SellerEmail: sellerEmail})
}

// ListAll returns every advertisement
func (s *AdvertisementService) ListAll(ctx context.Context) ([]models.Advertisement, error) {
	return s.ads.ListAdvertisements(ctx, store.AdvertisementFilter{})
}

// ListActive returns the approved advertisements shown on the home page
func (s *AdvertisementService) ListActive(ctx context.Context) ([]models.Advertisement, error) {
	return s.ads.ListAdvertisements(ctx, store.AdvertisementFilter{Status: models.AdStatusApproved})
}

// UpdateStatus records the review decision for an advertisement
func (s *AdvertisementService) UpdateStatus(ctx context.Context, id string, status models.AdStatus) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return apperr.BadRequest("unknown advertisement status %q", status)
	}
	return s.ads.UpdateAdvertisementStatus(ctx, oid, status)
}
