package service

import (
	"context"
	"strings"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"
	"pharmahub-service/internal/util"

	"go.uber.org/zap"
)

// MedicineService manages the catalog
type MedicineService struct {
	medicines MedicineRepository
	logger    *zap.Logger
}

// NewMedicineService creates a new medicine service
func NewMedicineService(medicines MedicineRepository) *MedicineService {
	return &MedicineService{
		medicines: medicines,
		logger:    util.GetLogger(),
	}
}

// CreateMedicineRequest is the payload for a new catalog entry
type CreateMedicineRequest struct {
	Name        string  `json:"name" binding:"required"`
	GenericName string  `json:"genericName"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Company     string  `json:"company"`
	MassUnit    string  `json:"massUnit"`
	Image       string  `json:"image"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Discount    float64 `json:"discount" binding:"gte=0,lte=100"`
}

// List returns the catalog entries matching filter
func (s *MedicineService) List(ctx context.Context, filter store.MedicineFilter) ([]models.Medicine, error) {
	return s.medicines.ListMedicines(ctx, filter)
}

// Get returns a single catalog entry
func (s *MedicineService) Get(ctx context.Context, id string) (*models.Medicine, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.medicines.GetMedicine(ctx, oid)
}

// Create lists a new medicine for sellerEmail
func (s *MedicineService) Create(ctx context.Context, sellerEmail string, req *CreateMedicineRequest) (*models.Medicine, error) {
	ctx, span := util.StartSpan(ctx, "MedicineService.Create")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if req.Price <= 0 {
		return nil, apperr.BadRequest("price must be positive")
	}
	if req.Discount < 0 || req.Discount > 100 {
		return nil, apperr.BadRequest("discount must be between 0 and 100")
	}

	medicine := &models.Medicine{
		Name:        strings.TrimSpace(req.Name),
		GenericName: req.GenericName,
		Description: req.Description,
		Category:    req.Category,
		Company:     req.Company,
		MassUnit:    req.MassUnit,
		Image:       req.Image,
		Price:       req.Price,
		Discount:    req.Discount,
		SellerEmail: sellerEmail,
	}
	if err := s.medicines.CreateMedicine(ctx, medicine); err != nil {
		return nil, err
	}

	s.logger.Info("Medicine listed",
		zap.String("medicine_id", medicine.ID.Hex()),
		zap.String("seller", sellerEmail))
	return medicine, nil
}

// Update changes a medicine owned by sellerEmail
func (s *MedicineService) Update(ctx context.Context, sellerEmail, id string, update store.MedicineUpdate) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	return s.medicines.UpdateMedicine(ctx, oid, sellerEmail, update)
}

// Delete removes a medicine owned by sellerEmail
func (s *MedicineService) Delete(ctx context.Context, sellerEmail, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.medicines.DeleteMedicine(ctx, oid, sellerEmail); err != nil {
		return err
	}
	s.logger.Info("Medicine removed", zap.String("medicine_id", id), zap.String("seller", sellerEmail))
	return nil
}
