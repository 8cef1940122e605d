package service

import (
	"context"

	"pharmahub-service/internal/models"
	"pharmahub-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
)

// DashboardService computes revenue totals
type DashboardService struct {
	payments PaymentRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(payments PaymentRepository) *DashboardService {
	return &DashboardService{payments: payments}
}

// Aggregate sums payment prices overall and per status. An empty
// sellerEmail covers the whole marketplace.
func (s *DashboardService) Aggregate(ctx context.Context, sellerEmail string) (models.RevenueTotals, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Aggregate",
		attribute.Bool("dashboard.seller_scoped", sellerEmail != ""))
	defer span.End()

	return s.payments.RevenueTotals(ctx, sellerEmail)
}
