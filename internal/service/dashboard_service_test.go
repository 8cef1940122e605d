package service

import (
	"context"
	"testing"

	"pharmahub-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEmpty(t *testing.T) {
	svc := NewDashboardService(newMemStore())

	totals, err := svc.Aggregate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.RevenueTotals{}, totals)
}

func TestAggregateSplitsByStatus(t *testing.T) {
	s := newMemStore()
	s.payments = []*models.Payment{
		{Price: 100, Status: models.PaymentStatusPaid, SellerEmail: models.EmailList{"a@x.io"}},
		{Price: 50, Status: models.PaymentStatusPending, SellerEmail: models.EmailList{"b@x.io"}},
	}
	svc := NewDashboardService(s)

	totals, err := svc.Aggregate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.RevenueTotals{TotalRevenue: 150, PaidTotal: 100, PendingTotal: 50}, totals)

	scoped, err := svc.Aggregate(context.Background(), "b@x.io")
	require.NoError(t, err)
	assert.Equal(t, models.RevenueTotals{TotalRevenue: 50, PendingTotal: 50}, scoped)
}
