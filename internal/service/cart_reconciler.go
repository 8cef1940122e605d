package service

import (
	"context"
	"fmt"

	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"
	"pharmahub-service/internal/util"

	"go.uber.org/zap"
)

// CartReconciler removes paid cart items that survived a checkout
type CartReconciler struct {
	carts  CartRepository
	events EventStore
	logger *zap.Logger
}

// NewCartReconciler creates a new cart reconciler
func NewCartReconciler(carts CartRepository, events EventStore) *CartReconciler {
	return &CartReconciler{
		carts:  carts,
		events: events,
		logger: util.GetLogger(),
	}
}

// HandleCartCleanupRequested deletes the stale cart ids named by event.
// Each event id is applied at most once. A returned error leaves the event
// unmarked; the cleanup worker retries it a few times, then logs and moves on.
func (r *CartReconciler) HandleCartCleanupRequested(ctx context.Context, event *models.CartCleanupRequestedEvent) error {
	ctx, span := util.StartSpan(ctx, "CartReconciler.HandleCartCleanupRequested")
	defer span.End()

	processed, err := r.events.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		r.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	ids, err := store.ParseIDs(event.CartIDs)
	if err != nil {
		// malformed ids will never succeed; drop the event
		r.logger.Error("Discarding cart cleanup with malformed ids",
			zap.String("event_id", event.EventID),
			zap.Error(err))
		util.CartCleanupRetriesTotal.WithLabelValues("discarded").Inc()
		r.markProcessed(ctx, event)
		return nil
	}

	deleted, err := r.carts.DeleteCartItemsByIDs(ctx, event.Email, ids)
	if err != nil {
		util.CartCleanupRetriesTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to delete stale cart items: %w", err)
	}

	util.CartCleanupRetriesTotal.WithLabelValues("success").Inc()
	util.CartItemsClearedTotal.Add(float64(deleted))
	r.markProcessed(ctx, event)

	r.logger.Info("Stale cart items removed",
		zap.String("payment_id", event.PaymentID),
		zap.String("email", event.Email),
		zap.Int64("deleted", deleted),
		zap.Int("requested", len(ids)))
	return nil
}

func (r *CartReconciler) markProcessed(ctx context.Context, event *models.CartCleanupRequestedEvent) {
	if err := r.events.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		r.logger.Error("Failed to mark event processed", zap.Error(err))
	}
}
