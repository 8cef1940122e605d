package worker

import (
	"context"
	"time"

	"pharmahub-service/internal/broker"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource delivers broker messages to a handler until ctx is done
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// CleanupHandler applies a cart cleanup request
type CleanupHandler interface {
	HandleCartCleanupRequested(ctx context.Context, event *models.CartCleanupRequestedEvent) error
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// CartCleanupWorker retries removal of paid cart items that survived
// payment reconciliation
type CartCleanupWorker struct {
	source       MessageSource
	eventHandler *broker.EventHandler
	maxAttempts  int
	backoff      time.Duration
	logger       *zap.Logger
}

// NewCartCleanupWorker creates a new cart cleanup worker
func NewCartCleanupWorker(source MessageSource, reconciler CleanupHandler) *CartCleanupWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnCartCleanupRequested(reconciler.HandleCartCleanupRequested)

	return &CartCleanupWorker{
		source:       source,
		eventHandler: eventHandler,
		maxAttempts:  defaultMaxAttempts,
		backoff:      defaultBackoff,
		logger:       util.GetLogger(),
	}
}

// Start consumes cleanup requests until ctx is cancelled
func (w *CartCleanupWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cart cleanup worker")
	return w.source.StartConsuming(ctx, w.handle)
}

func (w *CartCleanupWorker) handle(ctx context.Context, msg kafka.Message) error {
	ctx, span := util.StartSpan(ctx, "CartCleanupWorker.handle")
	defer span.End()

	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err = w.eventHandler.HandleMessage(ctx, msg); err == nil {
			return nil
		}

		w.logger.Warn("Cart cleanup attempt failed",
			zap.String("key", string(msg.Key)),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == w.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.backoff * time.Duration(attempt)):
		}
	}

	w.logger.Error("Giving up on cart cleanup",
		zap.String("key", string(msg.Key)),
		zap.Int64("offset", msg.Offset),
		zap.Error(err))
	return err
}

// Stop stops the worker
func (w *CartCleanupWorker) Stop() error {
	w.logger.Info("Stopping cart cleanup worker")
	return w.source.Close()
}
