package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"pharmahub-service/internal/models"
	"pharmahub-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventWriter is the transport used by EventPublisher
type EventWriter interface {
	PublishEvent(ctx context.Context, key, eventType string, event interface{}) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	writer EventWriter
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(writer EventWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

func paymentKey(paymentID string) string {
	return fmt.Sprintf("payment-%s", paymentID)
}

// PublishPaymentRecorded publishes PaymentRecorded event
func (ep *EventPublisher) PublishPaymentRecorded(ctx context.Context, event *models.PaymentRecordedEvent) error {
	return ep.writer.PublishEvent(ctx, paymentKey(event.PaymentID), event.EventType, event)
}

// PublishPaymentStatusChanged publishes PaymentStatusChanged event
func (ep *EventPublisher) PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	return ep.writer.PublishEvent(ctx, paymentKey(event.PaymentID), event.EventType, event)
}

// PublishCartCleanupRequested publishes CartCleanupRequested event
func (ep *EventPublisher) PublishCartCleanupRequested(ctx context.Context, event *models.CartCleanupRequestedEvent) error {
	return ep.writer.PublishEvent(ctx, paymentKey(event.PaymentID), event.EventType, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onCartCleanupRequested func(context.Context, *models.CartCleanupRequestedEvent) error
	logger                 *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnCartCleanupRequested registers a handler for CartCleanupRequested events
func (eh *EventHandler) OnCartCleanupRequested(handler func(context.Context, *models.CartCleanupRequestedEvent) error) {
	eh.onCartCleanupRequested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	eventType := headerValue(msg, HeaderEventType)
	if eventType == "" {
		var baseEvent models.BaseEvent
		if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
			return fmt.Errorf("failed to unmarshal base event: %w", err)
		}
		eventType = baseEvent.EventType
	}

	switch eventType {
	case models.EventTypeCartCleanupRequested:
		if eh.onCartCleanupRequested != nil {
			var event models.CartCleanupRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CartCleanupRequested event: %w", err)
			}
			return eh.onCartCleanupRequested(ctx, &event)
		}

	case models.EventTypePaymentRecorded, models.EventTypePaymentStatusChanged:
		// consumed by reporting services, not by this process

	default:
		eh.logger.Debug("Unhandled event type", zap.String("event_type", eventType))
	}

	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
