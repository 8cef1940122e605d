package models

import "time"

// Event types
const (
	EventTypePaymentRecorded      = "PAYMENT_RECORDED"
	EventTypePaymentStatusChanged = "PAYMENT_STATUS_CHANGED"
	EventTypeCartCleanupRequested = "CART_CLEANUP_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentRecordedEvent published after a checkout is stored
type PaymentRecordedEvent struct {
	BaseEvent
	PaymentID     string    `json:"payment_id"`
	Email         string    `json:"email"`
	SellerEmails  []string  `json:"seller_emails"`
	Price         float64   `json:"price"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	CartIDs       []string  `json:"cart_ids,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// PaymentStatusChangedEvent published when an admin settles a payment
type PaymentStatusChangedEvent struct {
	BaseEvent
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// CartCleanupRequestedEvent asks the worker to remove paid cart items
// that survived reconciliation
type CartCleanupRequestedEvent struct {
	BaseEvent
	PaymentID string   `json:"payment_id"`
	Email     string   `json:"email"`
	CartIDs   []string `json:"cart_ids"`
	Reason    string   `json:"reason"`
}
