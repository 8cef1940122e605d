package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"
	"pharmahub-service/internal/util"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// WarningPartialReconciliation marks a payment that was recorded while some
// of its paid cart items could not be removed
const WarningPartialReconciliation = "PartialReconciliation"

// PaymentOptions tunes the reconciliation flow
type PaymentOptions struct {
	Currency       string
	LockTTL        time.Duration
	IdempotencyTTL time.Duration
	Transactional  bool
}

// PaymentService records checkouts and creates payment intents
type PaymentService struct {
	payments PaymentRepository
	carts    CartRepository
	tx       Transactor
	locker   Locker
	events   EventPublisher
	gateway  PaymentGateway
	opts     PaymentOptions
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service. tx may be nil when the
// deployment does not support multi-document transactions.
func NewPaymentService(
	payments PaymentRepository,
	carts CartRepository,
	tx Transactor,
	locker Locker,
	events EventPublisher,
	gateway PaymentGateway,
	opts PaymentOptions,
) *PaymentService {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &PaymentService{
		payments: payments,
		carts:    carts,
		tx:       tx,
		locker:   locker,
		events:   events,
		gateway:  gateway,
		opts:     opts,
		logger:   util.GetLogger(),
	}
}

// PaymentIntentRequest asks for a card intent for a cart total
type PaymentIntentRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
}

// PaymentIntentResponse carries the secret the client confirms the charge with
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// ReconcileRequest is the checkout payload posted after a successful charge
type ReconcileRequest struct {
	Email         string               `json:"email"`
	SellerEmail   models.EmailList     `json:"sellerEmail"`
	Price         float64              `json:"price"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transactionId"`
	CartIDs       []string             `json:"cartIds"`
	MedicinesName []string             `json:"medicinesName"`
}

// InsertOutcome reports the stored payment record
type InsertOutcome struct {
	InsertedID   string `json:"insertedId"`
	Acknowledged bool   `json:"acknowledged"`
}

// DeleteOutcome reports the cart deletion side effect
type DeleteOutcome struct {
	DeletedCount int64 `json:"deletedCount"`
	Requested    int   `json:"requested"`
}

// ReconcileWarning describes a non-fatal reconciliation problem
type ReconcileWarning struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	StaleCartIDs []string `json:"staleCartIds,omitempty"`
}

// ReconcileResult is returned for every recorded payment
type ReconcileResult struct {
	PaymentResult InsertOutcome     `json:"paymentResult"`
	DeleteResult  DeleteOutcome     `json:"deleteResult"`
	Warning       *ReconcileWarning `json:"warning,omitempty"`
}

// UpdatePaymentStatusRequest carries the status set by an administrator
type UpdatePaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

// validate normalises the request for caller and returns the parsed cart ids
func (r *ReconcileRequest) validate(caller string) ([]primitive.ObjectID, error) {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		r.Email = caller
	}
	if r.Email != caller {
		return nil, fmt.Errorf("%w: payment email does not match the authenticated user", apperr.ErrForbidden)
	}

	sellers := make(models.EmailList, 0, len(r.SellerEmail))
	for _, s := range r.SellerEmail {
		if s = strings.TrimSpace(s); s != "" {
			sellers = append(sellers, s)
		}
	}
	if len(sellers) == 0 {
		return nil, apperr.BadRequest("sellerEmail is required")
	}
	r.SellerEmail = sellers

	if r.Price <= 0 || math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return nil, apperr.BadRequest("price must be positive")
	}

	r.TransactionID = strings.TrimSpace(r.TransactionID)
	if r.TransactionID == "" {
		return nil, apperr.BadRequest("transactionId is required")
	}

	if r.Status == "" {
		r.Status = models.PaymentStatusPending
	}
	if !r.Status.Valid() {
		return nil, apperr.BadRequest("unknown payment status %q", r.Status)
	}

	return store.ParseIDs(r.CartIDs)
}

func (r *ReconcileRequest) toPayment() *models.Payment {
	return &models.Payment{
		Email:         r.Email,
		SellerEmail:   r.SellerEmail,
		Price:         r.Price,
		Status:        r.Status,
		TransactionID: r.TransactionID,
		CartIDs:       r.CartIDs,
		MedicinesName: r.MedicinesName,
		Date:          time.Now().UTC(),
	}
}

// CreatePaymentIntent converts price to minor units and asks the gateway
// for a card intent
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreatePaymentIntent")
	defer span.End()

	amount := int64(math.Round(req.Price * 100))
	if amount <= 0 {
		return nil, apperr.BadRequest("price must be positive")
	}
	span.SetAttributes(attribute.Int64("payment.amount", amount))

	start := time.Now()
	secret, err := s.gateway.CreatePaymentIntent(ctx, amount, s.opts.Currency)
	util.PaymentIntentLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		util.PaymentIntentsTotal.WithLabelValues("failure").Inc()
		s.logger.Error("Payment intent creation failed",
			zap.Int64("amount", amount),
			zap.Error(err))
		return nil, apperr.Upstream("create payment intent", err)
	}

	util.PaymentIntentsTotal.WithLabelValues("success").Inc()
	return &PaymentIntentResponse{ClientSecret: secret}, nil
}

type recordOutcome struct {
	deleted   int64
	deleteErr error
}

// Reconcile records a payment for caller and removes the paid items from
// their cart. The payment is never rolled back for a cart problem unless
// transactional mode is enabled; instead the result carries a warning and a
// cleanup event is published.
func (s *PaymentService) Reconcile(ctx context.Context, caller string, req *ReconcileRequest) (*ReconcileResult, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.Reconcile")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ReconcileLatency.Observe(time.Since(start).Seconds())
	}()

	cartIDs, err := req.validate(caller)
	if err != nil {
		util.PaymentsRejectedTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	span.SetAttributes(
		attribute.String("payment.transaction_id", req.TransactionID),
		attribute.Int("payment.cart_ids", len(cartIDs)))

	idemKey := "payment:" + req.TransactionID
	seen, err := s.locker.CheckIdempotencyKey(ctx, idemKey)
	if err != nil {
		return nil, apperr.Upstream("check idempotency key", err)
	}
	if seen {
		util.PaymentsRejectedTotal.WithLabelValues("duplicate").Inc()
		return nil, fmt.Errorf("%w: transaction %s already recorded", apperr.ErrConflict, req.TransactionID)
	}

	lockName := "checkout:" + req.Email
	token, ok, err := s.locker.AcquireLock(ctx, lockName, s.opts.LockTTL)
	if err != nil {
		return nil, apperr.Upstream("acquire checkout lock", err)
	}
	if !ok {
		util.PaymentsRejectedTotal.WithLabelValues("locked").Inc()
		return nil, fmt.Errorf("%w: checkout already in progress for %s", apperr.ErrConflict, req.Email)
	}
	defer func() {
		if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), lockName, token); err != nil {
			s.logger.Warn("Failed to release checkout lock",
				zap.String("email", req.Email),
				zap.Error(err))
		}
	}()

	payment := req.toPayment()
	outcome, err := s.record(ctx, payment, cartIDs)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			util.PaymentsRejectedTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	util.PaymentsRecordedTotal.WithLabelValues(string(payment.Status)).Inc()
	util.CartItemsClearedTotal.Add(float64(outcome.deleted))

	result := &ReconcileResult{
		PaymentResult: InsertOutcome{InsertedID: payment.ID.Hex(), Acknowledged: true},
		DeleteResult:  DeleteOutcome{DeletedCount: outcome.deleted, Requested: len(cartIDs)},
	}
	if outcome.deleteErr != nil || outcome.deleted < int64(len(cartIDs)) {
		result.Warning = s.partialReconciliation(ctx, payment, cartIDs, outcome)
	}

	if err := s.locker.SetIdempotencyKey(ctx, idemKey, payment.ID.Hex(), s.opts.IdempotencyTTL); err != nil {
		s.logger.Warn("Failed to store idempotency key",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err))
	}

	s.publishRecorded(ctx, payment)

	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.Hex()),
		zap.String("email", payment.Email),
		zap.Float64("price", payment.Price),
		zap.Int64("cart_items_removed", outcome.deleted))

	return result, nil
}

// record inserts the payment and removes the paid cart items
func (s *PaymentService) record(ctx context.Context, payment *models.Payment, cartIDs []primitive.ObjectID) (recordOutcome, error) {
	if s.opts.Transactional && s.tx != nil {
		var deleted int64
		err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.payments.InsertPayment(ctx, payment); err != nil {
				return err
			}
			n, err := s.carts.DeleteCartItemsByIDs(ctx, payment.Email, cartIDs)
			if err != nil {
				return err
			}
			deleted = n
			return nil
		})
		if err != nil {
			if !errors.Is(err, apperr.ErrConflict) && !errors.Is(err, apperr.ErrUpstream) {
				err = apperr.Upstream("payment transaction", err)
			}
			return recordOutcome{}, err
		}
		return recordOutcome{deleted: deleted}, nil
	}

	if err := s.payments.InsertPayment(ctx, payment); err != nil {
		return recordOutcome{}, err
	}
	deleted, err := s.carts.DeleteCartItemsByIDs(ctx, payment.Email, cartIDs)
	return recordOutcome{deleted: deleted, deleteErr: err}, nil
}

func (s *PaymentService) partialReconciliation(ctx context.Context, payment *models.Payment, cartIDs []primitive.ObjectID, outcome recordOutcome) *ReconcileWarning {
	util.PartialReconciliationsTotal.Inc()

	stale := cartIDs
	if outcome.deleteErr == nil {
		remaining, err := s.carts.ExistingCartItemIDs(ctx, payment.Email, cartIDs)
		if err != nil {
			s.logger.Error("Failed to look up remaining cart items", zap.Error(err))
		} else {
			stale = remaining
		}
	}
	staleIDs := hexIDs(stale)

	s.logger.Warn("Payment recorded but paid cart items remain",
		zap.String("payment_id", payment.ID.Hex()),
		zap.String("email", payment.Email),
		zap.Int64("deleted", outcome.deleted),
		zap.Int("requested", len(cartIDs)),
		zap.Strings("stale_cart_ids", staleIDs),
		zap.NamedError("delete_error", outcome.deleteErr))

	warning := &ReconcileWarning{
		Code:         WarningPartialReconciliation,
		Message:      fmt.Sprintf("payment recorded; %d of %d cart items removed", outcome.deleted, len(cartIDs)),
		StaleCartIDs: staleIDs,
	}

	if len(staleIDs) == 0 {
		return warning
	}

	reason := "short_delete"
	if outcome.deleteErr != nil {
		reason = "delete_failed"
	}
	event := &models.CartCleanupRequestedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCartCleanupRequested,
			Timestamp: time.Now(),
		},
		PaymentID: payment.ID.Hex(),
		Email:     payment.Email,
		CartIDs:   staleIDs,
		Reason:    reason,
	}
	if err := s.events.PublishCartCleanupRequested(ctx, event); err != nil {
		s.logger.Error("Failed to publish cart cleanup request",
			zap.String("payment_id", payment.ID.Hex()),
			zap.Error(err))
	}
	return warning
}

func (s *PaymentService) publishRecorded(ctx context.Context, payment *models.Payment) {
	event := &models.PaymentRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentRecorded,
			Timestamp: time.Now(),
		},
		PaymentID:     payment.ID.Hex(),
		Email:         payment.Email,
		SellerEmails:  payment.SellerEmail,
		Price:         payment.Price,
		Status:        string(payment.Status),
		TransactionID: payment.TransactionID,
		CartIDs:       payment.CartIDs,
		RecordedAt:    payment.Date,
	}
	if err := s.events.PublishPaymentRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish payment recorded event",
			zap.String("payment_id", payment.ID.Hex()),
			zap.Error(err))
	}
}

// History returns the payments made by email, newest first
func (s *PaymentService) History(ctx context.Context, email string) ([]models.Payment, error) {
	return s.payments.ListPayments(ctx, store.PaymentFilter{BuyerEmail: email})
}

// ListAll returns every payment record
func (s *PaymentService) ListAll(ctx context.Context) ([]models.Payment, error) {
	return s.payments.ListPayments(ctx, store.PaymentFilter{})
}

// SellerSales returns the payments that include sellerEmail
func (s *PaymentService) SellerSales(ctx context.Context, sellerEmail string) ([]models.Payment, error) {
	return s.payments.ListPayments(ctx, store.PaymentFilter{SellerEmail: sellerEmail})
}

// UpdateStatus settles or reopens a payment
func (s *PaymentService) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.UpdateStatus")
	defer span.End()

	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return apperr.BadRequest("unknown payment status %q", status)
	}

	if err := s.payments.UpdatePaymentStatus(ctx, oid, status); err != nil {
		return err
	}

	event := &models.PaymentStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentStatusChanged,
			Timestamp: time.Now(),
		},
		PaymentID: id,
		Status:    string(status),
	}
	if err := s.events.PublishPaymentStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish payment status change",
			zap.String("payment_id", id),
			zap.Error(err))
	}

	s.logger.Info("Payment status updated", zap.String("payment_id", id), zap.String("status", string(status)))
	return nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
