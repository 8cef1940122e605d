package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_denials_total",
		Help: "Total number of requests rejected by the access guard",
	}, []string{"reason"})

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokens_issued_total",
		Help: "Total number of access tokens issued",
	})

	PaymentsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Total number of payment records created",
	}, []string{"status"})

	PaymentsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_rejected_total",
		Help: "Total number of checkouts rejected before recording",
	}, []string{"reason"})

	PartialReconciliationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partial_reconciliations_total",
		Help: "Total number of payments recorded with paid cart items left behind",
	})

	CartItemsClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_items_cleared_total",
		Help: "Total number of cart items removed as a side effect of payment",
	})

	CartCleanupRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_cleanup_retries_total",
		Help: "Total number of asynchronous cart cleanup attempts",
	}, []string{"result"})

	ReconcileLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_reconcile_latency_seconds",
		Help:    "Latency of payment reconciliation",
		Buckets: prometheus.DefBuckets,
	})

	PaymentIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_total",
		Help: "Total number of payment intents requested from the gateway",
	}, []string{"result"})

	PaymentIntentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_intent_latency_seconds",
		Help:    "Latency of payment gateway intent creation",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
