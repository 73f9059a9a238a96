package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutDuration tracks end-to-end checkout latency by terminal outcome.
	CheckoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "checkout_duration_seconds",
			Help: "Duration of checkout attempts in seconds",
			Buckets: []float64{
				0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
			},
		},
		[]string{"outcome"},
	)

	// CouponValidations counts validation calls by result code.
	CouponValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_validations_total",
			Help: "Coupon validation attempts by result",
		},
		[]string{"result"},
	)

	// NotificationFailures counts confirmation dispatches that failed. These
	// never fail a checkout, so the counter is the only visibility we have.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Booking confirmation dispatches that failed",
		},
	)

	// ReconciliationRequired counts post-capture persistence failures: money
	// moved but no durable booking exists.
	ReconciliationRequired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_reconciliation_required_total",
			Help: "Checkouts where payment was captured but persistence failed",
		},
	)
)

func RecordCheckoutDuration(outcome string, seconds float64) {
	CheckoutDuration.WithLabelValues(outcome).Observe(seconds)
}

func RecordCouponValidation(result string) {
	CouponValidations.WithLabelValues(result).Inc()
}
