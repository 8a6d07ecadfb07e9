package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentsValidatedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "repayment",
			Name:      "payments_validated_total",
			Help:      "Total number of payments that received an outcome.",
		},
		[]string{"provider", "outcome"}, // outcome: valid, duplicate_transaction, phone_mismatch ...
	)

	paymentsFailedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "repayment",
			Name:      "payments_failed_total",
			Help:      "Total number of payments that could not be validated.",
		},
		[]string{"provider", "reason"}, // reason: malformed, resolver_unavailable, error
	)

	validationDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "repayment",
			Name:      "validation_duration_seconds",
			Help:      "Duration of payment normalization and validation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)
