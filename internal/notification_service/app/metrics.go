package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	composeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notification",
			Name:      "messages_composed_total",
			Help:      "Total number of compose attempts.",
		},
		[]string{"language", "status"}, // status: success, error, no_recipient
	)

	batchSizeHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "notification",
			Name:      "compose_batch_size",
			Help:      "Number of messages in successfully composed batches.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
