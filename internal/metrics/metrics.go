package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prensa_fetches_total",
			Help: "Fetch attempts against the news backend, by outcome",
		},
		[]string{"outcome"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prensa_fetch_duration_seconds",
			Help:    "End-to-end duration of backend fetches",
			Buckets: prometheus.DefBuckets,
		},
	)

	StaleResponsesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prensa_stale_responses_discarded_total",
			Help: "Completed fetches discarded because a newer request superseded them",
		},
	)

	ItemsNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prensa_items_normalized_total",
			Help: "Items accepted into the canonical model",
		},
	)

	ItemsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prensa_items_dropped_total",
			Help: "Raw items dropped during normalization for missing required fields",
		},
	)
)
