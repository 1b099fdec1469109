package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAccepted   = "accepted"
	outcomeInvalid    = "invalid"
	outcomeCooldown   = "cooldown"
	outcomeStoreError = "store_error"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "innercalm",
		Name:      "submissions_total",
		Help:      "Mood survey submissions by outcome.",
	}, []string{"outcome"})

	classificationFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "innercalm",
		Name:      "classification_fallbacks_total",
		Help:      "Submissions stored with the local critical heuristic because classification was unavailable.",
	})

	submissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "innercalm",
		Name:      "submission_duration_seconds",
		Help:      "Time spent in the submission pipeline.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})
)
