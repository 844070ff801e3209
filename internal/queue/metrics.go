package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsByState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "payout_engine",
		Subsystem: "queue",
		Name:      "jobs",
		Help:      "Current number of jobs per type and state.",
	}, []string{"type", "state"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payout_engine",
		Subsystem: "queue",
		Name:      "jobs_processed_total",
		Help:      "Jobs finished per type and outcome (completed, retried, failed).",
	}, []string{"type", "outcome"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payout_engine",
		Subsystem: "queue",
		Name:      "job_duration_seconds",
		Help:      "Handler execution time per job type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})

	jobsReclaimed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payout_engine",
		Subsystem: "queue",
		Name:      "jobs_reclaimed_total",
		Help:      "Lease-expired jobs found by the reclaimer, by disposition (stalled, failed).",
	}, []string{"disposition"})
)
