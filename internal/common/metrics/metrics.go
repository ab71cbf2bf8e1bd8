// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	RankingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_rankings_total",
			Help: "Total number of rankings produced, by catalog source",
		},
		[]string{"source"},
	)

	InternshipsConsidered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_internships_considered_total",
			Help: "Internships that entered the ranking pipeline",
		},
	)

	InternshipsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_internships_excluded_total",
			Help: "Internships dropped before scoring, by reason",
		},
		[]string{"reason"},
	)

	RecommendationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_recommendation_score",
			Help:    "Scores of returned recommendations",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_profile_cache_lookups_total",
			Help: "Candidate profile cache lookups by result",
		},
		[]string{"result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_notifications_total",
			Help: "Recommendation notifications by channel and status",
		},
		[]string{"channel", "status"},
	)
)
