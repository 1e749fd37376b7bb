// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"

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

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of candidates scored against a request",
		},
	)

	CandidatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_skipped_total",
			Help: "Total number of candidates skipped for invalid data",
		},
	)

	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_match_score",
			Help:    "Distribution of returned match scores",
			Buckets: prometheus.LinearBuckets(0.3, 0.1, 8),
		},
	)

	AutoAssignOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_auto_assign_total",
			Help: "Auto-assign attempts by outcome",
		},
		[]string{"outcome"},
	)

	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_outcomes_total",
			Help: "Aggregated evaluations by approval",
		},
		[]string{"approved"},
	)

	JudgeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judge_fallbacks_total",
			Help: "Submissions scored with the neutral fallback item",
		},
		[]string{"reason"},
	)
)

func RecordJobCompleted(taskType string) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}

func RecordJobFailed(taskType, errorCode string) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

// RecordMatches observes every returned score and the scored/skipped counts
// of one matching pass.
func RecordMatches(scored, skipped int, scores []float64) {
	CandidatesScored.Add(float64(scored))
	CandidatesSkipped.Add(float64(skipped))
	for _, s := range scores {
		MatchScore.Observe(s)
	}
}

func RecordEvaluation(approved bool) {
	Evaluations.WithLabelValues(strconv.FormatBool(approved)).Inc()
}
