package discovery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_match_requests_total",
			Help: "Match pipeline requests by outcome",
		},
		[]string{"status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "discovery_request_duration_seconds",
			Help: "Handler latency by action",
		},
		[]string{"action"},
	)

	matchRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_match_run_seconds",
			Help:    "Wall time of one full match pipeline run",
			Buckets: prometheus.DefBuckets,
		},
	)

	candidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_candidates_scored_total",
			Help: "Candidates that reached category scoring",
		},
	)

	stageEliminations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_stage_eliminations_total",
			Help: "Candidates eliminated, by pipeline stage",
		},
		[]string{"stage"},
	)

	dealBreakerTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_deal_breaker_triggers_total",
			Help: "Deal-breaker eliminations by rule",
		},
		[]string{"deal_breaker"},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "discovery_compatibility_scores",
			Help:    "Distribution of returned compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	digestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_digest_runs_total",
			Help: "Daily digest executions by outcome",
		},
		[]string{"status"},
	)
)

func RecordMatchRequest(status string) {
	matchRequestsTotal.WithLabelValues(status).Inc()
}

func RecordRequestDuration(action string, d time.Duration) {
	requestDuration.WithLabelValues(action).Observe(d.Seconds())
}

func RecordDigestRun(status string) {
	digestRuns.WithLabelValues(status).Inc()
}
