package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ratings engine

var (
	// Adjustment processing metrics
	GamesProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_games_processed_total",
			Help: "Total number of games whose adjustment was applied",
		},
	)

	GamesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_games_skipped_total",
			Help: "Total number of games skipped, by reason",
		},
		[]string{"reason"},
	)

	GameFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_game_failures_total",
			Help: "Total number of games that failed with a hard error",
		},
	)

	AdjustmentMagnitude = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratings_adjustment_magnitude_points",
			Help:    "Absolute per-team rating adjustment in points",
			Buckets: []float64{0.25, 0.5, 1, 1.5, 2, 3, 5, 8},
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratings_batch_duration_seconds",
			Help:    "Duration of batch processing runs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
	)

	// Resolver metrics
	ResolverMatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratings_resolver_matches_total",
			Help: "Total number of resolved team names, by strategy",
		},
		[]string{"strategy"},
	)

	ResolverUnresolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_resolver_unresolved_total",
			Help: "Total number of team names that failed to resolve",
		},
	)

	// Read-side cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_cache_hits_total",
			Help: "Total number of rating cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_cache_misses_total",
			Help: "Total number of rating cache misses",
		},
	)

	// Store metrics
	TeamsRated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratings_teams_rated_total",
			Help: "Number of teams currently carrying a rating",
		},
	)

	LedgerRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratings_ledger_records_total",
			Help: "Number of adjustment records in the ledger",
		},
	)

	LedgerDriftDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratings_ledger_drift_detected_total",
			Help: "Total number of ledger replay verifications that found drift",
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratings_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratings_last_successful_run_timestamp",
			Help: "Timestamp of the last successful batch run",
		},
	)
)

// RecordProcessed records a successfully applied adjustment.
func RecordProcessed(adjustment float64) {
	GamesProcessedTotal.Inc()
	if adjustment < 0 {
		adjustment = -adjustment
	}
	AdjustmentMagnitude.Observe(adjustment)
}

// RecordSkip records a skipped game by reason.
func RecordSkip(reason string) {
	GamesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordResolution records a resolver outcome. strategy is empty for an
// unresolved name.
func RecordResolution(strategy string) {
	if strategy == "" {
		ResolverUnresolvedTotal.Inc()
		return
	}
	ResolverMatchesTotal.WithLabelValues(strategy).Inc()
}

// RecordBatch records a completed batch run.
func RecordBatch(durationSeconds float64) {
	BatchDuration.Observe(durationSeconds)
	LastSuccessfulRun.SetToCurrentTime()
}

// RecordCacheHit records a rating cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a rating cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// UpdateStoreStats updates roster and ledger size gauges.
func UpdateStoreStats(teams, ledger int) {
	TeamsRated.Set(float64(teams))
	LedgerRecords.Set(float64(ledger))
}
