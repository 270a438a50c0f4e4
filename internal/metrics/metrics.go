// Package metrics provides centralized Prometheus metrics registry for the engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "predictions_generated_total",
		Help:      "Total number of candidate predictions generated",
	})
	ValueBetsFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "value_bets_found_total",
		Help:      "Total number of value bets surfaced above the EV threshold",
	})
	EvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "evaluations_total",
		Help:      "Total number of expected-value evaluations performed",
	})
	VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "verifications_total",
		Help:      "Total number of prediction verifications by outcome",
	}, []string{"outcome"})
	VerificationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "verification_failures_total",
		Help:      "Total number of verification failures by reason",
	}, []string{"reason"})
	QuotaRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "quota_rejections_total",
		Help:      "Total number of provider calls rejected by the quota controller",
	}, []string{"reason"})
	ProviderCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "provider_calls_total",
		Help:      "Total number of outbound provider calls",
	}, []string{"provider"})
	EntityMatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bets_api",
		Name:      "entity_matches_total",
		Help:      "Total number of cross-source entity match attempts by result",
	}, []string{"result"})
)

// Gauge metrics
var (
	RemainingDailyCalls = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bets_api",
		Name:      "remaining_daily_calls",
		Help:      "Remaining result-provider calls in the current day",
	})
	RemainingHourlyCalls = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bets_api",
		Name:      "remaining_hourly_calls",
		Help:      "Remaining result-provider calls in the current hour",
	})
	PendingPredictions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bets_api",
		Name:      "pending_predictions",
		Help:      "Number of predictions awaiting verification",
	})
	ResultCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bets_api",
		Name:      "result_cache_hit_ratio",
		Help:      "Hit ratio of the finished-event result cache",
	})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bets_api",
		Name:      "scan_duration_seconds",
		Help:      "Duration of value-bet scan runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	VerificationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bets_api",
		Name:      "verification_duration_seconds",
		Help:      "Duration of single prediction verifications in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BulkVerificationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bets_api",
		Name:      "bulk_verification_duration_seconds",
		Help:      "Duration of bulk verification runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsGeneratedTotal)
		registry.MustRegister(ValueBetsFoundTotal)
		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(VerificationsTotal)
		registry.MustRegister(VerificationFailuresTotal)
		registry.MustRegister(QuotaRejectionsTotal)
		registry.MustRegister(ProviderCallsTotal)
		registry.MustRegister(EntityMatchesTotal)

		registry.MustRegister(RemainingDailyCalls)
		registry.MustRegister(RemainingHourlyCalls)
		registry.MustRegister(PendingPredictions)
		registry.MustRegister(ResultCacheHitRatio)

		registry.MustRegister(ScanDuration)
		registry.MustRegister(VerificationDuration)
		registry.MustRegister(BulkVerificationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPredictionGenerated records a generated candidate prediction.
func RecordPredictionGenerated() {
	PredictionsGeneratedTotal.Inc()
}

// RecordValueBetFound records a surfaced value bet.
func RecordValueBetFound() {
	ValueBetsFoundTotal.Inc()
}

// RecordEvaluation records an expected-value evaluation.
func RecordEvaluation() {
	EvaluationsTotal.Inc()
}

// RecordVerification records a verification by outcome.
func RecordVerification(outcome string, durationSeconds float64) {
	VerificationsTotal.WithLabelValues(outcome).Inc()
	VerificationDuration.Observe(durationSeconds)
}

// ObserveScanDuration records the duration of a full scan pass.
func ObserveScanDuration(durationSeconds float64) {
	ScanDuration.Observe(durationSeconds)
}

// ObserveBulkVerification records the duration of a bulk verification pass.
func ObserveBulkVerification(durationSeconds float64) {
	BulkVerificationDuration.Observe(durationSeconds)
}

// RecordVerificationFailure records a verification failure by reason.
func RecordVerificationFailure(reason string) {
	VerificationFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordQuotaRejection records a call rejected by the quota controller.
func RecordQuotaRejection(reason string) {
	QuotaRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordProviderCall records an outbound provider call.
func RecordProviderCall(provider string) {
	ProviderCallsTotal.WithLabelValues(provider).Inc()
}

// RecordEntityMatch records an entity match attempt.
func RecordEntityMatch(matched bool) {
	if matched {
		EntityMatchesTotal.WithLabelValues("matched").Inc()
	} else {
		EntityMatchesTotal.WithLabelValues("unmatched").Inc()
	}
}

// UpdateRemainingCalls updates the remaining quota gauges.
func UpdateRemainingCalls(daily, hourly int) {
	RemainingDailyCalls.Set(float64(daily))
	RemainingHourlyCalls.Set(float64(hourly))
}

// UpdatePendingPredictions updates the pending predictions gauge.
func UpdatePendingPredictions(count int) {
	PendingPredictions.Set(float64(count))
}
