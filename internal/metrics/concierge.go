// Package metrics exposes Prometheus series for the concierge pipeline.
// Labels are closed enumerations only; tenant and turn ids never become labels.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	GroundingOK      = "ok"
	GroundingEmpty   = "empty"
	GroundingError   = "error"
	GroundingSkipped = "skipped"

	GenerationOK        = "ok"
	GenerationSimulated = "simulated"
	GenerationFallback  = "fallback"
	GenerationCached    = "cached"
)

var (
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_intents_total",
		Help: "Classified guest messages, by intent.",
	}, []string{"intent"})

	ModelTierTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_model_tier_total",
		Help: "Generation requests, by routed model tier.",
	}, []string{"tier"})

	GroundingTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_grounding_total",
		Help: "Inventory grounding attempts, by outcome (ok, empty, error, skipped).",
	}, []string{"outcome"})

	GenerationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_generation_total",
		Help: "Reply generations, by outcome (ok, simulated, fallback, cached).",
	}, []string{"outcome"})

	PipelineSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "concierge_pipeline_seconds",
		Help:    "End-to-end latency of one concierge turn.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	HTTPRateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "concierge_http_rate_limited_total",
		Help: "Requests rejected by the per-client rate limiter, by route.",
	}, []string{"route"})
)

func RecordIntent(intent string) {
	IntentsTotal.WithLabelValues(intent).Inc()
}

func RecordTier(tier string) {
	ModelTierTotal.WithLabelValues(tier).Inc()
}

func RecordGrounding(outcome string) {
	GroundingTotal.WithLabelValues(outcome).Inc()
}

func RecordGeneration(outcome string) {
	GenerationTotal.WithLabelValues(outcome).Inc()
}

func ObservePipeline(d time.Duration) {
	PipelineSeconds.Observe(d.Seconds())
}
