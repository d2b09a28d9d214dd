// Package metrics exposes Prometheus collectors for the extraction tiers.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roofio"

var (
	generatorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_requests_total",
			Help:      "Total generative backend requests by provider, model and result",
		},
		[]string{"provider", "model", "result"},
	)

	generatorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_request_duration_seconds",
			Help:      "Duration of generative backend requests by provider and model",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)

	parsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Document parses by document type and outcome (success, failed, no_text)",
		},
		[]string{"document_type", "outcome"},
	)

	fieldsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fields_extracted_total",
			Help:      "Fields extracted by tier and document type",
		},
		[]string{"tier", "document_type"},
	)

	paidTierDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paid_tier_decisions_total",
			Help:      "Gap-check outcomes: paid tier invoked or skipped",
		},
		[]string{"document_type", "decision"},
	)

	tokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paid_tier_tokens_total",
			Help:      "Tokens spent by the paid tier by document type",
		},
		[]string{"document_type"},
	)

	parseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "End-to-end parse duration by document type",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"document_type"},
	)

	breakerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_events_total",
			Help:      "Circuit breaker events by provider and action",
		},
		[]string{"provider", "action"},
	)
)

var registerOnce sync.Once

// Init registers collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(generatorRequests, generatorLatency, parsesTotal, fieldsExtracted,
			paidTierDecisions, tokensUsed, parseDuration, breakerEvents)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveGenerator(provider, model, result string, dur time.Duration) {
	generatorRequests.WithLabelValues(provider, model, result).Inc()
	generatorLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}

func ObserveParse(docType, outcome string, dur time.Duration) {
	parsesTotal.WithLabelValues(docType, outcome).Inc()
	parseDuration.WithLabelValues(docType).Observe(dur.Seconds())
}

func AddFields(tier, docType string, n int) {
	if n > 0 {
		fieldsExtracted.WithLabelValues(tier, docType).Add(float64(n))
	}
}

func PaidTierInvoked(docType string) { paidTierDecisions.WithLabelValues(docType, "invoked").Inc() }
func PaidTierSkipped(docType string) { paidTierDecisions.WithLabelValues(docType, "skipped").Inc() }

func AddTokens(docType string, n int64) {
	if n > 0 {
		tokensUsed.WithLabelValues(docType).Add(float64(n))
	}
}

func BreakerOpened(provider string) { breakerEvents.WithLabelValues(provider, "opened").Inc() }
func BreakerClosed(provider string) { breakerEvents.WithLabelValues(provider, "closed").Inc() }
