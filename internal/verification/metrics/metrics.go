// Package metrics provides Prometheus metrics for the verification module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all verification metrics.
type Metrics struct {
	// Provider calls
	ProviderRequestsTotal          *prometheus.CounterVec   // by operation and outcome (ok or error category)
	ProviderRequestDurationSeconds *prometheus.HistogramVec // by operation

	// Sessions
	SessionsStartedTotal      prometheus.Counter
	SessionsResumedTotal      prometheus.Counter
	SessionStoreFailuresTotal *prometheus.CounterVec // by op (read, corrupt, write)

	// Webhook processing
	WebhookOutcomesTotal *prometheus.CounterVec // by terminal state
	WebhooksInFlight     prometheus.Gauge

	// Signing
	ContractsSignedTotal *prometheus.CounterVec // by outcome

	// Outcome events
	OutcomesPublishedTotal *prometheus.CounterVec // by result (ok, error)
}

// New creates Metrics registered with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProviderRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idflow_provider_requests_total",
			Help: "Total number of verification provider calls by operation and outcome",
		}, []string{"operation", "outcome"}),

		ProviderRequestDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idflow_provider_request_duration_seconds",
			Help:    "Duration of verification provider calls by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),

		SessionsStartedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "idflow_sessions_started_total",
			Help: "Total number of new verification sessions created",
		}),

		SessionsResumedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "idflow_sessions_resumed_total",
			Help: "Total number of verification sessions resumed from the local store",
		}),

		SessionStoreFailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idflow_session_store_failures_total",
			Help: "Total number of session store failures by operation",
		}, []string{"op"}),

		WebhookOutcomesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idflow_webhook_outcomes_total",
			Help: "Total number of processed webhook events by terminal state",
		}, []string{"state"}),

		WebhooksInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "idflow_webhooks_in_flight",
			Help: "Number of webhook events currently being processed",
		}),

		ContractsSignedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idflow_contracts_signed_total",
			Help: "Total number of contract signing attempts by outcome",
		}, []string{"outcome"}),

		OutcomesPublishedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idflow_outcomes_published_total",
			Help: "Total number of verification outcome events published by result",
		}, []string{"result"}),
	}
}

// ObserveProviderCall records one provider call.
func (m *Metrics) ObserveProviderCall(operation, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ProviderRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.ProviderRequestDurationSeconds.WithLabelValues(operation).Observe(durationSeconds)
}

func (m *Metrics) IncrementSessionsStarted() {
	if m == nil {
		return
	}
	m.SessionsStartedTotal.Inc()
}

func (m *Metrics) IncrementSessionsResumed() {
	if m == nil {
		return
	}
	m.SessionsResumedTotal.Inc()
}

// RecordStoreFailure records a failed session store operation ("read", "corrupt" or "write").
func (m *Metrics) RecordStoreFailure(op string) {
	if m == nil {
		return
	}
	m.SessionStoreFailuresTotal.WithLabelValues(op).Inc()
}

// RecordWebhookOutcome records the terminal state of a webhook event.
func (m *Metrics) RecordWebhookOutcome(state string) {
	if m == nil {
		return
	}
	m.WebhookOutcomesTotal.WithLabelValues(state).Inc()
}

// TrackWebhook marks one webhook as in flight and returns the function that
// clears it.
func (m *Metrics) TrackWebhook() func() {
	if m == nil {
		return func() {}
	}
	m.WebhooksInFlight.Inc()
	return m.WebhooksInFlight.Dec
}

func (m *Metrics) RecordContractSigned(outcome string) {
	if m == nil {
		return
	}
	m.ContractsSignedTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordOutcomePublished(result string) {
	if m == nil {
		return
	}
	m.OutcomesPublishedTotal.WithLabelValues(result).Inc()
}
