package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	Logins           prometheus.Counter
	AuthFailures     prometheus.Counter
	TokenRefreshes   *prometheus.CounterVec
	TenantSwitches   *prometheus.CounterVec
	CredentialClears prometheus.Counter
	EndpointLatency  *prometheus.HistogramVec
}

// New creates and registers all metrics against the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics against the given registerer. Tests use a
// fresh registry per suite to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "gestor_logins_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "gestor_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gestor_token_refreshes_total",
			Help: "Total number of token refresh attempts, labeled by outcome",
		}, []string{"outcome"}),
		TenantSwitches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gestor_tenant_switches_total",
			Help: "Total number of tenant switches, labeled by vertical",
		}, []string{"vertical"}),
		CredentialClears: factory.NewCounter(prometheus.CounterOpts{
			Name: "gestor_credential_clears_total",
			Help: "Total number of full credential clears",
		}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gestor_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// IncrementLogins increments the successful login counter by 1.
func (m *Metrics) IncrementLogins() {
	if m != nil {
		m.Logins.Inc()
	}
}

// IncrementAuthFailures increments the auth failure counter by 1.
func (m *Metrics) IncrementAuthFailures() {
	if m != nil {
		m.AuthFailures.Inc()
	}
}

// IncrementTokenRefreshes records a refresh attempt with its outcome.
func (m *Metrics) IncrementTokenRefreshes(outcome string) {
	if m != nil {
		m.TokenRefreshes.WithLabelValues(outcome).Inc()
	}
}

// IncrementTenantSwitches records a committed tenant switch for a vertical.
func (m *Metrics) IncrementTenantSwitches(vertical string) {
	if m != nil {
		m.TenantSwitches.WithLabelValues(vertical).Inc()
	}
}

// IncrementCredentialClears increments the full clear counter by 1.
func (m *Metrics) IncrementCredentialClears() {
	if m != nil {
		m.CredentialClears.Inc()
	}
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	if m != nil {
		m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
	}
}
