// Package metrics provides Prometheus metrics for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServerMetrics collects and exposes server-side Prometheus metrics.
type ServerMetrics struct {
	registry *prometheus.Registry

	// Proxy metrics
	ProxyRequestsTotal  *prometheus.CounterVec
	ProxyUpstreamErrors *prometheus.CounterVec
	ProxyDuration       *prometheus.HistogramVec

	// Auth metrics
	NoncesIssued  prometheus.Counter
	AuthExchanges *prometheus.CounterVec
	Logouts       prometheus.Counter
}

// NewServerMetrics creates a new server metrics collector.
func NewServerMetrics() *ServerMetrics {
	registry := prometheus.NewRegistry()

	m := &ServerMetrics{
		registry: registry,

		ProxyRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rinkside_proxy_requests_total",
				Help: "Total number of proxy requests served",
			},
			[]string{"route", "status"},
		),
		ProxyUpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rinkside_proxy_upstream_errors_total",
				Help: "Total number of upstream failures by route",
			},
			[]string{"route"},
		),
		ProxyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rinkside_proxy_duration_seconds",
				Help:    "Proxy request duration",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
			},
			[]string{"route"},
		),

		NoncesIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rinkside_auth_nonces_issued_total",
				Help: "Total number of sign-in nonces issued",
			},
		),
		AuthExchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rinkside_auth_exchanges_total",
				Help: "Total number of authenticate exchanges by outcome",
			},
			[]string{"outcome"},
		),
		Logouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rinkside_auth_logouts_total",
				Help: "Total number of logouts",
			},
		),
	}

	registry.MustRegister(
		m.ProxyRequestsTotal,
		m.ProxyUpstreamErrors,
		m.ProxyDuration,
		m.NoncesIssued,
		m.AuthExchanges,
		m.Logouts,
	)
	return m
}

// Registry returns the prometheus registry.
func (m *ServerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordProxy records a completed proxy request.
func (m *ServerMetrics) RecordProxy(route, status string, durationSec float64) {
	m.ProxyRequestsTotal.WithLabelValues(route, status).Inc()
	m.ProxyDuration.WithLabelValues(route).Observe(durationSec)
}

// RecordUpstreamError records an upstream failure.
func (m *ServerMetrics) RecordUpstreamError(route string) {
	m.ProxyUpstreamErrors.WithLabelValues(route).Inc()
}

// RecordAuthExchange records an authenticate attempt by outcome.
func (m *ServerMetrics) RecordAuthExchange(outcome string) {
	m.AuthExchanges.WithLabelValues(outcome).Inc()
}
