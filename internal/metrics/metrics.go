// Package metrics holds the Prometheus collectors recorded by the API client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all client-side Prometheus metrics.
// Pass to components that need to record metrics; a nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RefreshTotal    *prometheus.CounterVec
	RefreshWaiters  prometheus.Gauge
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "waterres_client",
				Name:      "requests_total",
				Help:      "Total number of API calls issued",
			},
			[]string{"method", "outcome"}, // outcome=ok or an error kind
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "waterres_client",
				Name:      "request_duration_seconds",
				Help:      "API call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RefreshTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "waterres_client",
				Name:      "refresh_total",
				Help:      "Access token refresh attempts",
			},
			[]string{"result"}, // result=success/failure
		),
		RefreshWaiters: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "waterres_client",
				Name:      "refresh_waiters",
				Help:      "Calls currently suspended on an in-flight refresh",
			},
		),
	}
}

func (m *Metrics) ObserveRequest(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) ObserveRefresh(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.RefreshTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) AddRefreshWaiters(delta float64) {
	if m == nil {
		return
	}
	m.RefreshWaiters.Add(delta)
}
