package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tartampluch/go-wedding/internal/config"
)

// Metrics records request outcomes and latency per endpoint.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: config.MetricsSubsystemAPI,
			Name:      "requests_total",
			Help:      "Backend requests by endpoint, method and outcome.",
		}, []string{config.MetricLabelEndpoint, config.MetricLabelMethod, config.MetricLabelOutcome}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: config.MetricsSubsystemAPI,
			Name:      "request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{config.MetricLabelEndpoint, config.MetricLabelMethod}),
	}
}

func (m *Metrics) observe(endpoint, method string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := config.MetricOutcomeOK
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.requests.WithLabelValues(endpoint, method, outcome).Inc()
	m.duration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}
