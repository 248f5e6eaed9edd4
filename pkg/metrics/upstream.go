package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records outbound marketplace API activity.
type UpstreamMetrics struct {
	requests     *prometheus.CounterVec
	retries      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	degradations *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Marketplace API requests by endpoint and status.",
	}, []string{"endpoint", "status"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_retries_total",
		Help: "Retried marketplace API requests by endpoint.",
	}, []string{"endpoint"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of marketplace API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	degradations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichment_degradations_total",
		Help: "Enrichment items that fell back to a neutral default.",
	}, []string{"source"})
	reg.MustRegister(requests, retries, duration, degradations)
	return &UpstreamMetrics{
		requests:     requests,
		retries:      retries,
		duration:     duration,
		degradations: degradations,
	}
}

// ObserveRequest records one completed request and its duration.
func (m *UpstreamMetrics) ObserveRequest(endpoint, status string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(endpoint), normalizeLabel(status)).Inc()
	m.duration.WithLabelValues(normalizeLabel(endpoint)).Observe(elapsed.Seconds())
}

// IncRetry increments the retry counter for the named endpoint.
func (m *UpstreamMetrics) IncRetry(endpoint string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncDegradation counts an item that degraded to a neutral enrichment value.
func (m *UpstreamMetrics) IncDegradation(source string) {
	if m == nil || m.degradations == nil {
		return
	}
	m.degradations.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
