package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GopherJ/xactor/core/metrics"
	"github.com/GopherJ/xactor/core/service"
)

// serviceMetrics implements service.Metrics using Prometheus.
type serviceMetrics struct {
	resolveDuration *prometheus.HistogramVec
	resolvedTotal   *prometheus.CounterVec
	startFailed     *prometheus.CounterVec
	entries         *prometheus.GaugeVec
}

// NewServiceMetrics creates and registers the registry metrics.
func NewServiceMetrics(reg prometheus.Registerer) service.Metrics {
	const subsystem = "service"
	m := &serviceMetrics{
		resolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "resolve_duration_seconds",
			Help:      "Time to resolve a service, including startup on first use",
			Buckets:   defaultBuckets,
		}, []string{"scope"}),

		resolvedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "resolved_total",
			Help:      "Total number of successful resolutions",
		}, []string{"scope", "service", "created"}),

		startFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "start_failures_total",
			Help:      "Total number of service instances that failed to start",
		}, []string{"scope", "service"}),

		// Confined registries all report into the same series; the gauge
		// holds the last reported size.
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "registry_entries",
			Help:      "Number of services held by a registry",
		}, []string{"scope"}),
	}

	reg.MustRegister(
		m.resolveDuration,
		m.resolvedTotal,
		m.startFailed,
		m.entries,
	)

	return m
}

func (m *serviceMetrics) ResolveDuration(scope service.Scope) metrics.Timer {
	return newTimer(m.resolveDuration.WithLabelValues(string(scope)))
}

func (m *serviceMetrics) Resolved(scope service.Scope, name string, created bool) {
	m.resolvedTotal.WithLabelValues(string(scope), name, boolToStr(created)).Inc()
}

func (m *serviceMetrics) StartFailed(scope service.Scope, name string) {
	m.startFailed.WithLabelValues(string(scope), name).Inc()
}

func (m *serviceMetrics) Entries(scope service.Scope, n int) {
	m.entries.WithLabelValues(string(scope)).Set(float64(n))
}

var _ service.Metrics = (*serviceMetrics)(nil)
