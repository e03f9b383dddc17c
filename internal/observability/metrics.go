// Package observability exposes Prometheus metrics of the notification dispatcher.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tidbit"

// DispatchMetrics records dispatcher activity. A nil *DispatchMetrics records nothing.
type DispatchMetrics struct {
	ticks        *prometheus.CounterVec
	tickDuration prometheus.Histogram
	devices      prometheus.Gauge
	skipped      *prometheus.CounterVec
	sent         prometheus.Counter
	failed       *prometheus.CounterVec
	batchSize    prometheus.Histogram
}

// NewDispatchMetrics registers the dispatcher metrics on reg.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	factory := promauto.With(reg)
	return &DispatchMetrics{
		// Labels: status (ok, registry_error, panic)
		ticks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "ticks_total",
			Help:      "Total dispatcher ticks by outcome",
		}, []string{"status"}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "tick_duration_seconds",
			Help:      "Time to evaluate and notify every device in a tick",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		devices: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "enabled_devices",
			Help:      "Devices with notifications enabled in the latest tick",
		}),
		// Labels: reason (see notification.SkipReason)
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "skipped_total",
			Help:      "Total devices skipped by reason",
		}, []string{"reason"}),
		sent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "sent_total",
			Help:      "Total notifications accepted by the push gateway",
		}),
		// Labels: stage (batch, ticket)
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "failed_total",
			Help:      "Total notifications that failed to send",
		}, []string{"stage"}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "batch_size",
			Help:      "Messages per push gateway request",
			Buckets:   []float64{1, 5, 10, 25, 50, 75, 100},
		}),
	}
}

func (m *DispatchMetrics) TickCompleted(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(status).Inc()
	m.tickDuration.Observe(elapsed.Seconds())
}

func (m *DispatchMetrics) DevicesListed(n int) {
	if m == nil {
		return
	}
	m.devices.Set(float64(n))
}

func (m *DispatchMetrics) Skipped(reason string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(reason).Inc()
}

func (m *DispatchMetrics) BatchSent(size int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
}

func (m *DispatchMetrics) Sent(n int) {
	if m == nil {
		return
	}
	m.sent.Add(float64(n))
}

func (m *DispatchMetrics) Failed(stage string, n int) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(stage).Add(float64(n))
}
