package health

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics registers and updates every counter/gauge this package exposes:
// scheduler query outcomes, fusion events by variant, alerts fired/
// throttled, and ring-buffer fill ratio. It satisfies
// internal/scheduler.Metrics structurally (no import — scheduler never
// depends on health, only cmd/telemetryd wires the two together).
type Metrics struct {
	querySuccess *prometheus.CounterVec
	queryFailure *prometheus.CounterVec
	frameDropped prometheus.Counter

	fusionEvents *prometheus.CounterVec

	alertsFired     *prometheus.CounterVec
	alertsThrottled prometheus.Counter

	ringBufferFill *prometheus.GaugeVec
}

// NewMetrics registers every collector against reg (typically a
// *Registry's Registerer()).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		querySuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_scheduler_query_success_total",
			Help: "Successful bus PID queries, by PID name.",
		}, []string{"pid"}),
		queryFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_scheduler_query_failure_total",
			Help: "Failed bus PID queries, by PID name.",
		}, []string{"pid"}),
		frameDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_scheduler_frame_dropped_total",
			Help: "Sensor frames dropped because the ingest channel was full.",
		}),
		fusionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_fusion_events_total",
			Help: "Fused incident events emitted, by variant.",
		}, []string{"variant"}),
		alertsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_alerts_fired_total",
			Help: "Alerts fired, by fault label.",
		}, []string{"label"}),
		alertsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_alerts_throttled_total",
			Help: "Alert raises suppressed by cooldown or the hourly cap.",
		}),
		ringBufferFill: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "telemetry_ring_buffer_fill_ratio",
			Help: "Ring buffer occupancy as a fraction of capacity, by buffer name.",
		}, []string{"buffer"}),
	}

	reg.MustRegister(
		m.querySuccess, m.queryFailure, m.frameDropped,
		m.fusionEvents,
		m.alertsFired, m.alertsThrottled,
		m.ringBufferFill,
	)

	return m
}

// ObserveQuerySuccess implements internal/scheduler.Metrics.
func (m *Metrics) ObserveQuerySuccess(pidName string) { m.querySuccess.WithLabelValues(pidName).Inc() }

// ObserveQueryFailure implements internal/scheduler.Metrics.
func (m *Metrics) ObserveQueryFailure(pidName string) { m.queryFailure.WithLabelValues(pidName).Inc() }

// ObserveFrameDropped implements internal/scheduler.Metrics.
func (m *Metrics) ObserveFrameDropped() { m.frameDropped.Inc() }

// ObserveFusionEvent records a fused event emission by variant.
func (m *Metrics) ObserveFusionEvent(variant string) { m.fusionEvents.WithLabelValues(variant).Inc() }

// ObserveAlertFired records an alert that passed every gate in
// internal/alerts.Manager.ShouldFire.
func (m *Metrics) ObserveAlertFired(label string) { m.alertsFired.WithLabelValues(label).Inc() }

// ObserveAlertThrottled records an alert raise suppressed by cooldown or the
// hourly cap.
func (m *Metrics) ObserveAlertThrottled() { m.alertsThrottled.Inc() }

// SetRingBufferFill records a ring buffer's current fill ratio.
func (m *Metrics) SetRingBufferFill(buffer string, ratio float64) {
	m.ringBufferFill.WithLabelValues(buffer).Set(ratio)
}
