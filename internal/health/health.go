// Package health implements a component-health interface, a registry of
// per-component status reports read through Get/All, plus Prometheus
// metrics for always-on service
// instrumentation. Grounded on
// 99souls-ariadne's engine/telemetry/metrics PrometheusProvider and
// sawpanic-cryptorun's metrics manifest for direct CounterVec/GaugeVec
// registration against a private *prometheus.Registry.
package health

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is a component's coarse health state: persistent input failure
// and downstream refusal escalate a component from OK to Degraded/Down;
// transient input failures do not.
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusDown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// Report is one component's current health snapshot.
type Report struct {
	Component string
	Status    Status
	Detail    string
	UpdatedAt time.Time
}

// Registry holds the latest Report per named component, read through Get
// and All. It also owns the Prometheus registry the /metrics puller scrapes.
type Registry struct {
	promReg *prometheus.Registry

	mu      sync.RWMutex
	reports map[string]Report

	componentStatus *prometheus.GaugeVec
}

// New creates an empty Registry with its own Prometheus registry (so tests
// never collide with the default global registry).
func New() *Registry {
	promReg := prometheus.NewRegistry()
	componentStatus := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "telemetry_component_status",
		Help: "Component health status: 0=ok, 1=degraded, 2=down.",
	}, []string{"component"})
	promReg.MustRegister(componentStatus)

	return &Registry{
		promReg:         promReg,
		reports:         make(map[string]Report),
		componentStatus: componentStatus,
	}
}

// Set records component's current status, updating the matching Prometheus
// gauge.
func (r *Registry) Set(component string, status Status, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[component] = Report{Component: component, Status: status, Detail: detail, UpdatedAt: time.Now()}
	r.componentStatus.WithLabelValues(component).Set(float64(status))
}

// Get returns the latest report for component, if any has been recorded.
func (r *Registry) Get(component string) (Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[component]
	return rep, ok
}

// All returns a snapshot of every component's latest report.
func (r *Registry) All() []Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Report, 0, len(r.reports))
	for _, rep := range r.reports {
		out = append(out, rep)
	}
	return out
}

// Registerer exposes the underlying Prometheus registry so Metrics (and any
// other instrumented component) can register its own collectors.
func (r *Registry) Registerer() prometheus.Registerer { return r.promReg }

// Handler returns the /metrics HTTP handler for the (out of scope) HTTP
// surface to mount.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.promReg, promhttp.HandlerOpts{})
}
