// Package metrics exposes Prometheus instrumentation for the workflow core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors published by the engine and the callback
// resolver. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Activations        *prometheus.CounterVec
	CallbacksAbsorbed  prometheus.Counter
	CallbacksRejected  prometheus.Counter
	ProcessesInFlight  prometheus.Gauge
	ProcessesCompleted prometheus.Counter
}

// Activation outcome label values.
const (
	OutcomeCompleted = "completed"
	OutcomeSuspended = "suspended"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_step_activations_total",
			Help: "Step activations by step name and outcome.",
		}, []string{"step", "outcome"}),
		CallbacksAbsorbed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onboard_callbacks_absorbed_total",
			Help: "Duplicate external callbacks absorbed as already processed.",
		}),
		CallbacksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onboard_callbacks_rejected_total",
			Help: "External callbacks rejected due to correlation mismatch.",
		}),
		ProcessesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onboard_processes_in_flight",
			Help: "Processes started and not yet terminal.",
		}),
		ProcessesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onboard_processes_completed_total",
			Help: "Processes that reached the completed state.",
		}),
	}
	reg.MustRegister(
		m.Activations,
		m.CallbacksAbsorbed,
		m.CallbacksRejected,
		m.ProcessesInFlight,
		m.ProcessesCompleted,
	)
	return m
}

// Activation records a step activation outcome; safe on nil receiver.
func (m *Metrics) Activation(step, outcome string) {
	if m == nil {
		return
	}
	m.Activations.WithLabelValues(step, outcome).Inc()
}

// CallbackAbsorbed records a duplicate delivery; safe on nil receiver.
func (m *Metrics) CallbackAbsorbed() {
	if m == nil {
		return
	}
	m.CallbacksAbsorbed.Inc()
}

// CallbackRejected records a correlation mismatch; safe on nil receiver.
func (m *Metrics) CallbackRejected() {
	if m == nil {
		return
	}
	m.CallbacksRejected.Inc()
}

// ProcessStarted adjusts the in-flight gauge; safe on nil receiver.
func (m *Metrics) ProcessStarted() {
	if m == nil {
		return
	}
	m.ProcessesInFlight.Inc()
}

// ProcessFinished adjusts the gauge and, for completed, the counter; safe on
// nil receiver.
func (m *Metrics) ProcessFinished(completed bool) {
	if m == nil {
		return
	}
	m.ProcessesInFlight.Dec()
	if completed {
		m.ProcessesCompleted.Inc()
	}
}
