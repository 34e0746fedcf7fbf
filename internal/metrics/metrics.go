// Package metrics exposes Prometheus counters for the game backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "timer_game"

// Metrics groups the counters the services and worker pool report to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reservations *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	storeErrors  *prometheus.CounterVec
	archive      *prometheus.CounterVec
}

// New registers all counters on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nickname_reservations_total",
			Help:      "Nickname reservation attempts by outcome.",
		}, []string{"result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_submissions_total",
			Help:      "Score submissions by outcome.",
		}, []string{"result"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Key-value store failures by operation.",
		}, []string{"op"}),
		archive: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_events_total",
			Help:      "Game record archive worker events.",
		}, []string{"event"}),
	}

	reg.MustRegister(m.reservations, m.submissions, m.storeErrors, m.archive)
	return m
}

// Reservation counts a nickname reservation outcome (reserved, duplicate, invalid, error)
func (m *Metrics) Reservation(result string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(result).Inc()
}

// Submission counts a score submission outcome (accepted, invalid, unregistered, error)
func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// StoreError counts a failed store operation
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// Archive counts a worker pool event (processed, failed, backpressure)
func (m *Metrics) Archive(event string) {
	if m == nil {
		return
	}
	m.archive.WithLabelValues(event).Inc()
}
