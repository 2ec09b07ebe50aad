// Package metrics exposes workflow counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registrations *prometheus.CounterVec
	payments      *prometheus.CounterVec
	approvals     *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventreg",
			Name:      "registrations_total",
			Help:      "Team registration attempts by outcome.",
		}, []string{"result"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventreg",
			Name:      "payment_submissions_total",
			Help:      "Transaction reference submissions by outcome.",
		}, []string{"result"}),
		approvals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventreg",
			Name:      "approvals_total",
			Help:      "Admin approvals by outcome.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventreg",
			Name:      "notifications_total",
			Help:      "Approval notifications by channel and outcome.",
		}, []string{"channel", "result"}),
	}
	reg.MustRegister(m.registrations, m.payments, m.approvals, m.notifications)
	return m
}

// The recorders below accept a nil receiver so callers can run without metrics.

func (m *Metrics) Registration(result string) {
	if m != nil {
		m.registrations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Payment(result string) {
	if m != nil {
		m.payments.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Approval(result string) {
	if m != nil {
		m.approvals.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Notification(channel, result string) {
	if m != nil {
		m.notifications.WithLabelValues(channel, result).Inc()
	}
}
