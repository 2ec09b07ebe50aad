package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Registration("ok")
	m.Registration("ok")
	m.Registration("validation")
	m.Notification("email", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.registrations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("validation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("email", "error")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Registration("ok")
		m.Payment("ok")
		m.Approval("ok")
		m.Notification("email", "ok")
	})
}
