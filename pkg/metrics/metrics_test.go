package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCheck(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "clinic", "test")

	m.ObserveCheck("shift", "")
	m.ObserveCheck("shift", "ShiftOverlap")
	m.ObserveCheck("shift", "ShiftOverlap")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScheduleChecks.WithLabelValues("shift", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScheduleChecks.WithLabelValues("shift", "ShiftOverlap")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCheck("shift", "")
		m.ObserveAvailability("appointment")
	})
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry(), "clinic", "a")
		NewMetrics(prometheus.NewRegistry(), "clinic", "a")
	})
}
