package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestTrackerRecordsOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	require.NoError(t, m.Track("account:stamp_login").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("account:stamp_login").End(boom), boom)

	assert.Equal(t, 1.0, value(t, m.runs.WithLabelValues("account:stamp_login", "success")))
	assert.Equal(t, 1.0, value(t, m.runs.WithLabelValues("account:stamp_login", "failure")))
	assert.Equal(t, 1.0, value(t, m.failures.WithLabelValues("account:stamp_login")))
}

func TestEnqueuedCountsSubmissions(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.Enqueued("account:stamp_login", nil)
	m.Enqueued("account:stamp_login", errors.New("redis down"))
	m.Enqueued("", nil)

	assert.Equal(t, 1.0, value(t, m.enqueued.WithLabelValues("account:stamp_login", "success")))
	assert.Equal(t, 1.0, value(t, m.enqueued.WithLabelValues("account:stamp_login", "failure")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	require.NoError(t, m.Track("x").End(nil))
	m.Enqueued("x", nil)
}
