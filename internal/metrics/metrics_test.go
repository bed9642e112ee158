package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPoll(t *testing.T) {
	m := New()

	m.RecordPoll()
	m.RecordPoll()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.providerPolls))
}

func TestRecordBootstrapAttempt(t *testing.T) {
	m := New()

	m.RecordBootstrapAttempt(errors.New("connection refused"))
	m.RecordBootstrapAttempt(errors.New("connection refused"))
	m.RecordBootstrapAttempt(nil)

	failed, err := m.bootstrapAttempts.GetMetricWithLabelValues(ResultError)
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(failed))

	succeeded, err := m.bootstrapAttempts.GetMetricWithLabelValues(ResultSuccess)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(succeeded))
}

func TestObservePhase(t *testing.T) {
	m := New()

	m.ObservePhase("wait", 90*time.Second)

	assert.Equal(t, 1, testutil.CollectAndCount(m.phaseDuration, "seedmaster_phase_duration_seconds"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordPoll()
		m.RecordBootstrapAttempt(nil)
		m.ObservePhase("create", time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordPoll()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "seedmaster_provider_polls_total 1")
}
