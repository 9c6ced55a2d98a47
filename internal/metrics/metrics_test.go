package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSubmission(t *testing.T) {
	m := New()

	m.ObserveSubmission("contact", OutcomeSuccess)
	m.ObserveSubmission("contact", OutcomeSuccess)
	m.ObserveSubmission("checkout", "validation_error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("contact", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("checkout", "validation_error")))
}

func TestObserveUpstream(t *testing.T) {
	m := New()

	m.ObserveUpstream("stripe", 120*time.Millisecond, nil)
	m.ObserveUpstream("stripe", 80*time.Millisecond, errors.New("card_declined"))

	count, err := testutil.GatherAndCount(m.Registry, "taxsite_upstream_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveSubmission("contact", OutcomeSuccess)
		m.ObserveUpstream("resend", time.Second, nil)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveSubmission("contact", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `taxsite_form_submissions_total{form="contact",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
