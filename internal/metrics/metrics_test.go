package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCalculation(t *testing.T) {
	m := New()
	m.ObserveCalculation("Agil", time.Now(), 5.5)
	m.ObserveCalculation("", time.Now(), 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("Agil")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("none")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Calculations), "one series per method")
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.EvaluationSaves.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ipa_evaluation_saves_total 1")
}
