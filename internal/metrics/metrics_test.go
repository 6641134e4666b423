package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRemote(t *testing.T) {
	c := NewCollector()

	c.ObserveRemote("plans", StatusOK, 10*time.Millisecond)
	c.ObserveRemote("plans", StatusOK, 20*time.Millisecond)
	c.ObserveRemote("translate", StatusError, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.remoteTotal.WithLabelValues("plans", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.remoteTotal.WithLabelValues("translate", StatusError)))
}

func TestObserveRelevance(t *testing.T) {
	c := NewCollector()

	c.ObserveRelevance([]bool{true, false, true})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.renderedLines.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.renderedLines.WithLabelValues("false")))
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.SetSessions(3)
	c.ObservePrecision(0.5, []float64{0.25, 0.75})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chimera_sessions 3")
	assert.Contains(t, string(body), `chimera_average_precision_count{kind="shuffled"} 2`)
}

func TestObserveStale(t *testing.T) {
	c := NewCollector()

	c.ObserveStale("plans")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.staleTotal.WithLabelValues("plans")))
}
