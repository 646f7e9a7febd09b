package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch(FetchOK)
		m.IncFetchRetry()
		m.IncTLSDowngrade()
		m.AddSearchHits("google", 3)
		m.IncSelectorFailOpen()
		m.ObserveExtraction("company", "json")
		m.ObserveLookup("company", "ok")
		m.AddTokens(10, 5)
	})
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveFetch(FetchOK)
	m.ObserveFetch(FetchOK)
	m.ObserveFetch(FetchStatus)
	m.IncFetchRetry()
	m.IncTLSDowngrade()
	m.AddSearchHits("google", 5)
	m.AddSearchHits("google", 0)
	m.IncSelectorFailOpen()
	m.ObserveExtraction("company", "")
	m.AddTokens(100, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues(FetchOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues(FetchStatus)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchRetriesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TLSDowngradesTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SearchHitsTotal.WithLabelValues("google")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SelectorFailOpen))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("company", "none")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.LLMTokensTotal.WithLabelValues("input")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.IncTLSDowngrade()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prospect_research_fetch_tls_downgrades_total 1")
}
