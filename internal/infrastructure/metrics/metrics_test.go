package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	m := New()

	m.Extraction(OutcomeSuccess, 2*time.Second)
	m.Extraction(OutcomeSuccess, time.Second)
	m.Extraction(OutcomeParseError, 0)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.MatchScore(67)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.extractionsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractionsTotal.WithLabelValues(OutcomeParseError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, uint64(2), histogramCount(t, m, "recipe_extraction_duration_seconds"))
	assert.Equal(t, uint64(1), histogramCount(t, m, "recipe_match_score"))
}

func histogramCount(t *testing.T, m *Collector, name string) uint64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.GetMetric())
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestCollector_NilIsNoop(t *testing.T) {
	var m *Collector
	assert.NotPanics(t, func() {
		m.Extraction(OutcomeSuccess, time.Second)
		m.CacheLookup(true)
		m.MatchScore(10)
	})
	assert.Nil(t, m.Registry())
}

func TestCollector_HTTPMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/ping", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
