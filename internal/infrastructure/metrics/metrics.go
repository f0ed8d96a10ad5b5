package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 抽取結果標籤
const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeParseError  = "parse_error"
	OutcomeUpstream    = "upstream_error"
	OutcomeUnavailable = "not_configured"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// Collector 服務指標；nil Collector 的所有方法都是 no-op
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	extractionsTotal    *prometheus.CounterVec
	extractionDuration  prometheus.Histogram
	cacheLookupsTotal   *prometheus.CounterVec
	matchScore          prometheus.Histogram
}

// New 創建指標收集器，每個實例使用獨立的 registry
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		extractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_extractions_total",
				Help: "Recipe extraction attempts by outcome",
			},
			[]string{"outcome"},
		),
		extractionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recipe_extraction_duration_seconds",
				Help:    "Time spent in the generative model per extraction",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
		),
		cacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_cache_lookups_total",
				Help: "Recipe cache lookups by result",
			},
			[]string{"result"},
		),
		matchScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recipe_match_score",
				Help:    "Cookability score distribution (0-100)",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}
}

// Registry 底層 registry，測試時可直接讀取
func (m *Collector) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler /metrics 端點
func (m *Collector) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HTTPMiddleware 記錄請求數與延遲；未匹配路由統一標記為 unmatched
func (m *Collector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Extraction 記錄一次抽取
func (m *Collector) Extraction(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.extractionDuration.Observe(duration.Seconds())
	}
}

// CacheLookup 記錄快取命中與否
func (m *Collector) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

// MatchScore 記錄可烹調分數
func (m *Collector) MatchScore(score int) {
	if m == nil {
		return
	}
	m.matchScore.Observe(float64(score))
}
