// Package metrics 提供 EduRAG 服务的业务指标收集。
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edurag"

// Metrics EduRAG 业务指标。
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 指标
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// 摄取指标
	DocumentsIngested *prometheus.CounterVec
	ChunksIngested    prometheus.Counter
	IngestDuration    prometheus.Histogram

	// 检索指标
	Retrievals        *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram
	RetrievalHits     prometheus.Histogram

	// LLM 调用指标
	LLMCalls    *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec

	// 缓存指标
	CacheLookups *prometheus.CounterVec

	// 回收站清理
	TrashPurged *prometheus.CounterVec
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics 获取全局指标实例。
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = New(prometheus.NewRegistry())
	})
	return metricsInstance
}

// New 在 reg 上注册全部指标。
func New(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),

		DocumentsIngested: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_ingested_total",
				Help:      "Total number of document ingestions",
			},
			[]string{"status"},
		),
		ChunksIngested: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chunks_ingested_total",
				Help:      "Total number of chunks persisted",
			},
		),
		IngestDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Document ingestion duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),

		Retrievals: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retrievals_total",
				Help:      "Total number of similarity searches",
			},
			[]string{"backend", "status"},
		),
		RetrievalDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_duration_seconds",
				Help:      "Similarity search duration in seconds, embedding included",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		RetrievalHits: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "retrieval_hits",
				Help:      "Number of chunks returned per search",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
			},
		),

		LLMCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_calls_total",
				Help:      "Total number of LLM calls",
			},
			[]string{"operation", "status"},
		),
		LLMDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_duration_seconds",
				Help:      "LLM call duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),

		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Answer cache lookups",
			},
			[]string{"result"},
		),

		TrashPurged: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trash_purged_total",
				Help:      "Trashed items permanently removed by retention",
			},
			[]string{"kind"},
		),
	}
}

// PoolStats 协程池运行状态，由 pool.Pool 实现。
type PoolStats interface {
	Name() string
	Cap() int
	Running() int
}

// RegisterPool 以 GaugeFunc 暴露协程池的容量与运行中的 worker 数，采集时实时读取。
func (m *Metrics) RegisterPool(p PoolStats) error {
	labels := prometheus.Labels{"pool": p.Name()}
	for _, c := range []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "pool_capacity",
			Help:        "Worker pool capacity",
			ConstLabels: labels,
		}, func() float64 { return float64(p.Cap()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "pool_running_workers",
			Help:        "Workers currently running in the pool",
			ConstLabels: labels,
		}, func() float64 { return float64(p.Running()) }),
	} {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordIngestion 记录一次文档摄取。
func (m *Metrics) RecordIngestion(chunks int, duration time.Duration, err error) {
	m.DocumentsIngested.WithLabelValues(status(err)).Inc()
	m.IngestDuration.Observe(duration.Seconds())
	if err == nil {
		m.ChunksIngested.Add(float64(chunks))
	}
}

// RecordRetrieval 记录一次检索。
func (m *Metrics) RecordRetrieval(backend string, hits int, duration time.Duration, err error) {
	m.Retrievals.WithLabelValues(backend, status(err)).Inc()
	m.RetrievalDuration.Observe(duration.Seconds())
	if err == nil {
		m.RetrievalHits.Observe(float64(hits))
	}
}

// RecordLLMCall 记录一次 LLM 调用，operation 如 answer、quiz、notes。
func (m *Metrics) RecordLLMCall(operation string, duration time.Duration, err error) {
	m.LLMCalls.WithLabelValues(operation, status(err)).Inc()
	m.LLMDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheLookup 记录缓存命中情况。
func (m *Metrics) RecordCacheLookup(hit bool) {
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// RecordPurge 记录回收站清理数量。
func (m *Metrics) RecordPurge(kind string, n int64) {
	m.TrashPurged.WithLabelValues(kind).Add(float64(n))
}

// Handler 返回 /metrics 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware 返回记录 HTTP 指标的 gin 中间件。路径使用路由模板，避免 id 造成标签爆炸。
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
