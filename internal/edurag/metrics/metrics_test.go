package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMetrics_Singleton(t *testing.T) {
	assert.Same(t, GetMetrics(), GetMetrics())
}

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordIngestion(12, time.Second, nil)
	m.RecordIngestion(0, time.Second, errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsIngested.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.ChunksIngested))

	m.RecordRetrieval("sql", 5, time.Millisecond, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retrievals.WithLabelValues("sql", "success")))

	m.RecordLLMCall("answer", time.Second, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMCalls.WithLabelValues("answer", "success")))

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))

	m.RecordPurge("quiz", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TrashPurged.WithLabelValues("quiz")))
}

type fakePool struct{ running int }

func (fakePool) Name() string    { return "embedding" }
func (fakePool) Cap() int        { return 4 }
func (p *fakePool) Running() int { return p.running }

func TestRegisterPool(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	p := &fakePool{running: 1}
	require.NoError(t, m.RegisterPool(p))
	assert.Error(t, m.RegisterPool(p), "duplicate pool name")

	p.running = 3
	expected := `
# HELP edurag_pool_capacity Worker pool capacity
# TYPE edurag_pool_capacity gauge
edurag_pool_capacity{pool="embedding"} 4
# HELP edurag_pool_running_workers Workers currently running in the pool
# TYPE edurag_pool_running_workers gauge
edurag_pool_running_workers{pool="embedding"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"edurag_pool_capacity", "edurag_pool_running_workers"))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/quiz/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quiz/abc", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/quiz/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "edurag_http_requests_total"))
}
