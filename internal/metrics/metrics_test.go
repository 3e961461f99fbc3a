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

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHTTPMiddleware(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/api/recipes/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/abc", nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/recipes/:id", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestCounters(t *testing.T) {
	m := New()
	m.AIRequest("suggest-tags", OutcomeSuccess, 10*time.Millisecond)
	m.ImageDeleted(OutcomeError)
	m.ImageDeleted(OutcomeError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiRequestsTotal.WithLabelValues("suggest-tags", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.imageDeletesTotal.WithLabelValues(OutcomeError)))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var m *Collector
	assert.NotPanics(t, func() {
		m.AIRequest("x", OutcomeError, 0)
		m.ImageDeleted(OutcomeSuccess)
	})

	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
