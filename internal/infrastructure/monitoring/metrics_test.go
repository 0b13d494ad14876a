package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	m := NewMetrics()
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/api/projects/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for _, p := range []string{"/api/projects/a", "/api/projects/b", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/projects/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(3), snap.TotalErrors)
}

func TestDomainCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordCommand("help")
	m.RecordCommand("help")
	m.RecordCommand("unknown")
	m.IncSessions()
	m.IncSessions()
	m.DecSessions()
	m.RecordContact("accepted")
	m.RecordEmail("auto_reply", nil)
	m.RecordEmail("notification", errors.New("smtp down"))
	m.RecordRateLimited("contact")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TerminalCommands.WithLabelValues("help")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TerminalSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("notification", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("contact")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalCommands)
	assert.Equal(t, int64(1), snap.ActiveSessions)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordContact("invalid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `portfolio_contact_submissions_total{outcome="invalid"} 1`)
	assert.Contains(t, rec.Body.String(), "portfolio_uptime_seconds")
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.RecordContact("accepted")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ContactSubmissions.WithLabelValues("accepted")))
}
