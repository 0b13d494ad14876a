package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New("test", zap.New(core)), logs
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, childCtx := tracer.StartSpan(ctx, "child")

	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
}

func TestCloseFlushesSpans(t *testing.T) {
	tracer, logs := newObservedTracer()

	span, _ := tracer.StartSpan(context.Background(), "ok")
	span.Finish()
	tracer.Submit(span)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()
	tracer.Close()
	tracer.Submit(span)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("span completed with error").Len())
}

func TestHTTPMiddlewarePropagatesHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer()

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/api/health", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(TraceHeader, "req_incoming")
	req.Header.Set(SpanHeader, "req_parent")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, TraceID("req_incoming"), seen)
	assert.Equal(t, "req_incoming", rec.Header().Get(TraceHeader))
	assert.NotEqual(t, "req_parent", rec.Header().Get(SpanHeader))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Contains(t, rec.Header().Get(TraceHeader), "req_")

	tracer.Close()
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "GET /api/health", entries[0].ContextMap()["operation"])
	assert.Equal(t, "req_parent", entries[0].ContextMap()["parent_id"])
}
