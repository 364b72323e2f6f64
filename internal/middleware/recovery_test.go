package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
)

type panicRecTestHandler struct {
	panic  bool
	called bool
}

func (p *panicRecTestHandler) ServeHTTP(http.ResponseWriter, *http.Request) {
	p.called = true
	if p.panic {
		panic("YOLO")
	}
}

func TestPanicRecovery_NoPanic(t *testing.T) {
	metrics := instrumentation.NewTestManager()
	next := &panicRecTestHandler{}

	rr := httptest.NewRecorder()
	PanicRecovery(metrics)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, next.called)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.CounterHandleRequestPanic))
}

func TestPanicRecovery_Panic(t *testing.T) {
	metrics := instrumentation.NewTestManager()
	next := &panicRecTestHandler{panic: true}

	rr := httptest.NewRecorder()
	PanicRecovery(metrics)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, next.called)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CounterHandleRequestPanic))
}

func TestRequestMetrics(t *testing.T) {
	metrics := instrumentation.NewTestManager()
	handler := RequestMetrics(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CounterRequests.WithLabelValues("POST", "418")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.GaugeRequests))
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := CORSMiddleware("https://app.fitcoach.io, http://localhost:3000")(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	CORSMiddleware("*")(next).ServeHTTP(rr, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
