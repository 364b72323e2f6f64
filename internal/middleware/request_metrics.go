package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
)

func RequestMetrics(metrics *instrumentation.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			metrics.GaugeRequests.Inc()
			defer func(begin time.Time) {
				metrics.GaugeRequests.Dec()
				metrics.HistRequestDuration.Observe(time.Since(begin).Seconds())
			}(time.Now())

			resp := newStatusRecorder(w)
			next.ServeHTTP(resp, req)

			metrics.CounterRequests.With(prometheus.Labels{
				"method": req.Method,
				"status": strconv.Itoa(resp.statusCode),
			}).Inc()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
