package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
)

func TestWindowLimiter(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	rl := NewWindowLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, retryAfter, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retryAfter)

	ok, _, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys have separate budgets")

	now = now.Add(61 * time.Second)
	ok, _, _ = rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "window slid past the old requests")
}

type fakeRedisRate struct {
	allowed int
	err     error
	keys    []string
}

func (f *fakeRedisRate) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return &redis_rate.Result{Limit: limit, Allowed: f.allowed, RetryAfter: 3 * time.Second}, nil
}

func TestRedisLimiter(t *testing.T) {
	fake := &fakeRedisRate{allowed: 1}
	rl := NewRedisLimiter(fake, "api", 60, time.Minute)

	ok, _, err := rl.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"api:1.2.3.4"}, fake.keys)

	fake.allowed = 0
	ok, retryAfter, err := rl.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3*time.Second, retryAfter)
}

func TestRateLimit(t *testing.T) {
	metrics := instrumentation.NewTestManager()
	fake := &fakeRedisRate{allowed: 0}
	handler := RateLimit(NewRedisLimiter(fake, "api", 60, time.Minute), nil, metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "3", rr.Header().Get("Retry-After"))
	assert.Equal(t, []string{"api:203.0.113.7"}, fake.keys, "forwarded header ignored without trusted proxies")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CounterRateLimited))

	fake.err = errors.New("redis down")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimit_ForwardedForRotationSharesBudget(t *testing.T) {
	handler := RateLimit(NewWindowLimiter(2, time.Minute), nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:43210"
	assert.Equal(t, "192.168.1.5", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 8.8.8.8 ,1.1.1.1")
	assert.Equal(t, "192.168.1.5", ClientIP(req))
}

func TestIPResolver(t *testing.T) {
	res, err := NewIPResolver([]string{"10.0.0.0/8", "192.168.1.5"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{name: "untrusted peer", remote: "203.0.113.7:1", xff: "8.8.8.8", want: "203.0.113.7"},
		{name: "trusted peer without header", remote: "192.168.1.5:1", want: "192.168.1.5"},
		{name: "trusted peer", remote: "192.168.1.5:1", xff: "8.8.8.8", want: "8.8.8.8"},
		{name: "spoofed left entries skipped", remote: "10.1.2.3:1", xff: "6.6.6.6, 8.8.8.8, 10.0.0.2", want: "8.8.8.8"},
		{name: "garbage hop", remote: "10.1.2.3:1", xff: "8.8.8.8, nonsense", want: "10.1.2.3"},
		{name: "all hops trusted", remote: "10.1.2.3:1", xff: "10.0.0.9", want: "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, res.ClientIP(req))
		})
	}

	var none *IPResolver
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1"
	req.Header.Set("X-Forwarded-For", "8.8.8.8")
	assert.Equal(t, "203.0.113.7", none.ClientIP(req))

	_, err = NewIPResolver([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = NewIPResolver([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func storedKeys(rl *WindowLimiter) int {
	n := 0
	rl.store.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func TestWindowLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	rl := NewWindowLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		ok, _, err := rl.Allow(ctx, fmt.Sprintf("10.0.%d.%d", i/256, i%256))
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, 100, storedKeys(rl))

	now = now.Add(2 * time.Minute)
	ok, _, _ := rl.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
	assert.Equal(t, 1, storedKeys(rl), "idle keys swept")

	ok, _, _ = rl.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "a live key keeps its budget across sweeps")
}
