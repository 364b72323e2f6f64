package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/yusufkecer/fitcoach-backend/internal/instrumentation"
)

// Limiter decides whether one more request for key fits in the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type windowEntry struct {
	requests []time.Time
	mu       sync.Mutex
	// set once the entry was swept from the store
	dead bool
}

// WindowLimiter is a per-process sliding window limiter. Keys without a
// request inside the window are swept at most once per window.
type WindowLimiter struct {
	max    int
	window time.Duration
	store  sync.Map
	now    func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func NewWindowLimiter(max int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{max: max, window: window, now: time.Now}
}

func (rl *WindowLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := rl.now()
	cutoff := now.Add(-rl.window)
	rl.sweep(now, cutoff)

	for {
		v, _ := rl.store.LoadOrStore(key, &windowEntry{})
		entry := v.(*windowEntry)

		entry.mu.Lock()
		if entry.dead {
			entry.mu.Unlock()
			continue
		}
		allowed, retryAfter := rl.record(entry, now, cutoff)
		entry.mu.Unlock()
		return allowed, retryAfter, nil
	}
}

func (rl *WindowLimiter) record(entry *windowEntry, now, cutoff time.Time) (bool, time.Duration) {
	entry.prune(cutoff)
	if len(entry.requests) >= rl.max {
		return false, entry.requests[0].Add(rl.window).Sub(now)
	}
	entry.requests = append(entry.requests, now)
	return true, 0
}

func (rl *WindowLimiter) sweep(now, cutoff time.Time) {
	rl.sweepMu.Lock()
	if now.Sub(rl.lastSweep) < rl.window {
		rl.sweepMu.Unlock()
		return
	}
	rl.lastSweep = now
	rl.sweepMu.Unlock()

	rl.store.Range(func(k, v interface{}) bool {
		entry := v.(*windowEntry)
		entry.mu.Lock()
		entry.prune(cutoff)
		if len(entry.requests) == 0 {
			entry.dead = true
			rl.store.Delete(k)
		}
		entry.mu.Unlock()
		return true
	})
}

func (e *windowEntry) prune(cutoff time.Time) {
	filtered := e.requests[:0]
	for _, t := range e.requests {
		if t.After(cutoff) {
			filtered = append(filtered, t)
		}
	}
	e.requests = filtered
}

type redisRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RedisLimiter shares the budget between all instances through Redis.
type RedisLimiter struct {
	limiter redisRateLimiter
	limit   redis_rate.Limit
	prefix  string
}

// NewRedisLimiter allows max requests per window for every key.
func NewRedisLimiter(limiter redisRateLimiter, prefix string, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		limiter: limiter,
		limit:   redis_rate.Limit{Rate: max, Burst: max, Period: window},
		prefix:  prefix,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := rl.limiter.Allow(ctx, rl.prefix+":"+key, rl.limit)
	if err != nil {
		return false, 0, err
	}
	return res.Allowed > 0, res.RetryAfter, nil
}

// RateLimit spends one unit of the client's budget per request. Clients are
// told apart by ips; a nil resolver keys on the peer address.
func RateLimit(limiter Limiter, ips *IPResolver, metrics *instrumentation.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := limiter.Allow(r.Context(), ips.ClientIP(r))
			if err != nil {
				// fail open
				log.Errorf("rate limiter: %s", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if metrics != nil {
					metrics.CounterRateLimited.Inc()
				}
				TooManyRequests(w, retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TooManyRequests writes the 429 answer with a Retry-After header.
func TooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	secs := math.Ceil(retryAfter.Seconds())
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(secs)))
	}
	writeError(w, http.StatusTooManyRequests, fmt.Sprintf("too many requests, retry after %.0f seconds", secs))
}

// IPResolver finds the client address of a request. X-Forwarded-For is only
// read when the peer is one of the trusted proxies.
type IPResolver struct {
	trusted []*net.IPNet
}

// NewIPResolver accepts proxy addresses as single IPs or CIDR ranges.
func NewIPResolver(trustedProxies []string) (*IPResolver, error) {
	res := &IPResolver{}
	for _, p := range trustedProxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			res.trusted = append(res.trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		res.trusted = append(res.trusted, ipNet)
	}
	return res, nil
}

// ClientIP walks X-Forwarded-For from the right while the hops are trusted
// proxies and returns the first address that is not.
func (res *IPResolver) ClientIP(r *http.Request) string {
	peer := ClientIP(r)
	if res == nil || len(res.trusted) == 0 || !res.isTrusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if net.ParseIP(hop) == nil {
			return peer
		}
		if !res.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

func (res *IPResolver) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range res.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the host of the connected peer.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
