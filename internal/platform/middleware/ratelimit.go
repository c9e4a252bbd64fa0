package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig bounds request throughput per client address. A clinic
// front desk runs a handful of shared reception terminals behind one or
// two IPs, so limits are generous per address rather than per user.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig returns limits sized for a busy reception
// terminal plus the auto-refreshing dashboard.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// Buckets idle longer than this are swept; a terminal that went home
// for the day should not occupy the map forever.
const bucketIdleTTL = 10 * time.Minute

// terminalBucket is the token bucket tracked for one client address.
type terminalBucket struct {
	mu       sync.Mutex
	tokens   float64
	max      float64
	rate     float64 // tokens per second
	lastSeen time.Time
}

// take refills from the time elapsed since the last request, then spends
// one token. On refusal it reports the whole seconds until a token
// becomes available, for the Retry-After header.
func (b *terminalBucket) take(now time.Time) (ok bool, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastSeen).Seconds() * b.rate
	if b.tokens > b.max {
		b.tokens = b.max
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.rate <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/b.rate) + 1
}

type bucketStore struct {
	mu      sync.Mutex
	buckets map[string]*terminalBucket
	cfg     RateLimitConfig
	sweepAt time.Time
}

func (s *bucketStore) get(key string, now time.Time) *terminalBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.After(s.sweepAt) {
		for k, b := range s.buckets {
			b.mu.Lock()
			idle := now.Sub(b.lastSeen)
			b.mu.Unlock()
			if idle > bucketIdleTTL {
				delete(s.buckets, k)
			}
		}
		s.sweepAt = now.Add(bucketIdleTTL)
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &terminalBucket{
			tokens:   float64(s.cfg.BurstSize),
			max:      float64(s.cfg.BurstSize),
			rate:     s.cfg.RequestsPerSecond,
			lastSeen: now,
		}
		s.buckets[key] = b
	}
	return b
}

// RateLimit throttles per client IP with a token bucket, answering 429
// with a Retry-After hint once a terminal exhausts its burst.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := &bucketStore{
		buckets: make(map[string]*terminalBucket),
		cfg:     cfg,
		sweepAt: time.Now().Add(bucketIdleTTL),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			ok, retryAfter := store.get(c.RealIP(), now).take(now)

			c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64))
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
