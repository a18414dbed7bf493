package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/intake-backend/internal/config"
)

// Limiter decides whether a request identified by key may proceed.
// Implementations must fail open: a backend error yields (true, err)
// so an unreachable limiter never takes the intake form down.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// clientBucket pairs a client's token bucket with its last activity,
// so idle clients can be evicted.
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter enforces a per-client token bucket in process memory.
// Suitable for single-replica deployments. Buckets idle longer than
// the eviction TTL are swept so the client map stays bounded.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

const memoryLimiterTTL = 10 * time.Minute

// NewMemoryLimiter creates an in-memory per-client limiter
func NewMemoryLimiter(rps, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		buckets:   make(map[string]*clientBucket),
		limit:     rate.Limit(rps),
		burst:     burst,
		ttl:       memoryLimiterTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether the client may proceed
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	if now.Sub(m.lastSweep) >= m.ttl {
		m.sweepLocked(now)
	}

	bucket, ok := m.buckets[key]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.buckets[key] = bucket
	}
	bucket.lastSeen = now
	m.mu.Unlock()

	return bucket.limiter.Allow(), nil
}

// sweepLocked drops buckets idle longer than the TTL. Callers hold mu.
func (m *MemoryLimiter) sweepLocked(now time.Time) {
	for key, bucket := range m.buckets {
		if now.Sub(bucket.lastSeen) >= m.ttl {
			delete(m.buckets, key)
		}
	}
	m.lastSweep = now
}

// RedisLimiter enforces a fixed one-second window shared across
// replicas, counting requests per client key in Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter
func NewRedisLimiter(client *redis.Client, rps int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  int64(rps),
		window: time.Second,
	}
}

// Allow increments the window counter for the key and compares it to
// the limit. Redis errors fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}

	return incr.Val() <= l.limit, nil
}

// NewLimiterFromConfig selects the limiter backend. "redis" shares the
// window across replicas; anything else uses process memory.
func NewLimiterFromConfig(cfg *config.Config) Limiter {
	if cfg.RateLimit.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisLimiter(client, cfg.RateLimit.RPS)
	}
	return NewMemoryLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// clientKey derives the rate-limit key from the request. The left-most
// X-Forwarded-For hop wins when a proxy is in front.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware enforces the limiter on the wrapped handler
func (s *Server) RateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter backend unavailable, failing open")
			}
			if !allowed {
				respondJSON(w, http.StatusTooManyRequests, ErrorResponse{
					Error:     "Too Many Requests",
					Message:   "Rate limit exceeded. Please try again later.",
					Timestamp: time.Now().UTC().Format(time.RFC3339),
					Path:      r.URL.Path,
					Method:    r.Method,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
