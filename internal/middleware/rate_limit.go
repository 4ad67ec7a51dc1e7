package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/trading-wallet/internal/api/httpx"
	"github.com/baharkarakas/trading-wallet/internal/logger"
)

// Limiter decides whether a request from key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// TokenBucket is a process-wide limiter shared by all clients.
type TokenBucket struct {
	mu     sync.Mutex
	tokens int
	last   time.Time
	rate   int
	burst  int
	now    func() time.Time
}

func NewTokenBucket(rps int) *TokenBucket {
	return &TokenBucket{
		tokens: rps,
		last:   time.Now(),
		rate:   rps,
		burst:  rps,
		now:    time.Now,
	}
}

func (tb *TokenBucket) Allow(_ context.Context, _ string) (bool, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	elapsed := now.Sub(tb.last).Seconds()
	if elapsed > 0 {
		refill := int(elapsed * float64(tb.rate))
		if refill > 0 {
			tb.tokens += refill
			if tb.tokens > tb.burst {
				tb.tokens = tb.burst
			}
			tb.last = now
		}
	}
	if tb.tokens <= 0 {
		return false, nil
	}
	tb.tokens--
	return true, nil
}

// RedisLimiter allows limit requests per client in a fixed window that
// starts with the client's first request. The counter is shared by every
// instance using the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: int64(limit), window: window, prefix: "ratelimit"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + ":" + key

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		// NX keeps the window anchored at the first hit
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// RateLimit rejects requests the limiter denies with 429. A nil limiter
// disables limiting; limiter errors let the request through.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.FromContext(r.Context()).Warn("rate limiter unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
