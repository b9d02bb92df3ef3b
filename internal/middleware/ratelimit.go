package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether one more request from key is allowed this minute.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit enforces a per-client requests-per-minute budget. Limiter
// errors fail open: a broken Redis must not take the intake surface down.
func RateLimit(limiter Limiter, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), r.RemoteAddr)
			if err != nil {
				logger.Warnw("Rate limiter unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				http.Error(w, `{"status":"error","message":"Rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MemoryLimiter is a fixed-window in-process limiter used when no Redis
// is configured.
type MemoryLimiter struct {
	perMinute int

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	count    int
	lastSeen time.Time
}

// NewMemoryLimiter creates an in-memory limiter and starts its janitor.
func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	l := &MemoryLimiter{
		perMinute: perMinute,
		clients:   make(map[string]*clientWindow),
	}

	// Cleanup stale entries every 5 minutes
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			l.mu.Lock()
			for key, c := range l.clients {
				if time.Since(c.lastSeen) > 2*time.Minute {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}()

	return l
}

// Allow counts the request against the client's current minute window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.clients[key]
	if !exists {
		l.clients[key] = &clientWindow{count: 1, lastSeen: time.Now()}
		return true, nil
	}

	if time.Since(c.lastSeen) > time.Minute {
		c.count = 1
		c.lastSeen = time.Now()
	} else {
		c.count++
	}

	return c.count <= l.perMinute, nil
}

// RedisLimiter is a fixed-window limiter shared across instances.
type RedisLimiter struct {
	client    *redis.Client
	perMinute int
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	return &RedisLimiter{client: client, perMinute: perMinute}
}

// Allow increments the client's counter for the current minute window; the
// window key expires on its own.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / 60
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, 2*time.Minute).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.perMinute), nil
}
