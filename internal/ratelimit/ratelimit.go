// Package ratelimit throttles outbound sends per destination chat so the
// Messaging Client backs off proactively instead of relying solely on the
// remote service's reactive retry_after. A Redis-backed limiter is shared
// across worker processes; when Redis is unreachable (or unconfigured) an
// in-process golang.org/x/time/rate limiter takes over per process.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	redisConfig "github.com/gopublicist/publicist/config/redis"
	"github.com/gopublicist/publicist/pkg/logger"
)

// Limiter gates a send for the given chat key, blocking until it is safe
// to proceed or ctx is done.
type Limiter interface {
	Wait(ctx context.Context, chatKey string) error
}

// perChatRate bounds sends per chat to roughly one per second with a
// small burst, the same order of magnitude as the remote service's own
// per-chat throttling.
const (
	perChatRate  = 1
	perChatBurst = 3
)

// New builds a Limiter from cfg: a Redis-backed limiter when Addr is set,
// falling back to a process-local limiter otherwise.
func New(cfg redisConfig.RedisConfig) Limiter {
	if cfg.Addr == "" {
		logger.Infof("ratelimit: no redis address configured, using in-process limiter")
		return NewLocalLimiter()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisLimiter(client, NewLocalLimiter())
}

// LocalLimiter is an in-process per-chat token bucket.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (l *LocalLimiter) limiterFor(chatKey string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[chatKey]
	if !ok {
		lim = rate.NewLimiter(perChatRate, perChatBurst)
		l.limiters[chatKey] = lim
	}
	return lim
}

func (l *LocalLimiter) Wait(ctx context.Context, chatKey string) error {
	return l.limiterFor(chatKey).Wait(ctx)
}

// RedisLimiter implements a fixed-window counter per chat per second using
// INCR+EXPIRE, falling back to LocalLimiter when Redis itself is
// unreachable so a broker outage never blocks delivery outright.
type RedisLimiter struct {
	client   *redis.Client
	fallback *LocalLimiter
}

func NewRedisLimiter(client *redis.Client, fallback *LocalLimiter) *RedisLimiter {
	return &RedisLimiter{client: client, fallback: fallback}
}

func (l *RedisLimiter) Wait(ctx context.Context, chatKey string) error {
	for {
		allowed, err := l.tryAcquire(ctx, chatKey)
		if err != nil {
			logger.Warnf("ratelimit: redis unavailable (%v), falling back to local limiter", err)
			return l.fallback.Wait(ctx, chatKey)
		}
		if allowed {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (l *RedisLimiter) tryAcquire(ctx context.Context, chatKey string) (bool, error) {
	key := "publicist:ratelimit:" + chatKey
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		l.client.Expire(ctx, key, time.Second)
	}
	return count <= perChatBurst, nil
}
