package middleware

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type redisRateLimiter struct {
	client  *redis.Client
	log     *logrus.Logger
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
}

// NewRedisRateLimiter builds a Redis-backed fixed-window limiter so the
// window survives restarts and is shared across replicas. Redis failures fail
// open.
func NewRedisRateLimiter(addr, password string, db, limit int, window time.Duration, log *logrus.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &redisRateLimiter{
		client:  client,
		log:     log,
		limit:   limit,
		window:  window,
		prefix:  "cardkeeper:ratelimit:",
		timeout: 250 * time.Millisecond,
	}, nil
}

func (rl *redisRateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.log.Errorf("Redis rate limiter incr failed: %v", err)
		return true
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			rl.log.Errorf("Redis rate limiter expire failed: %v", err)
		}
	}
	return int(counter) <= rl.limit
}

func (rl *redisRateLimiter) Close() {
	if rl.client != nil {
		_ = rl.client.Close()
	}
}
