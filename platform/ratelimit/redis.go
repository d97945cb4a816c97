package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ratelimit:"

// Redis is a fixed-window limiter shared by every instance connected to the
// same Redis. The window starts at a key's first request.
type Redis struct {
	client redis.Cmdable
	limit  int
	length time.Duration
	prefix string
}

// NewRedis creates a limiter admitting limit requests per length.
func NewRedis(client redis.Cmdable, limit int, length time.Duration) *Redis {
	return &Redis{
		client: client,
		limit:  limit,
		length: length,
		prefix: defaultKeyPrefix,
	}
}

// WithPrefix namespaces the counter keys.
func (l *Redis) WithPrefix(prefix string) *Redis {
	l.prefix = prefix
	return l
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, l.length).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}

// NewRedisClient connects to redisURL (redis:// or rediss://).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}
