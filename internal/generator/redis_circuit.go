package generator

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisCircuits shares circuit state between processes through Redis hashes
// keyed "<prefix><provider>".
type RedisCircuits struct {
	client *redis.Client
	prefix string
}

// NewRedisCircuits creates a Redis-backed CircuitStore.
func NewRedisCircuits(client *redis.Client, prefix string) *RedisCircuits {
	if prefix == "" {
		prefix = "roofio:cb:"
	}
	return &RedisCircuits{client: client, prefix: prefix}
}

func (r *RedisCircuits) OpenUntil(ctx context.Context, name string) (time.Time, bool) {
	retryAtStr, err := r.client.HGet(ctx, r.prefix+name, "retry_at").Result()
	if err != nil || retryAtStr == "" {
		// No breaker record or Redis unavailable: treat as closed.
		return time.Time{}, false
	}
	retryAt, err := strconv.ParseInt(retryAtStr, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	resetAt := time.Unix(retryAt, 0)
	return resetAt, time.Now().Before(resetAt)
}

func (r *RedisCircuits) Open(ctx context.Context, name string, resetAt time.Time) {
	key := r.prefix + name
	if err := r.client.HSet(ctx, key, map[string]interface{}{
		"state":     "open",
		"retry_at":  resetAt.Unix(),
		"opened_at": time.Now().Unix(),
	}).Err(); err != nil {
		log.Warn().Err(err).Str("provider", name).Msg("generator.RedisCircuits: open failed")
		return
	}
	r.client.Expire(ctx, key, time.Until(resetAt)+time.Minute)
}

func (r *RedisCircuits) Close(ctx context.Context, name string) {
	r.client.Del(ctx, r.prefix+name)
}
