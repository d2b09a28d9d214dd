package generator_test

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"roofio/internal/generator"
)

func TestRedisCircuits_UnavailableTreatedAsClosed(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = client.Close() }()

	circuits := generator.NewRedisCircuits(client, "")
	ctx := context.Background()

	circuits.Open(ctx, "claude", time.Now().Add(time.Minute))
	_, open := circuits.OpenUntil(ctx, "claude")
	assert.False(t, open)
	circuits.Close(ctx, "claude")
}
