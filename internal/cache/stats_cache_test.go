package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestUnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewStatsCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, "admin", domain.TicketStats{Total: 3})
	_, ok := c.Get(ctx, "admin")
	assert.False(t, ok)
	c.Invalidate(ctx)
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *StatsCache
	ctx := context.Background()

	_, ok := c.Get(ctx, "admin")
	assert.False(t, ok)
	c.Set(ctx, "admin", domain.TicketStats{})
	c.Invalidate(ctx)
}
