// Package cache keeps short-lived ticket statistics in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const (
	statsPrefix        = "helpdesk:stats"
	statsGenerationKey = statsPrefix + ":gen"
)

// StatsCache stores ticket stats under keys that embed a generation
// counter. Invalidate bumps the counter so every scope misses at once; stale
// generations expire by TTL.
type StatsCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache returns a cache over client.
func NewStatsCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsCache{client: client, ttl: ttl, logger: logger}
}

func (c *StatsCache) key(ctx context.Context, scope string) (string, error) {
	gen, err := c.client.Get(ctx, statsGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%s", statsPrefix, gen, scope), nil
}

// Get returns cached stats for scope; any backend error is a miss.
func (c *StatsCache) Get(ctx context.Context, scope string) (*domain.TicketStats, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	key, err := c.key(ctx, scope)
	if err != nil {
		c.logger.Debug("stats cache unavailable", zap.Error(err))
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("stats cache get", zap.Error(err))
		}
		return nil, false
	}
	var stats domain.TicketStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// Set stores stats for scope.
func (c *StatsCache) Set(ctx context.Context, scope string, stats domain.TicketStats) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	key, err := c.key(ctx, scope)
	if err != nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("stats cache set", zap.Error(err))
	}
}

// Invalidate drops every cached scope.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, statsGenerationKey).Err(); err != nil {
		c.logger.Warn("stats cache invalidate", zap.Error(err))
	}
}
