// Package cache holds small read-through caches backed by Redis. Cache
// failures degrade to the database path and are never surfaced.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	unviewedCountKey = "tickets:unviewed_count"
	unviewedCountTTL = 5 * time.Minute
)

// TicketCache caches the admin-facing count of not-yet-viewed tickets. A nil
// receiver or a nil client disables caching entirely.
type TicketCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTicketCache constructs the cache.
func NewTicketCache(client *redis.Client, logger *zap.Logger) *TicketCache {
	return &TicketCache{client: client, logger: logger}
}

// UnviewedCount returns the cached count and whether the cache was warm.
func (c *TicketCache) UnviewedCount(ctx context.Context) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, unviewedCountKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("unviewed count cache read failed", zap.Error(err))
		}
		return 0, false
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnviewedCount stores the count with a short TTL.
func (c *TicketCache) SetUnviewedCount(ctx context.Context, count int) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, unviewedCountKey, strconv.Itoa(count), unviewedCountTTL).Err(); err != nil {
		c.logger.Debug("unviewed count cache write failed", zap.Error(err))
	}
}

// InvalidateUnviewedCount drops the cached count after a mutation that can
// change it (ticket created, deleted, or bulk-marked viewed).
func (c *TicketCache) InvalidateUnviewedCount(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, unviewedCountKey).Err(); err != nil {
		c.logger.Debug("unviewed count cache invalidation failed", zap.Error(err))
	}
}
