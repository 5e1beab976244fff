package adapter

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"warehouse/internal/pkg/logger"
	"warehouse/internal/pkg/redis"
	"warehouse/internal/service/inventory/application"
)

// StockRedisCache caches availability checks and item reads. Entries are
// short-lived and dropped wholesale after any stock write, so a stale read
// window is bounded by write frequency, not TTL.
type StockRedisCache struct {
	client   *redis.Client
	checkTTL time.Duration
	itemTTL  time.Duration
}

func NewStockRedisCache(client *redis.Client, checkTTL, itemTTL time.Duration) *StockRedisCache {
	if checkTTL <= 0 {
		checkTTL = 5 * time.Minute
	}
	if itemTTL <= 0 {
		itemTTL = 10 * time.Minute
	}
	return &StockRedisCache{client: client, checkTTL: checkTTL, itemTTL: itemTTL}
}

func (c *StockRedisCache) GetAvailability(ctx context.Context, key string) (*application.AvailabilityResult, bool) {
	var result application.AvailabilityResult
	if !c.get(ctx, key, &result) {
		return nil, false
	}
	return &result, true
}

func (c *StockRedisCache) SetAvailability(ctx context.Context, key string, result *application.AvailabilityResult) {
	c.set(ctx, key, result, c.checkTTL)
}

func (c *StockRedisCache) GetItem(ctx context.Context, key string) (*application.ItemDTO, bool) {
	var item application.ItemDTO
	if !c.get(ctx, key, &item) {
		return nil, false
	}
	return &item, true
}

func (c *StockRedisCache) SetItem(ctx context.Context, key string, item *application.ItemDTO) {
	c.set(ctx, key, item, c.itemTTL)
}

// Invalidate drops every cached stock entry. Coarse on purpose: precise
// per-SKU invalidation would miss multi-SKU availability keys.
func (c *StockRedisCache) Invalidate(ctx context.Context) {
	for _, pattern := range []string{"stock_check:*", "inventory:*", "inventory_pid:*"} {
		c.deleteByPattern(ctx, pattern)
	}
}

func (c *StockRedisCache) get(ctx context.Context, key string, out interface{}) bool {
	data, err := c.client.GetClient().Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		c.client.GetClient().Del(ctx, key)
		return false
	}
	return true
}

func (c *StockRedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.GetClient().Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *StockRedisCache) deleteByPattern(ctx context.Context, pattern string) {
	rdb := c.client.GetClient()
	iter := rdb.Scan(ctx, 0, pattern, 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 200 {
			rdb.Del(ctx, keys...)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation scan failed")
	}
	if len(keys) > 0 {
		rdb.Del(ctx, keys...)
	}
}
