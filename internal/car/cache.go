package car

import (
	"context"
	"encoding/json"
	"time"

	"github.com/CarTradeLink/CarTradeLink/internal/common/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	catalogKey = "catalog:cars"
	catalogTTL = 30 * time.Second
)

// CatalogCache 车辆目录的 Redis 缓存。
// Redis 故障通过熔断器降级：熔断开启时直接回源数据库，不阻塞目录读取。
type CatalogCache struct {
	client  *redis.Client
	breaker *middleware.CircuitBreaker
}

func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{
		client:  client,
		breaker: middleware.NewCircuitBreaker("car-catalog-cache", 5, 30*time.Second),
	}
}

// Get 读取缓存的目录；未命中或缓存不可用时 ok 为 false。
func (c *CatalogCache) Get(ctx context.Context) (cars []Car, ok bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	var raw string
	err := c.breaker.Call(ctx, func() error {
		var getErr error
		raw, getErr = c.client.Get(ctx, catalogKey).Result()
		if getErr == redis.Nil {
			raw = ""
			return nil
		}
		return getErr
	})
	if err != nil || raw == "" {
		return nil, false
	}

	if err := json.Unmarshal([]byte(raw), &cars); err != nil {
		return nil, false
	}
	return cars, true
}

// Set 写入目录缓存（带 TTL）；失败只影响命中率，不影响正确性。
func (c *CatalogCache) Set(ctx context.Context, cars []Car) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(cars)
	if err != nil {
		return
	}
	_ = c.breaker.Call(ctx, func() error {
		return c.client.Set(ctx, catalogKey, data, catalogTTL).Err()
	})
}

// Invalidate 使目录缓存失效（新增车辆或完成交易后调用）。
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.breaker.Call(ctx, func() error {
		return c.client.Del(ctx, catalogKey).Err()
	})
}
