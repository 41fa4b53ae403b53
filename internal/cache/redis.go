package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodexpress/storefront/internal/domain"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) GetVendors(ctx context.Context) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	if err := r.get(ctx, vendorsKey(), &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *RedisCache) SetVendors(ctx context.Context, vendors []domain.Vendor) error {
	return r.set(ctx, vendorsKey(), vendors)
}

func (r *RedisCache) GetItems(ctx context.Context, vendorID string) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	if err := r.get(ctx, itemsKey(vendorID), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RedisCache) SetItems(ctx context.Context, vendorID string, items []domain.CatalogItem) error {
	return r.set(ctx, itemsKey(vendorID), items)
}

func (r *RedisCache) get(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal cached value failed: %w", err)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cached value failed: %w", err)
	}

	// Jitter spreads out expiry so both keys don't refresh in lockstep.
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, key, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func vendorsKey() string {
	return "catalog:vendors"
}

func itemsKey(vendorID string) string {
	return fmt.Sprintf("catalog:items:%s", vendorID)
}
