package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/foodexpress/storefront/internal/cache"
	"github.com/foodexpress/storefront/internal/domain"
)

// CachedSource decorates a Source with a read-through cache, collapses
// concurrent misses for the same key with singleflight, and trips a
// circuit breaker when the underlying store keeps failing so browsing
// degrades to stale cache data instead of hanging on every request.
type CachedSource struct {
	store Source
	cache cache.CatalogCache
	sfg   singleflight.Group

	vendorsCB *gobreaker.CircuitBreaker[[]domain.Vendor]
	itemsCB   *gobreaker.CircuitBreaker[[]domain.CatalogItem]
}

func NewCachedSource(store Source, c cache.CatalogCache) *CachedSource {
	settings := gobreaker.Settings{
		Name:    "catalog-store",
		Timeout: 30 * time.Second,
	}
	return &CachedSource{
		store:     store,
		cache:     c,
		vendorsCB: gobreaker.NewCircuitBreaker[[]domain.Vendor](settings),
		itemsCB:   gobreaker.NewCircuitBreaker[[]domain.CatalogItem](settings),
	}
}

func (s *CachedSource) FetchVendors(ctx context.Context) ([]domain.Vendor, error) {
	v, err, _ := s.sfg.Do("vendors", func() (interface{}, error) {
		vendors, err := s.cache.GetVendors(ctx)
		if err == nil {
			return vendors, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("vendor cache get error: %v", err)
		}

		vendors, err = s.vendorsCB.Execute(func() ([]domain.Vendor, error) {
			return s.store.FetchVendors(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("fetch vendors from store: %w", err)
		}

		go func() {
			if err := s.cache.SetVendors(context.Background(), vendors); err != nil {
				log.Printf("vendor cache set error: %v", err)
			}
		}()

		return vendors, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Vendor), nil
}

func (s *CachedSource) FetchItems(ctx context.Context, vendorID string) ([]domain.CatalogItem, error) {
	v, err, _ := s.sfg.Do("items:"+vendorID, func() (interface{}, error) {
		items, err := s.cache.GetItems(ctx, vendorID)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("item cache get error: %v", err)
		}

		items, err = s.itemsCB.Execute(func() ([]domain.CatalogItem, error) {
			return s.store.FetchItems(ctx, vendorID)
		})
		if err != nil {
			return nil, fmt.Errorf("fetch items from store: %w", err)
		}

		go func() {
			if err := s.cache.SetItems(context.Background(), vendorID, items); err != nil {
				log.Printf("item cache set error: %v", err)
			}
		}()

		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.CatalogItem), nil
}
