package cache

import (
	"context"
	"errors"

	"github.com/foodexpress/storefront/internal/domain"
)

// CatalogCache holds read-through copies of the vendor list and of each
// vendor's item list.
type CatalogCache interface {
	GetVendors(ctx context.Context) ([]domain.Vendor, error)
	SetVendors(ctx context.Context, vendors []domain.Vendor) error
	GetItems(ctx context.Context, vendorID string) ([]domain.CatalogItem, error)
	SetItems(ctx context.Context, vendorID string, items []domain.CatalogItem) error
}

var ErrCacheMiss = errors.New("cache miss")
