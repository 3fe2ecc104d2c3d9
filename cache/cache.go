package cache

import (
	"context"
	"errors"

	"acai-store/models"
)

// CatalogCache holds the storefront's read-mostly catalog for a bounded time.
// Writes carry the version read before loading from the database and are dropped
// with ErrStale when an invalidation happened in between.
type CatalogCache interface {
	Version(ctx context.Context) (int64, error)
	GetProducts(ctx context.Context) ([]*models.Product, error)
	SetProducts(ctx context.Context, version int64, products []*models.Product) error
	GetCategories(ctx context.Context) ([]models.Category, error)
	SetCategories(ctx context.Context, version int64, categories []models.Category) error
	Invalidate(ctx context.Context) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrStale     = errors.New("catalog changed since it was read")
)
