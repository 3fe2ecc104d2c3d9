package services

import (
	"context"
	"errors"
	"log"
	"time"

	"acai-store/cache"
	"acai-store/models"

	"golang.org/x/sync/singleflight"
)

const (
	catalogLoadTimeout = 5 * time.Second
	cacheWriteTimeout  = time.Second
)

type CatalogService struct {
	store CatalogStore
	cache cache.CatalogCache
	sfg   singleflight.Group
}

func NewCatalogService(store CatalogStore, cache cache.CatalogCache) *CatalogService {
	return &CatalogService{
		store: store,
		cache: cache,
	}
}

// ListProducts returns the active catalog, served from cache when possible.
func (s *CatalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	v, err := s.shared(ctx, "products", func(ctx context.Context) (any, error) {
		products, err := s.cache.GetProducts(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get products error: %v", err)
		}

		version, verr := s.cache.Version(ctx)
		products, err = s.store.ListProducts(ctx, true)
		if err != nil {
			return nil, err
		}
		if verr != nil {
			log.Printf("cache version error, skipping fill: %v", verr)
		} else {
			go s.fill("products", func(ctx context.Context) error {
				return s.cache.SetProducts(ctx, version, products)
			})
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*models.Product), nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	v, err := s.shared(ctx, "categories", func(ctx context.Context) (any, error) {
		categories, err := s.cache.GetCategories(ctx)
		if err == nil {
			return categories, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get categories error: %v", err)
		}

		version, verr := s.cache.Version(ctx)
		categories, err = s.store.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		if verr != nil {
			log.Printf("cache version error, skipping fill: %v", verr)
		} else {
			go s.fill("categories", func(ctx context.Context) error {
				return s.cache.SetCategories(ctx, version, categories)
			})
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Category), nil
}

// shared runs load once for all concurrent callers of key. The load outlives the
// caller that started it; a cancelled caller only stops waiting.
func (s *CatalogService) shared(ctx context.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	ch := s.sfg.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogLoadTimeout)
		defer cancel()
		return load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// fill writes a freshly loaded catalog back to the cache. A fill that raced with an
// admin write is dropped by the cache.
func (s *CatalogService) fill(what string, set func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := set(ctx); err != nil && !errors.Is(err, cache.ErrStale) {
		log.Printf("cache set %s error: %v", what, err)
	}
}

// GetProduct looks the product up in the cached catalog and falls back to the store.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return s.store.GetProduct(ctx, id, true)
}

// Invalidate drops the cached catalog after an admin write.
func (s *CatalogService) Invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
