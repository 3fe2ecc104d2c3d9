package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"acai-store/models"

	"github.com/redis/go-redis/v9"
)

const (
	productsKey   = "catalog:products"
	categoriesKey = "catalog:categories"
	versionKey    = "catalog:version"
)

func NewRedisCache(client *redis.Client, productsTTL, categoriesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:        client,
		productsTTL:   productsTTL,
		categoriesTTL: categoriesTTL,
	}
}

type RedisCache struct {
	client        *redis.Client
	productsTTL   time.Duration
	categoriesTTL time.Duration
}

func (r *RedisCache) GetProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	if err := r.get(ctx, productsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Version returns the catalog generation; zero until the first invalidation.
func (r *RedisCache) Version(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

func (r *RedisCache) SetProducts(ctx context.Context, version int64, products []*models.Product) error {
	return r.set(ctx, productsKey, version, products, r.productsTTL)
}

func (r *RedisCache) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.get(ctx, categoriesKey, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *RedisCache) SetCategories(ctx context.Context, version int64, categories []models.Category) error {
	return r.set(ctx, categoriesKey, version, categories, r.categoriesTTL)
}

// Invalidate bumps the catalog version and drops every catalog key so the next read
// goes to the database.
func (r *RedisCache) Invalidate(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Del(ctx, productsKey, categoriesKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

func (r *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, version int64, value any, baseTTL time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	// jitter keeps products and categories from expiring together
	jitter := time.Duration(rand.Int63n(int64(baseTTL/10) + 1))

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, baseTTL+jitter)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("redis set failed: %w", err)
	}
}
