package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"acai-store/cache"
	"acai-store/models"
	"acai-store/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProducts_CacheMissLoadsAndFillsCache(t *testing.T) {
	st := newMockStore(acaiProduct(), inactiveProduct())
	c := &mockCache{}
	svc := NewCatalogService(st, c)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "acai", products[0].ID)

	assert.Eventually(t, func() bool {
		return len(c.cachedProducts()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestListProducts_CacheHitSkipsStore(t *testing.T) {
	st := newMockStore(acaiProduct())
	c := &mockCache{products: []*models.Product{acaiProduct()}}
	svc := NewCatalogService(st, c)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 0, st.listCalls)
}

func TestListProducts_CacheErrorFallsBackToStore(t *testing.T) {
	st := newMockStore(acaiProduct())
	c := &mockCache{getErr: errors.New("connection refused")}
	svc := NewCatalogService(st, c)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, st.listCalls)
}

func TestListProducts_StoreError(t *testing.T) {
	st := newMockStore()
	st.err = errors.New("db down")
	svc := NewCatalogService(st, &mockCache{})

	_, err := svc.ListProducts(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestListCategories(t *testing.T) {
	st := newMockStore()
	st.categories = []models.Category{{ID: "cat-acai", Name: "AÇAÍ", ProductCount: 1}}
	c := &mockCache{}
	svc := NewCatalogService(st, c)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "AÇAÍ", categories[0].Name)
}

func TestGetProduct(t *testing.T) {
	st := newMockStore(acaiProduct(), inactiveProduct())
	svc := NewCatalogService(st, &mockCache{})
	ctx := context.Background()

	p, err := svc.GetProduct(ctx, "acai")
	require.NoError(t, err)
	assert.Equal(t, "Açaí Tradicional", p.Name)

	// inactive products are not in the cached list but can still be resolved
	p, err = svc.GetProduct(ctx, "old")
	require.NoError(t, err)
	assert.False(t, p.Orderable())

	_, err = svc.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestInvalidate(t *testing.T) {
	c := &mockCache{products: []*models.Product{acaiProduct()}, categories: []models.Category{{ID: "c"}}}
	svc := NewCatalogService(newMockStore(), c)

	svc.Invalidate()
	assert.Nil(t, c.cachedProducts())
}

func TestListProducts_InvalidateDuringLoadIsNotOverwritten(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	redisCache := cache.NewRedisCache(client, 15*time.Minute, time.Hour)

	st := newGatedStore(newMockStore(acaiProduct()))
	svc := NewCatalogService(st, redisCache)
	ctx := context.Background()

	done := make(chan []*models.Product)
	go func() {
		products, err := svc.ListProducts(ctx)
		assert.NoError(t, err)
		done <- products
	}()

	// an admin renames the product while the first load still holds the old row
	<-st.reading
	renamed := acaiProduct()
	renamed.Name = "Açaí Premium"
	st.put(renamed)
	svc.Invalidate()
	close(st.gate)

	stale := <-done
	require.Len(t, stale, 1)
	assert.Equal(t, "Açaí Tradicional", stale[0].Name)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Açaí Premium", products[0].Name)

	assert.Eventually(t, func() bool {
		cached, err := redisCache.GetProducts(ctx)
		return err == nil && len(cached) == 1 && cached[0].Name == "Açaí Premium"
	}, time.Second, 10*time.Millisecond)

	// the stale fill never lands, not even late
	time.Sleep(50 * time.Millisecond)
	cached, err := redisCache.GetProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Açaí Premium", cached[0].Name)
}

func TestListCategories_StaleFillIsDropped(t *testing.T) {
	st := newMockStore()
	st.categories = []models.Category{{ID: "cat-acai", Name: "AÇAÍ"}}
	c := &mockCache{}
	svc := NewCatalogService(st, c)

	version, err := c.Version(context.Background())
	require.NoError(t, err)
	svc.Invalidate()
	assert.ErrorIs(t, c.SetCategories(context.Background(), version, st.categories), cache.ErrStale)

	_, err = svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		c.m.Lock()
		defer c.m.Unlock()
		return len(c.categories) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestListProducts_CancelledCallerDoesNotCancelSharedLoad(t *testing.T) {
	st := newGatedStore(newMockStore(acaiProduct()))
	c := &mockCache{}
	svc := NewCatalogService(st, c)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error)
	go func() {
		_, err := svc.ListProducts(ctx)
		errc <- err
	}()

	<-st.reading
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(st.gate)

	// the load finished on its own context and filled the cache
	assert.Eventually(t, func() bool {
		return len(c.cachedProducts()) == 1
	}, time.Second, 10*time.Millisecond)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
