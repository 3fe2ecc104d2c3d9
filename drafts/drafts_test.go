package drafts

import (
	"context"
	"testing"
	"time"

	"acai-store/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})
	return NewRedisStore(client, 30*time.Minute), mr
}

func TestSaveAndGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	d := &Draft{
		ID:          "d1",
		ProductID:   "p1",
		VariationID: "v1",
		Selections: []pricing.Selection{{
			ComplementID:   "kiwi",
			Category:       pricing.CategoryFruit,
			Included:       true,
			IsSelected:     true,
			UnitPrice:      decimal.RequireFromString("3.00"),
			SelectionOrder: 1,
		}},
		Sequence: 1,
	}
	require.NoError(t, store.Save(ctx, d))
	assert.Equal(t, 30*time.Minute, mr.TTL("draft:d1"))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.VariationID)
	require.Len(t, got.Selections, 1)
	assert.True(t, got.Selections[0].IsSelected)
	assert.True(t, decimal.RequireFromString("3").Equal(got.Selections[0].UnitPrice))
}

func TestGet_Missing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestGet_Expired(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Draft{ID: "d1"}))
	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, "d1")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDelete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Draft{ID: "d1"}))
	require.NoError(t, store.Delete(ctx, "d1"))
	assert.False(t, mr.Exists("draft:d1"))
}

func TestNextSequence(t *testing.T) {
	d := &Draft{}
	assert.Equal(t, 1, d.NextSequence())
	assert.Equal(t, 2, d.NextSequence())
	assert.Equal(t, 2, d.Sequence)
}
