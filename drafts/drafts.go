// Package drafts keeps in-progress line item customisations in Redis.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"acai-store/pricing"

	"github.com/redis/go-redis/v9"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is one product being customised before it goes to the cart.
// Sequence is the last selection order handed out.
type Draft struct {
	ID          string              `json:"id"`
	ProductID   string              `json:"product_id"`
	VariationID string              `json:"variation_id"`
	Selections  []pricing.Selection `json:"selections"`
	Sequence    int                 `json:"sequence"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NextSequence reserves the next selection order.
func (d *Draft) NextSequence() int {
	d.Sequence++
	return d.Sequence
}

type Store interface {
	Get(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, id string) error
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Draft, error) {
	data, err := r.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal draft failed: %w", err)
	}
	return &d, nil
}

// Save writes the draft and restarts its expiry.
func (r *RedisStore) Save(ctx context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft failed: %w", err)
	}
	if err := r.client.Set(ctx, draftKey(d.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func draftKey(id string) string {
	return fmt.Sprintf("draft:%s", id)
}
