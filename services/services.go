// Package services holds the storefront use cases on top of the store, cache and broker.
package services

import (
	"context"
	"time"

	"acai-store/models"
)

type CatalogStore interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string, activeOnly bool) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type OrderStore interface {
	GetProduct(ctx context.Context, id string, activeOnly bool) (*models.Product, error)
	CreateOrder(ctx context.Context, customer *models.Customer, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error)
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent, priority int) error
	PublishDelayedEvent(ctx context.Context, event models.OrderEvent, delay time.Duration) error
}

// ProductSource resolves a storefront product with its active complements.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}
