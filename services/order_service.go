package services

import (
	"context"
	"fmt"
	"log"

	"acai-store/models"
	"acai-store/pricing"
)

const statusPriority = 3

type OrderService struct {
	store     OrderStore
	publisher EventPublisher
}

func NewOrderService(store OrderStore, publisher EventPublisher) *OrderService {
	return &OrderService{store: store, publisher: publisher}
}

// UpdateStatus applies an admin status change and announces it.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, to)
	}

	order, err := s.store.UpdateOrderStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}

	event := models.OrderEvent{
		OrderID:  order.ID,
		Type:     models.EventStatusUpdated,
		Status:   order.Status,
		Total:    pricing.RoundCents(order.Total),
		Occurred: order.UpdatedAt,
	}
	if err := s.publisher.PublishOrderEvent(ctx, event, statusPriority); err != nil {
		log.Printf("Failed to publish status update for order %s: %v", order.ID, err)
	}
	return order, nil
}
