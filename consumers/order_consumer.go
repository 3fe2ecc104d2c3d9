package consumers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"acai-store/config"
	"acai-store/middlewares"
	"acai-store/models"
	"acai-store/notify"

	amqp "github.com/rabbitmq/amqp091-go"
)

const handleTimeout = 10 * time.Second

// DeliverySource opens a manual-ack consumer on a queue.
type DeliverySource interface {
	Consume(queue, tag string) (<-chan amqp.Delivery, error)
}

type StatusReader interface {
	GetOrderStatus(ctx context.Context, id string) (models.OrderStatus, error)
}

type NotificationConsumer struct {
	sender notify.Sender
	orders StatusReader
}

func NewNotificationConsumer(sender notify.Sender, orders StatusReader) *NotificationConsumer {
	return &NotificationConsumer{sender: sender, orders: orders}
}

// Start consumes the notification queue and its dead letter queue until the
// deliveries channels close.
func (c *NotificationConsumer) Start(src DeliverySource, cfg *config.Config) error {
	msgs, err := src.Consume(cfg.NotifyQueue, "acai-store")
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			c.processMessage(msg)
		}
	}()

	dlqMsgs, err := src.Consume(cfg.DeadLetterQueue, "acai-store-dlq")
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return nil
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
	return nil
}

func (c *NotificationConsumer) processMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
			if err := msg.Nack(false, false); err != nil {
				log.Printf("Failed to nack message: %v", err)
			}
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.OrderID == "" {
		log.Printf("Invalid message format: %s", msg.Body)
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Failed to nack message: %v", err)
		}
		return
	}

	log.Printf("Processing order event: ID=%s, Type=%s", event.OrderID, event.Type)

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var err error
	switch event.Type {
	case models.EventCreated:
		err = c.handleOrderCreated(ctx, event)
	case models.EventStatusUpdated:
		handleStatusUpdated(event)
	case models.EventPendingCheck:
		err = c.handlePendingCheck(ctx, event)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("Failed to handle %s for order %s: %v", event.Type, event.OrderID, err)
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Failed to nack message: %v", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack message: %v", err)
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack dead letter: %v", err)
	}
}

func (c *NotificationConsumer) handleOrderCreated(ctx context.Context, event models.OrderEvent) error {
	err := c.sender.Send(ctx, notify.Message{OrderID: event.OrderID, Text: event.Summary})
	middlewares.RecordNotification(models.EventCreated, err == nil)
	return err
}

func handleStatusUpdated(event models.OrderEvent) {
	log.Printf("Order %s is now %s", event.OrderID, event.Status)
}

// handlePendingCheck reminds the shop about orders nobody has confirmed yet.
func (c *NotificationConsumer) handlePendingCheck(ctx context.Context, event models.OrderEvent) error {
	status, err := c.orders.GetOrderStatus(ctx, event.OrderID)
	if err != nil {
		return err
	}
	if status != models.StatusPending {
		return nil
	}

	err = c.sender.Send(ctx, notify.Message{OrderID: event.OrderID, Text: event.Summary, Reminder: true})
	middlewares.RecordNotification(models.EventPendingCheck, err == nil)
	return err
}
