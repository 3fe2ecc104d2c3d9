package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"acai-store/models"
	"acai-store/notify"
	"acai-store/pricing"
	"acai-store/store"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCheckout    = errors.New("invalid checkout")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrOrderNotPlaced     = errors.New("order could not be placed, please retry")
)

const (
	createdPriority    = 5
	largeOrderPriority = 9
	publishTimeout     = 5 * time.Second
	minPhoneDigits     = 8
	maxNoteLength      = 500
)

var largeOrderTotal = decimal.NewFromInt(100)

type CustomerInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ComplementChoice is what the client sends for one complement. Prices are never
// taken from it.
type ComplementChoice struct {
	ComplementID   string `json:"complement_id"`
	IsSelected     bool   `json:"is_selected"`
	ExtraQuantity  int    `json:"extra_quantity"`
	SelectionOrder int    `json:"selection_order"`
}

type LineItemRequest struct {
	ProductID   string             `json:"product_id"`
	VariationID string             `json:"variation_id"`
	Note        string             `json:"note"`
	Complements []ComplementChoice `json:"complements"`
}

type CheckoutRequest struct {
	Customer CustomerInput     `json:"customer"`
	Items    []LineItemRequest `json:"items"`
}

type CheckoutService struct {
	store     OrderStore
	publisher EventPublisher
	fallback  notify.Sender
	delay     time.Duration
}

func NewCheckoutService(store OrderStore, publisher EventPublisher, fallback notify.Sender, pendingDelay time.Duration) *CheckoutService {
	return &CheckoutService{
		store:     store,
		publisher: publisher,
		fallback:  fallback,
		delay:     pendingDelay,
	}
}

// Quote prices one line item against the current catalog without persisting anything.
func (s *CheckoutService) Quote(ctx context.Context, req LineItemRequest) (*pricing.Quote, error) {
	_, _, q, err := s.priceLine(ctx, req)
	return q, err
}

// PlaceOrder reprices every line item from the catalog and persists the order with its
// customer in one transaction. Notification is queued after commit and never fails the
// order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	customer, err := validateCustomer(req.Customer)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidCheckout)
	}

	order := &models.Order{
		Status:   models.StatusPending,
		Total:    decimal.Zero,
		Customer: customer,
		Items:    make([]models.OrderItem, 0, len(req.Items)),
	}
	for i, line := range req.Items {
		if len(line.Note) > maxNoteLength {
			return nil, fmt.Errorf("%w: item %d: note too long", ErrInvalidCheckout, i+1)
		}
		product, variation, q, err := s.priceLine(ctx, line)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		order.Items = append(order.Items, models.OrderItem{
			ProductID:     product.ID,
			ProductName:   product.Name,
			VariationID:   variation.ID,
			VariationName: variation.Name,
			Note:          strings.TrimSpace(line.Note),
			FinalPrice:    q.Total,
			Complements:   models.ComplementsFromQuote(q),
		})
		order.Total = order.Total.Add(q.Total)
	}
	order.Summary = notify.FormatSummary(order)

	if err := s.store.CreateOrder(ctx, customer, order); err != nil {
		log.Printf("Failed to create order: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderNotPlaced, err)
	}

	s.announce(order)
	return order, nil
}

func (s *CheckoutService) priceLine(ctx context.Context, req LineItemRequest) (*models.Product, *models.ProductVariation, *pricing.Quote, error) {
	if req.ProductID == "" || req.VariationID == "" {
		return nil, nil, nil, fmt.Errorf("%w: product and variation are required", ErrInvalidCheckout)
	}

	product, err := s.store.GetProduct(ctx, req.ProductID, true)
	if errors.Is(err, store.ErrProductNotFound) {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrProductUnavailable, req.ProductID)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	if !product.Orderable() {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}

	variation, ok := product.Variation(req.VariationID)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: variation %s does not belong to %s", ErrInvalidCheckout, req.VariationID, product.Name)
	}

	selections, err := selectionsFromCatalog(product, req.Complements)
	if err != nil {
		return nil, nil, nil, err
	}

	q, err := pricing.Price(variation.Pricing(), selections)
	if err != nil {
		return nil, nil, nil, err
	}
	return product, variation, q, nil
}

// selectionsFromCatalog rebuilds the client's choices with catalog prices, categories
// and eligibility.
func selectionsFromCatalog(product *models.Product, choices []ComplementChoice) ([]pricing.Selection, error) {
	selections := make([]pricing.Selection, 0, len(choices))
	for _, ch := range choices {
		c, ok := product.Complement(ch.ComplementID)
		if !ok {
			return nil, fmt.Errorf("%w: complement %s is not available for %s", ErrInvalidCheckout, ch.ComplementID, product.Name)
		}
		selections = append(selections, pricing.Selection{
			ComplementID:   c.ID,
			Name:           c.Name,
			Category:       c.Category,
			Included:       c.Included,
			IsSelected:     ch.IsSelected,
			ExtraQuantity:  ch.ExtraQuantity,
			UnitPrice:      c.ExtraPrice,
			SelectionOrder: ch.SelectionOrder,
		})
	}
	return selections, nil
}

func validateCustomer(in CustomerInput) (*models.Customer, error) {
	c := &models.Customer{
		Name:    strings.TrimSpace(in.Name),
		Phone:   normalizePhone(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}
	switch {
	case c.Name == "":
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidCheckout)
	case len(c.Phone) < minPhoneDigits:
		return nil, fmt.Errorf("%w: customer phone is required", ErrInvalidCheckout)
	case c.Address == "":
		return nil, fmt.Errorf("%w: customer address is required", ErrInvalidCheckout)
	}
	return c, nil
}

// normalizePhone keeps digits only so "(98) 99999-0000" and "98999990000" match.
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

func (s *CheckoutService) announce(order *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := models.OrderEvent{
		OrderID:  order.ID,
		Type:     models.EventCreated,
		Status:   order.Status,
		Total:    pricing.RoundCents(order.Total),
		Summary:  order.Summary,
		Occurred: order.CreatedAt,
	}

	if err := s.publisher.PublishOrderEvent(ctx, event, orderPriority(order.Total)); err != nil {
		log.Printf("Failed to publish created event for order %s: %v", order.ID, err)
		if s.fallback != nil {
			if err := s.fallback.Send(ctx, notify.Message{OrderID: order.ID, Text: order.Summary}); err != nil {
				log.Printf("Failed to notify order %s: %v", order.ID, err)
			}
		}
	}

	event.Type = models.EventPendingCheck
	if err := s.publisher.PublishDelayedEvent(ctx, event, s.delay); err != nil {
		log.Printf("Failed to schedule pending check for order %s: %v", order.ID, err)
	}
}

// orderPriority puts large orders ahead in the notification queue.
func orderPriority(total decimal.Decimal) int {
	if total.GreaterThan(largeOrderTotal) {
		return largeOrderPriority
	}
	return createdPriority
}
