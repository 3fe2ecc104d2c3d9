package models

import (
	"errors"
	"time"

	"acai-store/pricing"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusDelivered OrderStatus = "delivered"
	StatusCanceled  OrderStatus = "canceled"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

// CanTransition allows any move out of a non-terminal status.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return to.Valid() && !s.IsTerminal()
}

type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
	OrderCount int       `json:"order_count,omitempty"`
}

type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Customer   *Customer       `json:"customer,omitempty"`
	Status     OrderStatus     `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Summary    string          `json:"summary,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Items      []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID            string                `json:"id"`
	ProductID     string                `json:"product_id"`
	ProductName   string                `json:"product_name"`
	VariationID   string                `json:"variation_id"`
	VariationName string                `json:"variation_name"`
	Note          string                `json:"note,omitempty"`
	FinalPrice    decimal.Decimal       `json:"final_price"`
	Complements   []OrderItemComplement `json:"complements"`
}

// OrderItemComplement is one priced complement row of a line item.
type OrderItemComplement struct {
	ID           string             `json:"id"`
	ComplementID string             `json:"complement_id"`
	Name         string             `json:"name"`
	Type         pricing.ChargeKind `json:"type"`
	Allocation   pricing.Allocation `json:"allocation"`
	Quantity     int                `json:"quantity"`
	Price        decimal.Decimal    `json:"price"`
}

// ComplementsFromQuote converts engine output into persisted rows.
func ComplementsFromQuote(q *pricing.Quote) []OrderItemComplement {
	rows := make([]OrderItemComplement, 0, len(q.Charges))
	for _, c := range q.Charges {
		rows = append(rows, OrderItemComplement{
			ComplementID: c.ComplementID,
			Name:         c.Name,
			Type:         c.Kind,
			Allocation:   c.Allocation,
			Quantity:     c.Quantity,
			Price:        pricing.RoundCents(c.Amount),
		})
	}
	return rows
}

// Included returns the INCLUDED rows.
func (i OrderItem) Included() []OrderItemComplement {
	return i.byType(pricing.KindIncluded)
}

// Extras returns the EXTRA rows.
func (i OrderItem) Extras() []OrderItemComplement {
	return i.byType(pricing.KindExtra)
}

func (i OrderItem) byType(t pricing.ChargeKind) []OrderItemComplement {
	var out []OrderItemComplement
	for _, c := range i.Complements {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

const (
	EventCreated       = "created"
	EventStatusUpdated = "status_updated"
	EventPendingCheck  = "pending_check"
)

type OrderEvent struct {
	OrderID  string          `json:"order_id"`
	Type     string          `json:"type"`
	Status   OrderStatus     `json:"status"`
	Total    decimal.Decimal `json:"total"`
	Summary  string          `json:"summary,omitempty"`
	Occurred time.Time       `json:"occurred"`
}
