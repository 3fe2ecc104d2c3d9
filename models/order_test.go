package models

import (
	"testing"

	"acai-store/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusConfirmed))
	assert.True(t, StatusPreparing.CanTransition(StatusPending))
	assert.True(t, StatusConfirmed.CanTransition(StatusCanceled))
	assert.False(t, StatusDelivered.CanTransition(StatusPreparing))
	assert.False(t, StatusCanceled.CanTransition(StatusPending))
	assert.False(t, StatusPending.CanTransition("shipped"))
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
}

func TestComplementsFromQuote(t *testing.T) {
	v := &pricing.Variation{ID: "v", BasePrice: decimal.RequireFromString("10"), Quotas: pricing.Quotas{Fruits: 1}}
	quote, err := pricing.Price(v, []pricing.Selection{
		{ComplementID: "banana", Name: "Banana", Category: pricing.CategoryFruit, Included: true, IsSelected: true, UnitPrice: decimal.RequireFromString("1"), SelectionOrder: 1},
		{ComplementID: "kiwi", Name: "Kiwi", Category: pricing.CategoryFruit, Included: true, IsSelected: true, ExtraQuantity: 2, UnitPrice: decimal.RequireFromString("3.333"), SelectionOrder: 2},
	})
	require.NoError(t, err)

	rows := ComplementsFromQuote(quote)
	require.Len(t, rows, 3)
	assert.Equal(t, pricing.AllocationFree, rows[0].Allocation)
	assert.True(t, rows[0].Price.IsZero())
	assert.Equal(t, "3.33", rows[1].Price.StringFixed(2))
	assert.Equal(t, pricing.KindExtra, rows[2].Type)
	assert.Equal(t, "6.67", rows[2].Price.StringFixed(2))

	item := OrderItem{Complements: rows}
	assert.Len(t, item.Included(), 2)
	assert.Len(t, item.Extras(), 1)
}
