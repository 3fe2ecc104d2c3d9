package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	banana     = Complement{ID: "banana", Name: "Banana", Category: CategoryFruit, UnitPrice: money("1.00"), Included: true}
	strawberry = Complement{ID: "strawberry", Name: "Morango", Category: CategoryFruit, UnitPrice: money("2.00"), Included: true}
	kiwi       = Complement{ID: "kiwi", Name: "Kiwi", Category: CategoryFruit, UnitPrice: money("3.00"), Included: true}
	nutella    = Complement{ID: "nutella", Name: "Nutella", Category: CategoryCoverage, UnitPrice: money("3.99")}
)

func TestToggle_AddsAndRemoves(t *testing.T) {
	var sel []Selection
	sel = Toggle(sel, banana, NextOrder(sel))
	require.Len(t, sel, 1)
	assert.True(t, sel[0].IsSelected)
	assert.Equal(t, 1, sel[0].SelectionOrder)

	off := Toggle(sel, banana, NextOrder(sel))
	assert.False(t, off[0].IsSelected)
	assert.Zero(t, off[0].SelectionOrder)
	assert.True(t, sel[0].IsSelected, "input must not be modified")
}

func TestToggle_ReselectGoesToBackOfQueue(t *testing.T) {
	var sel []Selection
	sel = Toggle(sel, banana, NextOrder(sel))
	sel = Toggle(sel, strawberry, NextOrder(sel))
	sel = Toggle(sel, kiwi, NextOrder(sel))

	sel = Toggle(sel, banana, NextOrder(sel)) // off
	sel = Toggle(sel, banana, NextOrder(sel)) // on again

	b, ok := Find(sel, "banana")
	require.True(t, ok)
	for _, s := range sel {
		if s.ComplementID != "banana" && s.IsSelected {
			assert.Greater(t, b.SelectionOrder, s.SelectionOrder)
		}
	}

	quote, err := Price(size500(2), sel)
	require.NoError(t, err)
	byID := map[string]Allocation{}
	for _, c := range quote.Included() {
		byID[c.ComplementID] = c.Allocation
	}
	assert.Equal(t, AllocationFree, byID["strawberry"])
	assert.Equal(t, AllocationFree, byID["kiwi"])
	assert.Equal(t, AllocationOverQuota, byID["banana"])
	assert.True(t, money("19.90").Equal(quote.Total))
}

func TestToggle_OffDoesNotReorderOthers(t *testing.T) {
	var sel []Selection
	sel = Toggle(sel, banana, NextOrder(sel))
	sel = Toggle(sel, strawberry, NextOrder(sel))
	sel = Toggle(sel, kiwi, NextOrder(sel))
	sel = Toggle(sel, banana, NextOrder(sel))

	s, _ := Find(sel, "strawberry")
	k, _ := Find(sel, "kiwi")
	assert.Equal(t, 2, s.SelectionOrder)
	assert.Equal(t, 3, k.SelectionOrder)
}

func TestAdjustExtra(t *testing.T) {
	var sel []Selection
	sel = AdjustExtra(sel, nutella, -1)
	assert.Empty(t, sel)

	sel = AdjustExtra(sel, nutella, 1)
	sel = AdjustExtra(sel, nutella, 1)
	require.Len(t, sel, 1)
	assert.Equal(t, 2, sel[0].ExtraQuantity)
	assert.False(t, sel[0].IsSelected)
	assert.Zero(t, sel[0].SelectionOrder, "extra-only entries carry no selection order")

	sel = AdjustExtra(sel, nutella, -5)
	assert.Equal(t, 0, sel[0].ExtraQuantity)
}

func TestAdjustExtra_KeepsSelectionOrderOfSelected(t *testing.T) {
	var sel []Selection
	sel = Toggle(sel, banana, NextOrder(sel))
	sel = AdjustExtra(sel, kiwi, 2)
	sel = AdjustExtra(sel, banana, 1)

	b, _ := Find(sel, "banana")
	assert.Equal(t, 1, b.SelectionOrder)
	assert.Equal(t, 1, b.ExtraQuantity)

	// selecting the extra-only kiwi later queues it behind banana
	sel = Toggle(sel, kiwi, NextOrder(sel))
	k, _ := Find(sel, "kiwi")
	assert.True(t, k.IsSelected)
	assert.Equal(t, 2, k.SelectionOrder)
	assert.Equal(t, 2, k.ExtraQuantity)
}

func TestWouldCharge(t *testing.T) {
	v := size500(2)
	var sel []Selection

	assert.False(t, WouldCharge(v, sel, banana))
	sel = Toggle(sel, banana, NextOrder(sel))
	sel = Toggle(sel, strawberry, NextOrder(sel))
	assert.True(t, WouldCharge(v, sel, kiwi))
	assert.True(t, WouldCharge(v, nil, nutella), "not eligible complements are always charged")
	assert.True(t, WouldCharge(nil, nil, banana))
}
