// Package pricing decides which complements of a line item are covered by the chosen
// variation's free quotas and computes the line total.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Price classifies every selection against the variation's quotas and sums the line
// item. It does not modify selections and holds no state between calls.
func Price(v *Variation, selections []Selection) (*Quote, error) {
	if err := validateVariation(v); err != nil {
		return nil, err
	}
	if err := validateSelections(selections); err != nil {
		return nil, err
	}

	free := freeSlots(v.Quotas, selections)

	charges := make([]Charge, 0, len(selections))
	complementsTotal := decimal.Zero
	for _, s := range selections {
		if s.IsSelected {
			c := Charge{
				ComplementID: s.ComplementID,
				Name:         s.Name,
				Category:     s.Category,
				Kind:         KindIncluded,
				Quantity:     1,
				UnitPrice:    s.UnitPrice,
				Amount:       decimal.Zero,
			}
			switch {
			case !s.Included:
				c.Allocation = AllocationNotEligible
				c.Amount = s.UnitPrice
			case free[s.ComplementID]:
				c.Allocation = AllocationFree
			default:
				c.Allocation = AllocationOverQuota
				c.Amount = s.UnitPrice
			}
			complementsTotal = complementsTotal.Add(c.Amount)
			charges = append(charges, c)
		}

		if s.ExtraQuantity > 0 {
			amount := s.UnitPrice.Mul(decimal.NewFromInt(int64(s.ExtraQuantity)))
			complementsTotal = complementsTotal.Add(amount)
			charges = append(charges, Charge{
				ComplementID: s.ComplementID,
				Name:         s.Name,
				Category:     s.Category,
				Kind:         KindExtra,
				Allocation:   AllocationPaid,
				Quantity:     s.ExtraQuantity,
				UnitPrice:    s.UnitPrice,
				Amount:       amount,
			})
		}
	}

	return &Quote{
		VariationID:      v.ID,
		BasePrice:        v.BasePrice,
		ComplementsTotal: complementsTotal,
		Total:            v.BasePrice.Add(complementsTotal),
		Charges:          charges,
	}, nil
}

// freeSlots returns the ids of selected, quota-eligible complements that fall inside
// their category's quota. Earlier SelectionOrder wins; ties keep input order.
func freeSlots(q Quotas, selections []Selection) map[string]bool {
	byCategory := make(map[Category][]Selection, len(Categories))
	for _, s := range selections {
		if s.IsSelected && s.Included {
			byCategory[s.Category] = append(byCategory[s.Category], s)
		}
	}

	free := make(map[string]bool)
	for cat, queue := range byCategory {
		sort.SliceStable(queue, func(i, j int) bool {
			return queue[i].SelectionOrder < queue[j].SelectionOrder
		})
		quota := q.For(cat)
		for i := 0; i < len(queue) && i < quota; i++ {
			free[queue[i].ComplementID] = true
		}
	}
	return free
}

func validateVariation(v *Variation) error {
	if v == nil {
		return fmt.Errorf("%w: variation is not set", ErrInvalidVariation)
	}
	if v.BasePrice.IsNegative() {
		return fmt.Errorf("%w: negative base price %s", ErrInvalidVariation, v.BasePrice)
	}
	if v.Quotas.Complements < 0 || v.Quotas.Fruits < 0 || v.Quotas.Coverages < 0 {
		return fmt.Errorf("%w: negative quota", ErrInvalidVariation)
	}
	return nil
}

func validateSelections(selections []Selection) error {
	seen := make(map[string]struct{}, len(selections))
	for _, s := range selections {
		if s.ComplementID == "" {
			return invalidSelection(s.ComplementID, "missing complement id")
		}
		if _, dup := seen[s.ComplementID]; dup {
			return invalidSelection(s.ComplementID, "selected more than once")
		}
		seen[s.ComplementID] = struct{}{}

		if !s.Category.Valid() {
			return invalidSelection(s.ComplementID, fmt.Sprintf("unknown category %q", s.Category))
		}
		if s.ExtraQuantity < 0 {
			return invalidSelection(s.ComplementID, fmt.Sprintf("negative extra quantity %d", s.ExtraQuantity))
		}
		if s.ExtraQuantity > MaxExtraQuantity {
			return &SelectionError{
				ComplementID: s.ComplementID,
				Reason:       fmt.Sprintf("extra quantity %d above %d", s.ExtraQuantity, MaxExtraQuantity),
				Err:          ErrArithmeticOverflow,
			}
		}
		if s.UnitPrice.IsNegative() {
			return invalidSelection(s.ComplementID, "negative unit price")
		}
	}
	return nil
}
