package pricing

// The helpers below never modify their input; they return a new slice.

// NextOrder returns a selection order later than any already assigned.
func NextOrder(selections []Selection) int {
	next := 1
	for _, s := range selections {
		if s.SelectionOrder >= next {
			next = s.SelectionOrder + 1
		}
	}
	return next
}

// Toggle switches IsSelected for the complement. Switching on, whether new or
// previously switched off, stamps seq as its SelectionOrder, which puts it at the back
// of its category's queue. Switching off clears the order.
func Toggle(selections []Selection, c Complement, seq int) []Selection {
	out := clone(selections)
	for i := range out {
		if out[i].ComplementID != c.ID {
			continue
		}
		out[i].IsSelected = !out[i].IsSelected
		out[i].SelectionOrder = 0
		if out[i].IsSelected {
			out[i].SelectionOrder = seq
		}
		return out
	}
	s := fromComplement(c)
	s.IsSelected = true
	s.SelectionOrder = seq
	return append(out, s)
}

// AdjustExtra adds change to the complement's extra quantity, never going below zero.
// A complement not yet present is only added when change is positive, as an
// unselected entry without a selection order.
func AdjustExtra(selections []Selection, c Complement, change int) []Selection {
	out := clone(selections)
	for i := range out {
		if out[i].ComplementID != c.ID {
			continue
		}
		out[i].ExtraQuantity = max(0, out[i].ExtraQuantity+change)
		return out
	}
	if change <= 0 {
		return out
	}
	s := fromComplement(c)
	s.ExtraQuantity = change
	return append(out, s)
}

// WouldCharge reports whether selecting c now would cost its unit price: it is not
// quota-eligible, or the eligible selections of its category already fill the quota.
func WouldCharge(v *Variation, selections []Selection, c Complement) bool {
	if !c.Included {
		return true
	}
	if v == nil {
		return true
	}
	taken := 0
	for _, s := range selections {
		if s.ComplementID == c.ID {
			continue
		}
		if s.Category == c.Category && s.IsSelected && s.Included {
			taken++
		}
	}
	return taken >= v.Quotas.For(c.Category)
}

// Find returns the selection for a complement, if any.
func Find(selections []Selection, complementID string) (Selection, bool) {
	for _, s := range selections {
		if s.ComplementID == complementID {
			return s, true
		}
	}
	return Selection{}, false
}

func fromComplement(c Complement) Selection {
	return Selection{
		ComplementID: c.ID,
		Name:         c.Name,
		Category:     c.Category,
		Included:     c.Included,
		UnitPrice:    c.UnitPrice,
	}
}

func clone(selections []Selection) []Selection {
	out := make([]Selection, len(selections), len(selections)+1)
	copy(out, selections)
	return out
}
