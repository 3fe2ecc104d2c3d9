package pricing

import "github.com/shopspring/decimal"

// Category is one of the three fixed complement groups a variation carries a quota for.
type Category string

const (
	CategoryAccompaniment Category = "ACCOMPANIMENT"
	CategoryFruit         Category = "FRUIT"
	CategoryCoverage      Category = "COVERAGE"
)

// Categories lists the complement categories in display order.
var Categories = []Category{CategoryAccompaniment, CategoryFruit, CategoryCoverage}

func (c Category) Valid() bool {
	switch c {
	case CategoryAccompaniment, CategoryFruit, CategoryCoverage:
		return true
	}
	return false
}

// Quotas holds how many complements of each category a variation includes for free.
type Quotas struct {
	Complements int `json:"included_complements"`
	Fruits      int `json:"included_fruits"`
	Coverages   int `json:"included_coverages"`
}

// For returns the free quota of the given category. Unknown categories have none.
func (q Quotas) For(c Category) int {
	switch c {
	case CategoryAccompaniment:
		return q.Complements
	case CategoryFruit:
		return q.Fruits
	case CategoryCoverage:
		return q.Coverages
	}
	return 0
}

// Variation is the priced size of a product being customised.
type Variation struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
	Quotas    Quotas          `json:"quotas"`
}

// Complement is the catalog data a selection is built from.
type Complement struct {
	ID        string
	Name      string
	Category  Category
	UnitPrice decimal.Decimal
	Included  bool
}

// Selection is the customer's choice for one complement on one line item.
//
// IsSelected asks for one quota-eligible unit; ExtraQuantity asks for additional
// always-paid units. SelectionOrder is assigned by the caller each time IsSelected is
// switched on and decides who gets the free slots.
type Selection struct {
	ComplementID   string          `json:"complement_id"`
	Name           string          `json:"name"`
	Category       Category        `json:"category"`
	Included       bool            `json:"included"`
	IsSelected     bool            `json:"is_selected"`
	ExtraQuantity  int             `json:"extra_quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SelectionOrder int             `json:"selection_order"`
}

// ChargeKind tags a persisted complement row.
type ChargeKind string

const (
	KindIncluded ChargeKind = "INCLUDED"
	KindExtra    ChargeKind = "EXTRA"
)

// Allocation says how an INCLUDED charge was decided.
type Allocation string

const (
	// AllocationFree is inside the variation's quota.
	AllocationFree Allocation = "FREE"
	// AllocationOverQuota was selected after the quota filled up.
	AllocationOverQuota Allocation = "OVER_QUOTA"
	// AllocationNotEligible belongs to a complement that never counts toward a quota.
	AllocationNotEligible Allocation = "NOT_ELIGIBLE"
	// AllocationPaid marks EXTRA charges.
	AllocationPaid Allocation = "PAID"
)

// Charge is one classified row of a priced line item.
type Charge struct {
	ComplementID string          `json:"complement_id"`
	Name         string          `json:"name"`
	Category     Category        `json:"category"`
	Kind         ChargeKind      `json:"type"`
	Allocation   Allocation      `json:"allocation"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
}

// Charged reports whether the row is classified as paid, even when the amount is zero.
func (c Charge) Charged() bool {
	return c.Allocation != AllocationFree
}

// Quote is the result of pricing one line item.
type Quote struct {
	VariationID      string          `json:"variation_id"`
	BasePrice        decimal.Decimal `json:"base_price"`
	ComplementsTotal decimal.Decimal `json:"complements_total"`
	Total            decimal.Decimal `json:"total"`
	Charges          []Charge        `json:"charges"`
}

// Included returns the INCLUDED rows in selection order of the input.
func (q *Quote) Included() []Charge {
	return q.filter(KindIncluded)
}

// Extras returns the EXTRA rows.
func (q *Quote) Extras() []Charge {
	return q.filter(KindExtra)
}

func (q *Quote) filter(kind ChargeKind) []Charge {
	out := make([]Charge, 0, len(q.Charges))
	for _, c := range q.Charges {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// RoundCents rounds a money value for display or persistence.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
