package models

import (
	"time"

	"acai-store/pricing"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" binding:"required"`
	Description  string    `json:"description"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url,omitempty"`
	CategoryID  string             `json:"category_id"`
	Category    *Category          `json:"category,omitempty"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
	Variations  []ProductVariation `json:"variations"`
	Complements []Complement       `json:"complements"`
}

// Variation returns the product's variation with the given id.
func (p *Product) Variation(id string) (*ProductVariation, bool) {
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			return &p.Variations[i], true
		}
	}
	return nil, false
}

// Complement returns an eligible complement of the product.
func (p *Product) Complement(id string) (*Complement, bool) {
	for i := range p.Complements {
		if p.Complements[i].ID == id {
			return &p.Complements[i], true
		}
	}
	return nil, false
}

// Orderable reports whether customers may order the product.
func (p *Product) Orderable() bool {
	return p.Active && len(p.Variations) > 0
}

type ProductVariation struct {
	ID                  string          `json:"id"`
	ProductID           string          `json:"product_id"`
	Name                string          `json:"name"`
	BasePrice           decimal.Decimal `json:"base_price"`
	IncludedComplements int             `json:"included_complements"`
	IncludedFruits      int             `json:"included_fruits"`
	IncludedCoverages   int             `json:"included_coverages"`
}

// Pricing returns the variation as the pricing engine sees it.
func (v *ProductVariation) Pricing() *pricing.Variation {
	return &pricing.Variation{
		ID:        v.ID,
		Name:      v.Name,
		BasePrice: v.BasePrice,
		Quotas: pricing.Quotas{
			Complements: v.IncludedComplements,
			Fruits:      v.IncludedFruits,
			Coverages:   v.IncludedCoverages,
		},
	}
}

type Complement struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Category   pricing.Category `json:"category"`
	ExtraPrice decimal.Decimal  `json:"extra_price"`
	Included   bool             `json:"included"`
	ImageURL   string           `json:"image_url,omitempty"`
	Active     bool             `json:"active"`
}

func (c *Complement) Pricing() pricing.Complement {
	return pricing.Complement{
		ID:        c.ID,
		Name:      c.Name,
		Category:  c.Category,
		UnitPrice: c.ExtraPrice,
		Included:  c.Included,
	}
}

type Admin struct {
	ID           string
	Name         string
	Login        string
	PasswordHash string
}
