package services

import (
	"acai-store/models"
	"acai-store/pricing"

	"github.com/shopspring/decimal"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// acaiProduct has a 300ml size with no free fruit and a 500ml size with two.
func acaiProduct() *models.Product {
	return &models.Product{
		ID:         "acai",
		Name:       "Açaí Tradicional",
		CategoryID: "cat-acai",
		Active:     true,
		Variations: []models.ProductVariation{
			{ID: "300ml", ProductID: "acai", Name: "300ml", BasePrice: money("15.00"), IncludedComplements: 1},
			{ID: "500ml", ProductID: "acai", Name: "500ml", BasePrice: money("18.90"), IncludedComplements: 2, IncludedFruits: 2, IncludedCoverages: 1},
		},
		Complements: []models.Complement{
			{ID: "banana", Name: "Banana", Category: pricing.CategoryFruit, ExtraPrice: money("2.00"), Included: true, Active: true},
			{ID: "morango", Name: "Morango", Category: pricing.CategoryFruit, ExtraPrice: money("2.50"), Included: true, Active: true},
			{ID: "kiwi", Name: "Kiwi", Category: pricing.CategoryFruit, ExtraPrice: money("3.00"), Included: true, Active: true},
			{ID: "leite-po", Name: "Leite em pó", Category: pricing.CategoryAccompaniment, ExtraPrice: money("0"), Included: false, Active: true},
			{ID: "nutella", Name: "Nutella", Category: pricing.CategoryCoverage, ExtraPrice: money("3.99"), Included: false, Active: true},
		},
	}
}

func inactiveProduct() *models.Product {
	p := acaiProduct()
	p.ID = "old"
	p.Name = "Açaí Antigo"
	p.Active = false
	return p
}
