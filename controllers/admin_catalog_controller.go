package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"acai-store/models"
	"acai-store/pricing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminCatalogController manages categories, complements and products. Every write
// drops the storefront catalog cache.
type AdminCatalogController struct {
	store AdminStore
	cache Invalidator
}

func NewAdminCatalogController(store AdminStore, cache Invalidator) *AdminCatalogController {
	return &AdminCatalogController{store: store, cache: cache}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type complementRequest struct {
	Name       string           `json:"name" binding:"required"`
	Category   pricing.Category `json:"category" binding:"required"`
	ExtraPrice decimal.Decimal  `json:"extra_price"`
	Included   *bool            `json:"included"`
	ImageURL   string           `json:"image_url"`
	Active     *bool            `json:"active"`
}

type productVariationRequest struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name" binding:"required"`
	BasePrice           decimal.Decimal `json:"base_price"`
	IncludedComplements int             `json:"included_complements" binding:"min=0"`
	IncludedFruits      int             `json:"included_fruits" binding:"min=0"`
	IncludedCoverages   int             `json:"included_coverages" binding:"min=0"`
}

type productRequest struct {
	Name          string                    `json:"name" binding:"required"`
	Description   string                    `json:"description"`
	ImageURL      string                    `json:"image_url"`
	CategoryID    string                    `json:"category_id" binding:"required"`
	Active        *bool                     `json:"active"`
	Variations    []productVariationRequest `json:"variations" binding:"required,min=1,dive"`
	ComplementIDs []string                  `json:"complement_ids"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *AdminCatalogController) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *AdminCatalogController) GetCategory(c *gin.Context) {
	category, err := h.store.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *AdminCatalogController) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.store.CreateCategory(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusCreated, category)
}

func (h *AdminCatalogController) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{ID: c.Param("id"), Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.store.UpdateCategory(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, category)
}

func (h *AdminCatalogController) DeleteCategory(c *gin.Context) {
	if err := h.store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *AdminCatalogController) ListComplements(c *gin.Context) {
	complements, err := h.store.ListComplements(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complements)
}

func (h *AdminCatalogController) GetComplement(c *gin.Context) {
	complement, err := h.store.GetComplement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complement)
}

func (h *AdminCatalogController) CreateComplement(c *gin.Context) {
	complement, ok := bindComplement(c)
	if !ok {
		return
	}
	if err := h.store.CreateComplement(c.Request.Context(), complement); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusCreated, complement)
}

func (h *AdminCatalogController) UpdateComplement(c *gin.Context) {
	complement, ok := bindComplement(c)
	if !ok {
		return
	}
	complement.ID = c.Param("id")
	if err := h.store.UpdateComplement(c.Request.Context(), complement); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, complement)
}

func (h *AdminCatalogController) DeleteComplement(c *gin.Context) {
	if err := h.store.DeleteComplement(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *AdminCatalogController) ListProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *AdminCatalogController) GetProduct(c *gin.Context) {
	product, err := h.store.GetProduct(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *AdminCatalogController) CreateProduct(c *gin.Context) {
	product, complementIDs, ok := bindProduct(c)
	if !ok {
		return
	}
	if err := h.store.CreateProduct(c.Request.Context(), product, complementIDs); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	h.respondProduct(c, http.StatusCreated, product.ID)
}

func (h *AdminCatalogController) UpdateProduct(c *gin.Context) {
	product, complementIDs, ok := bindProduct(c)
	if !ok {
		return
	}
	product.ID = c.Param("id")
	if err := h.store.UpdateProduct(c.Request.Context(), product, complementIDs); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	h.respondProduct(c, http.StatusOK, product.ID)
}

// SetProductActive shows or hides a product on the storefront.
func (h *AdminCatalogController) SetProductActive(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetProductActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "active": *req.Active})
}

func (h *AdminCatalogController) DeleteProduct(c *gin.Context) {
	if err := h.store.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	h.cache.Invalidate()
	c.Status(http.StatusNoContent)
}

func (h *AdminCatalogController) respondProduct(c *gin.Context, status int, id string) {
	product, err := h.store.GetProduct(c.Request.Context(), id, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, product)
}

func bindComplement(c *gin.Context) (*models.Complement, bool) {
	var req complementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", req.Category)})
		return nil, false
	}
	if req.ExtraPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "extra_price must not be negative"})
		return nil, false
	}

	return &models.Complement{
		Name:       strings.TrimSpace(req.Name),
		Category:   req.Category,
		ExtraPrice: req.ExtraPrice,
		Included:   boolOr(req.Included, true),
		ImageURL:   req.ImageURL,
		Active:     boolOr(req.Active, true),
	}, true
}

func bindProduct(c *gin.Context) (*models.Product, []string, bool) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
		Active:      boolOr(req.Active, true),
		Variations:  make([]models.ProductVariation, 0, len(req.Variations)),
	}
	for _, v := range req.Variations {
		if v.BasePrice.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("variation %q: base_price must not be negative", v.Name)})
			return nil, nil, false
		}
		product.Variations = append(product.Variations, models.ProductVariation{
			ID:                  v.ID,
			Name:                strings.TrimSpace(v.Name),
			BasePrice:           v.BasePrice,
			IncludedComplements: v.IncludedComplements,
			IncludedFruits:      v.IncludedFruits,
			IncludedCoverages:   v.IncludedCoverages,
		})
	}
	return product, req.ComplementIDs, true
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
