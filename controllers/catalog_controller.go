package controllers

import (
	"net/http"

	"acai-store/store"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	catalog CatalogReader
}

func NewCatalogController(catalog CatalogReader) *CatalogController {
	return &CatalogController{catalog: catalog}
}

func (h *CatalogController) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogController) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !product.Orderable() {
		respondError(c, store.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogController) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
