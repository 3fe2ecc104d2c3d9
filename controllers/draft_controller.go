package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DraftController struct {
	drafts Drafts
}

func NewDraftController(drafts Drafts) *DraftController {
	return &DraftController{drafts: drafts}
}

type createDraftRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	VariationID string `json:"variation_id"`
}

type variationRequest struct {
	VariationID string `json:"variation_id" binding:"required"`
}

type toggleRequest struct {
	ComplementID string `json:"complement_id" binding:"required"`
}

type extraRequest struct {
	ComplementID string `json:"complement_id" binding:"required"`
	Change       int    `json:"change" binding:"required"`
}

func (h *DraftController) Create(c *gin.Context) {
	var req createDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.drafts.Create(c.Request.Context(), req.ProductID, req.VariationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *DraftController) Get(c *gin.Context) {
	view, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DraftController) ChooseVariation(c *gin.Context) {
	var req variationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.drafts.ChooseVariation(c.Request.Context(), c.Param("id"), req.VariationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DraftController) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.drafts.Toggle(c.Request.Context(), c.Param("id"), req.ComplementID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DraftController) AdjustExtra(c *gin.Context) {
	var req extraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.drafts.AdjustExtra(c.Request.Context(), c.Param("id"), req.ComplementID, req.Change)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// LineItem returns the draft as a cart line ready for checkout.
func (h *DraftController) LineItem(c *gin.Context) {
	item, err := h.drafts.LineItem(c.Request.Context(), c.Param("id"), c.Query("note"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *DraftController) Delete(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
