package controllers

import (
	"net/http"
	"strconv"

	"acai-store/middlewares"
	"acai-store/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 500
)

type AdminOrderController struct {
	store  AdminStore
	status StatusUpdater
}

func NewAdminOrderController(store AdminStore, status StatusUpdater) *AdminOrderController {
	return &AdminOrderController{store: store, status: status}
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// ListOrders returns the newest orders first, at most ?limit= of them.
func (h *AdminOrderController) ListOrders(c *gin.Context) {
	defer func() {
		middlewares.RecordOrderOperation("list", succeeded(c))
	}()

	limit := defaultOrderLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxOrderLimit)
	}

	orders, err := h.store.ListOrders(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderController) GetOrder(c *gin.Context) {
	defer func() {
		middlewares.RecordOrderOperation("get", succeeded(c))
	}()

	order, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *AdminOrderController) UpdateOrderStatus(c *gin.Context) {
	defer func() {
		middlewares.RecordOrderOperation("update_status", succeeded(c))
	}()

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	order, err := h.status.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *AdminOrderController) ListCustomers(c *gin.Context) {
	customers, err := h.store.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}
