package controllers

import (
	"net/http"

	"acai-store/middlewares"
	"acai-store/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	checkout Checkout
	linker   Linker
}

func NewOrderController(checkout Checkout, linker Linker) *OrderController {
	return &OrderController{checkout: checkout, linker: linker}
}

// Quote prices one customised product without placing an order.
func (h *OrderController) Quote(c *gin.Context) {
	defer func() {
		middlewares.RecordQuote(succeeded(c))
	}()

	var req services.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.checkout.Quote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *OrderController) CreateOrder(c *gin.Context) {
	defer func() {
		middlewares.RecordOrderOperation("create", succeeded(c))
	}()

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one item"})
		return
	}

	order, err := h.checkout.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	middlewares.RecordOrderValue(order.Total)

	resp := gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.Total.StringFixed(2),
	}
	if h.linker != nil {
		resp["whatsapp_url"] = h.linker.Link(order.Summary)
	}
	c.JSON(http.StatusCreated, resp)
}
