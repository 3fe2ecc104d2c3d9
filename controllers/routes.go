package controllers

import (
	"context"
	"net/http"
	"time"

	"acai-store/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Catalog      *CatalogController
	Orders       *OrderController
	Drafts       *DraftController
	Auth         *AuthController
	AdminCatalog *AdminCatalogController
	AdminOrders  *AdminOrderController
	DB           Pinger
	JWTSecret    string
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middlewares.RequestIDMiddleware())
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/products", h.Catalog.ListProducts)
		api.GET("/products/:id", h.Catalog.GetProduct)
		api.GET("/categories", h.Catalog.ListCategories)

		api.POST("/quote", h.Orders.Quote)
		api.POST("/orders", h.Orders.CreateOrder)

		api.POST("/drafts", h.Drafts.Create)
		api.GET("/drafts/:id", h.Drafts.Get)
		api.PUT("/drafts/:id/variation", h.Drafts.ChooseVariation)
		api.POST("/drafts/:id/toggle", h.Drafts.Toggle)
		api.POST("/drafts/:id/extras", h.Drafts.AdjustExtra)
		api.GET("/drafts/:id/item", h.Drafts.LineItem)
		api.DELETE("/drafts/:id", h.Drafts.Delete)

		api.POST("/admin/login", h.Auth.Login)
	}

	admin := r.Group("/api/admin")
	admin.Use(middlewares.AuthMiddleware(h.JWTSecret))
	{
		admin.GET("/me", h.Auth.Me)

		admin.GET("/categories", h.AdminCatalog.ListCategories)
		admin.GET("/categories/:id", h.AdminCatalog.GetCategory)
		admin.POST("/categories", h.AdminCatalog.CreateCategory)
		admin.PUT("/categories/:id", h.AdminCatalog.UpdateCategory)
		admin.DELETE("/categories/:id", h.AdminCatalog.DeleteCategory)

		admin.GET("/complements", h.AdminCatalog.ListComplements)
		admin.GET("/complements/:id", h.AdminCatalog.GetComplement)
		admin.POST("/complements", h.AdminCatalog.CreateComplement)
		admin.PUT("/complements/:id", h.AdminCatalog.UpdateComplement)
		admin.DELETE("/complements/:id", h.AdminCatalog.DeleteComplement)

		admin.GET("/products", h.AdminCatalog.ListProducts)
		admin.GET("/products/:id", h.AdminCatalog.GetProduct)
		admin.POST("/products", h.AdminCatalog.CreateProduct)
		admin.PUT("/products/:id", h.AdminCatalog.UpdateProduct)
		admin.PATCH("/products/:id/active", h.AdminCatalog.SetProductActive)
		admin.DELETE("/products/:id", h.AdminCatalog.DeleteProduct)

		admin.GET("/orders", h.AdminOrders.ListOrders)
		admin.GET("/orders/:id", h.AdminOrders.GetOrder)
		admin.PUT("/orders/:id/status", h.AdminOrders.UpdateOrderStatus)

		admin.GET("/customers", h.AdminOrders.ListCustomers)
	}

	return r
}
