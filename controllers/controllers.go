package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"acai-store/drafts"
	"acai-store/models"
	"acai-store/pricing"
	"acai-store/services"
	"acai-store/store"

	"github.com/gin-gonic/gin"
)

type CatalogReader interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type Checkout interface {
	Quote(ctx context.Context, req services.LineItemRequest) (*pricing.Quote, error)
	PlaceOrder(ctx context.Context, req services.CheckoutRequest) (*models.Order, error)
}

type Drafts interface {
	Create(ctx context.Context, productID, variationID string) (*services.DraftView, error)
	Get(ctx context.Context, id string) (*services.DraftView, error)
	ChooseVariation(ctx context.Context, id, variationID string) (*services.DraftView, error)
	Toggle(ctx context.Context, id, complementID string) (*services.DraftView, error)
	AdjustExtra(ctx context.Context, id, complementID string, change int) (*services.DraftView, error)
	LineItem(ctx context.Context, id, note string) (*services.LineItemRequest, error)
	Delete(ctx context.Context, id string) error
}

// Linker turns an order summary into a chat link the customer can open.
type Linker interface {
	Link(text string) string
}

type AdminStore interface {
	GetAdminByLogin(ctx context.Context, login string) (*models.Admin, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListComplements(ctx context.Context) ([]models.Complement, error)
	GetComplement(ctx context.Context, id string) (*models.Complement, error)
	CreateComplement(ctx context.Context, c *models.Complement) error
	UpdateComplement(ctx context.Context, c *models.Complement) error
	DeleteComplement(ctx context.Context, id string) error

	ListProducts(ctx context.Context, activeOnly bool) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string, activeOnly bool) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product, complementIDs []string) error
	UpdateProduct(ctx context.Context, p *models.Product, complementIDs []string) error
	SetProductActive(ctx context.Context, id string, active bool) error
	DeleteProduct(ctx context.Context, id string) error

	ListOrders(ctx context.Context, limit int) ([]*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error)
}

// Invalidator drops cached catalog data after a write.
type Invalidator interface {
	Invalidate()
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrCategoryNotFound),
		errors.Is(err, store.ErrComplementNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, drafts.ErrDraftNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateCategory),
		errors.Is(err, store.ErrCategoryInUse),
		errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, services.ErrProductUnavailable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidCheckout),
		errors.Is(err, pricing.ErrInvalidSelection),
		errors.Is(err, pricing.ErrInvalidVariation),
		errors.Is(err, pricing.ErrArithmeticOverflow),
		errors.Is(err, store.ErrNoVariations):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrOrderNotPlaced):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ErrOrderNotPlaced.Error()})
		return
	}

	if status == http.StatusInternalServerError {
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func succeeded(c *gin.Context) bool {
	return c.Writer.Status() >= 200 && c.Writer.Status() < 300
}
