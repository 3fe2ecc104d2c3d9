package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acai-store/drafts"
	"acai-store/models"
	"acai-store/pricing"
	"acai-store/store"

	"github.com/google/uuid"
)

// DraftView is a draft with its current price.
type DraftView struct {
	Draft  *drafts.Draft  `json:"draft"`
	Quote  *pricing.Quote `json:"quote"`
	Notice string         `json:"notice,omitempty"`
}

type DraftService struct {
	catalog ProductSource
	drafts  drafts.Store
	now     func() time.Time
}

func NewDraftService(catalog ProductSource, store drafts.Store) *DraftService {
	return &DraftService{
		catalog: catalog,
		drafts:  store,
		now:     time.Now,
	}
}

// Create starts customising a product. An empty variationID picks the first variation.
func (s *DraftService) Create(ctx context.Context, productID, variationID string) (*DraftView, error) {
	product, err := s.orderable(ctx, productID)
	if err != nil {
		return nil, err
	}
	if variationID == "" {
		variationID = product.Variations[0].ID
	}
	if _, ok := product.Variation(variationID); !ok {
		return nil, fmt.Errorf("%w: variation %s does not belong to %s", ErrInvalidCheckout, variationID, product.Name)
	}

	d := &drafts.Draft{
		ID:          uuid.NewString(),
		ProductID:   product.ID,
		VariationID: variationID,
		Selections:  []pricing.Selection{},
	}
	return s.save(ctx, product, d, "")
}

func (s *DraftService) Get(ctx context.Context, id string) (*DraftView, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.orderable(ctx, d.ProductID)
	if err != nil {
		return nil, err
	}
	return s.view(product, d, "")
}

func (s *DraftService) ChooseVariation(ctx context.Context, id, variationID string) (*DraftView, error) {
	return s.update(ctx, id, func(product *models.Product, d *drafts.Draft) (string, error) {
		if _, ok := product.Variation(variationID); !ok {
			return "", fmt.Errorf("%w: variation %s does not belong to %s", ErrInvalidCheckout, variationID, product.Name)
		}
		d.VariationID = variationID
		return "", nil
	})
}

// Toggle switches a complement on or off. Switching on a complement that will be paid
// for returns a notice with its price.
func (s *DraftService) Toggle(ctx context.Context, id, complementID string) (*DraftView, error) {
	return s.update(ctx, id, func(product *models.Product, d *drafts.Draft) (string, error) {
		c, err := draftComplement(product, complementID)
		if err != nil {
			return "", err
		}
		variation, ok := product.Variation(d.VariationID)
		if !ok {
			return "", fmt.Errorf("%w: variation %s is no longer offered", ErrProductUnavailable, d.VariationID)
		}

		notice := ""
		current, _ := pricing.Find(d.Selections, c.ID)
		if !current.IsSelected && pricing.WouldCharge(variation.Pricing(), d.Selections, c) {
			notice = chargeNotice(c)
		}
		d.Selections = pricing.Toggle(d.Selections, c, d.NextSequence())
		return notice, nil
	})
}

// AdjustExtra changes how many paid extra units of a complement the draft carries.
func (s *DraftService) AdjustExtra(ctx context.Context, id, complementID string, change int) (*DraftView, error) {
	return s.update(ctx, id, func(product *models.Product, d *drafts.Draft) (string, error) {
		c, err := draftComplement(product, complementID)
		if err != nil {
			return "", err
		}
		current, _ := pricing.Find(d.Selections, c.ID)
		if current.ExtraQuantity+change > pricing.MaxExtraQuantity {
			return "", fmt.Errorf("%w: at most %d extras", pricing.ErrArithmeticOverflow, pricing.MaxExtraQuantity)
		}
		d.Selections = pricing.AdjustExtra(d.Selections, c, change)
		return "", nil
	})
}

func (s *DraftService) Delete(ctx context.Context, id string) error {
	return s.drafts.Delete(ctx, id)
}

// LineItem turns the draft into the checkout request it stands for.
func (s *DraftService) LineItem(ctx context.Context, id, note string) (*LineItemRequest, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req := &LineItemRequest{
		ProductID:   d.ProductID,
		VariationID: d.VariationID,
		Note:        note,
		Complements: make([]ComplementChoice, 0, len(d.Selections)),
	}
	for _, sel := range d.Selections {
		req.Complements = append(req.Complements, ComplementChoice{
			ComplementID:   sel.ComplementID,
			IsSelected:     sel.IsSelected,
			ExtraQuantity:  sel.ExtraQuantity,
			SelectionOrder: sel.SelectionOrder,
		})
	}
	return req, nil
}

func (s *DraftService) update(ctx context.Context, id string, fn func(*models.Product, *drafts.Draft) (string, error)) (*DraftView, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.orderable(ctx, d.ProductID)
	if err != nil {
		return nil, err
	}
	notice, err := fn(product, d)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, product, d, notice)
}

func (s *DraftService) save(ctx context.Context, product *models.Product, d *drafts.Draft, notice string) (*DraftView, error) {
	view, err := s.view(product, d, notice)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return view, nil
}

// view prices the draft with the catalog's current prices.
func (s *DraftService) view(product *models.Product, d *drafts.Draft, notice string) (*DraftView, error) {
	variation, ok := product.Variation(d.VariationID)
	if !ok {
		return nil, fmt.Errorf("%w: variation %s is no longer offered", ErrProductUnavailable, d.VariationID)
	}

	selections := make([]pricing.Selection, 0, len(d.Selections))
	for _, sel := range d.Selections {
		c, ok := product.Complement(sel.ComplementID)
		if !ok {
			continue
		}
		sel.Name = c.Name
		sel.Category = c.Category
		sel.Included = c.Included
		sel.UnitPrice = c.ExtraPrice
		selections = append(selections, sel)
	}
	d.Selections = selections

	q, err := pricing.Price(variation.Pricing(), selections)
	if err != nil {
		return nil, err
	}
	return &DraftView{Draft: d, Quote: q, Notice: notice}, nil
}

func (s *DraftService) orderable(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
	}
	if err != nil {
		return nil, err
	}
	if !product.Orderable() {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}
	return product, nil
}

func draftComplement(product *models.Product, id string) (pricing.Complement, error) {
	c, ok := product.Complement(id)
	if !ok {
		return pricing.Complement{}, fmt.Errorf("%w: complement %s is not available for %s", ErrInvalidCheckout, id, product.Name)
	}
	return c.Pricing(), nil
}

func chargeNotice(c pricing.Complement) string {
	if !c.Included {
		return fmt.Sprintf("O complemento %q é cobrado à parte: R$ %s.", c.Name, c.UnitPrice.StringFixed(2))
	}
	return fmt.Sprintf("O complemento %q será cobrado R$ %s pois você já selecionou o limite de itens gratuitos.",
		c.Name, c.UnitPrice.StringFixed(2))
}
