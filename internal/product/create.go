package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

// Create persists a new product with its default sale element, then applies
// the nearest template defined in its category tree.
func (h *Handler) Create(ctx context.Context, ev *event.ProductCreateEvent, _ event.Dispatcher) error {
	taxRuleID := ev.TaxRuleID
	if taxRuleID <= 0 {
		taxRule, err := h.store.GetDefaultTaxRule(ctx)
		if err != nil {
			return fmt.Errorf("product: failed to resolve default tax rule: %w", err)
		}
		taxRuleID = taxRule.ID
	}

	var created *domain.Product
	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		p, err := h.store.CreateProduct(ctx,
			&domain.Product{
				Ref:               ev.Ref,
				Visible:           ev.Visible,
				Virtual:           ev.Virtual,
				TaxRuleID:         taxRuleID,
				DefaultCategoryID: ev.DefaultCategory,
			},
			&domain.ProductI18n{Locale: ev.Locale, Title: ev.Title},
		)
		if err != nil {
			return err
		}

		pse := &domain.ProductSaleElements{
			ProductID: p.ID,
			Ref:       p.Ref,
			Quantity:  decimal.Zero,
			Weight:    ev.BaseWeight,
			IsDefault: true,
		}
		prices := []domain.ProductPrice{{CurrencyID: ev.CurrencyID, Price: ev.BasePrice, PromoPrice: ev.BasePrice}}
		if err := h.store.CreateSaleElements(ctx, pse, prices); err != nil {
			return err
		}

		templateID, err := h.inheritedTemplate(ctx, ev.DefaultCategory)
		if err != nil {
			return err
		}
		if templateID != nil {
			p.TemplateID = templateID
			if err := h.store.UpdateProduct(ctx, p); err != nil {
				return err
			}
		}

		created = p
		return nil
	})
	if err != nil {
		return err
	}

	h.logger.Printf("INFO: Created product %d (ref %s)", created.ID, created.Ref)
	ev.Product = created
	return nil
}

// inheritedTemplate walks up the category tree from categoryID and returns
// the first default template found, or nil.
func (h *Handler) inheritedTemplate(ctx context.Context, categoryID int64) (*int64, error) {
	seen := make(map[int64]bool)
	for categoryID > 0 && !seen[categoryID] {
		seen[categoryID] = true

		category, err := h.store.GetCategoryByID(ctx, categoryID)
		if err != nil {
			if errors.Is(err, store.ErrCategoryNotFound) {
				return nil, nil
			}
			return nil, err
		}

		if category.DefaultTemplateID != nil && *category.DefaultTemplateID > 0 {
			return int64Ptr(*category.DefaultTemplateID), nil
		}
		categoryID = category.Parent
	}
	return nil, nil
}
