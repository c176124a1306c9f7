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

// SetTemplate applies a template to a product. Its feature values, attribute
// combinations and non-default sale elements are dropped; a default sale
// element is guaranteed to remain.
func (h *Handler) SetTemplate(ctx context.Context, ev *event.ProductSetTemplateEvent, d event.Dispatcher) error {
	product := ev.Product
	if product == nil {
		return ErrMissingProduct
	}

	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		features, err := h.store.ListFeatureProducts(ctx, product.ID)
		if err != nil {
			return err
		}
		for _, fp := range features {
			deleteEvent := &event.FeatureProductDeleteEvent{ProductID: product.ID, FeatureID: fp.FeatureID}
			if err := d.Dispatch(ctx, event.ProductFeatureDeleteValue, deleteEvent); err != nil {
				return err
			}
		}

		if err := h.store.DeleteAttributeCombinations(ctx, product.ID); err != nil {
			return err
		}
		if err := h.store.DeleteNonDefaultSaleElements(ctx, product.ID); err != nil {
			return err
		}

		product.TemplateID = nil
		if ev.TemplateID > 0 {
			product.TemplateID = int64Ptr(ev.TemplateID)
		}
		if err := h.store.UpdateProduct(ctx, product); err != nil {
			return err
		}

		if err := h.ensureDefaultSaleElements(ctx, product, ev.CurrencyID); err != nil {
			return err
		}

		product.SaleElements = nil
		return nil
	})
	if err != nil {
		return fmt.Errorf("product: failed to set template of product %d: %w", product.ID, err)
	}

	ev.Product = product
	return nil
}

func (h *Handler) ensureDefaultSaleElements(ctx context.Context, product *domain.Product, currencyID int64) error {
	_, err := h.store.GetDefaultSaleElements(ctx, product.ID)
	if err == nil || !errors.Is(err, store.ErrSaleElementsNotFound) {
		return err
	}

	pse := &domain.ProductSaleElements{
		ProductID: product.ID,
		Ref:       product.Ref,
		Quantity:  decimal.Zero,
		Weight:    decimal.Zero,
		IsDefault: true,
	}
	prices := []domain.ProductPrice{{CurrencyID: currencyID, Price: decimal.Zero, PromoPrice: decimal.Zero}}
	return h.store.CreateSaleElements(ctx, pse, prices)
}
