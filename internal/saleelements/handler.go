// Package saleelements clones the sale elements of a product.
package saleelements

import (
	"context"
	"fmt"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

const handlerPriority = 128

type Store interface {
	store.Transactor
	store.SaleElementsStorer
}

type Handler struct {
	store Store
}

func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) SubscribedEvents() []event.Subscription {
	return []event.Subscription{
		{Name: event.SaleElementsClone, Listener: event.Typed(h.Clone), Priority: handlerPriority},
	}
}

// Clone copies the sale elements of the original product to its clone. The
// default sale element of the clone already exists and is updated in place;
// every other sale element is copied with its prices and attribute combinations.
func (h *Handler) Clone(ctx context.Context, ev *event.ProductCloneEvent, _ event.Dispatcher) error {
	if ev.OriginalProduct == nil || ev.ClonedProduct == nil {
		return fmt.Errorf("saleelements: clone event is missing a product")
	}
	original, clone := ev.OriginalProduct, ev.ClonedProduct

	return h.store.WithinTx(ctx, func(ctx context.Context) error {
		sources, err := h.store.ListSaleElements(ctx, original.ID)
		if err != nil {
			return err
		}

		copied := 0
		for _, source := range sources {
			prices, err := h.store.ListProductPrices(ctx, source.ID)
			if err != nil {
				return err
			}

			var target *domain.ProductSaleElements
			if source.IsDefault {
				target, err = h.cloneDefault(ctx, clone, source, prices)
			} else {
				copied++
				target, err = h.cloneOther(ctx, clone, source, prices, copied)
			}
			if err != nil {
				return err
			}

			if err := h.cloneCombinations(ctx, source.ID, target.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *Handler) cloneDefault(
	ctx context.Context,
	clone *domain.Product,
	source domain.ProductSaleElements,
	prices []domain.ProductPrice,
) (*domain.ProductSaleElements, error) {
	target, err := h.store.GetDefaultSaleElements(ctx, clone.ID)
	if err != nil {
		return nil, fmt.Errorf("saleelements: clone %d has no default sale elements: %w", clone.ID, err)
	}

	target.Quantity = source.Quantity
	target.Promo = source.Promo
	target.Newness = source.Newness
	target.Weight = source.Weight
	target.EanCode = source.EanCode
	if err := h.store.UpdateSaleElements(ctx, target); err != nil {
		return nil, err
	}

	for _, price := range prices {
		price.ProductSaleElementsID = target.ID
		if err := h.store.SaveProductPrice(ctx, &price); err != nil {
			return nil, err
		}
	}
	return target, nil
}

func (h *Handler) cloneOther(
	ctx context.Context,
	clone *domain.Product,
	source domain.ProductSaleElements,
	prices []domain.ProductPrice,
	n int,
) (*domain.ProductSaleElements, error) {
	target := source
	target.ID = 0
	target.ProductID = clone.ID
	target.Ref = fmt.Sprintf("%s-%d", clone.Ref, n)
	target.IsDefault = false

	copiedPrices := make([]domain.ProductPrice, len(prices))
	copy(copiedPrices, prices)

	if err := h.store.CreateSaleElements(ctx, &target, copiedPrices); err != nil {
		return nil, err
	}
	return &target, nil
}

func (h *Handler) cloneCombinations(ctx context.Context, sourceID, targetID int64) error {
	combinations, err := h.store.ListAttributeCombinations(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, ac := range combinations {
		ac.ProductSaleElementsID = targetID
		if err := h.store.AddAttributeCombination(ctx, &ac); err != nil {
			return err
		}
	}
	return nil
}
