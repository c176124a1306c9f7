package product

import (
	"context"
	"errors"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

// ignoreNotFound turns a missing row into a no-op.
func ignoreNotFound(err error, notFound error) error {
	if errors.Is(err, notFound) {
		return nil
	}
	return err
}

func (h *Handler) AddContent(ctx context.Context, ev *event.ProductAddContentEvent, _ event.Dispatcher) error {
	if ev.Product == nil {
		return ErrMissingProduct
	}

	_, err := h.store.FindAssociatedContent(ctx, ev.Product.ID, ev.ContentID)
	if err == nil || !errors.Is(err, store.ErrContentNotFound) {
		return err
	}

	return h.store.AddAssociatedContent(ctx, &domain.ProductAssociatedContent{
		ProductID: ev.Product.ID,
		ContentID: ev.ContentID,
	})
}

func (h *Handler) RemoveContent(ctx context.Context, ev *event.ProductDeleteContentEvent, _ event.Dispatcher) error {
	if ev.Product == nil {
		return ErrMissingProduct
	}

	content, err := h.store.FindAssociatedContent(ctx, ev.Product.ID, ev.ContentID)
	if err != nil {
		return ignoreNotFound(err, store.ErrContentNotFound)
	}
	return ignoreNotFound(h.store.DeleteAssociatedContent(ctx, content.ID), store.ErrContentNotFound)
}

func (h *Handler) UpdateContentPosition(ctx context.Context, ev *event.UpdatePositionEvent, _ event.Dispatcher) error {
	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		return h.store.UpdateAssociatedContentPosition(ctx, ev.ObjectID, ev.Mode, ev.Position)
	})
	return ignoreNotFound(err, store.ErrContentNotFound)
}

func (h *Handler) AddCategory(ctx context.Context, ev *event.ProductAddCategoryEvent, _ event.Dispatcher) error {
	if ev.Product == nil {
		return ErrMissingProduct
	}

	_, err := h.store.FindProductCategory(ctx, ev.Product.ID, ev.CategoryID)
	if err == nil || !errors.Is(err, store.ErrProductCategoryNotFound) {
		return err
	}

	return h.store.AddProductCategory(ctx, &domain.ProductCategory{
		ProductID:       ev.Product.ID,
		CategoryID:      ev.CategoryID,
		DefaultCategory: false,
	})
}

func (h *Handler) RemoveCategory(ctx context.Context, ev *event.ProductDeleteCategoryEvent, _ event.Dispatcher) error {
	if ev.Product == nil {
		return ErrMissingProduct
	}

	if _, err := h.store.FindProductCategory(ctx, ev.Product.ID, ev.CategoryID); err != nil {
		return ignoreNotFound(err, store.ErrProductCategoryNotFound)
	}
	err := h.store.DeleteProductCategory(ctx, ev.Product.ID, ev.CategoryID)
	return ignoreNotFound(err, store.ErrProductCategoryNotFound)
}

func (h *Handler) AddAccessory(ctx context.Context, ev *event.ProductAddAccessoryEvent, _ event.Dispatcher) error {
	if ev.Product == nil {
		return ErrMissingProduct
	}

	_, err := h.store.FindAccessory(ctx, ev.Product.ID, ev.AccessoryID)
	if err == nil || !errors.Is(err, store.ErrAccessoryNotFound) {
		return err
	}

	return h.store.AddAccessory(ctx, &domain.Accessory{
		ProductID: ev.Product.ID,
		Accessory: ev.AccessoryID,
	})
}

func (h *Handler) RemoveAccessory(ctx context.Context, ev *event.ProductDeleteAccessoryEvent, _ event.Dispatcher) error {
	if ev.Product == nil {
		return ErrMissingProduct
	}

	accessory, err := h.store.FindAccessory(ctx, ev.Product.ID, ev.AccessoryID)
	if err != nil {
		return ignoreNotFound(err, store.ErrAccessoryNotFound)
	}
	return ignoreNotFound(h.store.DeleteAccessory(ctx, accessory.ID), store.ErrAccessoryNotFound)
}

func (h *Handler) UpdateAccessoryPosition(ctx context.Context, ev *event.UpdatePositionEvent, _ event.Dispatcher) error {
	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		return h.store.UpdateAccessoryPosition(ctx, ev.ObjectID, ev.Mode, ev.Position)
	})
	return ignoreNotFound(err, store.ErrAccessoryNotFound)
}
