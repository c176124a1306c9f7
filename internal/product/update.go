package product

import (
	"context"
	"errors"
	"fmt"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/slug"
	"product-lifecycle-service/internal/store"
)

// loadProduct returns the product, or nil when it does not exist.
func (h *Handler) loadProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := h.store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// loadI18n returns the translation of a product, or a new empty one.
func (h *Handler) loadI18n(ctx context.Context, productID int64, locale string) (*domain.ProductI18n, error) {
	i18n, err := h.store.GetProductI18n(ctx, productID, locale)
	if err != nil {
		if errors.Is(err, store.ErrProductI18nNotFound) {
			return &domain.ProductI18n{ProductID: productID, Locale: locale}, nil
		}
		return nil, err
	}
	return i18n, nil
}

// Update changes the core fields, one translation and the default category of
// a product. Unknown products are ignored.
func (h *Handler) Update(ctx context.Context, ev *event.ProductUpdateEvent, _ event.Dispatcher) error {
	product, err := h.loadProduct(ctx, ev.ProductID)
	if err != nil || product == nil {
		return err
	}

	err = h.store.WithinTx(ctx, func(ctx context.Context) error {
		product.Ref = ev.Ref
		product.Visible = ev.Visible
		product.Virtual = ev.Virtual
		product.BrandID = nil
		if ev.BrandID > 0 {
			product.BrandID = int64Ptr(ev.BrandID)
		}
		if err := h.store.UpdateProduct(ctx, product); err != nil {
			return err
		}

		i18n, err := h.loadI18n(ctx, product.ID, ev.Locale)
		if err != nil {
			return err
		}
		i18n.Title = ev.Title
		i18n.Description = ev.Description
		i18n.Chapo = ev.Chapo
		i18n.Postscriptum = ev.Postscriptum
		if err := h.store.SaveProductI18n(ctx, i18n); err != nil {
			return err
		}

		if ev.DefaultCategory > 0 && ev.DefaultCategory != product.DefaultCategoryID {
			if err := h.store.SetDefaultCategory(ctx, product.ID, ev.DefaultCategory); err != nil {
				return err
			}
			product.DefaultCategoryID = ev.DefaultCategory
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("product: failed to update product %d: %w", ev.ProductID, err)
	}

	ev.Product = product
	return nil
}

// UpdateSeo saves the meta fields and the rewritten URL of a translation.
// Without an explicit URL, the slug is rebuilt from the translated title.
func (h *Handler) UpdateSeo(ctx context.Context, ev *event.UpdateSeoEvent, _ event.Dispatcher) error {
	product, err := h.loadProduct(ctx, ev.ObjectID)
	if err != nil || product == nil {
		return err
	}

	i18n, err := h.loadI18n(ctx, product.ID, ev.Locale)
	if err != nil {
		return err
	}
	i18n.MetaTitle = ev.MetaTitle
	i18n.MetaDescription = ev.MetaDescription
	i18n.MetaKeywords = ev.MetaKeywords

	url, err := h.rewrittenURL(ctx, product, i18n, ev.URL)
	if err != nil {
		return err
	}
	i18n.URL = &url

	if err := h.store.SaveProductI18n(ctx, i18n); err != nil {
		return err
	}

	ev.Product = product
	return nil
}

func (h *Handler) rewrittenURL(ctx context.Context, product *domain.Product, i18n *domain.ProductI18n, requested *string) (string, error) {
	var url string
	if requested != nil {
		url = slug.Make(*requested)
	}
	if url == "" {
		url = slug.Make(i18n.Title)
	}
	if url == "" {
		url = slug.Make(product.Ref)
	}

	exists, err := h.store.ProductURLExists(ctx, i18n.Locale, url, product.ID)
	if err != nil {
		return "", err
	}
	if exists {
		url = fmt.Sprintf("%s-%d", url, product.ID)
	}
	return url, nil
}

// Delete removes a product. Unknown products are ignored.
func (h *Handler) Delete(ctx context.Context, ev *event.ProductDeleteEvent, _ event.Dispatcher) error {
	product, err := h.loadProduct(ctx, ev.ProductID)
	if err != nil || product == nil {
		return err
	}

	if err := h.store.DeleteProduct(ctx, product.ID); err != nil {
		return err
	}

	h.logger.Printf("INFO: Deleted product %d (ref %s)", product.ID, product.Ref)
	ev.Product = product
	return nil
}

// ToggleVisibility flips the visibility of the event product.
func (h *Handler) ToggleVisibility(ctx context.Context, ev *event.ProductToggleVisibilityEvent, _ event.Dispatcher) error {
	product := ev.Product
	if product == nil {
		return ErrMissingProduct
	}

	product.Visible = !product.Visible
	if err := h.store.UpdateProduct(ctx, product); err != nil {
		return err
	}

	ev.Product = product
	return nil
}

// UpdatePosition moves a product. Unknown products are ignored.
func (h *Handler) UpdatePosition(ctx context.Context, ev *event.UpdatePositionEvent, _ event.Dispatcher) error {
	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		return h.store.UpdateProductPosition(ctx, ev.ObjectID, ev.Mode, ev.Position)
	})
	if errors.Is(err, store.ErrProductNotFound) {
		return nil
	}
	return err
}
