package product

import (
	"context"
	"fmt"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
)

// Clone copies the original product of ev into a new, invisible product.
// Every step is re-dispatched on the bus and runs in a single transaction.
func (h *Handler) Clone(ctx context.Context, ev *event.ProductCloneEvent, d event.Dispatcher) error {
	original := ev.OriginalProduct
	if original == nil {
		return ErrMissingProduct
	}

	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		defaultI18n, err := h.store.GetProductI18n(ctx, original.ID, ev.Lang)
		if err != nil {
			return fmt.Errorf("product: failed to load %s translation of product %d: %w", ev.Lang, original.ID, err)
		}
		defaultPSE, err := h.store.GetDefaultSaleElements(ctx, original.ID)
		if err != nil {
			return fmt.Errorf("product: failed to load default sale elements of product %d: %w", original.ID, err)
		}
		defaultPrice, err := h.store.GetProductPrice(ctx, defaultPSE.ID)
		if err != nil {
			return fmt.Errorf("product: failed to load default price of product %d: %w", original.ID, err)
		}

		if err := h.createClone(ctx, ev, d, defaultI18n, defaultPSE, defaultPrice); err != nil {
			return err
		}
		if err := h.updateClone(ctx, ev, d, defaultPSE, defaultPrice); err != nil {
			return err
		}
		if err := h.cloneFeatureCombination(ctx, ev, d); err != nil {
			return err
		}
		if err := h.cloneAssociatedContent(ctx, ev, d); err != nil {
			return err
		}

		if err := d.Dispatch(ctx, event.FileClone, ev); err != nil {
			return err
		}
		return d.Dispatch(ctx, event.SaleElementsClone, ev)
	})
	if err != nil {
		h.logger.Printf("ERROR: Cloning product %d failed, rolled back: %v", original.ID, err)
		ev.ClonedProduct = nil
		return err
	}

	h.logger.Printf("INFO: Cloned product %d into product %d", original.ID, ev.ClonedProduct.ID)
	return nil
}

func (h *Handler) createClone(
	ctx context.Context,
	ev *event.ProductCloneEvent,
	d event.Dispatcher,
	defaultI18n *domain.ProductI18n,
	defaultPSE *domain.ProductSaleElements,
	defaultPrice *domain.ProductPrice,
) error {
	original := ev.OriginalProduct
	createEvent := &event.ProductCreateEvent{
		Ref:             ev.Ref,
		Locale:          ev.Lang,
		Title:           defaultI18n.Title,
		Visible:         false,
		Virtual:         original.Virtual,
		TaxRuleID:       original.TaxRuleID,
		DefaultCategory: original.DefaultCategoryID,
		BasePrice:       defaultPrice.Price,
		CurrencyID:      defaultPrice.CurrencyID,
		BaseWeight:      defaultPSE.Weight,
	}
	if err := d.Dispatch(ctx, event.ProductCreate, createEvent); err != nil {
		return err
	}
	if createEvent.Product == nil {
		return fmt.Errorf("product: clone of product %d was not created: %w", original.ID, ErrMissingProduct)
	}

	ev.ClonedProduct = createEvent.Product
	return nil
}

// updateClone copies every translation with its SEO fields, then applies the
// original template to the clone.
func (h *Handler) updateClone(
	ctx context.Context,
	ev *event.ProductCloneEvent,
	d event.Dispatcher,
	defaultPSE *domain.ProductSaleElements,
	defaultPrice *domain.ProductPrice,
) error {
	original := ev.OriginalProduct

	i18ns, err := h.store.ListProductI18ns(ctx, original.ID)
	if err != nil {
		return err
	}

	for _, i18n := range i18ns {
		clone := ev.ClonedProduct
		updateEvent := &event.ProductUpdateEvent{
			ProductID: clone.ID,
			Ref:       clone.Ref,
			Visible:   clone.Visible,
			Virtual:   clone.Virtual,

			Locale:       i18n.Locale,
			Title:        i18n.Title,
			Chapo:        i18n.Chapo,
			Description:  i18n.Description,
			Postscriptum: i18n.Postscriptum,

			BasePrice:       defaultPrice.Price,
			CurrencyID:      defaultPrice.CurrencyID,
			BaseWeight:      defaultPSE.Weight,
			TaxRuleID:       original.TaxRuleID,
			BrandID:         derefInt64(original.BrandID),
			DefaultCategory: original.DefaultCategoryID,
		}
		if err := d.Dispatch(ctx, event.ProductUpdate, updateEvent); err != nil {
			return err
		}
		if updateEvent.Product != nil {
			ev.ClonedProduct = updateEvent.Product
		}

		seoEvent := &event.UpdateSeoEvent{
			ObjectID:        clone.ID,
			Locale:          i18n.Locale,
			MetaTitle:       i18n.MetaTitle,
			MetaDescription: i18n.MetaDescription,
			MetaKeywords:    i18n.MetaKeywords,
			URL:             nil,
		}
		if err := d.Dispatch(ctx, event.ProductUpdateSeo, seoEvent); err != nil {
			return err
		}
	}

	templateEvent := &event.ProductSetTemplateEvent{
		Product:    ev.ClonedProduct,
		TemplateID: derefInt64(original.TemplateID),
		CurrencyID: defaultPrice.CurrencyID,
	}
	if err := d.Dispatch(ctx, event.ProductSetTemplate, templateEvent); err != nil {
		return err
	}
	if templateEvent.Product != nil {
		ev.ClonedProduct = templateEvent.Product
	}
	return nil
}

// cloneFeatureCombination copies every feature value. A source row without a
// defined value aborts the whole clone.
func (h *Handler) cloneFeatureCombination(ctx context.Context, ev *event.ProductCloneEvent, d event.Dispatcher) error {
	features, err := h.store.ListFeatureProducts(ctx, ev.OriginalProduct.ID)
	if err != nil {
		return err
	}

	for _, fp := range features {
		if err := fp.Validate(); err != nil {
			return fmt.Errorf("product: cannot clone feature %d of product %d: %w", fp.FeatureID, fp.ProductID, err)
		}

		if !fp.IsFreeText() {
			updateEvent := &event.FeatureProductUpdateEvent{
				ProductID:   ev.ClonedProduct.ID,
				FeatureID:   fp.FeatureID,
				FeatureAvID: *fp.FeatureAvID,
				Locale:      ev.Lang,
			}
			if err := d.Dispatch(ctx, event.ProductFeatureUpdateValue, updateEvent); err != nil {
				return err
			}
			continue
		}

		texts, err := h.store.ListFeatureAvI18ns(ctx, *fp.FreeTextAvID)
		if err != nil {
			return err
		}
		if len(texts) == 0 {
			return fmt.Errorf("product: cannot clone feature %d of product %d: %w", fp.FeatureID, fp.ProductID, domain.ErrFeatureValueUndefined)
		}
		for _, text := range texts {
			updateEvent := &event.FeatureProductUpdateEvent{
				ProductID:   ev.ClonedProduct.ID,
				FeatureID:   fp.FeatureID,
				FreeText:    text.Title,
				IsTextValue: true,
				Locale:      text.Locale,
			}
			if err := d.Dispatch(ctx, event.ProductFeatureUpdateValue, updateEvent); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) cloneAssociatedContent(ctx context.Context, ev *event.ProductCloneEvent, d event.Dispatcher) error {
	contents, err := h.store.ListAssociatedContents(ctx, ev.OriginalProduct.ID)
	if err != nil {
		return err
	}

	for _, content := range contents {
		addEvent := &event.ProductAddContentEvent{Product: ev.ClonedProduct, ContentID: content.ContentID}
		if err := d.Dispatch(ctx, event.ProductAddContent, addEvent); err != nil {
			return err
		}
	}
	return nil
}
