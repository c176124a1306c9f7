package product

import (
	"context"
	"errors"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

// UpdateFeatureValue sets the value of a feature for a product.
//
// An enumerated value may be one of several rows for the same feature; an
// existing row is kept as is. A free text value is a single row per feature
// whose text lives in a dedicated feature value, one translation per locale.
func (h *Handler) UpdateFeatureValue(ctx context.Context, ev *event.FeatureProductUpdateEvent, d event.Dispatcher) error {
	var avFilter *int64
	if !ev.IsTextValue {
		avFilter = int64Ptr(ev.FeatureAvID)
	}

	var saved *domain.FeatureProduct
	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		fp, err := h.store.FindFeatureProduct(ctx, ev.ProductID, ev.FeatureID, avFilter)
		notFound := errors.Is(err, store.ErrFeatureProductNotFound)
		if err != nil && !notFound {
			return err
		}

		switch {
		case notFound:
			fp = &domain.FeatureProduct{ProductID: ev.ProductID, FeatureID: ev.FeatureID}
			if ev.IsTextValue {
				avID, err := h.createFreeTextValue(ctx, ev, d)
				if err != nil {
					return err
				}
				fp.SetFreeText(avID)
			} else {
				fp.SetEnumerated(ev.FeatureAvID)
			}
		case ev.IsTextValue && fp.FreeTextAvID != nil:
			if err := h.saveFreeText(ctx, *fp.FreeTextAvID, ev.Locale, ev.FreeText); err != nil {
				return err
			}
		case ev.IsTextValue:
			avID, err := h.createFreeTextValue(ctx, ev, d)
			if err != nil {
				return err
			}
			fp.SetFreeText(avID)
		default:
			fp.SetEnumerated(ev.FeatureAvID)
		}

		if err := h.store.SaveFeatureProduct(ctx, fp); err != nil {
			return err
		}
		saved = fp
		return nil
	})
	if err != nil {
		return err
	}

	ev.FeatureProduct = saved
	return nil
}

// saveFreeText writes the text of an existing free text value in locale.
// An unchanged text is left alone.
func (h *Handler) saveFreeText(ctx context.Context, avID int64, locale, text string) error {
	current, err := h.store.GetFeatureAvI18n(ctx, avID, locale)
	switch {
	case err == nil && current.Title == text:
		return nil
	case err != nil && !errors.Is(err, store.ErrFeatureAvI18nNotFound):
		return err
	}
	return h.store.SaveFeatureAvI18n(ctx, &domain.FeatureAvI18n{ID: avID, Locale: locale, Title: text})
}

// createFreeTextValue dispatches the creation of the feature value holding a
// free text and returns its id.
func (h *Handler) createFreeTextValue(ctx context.Context, ev *event.FeatureProductUpdateEvent, d event.Dispatcher) (int64, error) {
	createEvent := &event.FeatureAvCreateEvent{
		FeatureID: ev.FeatureID,
		Locale:    ev.Locale,
		Title:     ev.FreeText,
	}
	if err := d.Dispatch(ctx, event.FeatureAvCreate, createEvent); err != nil {
		return 0, err
	}
	if createEvent.FeatureAv == nil {
		return 0, ErrFeatureAvNotCreated
	}
	return createEvent.FeatureAv.ID, nil
}

// DeleteFeatureValue removes every value of a feature for a product.
func (h *Handler) DeleteFeatureValue(ctx context.Context, ev *event.FeatureProductDeleteEvent, _ event.Dispatcher) error {
	return h.store.DeleteFeatureProducts(ctx, ev.ProductID, ev.FeatureID)
}
