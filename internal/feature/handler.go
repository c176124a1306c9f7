// Package feature creates shared feature values.
package feature

import (
	"context"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

const handlerPriority = 128

type Store interface {
	store.Transactor
	CreateFeatureAv(ctx context.Context, av *domain.FeatureAv) error
	SaveFeatureAvI18n(ctx context.Context, i18n *domain.FeatureAvI18n) error
}

// Handler listens to feature value creation.
type Handler struct {
	store Store
}

func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) SubscribedEvents() []event.Subscription {
	return []event.Subscription{
		{Name: event.FeatureAvCreate, Listener: event.Typed(h.CreateFeatureAv), Priority: handlerPriority},
	}
}

// CreateFeatureAv inserts a feature value with its first translation.
func (h *Handler) CreateFeatureAv(ctx context.Context, ev *event.FeatureAvCreateEvent, _ event.Dispatcher) error {
	av := &domain.FeatureAv{FeatureID: ev.FeatureID}

	err := h.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.store.CreateFeatureAv(ctx, av); err != nil {
			return err
		}
		return h.store.SaveFeatureAvI18n(ctx, &domain.FeatureAvI18n{ID: av.ID, Locale: ev.Locale, Title: ev.Title})
	})
	if err != nil {
		return err
	}

	ev.FeatureAv = av
	return nil
}
