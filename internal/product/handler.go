// Package product holds the product lifecycle listeners: creation, cloning,
// updates, associations, templates and feature values.
package product

import (
	"errors"
	"log"
	"os"

	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

const (
	// Priority of the lifecycle listeners.
	handlerPriority = 128

	// File association cleanup must run before the listener deleting the file row.
	fileCleanupPriority = 192
)

var (
	ErrMissingProduct      = errors.New("product: event carries no product")
	ErrFeatureAvNotCreated = errors.New("product: no listener created the free text feature value")
)

// Store is everything the lifecycle handler persists through.
type Store interface {
	store.Transactor
	store.ProductStorer
	store.CategoryStorer
	store.AssociationStorer
	store.FeatureStorer
	store.SaleElementsStorer
	store.TaxRuleStorer
	store.FileStorer
}

// Handler is the product lifecycle subscriber.
type Handler struct {
	store  Store
	logger *log.Logger
}

// NewHandler creates a Handler. A nil logger writes to stdout.
func NewHandler(s Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(os.Stdout, "[product] ", log.LstdFlags)
	}
	return &Handler{store: s, logger: logger}
}

// SubscribedEvents implements event.Subscriber.
func (h *Handler) SubscribedEvents() []event.Subscription {
	return []event.Subscription{
		{Name: event.ProductCreate, Listener: event.Typed(h.Create), Priority: handlerPriority},
		{Name: event.ProductClone, Listener: event.Typed(h.Clone), Priority: handlerPriority},
		{Name: event.ProductUpdate, Listener: event.Typed(h.Update), Priority: handlerPriority},
		{Name: event.ProductDelete, Listener: event.Typed(h.Delete), Priority: handlerPriority},
		{Name: event.ProductToggleVisibility, Listener: event.Typed(h.ToggleVisibility), Priority: handlerPriority},

		{Name: event.ProductUpdatePosition, Listener: event.Typed(h.UpdatePosition), Priority: handlerPriority},
		{Name: event.ProductUpdateSeo, Listener: event.Typed(h.UpdateSeo), Priority: handlerPriority},

		{Name: event.ProductAddContent, Listener: event.Typed(h.AddContent), Priority: handlerPriority},
		{Name: event.ProductRemoveContent, Listener: event.Typed(h.RemoveContent), Priority: handlerPriority},
		{Name: event.ProductUpdateContentPosition, Listener: event.Typed(h.UpdateContentPosition), Priority: handlerPriority},

		{Name: event.ProductAddAccessory, Listener: event.Typed(h.AddAccessory), Priority: handlerPriority},
		{Name: event.ProductRemoveAccessory, Listener: event.Typed(h.RemoveAccessory), Priority: handlerPriority},
		{Name: event.ProductUpdateAccessoryPosition, Listener: event.Typed(h.UpdateAccessoryPosition), Priority: handlerPriority},

		{Name: event.ProductAddCategory, Listener: event.Typed(h.AddCategory), Priority: handlerPriority},
		{Name: event.ProductRemoveCategory, Listener: event.Typed(h.RemoveCategory), Priority: handlerPriority},

		{Name: event.ProductSetTemplate, Listener: event.Typed(h.SetTemplate), Priority: handlerPriority},

		{Name: event.ProductFeatureUpdateValue, Listener: event.Typed(h.UpdateFeatureValue), Priority: handlerPriority},
		{Name: event.ProductFeatureDeleteValue, Listener: event.Typed(h.DeleteFeatureValue), Priority: handlerPriority},

		{Name: event.ImageDelete, Listener: event.Typed(h.DeleteImageSaleElementsAssociations), Priority: fileCleanupPriority},
		{Name: event.DocumentDelete, Listener: event.Typed(h.DeleteDocumentSaleElementsAssociations), Priority: fileCleanupPriority},
	}
}

func int64Ptr(v int64) *int64 { return &v }

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
