package product

import (
	"context"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
)

// DeleteImageSaleElementsAssociations unlinks a deleted product image from
// the sale elements using it. Other images are ignored.
func (h *Handler) DeleteImageSaleElementsAssociations(ctx context.Context, ev *event.FileDeleteEvent, _ event.Dispatcher) error {
	img, ok := ev.FileToDelete.(*domain.ProductImage)
	if !ok {
		return nil
	}
	return h.store.DeleteImageSaleElementsAssociations(ctx, img.ID)
}

// DeleteDocumentSaleElementsAssociations is the document counterpart.
func (h *Handler) DeleteDocumentSaleElementsAssociations(ctx context.Context, ev *event.FileDeleteEvent, _ event.Dispatcher) error {
	doc, ok := ev.FileToDelete.(*domain.ProductDocument)
	if !ok {
		return nil
	}
	return h.store.DeleteDocumentSaleElementsAssociations(ctx, doc.ID)
}
