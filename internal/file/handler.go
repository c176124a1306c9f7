// Package file copies and deletes the images and documents attached to a product.
package file

import (
	"context"
	"fmt"
	"log"
	"os"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

const handlerPriority = 128

type Store interface {
	store.Transactor
	store.FileStorer
}

type Handler struct {
	store  Store
	logger *log.Logger
}

func NewHandler(s Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(os.Stdout, "[file] ", log.LstdFlags)
	}
	return &Handler{store: s, logger: logger}
}

func (h *Handler) SubscribedEvents() []event.Subscription {
	return []event.Subscription{
		{Name: event.FileClone, Listener: event.Typed(h.Clone), Priority: handlerPriority},
		{Name: event.ImageDelete, Listener: event.Typed(h.Delete), Priority: handlerPriority},
		{Name: event.DocumentDelete, Listener: event.Typed(h.Delete), Priority: handlerPriority},
	}
}

// Clone attaches the images and documents of the original product to its
// clone. The stored files are shared, only the rows are copied.
func (h *Handler) Clone(ctx context.Context, ev *event.ProductCloneEvent, _ event.Dispatcher) error {
	if ev.OriginalProduct == nil || ev.ClonedProduct == nil {
		return fmt.Errorf("file: clone event is missing a product")
	}
	originalID, cloneID := ev.OriginalProduct.ID, ev.ClonedProduct.ID

	return h.store.WithinTx(ctx, func(ctx context.Context) error {
		images, err := h.store.ListProductImages(ctx, originalID)
		if err != nil {
			return err
		}
		for _, img := range images {
			img.ID = 0
			img.ProductID = cloneID
			if err := h.store.CreateProductImage(ctx, &img); err != nil {
				return err
			}
		}

		documents, err := h.store.ListProductDocuments(ctx, originalID)
		if err != nil {
			return err
		}
		for _, doc := range documents {
			doc.ID = 0
			doc.ProductID = cloneID
			if err := h.store.CreateProductDocument(ctx, &doc); err != nil {
				return err
			}
		}

		h.logger.Printf("INFO: Copied %d images and %d documents from product %d to product %d",
			len(images), len(documents), originalID, cloneID)
		return nil
	})
}

// Delete removes the row of a product image or document.
func (h *Handler) Delete(ctx context.Context, ev *event.FileDeleteEvent, _ event.Dispatcher) error {
	switch f := ev.FileToDelete.(type) {
	case *domain.ProductImage:
		return h.store.DeleteProductImage(ctx, f.ID)
	case *domain.ProductDocument:
		return h.store.DeleteProductDocument(ctx, f.ID)
	default:
		return fmt.Errorf("file: cannot delete %T: %w", ev.FileToDelete, event.ErrUnexpectedEvent)
	}
}
