package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
)

func TestDeleteImage_UnlinksSaleElementsBeforeRow(t *testing.T) {
	bus, mem := newTestBus(t)
	ctx := context.Background()
	product := createProduct(t, bus, "REF-1", 0)

	img := &domain.ProductImage{ProductID: product.ID, File: "chair.jpg", Position: 1}
	require.NoError(t, mem.CreateProductImage(ctx, img))
	pse, err := mem.GetDefaultSaleElements(ctx, product.ID)
	require.NoError(t, err)
	mem.LinkImage(img.ID, pse.ID)

	// Observes the state between the cleanup listener and the row deletion.
	var linksSeen, rowSeen bool
	bus.AddListener(event.ImageDelete, func(ctx context.Context, _ event.Event, _ event.Dispatcher) error {
		linksSeen = len(mem.SaleElementsImages(img.ID)) > 0
		_, err := mem.GetProductImage(ctx, img.ID)
		rowSeen = err == nil
		return nil
	}, 160)

	require.NoError(t, bus.Dispatch(ctx, event.ImageDelete, &event.FileDeleteEvent{FileToDelete: img}))

	assert.False(t, linksSeen, "associations are removed first")
	assert.True(t, rowSeen, "the row is still there for later listeners")
	_, err = mem.GetProductImage(ctx, img.ID)
	assert.Error(t, err)
}

func TestDeleteDocument_IgnoresImages(t *testing.T) {
	bus, mem := newTestBus(t)
	ctx := context.Background()
	product := createProduct(t, bus, "REF-1", 0)

	doc := &domain.ProductDocument{ProductID: product.ID, File: "manual.pdf"}
	require.NoError(t, mem.CreateProductDocument(ctx, doc))
	pse, err := mem.GetDefaultSaleElements(ctx, product.ID)
	require.NoError(t, err)
	mem.LinkDocument(doc.ID, pse.ID)

	require.NoError(t, bus.Dispatch(ctx, event.DocumentDelete, &event.FileDeleteEvent{FileToDelete: doc}))

	_, err = mem.GetProductDocument(ctx, doc.ID)
	assert.Error(t, err)
}
