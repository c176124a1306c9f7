package file

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
	"product-lifecycle-service/internal/store/storetest"
)

func newTestHandler() (*Handler, *storetest.Memory) {
	mem := storetest.NewMemory()
	return NewHandler(mem, log.New(io.Discard, "", 0)), mem
}

func TestClone_CopiesImagesAndDocuments(t *testing.T) {
	h, mem := newTestHandler()
	ctx := context.Background()
	original := &domain.Product{ID: 1}
	clone := &domain.Product{ID: 2}

	require.NoError(t, mem.CreateProductImage(ctx, &domain.ProductImage{ProductID: 1, File: "front.jpg", Visible: true, Position: 1}))
	require.NoError(t, mem.CreateProductImage(ctx, &domain.ProductImage{ProductID: 1, File: "back.jpg", Position: 2}))
	require.NoError(t, mem.CreateProductDocument(ctx, &domain.ProductDocument{ProductID: 1, File: "manual.pdf", Position: 1}))

	require.NoError(t, h.Clone(ctx, &event.ProductCloneEvent{OriginalProduct: original, ClonedProduct: clone}, nil))

	images, err := mem.ListProductImages(ctx, clone.ID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "front.jpg", images[0].File)
	assert.True(t, images[0].Visible)
	assert.Equal(t, "back.jpg", images[1].File)

	documents, err := mem.ListProductDocuments(ctx, clone.ID)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "manual.pdf", documents[0].File)

	originals, err := mem.ListProductImages(ctx, original.ID)
	require.NoError(t, err)
	assert.Len(t, originals, 2)
}

func TestClone_MissingProduct(t *testing.T) {
	h, _ := newTestHandler()
	err := h.Clone(context.Background(), &event.ProductCloneEvent{OriginalProduct: &domain.Product{ID: 1}}, nil)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	h, mem := newTestHandler()
	ctx := context.Background()

	img := &domain.ProductImage{ProductID: 1, File: "front.jpg"}
	require.NoError(t, mem.CreateProductImage(ctx, img))
	doc := &domain.ProductDocument{ProductID: 1, File: "manual.pdf"}
	require.NoError(t, mem.CreateProductDocument(ctx, doc))

	tests := []struct {
		name    string
		file    any
		wantErr error
	}{
		{name: "image", file: img},
		{name: "document", file: doc},
		{name: "image already deleted", file: img, wantErr: store.ErrImageNotFound},
		{name: "unsupported file", file: &domain.Product{ID: 1}, wantErr: event.ErrUnexpectedEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Delete(ctx, &event.FileDeleteEvent{FileToDelete: tt.file}, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := mem.GetProductDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}
