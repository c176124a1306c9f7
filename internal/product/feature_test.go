package product

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-lifecycle-service/internal/event"
)

func TestUpdateFeatureValue_Enumerated(t *testing.T) {
	bus, mem := newTestBus(t)
	ctx := context.Background()
	product := createProduct(t, bus, "REF-1", 0)

	for _, avID := range []int64{10, 11, 10} {
		ev := &event.FeatureProductUpdateEvent{ProductID: product.ID, FeatureID: 1, FeatureAvID: avID, Locale: "en_US"}
		require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, ev))
		require.NotNil(t, ev.FeatureProduct)
		assert.Equal(t, ptrTo(avID), ev.FeatureProduct.FeatureAvID)
		assert.Nil(t, ev.FeatureProduct.FreeTextAvID)
	}

	features, err := mem.ListFeatureProducts(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, features, 2, "one row per enumerated value")
	for _, fp := range features {
		assert.NoError(t, fp.Validate())
	}
}

func TestUpdateFeatureValue_FreeTextPerLocale(t *testing.T) {
	bus, mem := newTestBus(t)
	ctx := context.Background()
	product := createProduct(t, bus, "REF-1", 0)

	first := &event.FeatureProductUpdateEvent{ProductID: product.ID, FeatureID: 2, FreeText: "Oak", IsTextValue: true, Locale: "en_US"}
	require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, first))
	require.NotNil(t, first.FeatureProduct)
	require.True(t, first.FeatureProduct.IsFreeText())
	avID := *first.FeatureProduct.FreeTextAvID

	second := &event.FeatureProductUpdateEvent{ProductID: product.ID, FeatureID: 2, FreeText: "Chêne", IsTextValue: true, Locale: "fr_FR"}
	require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, second))
	assert.Equal(t, ptrTo(avID), second.FeatureProduct.FreeTextAvID, "the free text value is shared across locales")

	retitled := &event.FeatureProductUpdateEvent{ProductID: product.ID, FeatureID: 2, FreeText: "Solid oak", IsTextValue: true, Locale: "en_US"}
	require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, retitled))

	features, err := mem.ListFeatureProducts(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.NoError(t, features[0].Validate())

	en, err := mem.GetFeatureAvI18n(ctx, avID, "en_US")
	require.NoError(t, err)
	assert.Equal(t, "Solid oak", en.Title)
	fr, err := mem.GetFeatureAvI18n(ctx, avID, "fr_FR")
	require.NoError(t, err)
	assert.Equal(t, "Chêne", fr.Title)
}

func TestUpdateFeatureValue_UnchangedFreeTextIsNotRewritten(t *testing.T) {
	bus, mem := newTestBus(t)
	ctx := context.Background()
	product := createProduct(t, bus, "REF-1", 0)

	update := func(text string) error {
		return bus.Dispatch(ctx, event.ProductFeatureUpdateValue, &event.FeatureProductUpdateEvent{
			ProductID: product.ID, FeatureID: 2, FreeText: text, IsTextValue: true, Locale: "en_US",
		})
	}
	require.NoError(t, update("Oak"))

	boom := errors.New("translation write failed")
	mem.FailOn("SaveFeatureAvI18n", boom)
	require.NoError(t, update("Oak"), "the same text needs no write")

	assert.ErrorIs(t, update("Walnut"), boom)

	features, err := mem.ListFeatureProducts(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, features, 1)
	en, err := mem.GetFeatureAvI18n(ctx, *features[0].FreeTextAvID, "en_US")
	require.NoError(t, err)
	assert.Equal(t, "Oak", en.Title)
}

func TestUpdateFeatureValue_SwitchesEnumeratedToFreeText(t *testing.T) {
	bus, mem := newTestBus(t)
	ctx := context.Background()
	product := createProduct(t, bus, "REF-1", 0)

	require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, &event.FeatureProductUpdateEvent{
		ProductID: product.ID, FeatureID: 1, FeatureAvID: 10, Locale: "en_US",
	}))
	require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, &event.FeatureProductUpdateEvent{
		ProductID: product.ID, FeatureID: 1, FreeText: "Custom", IsTextValue: true, Locale: "en_US",
	}))

	features, err := mem.ListFeatureProducts(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.True(t, features[0].IsFreeText())
	assert.NoError(t, features[0].Validate())
}

func TestDeleteFeatureValue(t *testing.T) {
	bus, mem := newTestBus(t)
	ctx := context.Background()
	product := createProduct(t, bus, "REF-1", 0)

	for _, avID := range []int64{10, 11} {
		require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, &event.FeatureProductUpdateEvent{
			ProductID: product.ID, FeatureID: 1, FeatureAvID: avID, Locale: "en_US",
		}))
	}
	require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureUpdateValue, &event.FeatureProductUpdateEvent{
		ProductID: product.ID, FeatureID: 2, FeatureAvID: 20, Locale: "en_US",
	}))

	require.NoError(t, bus.Dispatch(ctx, event.ProductFeatureDeleteValue, &event.FeatureProductDeleteEvent{ProductID: product.ID, FeatureID: 1}))

	features, err := mem.ListFeatureProducts(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, int64(2), features[0].FeatureID)
}
