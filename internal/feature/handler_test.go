package feature

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store/storetest"
)

func TestCreateFeatureAv(t *testing.T) {
	mem := storetest.NewMemory()
	bus := event.NewBus(nil)
	bus.AddSubscriber(NewHandler(mem))
	ctx := context.Background()

	ev := &event.FeatureAvCreateEvent{FeatureID: 4, Locale: "fr_FR", Title: "Chêne"}
	require.NoError(t, bus.Dispatch(ctx, event.FeatureAvCreate, ev))
	require.NotNil(t, ev.FeatureAv)
	assert.Equal(t, int64(4), ev.FeatureAv.FeatureID)
	assert.NotZero(t, ev.FeatureAv.ID)

	i18n, err := mem.GetFeatureAvI18n(ctx, ev.FeatureAv.ID, "fr_FR")
	require.NoError(t, err)
	assert.Equal(t, "Chêne", i18n.Title)
	assert.Equal(t, 1, mem.Commits)
}

func TestCreateFeatureAv_WrongPayload(t *testing.T) {
	bus := event.NewBus(nil)
	bus.AddSubscriber(NewHandler(storetest.NewMemory()))

	err := bus.Dispatch(context.Background(), event.FeatureAvCreate, &event.ProductDeleteEvent{})

	assert.ErrorIs(t, err, event.ErrUnexpectedEvent)
}
