package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

// MockDispatcher is a mock implementation of event.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, name string, ev event.Event) error {
	args := m.Called(ctx, name, ev)
	return args.Error(0)
}

// MockCatalog is a mock implementation of Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalog) FindAssociatedContent(ctx context.Context, productID, contentID int64) (*domain.ProductAssociatedContent, error) {
	args := m.Called(ctx, productID, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductAssociatedContent), args.Error(1)
}

func (m *MockCatalog) FindAccessory(ctx context.Context, productID, accessoryID int64) (*domain.Accessory, error) {
	args := m.Called(ctx, productID, accessoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Accessory), args.Error(1)
}

func (m *MockCatalog) GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductImage), args.Error(1)
}

func (m *MockCatalog) GetProductDocument(ctx context.Context, id int64) (*domain.ProductDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductDocument), args.Error(1)
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T, d event.Dispatcher, c Catalog) *httptest.Server {
	t.Helper()
	handler := NewHTTPHandler(d, c, Defaults{Locale: "en_US", CurrencyID: 1})
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func ptrTo[T any](v T) *T {
	return &v
}

func doJSON(t *testing.T, method, url string, payload interface{}) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeError(t *testing.T, res *http.Response) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body.Error
}

func TestHTTPHandler_CreateProduct_Success(t *testing.T) {
	dispatcher := new(MockDispatcher)
	server := setupTestChiServer(t, dispatcher, new(MockCatalog))

	input := ProductCreateInput{
		Ref:             "REF-1",
		Title:           "Chair",
		Visible:         true,
		DefaultCategory: 3,
		BasePrice:       decimal.RequireFromString("19.99"),
		BaseWeight:      decimal.RequireFromString("2.5"),
	}

	dispatcher.On("Dispatch", mock.Anything, event.ProductCreate, mock.MatchedBy(func(ev *event.ProductCreateEvent) bool {
		return ev.Ref == "REF-1" && ev.Locale == "en_US" && ev.CurrencyID == 1 && ev.BasePrice.Equal(input.BasePrice)
	})).Run(func(args mock.Arguments) {
		ev := args.Get(2).(*event.ProductCreateEvent)
		ev.Product = &domain.Product{ID: 42, Ref: ev.Ref, Visible: ev.Visible, TaxRuleID: 1, DefaultCategoryID: ev.DefaultCategory}
	}).Return(nil).Once()

	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/products", input)

	require.Equal(t, http.StatusCreated, res.StatusCode)
	var product domain.Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&product))
	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, int64(3), product.DefaultCategoryID)
	dispatcher.AssertExpectations(t)
}

func TestHTTPHandler_CreateProduct_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
	}{
		{name: "missing ref", payload: map[string]interface{}{"title": "Chair", "default_category_id": 3}},
		{name: "missing category", payload: map[string]interface{}{"ref": "REF-1", "title": "Chair"}},
		{name: "negative price", payload: map[string]interface{}{"ref": "REF-1", "title": "Chair", "default_category_id": 3, "base_price": "-1"}},
		{name: "malformed json", payload: "not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := new(MockDispatcher)
			server := setupTestChiServer(t, dispatcher, new(MockCatalog))

			res := doJSON(t, http.MethodPost, server.URL+"/api/v1/products", tt.payload)

			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHTTPHandler_CreateProduct_RefConflict(t *testing.T) {
	dispatcher := new(MockDispatcher)
	server := setupTestChiServer(t, dispatcher, new(MockCatalog))

	dispatcher.On("Dispatch", mock.Anything, event.ProductCreate, mock.Anything).
		Return(fmt.Errorf("event: %s listener failed: %w", event.ProductCreate, store.ErrProductRefExists)).Once()

	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/products", map[string]interface{}{
		"ref": "REF-1", "title": "Chair", "default_category_id": 3,
	})

	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, store.ErrProductRefExists.Error(), decodeError(t, res))
}

func TestHTTPHandler_GetProductByID(t *testing.T) {
	catalog := new(MockCatalog)
	server := setupTestChiServer(t, new(MockDispatcher), catalog)

	catalog.On("GetProductByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1, Ref: "REF-1"}, nil).Once()
	catalog.On("GetProductByID", mock.Anything, int64(2)).Return(nil, store.ErrProductNotFound).Once()

	res := doJSON(t, http.MethodGet, server.URL+"/api/v1/products/1", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var product domain.Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&product))
	assert.Equal(t, "REF-1", product.Ref)

	res = doJSON(t, http.MethodGet, server.URL+"/api/v1/products/2", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res = doJSON(t, http.MethodGet, server.URL+"/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	catalog.AssertExpectations(t)
}

func TestHTTPHandler_UpdateProduct_UnknownProduct(t *testing.T) {
	dispatcher := new(MockDispatcher)
	server := setupTestChiServer(t, dispatcher, new(MockCatalog))

	// The listener ignores unknown products and leaves the event empty.
	dispatcher.On("Dispatch", mock.Anything, event.ProductUpdate, mock.Anything).Return(nil).Once()

	res := doJSON(t, http.MethodPut, server.URL+"/api/v1/products/9", map[string]interface{}{
		"ref": "REF-9", "title": "Chair", "default_category_id": 3,
	})

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestHTTPHandler_CloneProduct(t *testing.T) {
	dispatcher := new(MockDispatcher)
	catalog := new(MockCatalog)
	server := setupTestChiServer(t, dispatcher, catalog)

	original := &domain.Product{ID: 1, Ref: "REF-1", Visible: true}
	catalog.On("GetProductByID", mock.Anything, int64(1)).Return(original, nil)

	dispatcher.On("Dispatch", mock.Anything, event.ProductClone, mock.MatchedBy(func(ev *event.ProductCloneEvent) bool {
		return ev.OriginalProduct == original && ev.Ref == "REF-2" && ev.Lang == "fr_FR"
	})).Run(func(args mock.Arguments) {
		ev := args.Get(2).(*event.ProductCloneEvent)
		ev.ClonedProduct = &domain.Product{ID: 2, Ref: ev.Ref}
	}).Return(nil).Once()

	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/products/1/clone", ProductCloneInput{Ref: "REF-2", Lang: "fr_FR"})

	require.Equal(t, http.StatusCreated, res.StatusCode)
	var clone domain.Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&clone))
	assert.Equal(t, int64(2), clone.ID)
	assert.False(t, clone.Visible)
	dispatcher.AssertExpectations(t)
}

func TestHTTPHandler_CloneProduct_UndefinedFeatureValue(t *testing.T) {
	dispatcher := new(MockDispatcher)
	catalog := new(MockCatalog)
	server := setupTestChiServer(t, dispatcher, catalog)

	catalog.On("GetProductByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1}, nil)
	dispatcher.On("Dispatch", mock.Anything, event.ProductClone, mock.Anything).
		Return(fmt.Errorf("product: cannot clone feature 3 of product 1: %w", domain.ErrFeatureValueUndefined)).Once()

	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/products/1/clone", ProductCloneInput{Ref: "REF-2"})

	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestHTTPHandler_UpdateProductPosition(t *testing.T) {
	tests := []struct {
		name       string
		payload    PositionInput
		dispatched bool
		wantStatus int
	}{
		{name: "up", payload: PositionInput{Mode: "up"}, dispatched: true, wantStatus: http.StatusNoContent},
		{name: "absolute", payload: PositionInput{Mode: "absolute", Position: 3}, dispatched: true, wantStatus: http.StatusNoContent},
		{name: "unknown mode", payload: PositionInput{Mode: "sideways"}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := new(MockDispatcher)
			server := setupTestChiServer(t, dispatcher, new(MockCatalog))
			if tt.dispatched {
				dispatcher.On("Dispatch", mock.Anything, event.ProductUpdatePosition, &event.UpdatePositionEvent{
					ObjectID: 5, Mode: tt.payload.Mode, Position: tt.payload.Position,
				}).Return(nil).Once()
			}

			res := doJSON(t, http.MethodPut, server.URL+"/api/v1/products/5/position", tt.payload)

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			dispatcher.AssertExpectations(t)
		})
	}
}

func TestHTTPHandler_UpdateProductContentPosition_ResolvesAssociation(t *testing.T) {
	dispatcher := new(MockDispatcher)
	catalog := new(MockCatalog)
	server := setupTestChiServer(t, dispatcher, catalog)

	catalog.On("FindAssociatedContent", mock.Anything, int64(1), int64(50)).
		Return(&domain.ProductAssociatedContent{ID: 900, ProductID: 1, ContentID: 50}, nil).Once()
	catalog.On("FindAssociatedContent", mock.Anything, int64(1), int64(51)).
		Return(nil, store.ErrContentNotFound).Once()
	dispatcher.On("Dispatch", mock.Anything, event.ProductUpdateContentPosition, &event.UpdatePositionEvent{
		ObjectID: 900, Mode: "down",
	}).Return(nil).Once()

	res := doJSON(t, http.MethodPut, server.URL+"/api/v1/products/1/contents/50/position", PositionInput{Mode: "down"})
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res = doJSON(t, http.MethodPut, server.URL+"/api/v1/products/1/contents/51/position", PositionInput{Mode: "down"})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	dispatcher.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestHTTPHandler_AddProductAccessory(t *testing.T) {
	dispatcher := new(MockDispatcher)
	catalog := new(MockCatalog)
	server := setupTestChiServer(t, dispatcher, catalog)

	product := &domain.Product{ID: 1}
	catalog.On("GetProductByID", mock.Anything, int64(1)).Return(product, nil).Once()
	dispatcher.On("Dispatch", mock.Anything, event.ProductAddAccessory, &event.ProductAddAccessoryEvent{
		Product: product, AccessoryID: 7,
	}).Return(nil).Once()

	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/products/1/accessories/7", nil)

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	dispatcher.AssertExpectations(t)
}

func TestHTTPHandler_UpdateProductFeatureValue(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]interface{}
		dispatched bool
		wantStatus int
	}{
		{
			name:       "enumerated value",
			payload:    map[string]interface{}{"feature_av_id": 10},
			dispatched: true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "free text",
			payload:    map[string]interface{}{"is_text_value": true, "free_text": "Oak", "locale": "en_US"},
			dispatched: true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "free text without text",
			payload:    map[string]interface{}{"is_text_value": true},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "enumerated without value",
			payload:    map[string]interface{}{},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := new(MockDispatcher)
			catalog := new(MockCatalog)
			server := setupTestChiServer(t, dispatcher, catalog)

			catalog.On("GetProductByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1}, nil)
			if tt.dispatched {
				dispatcher.On("Dispatch", mock.Anything, event.ProductFeatureUpdateValue, mock.MatchedBy(func(ev *event.FeatureProductUpdateEvent) bool {
					return ev.ProductID == 1 && ev.FeatureID == 4 && ev.Locale == "en_US"
				})).Run(func(args mock.Arguments) {
					ev := args.Get(2).(*event.FeatureProductUpdateEvent)
					fp := &domain.FeatureProduct{ID: 3, ProductID: ev.ProductID, FeatureID: ev.FeatureID}
					if ev.IsTextValue {
						fp.SetFreeText(77)
					} else {
						fp.SetEnumerated(ev.FeatureAvID)
					}
					ev.FeatureProduct = fp
				}).Return(nil).Once()
			}

			res := doJSON(t, http.MethodPut, server.URL+"/api/v1/products/1/features/4", tt.payload)

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			if tt.wantStatus == http.StatusOK {
				var fp domain.FeatureProduct
				require.NoError(t, json.NewDecoder(res.Body).Decode(&fp))
				assert.NoError(t, fp.Validate())
			}
			dispatcher.AssertExpectations(t)
		})
	}
}

func TestHTTPHandler_DeleteImage(t *testing.T) {
	dispatcher := new(MockDispatcher)
	catalog := new(MockCatalog)
	server := setupTestChiServer(t, dispatcher, catalog)

	img := &domain.ProductImage{ID: 12, ProductID: 1, File: "chair.jpg"}
	catalog.On("GetProductImage", mock.Anything, int64(12)).Return(img, nil).Once()
	catalog.On("GetProductImage", mock.Anything, int64(13)).Return(nil, store.ErrImageNotFound).Once()
	dispatcher.On("Dispatch", mock.Anything, event.ImageDelete, &event.FileDeleteEvent{FileToDelete: img}).Return(nil).Once()

	res := doJSON(t, http.MethodDelete, server.URL+"/api/v1/images/12", nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res = doJSON(t, http.MethodDelete, server.URL+"/api/v1/images/13", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	dispatcher.AssertExpectations(t)
}

func TestHTTPHandler_DispatchFailure(t *testing.T) {
	dispatcher := new(MockDispatcher)
	catalog := new(MockCatalog)
	server := setupTestChiServer(t, dispatcher, catalog)

	catalog.On("GetProductByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1}, nil)
	dispatcher.On("Dispatch", mock.Anything, event.ProductToggleVisibility, mock.Anything).Return(assert.AnError).Once()

	res := doJSON(t, http.MethodPost, server.URL+"/api/v1/products/1/toggle-visibility", nil)

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "Failed to toggle product visibility", decodeError(t, res))
}
