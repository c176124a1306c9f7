package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

// Catalog is the read side the HTTP handlers need to resolve path ids
// into the models carried by the events.
type Catalog interface {
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	FindAssociatedContent(ctx context.Context, productID, contentID int64) (*domain.ProductAssociatedContent, error)
	FindAccessory(ctx context.Context, productID, accessoryID int64) (*domain.Accessory, error)
	GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error)
	GetProductDocument(ctx context.Context, id int64) (*domain.ProductDocument, error)
}

// Defaults fill in the locale and currency a request may omit.
type Defaults struct {
	Locale     string
	CurrencyID int64
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	dispatcher event.Dispatcher
	catalog    Catalog
	defaults   Defaults
	validate   *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(d event.Dispatcher, c Catalog, defaults Defaults) *HTTPHandler {
	return &HTTPHandler{
		dispatcher: d,
		catalog:    c,
		defaults:   defaults,
		validate:   validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

var notFoundErrors = []error{
	store.ErrProductNotFound,
	store.ErrProductI18nNotFound,
	store.ErrCategoryNotFound,
	store.ErrContentNotFound,
	store.ErrAccessoryNotFound,
	store.ErrSaleElementsNotFound,
	store.ErrPriceNotFound,
	store.ErrImageNotFound,
	store.ErrDocumentNotFound,
}

// respondWithStoreError maps a dispatch or store error to a status code.
func respondWithStoreError(w http.ResponseWriter, op string, err error) {
	log.Printf("ERROR: %s failed: %v", op, err)

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			respondWithError(w, http.StatusNotFound, target.Error())
			return
		}
	}

	switch {
	case errors.Is(err, store.ErrProductRefExists):
		respondWithError(w, http.StatusConflict, store.ErrProductRefExists.Error())
	case errors.Is(err, store.ErrInvalidPositionMode):
		respondWithError(w, http.StatusBadRequest, store.ErrInvalidPositionMode.Error())
	case errors.Is(err, domain.ErrFeatureValueUndefined), errors.Is(err, domain.ErrFeatureValueAmbiguous):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, input interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := v.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return id, true
}

// loadProduct resolves the productId URL parameter.
func (h *HTTPHandler) loadProduct(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return nil, false
	}
	product, err := h.catalog.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithStoreError(w, "load product", err)
		return nil, false
	}
	return product, true
}

func (h *HTTPHandler) locale(requested string) string {
	if requested != "" {
		return requested
	}
	return h.defaults.Locale
}

func (h *HTTPHandler) currency(requested int64) int64 {
	if requested > 0 {
		return requested
	}
	return h.defaults.CurrencyID
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/", h.CreateProduct) // POST /api/v1/products

		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", h.GetProductByID)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)

			r.Post("/clone", h.CloneProduct)
			r.Post("/toggle-visibility", h.ToggleProductVisibility)
			r.Put("/position", h.UpdateProductPosition)
			r.Put("/seo", h.UpdateProductSeo)
			r.Put("/template", h.SetProductTemplate)

			r.Post("/categories/{categoryId}", h.AddProductCategory)
			r.Delete("/categories/{categoryId}", h.RemoveProductCategory)

			r.Post("/contents/{contentId}", h.AddProductContent)
			r.Delete("/contents/{contentId}", h.RemoveProductContent)
			r.Put("/contents/{contentId}/position", h.UpdateProductContentPosition)

			r.Post("/accessories/{accessoryId}", h.AddProductAccessory)
			r.Delete("/accessories/{accessoryId}", h.RemoveProductAccessory)
			r.Put("/accessories/{accessoryId}/position", h.UpdateProductAccessoryPosition)

			r.Put("/features/{featureId}", h.UpdateProductFeatureValue)
			r.Delete("/features/{featureId}", h.DeleteProductFeatureValue)
		})
	})

	r.Delete("/api/v1/images/{imageId}", h.DeleteImage)
	r.Delete("/api/v1/documents/{documentId}", h.DeleteDocument)
}
