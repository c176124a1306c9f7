package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"product-lifecycle-service/internal/event"
)

// --- Product Handlers ---

// ProductCreateInput defines the expected input for creating a product.
type ProductCreateInput struct {
	Ref             string          `json:"ref" validate:"required,max=255"`
	Locale          string          `json:"locale" validate:"omitempty,max=10"`
	Title           string          `json:"title" validate:"required,max=255"`
	Visible         bool            `json:"visible"`
	Virtual         bool            `json:"virtual"`
	DefaultCategory int64           `json:"default_category_id" validate:"required,gt=0"`
	BasePrice       decimal.Decimal `json:"base_price"`
	CurrencyID      int64           `json:"currency_id" validate:"omitempty,gt=0"`
	TaxRuleID       int64           `json:"tax_rule_id" validate:"omitempty,gt=0"`
	BaseWeight      decimal.Decimal `json:"base_weight"`
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductCreateInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}
	if input.BasePrice.IsNegative() || input.BaseWeight.IsNegative() {
		respondWithError(w, http.StatusBadRequest, "Validation failed: base price and weight must not be negative")
		return
	}

	ev := &event.ProductCreateEvent{
		Ref:             input.Ref,
		Locale:          h.locale(input.Locale),
		Title:           input.Title,
		Visible:         input.Visible,
		Virtual:         input.Virtual,
		DefaultCategory: input.DefaultCategory,
		BasePrice:       input.BasePrice,
		CurrencyID:      h.currency(input.CurrencyID),
		TaxRuleID:       input.TaxRuleID,
		BaseWeight:      input.BaseWeight,
	}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductCreate, ev); err != nil {
		respondWithStoreError(w, "create product", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ev.Product)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// ProductUpdateInput defines the expected input for updating a product.
type ProductUpdateInput struct {
	Ref             string          `json:"ref" validate:"required,max=255"`
	Locale          string          `json:"locale" validate:"omitempty,max=10"`
	Title           string          `json:"title" validate:"required,max=255"`
	Description     *string         `json:"description"`
	Chapo           *string         `json:"chapo"`
	Postscriptum    *string         `json:"postscriptum"`
	Visible         bool            `json:"visible"`
	Virtual         bool            `json:"virtual"`
	BrandID         int64           `json:"brand_id" validate:"gte=0"`
	DefaultCategory int64           `json:"default_category_id" validate:"required,gt=0"`
	BasePrice       decimal.Decimal `json:"base_price"`
	CurrencyID      int64           `json:"currency_id" validate:"omitempty,gt=0"`
	TaxRuleID       int64           `json:"tax_rule_id" validate:"omitempty,gt=0"`
	BaseWeight      decimal.Decimal `json:"base_weight"`
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var input ProductUpdateInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}

	ev := &event.ProductUpdateEvent{
		ProductID:       productID,
		Ref:             input.Ref,
		Locale:          h.locale(input.Locale),
		Title:           input.Title,
		Description:     input.Description,
		Chapo:           input.Chapo,
		Postscriptum:    input.Postscriptum,
		Visible:         input.Visible,
		Virtual:         input.Virtual,
		BrandID:         input.BrandID,
		DefaultCategory: input.DefaultCategory,
		BasePrice:       input.BasePrice,
		CurrencyID:      h.currency(input.CurrencyID),
		TaxRuleID:       input.TaxRuleID,
		BaseWeight:      input.BaseWeight,
	}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductUpdate, ev); err != nil {
		respondWithStoreError(w, "update product", err)
		return
	}
	if ev.Product == nil {
		respondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	respondWithJSON(w, http.StatusOK, ev.Product)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}

	ev := &event.ProductDeleteEvent{ProductID: productID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductDelete, ev); err != nil {
		respondWithStoreError(w, "delete product", err)
		return
	}
	if ev.Product == nil {
		respondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

// ProductCloneInput defines the expected input for cloning a product.
type ProductCloneInput struct {
	Ref  string `json:"ref" validate:"required,max=255"`
	Lang string `json:"lang" validate:"omitempty,max=10"`
}

func (h *HTTPHandler) CloneProduct(w http.ResponseWriter, r *http.Request) {
	original, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	var input ProductCloneInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}

	ev := &event.ProductCloneEvent{
		Ref:             input.Ref,
		Lang:            h.locale(input.Lang),
		OriginalProduct: original,
	}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductClone, ev); err != nil {
		respondWithStoreError(w, "clone product", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ev.ClonedProduct)
}

func (h *HTTPHandler) ToggleProductVisibility(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	ev := &event.ProductToggleVisibilityEvent{Product: product}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductToggleVisibility, ev); err != nil {
		respondWithStoreError(w, "toggle product visibility", err)
		return
	}

	respondWithJSON(w, http.StatusOK, ev.Product)
}

// PositionInput defines the expected input of the position endpoints.
type PositionInput struct {
	Mode     string `json:"mode" validate:"required,oneof=absolute up down"`
	Position int    `json:"position" validate:"gte=0"`
}

func (h *HTTPHandler) UpdateProductPosition(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var input PositionInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}

	ev := &event.UpdatePositionEvent{ObjectID: productID, Mode: input.Mode, Position: input.Position}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductUpdatePosition, ev); err != nil {
		respondWithStoreError(w, "update product position", err)
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}

// ProductSeoInput defines the expected input for updating SEO fields.
type ProductSeoInput struct {
	Locale          string  `json:"locale" validate:"omitempty,max=10"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	MetaKeywords    *string `json:"meta_keywords"`
	URL             *string `json:"url" validate:"omitempty,max=255"`
}

func (h *HTTPHandler) UpdateProductSeo(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var input ProductSeoInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}

	ev := &event.UpdateSeoEvent{
		ObjectID:        productID,
		Locale:          h.locale(input.Locale),
		MetaTitle:       input.MetaTitle,
		MetaDescription: input.MetaDescription,
		MetaKeywords:    input.MetaKeywords,
		URL:             input.URL,
	}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductUpdateSeo, ev); err != nil {
		respondWithStoreError(w, "update product seo", err)
		return
	}
	if ev.Product == nil {
		respondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	respondWithJSON(w, http.StatusOK, ev.Product)
}

// ProductTemplateInput defines the expected input for setting a template.
// A zero template id removes the template.
type ProductTemplateInput struct {
	TemplateID int64 `json:"template_id" validate:"gte=0"`
	CurrencyID int64 `json:"currency_id" validate:"omitempty,gt=0"`
}

func (h *HTTPHandler) SetProductTemplate(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	var input ProductTemplateInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}

	ev := &event.ProductSetTemplateEvent{
		Product:    product,
		TemplateID: input.TemplateID,
		CurrencyID: h.currency(input.CurrencyID),
	}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductSetTemplate, ev); err != nil {
		respondWithStoreError(w, "set product template", err)
		return
	}

	respondWithJSON(w, http.StatusOK, ev.Product)
}
