package api

import (
	"net/http"

	"product-lifecycle-service/internal/event"
)

// --- Association Handlers ---

func (h *HTTPHandler) AddProductCategory(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}

	ev := &event.ProductAddCategoryEvent{Product: product, CategoryID: categoryID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductAddCategory, ev); err != nil {
		respondWithStoreError(w, "add product category", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) RemoveProductCategory(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}

	ev := &event.ProductDeleteCategoryEvent{Product: product, CategoryID: categoryID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductRemoveCategory, ev); err != nil {
		respondWithStoreError(w, "remove product category", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) AddProductContent(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	contentID, ok := pathID(w, r, "contentId")
	if !ok {
		return
	}

	ev := &event.ProductAddContentEvent{Product: product, ContentID: contentID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductAddContent, ev); err != nil {
		respondWithStoreError(w, "add product content", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) RemoveProductContent(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	contentID, ok := pathID(w, r, "contentId")
	if !ok {
		return
	}

	ev := &event.ProductDeleteContentEvent{Product: product, ContentID: contentID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductRemoveContent, ev); err != nil {
		respondWithStoreError(w, "remove product content", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) UpdateProductContentPosition(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	contentID, ok := pathID(w, r, "contentId")
	if !ok {
		return
	}
	var input PositionInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}

	content, err := h.catalog.FindAssociatedContent(r.Context(), productID, contentID)
	if err != nil {
		respondWithStoreError(w, "load product content", err)
		return
	}

	ev := &event.UpdatePositionEvent{ObjectID: content.ID, Mode: input.Mode, Position: input.Position}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductUpdateContentPosition, ev); err != nil {
		respondWithStoreError(w, "update product content position", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) AddProductAccessory(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	accessoryID, ok := pathID(w, r, "accessoryId")
	if !ok {
		return
	}

	ev := &event.ProductAddAccessoryEvent{Product: product, AccessoryID: accessoryID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductAddAccessory, ev); err != nil {
		respondWithStoreError(w, "add product accessory", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) RemoveProductAccessory(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	accessoryID, ok := pathID(w, r, "accessoryId")
	if !ok {
		return
	}

	ev := &event.ProductDeleteAccessoryEvent{Product: product, AccessoryID: accessoryID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductRemoveAccessory, ev); err != nil {
		respondWithStoreError(w, "remove product accessory", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) UpdateProductAccessoryPosition(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	accessoryID, ok := pathID(w, r, "accessoryId")
	if !ok {
		return
	}
	var input PositionInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}

	accessory, err := h.catalog.FindAccessory(r.Context(), productID, accessoryID)
	if err != nil {
		respondWithStoreError(w, "load product accessory", err)
		return
	}

	ev := &event.UpdatePositionEvent{ObjectID: accessory.ID, Mode: input.Mode, Position: input.Position}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductUpdateAccessoryPosition, ev); err != nil {
		respondWithStoreError(w, "update product accessory position", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Feature Value Handlers ---

// FeatureValueInput sets either an enumerated value or a free text.
type FeatureValueInput struct {
	FeatureAvID int64  `json:"feature_av_id" validate:"gte=0"`
	FreeText    string `json:"free_text" validate:"required_with=IsTextValue"`
	IsTextValue bool   `json:"is_text_value"`
	Locale      string `json:"locale" validate:"omitempty,max=10"`
}

func (h *HTTPHandler) UpdateProductFeatureValue(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	featureID, ok := pathID(w, r, "featureId")
	if !ok {
		return
	}
	var input FeatureValueInput
	if !decodeAndValidate(w, r, h.validate, &input) {
		return
	}
	if !input.IsTextValue && input.FeatureAvID == 0 {
		respondWithError(w, http.StatusBadRequest, "Validation failed: feature_av_id is required for an enumerated value")
		return
	}

	ev := &event.FeatureProductUpdateEvent{
		ProductID:   product.ID,
		FeatureID:   featureID,
		FeatureAvID: input.FeatureAvID,
		FreeText:    input.FreeText,
		IsTextValue: input.IsTextValue,
		Locale:      h.locale(input.Locale),
	}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductFeatureUpdateValue, ev); err != nil {
		respondWithStoreError(w, "update product feature value", err)
		return
	}
	respondWithJSON(w, http.StatusOK, ev.FeatureProduct)
}

func (h *HTTPHandler) DeleteProductFeatureValue(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	featureID, ok := pathID(w, r, "featureId")
	if !ok {
		return
	}

	ev := &event.FeatureProductDeleteEvent{ProductID: product.ID, FeatureID: featureID}
	if err := h.dispatcher.Dispatch(r.Context(), event.ProductFeatureDeleteValue, ev); err != nil {
		respondWithStoreError(w, "delete product feature value", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- File Handlers ---

func (h *HTTPHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "imageId")
	if !ok {
		return
	}
	img, err := h.catalog.GetProductImage(r.Context(), imageID)
	if err != nil {
		respondWithStoreError(w, "load image", err)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), event.ImageDelete, &event.FileDeleteEvent{FileToDelete: img}); err != nil {
		respondWithStoreError(w, "delete image", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathID(w, r, "documentId")
	if !ok {
		return
	}
	doc, err := h.catalog.GetProductDocument(r.Context(), documentID)
	if err != nil {
		respondWithStoreError(w, "load document", err)
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), event.DocumentDelete, &event.FileDeleteEvent{FileToDelete: doc}); err != nil {
		respondWithStoreError(w, "delete document", err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
