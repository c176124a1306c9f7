package event

import (
	"github.com/shopspring/decimal"

	"product-lifecycle-service/internal/domain"
)

// Event names
const (
	ProductCreate           = "action.createProduct"
	ProductClone            = "action.cloneProduct"
	ProductUpdate           = "action.updateProduct"
	ProductDelete           = "action.deleteProduct"
	ProductToggleVisibility = "action.toggleProductVisibility"
	ProductUpdatePosition   = "action.updateProductPosition"
	ProductUpdateSeo        = "action.updateProductSeo"

	ProductAddContent            = "action.productAddContent"
	ProductRemoveContent         = "action.productRemoveContent"
	ProductUpdateContentPosition = "action.updateProductContentPosition"

	ProductAddAccessory            = "action.productAddAccessory"
	ProductRemoveAccessory         = "action.productRemoveAccessory"
	ProductUpdateAccessoryPosition = "action.updateProductAccessoryPosition"

	ProductAddCategory    = "action.productAddCategory"
	ProductRemoveCategory = "action.productRemoveCategory"

	ProductSetTemplate = "action.productSetTemplate"

	ProductFeatureUpdateValue = "action.updateProductFeatureValue"
	ProductFeatureDeleteValue = "action.deleteProductFeatureValue"

	FeatureAvCreate = "action.createFeatureAv"

	FileClone         = "action.cloneFile"
	SaleElementsClone = "action.clonePSE"

	ImageDelete    = "action.deleteImage"
	DocumentDelete = "action.deleteDocument"
)

// Cascaded lists the events listeners dispatch themselves while handling
// another one.
var Cascaded = []string{
	ProductCreate,
	ProductUpdate,
	ProductUpdateSeo,
	ProductAddContent,
	ProductSetTemplate,
	ProductFeatureUpdateValue,
	ProductFeatureDeleteValue,
	FeatureAvCreate,
	FileClone,
	SaleElementsClone,
}

type ProductCreateEvent struct {
	Propagation

	Ref             string
	Locale          string
	Title           string
	Visible         bool
	Virtual         bool
	DefaultCategory int64
	BasePrice       decimal.Decimal
	CurrencyID      int64
	TaxRuleID       int64 // <= 0 applies the default tax rule
	BaseWeight      decimal.Decimal

	Product *domain.Product
}

type ProductUpdateEvent struct {
	Propagation

	ProductID       int64
	Ref             string
	Locale          string
	Title           string
	Description     *string
	Chapo           *string
	Postscriptum    *string
	Visible         bool
	Virtual         bool
	BrandID         int64 // <= 0 clears the brand
	DefaultCategory int64

	// Carried for listeners that also maintain prices; the lifecycle handler ignores them.
	BasePrice  decimal.Decimal
	CurrencyID int64
	TaxRuleID  int64
	BaseWeight decimal.Decimal

	Product *domain.Product
}

// UpdateSeoEvent updates the SEO fields of a product translation. A nil or
// empty URL regenerates the slug from the title.
type UpdateSeoEvent struct {
	Propagation

	ObjectID        int64
	Locale          string
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
	URL             *string

	Product *domain.Product
}

type ProductDeleteEvent struct {
	Propagation

	ProductID int64
	Product   *domain.Product
}

type ProductToggleVisibilityEvent struct {
	Propagation

	Product *domain.Product
}

// Position modes
const (
	PositionAbsolute = "absolute"
	PositionUp       = "up"
	PositionDown     = "down"
)

type UpdatePositionEvent struct {
	Propagation

	ObjectID int64
	Mode     string
	Position int // Used by PositionAbsolute only
}

type ProductCloneEvent struct {
	Propagation

	Ref             string
	Lang            string
	OriginalProduct *domain.Product

	ClonedProduct *domain.Product
}

type ProductAddContentEvent struct {
	Propagation

	Product   *domain.Product
	ContentID int64
}

type ProductDeleteContentEvent struct {
	Propagation

	Product   *domain.Product
	ContentID int64
}

type ProductAddAccessoryEvent struct {
	Propagation

	Product     *domain.Product
	AccessoryID int64
}

type ProductDeleteAccessoryEvent struct {
	Propagation

	Product     *domain.Product
	AccessoryID int64
}

type ProductAddCategoryEvent struct {
	Propagation

	Product    *domain.Product
	CategoryID int64
}

type ProductDeleteCategoryEvent struct {
	Propagation

	Product    *domain.Product
	CategoryID int64
}

type ProductSetTemplateEvent struct {
	Propagation

	Product    *domain.Product
	TemplateID int64 // <= 0 removes the template
	CurrencyID int64 // Currency of the default PSE created when none remains
}

// FeatureProductUpdateEvent sets the value of a feature for a product. When
// IsTextValue is set, FreeText is stored for Locale; otherwise FeatureAvID is
// the enumerated value.
type FeatureProductUpdateEvent struct {
	Propagation

	ProductID   int64
	FeatureID   int64
	FeatureAvID int64
	FreeText    string
	IsTextValue bool
	Locale      string

	FeatureProduct *domain.FeatureProduct
}

type FeatureProductDeleteEvent struct {
	Propagation

	ProductID int64
	FeatureID int64
}

type FeatureAvCreateEvent struct {
	Propagation

	FeatureID int64
	Locale    string
	Title     string

	FeatureAv *domain.FeatureAv
}

// FileDeleteEvent is dispatched when a file is removed. FileToDelete holds the
// deleted model, e.g. *domain.ProductImage or *domain.ProductDocument.
type FileDeleteEvent struct {
	Propagation

	FileToDelete any
}
