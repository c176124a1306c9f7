package store

import (
	"context"

	"product-lifecycle-service/internal/domain"
)

// ProductStorer defines the database operations for products and their translations.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product, i18n *domain.ProductI18n) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	UpdateProductPosition(ctx context.Context, id int64, mode string, position int) error

	GetProductI18n(ctx context.Context, productID int64, locale string) (*domain.ProductI18n, error)
	ListProductI18ns(ctx context.Context, productID int64) ([]domain.ProductI18n, error)
	SaveProductI18n(ctx context.Context, i18n *domain.ProductI18n) error
	ProductURLExists(ctx context.Context, locale, url string, exceptProductID int64) (bool, error)
}

// CategoryStorer defines the category operations used by the product lifecycle.
type CategoryStorer interface {
	GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	FindProductCategory(ctx context.Context, productID, categoryID int64) (*domain.ProductCategory, error)
	AddProductCategory(ctx context.Context, pc *domain.ProductCategory) error
	DeleteProductCategory(ctx context.Context, productID, categoryID int64) error
	SetDefaultCategory(ctx context.Context, productID, categoryID int64) error
}

// AssociationStorer defines the operations on associated contents and accessories.
type AssociationStorer interface {
	FindAssociatedContent(ctx context.Context, productID, contentID int64) (*domain.ProductAssociatedContent, error)
	ListAssociatedContents(ctx context.Context, productID int64) ([]domain.ProductAssociatedContent, error)
	AddAssociatedContent(ctx context.Context, content *domain.ProductAssociatedContent) error
	DeleteAssociatedContent(ctx context.Context, id int64) error
	UpdateAssociatedContentPosition(ctx context.Context, id int64, mode string, position int) error

	FindAccessory(ctx context.Context, productID, accessoryID int64) (*domain.Accessory, error)
	AddAccessory(ctx context.Context, accessory *domain.Accessory) error
	DeleteAccessory(ctx context.Context, id int64) error
	UpdateAccessoryPosition(ctx context.Context, id int64, mode string, position int) error
}

// FeatureStorer defines the feature value operations.
type FeatureStorer interface {
	ListFeatureProducts(ctx context.Context, productID int64) ([]domain.FeatureProduct, error)
	// FindFeatureProduct looks a row up by product and feature, and by
	// enumerated value when featureAvID is not nil.
	FindFeatureProduct(ctx context.Context, productID, featureID int64, featureAvID *int64) (*domain.FeatureProduct, error)
	SaveFeatureProduct(ctx context.Context, fp *domain.FeatureProduct) error
	DeleteFeatureProducts(ctx context.Context, productID, featureID int64) error

	CreateFeatureAv(ctx context.Context, av *domain.FeatureAv) error
	GetFeatureAvI18n(ctx context.Context, featureAvID int64, locale string) (*domain.FeatureAvI18n, error)
	ListFeatureAvI18ns(ctx context.Context, featureAvID int64) ([]domain.FeatureAvI18n, error)
	SaveFeatureAvI18n(ctx context.Context, i18n *domain.FeatureAvI18n) error
}

// SaleElementsStorer defines the operations on product sale elements and prices.
type SaleElementsStorer interface {
	GetDefaultSaleElements(ctx context.Context, productID int64) (*domain.ProductSaleElements, error)
	ListSaleElements(ctx context.Context, productID int64) ([]domain.ProductSaleElements, error)
	CreateSaleElements(ctx context.Context, pse *domain.ProductSaleElements, prices []domain.ProductPrice) error
	UpdateSaleElements(ctx context.Context, pse *domain.ProductSaleElements) error
	DeleteNonDefaultSaleElements(ctx context.Context, productID int64) error

	GetProductPrice(ctx context.Context, pseID int64) (*domain.ProductPrice, error)
	ListProductPrices(ctx context.Context, pseID int64) ([]domain.ProductPrice, error)
	SaveProductPrice(ctx context.Context, price *domain.ProductPrice) error

	ListAttributeCombinations(ctx context.Context, pseID int64) ([]domain.AttributeCombination, error)
	AddAttributeCombination(ctx context.Context, ac *domain.AttributeCombination) error
	DeleteAttributeCombinations(ctx context.Context, productID int64) error
}

// TaxRuleStorer resolves tax rules.
type TaxRuleStorer interface {
	GetDefaultTaxRule(ctx context.Context) (*domain.TaxRule, error)
}

// FileStorer defines the operations on product images and documents.
type FileStorer interface {
	GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error)
	ListProductImages(ctx context.Context, productID int64) ([]domain.ProductImage, error)
	CreateProductImage(ctx context.Context, img *domain.ProductImage) error
	DeleteProductImage(ctx context.Context, id int64) error
	DeleteImageSaleElementsAssociations(ctx context.Context, imageID int64) error

	GetProductDocument(ctx context.Context, id int64) (*domain.ProductDocument, error)
	ListProductDocuments(ctx context.Context, productID int64) ([]domain.ProductDocument, error)
	CreateProductDocument(ctx context.Context, doc *domain.ProductDocument) error
	DeleteProductDocument(ctx context.Context, id int64) error
	DeleteDocumentSaleElementsAssociations(ctx context.Context, documentID int64) error
}
