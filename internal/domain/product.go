package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog product. Translated fields live in ProductI18n.
type Product struct {
	ID         int64     `json:"id"`
	Ref        string    `json:"ref"`
	Visible    bool      `json:"visible"`
	Virtual    bool      `json:"virtual"`
	BrandID    *int64    `json:"brand_id,omitempty"`    // Nullable
	TaxRuleID  int64     `json:"tax_rule_id"`
	TemplateID *int64    `json:"template_id,omitempty"` // Nullable, no template when nil
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	DefaultCategoryID int64 `json:"default_category_id"`

	// Cached sale elements, dropped when the template changes.
	SaleElements []ProductSaleElements `json:"-"`
}

// ProductI18n holds the locale specific fields of a product.
type ProductI18n struct {
	ProductID       int64   `json:"product_id"`
	Locale          string  `json:"locale"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	Chapo           *string `json:"chapo,omitempty"`
	Postscriptum    *string `json:"postscriptum,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	MetaKeywords    *string `json:"meta_keywords,omitempty"`
	URL             *string `json:"url,omitempty"` // Rewritten URL slug, regenerated when nil
}

// ProductSaleElements (PSE) is a priced and weighted variant of a product.
type ProductSaleElements struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Ref       string          `json:"ref"`
	Quantity  decimal.Decimal `json:"quantity"`
	Promo     bool            `json:"promo"`
	Newness   bool            `json:"newness"`
	Weight    decimal.Decimal `json:"weight"`
	IsDefault bool            `json:"is_default"`
	EanCode   *string         `json:"ean_code,omitempty"`
}

// ProductPrice is the price of a sale element in one currency.
type ProductPrice struct {
	ProductSaleElementsID int64           `json:"product_sale_elements_id"`
	CurrencyID            int64           `json:"currency_id"`
	Price                 decimal.Decimal `json:"price"`
	PromoPrice            decimal.Decimal `json:"promo_price"`
}

// AttributeCombination links a sale element to an attribute value.
type AttributeCombination struct {
	AttributeID           int64 `json:"attribute_id"`
	AttributeAvID         int64 `json:"attribute_av_id"`
	ProductSaleElementsID int64 `json:"product_sale_elements_id"`
}

// Category is the subset of a catalog category the product lifecycle needs.
// Parent is 0 for root categories.
type Category struct {
	ID                int64  `json:"id"`
	Parent            int64  `json:"parent"`
	DefaultTemplateID *int64 `json:"default_template_id,omitempty"`
}

// ProductCategory is the product/category join row.
type ProductCategory struct {
	ProductID       int64 `json:"product_id"`
	CategoryID      int64 `json:"category_id"`
	DefaultCategory bool  `json:"default_category"`
	Position        int   `json:"position"`
}

// ProductAssociatedContent links a product to a content page.
type ProductAssociatedContent struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	ContentID int64 `json:"content_id"`
	Position  int   `json:"position"`
}

// Accessory links a product to another product sold alongside it.
type Accessory struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Accessory int64 `json:"accessory"` // The accessory product id
	Position  int   `json:"position"`
}

// TaxRule is a tax rule reference; exactly one rule is the system default.
type TaxRule struct {
	ID        int64 `json:"id"`
	IsDefault bool  `json:"is_default"`
}

// ProductImage is an image attached to a product. File is the stored file name.
type ProductImage struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	File      string `json:"file"`
	Visible   bool   `json:"visible"`
	Position  int    `json:"position"`
}

// ProductDocument is a document attached to a product.
type ProductDocument struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	File      string `json:"file"`
	Visible   bool   `json:"visible"`
	Position  int    `json:"position"`
}
