package domain

import "errors"

var (
	ErrFeatureValueUndefined = errors.New("domain: feature value is not defined")
	ErrFeatureValueAmbiguous = errors.New("domain: feature value has both a free text and an enumerated value")
)

// FeatureProduct is the value of a feature for a product. It is either an
// enumerated value (FeatureAvID) or a free text value whose translations are
// held by the FeatureAv referenced by FreeTextAvID. Never both.
type FeatureProduct struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	FeatureID    int64  `json:"feature_id"`
	FeatureAvID  *int64 `json:"feature_av_id,omitempty"`
	FreeTextAvID *int64 `json:"free_text_av_id,omitempty"`
	Position     int    `json:"position"`
}

// IsFreeText reports whether the row carries a free text value.
func (fp *FeatureProduct) IsFreeText() bool {
	return fp.FreeTextAvID != nil && fp.FeatureAvID == nil
}

// Validate checks that exactly one of the two value references is set.
func (fp *FeatureProduct) Validate() error {
	switch {
	case fp.FeatureAvID == nil && fp.FreeTextAvID == nil:
		return ErrFeatureValueUndefined
	case fp.FeatureAvID != nil && fp.FreeTextAvID != nil:
		return ErrFeatureValueAmbiguous
	}
	return nil
}

// SetEnumerated points the row at a shared feature value.
func (fp *FeatureProduct) SetEnumerated(featureAvID int64) {
	fp.FeatureAvID = &featureAvID
	fp.FreeTextAvID = nil
}

// SetFreeText points the row at the feature value holding its free text translations.
func (fp *FeatureProduct) SetFreeText(featureAvID int64) {
	fp.FreeTextAvID = &featureAvID
	fp.FeatureAvID = nil
}

// FeatureAv is a shared, translatable value of a feature.
type FeatureAv struct {
	ID        int64 `json:"id"`
	FeatureID int64 `json:"feature_id"`
	Position  int   `json:"position"`
}

// FeatureAvI18n is the translated title of a feature value.
type FeatureAvI18n struct {
	ID     int64  `json:"id"` // FeatureAv id
	Locale string `json:"locale"`
	Title  string `json:"title"`
}
