package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-lifecycle-service/internal/domain"
)

// --- SaleElementsStorer Implementation ---

const selectSaleElements = `
	SELECT id, product_id, ref, quantity, promo, newness, weight, is_default, ean_code
	FROM catalog.product_sale_elements
`

func scanSaleElements(row interface{ Scan(...interface{}) error }, pse *domain.ProductSaleElements) error {
	return row.Scan(
		&pse.ID, &pse.ProductID, &pse.Ref, &pse.Quantity, &pse.Promo, &pse.Newness,
		&pse.Weight, &pse.IsDefault, &pse.EanCode,
	)
}

func (s *PostgresStore) GetDefaultSaleElements(ctx context.Context, productID int64) (*domain.ProductSaleElements, error) {
	query := selectSaleElements + `WHERE product_id = $1 AND is_default = TRUE LIMIT 1;`
	var pse domain.ProductSaleElements
	if err := scanSaleElements(s.conn(ctx).QueryRowContext(ctx, query, productID), &pse); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaleElementsNotFound
		}
		return nil, fmt.Errorf("store: GetDefaultSaleElements failed to scan row: %w", err)
	}
	return &pse, nil
}

func (s *PostgresStore) ListSaleElements(ctx context.Context, productID int64) ([]domain.ProductSaleElements, error) {
	query := selectSaleElements + `WHERE product_id = $1 ORDER BY id ASC;`
	rows, err := s.conn(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListSaleElements failed to query sale elements: %w", err)
	}
	defer rows.Close()

	var list []domain.ProductSaleElements
	for rows.Next() {
		var pse domain.ProductSaleElements
		if err := scanSaleElements(rows, &pse); err != nil {
			return nil, fmt.Errorf("store: ListSaleElements failed to scan row: %w", err)
		}
		list = append(list, pse)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListSaleElements iteration error: %w", err)
	}
	return list, nil
}

// CreateSaleElements inserts a sale element and its prices.
func (s *PostgresStore) CreateSaleElements(ctx context.Context, pse *domain.ProductSaleElements, prices []domain.ProductPrice) error {
	query := `
		INSERT INTO catalog.product_sale_elements (product_id, ref, quantity, promo, newness, weight, is_default, ean_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`
	err := s.conn(ctx).QueryRowContext(ctx, query,
		pse.ProductID, pse.Ref, pse.Quantity, pse.Promo, pse.Newness, pse.Weight, pse.IsDefault, pse.EanCode,
	).Scan(&pse.ID)
	if err != nil {
		return fmt.Errorf("store: CreateSaleElements failed to scan row: %w", err)
	}

	priceQuery := `
		INSERT INTO catalog.product_price (product_sale_elements_id, currency_id, price, promo_price)
		VALUES ($1, $2, $3, $4);
	`
	for i := range prices {
		prices[i].ProductSaleElementsID = pse.ID
		if _, err := s.conn(ctx).ExecContext(ctx, priceQuery,
			pse.ID, prices[i].CurrencyID, prices[i].Price, prices[i].PromoPrice,
		); err != nil {
			return fmt.Errorf("store: CreateSaleElements failed to insert price: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) UpdateSaleElements(ctx context.Context, pse *domain.ProductSaleElements) error {
	query := `
		UPDATE catalog.product_sale_elements
		SET ref = $1, quantity = $2, promo = $3, newness = $4, weight = $5, is_default = $6, ean_code = $7
		WHERE id = $8;
	`
	result, err := s.conn(ctx).ExecContext(ctx, query,
		pse.Ref, pse.Quantity, pse.Promo, pse.Newness, pse.Weight, pse.IsDefault, pse.EanCode, pse.ID,
	)
	if err != nil {
		return fmt.Errorf("store: UpdateSaleElements failed to execute update: %w", err)
	}
	return expectOneRow(result, ErrSaleElementsNotFound)
}

// DeleteNonDefaultSaleElements keeps only the default sale element of a
// product, with its price, weight and EAN.
func (s *PostgresStore) DeleteNonDefaultSaleElements(ctx context.Context, productID int64) error {
	query := `DELETE FROM catalog.product_sale_elements WHERE product_id = $1 AND is_default <> TRUE;`
	if _, err := s.conn(ctx).ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("store: DeleteNonDefaultSaleElements failed to execute delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProductPrice(ctx context.Context, pseID int64) (*domain.ProductPrice, error) {
	query := `
		SELECT product_sale_elements_id, currency_id, price, promo_price
		FROM catalog.product_price
		WHERE product_sale_elements_id = $1
		ORDER BY currency_id ASC
		LIMIT 1;
	`
	var p domain.ProductPrice
	err := s.conn(ctx).QueryRowContext(ctx, query, pseID).Scan(&p.ProductSaleElementsID, &p.CurrencyID, &p.Price, &p.PromoPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPriceNotFound
		}
		return nil, fmt.Errorf("store: GetProductPrice failed to scan row: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListProductPrices(ctx context.Context, pseID int64) ([]domain.ProductPrice, error) {
	query := `
		SELECT product_sale_elements_id, currency_id, price, promo_price
		FROM catalog.product_price
		WHERE product_sale_elements_id = $1
		ORDER BY currency_id ASC;
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, pseID)
	if err != nil {
		return nil, fmt.Errorf("store: ListProductPrices failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []domain.ProductPrice
	for rows.Next() {
		var p domain.ProductPrice
		if err := rows.Scan(&p.ProductSaleElementsID, &p.CurrencyID, &p.Price, &p.PromoPrice); err != nil {
			return nil, fmt.Errorf("store: ListProductPrices failed to scan row: %w", err)
		}
		prices = append(prices, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProductPrices iteration error: %w", err)
	}
	return prices, nil
}

// SaveProductPrice inserts or replaces the price of a sale element in one currency.
func (s *PostgresStore) SaveProductPrice(ctx context.Context, p *domain.ProductPrice) error {
	query := `
		INSERT INTO catalog.product_price (product_sale_elements_id, currency_id, price, promo_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_sale_elements_id, currency_id) DO UPDATE
		SET price = EXCLUDED.price, promo_price = EXCLUDED.promo_price;
	`
	if _, err := s.conn(ctx).ExecContext(ctx, query, p.ProductSaleElementsID, p.CurrencyID, p.Price, p.PromoPrice); err != nil {
		return fmt.Errorf("store: SaveProductPrice failed to execute upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAttributeCombinations(ctx context.Context, pseID int64) ([]domain.AttributeCombination, error) {
	query := `
		SELECT attribute_id, attribute_av_id, product_sale_elements_id
		FROM catalog.attribute_combination
		WHERE product_sale_elements_id = $1;
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, pseID)
	if err != nil {
		return nil, fmt.Errorf("store: ListAttributeCombinations failed to query combinations: %w", err)
	}
	defer rows.Close()

	var combinations []domain.AttributeCombination
	for rows.Next() {
		var ac domain.AttributeCombination
		if err := rows.Scan(&ac.AttributeID, &ac.AttributeAvID, &ac.ProductSaleElementsID); err != nil {
			return nil, fmt.Errorf("store: ListAttributeCombinations failed to scan row: %w", err)
		}
		combinations = append(combinations, ac)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListAttributeCombinations iteration error: %w", err)
	}
	return combinations, nil
}

func (s *PostgresStore) AddAttributeCombination(ctx context.Context, ac *domain.AttributeCombination) error {
	query := `
		INSERT INTO catalog.attribute_combination (attribute_id, attribute_av_id, product_sale_elements_id)
		VALUES ($1, $2, $3);
	`
	if _, err := s.conn(ctx).ExecContext(ctx, query, ac.AttributeID, ac.AttributeAvID, ac.ProductSaleElementsID); err != nil {
		return fmt.Errorf("store: AddAttributeCombination failed to execute insert: %w", err)
	}
	return nil
}

// DeleteAttributeCombinations removes the attribute combinations of every sale element of a product.
func (s *PostgresStore) DeleteAttributeCombinations(ctx context.Context, productID int64) error {
	query := `
		DELETE FROM catalog.attribute_combination
		WHERE product_sale_elements_id IN (SELECT id FROM catalog.product_sale_elements WHERE product_id = $1);
	`
	if _, err := s.conn(ctx).ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("store: DeleteAttributeCombinations failed to execute delete: %w", err)
	}
	return nil
}
