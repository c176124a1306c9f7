package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-lifecycle-service/internal/domain"
)

// --- FeatureStorer Implementation ---

func (s *PostgresStore) ListFeatureProducts(ctx context.Context, productID int64) ([]domain.FeatureProduct, error) {
	query := `
		SELECT id, product_id, feature_id, feature_av_id, free_text_av_id, position
		FROM catalog.feature_product
		WHERE product_id = $1
		ORDER BY id ASC;
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListFeatureProducts failed to query feature values: %w", err)
	}
	defer rows.Close()

	var values []domain.FeatureProduct
	for rows.Next() {
		var fp domain.FeatureProduct
		if err := rows.Scan(&fp.ID, &fp.ProductID, &fp.FeatureID, &fp.FeatureAvID, &fp.FreeTextAvID, &fp.Position); err != nil {
			return nil, fmt.Errorf("store: ListFeatureProducts failed to scan row: %w", err)
		}
		values = append(values, fp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListFeatureProducts iteration error: %w", err)
	}
	return values, nil
}

func (s *PostgresStore) FindFeatureProduct(ctx context.Context, productID, featureID int64, featureAvID *int64) (*domain.FeatureProduct, error) {
	query := `
		SELECT id, product_id, feature_id, feature_av_id, free_text_av_id, position
		FROM catalog.feature_product
		WHERE product_id = $1 AND feature_id = $2
	`
	args := []interface{}{productID, featureID}
	if featureAvID != nil {
		query += ` AND feature_av_id = $3`
		args = append(args, *featureAvID)
	}
	query += ` ORDER BY id ASC LIMIT 1;`

	var fp domain.FeatureProduct
	err := s.conn(ctx).QueryRowContext(ctx, query, args...).Scan(
		&fp.ID, &fp.ProductID, &fp.FeatureID, &fp.FeatureAvID, &fp.FreeTextAvID, &fp.Position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFeatureProductNotFound
		}
		return nil, fmt.Errorf("store: FindFeatureProduct failed to scan row: %w", err)
	}
	return &fp, nil
}

// SaveFeatureProduct inserts the row when it has no id yet, otherwise updates
// its value references. Rows violating the one-value rule are rejected.
func (s *PostgresStore) SaveFeatureProduct(ctx context.Context, fp *domain.FeatureProduct) error {
	if err := fp.Validate(); err != nil {
		return err
	}

	if fp.ID == 0 {
		query := `
			INSERT INTO catalog.feature_product (product_id, feature_id, feature_av_id, free_text_av_id, position)
			VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(position), 0) + 1 FROM catalog.feature_product WHERE product_id = $1))
			RETURNING id, position;
		`
		err := s.conn(ctx).QueryRowContext(ctx, query, fp.ProductID, fp.FeatureID, fp.FeatureAvID, fp.FreeTextAvID).
			Scan(&fp.ID, &fp.Position)
		if err != nil {
			return fmt.Errorf("store: SaveFeatureProduct failed to insert row: %w", err)
		}
		return nil
	}

	query := `UPDATE catalog.feature_product SET feature_av_id = $1, free_text_av_id = $2 WHERE id = $3;`
	result, err := s.conn(ctx).ExecContext(ctx, query, fp.FeatureAvID, fp.FreeTextAvID, fp.ID)
	if err != nil {
		return fmt.Errorf("store: SaveFeatureProduct failed to update row: %w", err)
	}
	return expectOneRow(result, ErrFeatureProductNotFound)
}

func (s *PostgresStore) DeleteFeatureProducts(ctx context.Context, productID, featureID int64) error {
	query := `DELETE FROM catalog.feature_product WHERE product_id = $1 AND feature_id = $2;`
	if _, err := s.conn(ctx).ExecContext(ctx, query, productID, featureID); err != nil {
		return fmt.Errorf("store: DeleteFeatureProducts failed to execute delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateFeatureAv(ctx context.Context, av *domain.FeatureAv) error {
	query := `
		INSERT INTO catalog.feature_av (feature_id, position)
		VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM catalog.feature_av WHERE feature_id = $1))
		RETURNING id, position;
	`
	if err := s.conn(ctx).QueryRowContext(ctx, query, av.FeatureID).Scan(&av.ID, &av.Position); err != nil {
		return fmt.Errorf("store: CreateFeatureAv failed to scan row: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFeatureAvI18n(ctx context.Context, featureAvID int64, locale string) (*domain.FeatureAvI18n, error) {
	query := `SELECT id, locale, title FROM catalog.feature_av_i18n WHERE id = $1 AND locale = $2;`
	var i domain.FeatureAvI18n
	if err := s.conn(ctx).QueryRowContext(ctx, query, featureAvID, locale).Scan(&i.ID, &i.Locale, &i.Title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFeatureAvI18nNotFound
		}
		return nil, fmt.Errorf("store: GetFeatureAvI18n failed to scan row: %w", err)
	}
	return &i, nil
}

func (s *PostgresStore) ListFeatureAvI18ns(ctx context.Context, featureAvID int64) ([]domain.FeatureAvI18n, error) {
	query := `SELECT id, locale, title FROM catalog.feature_av_i18n WHERE id = $1 ORDER BY locale ASC;`
	rows, err := s.conn(ctx).QueryContext(ctx, query, featureAvID)
	if err != nil {
		return nil, fmt.Errorf("store: ListFeatureAvI18ns failed to query translations: %w", err)
	}
	defer rows.Close()

	var i18ns []domain.FeatureAvI18n
	for rows.Next() {
		var i domain.FeatureAvI18n
		if err := rows.Scan(&i.ID, &i.Locale, &i.Title); err != nil {
			return nil, fmt.Errorf("store: ListFeatureAvI18ns failed to scan row: %w", err)
		}
		i18ns = append(i18ns, i)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListFeatureAvI18ns iteration error: %w", err)
	}
	return i18ns, nil
}

func (s *PostgresStore) SaveFeatureAvI18n(ctx context.Context, i *domain.FeatureAvI18n) error {
	query := `
		INSERT INTO catalog.feature_av_i18n (id, locale, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (id, locale) DO UPDATE SET title = EXCLUDED.title;
	`
	if _, err := s.conn(ctx).ExecContext(ctx, query, i.ID, i.Locale, i.Title); err != nil {
		return fmt.Errorf("store: SaveFeatureAvI18n failed to execute upsert: %w", err)
	}
	return nil
}
