package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-lifecycle-service/internal/domain"
)

// --- CategoryStorer Implementation ---

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, parent, default_template_id FROM catalog.category WHERE id = $1;`
	var c domain.Category
	err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Parent, &c.DefaultTemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByID failed to scan row: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) FindProductCategory(ctx context.Context, productID, categoryID int64) (*domain.ProductCategory, error) {
	query := `
		SELECT product_id, category_id, default_category, position
		FROM catalog.product_category
		WHERE product_id = $1 AND category_id = $2;
	`
	var pc domain.ProductCategory
	err := s.conn(ctx).QueryRowContext(ctx, query, productID, categoryID).Scan(
		&pc.ProductID, &pc.CategoryID, &pc.DefaultCategory, &pc.Position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductCategoryNotFound
		}
		return nil, fmt.Errorf("store: FindProductCategory failed to scan row: %w", err)
	}
	return &pc, nil
}

// AddProductCategory links a product to a category at the end of the category's product list.
func (s *PostgresStore) AddProductCategory(ctx context.Context, pc *domain.ProductCategory) error {
	query := `
		INSERT INTO catalog.product_category (product_id, category_id, default_category, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM catalog.product_category WHERE category_id = $2))
		RETURNING position;
	`
	err := s.conn(ctx).QueryRowContext(ctx, query, pc.ProductID, pc.CategoryID, pc.DefaultCategory).Scan(&pc.Position)
	if err != nil {
		return fmt.Errorf("store: AddProductCategory failed to scan row: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteProductCategory(ctx context.Context, productID, categoryID int64) error {
	query := `DELETE FROM catalog.product_category WHERE product_id = $1 AND category_id = $2;`
	result, err := s.conn(ctx).ExecContext(ctx, query, productID, categoryID)
	if err != nil {
		return fmt.Errorf("store: DeleteProductCategory failed to execute delete: %w", err)
	}
	return expectOneRow(result, ErrProductCategoryNotFound)
}

// SetDefaultCategory makes categoryID the only default category of the
// product, linking it first when needed.
func (s *PostgresStore) SetDefaultCategory(ctx context.Context, productID, categoryID int64) error {
	demote := `
		UPDATE catalog.product_category SET default_category = FALSE
		WHERE product_id = $1 AND category_id <> $2 AND default_category = TRUE;
	`
	if _, err := s.conn(ctx).ExecContext(ctx, demote, productID, categoryID); err != nil {
		return fmt.Errorf("store: SetDefaultCategory failed to demote previous default: %w", err)
	}

	promote := `UPDATE catalog.product_category SET default_category = TRUE WHERE product_id = $1 AND category_id = $2;`
	result, err := s.conn(ctx).ExecContext(ctx, promote, productID, categoryID)
	if err != nil {
		return fmt.Errorf("store: SetDefaultCategory failed to promote category: %w", err)
	}
	if err := expectOneRow(result, ErrProductCategoryNotFound); err == nil {
		return nil
	} else if !errors.Is(err, ErrProductCategoryNotFound) {
		return err
	}

	return s.AddProductCategory(ctx, &domain.ProductCategory{ProductID: productID, CategoryID: categoryID, DefaultCategory: true})
}
