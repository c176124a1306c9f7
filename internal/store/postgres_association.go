package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-lifecycle-service/internal/domain"
)

// --- AssociationStorer Implementation ---

func (s *PostgresStore) FindAssociatedContent(ctx context.Context, productID, contentID int64) (*domain.ProductAssociatedContent, error) {
	query := `
		SELECT id, product_id, content_id, position
		FROM catalog.product_associated_content
		WHERE product_id = $1 AND content_id = $2;
	`
	var c domain.ProductAssociatedContent
	err := s.conn(ctx).QueryRowContext(ctx, query, productID, contentID).Scan(&c.ID, &c.ProductID, &c.ContentID, &c.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("store: FindAssociatedContent failed to scan row: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListAssociatedContents(ctx context.Context, productID int64) ([]domain.ProductAssociatedContent, error) {
	query := `
		SELECT id, product_id, content_id, position
		FROM catalog.product_associated_content
		WHERE product_id = $1
		ORDER BY position ASC;
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListAssociatedContents failed to query contents: %w", err)
	}
	defer rows.Close()

	var contents []domain.ProductAssociatedContent
	for rows.Next() {
		var c domain.ProductAssociatedContent
		if err := rows.Scan(&c.ID, &c.ProductID, &c.ContentID, &c.Position); err != nil {
			return nil, fmt.Errorf("store: ListAssociatedContents failed to scan row: %w", err)
		}
		contents = append(contents, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListAssociatedContents iteration error: %w", err)
	}
	return contents, nil
}

func (s *PostgresStore) AddAssociatedContent(ctx context.Context, c *domain.ProductAssociatedContent) error {
	query := `
		INSERT INTO catalog.product_associated_content (product_id, content_id, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM catalog.product_associated_content WHERE product_id = $1))
		RETURNING id, position;
	`
	if err := s.conn(ctx).QueryRowContext(ctx, query, c.ProductID, c.ContentID).Scan(&c.ID, &c.Position); err != nil {
		return fmt.Errorf("store: AddAssociatedContent failed to scan row: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAssociatedContent(ctx context.Context, id int64) error {
	query := `DELETE FROM catalog.product_associated_content WHERE id = $1;`
	result, err := s.conn(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteAssociatedContent failed to execute delete: %w", err)
	}
	return expectOneRow(result, ErrContentNotFound)
}

func (s *PostgresStore) UpdateAssociatedContentPosition(ctx context.Context, id int64, mode string, position int) error {
	return s.updatePosition(ctx, contentPositions, id, mode, position)
}

func (s *PostgresStore) FindAccessory(ctx context.Context, productID, accessoryID int64) (*domain.Accessory, error) {
	query := `
		SELECT id, product_id, accessory, position
		FROM catalog.accessory
		WHERE product_id = $1 AND accessory = $2;
	`
	var a domain.Accessory
	err := s.conn(ctx).QueryRowContext(ctx, query, productID, accessoryID).Scan(&a.ID, &a.ProductID, &a.Accessory, &a.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccessoryNotFound
		}
		return nil, fmt.Errorf("store: FindAccessory failed to scan row: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) AddAccessory(ctx context.Context, a *domain.Accessory) error {
	query := `
		INSERT INTO catalog.accessory (product_id, accessory, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM catalog.accessory WHERE product_id = $1))
		RETURNING id, position;
	`
	if err := s.conn(ctx).QueryRowContext(ctx, query, a.ProductID, a.Accessory).Scan(&a.ID, &a.Position); err != nil {
		return fmt.Errorf("store: AddAccessory failed to scan row: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAccessory(ctx context.Context, id int64) error {
	query := `DELETE FROM catalog.accessory WHERE id = $1;`
	result, err := s.conn(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteAccessory failed to execute delete: %w", err)
	}
	return expectOneRow(result, ErrAccessoryNotFound)
}

func (s *PostgresStore) UpdateAccessoryPosition(ctx context.Context, id int64, mode string, position int) error {
	return s.updatePosition(ctx, accessoryPositions, id, mode, position)
}
