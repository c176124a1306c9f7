package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-lifecycle-service/internal/domain"
)

// --- FileStorer Implementation ---

func (s *PostgresStore) GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error) {
	query := `SELECT id, product_id, file, visible, position FROM catalog.product_image WHERE id = $1;`
	var img domain.ProductImage
	err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&img.ID, &img.ProductID, &img.File, &img.Visible, &img.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("store: GetProductImage failed to scan row: %w", err)
	}
	return &img, nil
}

func (s *PostgresStore) ListProductImages(ctx context.Context, productID int64) ([]domain.ProductImage, error) {
	query := `
		SELECT id, product_id, file, visible, position
		FROM catalog.product_image
		WHERE product_id = $1
		ORDER BY position ASC;
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListProductImages failed to query images: %w", err)
	}
	defer rows.Close()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.File, &img.Visible, &img.Position); err != nil {
			return nil, fmt.Errorf("store: ListProductImages failed to scan row: %w", err)
		}
		images = append(images, img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProductImages iteration error: %w", err)
	}
	return images, nil
}

func (s *PostgresStore) CreateProductImage(ctx context.Context, img *domain.ProductImage) error {
	query := `
		INSERT INTO catalog.product_image (product_id, file, visible, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	if err := s.conn(ctx).QueryRowContext(ctx, query, img.ProductID, img.File, img.Visible, img.Position).Scan(&img.ID); err != nil {
		return fmt.Errorf("store: CreateProductImage failed to scan row: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteProductImage(ctx context.Context, id int64) error {
	query := `DELETE FROM catalog.product_image WHERE id = $1;`
	result, err := s.conn(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProductImage failed to execute delete: %w", err)
	}
	return expectOneRow(result, ErrImageNotFound)
}

func (s *PostgresStore) DeleteImageSaleElementsAssociations(ctx context.Context, imageID int64) error {
	query := `DELETE FROM catalog.product_sale_elements_product_image WHERE product_image_id = $1;`
	if _, err := s.conn(ctx).ExecContext(ctx, query, imageID); err != nil {
		return fmt.Errorf("store: DeleteImageSaleElementsAssociations failed to execute delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProductDocument(ctx context.Context, id int64) (*domain.ProductDocument, error) {
	query := `SELECT id, product_id, file, visible, position FROM catalog.product_document WHERE id = $1;`
	var doc domain.ProductDocument
	err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&doc.ID, &doc.ProductID, &doc.File, &doc.Visible, &doc.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("store: GetProductDocument failed to scan row: %w", err)
	}
	return &doc, nil
}

func (s *PostgresStore) ListProductDocuments(ctx context.Context, productID int64) ([]domain.ProductDocument, error) {
	query := `
		SELECT id, product_id, file, visible, position
		FROM catalog.product_document
		WHERE product_id = $1
		ORDER BY position ASC;
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListProductDocuments failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.ProductDocument
	for rows.Next() {
		var doc domain.ProductDocument
		if err := rows.Scan(&doc.ID, &doc.ProductID, &doc.File, &doc.Visible, &doc.Position); err != nil {
			return nil, fmt.Errorf("store: ListProductDocuments failed to scan row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProductDocuments iteration error: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) CreateProductDocument(ctx context.Context, doc *domain.ProductDocument) error {
	query := `
		INSERT INTO catalog.product_document (product_id, file, visible, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`
	if err := s.conn(ctx).QueryRowContext(ctx, query, doc.ProductID, doc.File, doc.Visible, doc.Position).Scan(&doc.ID); err != nil {
		return fmt.Errorf("store: CreateProductDocument failed to scan row: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteProductDocument(ctx context.Context, id int64) error {
	query := `DELETE FROM catalog.product_document WHERE id = $1;`
	result, err := s.conn(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProductDocument failed to execute delete: %w", err)
	}
	return expectOneRow(result, ErrDocumentNotFound)
}

func (s *PostgresStore) DeleteDocumentSaleElementsAssociations(ctx context.Context, documentID int64) error {
	query := `DELETE FROM catalog.product_sale_elements_product_document WHERE product_document_id = $1;`
	if _, err := s.conn(ctx).ExecContext(ctx, query, documentID); err != nil {
		return fmt.Errorf("store: DeleteDocumentSaleElementsAssociations failed to execute delete: %w", err)
	}
	return nil
}
