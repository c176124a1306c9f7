package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"product-lifecycle-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound         = errors.New("store: product not found")
	ErrProductRefExists        = errors.New("store: product reference already exists")
	ErrProductI18nNotFound     = errors.New("store: product translation not found")
	ErrCategoryNotFound        = errors.New("store: category not found")
	ErrProductCategoryNotFound = errors.New("store: product category not found")
	ErrContentNotFound         = errors.New("store: associated content not found")
	ErrAccessoryNotFound       = errors.New("store: accessory not found")
	ErrFeatureProductNotFound  = errors.New("store: feature product not found")
	ErrFeatureAvI18nNotFound   = errors.New("store: feature value translation not found")
	ErrSaleElementsNotFound    = errors.New("store: product sale elements not found")
	ErrPriceNotFound           = errors.New("store: product price not found")
	ErrTaxRuleNotFound         = errors.New("store: tax rule not found")
	ErrImageNotFound           = errors.New("store: product image not found")
	ErrDocumentNotFound        = errors.New("store: product document not found")
	ErrUpdateFailed            = errors.New("store: update failed, 0 rows affected")
)

// PostgresStore implements the store interfaces using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, constraint)
}

// expectOneRow turns a 0 rows affected result into notFound.
func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// --- ProductStorer Implementation ---

// CreateProduct inserts the product, its first translation and, when the
// product has one, its default category link.
func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product, i18n *domain.ProductI18n) (*domain.Product, error) {
	query := `
		INSERT INTO catalog.product (ref, visible, virtual, brand_id, tax_rule_id, template_id, position)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(position), 0) + 1 FROM catalog.product))
		RETURNING id, position, created_at, updated_at;
	`
	created := *product
	err := s.conn(ctx).QueryRowContext(ctx, query,
		product.Ref, product.Visible, product.Virtual, product.BrandID, product.TaxRuleID, product.TemplateID,
	).Scan(&created.ID, &created.Position, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "product_ref_key") {
			return nil, ErrProductRefExists
		}
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}

	if i18n != nil {
		i18n.ProductID = created.ID
		if err := s.SaveProductI18n(ctx, i18n); err != nil {
			return nil, err
		}
	}

	if created.DefaultCategoryID > 0 {
		pc := &domain.ProductCategory{ProductID: created.ID, CategoryID: created.DefaultCategoryID, DefaultCategory: true}
		if err := s.AddProductCategory(ctx, pc); err != nil {
			return nil, err
		}
	}

	return &created, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT p.id, p.ref, p.visible, p.virtual, p.brand_id, p.tax_rule_id, p.template_id, p.position,
			p.created_at, p.updated_at, COALESCE(pc.category_id, 0)
		FROM catalog.product p
		LEFT JOIN catalog.product_category pc ON pc.product_id = p.id AND pc.default_category = TRUE
		WHERE p.id = $1;
	`
	var p domain.Product
	err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Ref, &p.Visible, &p.Virtual, &p.BrandID, &p.TaxRuleID, &p.TemplateID, &p.Position,
		&p.CreatedAt, &p.UpdatedAt, &p.DefaultCategoryID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &p, nil
}

// UpdateProduct saves the core columns of a product. Translations and the
// default category are saved separately.
func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE catalog.product
		SET ref = $1, visible = $2, virtual = $3, brand_id = $4, tax_rule_id = $5, template_id = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $7;
	`
	result, err := s.conn(ctx).ExecContext(ctx, query,
		product.Ref, product.Visible, product.Virtual, product.BrandID, product.TaxRuleID, product.TemplateID, product.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "product_ref_key") {
			return ErrProductRefExists
		}
		return fmt.Errorf("store: UpdateProduct failed to execute update: %w", err)
	}
	return expectOneRow(result, ErrProductNotFound)
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	query := `DELETE FROM catalog.product WHERE id = $1;`
	result, err := s.conn(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	return expectOneRow(result, ErrProductNotFound)
}

func (s *PostgresStore) UpdateProductPosition(ctx context.Context, id int64, mode string, position int) error {
	return s.updatePosition(ctx, productPositions, id, mode, position)
}

func (s *PostgresStore) GetProductI18n(ctx context.Context, productID int64, locale string) (*domain.ProductI18n, error) {
	query := `
		SELECT product_id, locale, title, description, chapo, postscriptum, meta_title, meta_description, meta_keywords, url
		FROM catalog.product_i18n
		WHERE product_id = $1 AND locale = $2;
	`
	var i domain.ProductI18n
	err := s.conn(ctx).QueryRowContext(ctx, query, productID, locale).Scan(
		&i.ProductID, &i.Locale, &i.Title, &i.Description, &i.Chapo, &i.Postscriptum,
		&i.MetaTitle, &i.MetaDescription, &i.MetaKeywords, &i.URL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductI18nNotFound
		}
		return nil, fmt.Errorf("store: GetProductI18n failed to scan row: %w", err)
	}
	return &i, nil
}

func (s *PostgresStore) ListProductI18ns(ctx context.Context, productID int64) ([]domain.ProductI18n, error) {
	query := `
		SELECT product_id, locale, title, description, chapo, postscriptum, meta_title, meta_description, meta_keywords, url
		FROM catalog.product_i18n
		WHERE product_id = $1
		ORDER BY locale ASC;
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListProductI18ns failed to query translations: %w", err)
	}
	defer rows.Close()

	var i18ns []domain.ProductI18n
	for rows.Next() {
		var i domain.ProductI18n
		if err := rows.Scan(
			&i.ProductID, &i.Locale, &i.Title, &i.Description, &i.Chapo, &i.Postscriptum,
			&i.MetaTitle, &i.MetaDescription, &i.MetaKeywords, &i.URL,
		); err != nil {
			return nil, fmt.Errorf("store: ListProductI18ns failed to scan row: %w", err)
		}
		i18ns = append(i18ns, i)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProductI18ns iteration error: %w", err)
	}
	return i18ns, nil
}

// SaveProductI18n inserts or replaces the translation of (product, locale).
func (s *PostgresStore) SaveProductI18n(ctx context.Context, i *domain.ProductI18n) error {
	query := `
		INSERT INTO catalog.product_i18n
			(product_id, locale, title, description, chapo, postscriptum, meta_title, meta_description, meta_keywords, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (product_id, locale) DO UPDATE
		SET title = EXCLUDED.title, description = EXCLUDED.description, chapo = EXCLUDED.chapo,
			postscriptum = EXCLUDED.postscriptum, meta_title = EXCLUDED.meta_title,
			meta_description = EXCLUDED.meta_description, meta_keywords = EXCLUDED.meta_keywords, url = EXCLUDED.url;
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		i.ProductID, i.Locale, i.Title, i.Description, i.Chapo, i.Postscriptum,
		i.MetaTitle, i.MetaDescription, i.MetaKeywords, i.URL,
	)
	if err != nil {
		return fmt.Errorf("store: SaveProductI18n failed to execute upsert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ProductURLExists(ctx context.Context, locale, url string, exceptProductID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM catalog.product_i18n WHERE locale = $1 AND url = $2 AND product_id <> $3);`
	var exists bool
	if err := s.conn(ctx).QueryRowContext(ctx, query, locale, url, exceptProductID).Scan(&exists); err != nil {
		return false, fmt.Errorf("store: ProductURLExists failed to scan row: %w", err)
	}
	return exists, nil
}

// --- TaxRuleStorer Implementation ---

func (s *PostgresStore) GetDefaultTaxRule(ctx context.Context) (*domain.TaxRule, error) {
	query := `SELECT id, is_default FROM catalog.tax_rule WHERE is_default = TRUE LIMIT 1;`
	var tr domain.TaxRule
	if err := s.conn(ctx).QueryRowContext(ctx, query).Scan(&tr.ID, &tr.IsDefault); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaxRuleNotFound
		}
		return nil, fmt.Errorf("store: GetDefaultTaxRule failed to scan row: %w", err)
	}
	return &tr, nil
}

// Ping checks the connection pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}
