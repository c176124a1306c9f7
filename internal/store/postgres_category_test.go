package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-lifecycle-service/internal/domain"
)

func TestPostgresStore_GetCategoryByID(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, parent, default_template_id FROM catalog.category WHERE id = $1;`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent", "default_template_id"}).AddRow(int64(4), int64(1), nil))

	category, err := store.GetCategoryByID(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, int64(1), category.Parent)
	assert.Nil(t, category.DefaultTemplateID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindProductCategory_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM catalog.product_category`)).
		WithArgs(int64(1), int64(2)).
		WillReturnError(sql.ErrNoRows)

	pc, err := store.FindProductCategory(context.Background(), 1, 2)

	assert.ErrorIs(t, err, ErrProductCategoryNotFound)
	assert.Nil(t, pc)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AddProductCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.product_category (product_id, category_id, default_category, position)`)).
		WithArgs(int64(1), int64(2), false).
		WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(6))

	pc := &domain.ProductCategory{ProductID: 1, CategoryID: 2}
	err := store.AddProductCategory(context.Background(), pc)

	require.NoError(t, err)
	assert.Equal(t, 6, pc.Position)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetDefaultCategory_ExistingLink(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product_category SET default_category = FALSE`)).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product_category SET default_category = TRUE`)).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SetDefaultCategory(context.Background(), 1, 5)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetDefaultCategory_LinksMissingCategory(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product_category SET default_category = FALSE`)).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product_category SET default_category = TRUE`)).
		WithArgs(int64(1), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO catalog.product_category`)).
		WithArgs(int64(1), int64(5), true).
		WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(1))

	err := store.SetDefaultCategory(context.Background(), 1, 5)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProductCategory_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM catalog.product_category`)).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteProductCategory(context.Background(), 1, 2)

	assert.ErrorIs(t, err, ErrProductCategoryNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
