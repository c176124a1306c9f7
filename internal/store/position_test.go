package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePosition_AbsoluteUpShiftsRowsBetween(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, product_id FROM catalog.product_associated_content WHERE id = $1;`)).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"position", "product_id"}).AddRow(3, int64(1)))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE catalog.product_associated_content SET position = position + 1 WHERE product_id = $1 AND position >= $2 AND position < $3;`)).
		WithArgs(int64(1), 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product_associated_content SET position = $1 WHERE id = $2;`)).
		WithArgs(1, int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateAssociatedContentPosition(context.Background(), 12, PositionAbsolute, 1)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_AbsoluteDownShiftsRowsBetween(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, 0 FROM catalog.product WHERE id = $1;`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"position", "scope"}).AddRow(2, int64(0)))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE catalog.product SET position = position - 1 WHERE 0 = $1 AND position > $2 AND position <= $3;`)).
		WithArgs(int64(0), 2, 5).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product SET position = $1 WHERE id = $2;`)).
		WithArgs(5, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateProductPosition(context.Background(), 1, PositionAbsolute, 5)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_AbsoluteSamePositionIsNoop(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, product_id FROM catalog.accessory WHERE id = $1;`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"position", "product_id"}).AddRow(2, int64(1)))
	mock.ExpectCommit()

	err := store.UpdateAccessoryPosition(context.Background(), 4, PositionAbsolute, 2)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_AbsoluteNotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, product_id FROM catalog.accessory WHERE id = $1;`)).
		WithArgs(int64(8)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.UpdateAccessoryPosition(context.Background(), 8, PositionAbsolute, 2)

	assert.ErrorIs(t, err, ErrAccessoryNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_AbsoluteShiftFailureRollsBack(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, product_id FROM catalog.product_associated_content WHERE id = $1;`)).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"position", "product_id"}).AddRow(3, int64(1)))
	mock.ExpectExec(regexp.QuoteMeta(`SET position = position + 1`)).
		WillReturnError(dbErr)
	mock.ExpectRollback()

	err := store.UpdateAssociatedContentPosition(context.Background(), 12, PositionAbsolute, 1)

	assert.ErrorIs(t, err, dbErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_UpSwapsWithNeighbour(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, product_id FROM catalog.product_associated_content WHERE id = $1;`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"position", "product_id"}).AddRow(4, int64(10)))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE product_id = $1 AND position < $2 ORDER BY position DESC LIMIT 1;`)).
		WithArgs(int64(10), 4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).AddRow(int64(2), 3))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product_associated_content SET position = $1 WHERE id = $2;`)).
		WithArgs(3, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.product_associated_content SET position = $1 WHERE id = $2;`)).
		WithArgs(4, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.UpdateAssociatedContentPosition(context.Background(), 3, PositionUp, 0)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_SwapFailureRollsBack(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	dbErr := errors.New("deadlock detected")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, product_id FROM catalog.accessory WHERE id = $1;`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"position", "product_id"}).AddRow(1, int64(10)))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE product_id = $1 AND position > $2 ORDER BY position ASC LIMIT 1;`)).
		WithArgs(int64(10), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "position"}).AddRow(int64(4), 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.accessory SET position = $1 WHERE id = $2;`)).
		WithArgs(2, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE catalog.accessory SET position = $1 WHERE id = $2;`)).
		WithArgs(1, int64(4)).
		WillReturnError(dbErr)
	mock.ExpectRollback()

	err := store.UpdateAccessoryPosition(context.Background(), 3, PositionDown, 0)

	assert.ErrorIs(t, err, dbErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_DownAtLastPositionIsNoop(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT position, 0 FROM catalog.product WHERE id = $1;`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"position", "scope"}).AddRow(9, int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE 0 = $1 AND position > $2 ORDER BY position ASC LIMIT 1;`)).
		WithArgs(int64(0), 9).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	err := store.UpdateProductPosition(context.Background(), 1, PositionDown, 0)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePosition_InvalidMode(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	err := store.UpdateProductPosition(context.Background(), 1, "sideways", 0)

	assert.ErrorIs(t, err, ErrInvalidPositionMode)
	require.NoError(t, mock.ExpectationsWereMet())
}
