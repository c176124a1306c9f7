package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Position modes, mirrored from the event package to keep store free of it.
const (
	PositionAbsolute = "absolute"
	PositionUp       = "up"
	PositionDown     = "down"
)

var ErrInvalidPositionMode = errors.New("store: invalid position mode")

// positionTable describes a table with a position column, ordered within
// scope (empty for a single global ordering).
type positionTable struct {
	table    string
	scope    string
	notFound error
}

var (
	productPositions   = positionTable{table: "catalog.product", notFound: ErrProductNotFound}
	contentPositions   = positionTable{table: "catalog.product_associated_content", scope: "product_id", notFound: ErrContentNotFound}
	accessoryPositions = positionTable{table: "catalog.accessory", scope: "product_id", notFound: ErrAccessoryNotFound}
)

// updatePosition moves a row within its scope. An absolute move shifts the
// rows between the old and new position by one; up/down moves swap the row
// with its neighbour. Moving past either end is a no-op.
func (s *PostgresStore) updatePosition(ctx context.Context, t positionTable, id int64, mode string, position int) error {
	switch mode {
	case PositionAbsolute, PositionUp, PositionDown:
	default:
		return ErrInvalidPositionMode
	}

	return s.WithinTx(ctx, func(ctx context.Context) error {
		scopeColumn := "0"
		if t.scope != "" {
			scopeColumn = t.scope
		}

		var current int
		var scopeValue int64
		query := fmt.Sprintf(`SELECT position, %s FROM %s WHERE id = $1;`, scopeColumn, t.table)
		if err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&current, &scopeValue); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return t.notFound
			}
			return fmt.Errorf("store: updatePosition failed to load %s row: %w", t.table, err)
		}

		if mode == PositionAbsolute {
			return s.moveAbsolute(ctx, t, scopeColumn, scopeValue, id, current, position)
		}
		return s.swapWithNeighbour(ctx, t, scopeColumn, scopeValue, id, current, mode)
	})
}

func (s *PostgresStore) moveAbsolute(ctx context.Context, t positionTable, scopeColumn string, scopeValue, id int64, current, target int) error {
	if target == current {
		return nil
	}

	var shift string
	var args []interface{}
	if target < current {
		shift = fmt.Sprintf(
			`UPDATE %s SET position = position + 1 WHERE %s = $1 AND position >= $2 AND position < $3;`,
			t.table, scopeColumn,
		)
		args = []interface{}{scopeValue, target, current}
	} else {
		shift = fmt.Sprintf(
			`UPDATE %s SET position = position - 1 WHERE %s = $1 AND position > $2 AND position <= $3;`,
			t.table, scopeColumn,
		)
		args = []interface{}{scopeValue, current, target}
	}
	if _, err := s.conn(ctx).ExecContext(ctx, shift, args...); err != nil {
		return fmt.Errorf("store: updatePosition failed to shift %s rows: %w", t.table, err)
	}

	query := fmt.Sprintf(`UPDATE %s SET position = $1 WHERE id = $2;`, t.table)
	result, err := s.conn(ctx).ExecContext(ctx, query, target, id)
	if err != nil {
		return fmt.Errorf("store: updatePosition failed on %s: %w", t.table, err)
	}
	return expectOneRow(result, t.notFound)
}

func (s *PostgresStore) swapWithNeighbour(ctx context.Context, t positionTable, scopeColumn string, scopeValue, id int64, current int, mode string) error {
	cmp, order := "<", "DESC"
	if mode == PositionDown {
		cmp, order = ">", "ASC"
	}
	neighbourQuery := fmt.Sprintf(
		`SELECT id, position FROM %s WHERE %s = $1 AND position %s $2 ORDER BY position %s LIMIT 1;`,
		t.table, scopeColumn, cmp, order,
	)

	var neighbourID int64
	var neighbourPosition int
	err := s.conn(ctx).QueryRowContext(ctx, neighbourQuery, scopeValue, current).Scan(&neighbourID, &neighbourPosition)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("store: updatePosition failed to load neighbour in %s: %w", t.table, err)
	}

	swap := fmt.Sprintf(`UPDATE %s SET position = $1 WHERE id = $2;`, t.table)
	if _, err := s.conn(ctx).ExecContext(ctx, swap, neighbourPosition, id); err != nil {
		return fmt.Errorf("store: updatePosition failed to move %s row: %w", t.table, err)
	}
	if _, err := s.conn(ctx).ExecContext(ctx, swap, current, neighbourID); err != nil {
		return fmt.Errorf("store: updatePosition failed to move %s neighbour: %w", t.table, err)
	}
	return nil
}
