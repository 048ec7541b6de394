package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sittara/table-reservation/internal/model"
)

// TableRepo encapsulates database operations for restaurant_tables.
// The table inventory is semi-static: this core reads it for
// availability and booking validation; only the is_blocked maintenance
// flag is ever written here.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo given a DB handle.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableCols = `id, restaurant_id, number, capacity, shape, zone,
       pos_x, pos_y, width, height, is_blocked, created_at, updated_at`

func scanTable(row interface{ Scan(...interface{}) error }) (model.Table, error) {
	var t model.Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Capacity, &t.Shape, &t.Zone,
		&t.PosX, &t.PosY, &t.Width, &t.Height, &t.IsBlocked, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListByRestaurant returns all tables of a restaurant ordered by table
// number. Blocked tables are included so floor maps can render them;
// the availability engine filters them out itself.
func (r *TableRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Table, error) {
	const q = `SELECT ` + tableCols + ` FROM restaurant_tables WHERE restaurant_id = ? ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTables adapts ListByRestaurant to the availability engine's
// TableSource interface.
func (r *TableRepo) ListTables(ctx context.Context, restaurantID uint64) ([]model.Table, error) {
	return r.ListByRestaurant(ctx, restaurantID)
}

// GetByIDForRestaurant fetches a table by id, enforcing that it
// belongs to the given restaurant. ErrTableNotFound covers both a
// missing table and a table of a different restaurant.
func (r *TableRepo) GetByIDForRestaurant(ctx context.Context, tableID, restaurantID uint64) (*model.Table, error) {
	const q = `SELECT ` + tableCols + ` FROM restaurant_tables WHERE id = ? AND restaurant_id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, tableID, restaurantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// LockTx takes a row lock on the table within the given transaction.
// Every booking attempt for a table passes through this lock, which
// serializes the check-then-insert critical section per table. Returns
// ErrTableNotFound when the table does not belong to the restaurant.
func (r *TableRepo) LockTx(ctx context.Context, tx *sql.Tx, tableID, restaurantID uint64) (*model.Table, error) {
	const q = `SELECT ` + tableCols + ` FROM restaurant_tables WHERE id = ? AND restaurant_id = ? FOR UPDATE`
	t, err := scanTable(tx.QueryRowContext(ctx, q, tableID, restaurantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// SetBlocked flips the persistent maintenance flag. Availability
// immediately stops offering a blocked table; existing reservations
// are left for staff to relocate or cancel.
func (r *TableRepo) SetBlocked(ctx context.Context, tableID, restaurantID uint64, blocked bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE restaurant_tables SET is_blocked = ? WHERE id = ? AND restaurant_id = ?`,
		blocked, tableID, restaurantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}
